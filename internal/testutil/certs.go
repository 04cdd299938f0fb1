package testutil

import (
	"crypto"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"net"
	"os"
	"time"

	"github.com/grepplabs/tls-acceptor/tls/keyutil"
)

const serverKeyPassword = "test-key-password"

// CertsBundle is a throwaway PKI written to temporary files.
type CertsBundle struct {
	dir string

	CACert *os.File
	// ServerCert holds the server leaf followed by the CA certificate.
	ServerCert         *os.File
	ServerKey          *os.File
	ServerKeyPKCS8     *os.File
	ServerKeyEncrypted *os.File
	ServerKeyPassword  string
	ServerECCert       *os.File
	ServerECKey        *os.File
	// OtherKey matches none of the certificates.
	OtherKey *os.File
}

func NewCertsBundle() *CertsBundle {
	dir, err := os.MkdirTemp("", "tls-acceptor-test-")
	must(err)
	b := &CertsBundle{dir: dir, ServerKeyPassword: serverKeyPassword}

	caKey, _, _, _, err := keyutil.GenerateRSAKeys()
	must(err)
	caTmpl := &x509.Certificate{
		SerialNumber:          big.NewInt(1),
		Subject:               pkix.Name{CommonName: "test-ca"},
		NotBefore:             time.Now().Add(-time.Hour),
		NotAfter:              time.Now().Add(24 * time.Hour),
		IsCA:                  true,
		BasicConstraintsValid: true,
		KeyUsage:              x509.KeyUsageCertSign | x509.KeyUsageCRLSign | x509.KeyUsageDigitalSignature,
	}
	caDER, err := x509.CreateCertificate(rand.Reader, caTmpl, caTmpl, publicKey(caKey), caKey)
	must(err)
	caCert, err := x509.ParseCertificate(caDER)
	must(err)
	caPem := encodeCert(caDER)
	b.CACert = b.writeFile("ca-cert-", caPem)

	serverKey, serverKeyPem, _, _, err := keyutil.GenerateRSAKeys()
	must(err)
	serverDER := b.signLeaf(2, "localhost", serverKey, caCert, caKey)
	b.ServerCert = b.writeFile("server-cert-", append(encodeCert(serverDER), caPem...))
	b.ServerKey = b.writeFile("server-key-", serverKeyPem)

	pkcs8Pem, err := keyutil.MarshalPrivateKeyToPEM(serverKey)
	must(err)
	b.ServerKeyPKCS8 = b.writeFile("server-key-pkcs8-", pkcs8Pem)

	encryptedPem, err := keyutil.MarshalEncryptedPrivateKeyToPEM(serverKey, []byte(serverKeyPassword))
	must(err)
	b.ServerKeyEncrypted = b.writeFile("server-key-encrypted-", encryptedPem)

	ecKey, ecKeyPem, _, _, err := keyutil.GenerateECKeys()
	must(err)
	ecDER := b.signLeaf(3, "localhost", ecKey, caCert, caKey)
	b.ServerECCert = b.writeFile("server-ec-cert-", encodeCert(ecDER))
	b.ServerECKey = b.writeFile("server-ec-key-", ecKeyPem)

	_, otherKeyPem, _, _, err := keyutil.GenerateRSAKeys()
	must(err)
	b.OtherKey = b.writeFile("other-key-", otherKeyPem)
	return b
}

// Read returns the content of one of the bundle files.
func (b *CertsBundle) Read(f *os.File) string {
	data, err := os.ReadFile(f.Name())
	must(err)
	return string(data)
}

func (b *CertsBundle) Close() {
	_ = os.RemoveAll(b.dir)
}

func (b *CertsBundle) signLeaf(serial int64, host string, key crypto.PrivateKey, ca *x509.Certificate, caKey crypto.PrivateKey) []byte {
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(serial),
		Subject:      pkix.Name{CommonName: host},
		DNSNames:     []string{host},
		IPAddresses:  []net.IP{net.ParseIP("127.0.0.1")},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(24 * time.Hour),
		KeyUsage:     x509.KeyUsageDigitalSignature | x509.KeyUsageKeyEncipherment,
		ExtKeyUsage:  []x509.ExtKeyUsage{x509.ExtKeyUsageServerAuth},
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, ca, publicKey(key), caKey)
	must(err)
	return der
}

func (b *CertsBundle) writeFile(pattern string, data []byte) *os.File {
	f, err := os.CreateTemp(b.dir, pattern)
	must(err)
	_, err = f.Write(data)
	must(err)
	must(f.Close())
	return f
}

func publicKey(key crypto.PrivateKey) crypto.PublicKey {
	return key.(crypto.Signer).Public()
}

func encodeCert(der []byte) []byte {
	return pem.EncodeToMemory(&pem.Block{Type: keyutil.PEMTypeCertificate, Bytes: der})
}

func must(err error) {
	if err != nil {
		panic(err)
	}
}
