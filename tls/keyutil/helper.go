package keyutil

import (
	"crypto"
	"crypto/ecdsa"
	"crypto/ed25519"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/rsa"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/youmark/pkcs8"
)

const (
	rsaKeySize = 2048

	PEMTypeRSAPrivateKey       = "RSA PRIVATE KEY"
	PEMTypeECPrivateKey        = "EC PRIVATE KEY"
	PEMTypePrivateKey          = "PRIVATE KEY"
	PEMTypeEncryptedPrivateKey = "ENCRYPTED PRIVATE KEY"
	PEMTypePublicKey           = "PUBLIC KEY"
	PEMTypeRSAPublicKey        = "RSA PUBLIC KEY"
	PEMTypeCertificate         = "CERTIFICATE"
	PEMTypeX509CRL             = "X509 CRL"
)

var (
	ErrNoPrivateKey = errors.New("no private key found in PEM data")
	ErrNoPublicKey  = errors.New("no public key found in PEM data")
)

// GenerateRSAKeys returns a new RSA key pair. The private key is PKCS1 encoded.
func GenerateRSAKeys() (crypto.PrivateKey, []byte, crypto.PublicKey, []byte, error) {
	privKey, err := rsa.GenerateKey(rand.Reader, rsaKeySize)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	privPem := pem.EncodeToMemory(&pem.Block{Type: PEMTypeRSAPrivateKey, Bytes: x509.MarshalPKCS1PrivateKey(privKey)})
	pubPem, err := MarshalPublicKeyToPEM(privKey.Public())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return privKey, privPem, privKey.Public(), pubPem, nil
}

// GenerateECKeys returns a new P-256 key pair. The private key is SEC1 encoded.
func GenerateECKeys() (crypto.PrivateKey, []byte, crypto.PublicKey, []byte, error) {
	privKey, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	der, err := x509.MarshalECPrivateKey(privKey)
	if err != nil {
		return nil, nil, nil, nil, err
	}
	privPem := pem.EncodeToMemory(&pem.Block{Type: PEMTypeECPrivateKey, Bytes: der})
	pubPem, err := MarshalPublicKeyToPEM(privKey.Public())
	if err != nil {
		return nil, nil, nil, nil, err
	}
	return privKey, privPem, privKey.Public(), pubPem, nil
}

// ParsePrivateKeyDER tries PKCS1, PKCS8 and SEC1 in that order.
func ParsePrivateKeyDER(der []byte) (crypto.PrivateKey, error) {
	if key, err := x509.ParsePKCS1PrivateKey(der); err == nil {
		return key, nil
	}
	if key, err := x509.ParsePKCS8PrivateKey(der); err == nil {
		switch key := key.(type) {
		case *rsa.PrivateKey, *ecdsa.PrivateKey, ed25519.PrivateKey:
			return key, nil
		default:
			return nil, fmt.Errorf("unsupported private key type %T in PKCS8 wrapping", key)
		}
	}
	if key, err := x509.ParseECPrivateKey(der); err == nil {
		return key, nil
	}
	return nil, errors.New("failed to parse private key")
}

// ParseEncryptedPrivateKeyDER decrypts a PKCS8 "ENCRYPTED PRIVATE KEY" payload.
func ParseEncryptedPrivateKeyDER(der []byte, password []byte) (crypto.PrivateKey, error) {
	key, err := pkcs8.ParsePKCS8PrivateKey(der, password)
	if err != nil {
		return nil, fmt.Errorf("decrypt private key: %w", err)
	}
	return key, nil
}

func ParsePrivateKeyPEM(data []byte) (crypto.PrivateKey, error) {
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			return nil, ErrNoPrivateKey
		}
		switch block.Type {
		case PEMTypeRSAPrivateKey, PEMTypeECPrivateKey, PEMTypePrivateKey:
			return ParsePrivateKeyDER(block.Bytes)
		}
	}
}

func ReadPrivateKey(r io.Reader) (crypto.PrivateKey, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyPEM(data)
}

func ReadPrivateKeyFile(filename string) (crypto.PrivateKey, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	return ParsePrivateKeyPEM(data)
}

// ParsePublicKeysPEM collects public keys from public key, private key and certificate blocks.
func ParsePublicKeysPEM(data []byte) ([]crypto.PublicKey, error) {
	var keys []crypto.PublicKey
	for {
		var block *pem.Block
		block, data = pem.Decode(data)
		if block == nil {
			break
		}
		switch block.Type {
		case PEMTypePublicKey:
			key, err := x509.ParsePKIXPublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		case PEMTypeRSAPublicKey:
			key, err := x509.ParsePKCS1PublicKey(block.Bytes)
			if err != nil {
				return nil, err
			}
			keys = append(keys, key)
		case PEMTypeRSAPrivateKey, PEMTypeECPrivateKey, PEMTypePrivateKey:
			key, err := ParsePrivateKeyDER(block.Bytes)
			if err != nil {
				return nil, err
			}
			signer, ok := key.(crypto.Signer)
			if !ok {
				return nil, fmt.Errorf("private key type %T has no public key", key)
			}
			keys = append(keys, signer.Public())
		case PEMTypeCertificate:
			cert, err := x509.ParseCertificate(block.Bytes)
			if err != nil {
				return nil, err
			}
			keys = append(keys, cert.PublicKey)
		}
	}
	if len(keys) == 0 {
		return nil, ErrNoPublicKey
	}
	return keys, nil
}

func ReadPublicKeys(r io.Reader) ([]crypto.PublicKey, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, err
	}
	return ParsePublicKeysPEM(data)
}

// ReadPublicKeyFile returns the first public key in the file.
func ReadPublicKeyFile(filename string) (crypto.PublicKey, error) {
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, err
	}
	keys, err := ParsePublicKeysPEM(data)
	if err != nil {
		return nil, err
	}
	return keys[0], nil
}

// MarshalPrivateKeyToPEM encodes the key as unencrypted PKCS8.
func MarshalPrivateKeyToPEM(key crypto.PrivateKey) ([]byte, error) {
	der, err := x509.MarshalPKCS8PrivateKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMTypePrivateKey, Bytes: der}), nil
}

func MarshalEncryptedPrivateKeyToPEM(key crypto.PrivateKey, password []byte) ([]byte, error) {
	der, err := pkcs8.MarshalPrivateKey(key, password, nil)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMTypeEncryptedPrivateKey, Bytes: der}), nil
}

func MarshalPublicKeyToPEM(key crypto.PublicKey) ([]byte, error) {
	der, err := x509.MarshalPKIXPublicKey(key)
	if err != nil {
		return nil, err
	}
	return pem.EncodeToMemory(&pem.Block{Type: PEMTypePublicKey, Bytes: der}), nil
}

func KeysMatch(privKey crypto.PrivateKey, pubKey crypto.PublicKey) bool {
	signer, ok := privKey.(crypto.Signer)
	if !ok {
		return false
	}
	pub, ok := signer.Public().(interface{ Equal(crypto.PublicKey) bool })
	if !ok {
		return false
	}
	return pub.Equal(pubKey)
}
