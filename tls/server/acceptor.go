package tlsserver

import (
	"bufio"
	"context"
	"crypto/tls"
	"encoding/pem"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"slices"
	"strings"

	"github.com/grepplabs/tls-acceptor/tls/keyutil"
)

// Acceptor performs the server side of the TLS handshake for incoming connections.
// It is read-only after construction and may be shared between accept loops.
type Acceptor struct {
	config *tls.Config
}

// Conn is an established server connection with the ALPN protocol the client agreed on.
type Conn struct {
	*tls.Conn
	NegotiatedProtocol string
}

// NewAcceptorFromPEM builds an Acceptor from PEM certificate and key text.
func NewAcceptorFromPEM(certPEM, keyPEM string, protocol HTTPProtocol, opts ...AcceptorOption) (*Acceptor, error) {
	return NewAcceptorFromReaders(strings.NewReader(certPEM), strings.NewReader(keyPEM), protocol, opts...)
}

// NewAcceptorFromFiles builds an Acceptor from PEM certificate and key files.
func NewAcceptorFromFiles(certPath, keyPath string, protocol HTTPProtocol, opts ...AcceptorOption) (*Acceptor, error) {
	certFile, err := os.Open(certPath)
	if err != nil {
		return nil, newError(KindIO, err)
	}
	defer func() {
		_ = certFile.Close()
	}()
	keyFile, err := os.Open(keyPath)
	if err != nil {
		return nil, newError(KindIO, err)
	}
	defer func() {
		_ = keyFile.Close()
	}()
	return NewAcceptorFromReaders(bufio.NewReader(certFile), bufio.NewReader(keyFile), protocol, opts...)
}

// NewAcceptorFromReaders decodes all certificates from certReader and the first PEM block of
// keyReader, then assembles a server tls.Config without client authentication.
func NewAcceptorFromReaders(certReader, keyReader io.Reader, protocol HTTPProtocol, opts ...AcceptorOption) (*Acceptor, error) {
	o := &acceptorOptions{}
	for _, opt := range opts {
		opt(o)
	}
	certs, err := ReadCertificates(certReader)
	if err != nil {
		return nil, err
	}
	key, err := ReadPrivateKey(keyReader, o.keyPassword)
	if err != nil {
		return nil, err
	}
	nextProtos := protocol.NextProtos()
	if nextProtos == nil {
		return nil, newErrorf(KindTLSConfig, "unknown http protocol %d", int(protocol))
	}
	cert, err := x509KeyPair(certs, key)
	if err != nil {
		return nil, newError(KindTLSConfig, err)
	}
	cfg := &tls.Config{
		Certificates: []tls.Certificate{cert},
		ClientAuth:   tls.NoClientCert,
		NextProtos:   nextProtos,
	}
	for _, opt := range o.configOpts {
		opt(cfg)
	}
	return &Acceptor{config: cfg}, nil
}

// x509KeyPair hands the chain and key to crypto/tls, which checks that the key matches the leaf.
func x509KeyPair(certs Certificates, key PrivateKey) (tls.Certificate, error) {
	var certPEM []byte
	for _, der := range certs {
		certPEM = append(certPEM, pem.EncodeToMemory(&pem.Block{Type: keyutil.PEMTypeCertificate, Bytes: der})...)
	}
	keyPEM := pem.EncodeToMemory(&pem.Block{Type: keyutil.PEMTypePrivateKey, Bytes: key})
	return tls.X509KeyPair(certPEM, keyPEM)
}

// Config returns a copy of the server configuration.
func (a *Acceptor) Config() *tls.Config {
	return a.config.Clone()
}

func (a *Acceptor) NextProtos() []string {
	return slices.Clone(a.config.NextProtos)
}

// Server wraps conn without starting the handshake.
func (a *Acceptor) Server(conn net.Conn) *tls.Conn {
	return tls.Server(conn, a.config)
}

// Accept runs the handshake on conn. On failure conn is closed.
func (a *Acceptor) Accept(ctx context.Context, conn net.Conn) (*Conn, error) {
	if conn == nil {
		return nil, errors.New("tls acceptor: nil connection")
	}
	tlsConn := a.Server(conn)
	if err := tlsConn.HandshakeContext(ctx); err != nil {
		_ = tlsConn.Close()
		return nil, fmt.Errorf("tls handshake with %s: %w", conn.RemoteAddr(), err)
	}
	return &Conn{
		Conn:               tlsConn,
		NegotiatedProtocol: tlsConn.ConnectionState().NegotiatedProtocol,
	}, nil
}

// NewListener returns a listener whose connections are served by this acceptor.
func (a *Acceptor) NewListener(inner net.Listener) net.Listener {
	return tls.NewListener(inner, a.config)
}
