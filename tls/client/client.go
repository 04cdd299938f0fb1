package tlsclient

import (
	"crypto/tls"
	"crypto/x509"
	"errors"
	"os"
)

type TLSClientConfigOption func(*tls.Config)

func WithTLSClientNextProtos(nextProto []string) TLSClientConfigOption {
	return func(c *tls.Config) {
		c.NextProtos = nextProto
	}
}

func WithTLSClientServerName(serverName string) TLSClientConfigOption {
	return func(c *tls.Config) {
		c.ServerName = serverName
	}
}

// NewTLSClientConfig returns a client config trusting only the given root CAs.
func NewTLSClientConfig(rootCAsPEM []byte, opts ...TLSClientConfigOption) (*tls.Config, error) {
	pool := x509.NewCertPool()
	if !pool.AppendCertsFromPEM(rootCAsPEM) {
		return nil, errors.New("no root CA certificates found")
	}
	x := &tls.Config{
		RootCAs: pool,
	}
	for _, opt := range opts {
		opt(x)
	}
	return x, nil
}

func NewTLSClientConfigFromFile(rootCAsFile string, opts ...TLSClientConfigOption) (*tls.Config, error) {
	data, err := os.ReadFile(rootCAsFile)
	if err != nil {
		return nil, err
	}
	return NewTLSClientConfig(data, opts...)
}
