package tlsserver

import "crypto/tls"

type TLSServerConfigOption func(*tls.Config)

// WithTLSServerNextProtos replaces the ALPN list derived from the HTTPProtocol.
func WithTLSServerNextProtos(nextProto []string) TLSServerConfigOption {
	return func(c *tls.Config) {
		c.NextProtos = nextProto
	}
}

func WithTLSServerMinVersion(version uint16) TLSServerConfigOption {
	return func(c *tls.Config) {
		c.MinVersion = version
	}
}

func WithTLSServerCipherSuites(cipherSuites []uint16) TLSServerConfigOption {
	return func(c *tls.Config) {
		c.CipherSuites = cipherSuites
	}
}

func WithTLSServerCurvePreferences(curvePreferences []tls.CurveID) TLSServerConfigOption {
	return func(c *tls.Config) {
		c.CurvePreferences = curvePreferences
	}
}

type acceptorOptions struct {
	keyPassword []byte
	configOpts  []TLSServerConfigOption
}

type AcceptorOption func(*acceptorOptions)

// WithKeyPassword enables decryption of an "ENCRYPTED PRIVATE KEY" block.
func WithKeyPassword(password string) AcceptorOption {
	return func(o *acceptorOptions) {
		o.keyPassword = []byte(password)
	}
}

// WithTLSServerConfig applies opts to the tls.Config after it has been assembled.
func WithTLSServerConfig(opts ...TLSServerConfigOption) AcceptorOption {
	return func(o *acceptorOptions) {
		o.configOpts = append(o.configOpts, opts...)
	}
}
