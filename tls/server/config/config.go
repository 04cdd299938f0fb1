package config

import (
	"crypto/tls"
	"fmt"
	"log/slog"

	"github.com/grepplabs/tls-acceptor/config"
	tlsserver "github.com/grepplabs/tls-acceptor/tls/server"
)

// GetTLSAcceptor builds an acceptor from the configured files. It returns nil when TLS is disabled.
func GetTLSAcceptor(logger *slog.Logger, conf *config.TLSAcceptorConfig, opts ...tlsserver.TLSServerConfigOption) (*tlsserver.Acceptor, error) {
	if conf == nil || !conf.Enable {
		return nil, nil
	}
	protocol, err := tlsserver.ParseHTTPProtocol(conf.Protocol)
	if err != nil {
		return nil, err
	}
	acceptorOpts := make([]tlsserver.AcceptorOption, 0, 2)
	if conf.File.KeyPassword != "" {
		acceptorOpts = append(acceptorOpts, tlsserver.WithKeyPassword(conf.File.KeyPassword))
	}
	if conf.MinVersion != "" {
		version, err := parseTLSVersion(conf.MinVersion)
		if err != nil {
			return nil, err
		}
		opts = append([]tlsserver.TLSServerConfigOption{tlsserver.WithTLSServerMinVersion(version)}, opts...)
	}
	acceptorOpts = append(acceptorOpts, tlsserver.WithTLSServerConfig(opts...))

	logger.Info("loading tls acceptor", slog.String("cert", conf.File.Cert), slog.String("key", conf.File.Key), slog.String("protocol", protocol.String()))
	return tlsserver.NewAcceptorFromFiles(conf.File.Cert, conf.File.Key, protocol, acceptorOpts...)
}

func parseTLSVersion(s string) (uint16, error) {
	switch s {
	case "1.2":
		return tls.VersionTLS12, nil
	case "1.3":
		return tls.VersionTLS13, nil
	default:
		return 0, fmt.Errorf("unsupported tls min version %q", s)
	}
}
