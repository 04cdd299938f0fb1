package commands

import (
	"crypto/x509"
	"errors"
	"fmt"
	"strings"
	"time"

	serverconfig "github.com/grepplabs/tls-acceptor/tls/server/config"
)

type CheckCmd struct {
	TLSFlags
}

func (c *CheckCmd) Run(globals *Globals) error {
	conf, err := c.load()
	if err != nil {
		return err
	}
	acceptor, err := serverconfig.GetTLSAcceptor(globals.Logger, conf)
	if err != nil {
		return err
	}
	if acceptor == nil {
		return errors.New("tls is disabled in the configuration")
	}
	cert := acceptor.Config().Certificates[0]
	leaf := cert.Leaf
	if leaf == nil {
		leaf, err = x509.ParseCertificate(cert.Certificate[0])
		if err != nil {
			return fmt.Errorf("parse leaf certificate: %w", err)
		}
	}
	_, _ = fmt.Fprintf(globals.Stdout, "subject:     %s\n", leaf.Subject)
	_, _ = fmt.Fprintf(globals.Stdout, "issuer:      %s\n", leaf.Issuer)
	_, _ = fmt.Fprintf(globals.Stdout, "not after:   %s\n", leaf.NotAfter.UTC().Format(time.RFC3339))
	_, _ = fmt.Fprintf(globals.Stdout, "chain:       %d\n", len(cert.Certificate))
	_, _ = fmt.Fprintf(globals.Stdout, "next protos: %s\n", strings.Join(acceptor.NextProtos(), ","))
	return nil
}
