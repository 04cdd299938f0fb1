package commands

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"slices"
	"time"

	tlsserver "github.com/grepplabs/tls-acceptor/tls/server"
	serverconfig "github.com/grepplabs/tls-acceptor/tls/server/config"
	"golang.org/x/net/http2"
)

const shutdownTimeout = 5 * time.Second

type ServeCmd struct {
	TLSFlags
	Listen string `help:"HTTPS listen address." default:"127.0.0.1:8443"`
}

func (c *ServeCmd) Run(ctx context.Context, globals *Globals) error {
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
	ln, err := net.Listen("tcp", c.Listen)
	if err != nil {
		return err
	}
	return serve(ctx, globals.Logger, acceptor, ln)
}

func newServer(logger *slog.Logger, acceptor *tlsserver.Acceptor) (*http.Server, error) {
	srv := &http.Server{
		Handler:           protoHandler(),
		ReadHeaderTimeout: 10 * time.Second,
		ErrorLog:          slog.NewLogLogger(logger.Handler(), slog.LevelWarn),
	}
	if slices.Contains(acceptor.NextProtos(), tlsserver.NextProtoHTTP2) {
		if err := http2.ConfigureServer(srv, &http2.Server{}); err != nil {
			return nil, fmt.Errorf("configure http2: %w", err)
		}
	}
	return srv, nil
}

// serve runs until ctx is done, then shuts the server down.
func serve(ctx context.Context, logger *slog.Logger, acceptor *tlsserver.Acceptor, ln net.Listener) error {
	srv, err := newServer(logger, acceptor)
	if err != nil {
		_ = ln.Close()
		return err
	}
	errCh := make(chan error, 1)
	go func() {
		logger.Info("serving https", slog.String("addr", ln.Addr().String()), slog.Any("nextProtos", acceptor.NextProtos()))
		errCh <- srv.Serve(acceptor.NewListener(ln))
	}()
	select {
	case err := <-errCh:
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		logger.Info("shutting down https server")
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
		if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	}
}

func protoHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		proto := ""
		if r.TLS != nil {
			proto = r.TLS.NegotiatedProtocol
		}
		_, _ = fmt.Fprintf(w, "%s %s\n", r.Proto, proto)
	})
}
