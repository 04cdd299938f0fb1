package commands

import (
	"io"
	"log/slog"

	"github.com/grepplabs/tls-acceptor/config"
)

type Globals struct {
	Logger *slog.Logger
	Stdout io.Writer
}

func NewLogger(w io.Writer, format string, debug bool) *slog.Logger {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	opts := &slog.HandlerOptions{Level: level}
	if format == "json" {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

// TLSFlags are shared by all commands. A config file, when given, replaces the flag values.
// On the flag path --tls.enable must be set, as with the file's enable field.
type TLSFlags struct {
	Config string                   `help:"Optional YAML file with the TLS acceptor configuration." type:"existingfile" placeholder:"FILE"`
	TLS    config.TLSAcceptorConfig `embed:"" prefix:"tls."`
}

func (f *TLSFlags) load() (*config.TLSAcceptorConfig, error) {
	if f.Config != "" {
		return config.LoadFile(f.Config)
	}
	conf := f.TLS
	return &conf, nil
}
