package config

import (
	"errors"
	"fmt"
	"io"
	"os"

	"gopkg.in/yaml.v3"
)

type TLSAcceptorConfig struct {
	Enable     bool             `yaml:"enable" help:"Enable server-side TLS."`
	Protocol   string           `yaml:"protocol" default:"both" enum:"http1,http2,both" help:"HTTP protocols offered through ALPN: http1, http2 or both."`
	MinVersion string           `yaml:"minVersion" help:"Optional minimum TLS version (1.2 or 1.3)."`
	File       TLSAcceptorFiles `yaml:"file" embed:"" prefix:"file."`
}

type TLSAcceptorFiles struct {
	Key         string `yaml:"key" placeholder:"FILE" help:"Path to the server TLS key file."`
	Cert        string `yaml:"cert" placeholder:"FILE" help:"Path to the server TLS certificate file."`
	KeyPassword string `yaml:"keyPassword" name:"key-password" help:"Optional password of an encrypted PKCS8 key file."`
}

// Load decodes a YAML document into a config. Unknown fields are rejected.
func Load(r io.Reader) (*TLSAcceptorConfig, error) {
	cfg := &TLSAcceptorConfig{Protocol: "both"}
	dec := yaml.NewDecoder(r)
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("decode tls acceptor config: %w", err)
	}
	return cfg, nil
}

func LoadFile(filename string) (*TLSAcceptorConfig, error) {
	f, err := os.Open(filename)
	if err != nil {
		return nil, err
	}
	defer func() {
		_ = f.Close()
	}()
	return Load(f)
}
