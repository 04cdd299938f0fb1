package tlsserver

import (
	"fmt"
	"strings"

	"golang.org/x/net/http2"
)

const (
	NextProtoHTTP10 = "http/1.0"
	NextProtoHTTP11 = "http/1.1"
	NextProtoHTTP2  = http2.NextProtoTLS
)

// HTTPProtocol selects the HTTP versions advertised through ALPN.
// It should match what the server behind the acceptor actually speaks.
// The zero value is HTTP1; ParseHTTPProtocol has no default and rejects an empty string.
type HTTPProtocol int

const (
	HTTP1 HTTPProtocol = iota
	HTTP2
	// Both prefers HTTP/2 over HTTP/1.x.
	Both
)

func (p HTTPProtocol) String() string {
	switch p {
	case HTTP1:
		return "http1"
	case HTTP2:
		return "http2"
	case Both:
		return "both"
	default:
		return fmt.Sprintf("HTTPProtocol(%d)", int(p))
	}
}

// NextProtos returns the ALPN list, highest preference first. It is nil for an unknown value.
func (p HTTPProtocol) NextProtos() []string {
	switch p {
	case HTTP1:
		return []string{NextProtoHTTP11, NextProtoHTTP10}
	case HTTP2:
		return []string{NextProtoHTTP2}
	case Both:
		return []string{NextProtoHTTP2, NextProtoHTTP11, NextProtoHTTP10}
	default:
		return nil
	}
}

func ParseHTTPProtocol(s string) (HTTPProtocol, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "http1":
		return HTTP1, nil
	case "http2":
		return HTTP2, nil
	case "both":
		return Both, nil
	default:
		return 0, fmt.Errorf("unknown http protocol %q, expected one of http1, http2, both", s)
	}
}

func (p HTTPProtocol) MarshalText() ([]byte, error) {
	if p.NextProtos() == nil {
		return nil, fmt.Errorf("unknown http protocol %d", int(p))
	}
	return []byte(p.String()), nil
}

func (p *HTTPProtocol) UnmarshalText(text []byte) error {
	v, err := ParseHTTPProtocol(string(text))
	if err != nil {
		return err
	}
	*p = v
	return nil
}
