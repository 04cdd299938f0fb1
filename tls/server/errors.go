package tlsserver

import (
	"errors"
	"fmt"
)

// ErrorKind tells callers which stage of acceptor construction failed.
type ErrorKind int

const (
	KindUnknown ErrorKind = iota
	KindIO
	KindPemParse
	KindNoKeyData
	KindUnsupportedKeyKind
	KindTLSConfig
)

func (k ErrorKind) String() string {
	switch k {
	case KindIO:
		return "io"
	case KindPemParse:
		return "pem parse"
	case KindNoKeyData:
		return "no key data"
	case KindUnsupportedKeyKind:
		return "unsupported key kind"
	case KindTLSConfig:
		return "tls config"
	default:
		return "unknown"
	}
}

var (
	ErrIO                 = &Error{Kind: KindIO}
	ErrPemParse           = &Error{Kind: KindPemParse}
	ErrNoKeyData          = &Error{Kind: KindNoKeyData}
	ErrUnsupportedKeyKind = &Error{Kind: KindUnsupportedKeyKind}
	ErrTLSConfig          = &Error{Kind: KindTLSConfig}
)

// Error is returned by every acceptor constructor. Err holds the original cause.
type Error struct {
	Kind ErrorKind
	Err  error
}

func newError(kind ErrorKind, err error) *Error {
	return &Error{Kind: kind, Err: err}
}

func newErrorf(kind ErrorKind, format string, args ...any) *Error {
	return &Error{Kind: kind, Err: fmt.Errorf(format, args...)}
}

func (e *Error) Error() string {
	if e.Err == nil {
		return "tls acceptor: " + e.Kind.String()
	}
	return "tls acceptor: " + e.Kind.String() + ": " + e.Err.Error()
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is matches any *Error of the same kind, so the Err* sentinels work with errors.Is.
func (e *Error) Is(target error) bool {
	t, ok := target.(*Error)
	if !ok || t == nil {
		return false
	}
	return t.Kind == e.Kind
}

// KindOf returns the kind of the first *Error in the chain, or KindUnknown.
func KindOf(err error) ErrorKind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindUnknown
}
