package tlsserver

import (
	"bytes"
	"crypto/x509"
	"encoding/pem"
	"errors"
	"fmt"
	"io"

	"github.com/grepplabs/tls-acceptor/tls/keyutil"
)

var (
	pemBegin = []byte("-----BEGIN ")
	pemEnd   = []byte("-----END ")
)

// Certificates is a DER encoded chain in input order.
type Certificates [][]byte

// PrivateKey holds the DER bytes of an EC, RSA or PKCS8 key. Which one it was is not kept.
type PrivateKey []byte

type keyKind int

const (
	keyKindEC keyKind = iota + 1
	keyKindRSA
	keyKindPKCS8
)

type keyBlock struct {
	kind keyKind
	der  []byte
}

// nextPEMSection returns the first BEGIN..END section of data and what follows it.
// found is false when data has no BEGIN line at all.
func nextPEMSection(data []byte) (section, rest []byte, found bool, err error) {
	start := bytes.Index(data, pemBegin)
	if start < 0 {
		return nil, nil, false, nil
	}
	data = data[start:]
	end := bytes.Index(data, pemEnd)
	if end < 0 || bytes.Contains(data[len(pemBegin):end], pemBegin) {
		return nil, nil, true, fmt.Errorf("PEM block at offset %d has no END line", start)
	}
	if nl := bytes.IndexByte(data[end:], '\n'); nl >= 0 {
		return data[:end+nl+1], data[end+nl+1:], true, nil
	}
	return data, nil, true, nil
}

// decodePEMSection decodes exactly one section, failing instead of skipping a broken body.
func decodePEMSection(section []byte) (*pem.Block, error) {
	block, rest := pem.Decode(section)
	if block == nil || len(bytes.TrimSpace(rest)) != 0 {
		return nil, errors.New("malformed PEM block")
	}
	return block, nil
}

// ReadCertificates returns every CERTIFICATE block found in r. Blocks with other labels are
// skipped; a block with broken framing or base64 body fails the whole read.
func ReadCertificates(r io.Reader) (Certificates, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindIO, err)
	}
	var certs Certificates
	for {
		section, rest, found, err := nextPEMSection(data)
		if err != nil {
			return nil, newError(KindPemParse, err)
		}
		if !found {
			return certs, nil
		}
		block, err := decodePEMSection(section)
		if err != nil {
			return nil, newError(KindPemParse, err)
		}
		if block.Type == keyutil.PEMTypeCertificate {
			certs = append(certs, block.Bytes)
		}
		data = rest
	}
}

// ReadPrivateKey decodes the first PEM block of r and nothing else. A later block is never
// considered, even when the first one is broken or not a key.
func ReadPrivateKey(r io.Reader, password []byte) (PrivateKey, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, newError(KindIO, err)
	}
	section, _, found, err := nextPEMSection(data)
	if !found {
		return nil, newError(KindNoKeyData, errors.New("no valid PEM data in key input"))
	}
	if err != nil {
		return nil, newError(KindNoKeyData, err)
	}
	block, err := decodePEMSection(section)
	if err != nil {
		return nil, newError(KindNoKeyData, err)
	}
	kb, err := parseKeyBlock(block, password)
	if err != nil {
		return nil, err
	}
	return PrivateKey(kb.der), nil
}

// parseKeyBlock accepts the three key labels. Other constructs the reader knows about are
// reported as unsupported; labels it does not know count as no key data.
func parseKeyBlock(block *pem.Block, password []byte) (*keyBlock, error) {
	switch block.Type {
	case keyutil.PEMTypeECPrivateKey:
		return &keyBlock{kind: keyKindEC, der: block.Bytes}, nil
	case keyutil.PEMTypeRSAPrivateKey:
		return &keyBlock{kind: keyKindRSA, der: block.Bytes}, nil
	case keyutil.PEMTypePrivateKey:
		return &keyBlock{kind: keyKindPKCS8, der: block.Bytes}, nil
	case keyutil.PEMTypeEncryptedPrivateKey:
		if len(password) == 0 {
			return nil, newError(KindNoKeyData, errors.New("encrypted private key without a key password"))
		}
		key, err := keyutil.ParseEncryptedPrivateKeyDER(block.Bytes, password)
		if err != nil {
			return nil, newError(KindUnsupportedKeyKind, err)
		}
		der, err := x509.MarshalPKCS8PrivateKey(key)
		if err != nil {
			return nil, newError(KindUnsupportedKeyKind, err)
		}
		return &keyBlock{kind: keyKindPKCS8, der: der}, nil
	case keyutil.PEMTypeCertificate, keyutil.PEMTypeX509CRL:
		return nil, newErrorf(KindUnsupportedKeyKind, "no private key in key input, found %q block", block.Type)
	default:
		return nil, newErrorf(KindNoKeyData, "no valid PEM data in key input, unrecognized %q block", block.Type)
	}
}
