package ocsp

import (
	"crypto/rand"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
)

// Nonce is the replay-protection value carried in the id-pkix-ocsp-nonce
// request extension (RFC 8954). It is a derived view over the extension
// list, not a stored field.
type Nonce []byte

// Nonce size bounds per RFC 8954 §2.1.
const (
	MinNonceSize = 1
	MaxNonceSize = 32

	// DefaultNonceSize is used when callers do not care; RFC 8954
	// recommends at least 16 octets.
	DefaultNonceSize = 16
)

// Nonce returns the request's nonce value, if any.
//
// Absent requestExtensions, no extension with the nonce OID, and a nonce
// extension whose value is not a well-formed OCTET STRING all uniformly
// yield nil: a malformed nonce is observably indistinguishable from a
// missing one. Callers that need to tell them apart must inspect
// RequestExtensions directly. If several extensions carry the nonce OID
// (malformed input), only the first in encoded order is considered.
func (t *TBSRequest) Nonce() Nonce {
	for _, ext := range t.RequestExtensions {
		if ext.Id.Equal(OIDOcspNonce) {
			var n []byte
			rest, err := asn1.Unmarshal(ext.Value, &n)
			if err != nil || len(rest) > 0 {
				return nil
			}
			return n
		}
	}
	return nil
}

// Nonce returns the nonce of the embedded TBSRequest. See
// TBSRequest.Nonce for the folding of absent and malformed nonces.
func (req *OCSPRequest) Nonce() Nonce {
	return req.TBSRequest.Nonce()
}

// NewNonce generates a random nonce of the given size in bytes.
func NewNonce(size int) (Nonce, error) {
	if size < MinNonceSize || size > MaxNonceSize {
		return nil, fmt.Errorf("nonce size %d outside allowed range [%d, %d]", size, MinNonceSize, MaxNonceSize)
	}
	n := make(Nonce, size)
	if _, err := rand.Read(n); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}
	return n, nil
}

// NonceExtension wraps a nonce value in its request extension form: the
// extension value is the DER encoding of an OCTET STRING holding the nonce
// bytes.
func NonceExtension(n Nonce) (pkix.Extension, error) {
	if len(n) < MinNonceSize || len(n) > MaxNonceSize {
		return pkix.Extension{}, fmt.Errorf("nonce size %d outside allowed range [%d, %d]", len(n), MinNonceSize, MaxNonceSize)
	}
	value, err := asn1.Marshal([]byte(n))
	if err != nil {
		return pkix.Extension{}, fmt.Errorf("failed to marshal nonce: %w", err)
	}
	return pkix.Extension{
		Id:    OIDOcspNonce,
		Value: value,
	}, nil
}
