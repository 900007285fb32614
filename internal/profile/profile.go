// Package profile loads and validates OCSP request profiles.
//
// A profile bundles the knobs of request creation: which hash algorithm the
// CertID uses, whether a nonce is added and how long it is, and an optional
// requestorName. Profiles are YAML files; a set of common ones is embedded
// in the binary (see the profiles package) and users can point at their own
// files instead.
package profile

import (
	"crypto"
	"fmt"
)

// Profile describes how an OCSP request should be built.
type Profile struct {
	Name        string
	Description string

	// Hash is the CertID hash algorithm.
	Hash crypto.Hash

	// NonceEnabled adds an id-pkix-ocsp-nonce requestExtensions entry.
	NonceEnabled bool
	// NonceSize is the nonce length in bytes.
	NonceSize int

	// RequestorName is the optional requestorName in kind:value form
	// (dns:host, email:addr, uri:..., ip:addr). Empty means absent.
	RequestorName string
}

var hashNames = map[string]crypto.Hash{
	"sha1":   crypto.SHA1,
	"sha256": crypto.SHA256,
	"sha384": crypto.SHA384,
	"sha512": crypto.SHA512,
}

// HashByName resolves a profile hash name to its crypto.Hash.
func HashByName(name string) (crypto.Hash, error) {
	h, ok := hashNames[name]
	if !ok {
		return 0, fmt.Errorf("unknown hash algorithm %q (want sha1, sha256, sha384, or sha512)", name)
	}
	return h, nil
}

// HashName returns the profile name of a hash algorithm.
func HashName(h crypto.Hash) string {
	for name, hash := range hashNames {
		if hash == h {
			return name
		}
	}
	return h.String()
}
