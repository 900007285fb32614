package profile

import (
	"fmt"
	"strings"

	"golang.org/x/net/publicsuffix"

	"github.com/mbaylis/ocspkit/internal/x509util"
	"github.com/mbaylis/ocspkit/pkg/ocsp"
)

const defaultNonceSize = ocsp.DefaultNonceSize

// Validate checks a profile's fields against protocol constraints.
func (p *Profile) Validate() error {
	if _, err := HashByName(HashName(p.Hash)); err != nil {
		return fmt.Errorf("profile %q: unsupported hash algorithm", p.Name)
	}

	if p.NonceEnabled {
		if p.NonceSize < ocsp.MinNonceSize || p.NonceSize > ocsp.MaxNonceSize {
			return fmt.Errorf("profile %q: nonce size %d outside allowed range [%d, %d]",
				p.Name, p.NonceSize, ocsp.MinNonceSize, ocsp.MaxNonceSize)
		}
	}

	if p.RequestorName != "" {
		if err := validateRequestorName(p.RequestorName); err != nil {
			return fmt.Errorf("profile %q: %w", p.Name, err)
		}
	}

	return nil
}

// validateRequestorName checks the kind:value form and, for DNS names,
// rejects values that are themselves public suffixes: a requestor claiming
// to be "co.uk" is never legitimate.
func validateRequestorName(name string) error {
	if _, err := x509util.ParseGeneralNameText(name); err != nil {
		return err
	}

	if value, ok := strings.CutPrefix(name, "dns:"); ok {
		host := strings.ToLower(strings.TrimSuffix(value, "."))
		if strings.Contains(host, "*") {
			return fmt.Errorf("wildcard not allowed in requestor name %q", value)
		}
		suffix, icann := publicsuffix.PublicSuffix(host)
		if icann && suffix == host {
			return fmt.Errorf("requestor name %q is a public suffix", value)
		}
	}

	return nil
}
