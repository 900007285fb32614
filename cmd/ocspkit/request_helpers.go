package main

import (
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/hex"
	"fmt"
	"math/big"
	"strings"

	"github.com/mbaylis/ocspkit/internal/cli"
	"github.com/mbaylis/ocspkit/internal/profile"
	"github.com/mbaylis/ocspkit/internal/x509util"
	"github.com/mbaylis/ocspkit/pkg/ocsp"
)

// createOptions is the merged view of the create flags and an optional
// profile. Explicit flags win over profile values.
type createOptions struct {
	hash          crypto.Hash
	nonce         bool
	nonceSize     int
	requestorName string
	profileName   string
}

func (o *createOptions) nonceSizeOrZero() int {
	if !o.nonce {
		return 0
	}
	return o.nonceSize
}

func resolveCreateOptions() (*createOptions, error) {
	opts := &createOptions{
		hash:          crypto.SHA256,
		nonceSize:     ocsp.DefaultNonceSize,
		requestorName: createRequestorName,
		profileName:   createProfileName,
	}

	if createProfileName != "" {
		p, err := profile.Load(createProfileName)
		if err != nil {
			return nil, err
		}
		opts.hash = p.Hash
		opts.nonce = p.NonceEnabled
		if p.NonceSize > 0 {
			opts.nonceSize = p.NonceSize
		}
		if opts.requestorName == "" {
			opts.requestorName = p.RequestorName
		}
	}

	if createHashName != "" {
		h, err := profile.HashByName(createHashName)
		if err != nil {
			return nil, err
		}
		opts.hash = h
	}
	if createNonce {
		opts.nonce = true
	}
	if createNonceSize > 0 {
		opts.nonce = true
		opts.nonceSize = createNonceSize
	}

	return opts, nil
}

// buildRequest assembles the request list from --cert files and --serial
// values, preserving the order within each flag. It returns the request and
// the textual serial numbers for the audit trail.
func buildRequest(issuer *x509.Certificate, opts *createOptions) (*ocsp.OCSPRequest, []string, error) {
	if len(createCertPaths) == 0 && len(createSerials) == 0 {
		return nil, nil, fmt.Errorf("nothing to request: provide --cert or --serial")
	}

	var requests []ocsp.Request
	var serials []string

	if len(createCertPaths) > 0 {
		certs, err := cli.LoadCertsFromPaths(createCertPaths)
		if err != nil {
			return nil, nil, err
		}
		for i, cert := range certs {
			certID, err := ocsp.NewCertID(opts.hash, issuer, cert)
			if err != nil {
				return nil, nil, fmt.Errorf("failed to create CertID for %s: %w", createCertPaths[i], err)
			}
			requests = append(requests, ocsp.Request{ReqCert: *certID})
			serials = append(serials, cert.SerialNumber.Text(16))
		}
	}

	for _, s := range createSerials {
		serial, err := parseSerial(s)
		if err != nil {
			return nil, nil, err
		}
		certID, err := ocsp.NewCertIDFromSerial(opts.hash, issuer, serial)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to create CertID for serial %s: %w", s, err)
		}
		requests = append(requests, ocsp.Request{ReqCert: *certID})
		serials = append(serials, serial.Text(16))
	}

	return &ocsp.OCSPRequest{
		TBSRequest: ocsp.TBSRequest{
			Version:     ocsp.VersionV1,
			RequestList: requests,
		},
	}, serials, nil
}

// parseSerial parses a hex serial number, tolerating an 0x prefix and
// colon separators as produced by OpenSSL.
func parseSerial(s string) (*big.Int, error) {
	cleaned := strings.TrimPrefix(strings.ToLower(s), "0x")
	cleaned = strings.ReplaceAll(cleaned, ":", "")
	serial, ok := new(big.Int).SetString(cleaned, 16)
	if !ok {
		return nil, fmt.Errorf("invalid serial number %q", s)
	}
	return serial, nil
}

func printRequest(req *ocsp.OCSPRequest) {
	fmt.Println("OCSP Request:")
	fmt.Printf("  Version: %s\n", req.TBSRequest.Version)

	status := "unsigned"
	if req.OptionalSignature != nil {
		status = "signed"
	}
	fmt.Printf("  Signature: %s\n", cli.FormatStatus(status))

	if len(req.TBSRequest.RequestorName.FullBytes) > 0 {
		fmt.Printf("  Requestor Name: %s\n", x509util.FormatGeneralName(req.TBSRequest.RequestorName))
	}

	fmt.Printf("  Requests (%d):\n", len(req.TBSRequest.RequestList))
	for i, r := range req.TBSRequest.RequestList {
		fmt.Printf("    [%d] CertID:\n", i)
		fmt.Printf("        Hash Algorithm: %s\n", hashAlgName(&r.ReqCert))
		fmt.Printf("        Issuer Name Hash: %s\n", hex.EncodeToString(r.ReqCert.IssuerNameHash))
		fmt.Printf("        Issuer Key Hash: %s\n", hex.EncodeToString(r.ReqCert.IssuerKeyHash))
		fmt.Printf("        Serial Number: %s\n", r.ReqCert.SerialNumber.Text(16))
		printExtensions("        ", r.SingleRequestExtensions)
	}

	printExtensions("  ", req.TBSRequest.RequestExtensions)

	if n := req.Nonce(); n != nil {
		fmt.Printf("  Nonce: %s\n", hex.EncodeToString(n))
	}

	if sig := req.OptionalSignature; sig != nil {
		fmt.Printf("  Signature Algorithm: %s\n", sig.SignatureAlgorithm.Algorithm)
		fmt.Printf("  Signature: %d bits\n", sig.Signature.BitLength)
		if len(sig.Certs) > 0 {
			fmt.Printf("  Certificates: %d\n", len(sig.Certs))
		}
	}

	if err := req.Validate(); err != nil {
		fmt.Printf("  Warning: %s (%s)\n", err, cli.FormatStatus("degenerate"))
	}
}

func printExtensions(indent string, exts []pkix.Extension) {
	if len(exts) == 0 {
		return
	}
	fmt.Printf("%sExtensions:\n", indent)
	for _, ext := range exts {
		critical := ""
		if ext.Critical {
			critical = " (critical)"
		}
		fmt.Printf("%s  - %s%s, %d bytes\n", indent, ext.Id, critical, len(ext.Value))
	}
}

func hashAlgName(id *ocsp.CertID) string {
	switch {
	case id.HashAlgorithm.Algorithm.Equal(ocsp.OIDSHA1):
		return "sha1"
	case id.HashAlgorithm.Algorithm.Equal(ocsp.OIDSHA256):
		return "sha256"
	case id.HashAlgorithm.Algorithm.Equal(ocsp.OIDSHA384):
		return "sha384"
	case id.HashAlgorithm.Algorithm.Equal(ocsp.OIDSHA512):
		return "sha512"
	default:
		return id.HashAlgorithm.Algorithm.String()
	}
}
