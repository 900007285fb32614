package ocsp

import (
	"crypto"
	"crypto/x509"
	"fmt"
)

// CreateRequest assembles an unsigned OCSP request asking for the status of
// the given certificates, all issued by issuer. The request list preserves
// the order of certs.
func CreateRequest(issuer *x509.Certificate, certs []*x509.Certificate, hash crypto.Hash) (*OCSPRequest, error) {
	if len(certs) == 0 {
		return nil, fmt.Errorf("no certificates provided")
	}

	requests := make([]Request, len(certs))
	for i, cert := range certs {
		certID, err := NewCertID(hash, issuer, cert)
		if err != nil {
			return nil, fmt.Errorf("failed to create CertID for certificate %d: %w", i, err)
		}
		requests[i] = Request{ReqCert: *certID}
	}

	return &OCSPRequest{
		TBSRequest: TBSRequest{
			Version:     VersionV1,
			RequestList: requests,
		},
	}, nil
}

// CreateRequestWithNonce assembles an unsigned OCSP request carrying the
// given nonce as a requestExtensions entry.
func CreateRequestWithNonce(issuer *x509.Certificate, certs []*x509.Certificate, hash crypto.Hash, nonce Nonce) (*OCSPRequest, error) {
	req, err := CreateRequest(issuer, certs, hash)
	if err != nil {
		return nil, err
	}

	ext, err := NonceExtension(nonce)
	if err != nil {
		return nil, err
	}
	req.TBSRequest.RequestExtensions = append(req.TBSRequest.RequestExtensions, ext)

	return req, nil
}
