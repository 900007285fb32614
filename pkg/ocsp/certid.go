package ocsp

import (
	"bytes"
	"crypto"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/asn1"
	"fmt"
	"math/big"

	_ "crypto/sha1" // CertID hash algorithms
	_ "crypto/sha256"
	_ "crypto/sha512"
)

func oidForHash(h crypto.Hash) (asn1.ObjectIdentifier, bool) {
	switch h {
	case crypto.SHA1:
		return OIDSHA1, true
	case crypto.SHA256:
		return OIDSHA256, true
	case crypto.SHA384:
		return OIDSHA384, true
	case crypto.SHA512:
		return OIDSHA512, true
	}
	return nil, false
}

func hashForOID(oid asn1.ObjectIdentifier) (crypto.Hash, bool) {
	switch {
	case oid.Equal(OIDSHA1):
		return crypto.SHA1, true
	case oid.Equal(OIDSHA256):
		return crypto.SHA256, true
	case oid.Equal(OIDSHA384):
		return crypto.SHA384, true
	case oid.Equal(OIDSHA512):
		return crypto.SHA512, true
	}
	return 0, false
}

// NewCertID creates a CertID for a certificate issued by the given issuer.
func NewCertID(hash crypto.Hash, issuer, cert *x509.Certificate) (*CertID, error) {
	return NewCertIDFromSerial(hash, issuer, cert.SerialNumber)
}

// NewCertIDFromSerial creates a CertID for a serial number under the given
// issuer. The issuer name hash covers the DER of the issuer's subject name;
// the key hash covers the value bits of the subjectPublicKey field in the
// issuer's SubjectPublicKeyInfo, tag and length excluded (RFC 6960 §4.1.1,
// matching how SubjectKeyIdentifier is computed).
func NewCertIDFromSerial(hash crypto.Hash, issuer *x509.Certificate, serial *big.Int) (*CertID, error) {
	oid, ok := oidForHash(hash)
	if !ok || !hash.Available() {
		return nil, fmt.Errorf("unsupported hash algorithm: %v", hash)
	}
	if serial == nil {
		return nil, fmt.Errorf("nil serial number")
	}

	h := hash.New()
	h.Write(issuer.RawSubject)
	nameHash := h.Sum(nil)

	var spki struct {
		Algorithm pkix.AlgorithmIdentifier
		PublicKey asn1.BitString
	}
	if _, err := asn1.Unmarshal(issuer.RawSubjectPublicKeyInfo, &spki); err != nil {
		return nil, fmt.Errorf("failed to parse issuer SubjectPublicKeyInfo: %w", err)
	}
	h.Reset()
	h.Write(spki.PublicKey.Bytes)
	keyHash := h.Sum(nil)

	return &CertID{
		HashAlgorithm:  pkix.AlgorithmIdentifier{Algorithm: oid},
		IssuerNameHash: nameHash,
		IssuerKeyHash:  keyHash,
		SerialNumber:   new(big.Int).Set(serial),
	}, nil
}

// Matches reports whether the CertID identifies the certificate with the
// given serial number issued by issuer.
func (id *CertID) Matches(issuer *x509.Certificate, serial *big.Int) bool {
	if id.SerialNumber == nil || serial == nil || id.SerialNumber.Cmp(serial) != 0 {
		return false
	}
	return id.MatchesIssuer(issuer)
}

// MatchesIssuer reports whether the CertID's issuer hashes match the given
// issuer certificate under the CertID's own hash algorithm.
func (id *CertID) MatchesIssuer(issuer *x509.Certificate) bool {
	hash, ok := hashForOID(id.HashAlgorithm.Algorithm)
	if !ok {
		return false
	}
	expected, err := NewCertIDFromSerial(hash, issuer, big.NewInt(0))
	if err != nil {
		return false
	}
	return bytes.Equal(id.IssuerNameHash, expected.IssuerNameHash) &&
		bytes.Equal(id.IssuerKeyHash, expected.IssuerKeyHash)
}
