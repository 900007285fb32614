// Package ocsp implements the OCSP request structures of RFC 6960 §4.1.1
// and their DER encoding.
//
// Parsing is strict DER, not merely valid BER: every OPTIONAL, DEFAULT, and
// tagged field has exactly one accepted byte-level representation, and any
// deviation (an explicitly encoded default version, trailing data, a
// non-minimal length) fails the whole parse. Encoding always produces that
// single canonical form.
//
// Structural decoding and semantic validation are separate steps: a request
// with an empty requestList or an unknown version number parses, and
// Validate reports it. Responses are out of scope for this package.
package ocsp

import (
	"bytes"
	"crypto/x509/pkix"
	"encoding/asn1"
	"errors"
	"fmt"
	"math/big"

	"golang.org/x/crypto/cryptobyte"
	cbasn1 "golang.org/x/crypto/cryptobyte/asn1"

	"github.com/mbaylis/ocspkit/internal/der"
)

// Version is the OCSP protocol version carried in TBSRequest.
type Version int

// VersionV1 is the only version defined by RFC 6960. It is the DEFAULT
// value of the version field and therefore never appears on the wire.
const VersionV1 Version = 0

func (v Version) String() string {
	return fmt.Sprintf("v%d", int(v)+1)
}

// OCSPRequest represents an OCSP request.
//
//	OCSPRequest ::= SEQUENCE {
//	    tbsRequest              TBSRequest,
//	    optionalSignature   [0] EXPLICIT Signature OPTIONAL }
type OCSPRequest struct {
	TBSRequest TBSRequest

	// OptionalSignature is nil for an unsigned (anonymous) request.
	OptionalSignature *Signature
}

// TBSRequest is the to-be-signed part of an OCSP request.
//
//	TBSRequest ::= SEQUENCE {
//	    version             [0] EXPLICIT Version DEFAULT v1,
//	    requestorName       [1] EXPLICIT GeneralName OPTIONAL,
//	    requestList             SEQUENCE OF Request,
//	    requestExtensions   [2] EXPLICIT Extensions OPTIONAL }
type TBSRequest struct {
	Version Version

	// RequestorName holds the raw GeneralName CHOICE encoding. A zero
	// RawValue means the field is absent.
	RequestorName asn1.RawValue

	// RequestList preserves wire order: each entry pairs positionally
	// with a SingleResponse in the eventual OCSP response.
	RequestList []Request

	RequestExtensions []pkix.Extension
}

// Request asks for the status of a single certificate.
//
//	Request ::= SEQUENCE {
//	    reqCert                     CertID,
//	    singleRequestExtensions [0] EXPLICIT Extensions OPTIONAL }
type Request struct {
	ReqCert                 CertID
	SingleRequestExtensions []pkix.Extension
}

// CertID identifies a certificate for which status is requested.
//
//	CertID ::= SEQUENCE {
//	    hashAlgorithm       AlgorithmIdentifier,
//	    issuerNameHash      OCTET STRING,
//	    issuerKeyHash       OCTET STRING,
//	    serialNumber        CertificateSerialNumber }
type CertID struct {
	HashAlgorithm  pkix.AlgorithmIdentifier
	IssuerNameHash []byte
	IssuerKeyHash  []byte
	SerialNumber   *big.Int
}

// Signature authenticates a TBSRequest. The signature bits cover the DER
// encoding of the TBSRequest; producing or verifying them is the caller's
// concern.
//
//	Signature ::= SEQUENCE {
//	    signatureAlgorithm      AlgorithmIdentifier,
//	    signature               BIT STRING,
//	    certs               [0] EXPLICIT SEQUENCE OF Certificate OPTIONAL }
type Signature struct {
	SignatureAlgorithm pkix.AlgorithmIdentifier
	Signature          asn1.BitString

	// Certs holds the raw DER of each certificate in the supporting
	// chain. Certificates are carried opaquely.
	Certs []asn1.RawValue
}

// ParseRequest parses a DER-encoded OCSP request. The parse is
// all-or-nothing: any malformed or non-canonical field at any nesting level
// fails the whole request. The input buffer is not retained.
func ParseRequest(data []byte) (*OCSPRequest, error) {
	var req OCSPRequest
	if err := req.Unmarshal(data); err != nil {
		return nil, fmt.Errorf("failed to parse OCSP request: %w", err)
	}
	return &req, nil
}

// Validate checks the semantic invariants that structural parsing does not
// enforce: the version must be v1 and the request list must contain at
// least one entry. An empty requestList is syntactically legal DER but
// degenerate as a protocol message.
func (req *OCSPRequest) Validate() error {
	if req.TBSRequest.Version != VersionV1 {
		return fmt.Errorf("unsupported OCSP request version: %s", req.TBSRequest.Version)
	}
	if len(req.TBSRequest.RequestList) == 0 {
		return errors.New("OCSP request contains no certificate requests")
	}
	return nil
}

// Unmarshal parses a DER-encoded OCSPRequest. On error the receiver is
// left in an undefined state.
func (req *OCSPRequest) Unmarshal(data []byte) error {
	return der.ParseSequence("OCSPRequest", bytes.Clone(data), req.fields())
}

// Marshal encodes the request to its canonical DER form.
func (req *OCSPRequest) Marshal() ([]byte, error) {
	return der.MarshalSequence(req.fields())
}

func (req *OCSPRequest) fields() []der.Field {
	return []der.Field{
		{
			Name: "tbsRequest", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				var el cryptobyte.String
				if !s.ReadASN1Element(&el, cbasn1.SEQUENCE) {
					return errors.New("malformed TBSRequest")
				}
				return der.ParseSequence("TBSRequest", el, req.TBSRequest.fields())
			},
			Marshal: func(b *cryptobyte.Builder) {
				der.AppendSequence(b, req.TBSRequest.fields())
			},
		},
		{
			Name: "optionalSignature", Tag: 0, Presence: der.Optional,
			Unmarshal: func(s *cryptobyte.String) error {
				var el cryptobyte.String
				if !s.ReadASN1Element(&el, cbasn1.SEQUENCE) {
					return errors.New("malformed Signature")
				}
				req.OptionalSignature = new(Signature)
				return der.ParseSequence("Signature", el, req.OptionalSignature.fields())
			},
			Marshal: func(b *cryptobyte.Builder) {
				der.AppendSequence(b, req.OptionalSignature.fields())
			},
			Omit: func() bool { return req.OptionalSignature == nil },
		},
	}
}

// Unmarshal parses a DER-encoded TBSRequest.
func (t *TBSRequest) Unmarshal(data []byte) error {
	return der.ParseSequence("TBSRequest", bytes.Clone(data), t.fields())
}

// Marshal encodes the TBSRequest to its canonical DER form. These are the
// bytes an optional Signature covers.
func (t *TBSRequest) Marshal() ([]byte, error) {
	return der.MarshalSequence(t.fields())
}

func (t *TBSRequest) fields() []der.Field {
	return []der.Field{
		{
			Name: "version", Tag: 0, Presence: der.Defaulted,
			Unmarshal: func(s *cryptobyte.String) error {
				var v int64
				if !s.ReadASN1Integer(&v) {
					return errors.New("malformed version")
				}
				if Version(v) == VersionV1 {
					// DER requires DEFAULT values to be omitted.
					return errors.New("explicitly encoded DEFAULT version v1")
				}
				t.Version = Version(v)
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				b.AddASN1Int64(int64(t.Version))
			},
			Omit: func() bool { return t.Version == VersionV1 },
		},
		{
			Name: "requestorName", Tag: 1, Presence: der.Optional,
			Unmarshal: func(s *cryptobyte.String) error {
				var el cryptobyte.String
				var tag cbasn1.Tag
				if !s.ReadAnyASN1Element(&el, &tag) {
					return errors.New("malformed GeneralName")
				}
				if _, err := asn1.Unmarshal(el, &t.RequestorName); err != nil {
					return errors.New("malformed GeneralName")
				}
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				b.AddBytes(t.RequestorName.FullBytes)
			},
			Omit: func() bool { return len(t.RequestorName.FullBytes) == 0 },
		},
		{
			Name: "requestList", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				var list cryptobyte.String
				if !s.ReadASN1(&list, cbasn1.SEQUENCE) {
					return errors.New("malformed SEQUENCE OF Request")
				}
				t.RequestList = nil
				for !list.Empty() {
					var el cryptobyte.String
					if !list.ReadASN1Element(&el, cbasn1.SEQUENCE) {
						return errors.New("malformed Request")
					}
					var r Request
					if err := der.ParseSequence("Request", el, r.fields()); err != nil {
						return err
					}
					t.RequestList = append(t.RequestList, r)
				}
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					for i := range t.RequestList {
						der.AppendSequence(b, t.RequestList[i].fields())
					}
				})
			},
		},
		{
			Name: "requestExtensions", Tag: 2, Presence: der.Optional,
			Unmarshal: parseExtensions(&t.RequestExtensions),
			Marshal: func(b *cryptobyte.Builder) {
				appendExtensions(b, t.RequestExtensions)
			},
			Omit: func() bool { return len(t.RequestExtensions) == 0 },
		},
	}
}

// Unmarshal parses a DER-encoded Request.
func (r *Request) Unmarshal(data []byte) error {
	return der.ParseSequence("Request", bytes.Clone(data), r.fields())
}

// Marshal encodes the Request to its canonical DER form.
func (r *Request) Marshal() ([]byte, error) {
	return der.MarshalSequence(r.fields())
}

func (r *Request) fields() []der.Field {
	return []der.Field{
		{
			Name: "reqCert", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				var el cryptobyte.String
				if !s.ReadASN1Element(&el, cbasn1.SEQUENCE) {
					return errors.New("malformed CertID")
				}
				return der.ParseSequence("CertID", el, r.ReqCert.fields())
			},
			Marshal: func(b *cryptobyte.Builder) {
				der.AppendSequence(b, r.ReqCert.fields())
			},
		},
		{
			Name: "singleRequestExtensions", Tag: 0, Presence: der.Optional,
			Unmarshal: parseExtensions(&r.SingleRequestExtensions),
			Marshal: func(b *cryptobyte.Builder) {
				appendExtensions(b, r.SingleRequestExtensions)
			},
			Omit: func() bool { return len(r.SingleRequestExtensions) == 0 },
		},
	}
}

// Unmarshal parses a DER-encoded CertID.
func (id *CertID) Unmarshal(data []byte) error {
	return der.ParseSequence("CertID", bytes.Clone(data), id.fields())
}

// Marshal encodes the CertID to its canonical DER form.
func (id *CertID) Marshal() ([]byte, error) {
	return der.MarshalSequence(id.fields())
}

func (id *CertID) fields() []der.Field {
	return []der.Field{
		{
			Name: "hashAlgorithm", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				return parseAlgorithmIdentifier(s, &id.HashAlgorithm)
			},
			Marshal: func(b *cryptobyte.Builder) {
				appendAlgorithmIdentifier(b, id.HashAlgorithm)
			},
		},
		{
			Name: "issuerNameHash", Tag: der.NoTag,
			Unmarshal: readOctetString(&id.IssuerNameHash),
			Marshal: func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(id.IssuerNameHash)
			},
		},
		{
			Name: "issuerKeyHash", Tag: der.NoTag,
			Unmarshal: readOctetString(&id.IssuerKeyHash),
			Marshal: func(b *cryptobyte.Builder) {
				b.AddASN1OctetString(id.IssuerKeyHash)
			},
		},
		{
			Name: "serialNumber", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				id.SerialNumber = new(big.Int)
				if !s.ReadASN1Integer(id.SerialNumber) {
					return errors.New("malformed serial number")
				}
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				if id.SerialNumber == nil {
					b.SetError(errors.New("ocsp: CertID has no serial number"))
					return
				}
				b.AddASN1BigInt(id.SerialNumber)
			},
		},
	}
}

// Unmarshal parses a DER-encoded Signature.
func (sig *Signature) Unmarshal(data []byte) error {
	return der.ParseSequence("Signature", bytes.Clone(data), sig.fields())
}

// Marshal encodes the Signature to its canonical DER form.
func (sig *Signature) Marshal() ([]byte, error) {
	return der.MarshalSequence(sig.fields())
}

func (sig *Signature) fields() []der.Field {
	return []der.Field{
		{
			Name: "signatureAlgorithm", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				return parseAlgorithmIdentifier(s, &sig.SignatureAlgorithm)
			},
			Marshal: func(b *cryptobyte.Builder) {
				appendAlgorithmIdentifier(b, sig.SignatureAlgorithm)
			},
		},
		{
			Name: "signature", Tag: der.NoTag,
			Unmarshal: func(s *cryptobyte.String) error {
				if !s.ReadASN1BitString(&sig.Signature) {
					return errors.New("malformed BIT STRING")
				}
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				der.AddBitString(b, sig.Signature.Bytes, sig.Signature.BitLength)
			},
		},
		{
			Name: "certs", Tag: 0, Presence: der.Optional,
			Unmarshal: func(s *cryptobyte.String) error {
				var list cryptobyte.String
				if !s.ReadASN1(&list, cbasn1.SEQUENCE) {
					return errors.New("malformed SEQUENCE OF Certificate")
				}
				// A present-but-empty list is kept distinct from an
				// absent one so re-encoding reproduces the input.
				sig.Certs = []asn1.RawValue{}
				for !list.Empty() {
					var el cryptobyte.String
					if !list.ReadASN1Element(&el, cbasn1.SEQUENCE) {
						return errors.New("malformed Certificate")
					}
					var raw asn1.RawValue
					if _, err := asn1.Unmarshal(el, &raw); err != nil {
						return errors.New("malformed Certificate")
					}
					sig.Certs = append(sig.Certs, raw)
				}
				return nil
			},
			Marshal: func(b *cryptobyte.Builder) {
				b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
					for _, c := range sig.Certs {
						b.AddBytes(c.FullBytes)
					}
				})
			},
			Omit: func() bool { return sig.Certs == nil },
		},
	}
}

// parseAlgorithmIdentifier reads an AlgorithmIdentifier, keeping any
// parameters as an opaque raw value.
func parseAlgorithmIdentifier(s *cryptobyte.String, alg *pkix.AlgorithmIdentifier) error {
	var body cryptobyte.String
	if !s.ReadASN1(&body, cbasn1.SEQUENCE) {
		return errors.New("malformed AlgorithmIdentifier")
	}
	if !body.ReadASN1ObjectIdentifier(&alg.Algorithm) {
		return errors.New("malformed algorithm OID")
	}
	if body.Empty() {
		return nil
	}
	var el cryptobyte.String
	var tag cbasn1.Tag
	if !body.ReadAnyASN1Element(&el, &tag) {
		return errors.New("malformed algorithm parameters")
	}
	if !body.Empty() {
		return errors.New("trailing data in AlgorithmIdentifier")
	}
	if _, err := asn1.Unmarshal(el, &alg.Parameters); err != nil {
		return errors.New("malformed algorithm parameters")
	}
	return nil
}

func appendAlgorithmIdentifier(b *cryptobyte.Builder, alg pkix.AlgorithmIdentifier) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		b.AddASN1ObjectIdentifier(alg.Algorithm)
		if len(alg.Parameters.FullBytes) > 0 {
			b.AddBytes(alg.Parameters.FullBytes)
		}
	})
}

func readOctetString(out *[]byte) func(s *cryptobyte.String) error {
	return func(s *cryptobyte.String) error {
		var value cryptobyte.String
		if !s.ReadASN1(&value, cbasn1.OCTET_STRING) {
			return errors.New("malformed OCTET STRING")
		}
		*out = value
		return nil
	}
}

// parseExtensions reads an RFC 5280 Extensions value. The SIZE (1..MAX)
// constraint is enforced: an empty list must be encoded as an absent field.
func parseExtensions(out *[]pkix.Extension) func(s *cryptobyte.String) error {
	return func(s *cryptobyte.String) error {
		var list cryptobyte.String
		if !s.ReadASN1(&list, cbasn1.SEQUENCE) {
			return errors.New("malformed Extensions")
		}
		if list.Empty() {
			return errors.New("empty Extensions list")
		}
		var exts []pkix.Extension
		for !list.Empty() {
			ext, err := parseExtension(&list)
			if err != nil {
				return err
			}
			exts = append(exts, ext)
		}
		*out = exts
		return nil
	}
}

func parseExtension(list *cryptobyte.String) (pkix.Extension, error) {
	var ext pkix.Extension
	var body cryptobyte.String
	if !list.ReadASN1(&body, cbasn1.SEQUENCE) {
		return ext, errors.New("malformed Extension")
	}
	if !body.ReadASN1ObjectIdentifier(&ext.Id) {
		return ext, errors.New("malformed extension OID")
	}
	if err := der.ReadOptionalBoolean(&body, &ext.Critical); err != nil {
		return ext, fmt.Errorf("extension %v: %w", ext.Id, err)
	}
	var value cryptobyte.String
	if !body.ReadASN1(&value, cbasn1.OCTET_STRING) {
		return ext, errors.New("malformed extension value")
	}
	if !body.Empty() {
		return ext, errors.New("trailing data in Extension")
	}
	ext.Value = value
	return ext, nil
}

func appendExtensions(b *cryptobyte.Builder, exts []pkix.Extension) {
	b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, ext := range exts {
			b.AddASN1(cbasn1.SEQUENCE, func(b *cryptobyte.Builder) {
				b.AddASN1ObjectIdentifier(ext.Id)
				if ext.Critical {
					b.AddASN1Boolean(true)
				}
				b.AddASN1OctetString(ext.Value)
			})
		}
	})
}
