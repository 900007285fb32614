// Package der provides a table-driven codec for DER SEQUENCE structures.
//
// ASN.1 modules such as RFC 6960 describe sequences whose fields carry
// context-specific tags, EXPLICIT tagging, and OPTIONAL/DEFAULT presence
// rules. Rather than hand-writing that logic per structure, each structure
// declares a slice of Field descriptors and hands it to ParseSequence and
// AppendSequence. Parsing is strict DER: every deviation from the single
// canonical encoding (trailing data, explicitly encoded DEFAULT values,
// non-minimal lengths) is an error.
//
// The low-level tag/length/value handling is golang.org/x/crypto/cryptobyte,
// which already enforces minimal-length encodings.
package der

import (
	"errors"
	"fmt"

	"golang.org/x/crypto/cryptobyte"
	"golang.org/x/crypto/cryptobyte/asn1"
)

// NoTag marks a field encoded under its type's own universal tag, with no
// context-specific wrapper.
const NoTag = -1

// Presence describes a field's presence policy within its SEQUENCE.
type Presence int

const (
	// Required fields must be present.
	Required Presence = iota
	// Optional fields may be absent.
	Optional
	// Defaulted fields must be absent when they carry the DEFAULT value.
	// The field's Unmarshal func is responsible for rejecting an
	// explicitly encoded default, since only it knows the value.
	Defaulted
)

// Field describes one field of a SEQUENCE.
//
// All context-tagged fields in this module use EXPLICIT tagging: the wrapper
// [n] tag contains the field's complete inner encoding. IMPLICIT fields
// would need their own descriptor mode; none of the structures handled here
// use them.
type Field struct {
	// Name is the ASN.1 field name, used in error messages.
	Name string

	// Tag is the context-specific tag number, or NoTag.
	Tag int

	// Presence is the field's presence policy. Untagged fields (Tag ==
	// NoTag) are always Required: without a distinguishing tag their
	// absence cannot be detected greedily.
	Presence Presence

	// Unmarshal decodes the field's value. For context-tagged fields the
	// cursor holds the contents of the [n] EXPLICIT wrapper and must be
	// consumed entirely; for untagged fields it is positioned at the
	// field's own tag within the enclosing SEQUENCE body.
	Unmarshal func(s *cryptobyte.String) error

	// Marshal appends the field's inner encoding. The context wrapper,
	// if any, is added by AppendSequence.
	Marshal func(b *cryptobyte.Builder)

	// Omit reports whether encoding should skip the field entirely
	// (absent OPTIONAL value or DEFAULT-valued field). Nil means never
	// omit.
	Omit func() bool
}

func contextTag(n int) asn1.Tag {
	return asn1.Tag(n).Constructed().ContextSpecific()
}

// ParseSequence parses input as a single SEQUENCE holding the given fields.
// The whole input must be consumed; name is used to prefix errors.
func ParseSequence(name string, input []byte, fields []Field) error {
	s := cryptobyte.String(input)
	var body cryptobyte.String
	if !s.ReadASN1(&body, asn1.SEQUENCE) {
		return fmt.Errorf("%s: malformed SEQUENCE", name)
	}
	if !s.Empty() {
		return fmt.Errorf("%s: trailing data after SEQUENCE", name)
	}
	return parseFields(name, &body, fields)
}

func parseFields(name string, body *cryptobyte.String, fields []Field) error {
	for _, f := range fields {
		if f.Tag == NoTag {
			if err := f.Unmarshal(body); err != nil {
				return fmt.Errorf("%s.%s: %w", name, f.Name, err)
			}
			continue
		}

		var inner cryptobyte.String
		var present bool
		if !body.ReadOptionalASN1(&inner, &present, contextTag(f.Tag)) {
			return fmt.Errorf("%s.%s: malformed [%d] field", name, f.Name, f.Tag)
		}
		if !present {
			if f.Presence == Required {
				return fmt.Errorf("%s.%s: missing required field", name, f.Name)
			}
			continue
		}
		if err := f.Unmarshal(&inner); err != nil {
			return fmt.Errorf("%s.%s: %w", name, f.Name, err)
		}
		if !inner.Empty() {
			return fmt.Errorf("%s.%s: trailing data inside [%d] field", name, f.Name, f.Tag)
		}
	}
	if !body.Empty() {
		return fmt.Errorf("%s: trailing data after last field", name)
	}
	return nil
}

// AppendSequence appends the DER encoding of a SEQUENCE holding the given
// fields, wrapping context-tagged fields in their [n] EXPLICIT tag and
// skipping fields whose Omit reports true.
func AppendSequence(b *cryptobyte.Builder, fields []Field) {
	b.AddASN1(asn1.SEQUENCE, func(b *cryptobyte.Builder) {
		for _, f := range fields {
			if f.Omit != nil && f.Omit() {
				continue
			}
			if f.Tag == NoTag {
				f.Marshal(b)
				continue
			}
			b.AddASN1(contextTag(f.Tag), f.Marshal)
		}
	})
}

// MarshalSequence encodes a SEQUENCE holding the given fields.
func MarshalSequence(fields []Field) ([]byte, error) {
	var b cryptobyte.Builder
	AppendSequence(&b, fields)
	return b.Bytes()
}

// ReadOptionalBoolean reads a BOOLEAN DEFAULT FALSE field. An absent field
// yields false. An explicitly encoded FALSE violates DER canonicality and
// is rejected, as is any content byte other than 0xFF for TRUE.
func ReadOptionalBoolean(s *cryptobyte.String, out *bool) error {
	*out = false
	if !s.PeekASN1Tag(asn1.BOOLEAN) {
		return nil
	}
	var contents cryptobyte.String
	if !s.ReadASN1(&contents, asn1.BOOLEAN) || len(contents) != 1 {
		return errors.New("malformed BOOLEAN")
	}
	switch contents[0] {
	case 0xff:
		*out = true
		return nil
	case 0x00:
		return errors.New("BOOLEAN DEFAULT FALSE encoded explicitly")
	default:
		return errors.New("non-canonical BOOLEAN value")
	}
}

// AddBitString appends a BIT STRING with an arbitrary bit length. The
// content octets are prefixed with the unused-bit count required by X.690;
// unused bits in the final octet must already be zero for the encoding to
// be canonical.
func AddBitString(b *cryptobyte.Builder, bytes []byte, bitLength int) {
	if bitLength < 0 || bitLength > len(bytes)*8 || len(bytes)*8-bitLength >= 8 {
		b.SetError(fmt.Errorf("der: bit length %d does not fit %d content bytes", bitLength, len(bytes)))
		return
	}
	b.AddASN1(asn1.BIT_STRING, func(b *cryptobyte.Builder) {
		b.AddUint8(uint8(len(bytes)*8 - bitLength))
		b.AddBytes(bytes)
	})
}
