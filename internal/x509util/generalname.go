// Package x509util provides helpers for the X.509 name structures an OCSP
// request carries, mainly the GeneralName CHOICE used by requestorName.
package x509util

import (
	"encoding/asn1"
	"encoding/hex"
	"fmt"
	"net"
	"net/url"
	"strings"
	"unicode"
)

// GeneralName CHOICE tags per RFC 5280 §4.2.1.6.
const (
	nameTypeEmail = 1
	nameTypeDNS   = 2
	nameTypeURI   = 6
	nameTypeIP    = 7
)

// MarshalDNSName encodes a dNSName GeneralName.
func MarshalDNSName(name string) (asn1.RawValue, error) {
	if err := checkIA5String(name); err != nil {
		return asn1.RawValue{}, fmt.Errorf("invalid DNS name %q: %w", name, err)
	}
	return marshalTagged(nameTypeDNS, []byte(name))
}

// MarshalEmailAddress encodes an rfc822Name GeneralName.
func MarshalEmailAddress(email string) (asn1.RawValue, error) {
	if err := checkIA5String(email); err != nil {
		return asn1.RawValue{}, fmt.Errorf("invalid email address %q: %w", email, err)
	}
	if !strings.Contains(email, "@") {
		return asn1.RawValue{}, fmt.Errorf("invalid email address %q", email)
	}
	return marshalTagged(nameTypeEmail, []byte(email))
}

// MarshalURI encodes a uniformResourceIdentifier GeneralName.
func MarshalURI(uri string) (asn1.RawValue, error) {
	if err := checkIA5String(uri); err != nil {
		return asn1.RawValue{}, fmt.Errorf("invalid URI %q: %w", uri, err)
	}
	u, err := url.Parse(uri)
	if err != nil || u.Scheme == "" {
		return asn1.RawValue{}, fmt.Errorf("invalid URI %q", uri)
	}
	return marshalTagged(nameTypeURI, []byte(uri))
}

// MarshalIPAddress encodes an iPAddress GeneralName.
func MarshalIPAddress(ip net.IP) (asn1.RawValue, error) {
	content := ip.To4()
	if content == nil {
		content = ip.To16()
	}
	if content == nil {
		return asn1.RawValue{}, fmt.Errorf("invalid IP address %v", ip)
	}
	return marshalTagged(nameTypeIP, content)
}

// ParseGeneralNameText builds a GeneralName from its textual "kind:value"
// form: dns:host, email:addr, uri:scheme://..., ip:address.
func ParseGeneralNameText(s string) (asn1.RawValue, error) {
	kind, value, ok := strings.Cut(s, ":")
	if !ok || value == "" {
		return asn1.RawValue{}, fmt.Errorf("general name %q must have the form kind:value", s)
	}
	switch kind {
	case "dns":
		return MarshalDNSName(value)
	case "email":
		return MarshalEmailAddress(value)
	case "uri":
		return MarshalURI(value)
	case "ip":
		ip := net.ParseIP(value)
		if ip == nil {
			return asn1.RawValue{}, fmt.Errorf("invalid IP address %q", value)
		}
		return MarshalIPAddress(ip)
	default:
		return asn1.RawValue{}, fmt.Errorf("unsupported general name kind %q (want dns, email, uri, or ip)", kind)
	}
}

// FormatGeneralName renders a GeneralName for display, mirroring the
// kind:value form accepted by ParseGeneralNameText. Name forms this package
// does not build (directoryName, otherName, ...) are shown as a tagged hex
// dump rather than rejected.
func FormatGeneralName(rv asn1.RawValue) string {
	if rv.Class != asn1.ClassContextSpecific {
		return fmt.Sprintf("unknown:%s", hex.EncodeToString(rv.FullBytes))
	}
	switch rv.Tag {
	case nameTypeEmail:
		return "email:" + string(rv.Bytes)
	case nameTypeDNS:
		return "dns:" + string(rv.Bytes)
	case nameTypeURI:
		return "uri:" + string(rv.Bytes)
	case nameTypeIP:
		if ip := net.IP(rv.Bytes); ip.To16() != nil {
			return "ip:" + ip.String()
		}
		return "ip:" + hex.EncodeToString(rv.Bytes)
	default:
		return fmt.Sprintf("[%d]:%s", rv.Tag, hex.EncodeToString(rv.Bytes))
	}
}

func marshalTagged(tag int, contents []byte) (asn1.RawValue, error) {
	full, err := asn1.Marshal(asn1.RawValue{
		Class: asn1.ClassContextSpecific,
		Tag:   tag,
		Bytes: contents,
	})
	if err != nil {
		return asn1.RawValue{}, fmt.Errorf("failed to marshal general name: %w", err)
	}
	var out asn1.RawValue
	if _, err := asn1.Unmarshal(full, &out); err != nil {
		return asn1.RawValue{}, fmt.Errorf("failed to re-parse general name: %w", err)
	}
	return out, nil
}

func checkIA5String(s string) error {
	for _, r := range s {
		if r > unicode.MaxASCII {
			return fmt.Errorf("character %q is not IA5", r)
		}
	}
	if s == "" {
		return fmt.Errorf("empty value")
	}
	return nil
}
