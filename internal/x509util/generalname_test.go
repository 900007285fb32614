package x509util

import (
	"encoding/asn1"
	"net"
	"testing"
)

// =============================================================================
// GeneralName Text Parsing Tests
// =============================================================================

func TestU_ParseGeneralNameText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		tag  int
		out  string
	}{
		{"[Unit] GeneralName: dns", "dns:ocsp.example.org", 2, "dns:ocsp.example.org"},
		{"[Unit] GeneralName: email", "email:admin@example.org", 1, "email:admin@example.org"},
		{"[Unit] GeneralName: uri", "uri:https://ocsp.example.org/query", 6, "uri:https://ocsp.example.org/query"},
		{"[Unit] GeneralName: ipv4", "ip:192.0.2.10", 7, "ip:192.0.2.10"},
		{"[Unit] GeneralName: ipv6", "ip:2001:db8::1", 7, "ip:2001:db8::1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rv, err := ParseGeneralNameText(tt.in)
			if err != nil {
				t.Fatalf("ParseGeneralNameText(%q) failed: %v", tt.in, err)
			}
			if rv.Class != asn1.ClassContextSpecific {
				t.Errorf("Class = %d, want context-specific", rv.Class)
			}
			if rv.Tag != tt.tag {
				t.Errorf("Tag = %d, want %d", rv.Tag, tt.tag)
			}
			if len(rv.FullBytes) == 0 {
				t.Error("FullBytes not populated")
			}
			if got := FormatGeneralName(rv); got != tt.out {
				t.Errorf("FormatGeneralName = %q, want %q", got, tt.out)
			}
		})
	}
}

func TestU_ParseGeneralNameText_Errors(t *testing.T) {
	tests := []struct {
		name string
		in   string
	}{
		{"[Unit] GeneralName: missing colon", "example.org"},
		{"[Unit] GeneralName: empty value", "dns:"},
		{"[Unit] GeneralName: unknown kind", "upn:user@example.org"},
		{"[Unit] GeneralName: bad IP", "ip:999.1.1.1"},
		{"[Unit] GeneralName: email without at-sign", "email:example.org"},
		{"[Unit] GeneralName: URI without scheme", "uri:no-scheme"},
		{"[Unit] GeneralName: non-ASCII dns", "dns:bücher.example"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := ParseGeneralNameText(tt.in); err == nil {
				t.Errorf("Expected error for %q", tt.in)
			}
		})
	}
}

// =============================================================================
// GeneralName Encoding Tests
// =============================================================================

// TestU_MarshalDNSName_Wire checks the exact dNSName wire form: primitive
// [2] IA5String content.
func TestU_MarshalDNSName_Wire(t *testing.T) {
	rv, err := MarshalDNSName("a.example")
	if err != nil {
		t.Fatalf("MarshalDNSName failed: %v", err)
	}

	want := append([]byte{0x82, 0x09}, []byte("a.example")...)
	if string(rv.FullBytes) != string(want) {
		t.Errorf("FullBytes = %x, want %x", rv.FullBytes, want)
	}
	if rv.IsCompound {
		t.Error("dNSName must be primitive")
	}
}

func TestU_MarshalIPAddress_Forms(t *testing.T) {
	// IPv4 uses the 4-octet form even when handed a 16-byte slice.
	rv, err := MarshalIPAddress(net.ParseIP("192.0.2.1"))
	if err != nil {
		t.Fatalf("MarshalIPAddress failed: %v", err)
	}
	if len(rv.Bytes) != 4 {
		t.Errorf("IPv4 content length = %d, want 4", len(rv.Bytes))
	}

	rv, err = MarshalIPAddress(net.ParseIP("2001:db8::1"))
	if err != nil {
		t.Fatalf("MarshalIPAddress failed: %v", err)
	}
	if len(rv.Bytes) != 16 {
		t.Errorf("IPv6 content length = %d, want 16", len(rv.Bytes))
	}

	if _, err := MarshalIPAddress(net.IP{0x01}); err == nil {
		t.Error("Expected error for malformed IP")
	}
}

func TestU_FormatGeneralName_Unknown(t *testing.T) {
	// directoryName is constructed [4]; it is displayed, not rejected.
	rv := asn1.RawValue{
		Class:      asn1.ClassContextSpecific,
		Tag:        4,
		IsCompound: true,
		Bytes:      []byte{0x30, 0x00},
		FullBytes:  []byte{0xa4, 0x02, 0x30, 0x00},
	}
	if got := FormatGeneralName(rv); got != "[4]:3000" {
		t.Errorf("FormatGeneralName = %q, want [4]:3000", got)
	}

	// Non context-specific values fall back to a hex dump.
	rv = asn1.RawValue{Class: asn1.ClassUniversal, Tag: 12, FullBytes: []byte{0x0c, 0x01, 0x41}}
	if got := FormatGeneralName(rv); got != "unknown:0c0141" {
		t.Errorf("FormatGeneralName = %q, want unknown:0c0141", got)
	}
}
