package ocsp

import (
	"bytes"
	"testing"
)

// FuzzParseRequest tests that parsing arbitrary OCSP request data doesn't
// panic, and that any accepted input re-encodes byte-identically: strict
// decoding admits canonical DER only.
func FuzzParseRequest(f *testing.F) {
	// Seed corpus with valid and edge case inputs
	f.Add([]byte{0x30, 0x00})                   // Empty SEQUENCE
	f.Add([]byte{0x30, 0x04, 0x30, 0x02, 0x30, 0x00}) // Degenerate request, empty list
	f.Add([]byte{0x30, 0x03, 0x30, 0x01, 0x00}) // Nested SEQUENCE
	f.Add([]byte{0x30, 0x80})                   // Indefinite length
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})       // Null bytes
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})       // All 1s
	f.Add([]byte{0xa0, 0x00})                   // Context-specific tag
	// Explicitly encoded default version, must be rejected
	f.Add([]byte{0x30, 0x09, 0x30, 0x07, 0xa0, 0x03, 0x02, 0x01, 0x00, 0x30, 0x00})

	f.Fuzz(func(t *testing.T, data []byte) {
		req, err := ParseRequest(data)
		if err != nil {
			return
		}
		der, err := req.Marshal()
		if err != nil {
			t.Fatalf("Accepted input failed to re-encode: %v", err)
		}
		if !bytes.Equal(der, data) {
			t.Errorf("Re-encoding differs from accepted input:\n  in: %x\n out: %x", data, der)
		}
	})
}

// FuzzUnmarshalCertID tests that parsing arbitrary CertID data doesn't panic.
func FuzzUnmarshalCertID(f *testing.F) {
	f.Add([]byte{0x30, 0x00})
	f.Add([]byte{0x30, 0x03, 0x02, 0x01, 0x00})
	f.Add([]byte{0x30, 0x80})
	f.Add([]byte{0x00, 0x00, 0x00, 0x00})
	f.Add([]byte{0xff, 0xff, 0xff, 0xff})

	f.Fuzz(func(t *testing.T, data []byte) {
		var id CertID
		_ = id.Unmarshal(data)
	})
}
