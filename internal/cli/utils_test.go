package cli

import (
	"bytes"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"crypto/x509/pkix"
	"encoding/pem"
	"math/big"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func testCertDER(t *testing.T) []byte {
	t.Helper()
	key, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("Failed to generate key: %v", err)
	}
	tmpl := &x509.Certificate{
		SerialNumber: big.NewInt(1),
		Subject:      pkix.Name{CommonName: "Test"},
		NotBefore:    time.Now().Add(-time.Hour),
		NotAfter:     time.Now().Add(time.Hour),
	}
	der, err := x509.CreateCertificate(rand.Reader, tmpl, tmpl, &key.PublicKey, key)
	if err != nil {
		t.Fatalf("Failed to create certificate: %v", err)
	}
	return der
}

// =============================================================================
// Certificate Loading Tests
// =============================================================================

func TestU_LoadCertFromPath_DER(t *testing.T) {
	der := testCertDER(t)
	path := filepath.Join(t.TempDir(), "cert.der")
	if err := os.WriteFile(path, der, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cert, err := LoadCertFromPath(path)
	if err != nil {
		t.Fatalf("LoadCertFromPath() error = %v", err)
	}
	if cert.Subject.CommonName != "Test" {
		t.Errorf("CommonName = %q, want Test", cert.Subject.CommonName)
	}
}

func TestU_LoadCertFromPath_PEM(t *testing.T) {
	der := testCertDER(t)
	pemData := pem.EncodeToMemory(&pem.Block{Type: "CERTIFICATE", Bytes: der})
	path := filepath.Join(t.TempDir(), "cert.pem")
	if err := os.WriteFile(path, pemData, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	cert, err := LoadCertFromPath(path)
	if err != nil {
		t.Fatalf("LoadCertFromPath() error = %v", err)
	}
	if !bytes.Equal(cert.Raw, der) {
		t.Error("Loaded certificate differs from original")
	}
}

func TestU_LoadCertFromPath_Errors(t *testing.T) {
	t.Run("[Unit] LoadCert: missing file", func(t *testing.T) {
		if _, err := LoadCertFromPath("/nonexistent/cert.pem"); err == nil {
			t.Error("Expected error for missing file")
		}
	})

	t.Run("[Unit] LoadCert: wrong PEM type", func(t *testing.T) {
		pemData := pem.EncodeToMemory(&pem.Block{Type: "PRIVATE KEY", Bytes: []byte{0x01}})
		path := filepath.Join(t.TempDir(), "key.pem")
		if err := os.WriteFile(path, pemData, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := LoadCertFromPath(path); err == nil {
			t.Error("Expected error for PRIVATE KEY block")
		}
	})

	t.Run("[Unit] LoadCert: garbage", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "garbage.der")
		if err := os.WriteFile(path, []byte("not a certificate"), 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
		if _, err := LoadCertFromPath(path); err == nil {
			t.Error("Expected error for garbage input")
		}
	})
}

func TestU_LoadCertsFromPaths(t *testing.T) {
	der := testCertDER(t)
	tmpDir := t.TempDir()

	path1 := filepath.Join(tmpDir, "a.der")
	path2 := filepath.Join(tmpDir, "b.der")
	for _, p := range []string{path1, path2} {
		if err := os.WriteFile(p, der, 0o644); err != nil {
			t.Fatalf("WriteFile() error = %v", err)
		}
	}

	certs, err := LoadCertsFromPaths([]string{path1, path2})
	if err != nil {
		t.Fatalf("LoadCertsFromPaths() error = %v", err)
	}
	if len(certs) != 2 {
		t.Errorf("Loaded %d certificates, want 2", len(certs))
	}

	if _, err := LoadCertsFromPaths([]string{path1, "/nonexistent"}); err == nil {
		t.Error("Expected error when any path fails")
	}
}

// =============================================================================
// File IO Tests
// =============================================================================

func TestU_WriteFileOrStdout_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.der")
	data := []byte{0x30, 0x03, 0x02, 0x01, 0x07}

	if err := WriteFileOrStdout(path, data); err != nil {
		t.Fatalf("WriteFileOrStdout() error = %v", err)
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("File contents = %x, want %x", got, data)
	}
}

func TestU_ReadFileOrStdin_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "in.der")
	data := []byte{0x30, 0x00}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	got, err := ReadFileOrStdin(path)
	if err != nil {
		t.Fatalf("ReadFileOrStdin() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Errorf("Contents = %x, want %x", got, data)
	}

	if _, err := ReadFileOrStdin("/nonexistent/in.der"); err == nil {
		t.Error("Expected error for missing file")
	}
}
