package session

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
)

func TestSecureFile_SealOpenRoundTrip(t *testing.T) {
	dir := t.TempDir()
	file := NewSecureFile(dir, "session")

	plaintext := []byte(`{"token":"abc"}`)
	if err := file.Seal(plaintext); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	got, err := file.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if !bytes.Equal(got, plaintext) {
		t.Errorf("Open() = %q, want %q", got, plaintext)
	}
}

func TestSecureFile_OpenMissing(t *testing.T) {
	file := NewSecureFile(t.TempDir(), "session")
	if _, err := file.Open(); !os.IsNotExist(err) {
		t.Errorf("Open() error = %v, want not-exist", err)
	}
}

func TestSecureFile_BlobIsNotPlaintext(t *testing.T) {
	dir := t.TempDir()
	file := NewSecureFile(dir, "session")

	secret := []byte(`{"token":"very-secret-token"}`)
	if err := file.Seal(secret); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	raw, err := os.ReadFile(filepath.Join(dir, "session.dat"))
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	if bytes.Contains(raw, []byte("very-secret-token")) {
		t.Error("sealed blob contains the plaintext token")
	}
}

func TestSecureFile_TamperedBlobFails(t *testing.T) {
	dir := t.TempDir()
	file := NewSecureFile(dir, "session")

	if err := file.Seal([]byte("payload")); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}

	path := filepath.Join(dir, "session.dat")
	raw, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read blob: %v", err)
	}
	raw[len(raw)-1] ^= 0xff
	if err := os.WriteFile(path, raw, 0o600); err != nil {
		t.Fatalf("write tampered blob: %v", err)
	}

	if _, err := file.Open(); err == nil {
		t.Error("Open() on tampered blob should fail")
	}
}

func TestSecureFile_RemoveIsIdempotent(t *testing.T) {
	file := NewSecureFile(t.TempDir(), "session")

	if err := file.Remove(); err != nil {
		t.Fatalf("Remove() on missing file error = %v", err)
	}
	if err := file.Seal([]byte("x")); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if err := file.Remove(); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := file.Open(); !os.IsNotExist(err) {
		t.Errorf("Open() after Remove error = %v, want not-exist", err)
	}
}

func TestSecureFile_Reseal(t *testing.T) {
	file := NewSecureFile(t.TempDir(), "session")

	if err := file.Seal([]byte("first")); err != nil {
		t.Fatalf("Seal() error = %v", err)
	}
	if err := file.Seal([]byte("second")); err != nil {
		t.Fatalf("Seal() second error = %v", err)
	}

	got, err := file.Open()
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	if string(got) != "second" {
		t.Errorf("Open() = %q, want second", got)
	}
}
