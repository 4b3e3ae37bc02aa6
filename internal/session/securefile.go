package session

import (
	"crypto/rand"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"golang.org/x/crypto/argon2"
	"golang.org/x/crypto/chacha20poly1305"
)

// SecureFile persists small secrets sealed with a locally held key, standing
// in for the platform keychain. The key file and sealed blob live side by
// side with 0600 permissions; the sealing key is derived per write with
// argon2id over the key file contents and a fresh salt.
type SecureFile struct {
	path    string
	keyPath string
}

const (
	saltSize  = 16
	keyLength = chacha20poly1305.KeySize

	argonTime    = 1
	argonMemory  = 64 * 1024
	argonThreads = 4
)

// NewSecureFile creates a secure file rooted at dir.
func NewSecureFile(dir, name string) *SecureFile {
	return &SecureFile{
		path:    filepath.Join(dir, name+".dat"),
		keyPath: filepath.Join(dir, name+".key"),
	}
}

// Seal encrypts plaintext and writes it to disk, replacing any previous blob.
func (f *SecureFile) Seal(plaintext []byte) error {
	secret, err := f.loadOrCreateSecret()
	if err != nil {
		return err
	}

	salt := make([]byte, saltSize)
	if _, err := io.ReadFull(rand.Reader, salt); err != nil {
		return fmt.Errorf("generate salt: %w", err)
	}

	aead, err := chacha20poly1305.New(deriveKey(secret, salt))
	if err != nil {
		return fmt.Errorf("new cipher: %w", err)
	}

	nonce := make([]byte, aead.NonceSize())
	if _, err := io.ReadFull(rand.Reader, nonce); err != nil {
		return fmt.Errorf("generate nonce: %w", err)
	}

	blob := append(salt, nonce...)
	blob = aead.Seal(blob, nonce, plaintext, nil)

	if err := os.MkdirAll(filepath.Dir(f.path), 0o700); err != nil {
		return fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(f.path, blob, 0o600); err != nil {
		return fmt.Errorf("write sealed file: %w", err)
	}
	return nil
}

// Open reads and decrypts the blob. Returns os.ErrNotExist when nothing has
// been sealed yet.
func (f *SecureFile) Open() ([]byte, error) {
	blob, err := os.ReadFile(f.path)
	if err != nil {
		return nil, err
	}

	secret, err := os.ReadFile(f.keyPath)
	if err != nil {
		return nil, fmt.Errorf("read key file: %w", err)
	}

	if len(blob) < saltSize+chacha20poly1305.NonceSize {
		return nil, fmt.Errorf("sealed file truncated")
	}
	salt := blob[:saltSize]
	nonce := blob[saltSize : saltSize+chacha20poly1305.NonceSize]
	ciphertext := blob[saltSize+chacha20poly1305.NonceSize:]

	aead, err := chacha20poly1305.New(deriveKey(secret, salt))
	if err != nil {
		return nil, fmt.Errorf("new cipher: %w", err)
	}

	plaintext, err := aead.Open(nil, nonce, ciphertext, nil)
	if err != nil {
		return nil, fmt.Errorf("unseal: %w", err)
	}
	return plaintext, nil
}

// Remove deletes the sealed blob. The key file is kept so other secrets
// sealed under the same name survive reinstallation of the session.
func (f *SecureFile) Remove() error {
	if err := os.Remove(f.path); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

func (f *SecureFile) loadOrCreateSecret() ([]byte, error) {
	secret, err := os.ReadFile(f.keyPath)
	if err == nil && len(secret) == keyLength {
		return secret, nil
	}

	secret = make([]byte, keyLength)
	if _, err := io.ReadFull(rand.Reader, secret); err != nil {
		return nil, fmt.Errorf("generate key: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(f.keyPath), 0o700); err != nil {
		return nil, fmt.Errorf("create storage dir: %w", err)
	}
	if err := os.WriteFile(f.keyPath, secret, 0o600); err != nil {
		return nil, fmt.Errorf("write key file: %w", err)
	}
	return secret, nil
}

func deriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, argonTime, argonMemory, argonThreads, keyLength)
}
