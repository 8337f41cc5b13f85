package storage

import (
	"bytes"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"

	"filippo.io/age"
)

const (
	// ageHeader is the prefix of age-encrypted files
	ageHeader = "age-encryption.org"

	// markerFile indicates encryption is enabled
	markerFile = ".encrypted"

	// verifyFile is used to validate the passphrase
	verifyFile = ".encryption-verify"

	// verifyMagic is the expected content in the verify file
	verifyMagic = `{"magic":"budgeteer-encryption-verify","version":1}`
)

// Crypt provides transparent encrypted/unencrypted file access under a
// base directory. With encryption off it is a plain atomic-write file
// layer; with encryption on, reads and writes pass through age with a
// passphrase-derived key held in memory after Unlock.
type Crypt struct {
	baseDir   string
	encrypted bool
	identity  *age.ScryptIdentity
	recipient *age.ScryptRecipient
	mu        sync.RWMutex
}

// NewCrypt creates a Crypt for the given base directory, detecting
// whether encryption was previously enabled.
func NewCrypt(baseDir string) (*Crypt, error) {
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return nil, fmt.Errorf("creating data directory: %w", err)
	}

	c := &Crypt{baseDir: baseDir}

	markerPath := filepath.Join(baseDir, markerFile)
	if _, err := os.Stat(markerPath); err == nil {
		c.encrypted = true
	}

	return c, nil
}

// BaseDir returns the base directory
func (c *Crypt) BaseDir() string {
	return c.baseDir
}

// IsEncrypted returns true if the data directory is encrypted
func (c *Crypt) IsEncrypted() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.encrypted
}

// IsUnlocked returns true if the directory is readable: either
// encryption is off, or the key has been loaded via Unlock.
func (c *Crypt) IsUnlocked() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return !c.encrypted || c.identity != nil
}

// Unlock derives the key from the passphrase and verifies it against
// the verification file before holding it in memory.
func (c *Crypt) Unlock(passphrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.encrypted {
		return nil // Nothing to unlock
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	verifyPath := filepath.Join(c.baseDir, verifyFile)
	encrypted, err := os.ReadFile(verifyPath)
	if err != nil {
		return fmt.Errorf("failed to read verification file: %w", err)
	}

	decrypted, err := decryptData(encrypted, identity)
	if err != nil {
		return fmt.Errorf("incorrect passphrase")
	}
	if string(decrypted) != verifyMagic {
		return fmt.Errorf("incorrect passphrase (verification failed)")
	}

	c.identity = identity
	c.recipient, _ = age.NewScryptRecipient(passphrase)

	return nil
}

// Lock clears the encryption key from memory
func (c *Crypt) Lock() {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.identity = nil
	c.recipient = nil
}

// ReadFile reads and optionally decrypts a file
func (c *Crypt) ReadFile(path string) ([]byte, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	if isAgeEncrypted(data) {
		if c.identity == nil {
			return nil, fmt.Errorf("%s: %w", filepath.Base(path), ErrLocked)
		}
		return decryptData(data, c.identity)
	}

	return data, nil
}

// WriteFile writes and optionally encrypts a file. Writing to an
// encrypted but locked directory is refused rather than silently
// producing plaintext.
func (c *Crypt) WriteFile(path string, data []byte, perm os.FileMode) error {
	c.mu.RLock()
	defer c.mu.RUnlock()

	if isMetadataFile(path) {
		return atomicWrite(path, data, perm)
	}

	if c.encrypted {
		if c.recipient == nil {
			return fmt.Errorf("%s: %w", filepath.Base(path), ErrLocked)
		}
		encrypted, err := encryptData(data, c.recipient)
		if err != nil {
			return fmt.Errorf("failed to encrypt: %w", err)
		}
		data = encrypted
	}

	return atomicWrite(path, data, perm)
}

// atomicWrite writes data to a file atomically using a temp file
func atomicWrite(path string, data []byte, perm os.FileMode) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}

	tmpPath := path + ".tmp"
	if err := os.WriteFile(tmpPath, data, perm); err != nil {
		return err
	}

	return os.Rename(tmpPath, path)
}

// isMetadataFile reports files that must stay plaintext: the marker and
// the verification file.
func isMetadataFile(path string) bool {
	base := filepath.Base(path)
	return base == markerFile || base == verifyFile
}

// isAgeEncrypted checks if data starts with the age encryption header
func isAgeEncrypted(data []byte) bool {
	return len(data) > len(ageHeader) && string(data[:len(ageHeader)]) == ageHeader
}

// encryptData encrypts data using age with the given recipient
func encryptData(data []byte, recipient *age.ScryptRecipient) ([]byte, error) {
	var buf bytes.Buffer

	w, err := age.Encrypt(&buf, recipient)
	if err != nil {
		return nil, err
	}

	if _, err := w.Write(data); err != nil {
		return nil, err
	}

	if err := w.Close(); err != nil {
		return nil, err
	}

	return buf.Bytes(), nil
}

// decryptData decrypts age-encrypted data using the given identity
func decryptData(data []byte, identity *age.ScryptIdentity) ([]byte, error) {
	r, err := age.Decrypt(bytes.NewReader(data), identity)
	if err != nil {
		return nil, err
	}

	return io.ReadAll(r)
}
