package storage

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"filippo.io/age"
)

// EnableEncryption encrypts all JSON documents under the base directory
// with the given passphrase.
func (c *Crypt) EnableEncryption(passphrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.encrypted {
		return fmt.Errorf("encryption is already enabled")
	}

	if len(passphrase) < 8 {
		return fmt.Errorf("passphrase must be at least 8 characters")
	}

	recipient, err := age.NewScryptRecipient(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create recipient: %w", err)
	}

	identity, err := age.NewScryptIdentity(passphrase)
	if err != nil {
		return fmt.Errorf("failed to create identity: %w", err)
	}

	// Create verification file first
	verifyPath := filepath.Join(c.baseDir, verifyFile)
	encrypted, err := encryptData([]byte(verifyMagic), recipient)
	if err != nil {
		return fmt.Errorf("failed to encrypt verification file: %w", err)
	}
	if err := os.WriteFile(verifyPath, encrypted, 0o644); err != nil {
		return fmt.Errorf("failed to write verification file: %w", err)
	}

	// Collect documents to encrypt
	var toEncrypt []string
	err = filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() || isMetadataFile(path) {
			return nil
		}
		if strings.ToLower(filepath.Ext(path)) == ".json" {
			toEncrypt = append(toEncrypt, path)
		}
		return nil
	})
	if err != nil {
		os.Remove(verifyPath)
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for _, path := range toEncrypt {
		if err := encryptFile(path, recipient); err != nil {
			// Best-effort rollback of anything already converted
			rollbackEncryption(toEncrypt, identity)
			os.Remove(verifyPath)
			return fmt.Errorf("failed to encrypt %s: %w", filepath.Base(path), err)
		}
	}

	markerPath := filepath.Join(c.baseDir, markerFile)
	if err := os.WriteFile(markerPath, []byte("encrypted"), 0o644); err != nil {
		return fmt.Errorf("failed to create marker file: %w", err)
	}

	c.encrypted = true
	c.identity = identity
	c.recipient = recipient

	return nil
}

// DisableEncryption decrypts all documents in place. The current
// passphrase is verified before anything is touched.
func (c *Crypt) DisableEncryption(passphrase string) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if !c.encrypted {
		return fmt.Errorf("encryption is not enabled")
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
		return fmt.Errorf("incorrect passphrase")
	}

	var toDecrypt []string
	err = filepath.Walk(c.baseDir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return nil // Skip unreadable files
		}
		if isAgeEncrypted(data) {
			toDecrypt = append(toDecrypt, path)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to scan files: %w", err)
	}

	for _, path := range toDecrypt {
		if err := decryptFile(path, identity); err != nil {
			return fmt.Errorf("failed to decrypt %s: %w", filepath.Base(path), err)
		}
	}

	os.Remove(filepath.Join(c.baseDir, markerFile))
	os.Remove(verifyPath)

	c.encrypted = false
	c.identity = nil
	c.recipient = nil

	return nil
}

// encryptFile encrypts a single file in place
func encryptFile(path string, recipient *age.ScryptRecipient) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if isAgeEncrypted(data) {
		return nil
	}

	encrypted, err := encryptData(data, recipient)
	if err != nil {
		return err
	}

	return atomicWrite(path, encrypted, 0o644)
}

// decryptFile decrypts a single file in place
func decryptFile(path string, identity *age.ScryptIdentity) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}

	if !isAgeEncrypted(data) {
		return nil
	}

	decrypted, err := decryptData(data, identity)
	if err != nil {
		return err
	}

	return atomicWrite(path, decrypted, 0o644)
}

// rollbackEncryption reverts files converted during a failed enable
func rollbackEncryption(files []string, identity *age.ScryptIdentity) {
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil || !isAgeEncrypted(data) {
			continue
		}

		decrypted, err := decryptData(data, identity)
		if err != nil {
			continue
		}

		os.WriteFile(path, decrypted, 0o644)
	}
}
