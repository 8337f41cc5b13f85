package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"budgeteer/internal/config"
	"budgeteer/internal/services/storage"
)

var storeCmd = &cobra.Command{
	Use:   "store",
	Short: "Manage the on-disk data store",
}

var storeStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show store backend and encryption state",
	RunE:  runStoreStatus,
}

var storeEncryptCmd = &cobra.Command{
	Use:   "encrypt",
	Short: "Encrypt the file store with a passphrase",
	RunE:  runStoreEncrypt,
}

var storeDecryptCmd = &cobra.Command{
	Use:   "decrypt",
	Short: "Decrypt the file store back to plaintext JSON",
	RunE:  runStoreDecrypt,
}

func init() {
	storeCmd.AddCommand(storeStatusCmd)
	storeCmd.AddCommand(storeEncryptCmd)
	storeCmd.AddCommand(storeDecryptCmd)
}

func runStoreStatus(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	if cfg.Store.Backend == "sqlite" {
		fmt.Printf("  Backend: sqlite\n")
		fmt.Printf("  Database: %s\n", cfg.SQLitePath())
		return nil
	}

	crypt, err := fileCrypt(cfg)
	if err != nil {
		return err
	}

	fmt.Printf("  Backend: file\n")
	fmt.Printf("  Data directory: %s\n", cfg.DataDirectory)
	if crypt.IsEncrypted() {
		fmt.Printf("  Encryption: enabled (age scrypt)\n")
	} else {
		fmt.Printf("  Encryption: disabled\n")
	}
	return nil
}

func runStoreEncrypt(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	crypt, err := fileCrypt(cfg)
	if err != nil {
		return err
	}
	if crypt.IsEncrypted() {
		return errors.New("store is already encrypted")
	}

	pass, err := readPassphrase("New passphrase: ", true)
	if err != nil {
		return err
	}
	if err := crypt.EnableEncryption(pass); err != nil {
		return err
	}

	fmt.Printf("  Encrypted documents under %s\n", cfg.DataDirectory)
	return nil
}

func runStoreDecrypt(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	crypt, err := fileCrypt(cfg)
	if err != nil {
		return err
	}
	if !crypt.IsEncrypted() {
		return errors.New("store is not encrypted")
	}

	pass, err := readPassphrase("Passphrase: ", false)
	if err != nil {
		return err
	}
	if err := crypt.DisableEncryption(pass); err != nil {
		return err
	}

	fmt.Printf("  Decrypted documents under %s\n", cfg.DataDirectory)
	return nil
}

// fileCrypt opens the file-backend encryption manager. Encryption at
// rest does not apply to the sqlite backend.
func fileCrypt(cfg *config.Config) (*storage.Crypt, error) {
	if cfg.Store.Backend == "sqlite" {
		return nil, errors.New("encryption at rest applies to the file backend only")
	}
	fs, err := storage.NewFileStore(cfg.DataDirectory)
	if err != nil {
		return nil, err
	}
	return fs.Crypt(), nil
}

// readPassphrase takes the passphrase from BUDGETEER_PASSPHRASE when
// set, otherwise prompts on the terminal with echo disabled.
func readPassphrase(prompt string, confirm bool) (string, error) {
	if pass := os.Getenv("BUDGETEER_PASSPHRASE"); pass != "" {
		return pass, nil
	}
	fd := int(os.Stdin.Fd())
	if !term.IsTerminal(fd) {
		return "", errors.New("stdin is not a terminal; set BUDGETEER_PASSPHRASE")
	}

	fmt.Fprint(os.Stderr, prompt)
	first, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if len(first) == 0 {
		return "", errors.New("empty passphrase")
	}
	if !confirm {
		return string(first), nil
	}

	fmt.Fprint(os.Stderr, "Confirm passphrase: ")
	second, err := term.ReadPassword(fd)
	fmt.Fprintln(os.Stderr)
	if err != nil {
		return "", err
	}
	if string(first) != string(second) {
		return "", errors.New("passphrases do not match")
	}
	return string(first), nil
}
