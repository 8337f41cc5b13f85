// Command budgeteer runs the budget allocation service: the HTTP API
// server plus maintenance commands for the data store.
package main

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"budgeteer/internal/config"
	"budgeteer/internal/services/storage"
	"budgeteer/internal/version"
)

var flagConfig string

var rootCmd = &cobra.Command{
	Use:   "budgeteer",
	Short: "Personal budget allocation and insight engine",
	Long: "Budgeteer records transactions, allocates income across budget\n" +
		"categories, tracks financial goals, and serves the JSON API behind\n" +
		"the dashboard.",
	SilenceUsage: true,
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print build information",
	Run: func(_ *cobra.Command, _ []string) {
		info := version.Get()
		fmt.Println(info.String())
		if warn := info.Warning(); warn != "" {
			fmt.Fprintf(os.Stderr, "Warning: %s\n", warn)
		}
	},
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&flagConfig, "config", "c", "", "Path to budgeteer.toml (default: ./budgeteer.toml)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(recomputeCmd)
	rootCmd.AddCommand(storeCmd)
}

// loadConfig honors --config before falling back to BUDGETEER_CONFIG
// and the working directory.
func loadConfig() (*config.Config, error) {
	if flagConfig != "" {
		os.Setenv("BUDGETEER_CONFIG", flagConfig)
	}
	return config.Load()
}

// newLogger builds the service logger. Unknown levels fall back to info.
func newLogger(level string) *logrus.Logger {
	log := logrus.New()
	log.SetFormatter(&logrus.JSONFormatter{})

	lvl, err := logrus.ParseLevel(level)
	if err != nil {
		lvl = logrus.InfoLevel
	}
	log.SetLevel(lvl)
	return log
}

// openStore constructs the configured backend and unlocks encrypted
// file stores before first use.
func openStore(cfg *config.Config, log *logrus.Logger) (storage.Store, error) {
	st, err := storage.Open(cfg.Store.Backend, cfg.DataDirectory, cfg.SQLitePath())
	if err != nil {
		return nil, err
	}

	fs, ok := st.(*storage.FileStore)
	if !ok || !fs.Crypt().IsEncrypted() {
		return st, nil
	}

	pass, err := readPassphrase("Passphrase: ", false)
	if err != nil {
		st.Close()
		return nil, err
	}
	if err := fs.Crypt().Unlock(pass); err != nil {
		st.Close()
		return nil, err
	}
	log.Debug("Encrypted store unlocked")
	return st, nil
}
