package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"budgeteer/internal/services/budget"
)

var recomputeCmd = &cobra.Command{
	Use:   "recompute",
	Short: "Recompute goal progress from stored transactions",
	RunE:  runRecompute,
}

func runRecompute(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	log := newLogger(cfg.LogLevel)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := budget.New(st, log, cfg.User)
	changed, err := svc.Recompute()
	if err != nil {
		return err
	}

	fmt.Printf("  Updated %d goal(s)\n", changed)
	return nil
}
