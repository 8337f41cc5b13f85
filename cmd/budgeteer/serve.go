package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"budgeteer/internal/handlers/backup"
	"budgeteer/internal/handlers/categories"
	"budgeteer/internal/handlers/goals"
	"budgeteer/internal/handlers/insights"
	"budgeteer/internal/handlers/plan"
	"budgeteer/internal/handlers/transactions"
	"budgeteer/internal/services/budget"
	"budgeteer/internal/services/scheduler"
)

var flagAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE:  runServe,
}

func init() {
	serveCmd.Flags().StringVar(&flagAddr, "addr", "", "Listen address (overrides config)")
}

func runServe(_ *cobra.Command, _ []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	if flagAddr != "" {
		cfg.ListenAddr = flagAddr
	}

	log := newLogger(cfg.LogLevel)

	st, err := openStore(cfg, log)
	if err != nil {
		return err
	}
	defer st.Close()

	svc := budget.New(st, log, cfg.User)

	if cfg.Recompute.Enabled {
		sched, err := scheduler.New(svc, log, cfg.Recompute.Schedule)
		if err != nil {
			return err
		}
		sched.Start()
		defer sched.Stop()
	}

	srv := &http.Server{
		Addr:         cfg.ListenAddr,
		Handler:      buildRouter(svc, log),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		log.Infof("Budgeteer listening on %s (backend: %s, user: %s)",
			cfg.ListenAddr, cfg.Store.Backend, cfg.User)
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
	case <-ctx.Done():
		log.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return err
		}
	}
	return nil
}

// buildRouter assembles the chi router with the standard middleware
// stack and every API handler group.
func buildRouter(svc *budget.Service, log *logrus.Logger) chi.Router {
	r := chi.NewRouter()

	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Compress(5))

	transactions.Initialize(svc, log)
	categories.Initialize(svc, log)
	goals.Initialize(svc, log)
	plan.Initialize(svc, log)
	insights.Initialize(svc, log)
	backup.Initialize(svc, log)

	transactions.RegisterRoutes(r)
	categories.RegisterRoutes(r)
	goals.RegisterRoutes(r)
	plan.RegisterRoutes(r)
	insights.RegisterRoutes(r)
	backup.RegisterRoutes(r)

	return r
}
