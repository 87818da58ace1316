package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/naimur978/Expense-Tracker/internal/config"
	"github.com/naimur978/Expense-Tracker/internal/database"
	"github.com/naimur978/Expense-Tracker/internal/logging"
	"github.com/naimur978/Expense-Tracker/internal/report"
	"github.com/naimur978/Expense-Tracker/internal/router"
	"github.com/naimur978/Expense-Tracker/internal/service"
	"github.com/naimur978/Expense-Tracker/internal/util"

	"github.com/spf13/pflag"
)

func main() {
	if err := run(os.Args[1:]); err != nil {
		logging.New(logging.Config{Component: "main"}).Error("exit", logging.FieldError, err)
		os.Exit(1)
	}
}

// run returns instead of exiting so deferred cleanup always happens.
func run(args []string) error {
	flags := pflag.NewFlagSet("expense-tracker", pflag.ContinueOnError)
	configPath := flags.StringP("config", "c", "", "path to config file (default ./config.yaml if present)")
	seed := flags.Bool("seed", false, "replace all expenses with demo data before serving")
	seedOnly := flags.Bool("seed-only", false, "seed demo data and exit")
	if err := flags.Parse(args); err != nil {
		return err
	}

	// load configuration
	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}

	log := logging.New(logging.Config{Level: cfg.Log.Level, Format: cfg.Log.Format, Component: "main"})
	logging.SetDefault(log)

	if cfg.JWT.Secret == "" {
		secret, err := util.RandomString(48)
		if err != nil {
			return fmt.Errorf("generate jwt secret: %w", err)
		}
		cfg.JWT.Secret = secret
		log.Warn("jwt.secret not set, using a random secret; tokens will not survive a restart")
	}

	// init database
	db, err := database.Init(cfg.Database)
	if err != nil {
		return fmt.Errorf("init database: %w", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			log.Error("close database", logging.FieldError, err)
		}
	}()

	// run migrations
	if err := database.AutoMigrate(db); err != nil {
		return fmt.Errorf("migrate database: %w", err)
	}

	if *seed || *seedOnly {
		created, err := database.Seed(db, time.Now())
		if err != nil {
			return fmt.Errorf("seed database: %w", err)
		}
		log.Info("seeded demo expenses", "count", len(created))
		if *seedOnly {
			return nil
		}
	}

	tokens := util.NewTokenService(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	auth := service.NewAuthService(db, tokens, cfg.Security.BcryptCost, log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	cache := report.NewCache[report.Summary](cfg.Summary.CacheTTL, nil)
	go cache.RunJanitor(ctx, cfg.Summary.CacheTTL)

	var google *service.GoogleLogin
	if cfg.GoogleEnabled() {
		google = service.NewGoogleLogin(cfg.Google, auth, log)
	} else {
		log.Info("google login disabled")
	}

	r := router.SetupRouter(cfg, router.Deps{
		Auth:     auth,
		Expenses: service.NewExpenseService(db, cache, log),
		Google:   google,
		Log:      log,
	})

	srv := &http.Server{
		Addr:              cfg.Addr(),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("server listening", "addr", srv.Addr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("run server: %w", err)
		}
		return nil
	case <-ctx.Done():
		log.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		if err := srv.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("shutdown: %w", err)
		}
		return nil
	}
}
