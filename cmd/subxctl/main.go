package main

import (
	"database/sql"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/MrJamesThe3rd/subx/internal/app"
	"github.com/MrJamesThe3rd/subx/internal/config"
	"github.com/MrJamesThe3rd/subx/internal/database"
	"github.com/MrJamesThe3rd/subx/internal/logging"
)

// env is opened once per invocation by the root command's PersistentPreRunE.
type env struct {
	cfg    *config.Config
	logger *zap.Logger
	db     *sql.DB
	svc    *app.Services
}

func (e *env) close() {
	if e.svc != nil {
		_ = e.svc.Close()
		e.svc = nil
	}

	if e.db != nil {
		_ = e.db.Close()
		e.db = nil
	}

	if e.logger != nil {
		_ = e.logger.Sync()
	}
}

func main() {
	e := &env{}
	defer e.close()

	rootCmd := &cobra.Command{
		Use:           "subxctl",
		Short:         "Operator tooling for the Subx purchase core",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(*cobra.Command, []string) error {
			return e.open()
		},
	}

	rootCmd.AddCommand(migrateCmd(e))
	rootCmd.AddCommand(reconcileCmd(e))
	rootCmd.AddCommand(expireCmd(e))
	rootCmd.AddCommand(plotsCmd(e))
	rootCmd.AddCommand(incidentsCmd(e))
	rootCmd.AddCommand(rewardsCmd(e))

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		e.close()
		os.Exit(1)
	}
}

func (e *env) open() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger, err := logging.NewConsoleLogger(cfg.App.LogLevel)
	if err != nil {
		return fmt.Errorf("building logger: %w", err)
	}

	db, err := database.New(cfg.ConnectionString())
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}

	svc, err := app.New(cfg, db, logger)
	if err != nil {
		_ = db.Close()
		return err
	}

	e.cfg, e.logger, e.db, e.svc = cfg, logger, db, svc

	return nil
}
