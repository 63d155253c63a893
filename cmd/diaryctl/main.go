package main

import (
	"context"
	"fmt"
	"os"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"emotional-diary/internal/config"
	"emotional-diary/internal/repository"
	"emotional-diary/pkg/database"
	"emotional-diary/pkg/logging"
	"emotional-diary/pkg/metrics"
)

const version = "1.0.0"

// app holds what every subcommand needs once connected
type app struct {
	cfg     *config.Config
	logger  *logging.StructuredLogger
	metrics *metrics.Collector
	db      *database.DB
	repo    repository.DiaryRepository
}

// connect loads configuration and opens the database. Logs go to stderr so
// stdout stays clean for JSON output.
func connect(cmd *cobra.Command) (*app, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	logger := logging.NewStructuredLogger("diaryctl", version, logging.ParseLevel(cfg.Logging.Level))
	logger.SetOutput(cmd.ErrOrStderr())

	// short-lived process, nothing scrapes it
	collector := metrics.NewCollectorWithRegistry("diaryctl", prometheus.NewRegistry())

	db, err := database.Open(cfg.Database.Connection(), logger, collector)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	return &app{
		cfg:     cfg,
		logger:  logger,
		metrics: collector,
		db:      db,
		repo:    repository.NewDiaryRepository(db, logger, collector),
	}, nil
}

func (a *app) Close() {
	a.db.Close()
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "diaryctl",
		Short:         "Administer the emotional diary database",
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newMigrateCmd())
	root.AddCommand(newUsersCmd())
	root.AddCommand(newImportCmd())
	root.AddCommand(newReportCmd())

	return root
}

func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
