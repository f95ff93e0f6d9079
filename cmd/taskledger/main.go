package main

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ledgerworks/taskledger/internal/cache"
	"github.com/ledgerworks/taskledger/internal/config"
	"github.com/ledgerworks/taskledger/internal/database"
	"github.com/ledgerworks/taskledger/internal/logger"
	"github.com/ledgerworks/taskledger/internal/reconcile"
	"github.com/ledgerworks/taskledger/internal/repository"
	"github.com/ledgerworks/taskledger/internal/service"
	"github.com/urfave/cli/v2"
)

func main() {
	app := &cli.App{
		Name:  "taskledger",
		Usage: "Task state, audit trail, and daily snapshot reconciliation",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Value:   "info",
				Usage:   "Log level (debug, info, warn, error)",
				EnvVars: []string{"LOG_LEVEL"},
			},
			&cli.StringFlag{
				Name:     "database-url",
				Aliases:  []string{"d"},
				Value:    config.DefaultDatabaseURL,
				Usage:    "PostgreSQL database URL",
				EnvVars:  []string{"DATABASE_URL"},
				Required: true,
			},
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Path to TOML config file",
				EnvVars: []string{"TASKLEDGER_CONFIG"},
			},
		},
		Before: func(c *cli.Context) error {
			logger.Setup(logger.ParseLevel(c.String("log-level")))
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:   "migrate",
				Usage:  "Apply pending database migrations",
				Action: runMigrate,
			},
			{
				Name:  "reconcile",
				Usage: "Materialize daily snapshots for all active tasks",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "date",
						Usage: "Target date (YYYY-MM-DD, default: today)",
					},
				},
				Action: runReconcile,
			},
			{
				Name:  "snapshots",
				Usage: "List daily snapshots",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:  "page",
						Value: 1,
						Usage: "Page number (1-indexed)",
					},
					&cli.IntFlag{
						Name:  "page-size",
						Usage: "Page size (default: from config)",
					},
					&cli.StringFlag{
						Name:  "date",
						Usage: "Filter by log date (YYYY-MM-DD)",
					},
				},
				Action: runSnapshots,
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		slog.Error("application error", "error", err)
		os.Exit(1)
	}
}

func runMigrate(c *cli.Context) error {
	ctx := c.Context

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	return nil
}

func runReconcile(c *cli.Context) error {
	ctx, stop := signal.NotifyContext(c.Context, os.Interrupt, syscall.SIGTERM)
	defer stop()

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	var targetDate time.Time
	if raw := c.String("date"); raw != "" {
		targetDate, err = time.Parse("2006-01-02", raw)
		if err != nil {
			return fmt.Errorf("invalid target date %q, use YYYY-MM-DD: %w", raw, err)
		}
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db.Pool())
	snapshotRepo := repository.NewSnapshotRepository(db.Pool())
	store := reconcile.NewStore(db.Pool(), taskRepo, snapshotRepo)

	job := reconcile.NewJob(store, cache.Nop(), cfg.Reconcile)

	report, err := job.Run(ctx, targetDate)
	if err != nil {
		return err
	}

	fmt.Printf("run %s: %d tasks processed, %d snapshots created (%d attempts)\n",
		report.RunID, report.TasksProcessed, report.SnapshotsCreated, report.Attempts)

	return nil
}

func runSnapshots(c *cli.Context) error {
	ctx := c.Context

	cfg, err := config.Load(c.String("config"))
	if err != nil {
		return err
	}

	pageSize := c.Int("page-size")
	if pageSize == 0 {
		pageSize = cfg.Pagination.PageSize
	}

	db, err := database.New(ctx, c.String("database-url"))
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	if err := database.RunMigrations(ctx, db.Pool()); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	taskRepo := repository.NewTaskRepository(db.Pool())
	snapshotRepo := repository.NewSnapshotRepository(db.Pool())
	auditRepo := repository.NewAuditRepository(db.Pool())
	snapshots := service.NewSnapshotService(taskRepo, snapshotRepo, auditRepo)

	page, err := snapshots.ListSnapshots(ctx, c.Int("page"), pageSize, c.String("date"))
	if err != nil {
		return err
	}

	for _, item := range page.Items {
		fmt.Printf("%d\t%s\t%s\t%s\t%s\n",
			item.Snapshot.ID,
			item.Snapshot.LogDate.Format("2006-01-02"),
			item.Snapshot.Status,
			item.TaskTitle,
			item.Snapshot.Notes,
		)
	}
	fmt.Printf("page %d of %d (%d snapshots total)\n", page.Page, page.Pages, page.Total)

	return nil
}
