package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/joho/godotenv"

	"github.com/arcacommerce/arca-backend/pkg/config"
	"github.com/arcacommerce/arca-backend/pkg/db"
	"github.com/arcacommerce/arca-backend/pkg/db/models"
	"github.com/arcacommerce/arca-backend/pkg/logger"
	"github.com/arcacommerce/arca-backend/pkg/migrate"
)

type options struct {
	cmd     string
	dir     string
	name    string
	version string
}

// gooseCommands pass straight through to goose against the configured database.
var gooseCommands = map[string]bool{"up": true, "down": true, "redo": true, "status": true}

func main() {
	logg := logger.New(logger.Options{ServiceName: "migrate"})
	_ = godotenv.Load()

	var opts options
	flag.StringVar(&opts.cmd, "cmd", "up", "up|down|redo|status|version|create|validate")
	flag.StringVar(&opts.dir, "dir", migrate.DefaultDir, "goose migrations directory")
	flag.StringVar(&opts.name, "name", "", "migration name for -cmd=create")
	flag.StringVar(&opts.version, "version", "", "target version (YYYYMMDDHHMMSS) for -cmd=version")
	flag.Parse()

	if err := run(opts, logg); err != nil {
		fmt.Fprintf(os.Stderr, "migrate %s: %v\n", opts.cmd, err)
		os.Exit(1)
	}
}

func run(opts options, logg *logger.Logger) error {
	switch opts.cmd {
	case "create":
		if opts.name == "" {
			return errors.New("missing -name")
		}
		path, err := migrate.CreateSQLMigration(opts.dir, opts.name)
		if err != nil {
			return err
		}
		fmt.Println("created migration:", path)
		return nil
	case "validate":
		if err := migrate.ValidateDir(opts.dir); err != nil {
			return err
		}
		fmt.Println("migration validation passed")
		return nil
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	logg = logger.New(logger.Options{
		ServiceName: "migrate",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env": cfg.App.Env,
		"cmd": opts.cmd,
		"dir": opts.dir,
	})

	client, err := db.New(ctx, cfg.DB, logg)
	if err != nil {
		return fmt.Errorf("open database: %w", err)
	}
	defer client.Close()

	// SQLite has no SQL migrations; only "up" applies and it builds the schema from the models.
	if client.DB().Dialector.Name() == db.DriverSQLite {
		if opts.cmd != "up" {
			return fmt.Errorf("%s is not supported on sqlite", opts.cmd)
		}
		logg.Info(ctx, "auto-migrating sqlite schema from models")
		return client.DB().WithContext(ctx).AutoMigrate(models.All()...)
	}

	sqlDB, err := client.DB().DB()
	if err != nil {
		return fmt.Errorf("extract sql.DB: %w", err)
	}
	logg.Info(ctx, "migrate ready")
	return runGoose(ctx, sqlDB, opts)
}

func runGoose(ctx context.Context, sqlDB *sql.DB, opts options) error {
	if opts.cmd == "version" {
		if opts.version == "" {
			return errors.New("missing -version")
		}
		return migrate.MigrateToVersion(ctx, sqlDB, opts.dir, opts.version)
	}
	if !gooseCommands[opts.cmd] {
		return fmt.Errorf("unknown command %q", opts.cmd)
	}
	return migrate.Run(ctx, sqlDB, opts.dir, opts.cmd)
}
