package sqlite

import (
	"context"
	"fmt"

	"github.com/cenkalti/backoff/v4"
	"github.com/pressly/goose/v3"

	"github.com/ILHT-IDSP/IDSP-Circle-sub002/pkg/storage/migrations"
)

// MigrationConfig carries the settings for a migration run.
type MigrationConfig struct {
	URI           string
	TargetVersion uint
	Verbose       bool
}

// RunMigrations executes the embedded schema migrations against the
// SQLite database at cfg.URI. A zero TargetVersion migrates to the most
// recent version.
func RunMigrations(ctx context.Context, cfg MigrationConfig) error {
	goose.SetLogger(goose.NopLogger())
	goose.SetVerbose(cfg.Verbose)

	if err := goose.SetDialect("sqlite"); err != nil {
		return fmt.Errorf("failed to set sqlite dialect: %w", err)
	}

	uri, err := PrepareDSN(cfg.URI)
	if err != nil {
		return err
	}

	db, err := goose.OpenDBWithDriver("sqlite", uri)
	if err != nil {
		return fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	defer db.Close()

	policy := backoff.NewExponentialBackOff()
	err = backoff.Retry(func() error {
		return db.PingContext(ctx)
	}, backoff.WithContext(policy, ctx))
	if err != nil {
		return fmt.Errorf("failed to initialize sqlite connection: %w", err)
	}

	goose.SetBaseFS(migrations.Embed)

	currentVersion, err := goose.GetDBVersion(db)
	if err != nil {
		return fmt.Errorf("failed to get db version: %w", err)
	}

	if cfg.TargetVersion == 0 {
		if err := goose.Up(db, migrations.SQLiteMigrationDir); err != nil {
			return fmt.Errorf("failed to run migrations: %w", err)
		}
		return nil
	}

	targetInt64Version := int64(cfg.TargetVersion)
	switch {
	case targetInt64Version < currentVersion:
		if err := goose.DownTo(db, migrations.SQLiteMigrationDir, targetInt64Version); err != nil {
			return fmt.Errorf("failed to run migrations down to %v: %w", targetInt64Version, err)
		}
	case targetInt64Version > currentVersion:
		if err := goose.UpTo(db, migrations.SQLiteMigrationDir, targetInt64Version); err != nil {
			return fmt.Errorf("failed to run migrations up to %v: %w", targetInt64Version, err)
		}
	}
	return nil
}

// GetCurrentVersion returns the schema version of the database at uri.
func GetCurrentVersion(uri string) (int64, error) {
	if err := goose.SetDialect("sqlite"); err != nil {
		return 0, fmt.Errorf("failed to set sqlite dialect: %w", err)
	}

	uri, err := PrepareDSN(uri)
	if err != nil {
		return 0, err
	}

	db, err := goose.OpenDBWithDriver("sqlite", uri)
	if err != nil {
		return 0, fmt.Errorf("failed to open sqlite connection: %w", err)
	}
	defer db.Close()

	goose.SetBaseFS(migrations.Embed)
	return goose.GetDBVersion(db)
}
