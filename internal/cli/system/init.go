package system

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/dayplan/dayplan/internal/cli"
	"github.com/dayplan/dayplan/internal/store"
	"github.com/dayplan/dayplan/internal/storage/json"
	"github.com/dayplan/dayplan/internal/storage/postgres"
	"github.com/dayplan/dayplan/internal/storage/sqlite"
)

// InitCmd initializes ctx.Store and, optionally, imports data from another
// store: --force deletes an existing database, --source copies settings and
// templates from another backend (instances, plans and daily schedules are
// not copied).
type InitCmd struct {
	Force  bool   `help:"Force reset by deleting the existing store before initialization."`
	Source string `help:"Path or connection string of another store to migrate data from."`
}

func (c *InitCmd) Run(ctx *cli.Context) error {
	if c.Force {
		path := ctx.ConfigPath
		if c.Source != "" {
			absPath, err := filepath.Abs(path)
			if err == nil {
				path = absPath
			}
			absSource, err := filepath.Abs(c.Source)
			if err == nil && absSource == path {
				return fmt.Errorf("cannot use --force when source and destination are the same: %s", path)
			}
		}
		if _, err := os.Stat(path); err == nil {
			if err := ctx.Store.Close(); err != nil {
				return fmt.Errorf("close existing store: %w", err)
			}
			if err := os.Remove(path); err != nil {
				return fmt.Errorf("delete existing store: %w", err)
			}
			fmt.Printf("Deleted existing store at: %s\n", path)
		} else if !os.IsNotExist(err) {
			return fmt.Errorf("access existing store: %w", err)
		}
	}

	if err := ctx.Store.Init(); err != nil {
		return err
	}
	fmt.Printf("Initialized dayplan storage at: %s\n", ctx.ConfigPath)

	if c.Source != "" {
		fmt.Printf("Migrating data from: %s\n", c.Source)
		if err := c.migrateData(ctx, c.Source); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
		fmt.Println("Migration completed successfully!")
	}

	return nil
}

func openSourceStore(sourcePath string) (store.Store, error) {
	switch {
	case strings.HasPrefix(sourcePath, "postgres://") || strings.HasPrefix(sourcePath, "postgresql://"):
		if err := postgres.ValidateConnStr(sourcePath); err != nil {
			if errors.Is(err, postgres.ErrEmbeddedCredentials) {
				return nil, fmt.Errorf("source connection string must not embed credentials; use an env var or .pgpass instead")
			}
			return nil, err
		}
		return postgres.New(sourcePath), nil
	case strings.HasSuffix(sourcePath, ".json"):
		return json.New(sourcePath), nil
	default:
		return sqlite.New(sourcePath), nil
	}
}

func (c *InitCmd) migrateData(ctx *cli.Context, sourcePath string) error {
	sourceStore, err := openSourceStore(sourcePath)
	if err != nil {
		return err
	}
	if err := sourceStore.Load(); err != nil {
		return fmt.Errorf("load source store: %w", err)
	}
	defer sourceStore.Close()

	fmt.Println("  Migrating settings...")
	settings, err := sourceStore.GetSettings(ctx.UserID)
	if err != nil {
		return fmt.Errorf("get settings from source: %w", err)
	}
	if err := ctx.Store.SaveSettings(ctx.UserID, settings); err != nil {
		return fmt.Errorf("save settings to destination: %w", err)
	}

	fmt.Println("  Migrating templates...")
	templates, err := sourceStore.GetTemplates(ctx.UserID)
	if err != nil {
		return fmt.Errorf("get templates from source: %w", err)
	}
	for _, t := range templates {
		if err := ctx.Store.SaveTemplate(ctx.UserID, t); err != nil {
			return fmt.Errorf("save template %s: %w", t.ID, err)
		}
	}
	fmt.Printf("    Migrated %d templates\n", len(templates))

	return nil
}
