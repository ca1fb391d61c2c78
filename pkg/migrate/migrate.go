package migrate

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/pressly/goose/v3"
)

// DefaultDir is where the stockroom SQL migrations live in the source tree.
// Binaries read the embedded copy unless another directory is requested.
const DefaultDir = "pkg/migrate/migrations"

//go:embed migrations/*.sql
var embedded embed.FS

// Step is one migration applied, rolled back or reported by a command.
type Step struct {
	Version   int64
	Path      string
	Direction string
	State     string
	Duration  time.Duration
}

func (s Step) String() string {
	if s.State != "" {
		return fmt.Sprintf("%-8s %s", s.State, s.Path)
	}
	return fmt.Sprintf("%-8s %s (%s)", s.Direction, s.Path, s.Duration.Round(time.Millisecond))
}

// Migrations returns the SQL migrations compiled into the binary.
func Migrations() fs.FS {
	sub, err := fs.Sub(embedded, "migrations")
	if err != nil {
		panic(fmt.Sprintf("embedded migrations: %v", err))
	}
	return sub
}

func source(dir string) fs.FS {
	if dir == "" || dir == DefaultDir {
		return Migrations()
	}
	return os.DirFS(dir)
}

func newProvider(db *sql.DB, dir string) (*goose.Provider, error) {
	if db == nil {
		return nil, fmt.Errorf("db is required")
	}
	provider, err := goose.NewProvider(goose.DialectPostgres, db, source(dir))
	if err != nil {
		return nil, fmt.Errorf("goose provider: %w", err)
	}
	return provider, nil
}

// Run executes up, down or status against the Postgres schema.
func Run(ctx context.Context, db *sql.DB, dir string, command string) ([]Step, error) {
	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}

	switch command {
	case "up":
		results, err := provider.Up(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose up: %w", err)
		}
		return resultSteps(results), nil

	case "down":
		result, err := provider.Down(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose down: %w", err)
		}
		return resultSteps([]*goose.MigrationResult{result}), nil

	case "status":
		statuses, err := provider.Status(ctx)
		if err != nil {
			return nil, fmt.Errorf("goose status: %w", err)
		}
		steps := make([]Step, 0, len(statuses))
		for _, st := range statuses {
			if st == nil || st.Source == nil {
				continue
			}
			steps = append(steps, Step{
				Version: st.Source.Version,
				Path:    st.Source.Path,
				State:   string(st.State),
			})
		}
		return steps, nil

	default:
		return nil, fmt.Errorf("unsupported migrate command %q", command)
	}
}

// MigrateToVersion moves the schema up or down until it sits at targetVersion.
func MigrateToVersion(ctx context.Context, db *sql.DB, dir string, targetVersion string) ([]Step, error) {
	if targetVersion == "" {
		return nil, fmt.Errorf("targetVersion is required")
	}
	target, err := strconv.ParseInt(targetVersion, 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid version %q (expected YYYYMMDDHHMMSS): %w", targetVersion, err)
	}

	provider, err := newProvider(db, dir)
	if err != nil {
		return nil, err
	}

	current, err := provider.GetDBVersion(ctx)
	if err != nil {
		return nil, fmt.Errorf("get db version: %w", err)
	}

	var results []*goose.MigrationResult
	switch {
	case current == target:
		return nil, nil
	case current < target:
		results, err = provider.UpTo(ctx, target)
	default:
		results, err = provider.DownTo(ctx, target)
	}
	if err != nil {
		return nil, fmt.Errorf("goose migrate %d -> %d: %w", current, target, err)
	}
	return resultSteps(results), nil
}

func resultSteps(results []*goose.MigrationResult) []Step {
	steps := make([]Step, 0, len(results))
	for _, res := range results {
		if res == nil || res.Source == nil {
			continue
		}
		steps = append(steps, Step{
			Version:   res.Source.Version,
			Path:      res.Source.Path,
			Direction: res.Direction,
			Duration:  res.Duration,
		})
	}
	return steps
}
