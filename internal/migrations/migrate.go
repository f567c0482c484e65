package migrations

import (
	"fmt"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

// Result describes what happened during migration.
type Result struct {
	Version uint
	Dirty   bool
	Changed bool
}

// New builds a migrator over the embedded SQL files for the given
// database URL.
func New(databaseURL string) (*migrate.Migrate, error) {
	source, err := iofs.New(FS, ".")
	if err != nil {
		return nil, fmt.Errorf("migration source: %w", err)
	}

	// golang-migrate selects its pgx driver by URL scheme.
	url := strings.Replace(databaseURL, "postgres://", "pgx5://", 1)
	url = strings.Replace(url, "postgresql://", "pgx5://", 1)

	m, err := migrate.NewWithSourceInstance("iofs", source, url)
	if err != nil {
		return nil, fmt.Errorf("migration instance: %w", err)
	}
	return m, nil
}

// Up runs all pending migrations against the database.
func Up(databaseURL string) (*Result, error) {
	m, err := New(databaseURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()

	err = m.Up()
	changed := true
	if err == migrate.ErrNoChange {
		changed = false
		err = nil
	}
	if err != nil {
		return nil, fmt.Errorf("migration up: %w", err)
	}

	version, dirty, _ := m.Version()
	return &Result{
		Version: version,
		Dirty:   dirty,
		Changed: changed,
	}, nil
}
