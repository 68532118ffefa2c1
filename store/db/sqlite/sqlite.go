package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"path/filepath"

	"github.com/pkg/errors"
	// Import the pure-Go SQLite driver.
	_ "modernc.org/sqlite"

	"github.com/snapcal/snapcal/internal/profile"
	"github.com/snapcal/snapcal/store"
)

type DB struct {
	db      *sql.DB
	profile *profile.Profile
}

// NewDB opens (creating if needed) the SQLite database under the profile's
// data directory, or at the explicit DSN when one is set.
func NewDB(profile *profile.Profile) (store.Driver, error) {
	if profile == nil {
		return nil, errors.New("profile is nil")
	}

	dsn := profile.DSN
	if dsn == "" {
		dsn = filepath.Join(profile.Data, fmt.Sprintf("snapcal_%s.db", profile.Mode))
	}

	// WAL keeps readers unblocked during capture writes; the busy timeout
	// covers the writer lock under modest concurrency.
	db, err := sql.Open("sqlite", dsn+"?_pragma=busy_timeout(10000)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open database: %s", dsn)
	}

	// SQLite serializes writes anyway; extra connections just contend.
	db.SetMaxOpenConns(1)

	if err := db.Ping(); err != nil {
		return nil, errors.Wrap(err, "failed to ping database")
	}

	return &DB{db: db, profile: profile}, nil
}

func (d *DB) GetDB() *sql.DB {
	return d.db
}

func (d *DB) Close() error {
	return d.db.Close()
}

// IsInitialized checks whether the event table exists.
func (d *DB) IsInitialized(ctx context.Context) (bool, error) {
	var count int
	err := d.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'event'`,
	).Scan(&count)
	if err != nil {
		return false, errors.Wrap(err, "failed to check initialization")
	}
	return count > 0, nil
}
