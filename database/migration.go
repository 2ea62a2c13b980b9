package database

import (
	"database/sql"
	"embed"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	"github.com/pkg/errors"

	"github.com/mbolis/quick-survey-console/log"
)

//go:embed migrations
var schemaMigrations embed.FS

// migrateDB applies every pending embedded migration and returns the
// schema version the database ends up at.
func migrateDB(db *sql.DB) (uint, error) {
	src, err := iofs.New(schemaMigrations, "migrations")
	if err != nil {
		return 0, errors.Wrap(err, "migrations source")
	}

	dst, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return 0, errors.Wrap(err, "migrations target")
	}

	migrator, err := migrate.NewWithInstance("iofs", src, "sqlite3", dst)
	if err != nil {
		return 0, errors.Wrap(err, "migrator")
	}

	upErr := migrator.Up()
	if upErr != nil && !errors.Is(upErr, migrate.ErrNoChange) {
		return 0, errors.Wrap(upErr, "migrate up")
	}

	version, dirty, err := migrator.Version()
	if err != nil {
		return 0, errors.Wrap(err, "schema version")
	}
	if dirty {
		return version, errors.Errorf("schema version %d is dirty", version)
	}

	log.WithFields(log.Fields{"version": version, "changed": upErr == nil}).Debug("database.migrate")
	return version, nil
}
