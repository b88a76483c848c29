// Package migrations применяет SQL-миграции схемы из каталога migrations.
package migrations

import (
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	pgxv5 "github.com/golang-migrate/migrate/v4/database/pgx/v5"
	_ "github.com/golang-migrate/migrate/v4/source/file"
)

// ErrDirty схема осталась в состоянии незавершённой миграции.
var ErrDirty = errors.New("schema is dirty")

const versionTable = "schema_migrations"

// Run доводит схему до последней версии из каталога dir и возвращает её номер.
// Повторный запуск ничего не меняет.
//
// Мигратор не закрывается: это закрыло бы и переданный db.
func Run(db *sql.DB, dir string) (uint, error) {
	const op = "migrations.Run"

	driver, err := pgxv5.WithInstance(db, &pgxv5.Config{MigrationsTable: versionTable})
	if err != nil {
		return 0, fmt.Errorf("%s: driver: %w", op, err)
	}
	source := "file://" + filepath.ToSlash(dir)
	m, err := migrate.NewWithDatabaseInstance(source, "pgx_v5", driver)
	if err != nil {
		return 0, fmt.Errorf("%s: open %s: %w", op, source, err)
	}

	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return 0, fmt.Errorf("%s: up: %w", op, err)
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		return 0, nil
	case err != nil:
		return 0, fmt.Errorf("%s: version: %w", op, err)
	case dirty:
		return version, fmt.Errorf("%s: version %d: %w", op, version, ErrDirty)
	}
	return version, nil
}
