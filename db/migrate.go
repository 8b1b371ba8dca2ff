package db

import (
	"embed"
	"fmt"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Migrate brings the SQL backend schema up to date.
func (p *PostgresStore) Migrate() error {
	goose.SetBaseFS(migrations)

	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}

	if err := goose.Up(p.DB, "migrations"); err != nil {
		return fmt.Errorf("goose up: %w", err)
	}

	p.Log.Info().Msg("Tables initialized successfully")
	return nil
}
