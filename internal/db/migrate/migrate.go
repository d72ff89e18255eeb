// Package migrate applies the embedded goose migrations.
package migrate

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"github.com/pressly/goose/v3"

	"github.com/gokatarajesh/quiz-widget/db/migrations"
)

// Commands accepted by Run.
const (
	Up     = "up"
	Down   = "down"
	Status = "status"
)

const tableName = "goose_db_version"

// Run executes command against db using the embedded migrations.
func Run(ctx context.Context, db *sql.DB, command string) error {
	goose.SetBaseFS(migrations.FS)
	goose.SetTableName(tableName)
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("set goose dialect: %w", err)
	}

	switch command {
	case Up:
		return goose.UpContext(ctx, db, ".")
	case Down:
		return goose.DownContext(ctx, db, ".")
	case Status:
		return goose.StatusContext(ctx, db, ".")
	default:
		return fmt.Errorf("unknown migration command %q", command)
	}
}

// UpFromPool applies pending migrations through a pgx pool.
func UpFromPool(ctx context.Context, pool *pgxpool.Pool) error {
	db := stdlib.OpenDBFromPool(pool)
	defer db.Close()
	return Run(ctx, db, Up)
}
