package repos

import (
	"context"
	"fmt"
	"sync"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/jmoiron/sqlx"
	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"hrauth/internal/repos/migrations"
)

// goose keeps its base FS and dialect in package globals.
var migrateMu sync.Mutex

// OpenDB connects to the employee store and brings its schema up to date.
// driver is "sqlite" (modernc) or "pgx" (hosted Postgres).
func OpenDB(driver, dsn string) (*sqlx.DB, error) {
	db, err := sqlx.Open(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("db open error: %w", err)
	}
	if driver == "sqlite" {
		// :memory: databases live per connection
		db.SetMaxOpenConns(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("db ping error: %w", err)
	}
	if err := Migrate(ctx, db); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migration error: %w", err)
	}
	return db, nil
}

// Migrate applies the embedded goose migrations for the connection's driver.
func Migrate(ctx context.Context, db *sqlx.DB) error {
	dialect, dir := "sqlite3", "sqlite"
	if db.DriverName() == "pgx" {
		dialect, dir = "postgres", "postgres"
	}

	migrateMu.Lock()
	defer migrateMu.Unlock()

	goose.SetBaseFS(migrations.FS)
	if err := goose.SetDialect(dialect); err != nil {
		return err
	}
	return goose.UpContext(ctx, db.DB, dir)
}
