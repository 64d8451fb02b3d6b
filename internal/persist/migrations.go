package persist

import (
	"context"
	"database/sql"
	"embed"
	"fmt"
	"path"
	"sync"

	"github.com/pressly/goose/v3"
)

//go:embed migrations/postgres/*.sql migrations/sqlite/*.sql
var migrations embed.FS

// goose dialect per migration directory.
var gooseDialects = map[string]string{
	"postgres": "postgres",
	"sqlite":   "sqlite3",
}

// goose keeps its settings in package state.
var gooseMu sync.Mutex

// RunMigrations applies every pending migration of dir ("postgres" or
// "sqlite") to db.
func RunMigrations(ctx context.Context, db *sql.DB, dir string) error {
	dialect, ok := gooseDialects[dir]
	if !ok {
		return fmt.Errorf("no migrations for %q", dir)
	}
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetLogger(goose.NopLogger())
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect(dialect); err != nil {
		return fmt.Errorf("set dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, path.Join("migrations", dir)); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}
