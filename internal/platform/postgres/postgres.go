package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	// Both drivers register themselves with database/sql; remote.driver picks one.
	_ "github.com/jackc/pgx/v5/stdlib"
	_ "github.com/lib/pq"

	"healthreg/internal/platform/config"
)

// Open connects to the remote patient database with the configured driver
// ("postgres" for lib/pq, "pgx" for pgx's database/sql adapter) and pings it.
func Open(ctx context.Context, cfg config.Remote) (*sql.DB, error) {
	db, err := sql.Open(cfg.Driver, cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", cfg.Driver, err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	db.SetConnMaxIdleTime(5 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, cfg.Timeout)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		// An unreachable database at startup is the normal offline case; the
		// pool keeps retrying lazily on later calls.
		return db, fmt.Errorf("ping %s: %w", cfg.Driver, err)
	}
	return db, nil
}
