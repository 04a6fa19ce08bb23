package config

import (
	"context"
	"database/sql"
	"errors"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	zlog "github.com/rs/zerolog/log"
)

// PoolConfig sizes the database/sql pool.
type PoolConfig struct {
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxIdleTime time.Duration
	ConnMaxLifetime time.Duration
}

var DefaultPool = PoolConfig{
	MaxOpenConns:    20,
	MaxIdleConns:    10,
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: time.Hour,
}

const pingTimeout = 3 * time.Second

var errEmptyDSN = errors.New("empty DB DSN")

// NewDB opens a pgx-backed pool and pings it once. The pool is closed again
// when the ping fails.
func NewDB(dsn string, pool PoolConfig, debug bool) (*sql.DB, error) {
	if dsn == "" {
		return nil, errEmptyDSN
	}
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	applyPool(db, pool)

	ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
	defer cancel()

	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, err
	}

	if debug {
		var who, dbname, ver string
		_ = db.QueryRowContext(ctx, "SELECT current_user, current_database(), current_setting('server_version')").
			Scan(&who, &dbname, &ver)
		zlog.Debug().
			Str("user", who).
			Str("db", dbname).
			Str("version", ver).
			Int("max_open", pool.MaxOpenConns).
			Msg("db connected")
	}

	return db, nil
}

func applyPool(db *sql.DB, p PoolConfig) {
	if p.MaxOpenConns <= 0 {
		p = DefaultPool
	}
	db.SetMaxOpenConns(p.MaxOpenConns)
	db.SetMaxIdleConns(p.MaxIdleConns)
	db.SetConnMaxIdleTime(p.ConnMaxIdleTime)
	db.SetConnMaxLifetime(p.ConnMaxLifetime)
}
