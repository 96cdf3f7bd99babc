package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"

	"github.com/kinthithe/pos-api/internal/config"
)

// Checkout commits several statements per sale inside one transaction, so the
// pool is kept small but with generous idle headroom for the poll watchers.
const (
	maxOpenConns    = 20
	maxIdleConns    = 10
	connMaxLifetime = 30 * time.Minute

	connectAttempts = 6
	pingTimeout     = 5 * time.Second
)

// Connect opens a PostgreSQL pool and verifies it with a ping. The database
// often comes up after the API in compose setups, so failed pings are retried
// with linear backoff before giving up.
func Connect(cfg *config.DatabaseConfig) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil database config")
	}

	db, err := sqlx.Open("postgres", buildDSN(cfg))
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}

	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxLifetime(connMaxLifetime)

	for attempt := 1; ; attempt++ {
		ctx, cancel := context.WithTimeout(context.Background(), pingTimeout)
		err = db.PingContext(ctx)
		cancel()
		if err == nil {
			return db, nil
		}
		if attempt >= connectAttempts {
			_ = db.Close()
			return nil, fmt.Errorf("database unreachable after %d attempts: %w", connectAttempts, err)
		}
		log.Warn().Err(err).Int("attempt", attempt).Msg("database ping failed, retrying")
		time.Sleep(time.Duration(attempt) * time.Second)
	}
}

func buildDSN(cfg *config.DatabaseConfig) string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s",
		url.QueryEscape(cfg.User), url.QueryEscape(cfg.Password),
		cfg.Host, cfg.Port, cfg.Name, cfg.SSLMode)
}
