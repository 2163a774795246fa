package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"meeting-slot-api/core/constants"
	"meeting-slot-api/core/logger"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

type IDatabase interface {
	ExecContext(ctx context.Context, query string, args ...any) error
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
	NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error)
	PingContext(ctx context.Context) error
	Close() error
}

type Database struct {
	sqlx *sqlx.DB
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string // disable, require, verify-ca, verify-full
}

func (c DatabaseConfig) DSN() string {
	sslMode := c.SSLMode
	if sslMode == "" {
		sslMode = constants.DatabaseSSLMode
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, sslMode)
}

func InitDB(config DatabaseConfig) (*Database, error) {
	logger.Info("Database:Init:Start", "host", config.Host, "port", config.Port, "database", config.DBName)

	sqlxDB, err := sqlx.Connect("postgres", config.DSN())
	if err != nil {
		logger.Error("Database:Init:Connect", "error", err)
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}

	sqlxDB.SetMaxOpenConns(constants.DatabaseMaxOpenConns)
	sqlxDB.SetMaxIdleConns(constants.DatabaseMaxIdleConns)
	sqlxDB.SetConnMaxLifetime(time.Duration(constants.DatabaseConnMaxLifetime) * time.Minute)

	logger.Info("Database:Init:Success",
		"host", config.Host,
		"database", config.DBName,
		"user", config.User,
		"maxOpenConns", constants.DatabaseMaxOpenConns,
		"maxIdleConns", constants.DatabaseMaxIdleConns,
		"connMaxLifetime", constants.DatabaseConnMaxLifetime,
	)

	return &Database{sqlx: sqlxDB}, nil
}

// schema is idempotent; it runs on every start when auto_migrate is on.
var schema = []string{
	`CREATE TABLE IF NOT EXISTS user_preferences (
		user_email               TEXT PRIMARY KEY,
		work_days                BIGINT[] NOT NULL,
		work_hours_start         TEXT NOT NULL,
		work_hours_end           TEXT NOT NULL,
		timezone                 TEXT NOT NULL,
		default_duration_minutes INTEGER NOT NULL,
		buffer_minutes           INTEGER NOT NULL,
		allow_back_to_back       BOOLEAN NOT NULL DEFAULT FALSE,
		updated_at               TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE TABLE IF NOT EXISTS reply_drafts (
		id         UUID PRIMARY KEY,
		user_email TEXT NOT NULL,
		thread_id  TEXT NOT NULL DEFAULT '',
		recipients JSONB NOT NULL,
		subject    TEXT NOT NULL,
		draft_body TEXT NOT NULL,
		created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
	)`,
	`CREATE INDEX IF NOT EXISTS idx_reply_drafts_user_created ON reply_drafts (user_email, created_at DESC)`,
}

func (d *Database) Migrate(ctx context.Context) error {
	for _, stmt := range schema {
		if _, err := d.sqlx.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migrate: %w", err)
		}
	}
	logger.Info("Database:Migrate:Success", "statements", len(schema))
	return nil
}

func (d *Database) ExecContext(ctx context.Context, query string, args ...any) error {
	_, err := d.sqlx.ExecContext(ctx, query, args...)
	return err
}

func (d *Database) GetContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.GetContext(ctx, dest, query, args...)
}

func (d *Database) SelectContext(ctx context.Context, dest any, query string, args ...any) error {
	return d.sqlx.SelectContext(ctx, dest, query, args...)
}

func (d *Database) NamedExecContext(ctx context.Context, query string, arg any) (sql.Result, error) {
	return d.sqlx.NamedExecContext(ctx, query, arg)
}

func (d *Database) PingContext(ctx context.Context) error {
	return d.sqlx.PingContext(ctx)
}

func (d *Database) Close() error {
	return d.sqlx.Close()
}
