package database

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"order-chatbot/internal/common/config"
	"order-chatbot/internal/common/logger"

	_ "github.com/lib/pq"
)

// PostgresClient holds the pooled connection to the orders database.
type PostgresClient struct {
	DB     *sql.DB
	debug  bool
	logger logger.Logger
}

func NewPostgres(cfg config.PostgresConfig, log logger.Logger) (*PostgresClient, error) {
	db, err := sql.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)

	return NewPostgresFromDB(db, cfg.Debug, log), nil
}

// NewPostgresFromDB wraps an existing handle, e.g. a sqlmock connection.
func NewPostgresFromDB(db *sql.DB, debug bool, log logger.Logger) *PostgresClient {
	if log == nil {
		log = logger.NewNoOpLogger()
	}
	return &PostgresClient{DB: db, debug: debug, logger: log}
}

func (c *PostgresClient) Ping(ctx context.Context) error {
	return c.DB.PingContext(ctx)
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

func (c *PostgresClient) Query(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error) {
	c.trace(query, args)
	return c.DB.QueryContext(ctx, query, args...)
}

func (c *PostgresClient) QueryRow(ctx context.Context, query string, args ...interface{}) *sql.Row {
	c.trace(query, args)
	return c.DB.QueryRowContext(ctx, query, args...)
}

func (c *PostgresClient) Exec(ctx context.Context, query string, args ...interface{}) (sql.Result, error) {
	c.trace(query, args)
	return c.DB.ExecContext(ctx, query, args...)
}

// trace echoes statements when database debug mode is on.
func (c *PostgresClient) trace(query string, args []interface{}) {
	if !c.debug {
		return
	}
	c.logger.Debug("sql", map[string]interface{}{
		"query": query,
		"args":  args,
	})
}
