package backend

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/jmoiron/sqlx"
	"go.uber.org/zap"
)

// PostgresClient implements Client on top of a Postgres schema.
type PostgresClient struct {
	db     *sqlx.DB
	schema string
	logger *zap.Logger
}

func NewPostgresClient(db *sqlx.DB, schema string, logger *zap.Logger) *PostgresClient {
	return &PostgresClient{db: db, schema: schema, logger: logger.Named("backend")}
}

func (c *PostgresClient) Select(ctx context.Context, table string, dest any, opts ...Option) error {
	query, args, err := buildSelect(c.schema, table, newQuery(opts))
	if err != nil {
		return err
	}
	if err := c.db.SelectContext(ctx, dest, query, args...); err != nil {
		c.logger.Debug("select failed", zap.String("table", table), zap.Error(err))
		return fmt.Errorf("select %s: %w", table, err)
	}
	return nil
}

func (c *PostgresClient) Get(ctx context.Context, table string, dest any, opts ...Option) error {
	query, args, err := buildSelect(c.schema, table, newQuery(append(opts, Limit(1))))
	if err != nil {
		return err
	}
	if err := c.db.GetContext(ctx, dest, query, args...); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return ErrNotFound
		}
		return fmt.Errorf("get %s: %w", table, err)
	}
	return nil
}

func (c *PostgresClient) Insert(ctx context.Context, table string, row Row, dest any) error {
	query, args, err := buildInsert(c.schema, table, row)
	if err != nil {
		return err
	}

	if dest == nil {
		if _, err := c.db.ExecContext(ctx, query, args...); err != nil {
			return fmt.Errorf("insert %s: %w", table, err)
		}
		return nil
	}

	if err := c.db.QueryRowxContext(ctx, query, args...).StructScan(dest); err != nil {
		return fmt.Errorf("insert %s: %w", table, err)
	}
	return nil
}

func (c *PostgresClient) Update(ctx context.Context, table string, row Row, opts ...Option) (int64, error) {
	query, args, err := buildUpdate(c.schema, table, row, newQuery(opts))
	if err != nil {
		return 0, err
	}
	return c.exec(ctx, "update", table, query, args)
}

func (c *PostgresClient) Delete(ctx context.Context, table string, opts ...Option) (int64, error) {
	query, args, err := buildDelete(c.schema, table, newQuery(opts))
	if err != nil {
		return 0, err
	}
	return c.exec(ctx, "delete", table, query, args)
}

func (c *PostgresClient) exec(ctx context.Context, verb, table, query string, args []any) (int64, error) {
	result, err := c.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", verb, table, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return 0, fmt.Errorf("%s %s: %w", verb, table, err)
	}
	return rowsAffected, nil
}
