package postgres

import (
	"context"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/pkg/errors"
)

type Client struct {
	connection connection
	config     Config
}

type connection interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	Exec(ctx context.Context, sql string, arguments ...any) (pgconn.CommandTag, error)
}

func NewClient(ctx context.Context, c Config) (*Client, error) {
	conn, err := pgxpool.New(ctx, c.ToDBConnectionURI())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open the Postgres connection")
	}

	return &Client{connection: conn, config: c}, nil
}

func (c *Client) RunQueryWithoutResult(ctx context.Context, query string) error {
	_, err := c.connection.Exec(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

// Select runs a query and returns the results.
func (c *Client) Select(ctx context.Context, query string) ([][]any, error) {
	rows, err := c.connection.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collectedRows, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) ([]any, error) {
		return row.Values()
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to collect row values")
	}

	if len(collectedRows) == 0 {
		return make([][]any, 0), nil
	}

	return collectedRows, nil
}

// Ping runs a simple query to validate the connection.
func (c *Client) Ping(ctx context.Context) error {
	err := c.RunQueryWithoutResult(ctx, "SELECT 1")
	if err != nil {
		return errors.Wrap(err, "failed to run the test query on the Postgres connection")
	}

	return nil
}
