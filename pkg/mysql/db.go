package mysql

import (
	"context"
	"database/sql"

	_ "github.com/go-sql-driver/mysql"
	"github.com/jmoiron/sqlx"
	"github.com/pkg/errors"
)

type Client struct {
	connection connection
	config     Config
}

type connection interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryxContext(ctx context.Context, query string, args ...any) (*sqlx.Rows, error)
}

func NewClient(c Config) (*Client, error) {
	conn, err := sqlx.Open("mysql", c.ToDBConnectionURI())
	if err != nil {
		return nil, errors.Wrap(err, "failed to open the MySQL connection")
	}

	return &Client{connection: conn, config: c}, nil
}

func (c *Client) RunQueryWithoutResult(ctx context.Context, query string) error {
	_, err := c.connection.ExecContext(ctx, query)
	if err != nil {
		return err
	}

	return nil
}

// Select runs a query and returns the results.
func (c *Client) Select(ctx context.Context, query string) ([][]any, error) {
	rows, err := c.connection.QueryxContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	collectedRows := make([][]any, 0)
	for rows.Next() {
		row, err := rows.SliceScan()
		if err != nil {
			return nil, errors.Wrap(err, "failed to collect row values")
		}

		collectedRows = append(collectedRows, row)
	}

	return collectedRows, rows.Err()
}

// Ping runs a simple query to validate the connection.
func (c *Client) Ping(ctx context.Context) error {
	err := c.RunQueryWithoutResult(ctx, "SELECT 1")
	if err != nil {
		return errors.Wrap(err, "failed to run the test query on the MySQL connection")
	}

	return nil
}
