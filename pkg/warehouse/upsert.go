// Package warehouse builds the idempotent load statements that move staged
// tables into the destination database. The conflict-resolution contract is
// the behavioral spec here: loading the same table any number of times leaves
// the destination identical to loading it once.
package warehouse

import (
	"context"
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Dialect string

const (
	DialectMySQL    Dialect = "mysql"
	DialectPostgres Dialect = "postgres"
)

// Client is the warehouse connection surface the loader needs. Both the
// MySQL and Postgres clients satisfy it.
type Client interface {
	RunQueryWithoutResult(ctx context.Context, query string) error
	Ping(ctx context.Context) error
}

// BuildUpsertQuery constructs a single bulk insert that is a no-op for rows
// whose natural key already exists. The natural key is the first declared
// column of the table. An empty row set yields an empty query; the caller
// skips the round-trip.
func BuildUpsertQuery(dialect Dialect, table string, columns []string, rows [][]any) (string, error) {
	if len(columns) == 0 {
		return "", errors.Errorf("cannot build an upsert for table '%s' without columns", table)
	}

	if len(rows) == 0 {
		return "", nil
	}

	values := make([]string, 0, len(rows))
	for i, row := range rows {
		if len(row) != len(columns) {
			return "", errors.Errorf("row %d has %d values, table '%s' has %d columns", i, len(row), table, len(columns))
		}

		escaped := make([]string, len(row))
		for c, cell := range row {
			escaped[c] = EscapeValue(cell)
		}

		values = append(values, "("+strings.Join(escaped, ", ")+")")
	}

	insert := fmt.Sprintf(
		"INSERT INTO %s (%s) VALUES %s",
		table,
		strings.Join(columns, ", "),
		strings.Join(values, ", "),
	)

	key := columns[0]
	switch dialect {
	case DialectMySQL:
		return fmt.Sprintf("%s ON DUPLICATE KEY UPDATE %s = %s", insert, key, key), nil
	case DialectPostgres:
		return fmt.Sprintf("%s ON CONFLICT (%s) DO NOTHING", insert, key), nil
	default:
		return "", errors.Errorf("unsupported warehouse dialect '%s'", dialect)
	}
}
