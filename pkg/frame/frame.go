// Package frame implements the in-memory tabular structure that flows between
// the pipeline steps. A Frame is a named list of columns and a list of rows,
// where a nil cell represents a missing value.
package frame

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
)

type Frame struct {
	Columns []string
	Rows    [][]any
}

func New(columns ...string) *Frame {
	return &Frame{
		Columns: columns,
		Rows:    make([][]any, 0),
	}
}

func (f *Frame) Len() int {
	return len(f.Rows)
}

func (f *Frame) AppendRow(values ...any) error {
	if len(values) != len(f.Columns) {
		return errors.Errorf("row has %d values, frame has %d columns", len(values), len(f.Columns))
	}

	f.Rows = append(f.Rows, values)
	return nil
}

func (f *Frame) ColumnIndex(name string) (int, bool) {
	for i, c := range f.Columns {
		if c == name {
			return i, true
		}
	}

	return 0, false
}

// Value returns the cell at the given row for the given column, nil if the
// column does not exist.
func (f *Frame) Value(row int, column string) any {
	idx, ok := f.ColumnIndex(column)
	if !ok {
		return nil
	}

	return f.Rows[row][idx]
}

// Project returns a new frame restricted to the given columns, in the given
// order. Every requested column must exist.
func (f *Frame) Project(columns ...string) (*Frame, error) {
	indexes := make([]int, len(columns))
	for i, c := range columns {
		idx, ok := f.ColumnIndex(c)
		if !ok {
			return nil, errors.Errorf("column '%s' does not exist in the frame", c)
		}
		indexes[i] = idx
	}

	out := New(columns...)
	for _, row := range f.Rows {
		newRow := make([]any, len(indexes))
		for i, idx := range indexes {
			newRow[i] = row[idx]
		}
		out.Rows = append(out.Rows, newRow)
	}

	return out, nil
}

// Reindex returns a new frame with exactly the given columns; columns missing
// from the source are filled with nil. This is the fixed-projection contract
// the downstream transformers rely on.
func (f *Frame) Reindex(columns ...string) *Frame {
	out := New(columns...)
	for _, row := range f.Rows {
		newRow := make([]any, len(columns))
		for i, c := range columns {
			if idx, ok := f.ColumnIndex(c); ok {
				newRow[i] = row[idx]
			}
		}
		out.Rows = append(out.Rows, newRow)
	}

	return out
}

// Rename returns a new frame with columns renamed according to the mapping;
// columns not present in the mapping keep their names.
func (f *Frame) Rename(mapping map[string]string) *Frame {
	columns := make([]string, len(f.Columns))
	for i, c := range f.Columns {
		if renamed, ok := mapping[c]; ok {
			c = renamed
		}
		columns[i] = c
	}

	out := New(columns...)
	out.Rows = f.Rows
	return out
}

// DropDuplicates returns a new frame with duplicate rows removed, keeping the
// first occurrence. When a subset of columns is given, row identity is judged
// on those columns only; otherwise on the full row.
func (f *Frame) DropDuplicates(subset ...string) (*Frame, error) {
	if len(subset) == 0 {
		subset = f.Columns
	}

	indexes := make([]int, len(subset))
	for i, c := range subset {
		idx, ok := f.ColumnIndex(c)
		if !ok {
			return nil, errors.Errorf("column '%s' does not exist in the frame", c)
		}
		indexes[i] = idx
	}

	out := New(f.Columns...)
	seen := make(map[string]bool)
	for _, row := range f.Rows {
		key := rowKey(row, indexes)
		if seen[key] {
			continue
		}

		seen[key] = true
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

// LeftJoin joins the frame against the right frame on leftOn == rightOn and
// appends the picked right-side columns. Unmatched rows get nil for every
// picked column; no left row is ever dropped. When the right side has
// duplicate keys, the first match wins.
func (f *Frame) LeftJoin(right *Frame, leftOn, rightOn string, pick ...string) (*Frame, error) {
	leftIdx, ok := f.ColumnIndex(leftOn)
	if !ok {
		return nil, errors.Errorf("join column '%s' does not exist in the left frame", leftOn)
	}

	rightIdx, ok := right.ColumnIndex(rightOn)
	if !ok {
		return nil, errors.Errorf("join column '%s' does not exist in the right frame", rightOn)
	}

	pickIndexes := make([]int, len(pick))
	for i, c := range pick {
		idx, ok := right.ColumnIndex(c)
		if !ok {
			return nil, errors.Errorf("picked column '%s' does not exist in the right frame", c)
		}
		pickIndexes[i] = idx
	}

	// nil keys never participate in the join, on either side
	lookup := make(map[string][]any)
	for _, row := range right.Rows {
		if row[rightIdx] == nil {
			continue
		}
		key := cellKey(row[rightIdx])
		if _, exists := lookup[key]; exists {
			continue
		}
		lookup[key] = row
	}

	out := New(append(append([]string{}, f.Columns...), pick...)...)
	for _, row := range f.Rows {
		newRow := make([]any, 0, len(out.Columns))
		newRow = append(newRow, row...)

		var match []any
		found := false
		if row[leftIdx] != nil {
			match, found = lookup[cellKey(row[leftIdx])]
		}
		for _, idx := range pickIndexes {
			if !found {
				newRow = append(newRow, nil)
				continue
			}
			newRow = append(newRow, match[idx])
		}

		out.Rows = append(out.Rows, newRow)
	}

	return out, nil
}

func rowKey(row []any, indexes []int) string {
	parts := make([]string, len(indexes))
	for i, idx := range indexes {
		parts[i] = cellKey(row[idx])
	}

	return strings.Join(parts, "\x1f")
}

func cellKey(v any) string {
	if v == nil {
		return "\x00"
	}

	return fmt.Sprintf("%T:%v", v, v)
}
