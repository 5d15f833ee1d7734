// Package dataset models the acquired raw document: a JSON array of orders,
// each carrying a list of nested product entries, nested review entries per
// product, and an embedded customer record. The document is schemaless on
// purpose; the flattening step owns the projection to a fixed column set.
package dataset

import (
	"encoding/json"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

type Document struct {
	Orders []map[string]any
}

// Load reads and decodes the raw document. Anything that is not a JSON array
// of objects is a fatal acquisition-shape error; there is no partial result.
func Load(fs afero.Fs, path string) (*Document, error) {
	contents, err := afero.ReadFile(fs, path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to read the raw dataset '%s'", path)
	}

	return Parse(contents)
}

func Parse(contents []byte) (*Document, error) {
	var raw []any
	if err := json.Unmarshal(contents, &raw); err != nil {
		return nil, errors.Wrap(err, "the raw dataset is not a JSON array")
	}

	orders := make([]map[string]any, 0, len(raw))
	for i, entry := range raw {
		order, ok := entry.(map[string]any)
		if !ok {
			return nil, errors.Errorf("entry %d of the raw dataset is not an object", i)
		}

		orders = append(orders, order)
	}

	return &Document{Orders: orders}, nil
}
