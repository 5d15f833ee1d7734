package transform

import (
	"time"

	"github.com/pkg/errors"
)

var dateLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// normalizeDate strips the time-of-day from a timestamp cell, yielding a
// calendar date. Nil stays nil; anything that cannot be parsed is an error
// for the owning transform, there is no row-level recovery for dates.
func normalizeDate(cell any) (any, error) {
	if cell == nil {
		return nil, nil
	}

	value, ok := cell.(string)
	if !ok {
		return nil, errors.Errorf("the date cell '%v' is not a string", cell)
	}

	for _, layout := range dateLayouts {
		if parsed, err := time.Parse(layout, value); err == nil {
			return parsed.Format("2006-01-02"), nil
		}
	}

	return nil, errors.Errorf("the date cell '%s' does not match any supported format", value)
}
