package frame

import (
	"encoding/csv"
	"fmt"
	"strconv"
	"time"

	"github.com/pkg/errors"
	"github.com/spf13/afero"
)

// WriteCSV persists the frame as a staged artifact: a header row with the
// column names followed by one record per row. Nil cells are written as empty
// strings.
func (f *Frame) WriteCSV(fs afero.Fs, path string) error {
	file, err := fs.Create(path)
	if err != nil {
		return errors.Wrapf(err, "failed to create staged file '%s'", path)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(f.Columns); err != nil {
		return errors.Wrap(err, "failed to write the header row")
	}

	record := make([]string, len(f.Columns))
	for _, row := range f.Rows {
		for i, cell := range row {
			record[i] = formatCell(cell)
		}

		if err := writer.Write(record); err != nil {
			return errors.Wrap(err, "failed to write a staged row")
		}
	}

	writer.Flush()
	return writer.Error()
}

// ReadCSV loads a staged artifact back into a frame. Empty cells become nil,
// cells that parse as numbers become float64, everything else stays a string.
func ReadCSV(fs afero.Fs, path string) (*Frame, error) {
	file, err := fs.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "failed to open staged file '%s'", path)
	}
	defer file.Close()

	reader := csv.NewReader(file)
	records, err := reader.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "failed to parse staged file '%s'", path)
	}

	if len(records) == 0 {
		return nil, errors.Errorf("staged file '%s' has no header row", path)
	}

	out := New(records[0]...)
	for _, record := range records[1:] {
		row := make([]any, len(record))
		for i, cell := range record {
			row[i] = parseCell(cell)
		}
		out.Rows = append(out.Rows, row)
	}

	return out, nil
}

func formatCell(v any) string {
	switch value := v.(type) {
	case nil:
		return ""
	case string:
		return value
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int64:
		return strconv.FormatInt(value, 10)
	case bool:
		return strconv.FormatBool(value)
	case time.Time:
		return value.Format("2006-01-02")
	default:
		return fmt.Sprintf("%v", value)
	}
}

func parseCell(cell string) any {
	if cell == "" {
		return nil
	}

	if value, err := strconv.ParseFloat(cell, 64); err == nil {
		return value
	}

	return cell
}
