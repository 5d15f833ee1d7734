package frame

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFrame_CSVRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()

	f := New("order_id", "title", "price", "note")
	require.NoError(t, f.AppendRow(1.0, "Red Lipstick", 12.99, nil))
	require.NoError(t, f.AppendRow(2.0, "said \"hi\", left", 0.5, "with, comma"))

	require.NoError(t, f.WriteCSV(fs, "staging/flattened_dataset.csv"))

	got, err := ReadCSV(fs, "staging/flattened_dataset.csv")
	require.NoError(t, err)

	assert.Equal(t, f.Columns, got.Columns)
	assert.Equal(t, [][]any{
		{1.0, "Red Lipstick", 12.99, nil},
		{2.0, "said \"hi\", left", 0.5, "with, comma"},
	}, got.Rows)
}

func TestReadCSV_MissingFile(t *testing.T) {
	t.Parallel()

	_, err := ReadCSV(afero.NewMemMapFs(), "staging/nope.csv")
	require.Error(t, err)
}

func TestReadCSV_EmptyFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "staging/empty.csv", []byte(""), 0o644))

	_, err := ReadCSV(fs, "staging/empty.csv")
	require.Error(t, err)
}

func TestFormatCell(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		in   any
		want string
	}{
		{"nil", nil, ""},
		{"string", "hello", "hello"},
		{"float without trailing zeros", 9.99, "9.99"},
		{"whole float", 4.0, "4"},
		{"int", 42, "42"},
		{"bool", true, "true"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tt.want, formatCell(tt.in))
		})
	}
}
