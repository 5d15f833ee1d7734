package warehouse

import (
	"fmt"
	"strconv"
	"strings"
	"time"
)

// EscapeValue renders a scalar cell as a SQL literal for bulk insertion.
// Null-like values become the NULL literal, never a quoted empty string;
// textual values are quoted with internal quotes doubled; everything else
// uses its canonical literal form.
func EscapeValue(v any) string {
	switch value := v.(type) {
	case nil:
		return "NULL"
	case string:
		return "'" + strings.ReplaceAll(value, "'", "''") + "'"
	case bool:
		if value {
			return "TRUE"
		}
		return "FALSE"
	case float64:
		return strconv.FormatFloat(value, 'f', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(value), 'f', -1, 32)
	case int:
		return strconv.Itoa(value)
	case int32:
		return strconv.FormatInt(int64(value), 10)
	case int64:
		return strconv.FormatInt(value, 10)
	case time.Time:
		return "'" + value.Format("2006-01-02") + "'"
	default:
		return "'" + strings.ReplaceAll(fmt.Sprintf("%v", value), "'", "''") + "'"
	}
}
