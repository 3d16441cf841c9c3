package remotestore

import (
	"fmt"
	"strconv"
	"strings"
)

// QuoteString renders s as a single-quoted SQL literal, doubling any
// embedded quotes. Multi-statement batches are sent as one SQL string (the
// endpoint binds params for single statements only), so every value in a
// batched write is rendered inline through this.
func QuoteString(s string) string {
	return "'" + strings.ReplaceAll(s, "'", "''") + "'"
}

// Literal renders v as an inline SQL literal: strings quoted, nils and nil
// pointers as NULL, numerics bare.
func Literal(v interface{}) string {
	switch t := v.(type) {
	case nil:
		return "NULL"
	case string:
		return QuoteString(t)
	case int:
		return strconv.Itoa(t)
	case int64:
		return strconv.FormatInt(t, 10)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case bool:
		if t {
			return "1"
		}
		return "0"
	case *int:
		if t == nil {
			return "NULL"
		}
		return strconv.Itoa(*t)
	default:
		return QuoteString(fmt.Sprint(t))
	}
}
