// Package callbacks parses the raw callback data strings used by inline buttons.
package callbacks

import (
	"strconv"
	"strings"
)

// Suffix returns the part of data after prefix, reporting whether prefix matched
// and left something behind.
func Suffix(data, prefix string) (string, bool) {
	if !strings.HasPrefix(data, prefix) {
		return "", false
	}
	rest := data[len(prefix):]
	return rest, rest != ""
}

// SuffixInt64 parses the part of data after prefix as a base-10 int64.
func SuffixInt64(data, prefix string) (int64, error) {
	rest, ok := Suffix(data, prefix)
	if !ok {
		return 0, strconv.ErrSyntax
	}
	return strconv.ParseInt(rest, 10, 64)
}

// Join builds "<prefix><id>" data for a button.
func Join(prefix string, id int64) string {
	return prefix + strconv.FormatInt(id, 10)
}
