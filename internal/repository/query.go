package repository

import (
	"fmt"
	"strings"
)

// inClause renders "column IN ($n, ...)" starting at placeholder index start
// and returns the matching args.
func inClause(column string, start int, values []string) (string, []interface{}) {
	placeholders := make([]string, len(values))
	args := make([]interface{}, len(values))
	for i, value := range values {
		placeholders[i] = fmt.Sprintf("$%d", start+i)
		args[i] = value
	}
	return fmt.Sprintf("%s IN (%s)", column, strings.Join(placeholders, ",")), args
}

func statusStrings(statuses []string) []string {
	out := make([]string, 0, len(statuses))
	for _, status := range statuses {
		if trimmed := strings.TrimSpace(status); trimmed != "" {
			out = append(out, strings.ToUpper(trimmed))
		}
	}
	return out
}
