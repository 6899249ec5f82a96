// Package repository provides safe SQL utilities alongside storage,
// adapted from the teacher's database.safe_sql.go whitelist approach.
package repository

import "fmt"

// allowedSortColumns whitelists columns a caller may request as a dynamic
// ORDER BY target, used by ListShortlistSorted.
var allowedSortColumns = map[string]bool{
	"composite_score":           true,
	"confidence_adjusted_score": true,
	"penalty":                   true,
	"score_version":             true,
	"created_at":                true,
}

// ErrInvalidSortColumn is returned when a sort column is not in the whitelist.
var ErrInvalidSortColumn = fmt.Errorf("invalid sort column")

// ValidateSortColumn checks a sort column against the whitelist.
func ValidateSortColumn(column string) error {
	if !allowedSortColumns[column] {
		return fmt.Errorf("%w: %q", ErrInvalidSortColumn, column)
	}
	return nil
}
