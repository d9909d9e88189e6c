// Package util provides small formatting helpers shared by the CLI and the
// dashboard.
package util

import "fmt"

// Pluralize returns singular if count is 1, otherwise plural.
func Pluralize(count int, singular, plural string) string {
	if count == 1 {
		return singular
	}
	return plural
}

// Count formats a count with its noun, e.g. "1 channel" or "3 channels".
func Count(count int, singular, plural string) string {
	return fmt.Sprintf("%d %s", count, Pluralize(count, singular, plural))
}
