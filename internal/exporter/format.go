package exporter

import (
	"strconv"
)

// formatFloat formats a float64 with the shortest representation that
// round-trips, matching the precision kept in the workbook
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}
