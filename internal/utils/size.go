package utils

import "fmt"

var sizeUnits = []string{"Б", "К", "М", "Г", "Т", "П"}

// FormatSize renders a byte count with binary (1024) prefixes, e.g. 1536 -> "1.50К".
// Values beyond the largest unit stay in that unit.
func FormatSize(bytes int64) string {
	value := float64(bytes)
	unit := 0
	for value >= 1024 && unit < len(sizeUnits)-1 {
		value /= 1024
		unit++
	}
	return fmt.Sprintf("%.2f%s", value, sizeUnits[unit])
}
