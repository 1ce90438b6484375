// Package words renders marksheet totals as English words for display on
// printed marksheets.
package words

import (
	"math"
	"strings"

	"github.com/divan/num2words"
)

// maxConvertible is one above the largest supported value; the conversion
// covers three-digit groups up to billions.
const maxConvertible = 1e12

// Convert renders a whole number as Title-Case space-joined English words,
// e.g. Convert(1001) == "One Thousand One". Zero yields "Zero". Negative,
// non-integer or out-of-range input is unsupported and yields the empty
// string.
func Convert(n float64) string {
	if n < 0 || math.IsNaN(n) || n != math.Trunc(n) || n >= maxConvertible {
		return ""
	}

	raw := num2words.Convert(int(n))
	return titleCase(strings.ReplaceAll(raw, "-", " "))
}

func titleCase(s string) string {
	parts := strings.Fields(s)
	for i, part := range parts {
		parts[i] = strings.ToUpper(part[:1]) + part[1:]
	}
	return strings.Join(parts, " ")
}
