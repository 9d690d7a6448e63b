// Package timing turns routine durations into display labels.
//
// Cheer routines are counted in eights. A label pairs the raw seconds with
// the number of eight-counts they cover, assuming one eight-count every
// fifteen seconds:
//
//	timing.FormatTime(60) // "60 sec | 4×8"
//
// A label always shows at least one eight-count, however short the section.
package timing

import (
	"fmt"
	"math"
)

// SecondsPerEight is the span of one eight-count used for labels.
const SecondsPerEight = 15

// CountsOfEight returns max(1, round(seconds/15)). Halves round away from
// zero, though whole seconds never land on a half.
func CountsOfEight(seconds int) int {
	n := int(math.Round(float64(seconds) / SecondsPerEight))
	return max(1, n)
}

// FormatTime returns "<seconds> sec | <n>×8".
func FormatTime(seconds int) string {
	return fmt.Sprintf("%d sec | %d×8", seconds, CountsOfEight(seconds))
}

// Split divides total seconds into parts shares. Every share gets the
// integer quotient; the remainder is handed out one second at a time to the
// leading shares. It returns nil when parts is not positive, and all-zero
// shares when total is not positive.
func Split(total, parts int) []int {
	if parts <= 0 {
		return nil
	}
	shares := make([]int, parts)
	if total <= 0 {
		return shares
	}
	base, rem := total/parts, total%parts
	for i := range shares {
		shares[i] = base
		if i < rem {
			shares[i]++
		}
	}
	return shares
}
