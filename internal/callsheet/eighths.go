package callsheet

import (
	"math"
	"regexp"
	"strconv"
)

var (
	fractionPages = regexp.MustCompile(`^\s*(?:(\d+)\s+)?(\d+)\s*/\s*(\d+)\s*$`)
	wholePages    = regexp.MustCompile(`^\s*(\d+)\s*$`)
)

// ParseEighths converts a script page count such as "2 3/8", "3/8" or
// "2" into eighths of a page.  Anything it cannot read counts as zero.
func ParseEighths(s string) int {
	if m := fractionPages.FindStringSubmatch(s); m != nil {
		whole := 0
		if m[1] != "" {
			whole, _ = strconv.Atoi(m[1])
		}
		num, _ := strconv.Atoi(m[2])
		den, _ := strconv.Atoi(m[3])
		if den <= 0 {
			den = 8
		}
		return whole*8 + int(math.Round(float64(num)*8/float64(den)))
	}
	if m := wholePages.FindStringSubmatch(s); m != nil {
		whole, _ := strconv.Atoi(m[1])
		return whole * 8
	}
	return 0
}

// FormatEighths renders eighths as "<whole> <rest>/8", leaving out a
// zero whole part or a zero remainder.  Zero renders as "0".
func FormatEighths(n int) string {
	if n <= 0 {
		return "0"
	}
	whole, rest := n/8, n%8
	switch {
	case rest == 0:
		return strconv.Itoa(whole)
	case whole == 0:
		return strconv.Itoa(rest) + "/8"
	}
	return strconv.Itoa(whole) + " " + strconv.Itoa(rest) + "/8"
}
