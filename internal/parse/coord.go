package parse

import (
	"math"
	"strconv"
	"strings"
)

// Textual values the exports use for "no data".
var emptyMarkers = map[string]bool{
	"": true, "-": true, "None": true, "nan": true, "NaN": true,
}

// coordStrategy attempts one interpretation of a raw coordinate string.
type coordStrategy func(string) (float64, bool)

// Strategies are tried in order; the first success wins. Order matters:
// a value that already carries a decimal separator must never be rewritten.
var coordStrategies = []coordStrategy{
	coordDirect,
	coordCommaDecimal,
	coordReinsertSeparator,
}

// maxPlausibleDegree bounds what a separator-less value may directly parse
// to. Anything beyond it lost its decimal point in the export and belongs to
// the reinsert strategy instead.
const maxPlausibleDegree = 180.0

// Coordinate parses the locale-variable numeric encodings found in the
// exports: plain floats, comma decimals ("40,416775") and values whose
// separator was lost entirely ("4041677"). Returns nil when no strategy
// applies; it never fails with an error.
func Coordinate(value string) *float64 {
	s := strings.TrimSpace(value)
	if emptyMarkers[s] {
		return nil
	}
	for _, try := range coordStrategies {
		if f, ok := try(s); ok {
			return &f
		}
	}
	return nil
}

// coordDirect accepts values that parse as-is, except separator-less
// integers outside the valid degree range ("4041677"): those only exist
// because the decimal point was dropped, and reinsertion recovers them.
func coordDirect(s string) (float64, bool) {
	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, false
	}
	if !strings.Contains(s, ".") && math.Abs(f) > maxPlausibleDegree {
		return 0, false
	}
	return f, true
}

// coordCommaDecimal reads comma-decimal encodings ("40,416775"). A trailing
// comma keeps the integer part ("4," is 4.0), the way the exports truncate a
// zero fraction.
func coordCommaDecimal(s string) (float64, bool) {
	f, err := strconv.ParseFloat(strings.Replace(s, ",", ".", 1), 64)
	if err != nil || math.Abs(f) > maxPlausibleDegree {
		return 0, false
	}
	return f, true
}

// coordReinsertSeparator handles degree values whose separator was dropped
// or duplicated ("4041677", "40.123.45"): strip every separator and put the
// decimal point back after the second character. Too short to be a
// coordinate (< 3 digits) is rejected.
func coordReinsertSeparator(s string) (float64, bool) {
	clean := strings.NewReplacer(".", "", ",", "").Replace(s)
	if len(clean) < 3 {
		return 0, false
	}
	f, err := strconv.ParseFloat(clean[:2]+"."+clean[2:], 64)
	return f, err == nil
}
