package ast

import "strconv"

// floatString renders a float64 as Bloch's printable form requires:
// fixed ".0" suffix for whole values, default formatting otherwise
// (spec §4.3.10). Shared by AST printing and the runtime's echo path.
func floatString(f float64) string {
	if f == float64(int64(f)) {
		return strconv.FormatFloat(f, 'f', 1, 64)
	}
	return strconv.FormatFloat(f, 'g', -1, 64)
}

// FormatFloat is the exported form used by the runtime package.
func FormatFloat(f float64) string { return floatString(f) }
