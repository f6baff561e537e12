// Package util provides common utility functions used across the recorder.
package util

import "strings"

// TrimQuotes removes leading and trailing double quotes from a string.
func TrimQuotes(s string) string {
	return strings.Trim(s, `"`)
}

// FixEscapeQuotes replaces escaped double quotes ("") with single double quotes (").
func FixEscapeQuotes(s string) string {
	return strings.ReplaceAll(s, `""`, `"`)
}

// SplitQuoted splits a line into whitespace-separated fields, keeping
// double-quoted substrings together. Quotes are stripped from the
// resulting fields and "" inside a quoted field unescapes to ".
// Input: vehicle 1 "Raven GT" raven_gt_s2 -> [vehicle 1 Raven GT raven_gt_s2]
func SplitQuoted(line string) []string {
	var fields []string
	var b strings.Builder
	inQuotes := false

	flush := func() {
		if b.Len() > 0 || inQuotes {
			fields = append(fields, b.String())
			b.Reset()
		}
	}

	for i := 0; i < len(line); i++ {
		c := line[i]
		switch {
		case c == '"':
			if inQuotes && i+1 < len(line) && line[i+1] == '"' {
				// escaped quote inside a quoted field
				b.WriteByte('"')
				i++
				continue
			}
			if inQuotes {
				fields = append(fields, b.String())
				b.Reset()
			}
			inQuotes = !inQuotes
		case c == ' ' || c == '\t':
			if inQuotes {
				b.WriteByte(c)
			} else {
				flush()
			}
		default:
			b.WriteByte(c)
		}
	}
	flush()
	return fields
}
