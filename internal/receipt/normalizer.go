// Package receipt provides deterministic heuristic extraction of structured
// receipts from raw OCR or manually pasted text.
package receipt

import "strings"

// NormalizeLines cleans raw receipt text into trimmed, non-empty lines.
// Line order is preserved; it is the order every later extraction stage sees.
func NormalizeLines(raw string) []string {
	if raw == "" {
		return nil
	}
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	var lines []string
	for _, line := range strings.Split(raw, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		lines = append(lines, collapseSpaces(line))
	}
	return lines
}

// collapseSpaces squeezes runs of whitespace into single spaces. OCR output
// frequently pads columns with long runs of spaces or tabs.
func collapseSpaces(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
