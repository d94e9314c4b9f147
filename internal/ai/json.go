package ai

import (
	"encoding/json"
	"fmt"
	"strings"
)

// extractJSON pulls the first complete JSON object out of model output and
// unmarshals it into v. Providers routinely wrap JSON in markdown fences or
// surround it with prose even when asked not to, so the input is treated as
// adversarial: fences are stripped first, then the first balanced brace
// range is decoded.
func extractJSON(text string, v interface{}) error {
	text = stripFences(text)

	start := -1
	end := -1
	braceCount := 0
	inString := false
	escaped := false

	for i, c := range text {
		if escaped {
			escaped = false
			continue
		}
		switch c {
		case '\\':
			if inString {
				escaped = true
			}
		case '"':
			inString = !inString
		case '{':
			if inString {
				continue
			}
			if start == -1 {
				start = i
			}
			braceCount++
		case '}':
			if inString {
				continue
			}
			braceCount--
			if braceCount == 0 && start != -1 {
				end = i + 1
			}
		}
		if end != -1 {
			break
		}
	}

	if start == -1 || end == -1 {
		return fmt.Errorf("no JSON object found in response")
	}

	return json.Unmarshal([]byte(text[start:end]), v)
}

// stripFences removes markdown code fences around a response.
func stripFences(text string) string {
	text = strings.TrimSpace(text)
	text = strings.TrimPrefix(text, "```json")
	text = strings.TrimPrefix(text, "```")
	text = strings.TrimSuffix(text, "```")
	return strings.TrimSpace(text)
}

// truncate shortens raw model output for use in fallback narrative fields.
// The cut lands on a rune boundary so multi-byte output stays valid UTF-8.
func truncate(s string, n int) string {
	s = strings.TrimSpace(s)
	runes := []rune(s)
	if len(runes) <= n {
		return s
	}
	return strings.TrimSpace(string(runes[:n])) + "…"
}
