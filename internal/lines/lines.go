// Package lines fixes the newline convention every operation shares
package lines

import "strings"

// Split cuts text at '\n', drops a trailing '\r' from every line and ignores the empty
// segment after a final newline. Empty text has no lines.
func Split(text string) []string {
	if text == "" {
		return []string{}
	}

	result := strings.Split(text, "\n")
	if result[len(result)-1] == "" {
		result = result[:len(result)-1]
	}
	for i := range result {
		result[i] = strings.TrimSuffix(result[i], "\r")
	}
	return result
}

func Join(lines []string) string {
	return strings.Join(lines, "\n")
}

// Count is len(Split(text)) without allocating the lines
func Count(text string) int {
	if text == "" {
		return 0
	}
	n := strings.Count(text, "\n")
	if !strings.HasSuffix(text, "\n") {
		n++
	}
	return n
}

// IsBlank reports a line made only of whitespace
func IsBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
