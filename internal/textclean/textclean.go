// Package textclean filters noise lines out of OCR output.
package textclean

import "strings"

// MinLineLength is the length a line must exceed (before trimming) to survive.
// OCR output is full of stray 1-4 character fragments: page numbers, bullet
// glyphs, checkbox artifacts.
const MinLineLength = 4

// Lines filters an ordered sequence of extracted lines, preserving the
// relative order of survivors. A line is dropped when its trimmed form is a
// bare URL (exact http:// or https:// prefix) or when its original length is
// MinLineLength or less. Survivors are returned with leading and trailing
// whitespace stripped. Lines are never split or merged.
func Lines(lines []string) []string {
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(trimmed, "http://") || strings.HasPrefix(trimmed, "https://") {
			continue
		}
		if len(line) <= MinLineLength {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}

	return cleaned
}
