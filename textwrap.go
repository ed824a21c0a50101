package barboard

import (
	"strings"
	"unicode/utf8"
)

// wrapText breaks s into lines no wider than maxWidth according to measure.
// Explicit newlines are kept. Words wider than maxWidth are split between
// runes.
func wrapText(s string, maxWidth float64, measure func(string) float64) []string {
	if s == "" {
		return nil
	}
	var lines []string
	for _, para := range strings.Split(s, "\n") {
		words := strings.Fields(para)
		if len(words) == 0 {
			lines = append(lines, "")
			continue
		}
		line := ""
		for _, w := range words {
			candidate := w
			if line != "" {
				candidate = line + " " + w
			}
			if measure(candidate) <= maxWidth {
				line = candidate
				continue
			}
			if line != "" {
				lines = append(lines, line)
			}
			line = w
			for measure(line) > maxWidth && utf8.RuneCountInString(line) > 1 {
				head, rest := splitToWidth(line, maxWidth, measure)
				lines = append(lines, head)
				line = rest
			}
		}
		lines = append(lines, line)
	}
	return lines
}

// splitToWidth returns the longest prefix of s (at least one rune) that fits
// maxWidth, and the remainder.
func splitToWidth(s string, maxWidth float64, measure func(string) float64) (string, string) {
	cut := 0
	for i, r := range s {
		end := i + utf8.RuneLen(r)
		if cut > 0 && measure(s[:end]) > maxWidth {
			break
		}
		cut = end
	}
	return s[:cut], s[cut:]
}

// clipLines keeps at most maxLines lines, marking truncation with an ellipsis
// on the last kept line.
func clipLines(lines []string, maxLines int) []string {
	if maxLines <= 0 {
		return nil
	}
	if len(lines) <= maxLines {
		return lines
	}
	out := append([]string(nil), lines[:maxLines]...)
	out[maxLines-1] = strings.TrimRight(out[maxLines-1], " ") + "…"
	return out
}
