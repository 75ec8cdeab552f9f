package terminal

import "strings"

// Ellipsis is appended to truncated strings.
const Ellipsis = "..."

// TruncateWithEllipsis shortens s to maxWidth runes, ending with "..." when
// something was cut.
func TruncateWithEllipsis(s string, maxWidth int) string {
	runes := []rune(s)
	if len(runes) <= maxWidth {
		return s
	}

	if maxWidth <= len(Ellipsis) {
		return strings.Repeat(".", max(maxWidth, 0))
	}

	return string(runes[:maxWidth-len(Ellipsis)]) + Ellipsis
}

// Indent prefixes every non-empty line of s with n spaces.
func Indent(s string, n int) string {
	prefix := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")

	for i, line := range lines {
		if line != "" {
			lines[i] = prefix + line
		}
	}

	return strings.Join(lines, "\n")
}
