package styles

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// TruncateString truncates a string to fit within maxWidth, adding ellipsis if needed.
func TruncateString(s string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}

	if lipgloss.Width(s) <= maxWidth {
		return s
	}

	// Need to truncate - leave room for ellipsis
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	// Truncate rune by rune
	result := ""
	for _, r := range s {
		test := result + string(r)
		if lipgloss.Width(test) > maxWidth-3 {
			break
		}
		result = test
	}

	return result + "..."
}

// TruncatePath keeps the end of a path, which names the file, replacing the
// start with an ellipsis when it does not fit.
func TruncatePath(path string, maxWidth int) string {
	if maxWidth < 1 {
		return ""
	}
	if lipgloss.Width(path) <= maxWidth {
		return path
	}
	if maxWidth <= 3 {
		return strings.Repeat(".", maxWidth)
	}

	runes := []rune(path)
	result := ""
	for i := len(runes) - 1; i >= 0; i-- {
		test := string(runes[i]) + result
		if lipgloss.Width(test) > maxWidth-3 {
			break
		}
		result = test
	}

	return "..." + result
}
