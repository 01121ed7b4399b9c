package term

import (
	"fmt"
	"strings"
	"time"

	"github.com/muesli/reflow/wordwrap"
)

// Wrap word-wraps s to the terminal width, capped at 80 columns, with
// every line indented by indent spaces.
func Wrap(s string, indent int) string {
	width := min(GetTerminalWidth(), 80) - indent
	if width < 20 {
		width = 20
	}

	lines := strings.Split(wordwrap.String(s, width), "\n")
	pad := strings.Repeat(" ", indent)
	for i := range lines {
		lines[i] = pad + lines[i]
	}
	return strings.Join(lines, "\n")
}

// RelTime renders then relative to now, e.g. "3h ago".
func RelTime(then, now time.Time) string {
	if then.IsZero() {
		return ""
	}

	d := now.Sub(then)
	switch {
	case d < 0:
		return then.Local().Format("Jan 2 15:04")
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		return fmt.Sprintf("%dm ago", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh ago", int(d/time.Hour))
	case d < 7*24*time.Hour:
		return fmt.Sprintf("%dd ago", int(d/(24*time.Hour)))
	}
	return then.Local().Format("Jan 2, 2006")
}
