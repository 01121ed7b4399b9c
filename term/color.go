package term

import (
	"strings"

	"github.com/fatih/color"
	"github.com/muesli/termenv"
)

var IsDarkBg = termenv.HasDarkBackground()

// palette maps output roles to colors that stay readable on the
// detected background.
type palette struct {
	handle  color.Attribute
	tag     color.Attribute
	success color.Attribute
	alert   color.Attribute
	prompt  color.Attribute
}

var colors = paletteFor(IsDarkBg)

func paletteFor(dark bool) palette {
	if dark {
		return palette{
			handle:  color.FgHiCyan,
			tag:     color.FgHiMagenta,
			success: color.FgHiGreen,
			alert:   color.FgHiRed,
			prompt:  color.FgHiMagenta,
		}
	}
	return palette{
		handle:  color.FgCyan,
		tag:     color.FgMagenta,
		success: color.FgGreen,
		alert:   color.FgRed,
		prompt:  color.FgMagenta,
	}
}

// Handle renders a user name as @handle.
func Handle(userName string) string {
	return color.New(color.Bold, colors.handle).Sprint("@" + userName)
}

// Tags renders tags as a single #tag line, or "" when there are none.
func Tags(tags []string) string {
	if len(tags) == 0 {
		return ""
	}
	return color.New(colors.tag).Sprint("#" + strings.Join(tags, " #"))
}

func Muted(s string) string {
	return color.New(color.FgHiBlack).Sprint(s)
}

func Success(s string) string {
	return color.New(colors.success).Sprint(s)
}

func Alert(s string) string {
	return color.New(color.Bold, colors.alert).Sprint(s)
}

func PromptLabel(s string) string {
	return color.New(colors.prompt, color.Bold).Sprint(s)
}
