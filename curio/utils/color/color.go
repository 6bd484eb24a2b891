package color

import (
	"github.com/fatih/color"
)

var (
	infoColor       = color.New(color.FgGreen)
	warningColor    = color.New(color.FgYellow, color.Bold)
	errorColor      = color.New(color.FgRed, color.Bold)
	assistantColor  = color.New(color.FgHiYellow, color.Bold)
	suggestionColor = color.New(color.FgMagenta)
	pendingColor    = color.New(color.FgHiBlack, color.Italic)
)

func ColorInfo(s string) string {
	return infoColor.Sprint(s)
}

func ColorWarning(s string) string {
	return warningColor.Sprint(s)
}

func ColorError(s string) string {
	return errorColor.Sprint(s)
}

func ColorAssistant(s string) string {
	return assistantColor.Sprint(s)
}

func ColorSuggestion(s string) string {
	return suggestionColor.Sprint(s)
}

func ColorPending(s string) string {
	return pendingColor.Sprint(s)
}

// Disable turns colors off, e.g. when output is not a terminal.
func Disable() {
	color.NoColor = true
}
