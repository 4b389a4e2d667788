// Package colors provides terminal color support for strata output.
//
// Colors are applied only when stdout looks like a color-capable terminal;
// NO_COLOR disables them and FORCE_COLOR enables them unconditionally.
package colors

import (
	"fmt"
	"os"
	"strings"
)

const (
	colorReset = "\033[0m"
	colorBold  = "\033[1m"
	colorDim   = "\033[2m"

	brightRed    = "\033[91m"
	brightGreen  = "\033[92m"
	brightYellow = "\033[93m"
	brightBlue   = "\033[94m"
	brightCyan   = "\033[96m"
)

var colorEnabled = shouldUseColor()

func shouldUseColor() bool {
	if os.Getenv("NO_COLOR") != "" {
		return false
	}
	if os.Getenv("FORCE_COLOR") != "" {
		return true
	}

	term := strings.ToLower(os.Getenv("TERM"))
	if term == "dumb" || term == "" {
		return false
	}

	if info, err := os.Stdout.Stat(); err == nil {
		return (info.Mode() & os.ModeCharDevice) != 0
	}
	return true
}

func colorize(text, color string) string {
	if !colorEnabled {
		return text
	}
	return color + text + colorReset
}

// Change-variant coloring, shared by status and diff output.

func Added(text string) string    { return colorize(text, brightGreen) }
func Removed(text string) string  { return colorize(text, brightRed) }
func Modified(text string) string { return colorize(text, brightBlue) }
func Moved(text string) string    { return colorize(text, brightCyan) }

func Green(text string) string  { return colorize(text, brightGreen) }
func Yellow(text string) string { return colorize(text, brightYellow) }

func Bold(text string) string {
	if !colorEnabled {
		return text
	}
	return colorBold + text + colorReset
}

func Dim(text string) string {
	if !colorEnabled {
		return text
	}
	return colorDim + text + colorReset
}

// ChangeLine formats one change line with a colored single-letter prefix.
func ChangeLine(prefix, path string, color func(string) string) string {
	return fmt.Sprintf("  %s  %s", color(prefix), color(path))
}
