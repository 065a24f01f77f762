package main

import (
	"fmt"
	"os"
)

const (
	colorGreen  = "\033[0;32m"
	colorRed    = "\033[0;31m"
	colorYellow = "\033[1;33m"
	colorBlue   = "\033[0;34m"
	colorReset  = "\033[0m"
)

// useColor follows the NO_COLOR convention (https://no-color.org)
var useColor = os.Getenv("NO_COLOR") == ""

func paint(color, text string) string {
	if !useColor {
		return text
	}
	return color + text + colorReset
}

func PrintInfo(format string, a ...interface{}) {
	fmt.Println(paint(colorBlue, "ℹ "+fmt.Sprintf(format, a...)))
}

func PrintSuccess(format string, a ...interface{}) {
	fmt.Println(paint(colorGreen, "✓ "+fmt.Sprintf(format, a...)))
}

func PrintWarning(format string, a ...interface{}) {
	fmt.Println(paint(colorYellow, "⚠ "+fmt.Sprintf(format, a...)))
}

func PrintError(format string, a ...interface{}) {
	fmt.Fprintln(os.Stderr, paint(colorRed, "✗ "+fmt.Sprintf(format, a...)))
}

func PrintHeader(title string) {
	fmt.Println()
	fmt.Println(paint(colorYellow, "=== "+title+" ==="))
}
