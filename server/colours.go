package server

import (
	"fmt"
	"os"

	"github.com/fatih/color"
)

var (
	gray = color.New(color.FgHiBlack)
	red  = color.New(color.FgRed)
)

var methodColors = map[string]*color.Color{
	"GET":     color.New(color.FgGreen),
	"POST":    color.New(color.FgBlue),
	"PUT":     color.New(color.FgCyan),
	"DELETE":  color.New(color.FgYellow),
	"PATCH":   color.New(color.FgMagenta),
	"OPTIONS": gray,
}

func methodColor(method string) *color.Color {
	if c, ok := methodColors[method]; ok {
		return c
	}
	return gray
}

func logRoute(method, path string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	fmt.Fprintf(os.Stderr, "[%s] %s\n", methodColor(method).Sprint(paddedMethod), path)
}

func logError(method, path, msg string) {
	paddedMethod := fmt.Sprintf(" %-7s", method)
	fmt.Fprintf(os.Stderr, "[%s] %s %s\n", methodColor(method).Sprint(paddedMethod), path, red.Sprint(msg))
}
