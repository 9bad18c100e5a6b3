package main

import (
	"fmt"
	"os"

	"github.com/mattn/go-isatty"
)

const (
	colorReset = "\x1b[0m"
	colorRed   = "\x1b[31m"
	colorGreen = "\x1b[32m"
	colorDim   = "\x1b[2m"
)

// useColor reports whether f is a terminal that accepts escape codes.
func useColor(f *os.File) bool {
	// NO_COLOR convention: https://no-color.org/
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return false
	}
	if os.Getenv("TERM") == "dumb" {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func paint(f *os.File, color, s string) string {
	if !useColor(f) {
		return s
	}
	return color + s + colorReset
}

// logf writes a diagnostic line to stderr when verbose is set.
func logf(verbose bool, format string, args ...interface{}) {
	if !verbose {
		return
	}
	fmt.Fprintf(os.Stderr, paint(os.Stderr, colorDim, "[gneedle] "+format)+"\n", args...)
}

func errorf(format string, args ...interface{}) {
	fmt.Fprintf(os.Stderr, paint(os.Stderr, colorRed, "error: ")+format+"\n", args...)
}
