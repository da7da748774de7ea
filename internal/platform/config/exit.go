package config

import (
	"fmt"
	"io"
	"os"
)

var osExit = os.Exit

// Exitf reports a fatal command error on stderr and exits with status 1.
func Exitf(format string, args ...any) {
	exitf(os.Stderr, format, args...)
}

func exitf(w io.Writer, format string, args ...any) {
	fmt.Fprintf(w, format+"\n", args...)
	osExit(1)
}
