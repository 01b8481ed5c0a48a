package config

import (
	"fmt"
	"io"
	"os"
)

var (
	exitFunc             = os.Exit
	exitOutput io.Writer = os.Stderr
)

// Exitf writes a formatted error message to stderr and exits with code 1.
// Entry points use it for failures that happen before logging is configured.
func Exitf(format string, args ...any) {
	fmt.Fprintf(exitOutput, format+"\n", args...)
	exitFunc(1)
}
