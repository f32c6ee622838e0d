package cmd

import (
	"errors"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/pflag"
)

// ExitError carries the process exit code for main.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string {
	if e.Err == nil {
		return ""
	}
	return e.Err.Error()
}

func (e *ExitError) Unwrap() error {
	return e.Err
}

func ExitCode(err error) int {
	if err == nil {
		return 0
	}
	var ee *ExitError
	if errors.As(err, &ee) && ee.Code != 0 {
		return ee.Code
	}
	return 1
}

// newUsageError wraps errors in a way main() can map to exit code 2.
func newUsageError(err error) error {
	if err == nil {
		return nil
	}
	// Preserve pflag.ErrHelp (should not be treated as failure).
	if errors.Is(err, pflag.ErrHelp) {
		return err
	}
	return &ExitError{Code: 2, Err: err}
}

func usage(msg string) error {
	return &ExitError{Code: 2, Err: errors.New(msg)}
}

// loadDotEnv reads ./.env without overriding variables already set.
func loadDotEnv() error {
	if _, err := os.Stat(".env"); err != nil {
		return nil
	}
	return godotenv.Load(".env")
}
