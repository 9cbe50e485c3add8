package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

const (
	logFormatConsole = "console"
	logFormatJSON    = "json"
)

func validateRunOptions(opts runOptions) error {
	if err := validateFile("config file", opts.ConfigPath); err != nil {
		return err
	}
	if err := validateFile("env file", opts.EnvFile); err != nil {
		return err
	}

	switch opts.LogFormat {
	case logFormatConsole, logFormatJSON:
	default:
		return fmt.Errorf("log format must be %q or %q, got %q", logFormatConsole, logFormatJSON, opts.LogFormat)
	}

	if opts.TimeoutSet && opts.Timeout <= 0 {
		return fmt.Errorf("timeout must be positive, got %s", opts.Timeout)
	}
	if opts.RetryDelaySet && opts.RetryDelay < 0 {
		return fmt.Errorf("retry delay must not be negative, got %s", opts.RetryDelay)
	}

	return nil
}

// validateFile accepts an empty path; otherwise the path must be a regular file.
func validateFile(label, path string) error {
	if strings.TrimSpace(path) == "" {
		return nil
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return fmt.Errorf("resolve %s path: %w", label, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return fmt.Errorf("%s does not exist: %w", label, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s path %s is a directory", label, abs)
	}

	return nil
}
