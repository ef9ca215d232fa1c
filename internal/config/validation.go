package config

import (
	"fmt"
	"slices"
	"strings"
)

// Compressions lists the accepted values of general.compression.
var Compressions = []string{"none", "gz", "bz2", "xz", "zst", "lz4"}

// ValidationError describes one invalid field.
type ValidationError struct {
	Field   string
	Message string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

// ValidationErrors collects every problem found by Validate.
type ValidationErrors []ValidationError

func (ve ValidationErrors) Error() string {
	msgs := make([]string, 0, len(ve))
	for _, e := range ve {
		msgs = append(msgs, e.Error())
	}
	return strings.Join(msgs, "; ")
}

// Validate checks field values that would otherwise fail deep inside a
// command.
func (c Config) Validate() error {
	var errs ValidationErrors

	if c.General.Compression != "" && !slices.Contains(Compressions, c.General.Compression) {
		errs = append(errs, ValidationError{
			Field:   "general.compression",
			Message: fmt.Sprintf("unsupported value %q (valid: %s)", c.General.Compression, strings.Join(Compressions, ", ")),
		})
	}
	if c.General.MaxBackups < 0 {
		errs = append(errs, ValidationError{Field: "general.max_backups", Message: "must not be negative"})
	}
	if c.General.WaitTime < 0 {
		errs = append(errs, ValidationError{Field: "general.wait_time", Message: "must not be negative"})
	}
	if c.Directories.AppDir == "" {
		errs = append(errs, ValidationError{Field: "directories.app_dir", Message: "is required"})
	}
	if c.Directories.BackupDir == "" {
		errs = append(errs, ValidationError{Field: "directories.backup_dir", Message: "is required"})
	}

	if len(errs) > 0 {
		return errs
	}
	return nil
}
