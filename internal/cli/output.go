package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"sigs.k8s.io/yaml"
)

// OutputFormat represents the supported output formats for CLI commands.
type OutputFormat string

const (
	OutputFormatTable OutputFormat = "table"
	OutputFormatJSON  OutputFormat = "json"
	OutputFormatYAML  OutputFormat = "yaml"
)

// ValidOutputFormats contains all valid output format values.
var ValidOutputFormats = []OutputFormat{
	OutputFormatTable,
	OutputFormatJSON,
	OutputFormatYAML,
}

// ValidateOutputFormat validates that the given format string is a supported output format.
func ValidateOutputFormat(format string) error {
	switch OutputFormat(format) {
	case OutputFormatTable, OutputFormatJSON, OutputFormatYAML:
		return nil
	default:
		names := make([]string, len(ValidOutputFormats))
		for i, f := range ValidOutputFormats {
			names[i] = string(f)
		}
		return &InvalidInputError{
			Input:  format,
			Reason: fmt.Sprintf("output format must be one of %s", strings.Join(names, ", ")),
		}
	}
}

// WriteStructured encodes v as JSON or YAML. The YAML is produced from the
// JSON encoding so both formats use the json field names.
func WriteStructured(w io.Writer, format OutputFormat, v interface{}) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode output: %w", err)
	}

	switch format {
	case OutputFormatJSON:
		_, err = fmt.Fprintln(w, string(data))
		return err
	case OutputFormatYAML:
		out, err := yaml.JSONToYAML(data)
		if err != nil {
			return fmt.Errorf("failed to convert output to YAML: %w", err)
		}
		_, err = w.Write(out)
		return err
	default:
		return ValidateOutputFormat(string(format))
	}
}
