package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"
)

// Output formats accepted by -o/--output.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// OutputFlags are the output options shared by listing commands.
type OutputFlags struct {
	Format string
	Quiet  bool
}

// AddOutputFlags registers -o/--output and -q/--quiet on cmd.
func AddOutputFlags(cmd *cobra.Command, formats ...string) *OutputFlags {
	flags := &OutputFlags{}
	if len(formats) == 0 {
		formats = []string{FormatTable, FormatJSON, FormatYAML}
	}
	cmd.Flags().StringVarP(&flags.Format, "output", "o", formats[0],
		"Output format ("+strings.Join(formats, ", ")+")")
	cmd.Flags().BoolVarP(&flags.Quiet, "quiet", "q", false, "Suppress non-essential output")

	AddFlagValidation(cmd, "output", func(format string) error {
		return ValidateFormatWithSuggestion(format, formats)
	})
	return flags
}

// Encode writes v to w as JSON or YAML. Table output is command specific.
func (f *OutputFlags) Encode(w io.Writer, v interface{}) error {
	switch f.Format {
	case FormatJSON:
		encoder := json.NewEncoder(w)
		encoder.SetIndent("", "  ")
		return encoder.Encode(v)
	case FormatYAML:
		encoder := yaml.NewEncoder(w)
		encoder.SetIndent(2)
		if err := encoder.Encode(v); err != nil {
			return err
		}
		return encoder.Close()
	default:
		return fmt.Errorf("unsupported format: %s", f.Format)
	}
}

// ValidateFormatWithSuggestion rejects formats outside valid, suggesting
// the closest match by prefix.
func ValidateFormatWithSuggestion(format string, valid []string) error {
	if slices.Contains(valid, format) {
		return nil
	}
	for _, candidate := range valid {
		if format != "" && strings.HasPrefix(candidate, strings.ToLower(format)) {
			return fmt.Errorf("invalid format %q, did you mean %q?", format, candidate)
		}
	}
	return fmt.Errorf("invalid format %q, must be one of: %s", format, strings.Join(valid, ", "))
}

// AddFlagValidation adds validation for a specific flag
func AddFlagValidation(cmd *cobra.Command, flagName string, validator func(string) error) {
	flag := cmd.Flags().Lookup(flagName)
	if flag == nil {
		return
	}
	flag.Value = &validatingValue{Value: flag.Value, validator: validator}
}

type validatingValue struct {
	pflag.Value
	validator func(string) error
}

func (v *validatingValue) Set(val string) error {
	if v.validator != nil {
		if err := v.validator(val); err != nil {
			return err
		}
	}
	return v.Value.Set(val)
}
