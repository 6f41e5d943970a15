package cmd

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/conneroisu/iconward/internal/services"
)

// errRejected is returned when at least one file failed validation.
var errRejected = errors.New("one or more files were rejected")

var validateCmd = &cobra.Command{
	Use:     "validate FILE...",
	Aliases: []string{"v"},
	Short:   "Check icon files before uploading them",
	Long: `Run the custom icon checks on each FILE: type and size limits, the
sanitizer and the external reference rules. References are judged against
the configured uploads location.

The command exits non-zero when any file is rejected.

Examples:
  iconward validate logo.svg
  iconward validate icons/*.svg -o json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runValidate,
}

var validateFlags *OutputFlags

func init() {
	rootCmd.AddCommand(validateCmd)
	validateFlags = AddOutputFlags(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	container, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	outcomes := container.ValidateFiles(args)

	out := cmd.OutOrStdout()
	if validateFlags.Format == FormatTable {
		for _, o := range outcomes {
			if o.Accepted {
				if !validateFlags.Quiet {
					fmt.Fprintf(out, "✓ %s → %s\n", o.File, o.Key)
				}
				continue
			}
			fmt.Fprintf(out, "✗ %s [%s]\n", o.Message, o.Reason)
		}
	} else if err := validateFlags.Encode(out, outcomes); err != nil {
		return err
	}

	if rejected := countRejected(outcomes); rejected > 0 {
		return fmt.Errorf("%d of %d: %w", rejected, len(outcomes), errRejected)
	}
	return nil
}

func countRejected(outcomes []services.ValidationOutcome) int {
	n := 0
	for _, o := range outcomes {
		if !o.Accepted {
			n++
		}
	}
	return n
}
