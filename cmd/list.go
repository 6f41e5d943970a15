package cmd

import (
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/conneroisu/iconward/internal/catalog"
)

var listCmd = &cobra.Command{
	Use:     "list",
	Aliases: []string{"ls"},
	Short:   "List the merged icon manifest",
	Long: `List every icon of the merged catalog: built-in icons plus the custom
icons that passed sanitization. Custom keys carry the configured prefix.

Examples:
  iconward list                   # Table of keys, labels and origin
  iconward list -o json           # Manifest as JSON
  iconward list --custom          # Only uploaded icons
  iconward list --rejected        # Also print why uploads were rejected`,
	Args: cobra.NoArgs,
	RunE: runList,
}

var (
	listFlags      *OutputFlags
	listRejected   bool
	listCustomOnly bool
)

// listing is the structured output of list --rejected.
type listing struct {
	Icons    []catalog.ManifestEntry `json:"icons" yaml:"icons"`
	Rejected []string                `json:"rejected" yaml:"rejected"`
}

func init() {
	rootCmd.AddCommand(listCmd)

	listFlags = AddOutputFlags(listCmd)
	listCmd.Flags().BoolVarP(&listRejected, "rejected", "r", false, "Print rejected custom icons")
	listCmd.Flags().BoolVar(&listCustomOnly, "custom", false, "Only list custom icons")
}

func runList(cmd *cobra.Command, args []string) error {
	container, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	cat := container.NewCatalog()
	manifest := cat.GetIconManifest()
	if listCustomOnly {
		custom := manifest[:0]
		for _, entry := range manifest {
			if entry.IsCustom {
				custom = append(custom, entry)
			}
		}
		manifest = custom
	}

	var rejected []string
	if listRejected {
		if rejected = cat.ConsumeRejectedCustomIcons(); rejected == nil {
			rejected = []string{}
		}
	}

	out := cmd.OutOrStdout()
	switch listFlags.Format {
	case FormatTable:
		return outputListTable(out, manifest, rejected)
	default:
		if listRejected {
			return listFlags.Encode(out, listing{Icons: manifest, Rejected: rejected})
		}
		return listFlags.Encode(out, manifest)
	}
}

func outputListTable(out io.Writer, manifest []catalog.ManifestEntry, rejected []string) error {
	if len(manifest) == 0 {
		fmt.Fprintln(out, "No icons found.")
	} else {
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "KEY\tLABEL\tORIGIN")
		custom := 0
		for _, entry := range manifest {
			origin := catalog.OriginStandard
			if entry.IsCustom {
				origin = catalog.OriginCustom
				custom++
			}
			fmt.Fprintf(w, "%s\t%s\t%s\n", entry.Key, entry.Label, origin)
		}
		if err := w.Flush(); err != nil {
			return err
		}
		if !listFlags.Quiet {
			fmt.Fprintf(out, "\n%d icons (%d custom)\n", len(manifest), custom)
		}
	}

	if len(rejected) > 0 {
		fmt.Fprintln(out, "\nRejected custom icons:")
		for _, msg := range rejected {
			fmt.Fprintf(out, "  • %s\n", msg)
		}
	}
	return nil
}
