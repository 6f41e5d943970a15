package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var clearCacheCmd = &cobra.Command{
	Use:   "clear-cache",
	Short: "Forget the persisted custom icon scan",
	Long: `Delete the persisted fingerprint index and cached scan result so the
next catalog build rescans the custom icon directory.`,
	Args: cobra.NoArgs,
	RunE: runClearCache,
}

func init() {
	rootCmd.AddCommand(clearCacheCmd)
}

func runClearCache(cmd *cobra.Command, args []string) error {
	container, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	container.Scanner.Reset(commandContext(cmd))
	fmt.Fprintf(cmd.OutOrStdout(), "Cleared %s cache\n", container.Config.Store.Backend)
	return nil
}
