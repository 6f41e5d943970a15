package cmd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/iconward/internal/services"
	"github.com/conneroisu/iconward/internal/watcher"
)

var watchCmd = &cobra.Command{
	Use:     "watch",
	Aliases: []string{"w"},
	Short:   "Rebuild the catalog when custom icons change",
	Long: `Watch the custom icon directory and build a fresh catalog after every
batch of changes, printing a summary and any newly rejected uploads.
The directory does not need to exist yet.

Examples:
  iconward watch
  iconward watch --debounce 1s`,
	Args: cobra.NoArgs,
	RunE: runWatch,
}

var watchDebounce = watcher.DefaultDebounce

func init() {
	rootCmd.AddCommand(watchCmd)
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", watcher.DefaultDebounce, "Quiet period before a rebuild")
}

func runWatch(cmd *cobra.Command, args []string) error {
	container, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	out := cmd.OutOrStdout()
	printCatalogSummary(cmd, container)

	return services.NewWatchService(container, watchDebounce).Watch(ctx, func(ctx context.Context, events []watcher.ChangeEvent) {
		fmt.Fprintf(out, "%d change(s) detected\n", len(events))
		printCatalogSummary(cmd, container)
	})
}

func printCatalogSummary(cmd *cobra.Command, container *services.Container) {
	out := cmd.OutOrStdout()
	cat := container.NewCatalog()

	custom := 0
	manifest := cat.GetIconManifest()
	for _, entry := range manifest {
		if entry.IsCustom {
			custom++
		}
	}
	fmt.Fprintf(out, "Catalog: %d icons (%d custom)\n", len(manifest), custom)
	for _, msg := range cat.ConsumeRejectedCustomIcons() {
		fmt.Fprintf(out, "  ✗ %s\n", msg)
	}
}
