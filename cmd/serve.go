package cmd

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/conneroisu/iconward/internal/services"
)

var serveCmd = &cobra.Command{
	Use:     "serve",
	Aliases: []string{"s"},
	Short:   "Serve icons, manifest and gallery over HTTP",
	Long: `Start the HTTP server:

  GET /                  icon gallery
  GET /api/icons         manifest as JSON
  GET /icons/{key}.svg   sanitized icon markup
  GET /api/rejections    rejected uploads (drained on read)
  GET /ws                catalog update notifications
  GET /metrics           Prometheus metrics

Unless --no-watch is given, the catalog is rebuilt when the custom icon
directory changes and connected galleries reload.

Examples:
  iconward serve
  iconward serve --port 9000 --host 0.0.0.0
  iconward serve --origin "*.example.com"`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

var (
	serveNoWatch bool
	serveOrigins []string
)

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().String("host", "", "Server host (default from config)")
	serveCmd.Flags().IntP("port", "p", 0, "Server port (default from config)")
	serveCmd.Flags().BoolVar(&serveNoWatch, "no-watch", false, "Do not rebuild the catalog on changes")
	serveCmd.Flags().StringSliceVar(&serveOrigins, "origin", nil, "Extra websocket origin patterns")
}

func runServe(cmd *cobra.Command, args []string) error {
	if err := bindFlags(cmd, map[string]string{
		"host": "server.host",
		"port": "server.port",
	}); err != nil {
		return err
	}

	container, err := loadContainer(cmd)
	if err != nil {
		return err
	}
	defer container.Close()

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()

	fmt.Fprintf(cmd.OutOrStdout(), "Serving icons on http://%s\n", container.Config.Server.Addr())
	if dir := container.IconDir(); dir == "" {
		fmt.Fprintln(cmd.OutOrStdout(), "No uploads directory configured; serving built-in icons only")
	}

	return services.NewServeService(container).Serve(ctx, services.ServeOptions{
		Watch:          !serveNoWatch,
		OriginPatterns: serveOrigins,
	})
}
