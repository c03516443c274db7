package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"blend-swap/pkg/server"
)

var listenAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the blend session over HTTP",
	Long: `Expose the blend session as a JSON API, with Prometheus metrics on /metrics.
Pending transactions are refreshed in the background.

Examples:
  blend-swap serve
  blend-swap serve --listen 127.0.0.1:9000`,
	Args: cobra.NoArgs,
	Run:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&listenAddr, "listen", "", "Listen address (defaults to listen_addr from config)")
}

func runServe(cmd *cobra.Command, args []string) {
	a := mustLoadApp(cmd, true)
	defer a.Close()

	addr := a.cfg.ListenAddr
	if listenAddr != "" {
		addr = listenAddr
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := a.watcher.Start(ctx); err != nil {
		printError(err)
		os.Exit(1)
	}
	defer a.watcher.Stop()

	handler := server.NewHandler(a.logger, a.session, a.registry)
	app := server.NewApp(handler, a.metrics)

	color.Green("\n✓ Serving blend session on %s", addr)
	if err := server.Run(ctx, app, addr, a.logger); err != nil {
		printError(err)
		os.Exit(1)
	}
	color.Yellow("\nServer stopped.\n")
}
