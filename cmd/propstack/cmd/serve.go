package cmd

import (
	"os"
	"os/signal"
	"syscall"

	"propstack/catalog/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the catalog API",
	Long:  `Serves the read and admin API. With the redis backend the logo enrichment workers run alongside.`,
	Args:  cobra.NoArgs,
	RunE:  runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return withContainer(ctx, func(app *container.Container) error {
		if err := app.Run(ctx); err != nil {
			return err
		}
		log.Info("👋 Server stopped")
		return nil
	})
}
