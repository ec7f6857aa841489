package cmd

import (
	"context"

	"propstack/catalog/internal/config"
	"propstack/catalog/internal/container"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	configPath string
	jsonOut    bool

	cfg *config.Config
)

var rootCmd = &cobra.Command{
	Use:   "propstack",
	Short: "PropStack property technology catalog",
	Long: `PropStack - catalog of property technology vendors

The catalog is a taxonomy of categories (e.g. Multifamily > OCCUPANCY > Occupy)
whose leaves are company lists. Companies are addressed by category path and
position in the list.`,
	Version:       "0.1.0",
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		loaded, err := config.Load(configPath)
		if err != nil {
			return err
		}
		if err := config.SetupLogging(loaded.Log); err != nil {
			return err
		}
		cfg = loaded
		return nil
	},
}

func Execute() error {
	err := rootCmd.Execute()
	if err != nil {
		log.Error(err)
	}
	return err
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "", "config file (default: ./config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&jsonOut, "json", false, "JSON output")
}

// withContainer builds the application graph for one command
func withContainer(ctx context.Context, fn func(app *container.Container) error) error {
	app, err := container.New(ctx, cfg)
	if err != nil {
		return err
	}
	defer app.Close()

	return fn(app)
}
