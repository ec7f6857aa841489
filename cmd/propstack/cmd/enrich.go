package cmd

import (
	"fmt"

	"propstack/catalog/internal/container"

	"github.com/spf13/cobra"
)

var enrichInline bool

var enrichCmd = &cobra.Command{
	Use:   "enrich",
	Short: "Find logos for companies without one",
	Long: `Scans each company website for a logo.

By default a task per company is queued on the redis stream and picked up by
the workers of "propstack serve". With --inline the websites are fetched by
this process.`,
	Args: cobra.NoArgs,
	RunE: runEnrich,
}

func init() {
	rootCmd.AddCommand(enrichCmd)
	enrichCmd.Flags().BoolVar(&enrichInline, "inline", false, "fetch logos in this process instead of queueing")
}

func runEnrich(cmd *cobra.Command, args []string) error {
	return withContainer(cmd.Context(), func(app *container.Container) error {
		count, err := app.Enrich(cmd.Context(), enrichInline)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(map[string]interface{}{"inline": enrichInline, "count": count})
		}
		if enrichInline {
			fmt.Printf("✓ Stored %d logos\n", count)
		} else {
			fmt.Printf("✓ Queued %d companies\n", count)
		}
		return nil
	})
}
