package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"propstack/catalog/internal/container"
	"propstack/catalog/internal/domain"

	"github.com/spf13/cobra"
)

var (
	companyName string
	companyURL  string
	companyLogo string
	companySee  string
	resetYes    bool
)

var categoriesCmd = &cobra.Command{
	Use:   "categories",
	Short: "List every category",
	Args:  cobra.NoArgs,
	RunE:  runCategories,
}

var companiesCmd = &cobra.Command{
	Use:   "companies <path>",
	Short: "List the companies of a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runCompanies,
}

var addCmd = &cobra.Command{
	Use:   "add <path>",
	Short: "Add a company to a category",
	Args:  cobra.ExactArgs(1),
	RunE:  runAdd,
}

var updateCmd = &cobra.Command{
	Use:   "update <path> <index>",
	Short: "Update a company, empty flags keep the current value",
	Args:  cobra.ExactArgs(2),
	RunE:  runUpdate,
}

var deleteCmd = &cobra.Command{
	Use:   "delete <path> <index>",
	Short: "Delete a company",
	Args:  cobra.ExactArgs(2),
	RunE:  runDelete,
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Discard every change and restore the initial catalog",
	Args:  cobra.NoArgs,
	RunE:  runReset,
}

func init() {
	rootCmd.AddCommand(categoriesCmd, companiesCmd, addCmd, updateCmd, deleteCmd, resetCmd)

	for _, c := range []*cobra.Command{addCmd, updateCmd} {
		c.Flags().StringVar(&companyName, "name", "", "company name")
		c.Flags().StringVar(&companyURL, "url", "", "company website")
		c.Flags().StringVar(&companyLogo, "logo", "", "logo URL")
		c.Flags().StringVar(&companySee, "see", "", "related category label")
	}

	resetCmd.Flags().BoolVar(&resetYes, "yes", false, "confirm the reset")
}

func runCategories(cmd *cobra.Command, args []string) error {
	return withContainer(cmd.Context(), func(app *container.Container) error {
		categories, err := app.Catalog.Categories(cmd.Context())
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(categories)
		}
		for _, category := range categories {
			depth := len(domain.SplitPath(category.Path)) - 1
			fmt.Printf("%s%s\n", strings.Repeat("  ", depth), category.Name)
		}
		return nil
	})
}

func runCompanies(cmd *cobra.Command, args []string) error {
	path := args[0]

	return withContainer(cmd.Context(), func(app *container.Container) error {
		companies, err := app.Catalog.Companies(cmd.Context(), path)
		if err != nil {
			return err
		}

		if jsonOut {
			return printJSON(companies)
		}
		printCompanies(path, companies)
		return nil
	})
}

func runAdd(cmd *cobra.Command, args []string) error {
	path := args[0]
	record := flagRecord()

	return withContainer(cmd.Context(), func(app *container.Container) error {
		if err := app.Catalog.Add(cmd.Context(), path, record); err != nil {
			return err
		}
		return showList(cmd, app, path, "✓ Added "+record.Name)
	})
}

func runUpdate(cmd *cobra.Command, args []string) error {
	path := args[0]
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}
	patch := flagRecord()

	return withContainer(cmd.Context(), func(app *container.Container) error {
		if err := app.Catalog.Update(cmd.Context(), path, index, patch); err != nil {
			return err
		}
		return showList(cmd, app, path, fmt.Sprintf("✓ Updated #%d", index))
	})
}

func runDelete(cmd *cobra.Command, args []string) error {
	path := args[0]
	index, err := parseIndex(args[1])
	if err != nil {
		return err
	}

	return withContainer(cmd.Context(), func(app *container.Container) error {
		if err := app.Catalog.Delete(cmd.Context(), path, index); err != nil {
			return err
		}
		return showList(cmd, app, path, fmt.Sprintf("✓ Deleted #%d", index))
	})
}

func runReset(cmd *cobra.Command, args []string) error {
	if !resetYes {
		return fmt.Errorf("reset discards every change, pass --yes to confirm")
	}

	return withContainer(cmd.Context(), func(app *container.Container) error {
		if err := app.Catalog.Reset(cmd.Context()); err != nil {
			return err
		}

		if jsonOut {
			return printJSON(map[string]string{"status": "reset"})
		}
		fmt.Println("✓ Catalog restored to its initial data")
		return nil
	})
}

func flagRecord() domain.CompanyRecord {
	return domain.CompanyRecord{
		Name: companyName,
		URL:  companyURL,
		Logo: companyLogo,
		See:  companySee,
	}
}

func parseIndex(arg string) (int, error) {
	index, err := strconv.Atoi(arg)
	if err != nil {
		return 0, fmt.Errorf("invalid index %q: %w", arg, err)
	}
	return index, nil
}

func showList(cmd *cobra.Command, app *container.Container, path, message string) error {
	companies, err := app.Catalog.Companies(cmd.Context(), path)
	if err != nil {
		return err
	}

	if jsonOut {
		return printJSON(companies)
	}
	fmt.Println(message)
	printCompanies(path, companies)
	return nil
}

func printCompanies(path string, companies []domain.CompanyRecord) {
	fmt.Printf("%s (%d)\n", domain.FormatPath(path), len(companies))
	for i, company := range companies {
		if company.IsReference() {
			fmt.Printf("  %2d. see also: %s\n", i, company.See)
			continue
		}
		fmt.Printf("  %2d. %-24s %s\n", i, company.Name, company.URL)
	}
}

func printJSON(data interface{}) error {
	encoder := json.NewEncoder(os.Stdout)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}
