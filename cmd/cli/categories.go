package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/dvloznov/spend-insights/internal/analysis"
)

func categoriesCmd() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "categories",
		Short: "Show the category catalog",
		Long: `Display the categories the analysis groups spend into. With --yaml the catalog
is printed in the CATEGORIES_FILE format, ready to edit.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			catalog, err := cfg.Catalog()
			if err != nil {
				return err
			}

			if asYAML {
				data, err := analysis.MarshalCatalog(catalog)
				if err != nil {
					return err
				}
				_, err = cmd.OutOrStdout().Write(data)
				return err
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			fmt.Fprintln(w, "ID\tNAME\tFILTER\tREPORT SHEET")
			for _, d := range catalog.Definitions() {
				filter := "(all rows)"
				if d.Filter != nil {
					filter = fmt.Sprintf("%s = %s", d.Filter.Column, d.Filter.Value)
				}
				fmt.Fprintf(w, "%s\t%s\t%s\t%s\n", d.ID, d.Name, filter, d.ReportSheet())
			}
			return w.Flush()
		},
	}

	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the catalog as YAML")
	return cmd
}
