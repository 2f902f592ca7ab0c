package cmd

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/skillforge/internal/skillgraph"
)

var catalogCmd = &cobra.Command{
	Use:   "catalog",
	Short: "Manage the skill catalog",
}

var catalogImportCmd = &cobra.Command{
	Use:   "import <file.yaml>",
	Short: "Validate a YAML catalog and replace the stored one",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := skillgraph.LoadCatalogFile(args[0])
		if err != nil {
			return err
		}

		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		g, err := rt.engine.ImportCatalog(cmd.Context(), c)
		if err != nil {
			return err
		}
		fmt.Printf("Imported %d skills, %d edges, %d clusters.\n", g.Len(), len(g.Edges()), len(g.Clusters()))
		return nil
	},
}

var catalogValidateCmd = &cobra.Command{
	Use:   "validate <file.yaml>",
	Short: "Check a YAML catalog without importing it",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		c, err := skillgraph.LoadCatalogFile(args[0])
		if err != nil {
			return err
		}
		g, err := skillgraph.New(c)
		if err != nil {
			return err
		}
		fmt.Printf("OK: %d skills, %d edges, %d roots, %d clusters.\n",
			g.Len(), len(g.Edges()), len(g.RootSkills()), len(g.Clusters()))
		return nil
	},
}

var catalogShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the stored catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		rt, err := openRuntime(cmd.Context(), cmd)
		if err != nil {
			return err
		}
		defer rt.Close()

		g := rt.engine.Graph()
		if asYAML, _ := cmd.Flags().GetBool("yaml"); asYAML {
			data, err := skillgraph.MarshalCatalog(g.Catalog())
			if err != nil {
				return err
			}
			_, err = os.Stdout.Write(data)
			return err
		}

		fmt.Printf("%-24s  %-32s  %-12s  %4s  %6s  %s\n",
			"ID", "Name", "Category", "Diff", "Hours", "Requires")
		fmt.Println(strings.Repeat("─", 110))
		for _, s := range g.Skills() {
			name := s.Name
			if len(name) > 32 {
				name = name[:29] + "..."
			}
			fmt.Printf("%-24s  %-32s  %-12s  %4d  %6.1f  %s\n",
				s.ID, name, s.Category, s.Difficulty, s.EstimatedHours,
				strings.Join(g.Prerequisites(s.ID), ", "))
		}
		fmt.Printf("\n%d skills\n", g.Len())
		return nil
	},
}

func init() {
	catalogShowCmd.Flags().Bool("yaml", false, "Print the catalog as importable YAML")

	catalogCmd.AddCommand(catalogImportCmd)
	catalogCmd.AddCommand(catalogValidateCmd)
	catalogCmd.AddCommand(catalogShowCmd)
}
