package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var toolsCmd = &cobra.Command{
	Use:   "tools",
	Short: "Browse catalog tools",
}

var toolsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all tools in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		tools, err := a.Catalog.Tools(cmd.Context())
		if err != nil {
			return fmt.Errorf("load tools: %w", err)
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(tools)
		}

		fmt.Printf("%-40s  %-14s  %s\n", "ID", "Type", "Title")
		rule(90)
		for _, t := range tools {
			fmt.Printf("%-40s  %-14s  %s\n", truncate(t.ToolID, 40), truncate(t.ToolType, 14), t.Title)
		}
		fmt.Printf("\n%d tools\n", len(tools))
		return nil
	},
}

func init() {
	toolsListCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	toolsCmd.AddCommand(toolsListCmd)
}
