package cmd

import (
	"fmt"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	"github.com/abhisek/a2companion/internal/app"
	"github.com/abhisek/a2companion/internal/catalog"
)

var eventsCmd = &cobra.Command{
	Use:   "events",
	Short: "Browse catalog events",
}

var eventsListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all events in the catalog",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		summaries, err := a.Catalog.Summaries(cmd.Context())
		if err != nil {
			return fmt.Errorf("load events: %w", err)
		}
		summaries = slices.Clone(summaries)

		sortKey, _ := cmd.Flags().GetString("sort")
		if err := app.SortSummaries(summaries, sortKey); err != nil {
			return err
		}

		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(summaries)
		}

		fmt.Printf("%-40s  %4s  %-30s  %-9s  %-12s  %5s\n",
			"ID", "Ver", "Title", "Status", "Schedule", "Tasks")
		rule(110)
		for _, s := range summaries {
			fmt.Printf("%-40s  %4s  %-30s  %-9s  %-12s  %5d\n",
				truncate(s.EventID, 40), s.EventVersion, truncate(s.Title, 30),
				orDash(s.ActivityStatus), orDash(s.Schedule), s.Sections.TaskCount)
		}
		fmt.Printf("\n%d events\n", len(summaries))
		return nil
	},
}

var eventsShowCmd = &cobra.Command{
	Use:   "show <event-id>",
	Short: "Show an event with its tasks, guide and FAQ",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		view, err := a.EventDetail(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if asJSON, _ := cmd.Flags().GetBool("json"); asJSON {
			return printJSON(view)
		}

		ev := view.Event
		fmt.Printf("%s (v%s)\n", ev.Title, ev.EventVersion)
		if ev.Subtitle != "" {
			fmt.Println(ev.Subtitle)
		}
		fmt.Printf("ID: %s   Status: %s   Schedule: %s   Verified: %s\n\n",
			ev.EventID, orDash(ev.ActivityStatus), orDash(ev.Schedule), orDash(ev.LastVerifiedDate))

		printTaskTable(view.Tasks)

		if len(ev.GuideSections) > 0 {
			fmt.Println("\nGuide")
			printSections(ev.GuideSections, 1)
		}
		if len(ev.FAQItems) > 0 {
			fmt.Println("\nFAQ")
			for _, q := range ev.FAQItems {
				fmt.Printf("  Q: %s\n", q.Question)
				if q.Answer != "" {
					fmt.Printf("  A: %s\n", strings.ReplaceAll(q.Answer, "\n", "\n     "))
				}
			}
		}
		if len(ev.ToolRefs) > 0 {
			fmt.Printf("\nTools: %s\n", strings.Join(ev.ToolRefs, ", "))
		}
		return nil
	},
}

func printSections(sections []catalog.GuideSection, depth int) {
	for _, s := range sections {
		fmt.Printf("%s- %s\n", strings.Repeat("  ", depth), s.Title)
		printSections(s.Subsections, depth+1)
	}
}

func init() {
	eventsListCmd.Flags().Bool("json", false, "Print JSON instead of a table")
	eventsListCmd.Flags().String("sort", app.SortIndex, "Sort by index, title, status or schedule")
	eventsShowCmd.Flags().Bool("json", false, "Print JSON instead of text")

	eventsCmd.AddCommand(eventsListCmd)
	eventsCmd.AddCommand(eventsShowCmd)
}
