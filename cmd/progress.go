package cmd

import (
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/abhisek/a2companion/internal/app"
)

var progressCmd = &cobra.Command{
	Use:   "progress",
	Short: "Track per-task event progress",
}

var progressShowCmd = &cobra.Command{
	Use:   "show [event-id]",
	Short: "Show task progress for an event, or list tracked events",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if len(args) == 1 {
			view, err := a.EventDetail(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			fmt.Printf("%s (v%s)\n\n", view.Event.Title, view.Event.EventVersion)
			printTaskTable(view.Tasks)
			return nil
		}

		tracked, err := a.Progress.All(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Printf("%-40s  %4s  %5s  %4s  %s\n", "Event", "Ver", "Tasks", "Done", "Claimed")
		rule(72)
		for _, ev := range tracked {
			var done, claimed int
			for _, st := range ev.Tasks {
				if st.Flags.IsCompleted {
					done++
				}
				if st.Flags.IsClaimed {
					claimed++
				}
			}
			fmt.Printf("%-40s  %4s  %5d  %4d  %d\n",
				truncate(ev.EventID, 40), ev.EventVersion, len(ev.Tasks), done, claimed)
		}
		return nil
	},
}

var progressBumpCmd = &cobra.Command{
	Use:   "bump <event-id> <task-id> [delta]",
	Short: "Add delta (default 1, may be negative) to a task's progress",
	Args:  cobra.RangeArgs(2, 3),
	RunE: func(cmd *cobra.Command, args []string) error {
		delta := 1
		if len(args) == 3 {
			d, err := strconv.Atoi(args[2])
			if err != nil {
				return fmt.Errorf("invalid delta %q: %w", args[2], err)
			}
			delta = d
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.BumpTask(cmd.Context(), args[0], args[1], delta)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d (completed: %s, claimed: %s)\n",
			args[1], st.ProgressValue, mark(st.Flags.IsCompleted), mark(st.Flags.IsClaimed))
		return nil
	},
}

var progressSetCmd = &cobra.Command{
	Use:   "set <event-id> <task-id>",
	Short: "Set a task's progress value or flags",
	Args:  cobra.ExactArgs(2),
	RunE: func(cmd *cobra.Command, args []string) error {
		var edit app.TaskEdit
		flags := cmd.Flags()
		if flags.Changed("value") {
			v, _ := flags.GetInt("value")
			edit.Value = &v
		}
		if flags.Changed("completed") {
			v, _ := flags.GetBool("completed")
			edit.Completed = &v
		}
		if flags.Changed("claimed") {
			v, _ := flags.GetBool("claimed")
			edit.Claimed = &v
		}
		if edit == (app.TaskEdit{}) {
			return fmt.Errorf("nothing to set: use --value, --completed or --claimed")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		st, err := a.SetTask(cmd.Context(), args[0], args[1], edit)
		if err != nil {
			return err
		}
		fmt.Printf("%s: %d (completed: %s, claimed: %s)\n",
			args[1], st.ProgressValue, mark(st.Flags.IsCompleted), mark(st.Flags.IsClaimed))
		return nil
	},
}

var progressResetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Delete all tracked progress",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if yes, _ := cmd.Flags().GetBool("yes"); !yes {
			return fmt.Errorf("refusing to delete progress without --yes")
		}

		a, err := openApp()
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.Progress.Reset(cmd.Context()); err != nil {
			return err
		}
		fmt.Println("Progress reset.")
		return nil
	},
}

func init() {
	// Stop flag parsing at the first positional argument so a negative
	// delta is not read as a shorthand flag.
	progressBumpCmd.Flags().SetInterspersed(false)

	progressSetCmd.Flags().Int("value", 0, "Progress value (clamped to the task target)")
	progressSetCmd.Flags().Bool("completed", false, "Mark the task completed")
	progressSetCmd.Flags().Bool("claimed", false, "Mark the reward claimed")
	progressResetCmd.Flags().Bool("yes", false, "Confirm deletion")

	progressCmd.AddCommand(progressShowCmd)
	progressCmd.AddCommand(progressBumpCmd)
	progressCmd.AddCommand(progressSetCmd)
	progressCmd.AddCommand(progressResetCmd)
}
