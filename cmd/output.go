package cmd

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/abhisek/a2companion/internal/app"
	"github.com/abhisek/a2companion/internal/catalog"
)

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func truncate(s string, n int) string {
	if len([]rune(s)) <= n {
		return s
	}
	return string([]rune(s)[:n-3]) + "..."
}

func rule(width int) {
	fmt.Println(strings.Repeat("─", width))
}

func orDash(s string) string {
	if s == "" {
		return "-"
	}
	return s
}

func mark(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

func formatRequirement(r catalog.Requirement) string {
	return fmt.Sprintf("%s %s %s (%s)", r.Action, r.TargetValue, r.Object, r.Scope)
}

// printTaskTable renders the task rows of an event view.
func printTaskTable(tasks []app.TaskView) {
	fmt.Printf("%-26s  %-36s  %-22s  %-16s  %-4s  %s\n",
		"Task", "Requirement", "Reward", "Progress", "Done", "Claimed")
	rule(120)

	for _, t := range tasks {
		reward := fmt.Sprintf("%s %s", t.Reward.Amount, t.RewardAsset.Label)
		prog := fmt.Sprintf("%d/%s (%d%%)", t.State.ProgressValue, t.Requirement.TargetValue, t.Percent)
		fmt.Printf("%-26s  %-36s  %-22s  %-16s  %-4s  %s\n",
			truncate(t.TaskID, 26), truncate(formatRequirement(t.Requirement), 36),
			truncate(reward, 22), prog, mark(t.State.Flags.IsCompleted), mark(t.State.Flags.IsClaimed))
	}
}
