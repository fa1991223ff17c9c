package app

import (
	"context"
	"errors"
	"fmt"
	"slices"

	"golang.org/x/text/collate"
	"golang.org/x/text/language"

	"github.com/abhisek/a2companion/internal/catalog"
	"github.com/abhisek/a2companion/internal/progress"
)

// ErrUnknownTask is returned when an event has no task with the given id.
var ErrUnknownTask = errors.New("unknown task")

// TaskView is one task of an event together with its tracked state.
type TaskView struct {
	catalog.Task
	RewardAsset catalog.RewardAsset `json:"rewardAsset"`
	State       progress.TaskState  `json:"state"`
	Percent     int                 `json:"percent"`
}

// EventView is an event with per-task progress and display rewards.
type EventView struct {
	Event *catalog.Event `json:"event"`
	Tasks []TaskView     `json:"tasks"`
}

// EventDetail loads an event, resolves the display form of each reward and
// attaches the stored progress of its version.
func (a *App) EventDetail(ctx context.Context, eventID string) (*EventView, error) {
	ev, err := a.Catalog.Event(ctx, eventID)
	if err != nil {
		return nil, err
	}
	shared, err := a.Catalog.SharedItems(ctx)
	if err != nil {
		return nil, fmt.Errorf("load shared items: %w", err)
	}
	tracked, err := a.Progress.Read(ctx, ev.EventID, ev.EventVersion)
	if err != nil {
		return nil, err
	}

	view := &EventView{Event: ev, Tasks: make([]TaskView, 0, len(ev.Tasks))}
	for _, t := range ev.Tasks {
		st := tracked.Task(t.TaskID)
		view.Tasks = append(view.Tasks, TaskView{
			Task:        t,
			RewardAsset: catalog.ResolveReward(t.Reward.Type, ev.Assets, shared),
			State:       st,
			Percent:     progress.Percent(st, t.Requirement.TargetValue.Int()),
		})
	}
	return view, nil
}

// TaskEdit lists the fields SetTask changes. Nil fields are left alone.
type TaskEdit struct {
	Value     *int
	Completed *bool
	Claimed   *bool
}

// BumpTask moves a task's progress by delta within [0, target].
func (a *App) BumpTask(ctx context.Context, eventID, taskID string, delta int) (progress.TaskState, error) {
	ev, task, err := a.lookupTask(ctx, eventID, taskID)
	if err != nil {
		return progress.TaskState{}, err
	}
	target := task.Requirement.TargetValue.Int()
	return a.Progress.Update(ctx, ev.EventID, ev.EventVersion, taskID, progress.AddDelta(delta, target))
}

// SetTask applies edit to a task. The progress value is applied before the
// flags, so an explicit Completed=false wins over reaching the target.
func (a *App) SetTask(ctx context.Context, eventID, taskID string, edit TaskEdit) (progress.TaskState, error) {
	ev, task, err := a.lookupTask(ctx, eventID, taskID)
	if err != nil {
		return progress.TaskState{}, err
	}
	target := task.Requirement.TargetValue.Int()

	return a.Progress.Update(ctx, ev.EventID, ev.EventVersion, taskID, func(st progress.TaskState) progress.TaskState {
		if edit.Value != nil {
			st = progress.SetProgress(*edit.Value, target)(st)
		}
		if edit.Completed != nil {
			st = progress.SetCompleted(*edit.Completed)(st)
		}
		if edit.Claimed != nil {
			st = progress.SetClaimed(*edit.Claimed)(st)
		}
		return st
	})
}

func (a *App) lookupTask(ctx context.Context, eventID, taskID string) (*catalog.Event, catalog.Task, error) {
	ev, err := a.Catalog.Event(ctx, eventID)
	if err != nil {
		return nil, catalog.Task{}, err
	}
	task, ok := ev.Task(taskID)
	if !ok {
		return nil, catalog.Task{}, fmt.Errorf("%w %q in %s", ErrUnknownTask, taskID, eventID)
	}
	return ev, task, nil
}

// Sort keys accepted by SortSummaries.
const (
	SortIndex    = "index"
	SortTitle    = "title"
	SortStatus   = "status"
	SortSchedule = "schedule"
)

// statusRank orders known activity statuses; unknown ones sort last.
var statusRank = map[string]int{
	"active":   0,
	"upcoming": 1,
	"ended":    2,
}

// SortSummaries orders list in place by key. Index order is the order the
// catalog index lists events in, so it leaves list unchanged. Ties keep
// index order.
func SortSummaries(list []catalog.EventSummary, key string) error {
	switch key {
	case SortIndex, "":
		return nil
	case SortTitle:
		col := collate.New(language.Und, collate.IgnoreCase)
		slices.SortStableFunc(list, func(a, b catalog.EventSummary) int {
			return col.CompareString(a.Title, b.Title)
		})
	case SortStatus:
		slices.SortStableFunc(list, func(a, b catalog.EventSummary) int {
			return rank(a.ActivityStatus) - rank(b.ActivityStatus)
		})
	case SortSchedule:
		slices.SortStableFunc(list, func(a, b catalog.EventSummary) int {
			switch {
			case a.Schedule == b.Schedule:
				return 0
			case a.Schedule == "":
				return 1
			case b.Schedule == "":
				return -1
			case a.Schedule < b.Schedule:
				return -1
			default:
				return 1
			}
		})
	default:
		return fmt.Errorf("unknown sort key %q (want index, title, status or schedule)", key)
	}
	return nil
}

func rank(status string) int {
	if r, ok := statusRank[status]; ok {
		return r
	}
	return len(statusRank)
}
