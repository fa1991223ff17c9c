package progress

import "math"

// Transform computes the next state of a task from the previous one.
type Transform func(TaskState) TaskState

// AddDelta moves progress by delta, clamped to [0, target]. Reaching the
// target marks the task completed; falling below it again keeps the flag.
func AddDelta(delta, target int) Transform {
	return func(prev TaskState) TaskState {
		return withProgress(prev, prev.ProgressValue+delta, target)
	}
}

// SetProgress sets progress to value, clamped and flagged like AddDelta.
func SetProgress(value, target int) Transform {
	return func(prev TaskState) TaskState {
		return withProgress(prev, value, target)
	}
}

func withProgress(prev TaskState, value, target int) TaskState {
	next := prev
	next.ProgressValue = max(0, min(target, value))
	if next.ProgressValue >= target {
		next.Flags.IsCompleted = true
	}
	return next
}

// SetCompleted sets the completed flag and leaves everything else alone.
func SetCompleted(done bool) Transform {
	return func(prev TaskState) TaskState {
		prev.Flags.IsCompleted = done
		return prev
	}
}

// SetClaimed sets the claimed flag and leaves everything else alone.
func SetClaimed(claimed bool) Transform {
	return func(prev TaskState) TaskState {
		prev.Flags.IsClaimed = claimed
		return prev
	}
}

// Percent is progress as a whole percentage of target, rounded half up.
// A non-positive target reports 0.
func Percent(st TaskState, target int) int {
	if target <= 0 {
		return 0
	}
	return int(math.Floor(float64(st.ProgressValue)*100/float64(target) + 0.5))
}
