package deps

import (
	"github.com/taskweave/taskweave/internal/task"
)

// CanComplete reports whether every resolvable dependency of n has
// status done. Dangling dependencies do not block completion; they are
// the validator's problem.
func CanComplete(f *task.File, n task.Node) bool {
	return len(Blockers(f, n)) == 0
}

// Blockers returns the unfinished dependencies of n, in listed order.
func Blockers(f *task.File, n task.Node) []task.ID {
	var blockers []task.ID
	seen := make(map[task.ID]bool)
	for _, raw := range n.Deps() {
		target, ok := f.ResolveDep(n, raw)
		if !ok {
			continue
		}
		tid := target.ID()
		if tid == n.ID() || seen[tid] {
			continue
		}
		seen[tid] = true
		if target.Status() != task.StatusDone {
			blockers = append(blockers, tid)
		}
	}
	return blockers
}

// Next returns the task to work on next, or nil when nothing is
// actionable. Any in-progress task wins (lowest id first); otherwise
// the best-priority pending task whose dependencies are all done,
// tie-broken by lowest id. Priority 1 is highest.
func Next(f *task.File) *task.Task {
	var selected *task.Task
	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.Status == task.StatusInProgress {
			if selected == nil || t.ID < selected.ID {
				selected = t
			}
		}
	}
	if selected != nil {
		return selected
	}

	for i := range f.Tasks {
		t := &f.Tasks[i]
		if t.Status != task.StatusPending {
			continue
		}
		if !CanComplete(f, task.Node{Task: t}) {
			continue
		}
		if selected == nil || t.Priority < selected.Priority ||
			(t.Priority == selected.Priority && t.ID < selected.ID) {
			selected = t
		}
	}
	return selected
}
