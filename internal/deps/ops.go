package deps

import (
	"errors"
	"fmt"

	"github.com/taskweave/taskweave/internal/task"
)

// Sentinel errors for the mutation operations. Data-quality problems
// inside a document are findings, not errors; these cover rejected
// mutations only.
var (
	// ErrNotFound means an identifier did not resolve, or a dependency
	// edge to remove was absent.
	ErrNotFound = errors.New("not found")

	// ErrInvalidDependency means a self or duplicate dependency was
	// requested.
	ErrInvalidDependency = errors.New("invalid dependency")

	// ErrWouldCreateCycle means the requested edge would close a
	// dependency cycle.
	ErrWouldCreateCycle = errors.New("would create a dependency cycle")

	// ErrBlocked means a node cannot be marked done while it has
	// unfinished dependencies.
	ErrBlocked = errors.New("unfinished dependencies")

	// ErrUnknownStatus means the requested status is not in the
	// configured set.
	ErrUnknownStatus = errors.New("unknown status")
)

// AddDependency adds the edge from -> to ("from cannot finish until to
// is done"). The document is left untouched on any failure.
func AddDependency(f *task.File, from, to task.ID) error {
	fromNode, ok := f.Resolve(from)
	if !ok {
		return fmt.Errorf("task %s: %w", from, ErrNotFound)
	}
	if _, ok := f.Resolve(to); !ok {
		return fmt.Errorf("task %s: %w", to, ErrNotFound)
	}
	if from == to {
		return fmt.Errorf("%s cannot depend on itself: %w", from, ErrInvalidDependency)
	}
	if f.HasEdge(fromNode, to) {
		return fmt.Errorf("dependency %s -> %s already exists: %w", from, to, ErrInvalidDependency)
	}
	// A plain id written on a subtask resolves sibling-first, so a
	// sibling sharing the target task's id shadows it: no spelling of
	// this edge would resolve back to the requested target.
	if target, ok := f.ResolveDep(fromNode, task.RawID(to.String())); !ok || target.ID() != to {
		return fmt.Errorf("dependency %s -> %s would resolve to a different node: %w", from, to, ErrInvalidDependency)
	}
	// If to can already reach from along existing edges, adding
	// from -> to closes a cycle.
	if reachable(f, to, from) {
		return fmt.Errorf("dependency %s -> %s: %w", from, to, ErrWouldCreateCycle)
	}
	f.AddEdge(fromNode, to)
	return nil
}

// RemoveDependency removes the edge from -> to. Removing an absent edge
// is an error, not a silent no-op, so callers can detect stale
// requests.
func RemoveDependency(f *task.File, from, to task.ID) error {
	fromNode, ok := f.Resolve(from)
	if !ok {
		return fmt.Errorf("task %s: %w", from, ErrNotFound)
	}
	if !f.RemoveEdge(fromNode, to) {
		return fmt.Errorf("dependency %s -> %s: %w", from, to, ErrNotFound)
	}
	return nil
}

// SetStatusOptions controls SetStatus behavior.
type SetStatusOptions struct {
	// Force marks a node done even while its dependencies are
	// unfinished. The next Validate pass flags the result.
	Force bool
	// Statuses is the allowed status set; empty means the defaults.
	Statuses []task.Status
}

// SetStatus sets a node's status. Marking a node done requires every
// dependency to be done unless Force is set. Marking a parent task done
// marks its subtasks done as well.
func SetStatus(f *task.File, id task.ID, status task.Status, opts SetStatusOptions) error {
	if !task.StatusAllowed(status, opts.Statuses) {
		return fmt.Errorf("status %q: %w", status, ErrUnknownStatus)
	}
	n, ok := f.Resolve(id)
	if !ok {
		return fmt.Errorf("task %s: %w", id, ErrNotFound)
	}
	if status == task.StatusDone && !opts.Force {
		if blockers := Blockers(f, n); len(blockers) > 0 {
			return fmt.Errorf("%s has %w (first: %s)", id, ErrBlocked, blockers[0])
		}
	}
	n.SetStatus(status)
	if status == task.StatusDone && n.Sub == nil {
		for i := range n.Task.Subtasks {
			n.Task.Subtasks[i].Status = task.StatusDone
		}
	}
	return nil
}

// reachable reports whether to is reachable from from along existing
// valid dependency edges. Depth-first over resolved edges only.
func reachable(f *task.File, from, to task.ID) bool {
	visited := map[task.ID]bool{from: true}
	stack := []task.ID{from}
	for len(stack) > 0 {
		id := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if id == to {
			return true
		}
		n, ok := f.Resolve(id)
		if !ok {
			continue
		}
		for _, raw := range n.Deps() {
			target, ok := f.ResolveDep(n, raw)
			if !ok {
				continue
			}
			tid := target.ID()
			if !visited[tid] {
				visited[tid] = true
				stack = append(stack, tid)
			}
		}
	}
	return false
}
