package deps

import (
	"fmt"

	"github.com/taskweave/taskweave/internal/task"
)

// Change records one corrective action taken by Repair.
type Change struct {
	Kind    Kind
	Node    task.ID
	Dep     string
	Message string
}

// Result is the outcome of a repair pass. Premature-completion findings
// are returned separately: fixing them means reverting a done status or
// forcing dependents elsewhere, and that is the caller's call.
type Result struct {
	Changes   []Change
	Premature []Finding
}

// Clean reports whether the repair pass changed nothing.
func (r Result) Clean() bool {
	return len(r.Changes) == 0
}

// Repair corrects every structural violation in the document, in a
// fixed order chosen to minimize cascading re-validation: dangling
// references first, then self references, then duplicate collapse, then
// cycle breaking on the cleaned graph. Repair of a repaired document is
// a no-op.
func Repair(f *task.File) Result {
	var res Result
	res.Changes = append(res.Changes, removeDangling(f)...)
	res.Changes = append(res.Changes, removeSelf(f)...)
	res.Changes = append(res.Changes, collapseDuplicates(f)...)
	res.Changes = append(res.Changes, breakCycles(f)...)
	res.Premature = checkCompletion(f)
	return res
}

func removeDangling(f *task.File) []Change {
	var changes []Change
	for _, n := range f.Nodes() {
		deps := n.Deps()
		kept := deps[:0:0]
		for _, raw := range deps {
			if _, ok := f.ResolveDep(n, raw); ok {
				kept = append(kept, raw)
				continue
			}
			changes = append(changes, Change{
				Kind:    KindDangling,
				Node:    n.ID(),
				Dep:     string(raw),
				Message: fmt.Sprintf("removed dependency %s -> %s (%s does not exist)", n.ID(), raw, raw),
			})
		}
		if len(kept) != len(deps) {
			n.SetDeps(kept)
		}
	}
	return changes
}

func removeSelf(f *task.File) []Change {
	var changes []Change
	for _, n := range f.Nodes() {
		id := n.ID()
		deps := n.Deps()
		kept := deps[:0:0]
		for _, raw := range deps {
			if target, ok := f.ResolveDep(n, raw); ok && target.ID() == id {
				changes = append(changes, Change{
					Kind:    KindSelf,
					Node:    id,
					Dep:     id.String(),
					Message: fmt.Sprintf("removed self dependency on %s", id),
				})
				continue
			}
			kept = append(kept, raw)
		}
		if len(kept) != len(deps) {
			n.SetDeps(kept)
		}
	}
	return changes
}

// collapseDuplicates keeps the first occurrence of each resolved target
// and drops the rest.
func collapseDuplicates(f *task.File) []Change {
	var changes []Change
	for _, n := range f.Nodes() {
		deps := n.Deps()
		seen := make(map[task.ID]bool, len(deps))
		kept := deps[:0:0]
		for _, raw := range deps {
			target, ok := f.ResolveDep(n, raw)
			if ok && seen[target.ID()] {
				changes = append(changes, Change{
					Kind:    KindDuplicate,
					Node:    n.ID(),
					Dep:     target.ID().String(),
					Message: fmt.Sprintf("removed duplicate dependency %s -> %s", n.ID(), target.ID()),
				})
				continue
			}
			if ok {
				seen[target.ID()] = true
			}
			kept = append(kept, raw)
		}
		if len(kept) != len(deps) {
			n.SetDeps(kept)
		}
	}
	return changes
}

// breakCycles removes the closing edge of each reported cycle (last
// node back to first) and re-runs detection, since breaking one cycle
// can reveal or resolve others that share edges.
func breakCycles(f *task.File) []Change {
	var changes []Change
	for {
		_, adj, order := scanEdges(f)
		cycles := detectCycles(adj, order)
		if len(cycles) == 0 {
			return changes
		}
		cycle := cycles[0].Cycle
		last := cycle[len(cycle)-1]
		first := cycle[0]
		from, ok := f.Resolve(last)
		if !ok || !f.RemoveEdge(from, first) {
			// Detection and removal disagreeing about an edge is a bug,
			// not a data problem.
			panic(fmt.Sprintf("deps: cannot remove cycle edge %s -> %s", last, first))
		}
		changes = append(changes, Change{
			Kind:    KindCycle,
			Node:    last,
			Dep:     first.String(),
			Message: fmt.Sprintf("removed dependency %s -> %s (broke cycle %s)", last, first, renderCycle(cycle)),
		})
	}
}
