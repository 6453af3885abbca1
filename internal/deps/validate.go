// Package deps validates and repairs the task dependency graph.
//
// The validator is pure analysis: it walks the document and returns a
// list of findings. The repairer applies policy over those findings.
// Keeping the two apart gives callers a report-only mode and lets each
// side be tested on its own.
package deps

import (
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/internal/task"
)

// Kind classifies a finding.
type Kind string

const (
	KindDangling  Kind = "dangling-reference"
	KindSelf      Kind = "self-reference"
	KindDuplicate Kind = "duplicate-dependency"
	KindCycle     Kind = "cycle"
	KindPremature Kind = "premature-completion"
)

// Finding is a reported data-quality issue. Findings are plain data;
// rendering them is the caller's concern.
type Finding struct {
	Kind    Kind
	Node    task.ID   // owning node
	Dep     string    // offending identifier (as written for dangling, canonical otherwise)
	Cycle   []task.ID // populated for KindCycle, in traversal order
	Message string
}

// Validate analyzes the document and returns every structural and
// status violation, in deterministic document order. It never mutates
// the document and never fails: bad data is the return value.
func Validate(f *task.File) []Finding {
	findings, adj, order := scanEdges(f)
	findings = append(findings, detectCycles(adj, order)...)
	findings = append(findings, checkCompletion(f)...)
	return findings
}

// scanEdges walks every node in document order and every dependency in
// listed order. It reports dangling, self, and duplicate dependencies,
// and builds the adjacency lists for cycle detection from the remaining
// valid edges only, so a single bad edge is not double-counted as both
// dangling and cycle-causing.
func scanEdges(f *task.File) (findings []Finding, adj map[task.ID][]task.ID, order []task.ID) {
	adj = make(map[task.ID][]task.ID)
	for _, n := range f.Nodes() {
		id := n.ID()
		order = append(order, id)
		// Duplicate detection compares resolved targets, so repeated
		// copies of a dangling id each report as dangling, never as
		// duplicates.
		seen := make(map[task.ID]bool)
		for _, raw := range n.Deps() {
			target, ok := f.ResolveDep(n, raw)
			if !ok {
				findings = append(findings, Finding{
					Kind:    KindDangling,
					Node:    id,
					Dep:     string(raw),
					Message: fmt.Sprintf("dependency %s of %s does not resolve", raw, id),
				})
				continue
			}
			tid := target.ID()
			if tid == id {
				findings = append(findings, Finding{
					Kind:    KindSelf,
					Node:    id,
					Dep:     tid.String(),
					Message: fmt.Sprintf("%s depends on itself", id),
				})
				continue
			}
			if seen[tid] {
				findings = append(findings, Finding{
					Kind:    KindDuplicate,
					Node:    id,
					Dep:     tid.String(),
					Message: fmt.Sprintf("duplicate dependency %s on %s", tid, id),
				})
				continue
			}
			seen[tid] = true
			adj[id] = append(adj[id], tid)
		}
	}
	return findings, adj, order
}

// detectCycles runs an iterative depth-first traversal with
// white/gray/black coloring over the valid-edge graph. Roots are tried
// in document order and edges walked in listed order, so which cycles
// are found, and in which order, is fully deterministic. An edge into a
// gray node closes a cycle; the reported cycle is the recursion-stack
// slice from that node's position to the top.
func detectCycles(adj map[task.ID][]task.ID, order []task.ID) []Finding {
	const (
		white = iota
		gray
		black
	)

	type frame struct {
		id   task.ID
		next int
	}

	color := make(map[task.ID]int, len(order))
	pos := make(map[task.ID]int, len(order))
	var findings []Finding

	for _, root := range order {
		if color[root] != white {
			continue
		}
		stack := []task.ID{root}
		frames := []frame{{id: root}}
		color[root] = gray
		pos[root] = 0

		for len(frames) > 0 {
			fr := &frames[len(frames)-1]
			edges := adj[fr.id]
			if fr.next < len(edges) {
				next := edges[fr.next]
				fr.next++
				switch color[next] {
				case white:
					color[next] = gray
					pos[next] = len(stack)
					stack = append(stack, next)
					frames = append(frames, frame{id: next})
				case gray:
					cycle := append([]task.ID(nil), stack[pos[next]:]...)
					findings = append(findings, Finding{
						Kind:    KindCycle,
						Node:    cycle[0],
						Cycle:   cycle,
						Message: "dependency cycle: " + renderCycle(cycle),
					})
				}
				continue
			}
			color[fr.id] = black
			stack = stack[:len(stack)-1]
			frames = frames[:len(frames)-1]
		}
	}
	return findings
}

func renderCycle(cycle []task.ID) string {
	parts := make([]string, 0, len(cycle)+1)
	for _, id := range cycle {
		parts = append(parts, id.String())
	}
	parts = append(parts, cycle[0].String())
	return strings.Join(parts, " -> ")
}

// checkCompletion reports every done node that has an unfinished
// dependency. These are status-policy findings: the repairer surfaces
// them but never auto-fixes them.
func checkCompletion(f *task.File) []Finding {
	var findings []Finding
	for _, n := range f.Nodes() {
		if n.Status() != task.StatusDone {
			continue
		}
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
			if target.Status() == task.StatusDone {
				continue
			}
			findings = append(findings, Finding{
				Kind: KindPremature,
				Node: n.ID(),
				Dep:  tid.String(),
				Message: fmt.Sprintf("%s is done but depends on %s which is %s",
					n.ID(), tid, target.Status()),
			})
		}
	}
	return findings
}
