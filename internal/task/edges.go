package task

// Edge primitives. These are deliberately permissive: AddEdge rejects
// only self and duplicate edges, never cycles, so that known-invalid
// documents can be constructed for repair workflows and tests. Cycle
// prevention belongs to the deps package.

// owns panics when the node does not belong to this file. Passing a
// node from another document instance is a caller bug, not a data
// problem, so it halts instead of silently corrupting state.
func (f *File) owns(n Node) {
	r, ok := f.Resolve(n.ID())
	if !ok || r.Task != n.Task || r.Sub != n.Sub {
		panic("task: node does not belong to this file")
	}
}

// depMatches reports whether a raw dependency of owner addresses target.
// Resolvable deps compare by canonical identity (so a sibling-relative
// "2" matches its composite form); dangling deps compare literally so
// they can still be removed by id.
func (f *File) depMatches(owner Node, raw RawID, target ID) bool {
	if r, ok := f.ResolveDep(owner, raw); ok {
		return r.ID() == target
	}
	id, ok := ParseID(raw)
	return ok && id == target
}

// HasEdge reports whether from already depends on to.
func (f *File) HasEdge(from Node, to ID) bool {
	for _, raw := range from.Deps() {
		if f.depMatches(from, raw, to) {
			return true
		}
	}
	return false
}

// AddEdge appends the dependency from -> to. It returns false for a
// self edge, a duplicate, or a target whose spelling would resolve to a
// different node from here (a sibling subtask shadowing a top-level
// task of the same id); the document is left untouched in every case.
func (f *File) AddEdge(from Node, to ID) bool {
	f.owns(from)
	if from.ID() == to {
		return false
	}
	if f.HasEdge(from, to) {
		return false
	}
	raw := RawID(to.String())
	if target, ok := f.ResolveDep(from, raw); !ok || target.ID() != to {
		return false
	}
	from.SetDeps(append(from.Deps(), raw))
	return true
}

// RemoveEdge removes the first dependency of from that addresses to.
// It returns false when no such edge exists.
func (f *File) RemoveEdge(from Node, to ID) bool {
	f.owns(from)
	deps := from.Deps()
	for i, raw := range deps {
		if f.depMatches(from, raw, to) {
			from.SetDeps(append(deps[:i:i], deps[i+1:]...))
			return true
		}
	}
	return false
}

// RemoveAllEdgesTo drops every dependency, on any node, that resolves
// to target. It returns the number of edges removed. Used after node
// deletion to sweep references.
func (f *File) RemoveAllEdgesTo(target ID) int {
	removed := 0
	for _, n := range f.Nodes() {
		deps := n.Deps()
		kept := deps[:0:0]
		for _, raw := range deps {
			if f.depMatches(n, raw, target) {
				removed++
				continue
			}
			kept = append(kept, raw)
		}
		if len(kept) != len(deps) {
			n.SetDeps(kept)
		}
	}
	return removed
}
