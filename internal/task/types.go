// Package task parses, validates, and updates the tasks file.
package task

import (
	"encoding/json"
	"fmt"
	"os"
	"time"
)

// Status represents a task or subtask status. The allowed set is
// configuration; these are the defaults. "done" is the only status
// that carries a completion invariant.
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusDone       Status = "done"
	StatusDeferred   Status = "deferred"
	StatusCancelled  Status = "cancelled"
	StatusReview     Status = "review"
)

// DefaultStatuses returns the default allowed status set.
func DefaultStatuses() []Status {
	return []Status{
		StatusPending,
		StatusInProgress,
		StatusDone,
		StatusDeferred,
		StatusCancelled,
		StatusReview,
	}
}

// StatusAllowed reports whether s is in the allowed set. An empty
// allowed set means the defaults.
func StatusAllowed(s Status, allowed []Status) bool {
	if len(allowed) == 0 {
		allowed = DefaultStatuses()
	}
	for _, a := range allowed {
		if a == s {
			return true
		}
	}
	return false
}

// Task represents a single top-level task.
type Task struct {
	ID           int        `json:"id"`
	Title        string     `json:"title"`
	Description  string     `json:"description,omitempty"`
	Details      string     `json:"details,omitempty"`
	TestStrategy string     `json:"test_strategy,omitempty"`
	Priority     int        `json:"priority"`
	Status       Status     `json:"status"`
	Dependencies []RawID    `json:"dependencies,omitempty"`
	Subtasks     []Subtask  `json:"subtasks,omitempty"`
	CreatedAt    *time.Time `json:"created_at,omitempty"`
	UpdatedAt    *time.Time `json:"updated_at,omitempty"`
}

// Subtask represents a unit of work scoped to a parent task. Its id is
// unique only within the parent; the composite identity is parent.id.
type Subtask struct {
	ID           int     `json:"id"`
	Title        string  `json:"title"`
	Description  string  `json:"description,omitempty"`
	Status       Status  `json:"status"`
	Dependencies []RawID `json:"dependencies,omitempty"`
}

// Project represents project metadata.
type Project struct {
	Name string `json:"name,omitempty"`
	Root string `json:"root,omitempty"`
}

// File represents the tasks file structure.
type File struct {
	SchemaVersion int      `json:"schema_version"`
	Project       *Project `json:"project,omitempty"`
	Tasks         []Task   `json:"tasks"`

	// byID is the task index, built lazily and dropped by any
	// structural mutation.
	byID map[int]*Task
}

// Load reads and parses a tasks file from path.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read tasks file: %w", err)
	}
	return Parse(data)
}

// Parse parses tasks-file JSON.
func Parse(data []byte) (*File, error) {
	var f File
	if err := json.Unmarshal(data, &f); err != nil {
		return nil, fmt.Errorf("parse tasks file: %w", err)
	}
	return &f, nil
}

// Save writes the tasks file to path with 2-space indentation.
func (f *File) Save(path string) error {
	data, err := json.MarshalIndent(f, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal tasks file: %w", err)
	}
	data = append(data, '\n')
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write tasks file: %w", err)
	}
	return nil
}

// Node is a resolved handle to a task or subtask. For subtasks, Task is
// the parent and Sub the subtask itself; for top-level tasks Sub is nil.
type Node struct {
	Task *Task
	Sub  *Subtask
}

// ID returns the canonical identity of the node.
func (n Node) ID() ID {
	if n.Sub != nil {
		return SubtaskID(n.Task.ID, n.Sub.ID)
	}
	return TaskID(n.Task.ID)
}

// Title returns the node's title.
func (n Node) Title() string {
	if n.Sub != nil {
		return n.Sub.Title
	}
	return n.Task.Title
}

// Status returns the node's status.
func (n Node) Status() Status {
	if n.Sub != nil {
		return n.Sub.Status
	}
	return n.Task.Status
}

// SetStatus sets the node's status and bumps the owning task's
// updated_at timestamp.
func (n Node) SetStatus(s Status) {
	if n.Sub != nil {
		n.Sub.Status = s
	} else {
		n.Task.Status = s
	}
	now := time.Now().UTC()
	n.Task.UpdatedAt = &now
}

// Deps returns the node's dependency list as written.
func (n Node) Deps() []RawID {
	if n.Sub != nil {
		return n.Sub.Dependencies
	}
	return n.Task.Dependencies
}

// SetDeps replaces the node's dependency list.
func (n Node) SetDeps(deps []RawID) {
	if n.Sub != nil {
		n.Sub.Dependencies = deps
	} else {
		n.Task.Dependencies = deps
	}
}

// index returns the task index, building it on first use.
func (f *File) index() map[int]*Task {
	if f.byID == nil {
		f.byID = make(map[int]*Task, len(f.Tasks))
		for i := range f.Tasks {
			f.byID[f.Tasks[i].ID] = &f.Tasks[i]
		}
	}
	return f.byID
}

// invalidate drops the index after a structural mutation.
func (f *File) invalidate() {
	f.byID = nil
}

// Resolve looks up a node by canonical ID.
func (f *File) Resolve(id ID) (Node, bool) {
	t, ok := f.index()[id.Task]
	if !ok {
		return Node{}, false
	}
	if id.Sub == 0 {
		return Node{Task: t}, true
	}
	for i := range t.Subtasks {
		if t.Subtasks[i].ID == id.Sub {
			return Node{Task: t, Sub: &t.Subtasks[i]}, true
		}
	}
	return Node{}, false
}

// ResolveDep resolves a dependency identifier relative to its owning
// node. From a subtask, a plain integer refers to a sibling subtask
// with that local id when one exists, and to the top-level task
// otherwise. Composite ids and top-level owners resolve absolutely.
func (f *File) ResolveDep(owner Node, raw RawID) (Node, bool) {
	id, ok := ParseID(raw)
	if !ok {
		return Node{}, false
	}
	if owner.Sub != nil && id.Sub == 0 {
		for i := range owner.Task.Subtasks {
			if owner.Task.Subtasks[i].ID == id.Task {
				return Node{Task: owner.Task, Sub: &owner.Task.Subtasks[i]}, true
			}
		}
	}
	return f.Resolve(id)
}

// Nodes returns every node in document order: each task followed by its
// subtasks, in listed order.
func (f *File) Nodes() []Node {
	var nodes []Node
	for i := range f.Tasks {
		t := &f.Tasks[i]
		nodes = append(nodes, Node{Task: t})
		for j := range t.Subtasks {
			nodes = append(nodes, Node{Task: t, Sub: &t.Subtasks[j]})
		}
	}
	return nodes
}

// NextID returns the next free top-level task id.
func (f *File) NextID() int {
	max := 0
	for i := range f.Tasks {
		if f.Tasks[i].ID > max {
			max = f.Tasks[i].ID
		}
	}
	return max + 1
}

// AddTask appends a new task. A zero id is replaced with the next free
// one; the assigned id is returned.
func (f *File) AddTask(t Task) int {
	if t.ID == 0 {
		t.ID = f.NextID()
	}
	if t.Status == "" {
		t.Status = StatusPending
	}
	if t.Priority == 0 {
		t.Priority = 3
	}
	now := time.Now().UTC()
	if t.CreatedAt == nil {
		t.CreatedAt = &now
	}
	t.UpdatedAt = &now
	f.Tasks = append(f.Tasks, t)
	f.invalidate()
	return t.ID
}

// AddSubtask appends a subtask to the task with the given id. A zero
// subtask id is replaced with the next free local id.
func (f *File) AddSubtask(taskID int, st Subtask) (ID, error) {
	t, ok := f.index()[taskID]
	if !ok {
		return ID{}, fmt.Errorf("task %d not found", taskID)
	}
	if st.ID == 0 {
		max := 0
		for i := range t.Subtasks {
			if t.Subtasks[i].ID > max {
				max = t.Subtasks[i].ID
			}
		}
		st.ID = max + 1
	}
	if st.Status == "" {
		st.Status = StatusPending
	}
	t.Subtasks = append(t.Subtasks, st)
	now := time.Now().UTC()
	t.UpdatedAt = &now
	return SubtaskID(t.ID, st.ID), nil
}

// RemoveNode deletes a task or subtask. References left behind in other
// nodes' dependency lists become dangling; resolving them is the
// repairer's job on the next consistency pass.
func (f *File) RemoveNode(id ID) bool {
	if id.Sub != 0 {
		t, ok := f.index()[id.Task]
		if !ok {
			return false
		}
		for i := range t.Subtasks {
			if t.Subtasks[i].ID == id.Sub {
				t.Subtasks = append(t.Subtasks[:i], t.Subtasks[i+1:]...)
				return true
			}
		}
		return false
	}
	for i := range f.Tasks {
		if f.Tasks[i].ID == id.Task {
			f.Tasks = append(f.Tasks[:i], f.Tasks[i+1:]...)
			f.invalidate()
			return true
		}
	}
	return false
}
