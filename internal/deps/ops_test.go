package deps

import (
	"errors"
	"testing"

	"github.com/taskweave/taskweave/internal/task"
)

func TestAddDependency(t *testing.T) {
	f := file(
		pending(1, "a"),
		pending(2, "b"),
	)
	if err := AddDependency(f, task.TaskID(1), task.TaskID(2)); err != nil {
		t.Fatalf("AddDependency(1, 2) failed: %v", err)
	}
	n, _ := f.Resolve(task.TaskID(1))
	if !f.HasEdge(n, task.TaskID(2)) {
		t.Error("edge 1 -> 2 missing after AddDependency")
	}
}

func TestAddDependencyRejections(t *testing.T) {
	tests := []struct {
		name     string
		from, to task.ID
		want     error
	}{
		{"missing from", task.TaskID(99), task.TaskID(1), ErrNotFound},
		{"missing to", task.TaskID(1), task.TaskID(99), ErrNotFound},
		{"self", task.TaskID(1), task.TaskID(1), ErrInvalidDependency},
		{"duplicate", task.TaskID(2), task.TaskID(1), ErrInvalidDependency},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := file(
				pending(1, "a"),
				pending(2, "b", "1"),
			)
			err := AddDependency(f, tt.from, tt.to)
			if !errors.Is(err, tt.want) {
				t.Errorf("AddDependency(%s, %s) = %v, want %v", tt.from, tt.to, err, tt.want)
			}
		})
	}
}

func TestAddDependencyCyclePrevention(t *testing.T) {
	f := file(
		pending(1, "a", "2"),
		pending(2, "b", "3"),
		pending(3, "c"),
	)
	err := AddDependency(f, task.TaskID(3), task.TaskID(1))
	if !errors.Is(err, ErrWouldCreateCycle) {
		t.Fatalf("AddDependency(3, 1) = %v, want ErrWouldCreateCycle", err)
	}
	n, _ := f.Resolve(task.TaskID(3))
	if got := len(n.Deps()); got != 0 {
		t.Errorf("task 3 gained deps on a rejected add: %v", n.Deps())
	}
	if findings := Validate(f); len(findings) != 0 {
		t.Errorf("document modified by rejected add: %v", findings)
	}
}

func TestAddDependencyIndirectCycle(t *testing.T) {
	// The probe follows sibling-relative subtask deps too.
	f := file(
		task.Task{
			ID: 1, Title: "a", Priority: 3, Status: task.StatusPending,
			Subtasks: []task.Subtask{
				{ID: 1, Title: "s1", Status: task.StatusPending},
				{ID: 2, Title: "s2", Status: task.StatusPending, Dependencies: []task.RawID{"1"}},
			},
		},
	)
	err := AddDependency(f, task.SubtaskID(1, 1), task.SubtaskID(1, 2))
	if !errors.Is(err, ErrWouldCreateCycle) {
		t.Errorf("AddDependency(1.1, 1.2) = %v, want ErrWouldCreateCycle", err)
	}
}

func TestAddDependencySiblingShadowsTask(t *testing.T) {
	// From subtask 2.1, the spelling "3" means sibling 2.3, not task 3.
	// Accepting the edge would retarget it onto the sibling and, with
	// 2.3 already depending on 2.1, close a cycle behind the
	// reachability check.
	f := file(
		task.Task{
			ID: 2, Title: "parent", Priority: 3, Status: task.StatusPending,
			Subtasks: []task.Subtask{
				{ID: 1, Title: "s1", Status: task.StatusPending},
				{ID: 3, Title: "s3", Status: task.StatusPending, Dependencies: []task.RawID{"2.1"}},
			},
		},
		pending(3, "c"),
	)
	err := AddDependency(f, task.SubtaskID(2, 1), task.TaskID(3))
	if !errors.Is(err, ErrInvalidDependency) {
		t.Fatalf("AddDependency(2.1, 3) = %v, want ErrInvalidDependency", err)
	}
	n, _ := f.Resolve(task.SubtaskID(2, 1))
	if got := len(n.Deps()); got != 0 {
		t.Errorf("subtask 2.1 gained deps on a rejected add: %v", n.Deps())
	}
	if findings := Validate(f); len(findings) != 0 {
		t.Errorf("document modified by rejected add: %v", findings)
	}

	// Without a shadowing sibling the same edge is fine.
	clean := file(
		task.Task{
			ID: 2, Title: "parent", Priority: 3, Status: task.StatusPending,
			Subtasks: []task.Subtask{
				{ID: 1, Title: "s1", Status: task.StatusPending},
			},
		},
		pending(3, "c"),
	)
	if err := AddDependency(clean, task.SubtaskID(2, 1), task.TaskID(3)); err != nil {
		t.Errorf("AddDependency(2.1, 3) without shadow failed: %v", err)
	}
}

func TestRemoveDependency(t *testing.T) {
	f := file(
		pending(1, "a"),
		pending(2, "b", "1"),
	)
	if err := RemoveDependency(f, task.TaskID(2), task.TaskID(1)); err != nil {
		t.Fatalf("RemoveDependency(2, 1) failed: %v", err)
	}
	err := RemoveDependency(f, task.TaskID(2), task.TaskID(1))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("removing an absent edge = %v, want ErrNotFound", err)
	}
	err = RemoveDependency(f, task.TaskID(99), task.TaskID(1))
	if !errors.Is(err, ErrNotFound) {
		t.Errorf("removing from a missing task = %v, want ErrNotFound", err)
	}
}

func TestSetStatusBlocked(t *testing.T) {
	f := file(
		pending(1, "a"),
		pending(2, "b", "1"),
	)
	err := SetStatus(f, task.TaskID(2), task.StatusDone, SetStatusOptions{})
	if !errors.Is(err, ErrBlocked) {
		t.Fatalf("SetStatus(2, done) = %v, want ErrBlocked", err)
	}
	n, _ := f.Resolve(task.TaskID(2))
	if n.Status() != task.StatusPending {
		t.Error("status changed despite blocked error")
	}

	if err := SetStatus(f, task.TaskID(1), task.StatusDone, SetStatusOptions{}); err != nil {
		t.Fatalf("SetStatus(1, done) failed: %v", err)
	}
	if err := SetStatus(f, task.TaskID(2), task.StatusDone, SetStatusOptions{}); err != nil {
		t.Errorf("SetStatus(2, done) after unblocking failed: %v", err)
	}
}

func TestSetStatusForce(t *testing.T) {
	f := file(
		pending(1, "a"),
		pending(2, "b", "1"),
	)
	if err := SetStatus(f, task.TaskID(2), task.StatusDone, SetStatusOptions{Force: true}); err != nil {
		t.Fatalf("forced SetStatus failed: %v", err)
	}
	// The forced state is flagged by the next validation pass.
	findings := Validate(f)
	if len(findings) != 1 || findings[0].Kind != KindPremature {
		t.Errorf("findings after force = %v, want one premature-completion", findings)
	}
}

func TestSetStatusUnknown(t *testing.T) {
	f := file(pending(1, "a"))
	err := SetStatus(f, task.TaskID(1), "bogus", SetStatusOptions{})
	if !errors.Is(err, ErrUnknownStatus) {
		t.Errorf("SetStatus(1, bogus) = %v, want ErrUnknownStatus", err)
	}
	if err := SetStatus(f, task.TaskID(1), "triage", SetStatusOptions{Statuses: []task.Status{"triage"}}); err != nil {
		t.Errorf("SetStatus with custom status set failed: %v", err)
	}
}

func TestSetStatusParentCascades(t *testing.T) {
	f := file(task.Task{
		ID: 1, Title: "a", Priority: 3, Status: task.StatusPending,
		Subtasks: []task.Subtask{
			{ID: 1, Title: "s1", Status: task.StatusPending},
			{ID: 2, Title: "s2", Status: task.StatusInProgress},
		},
	})
	if err := SetStatus(f, task.TaskID(1), task.StatusDone, SetStatusOptions{}); err != nil {
		t.Fatalf("SetStatus(1, done) failed: %v", err)
	}
	for _, sub := range f.Tasks[0].Subtasks {
		if sub.Status != task.StatusDone {
			t.Errorf("subtask 1.%d status = %s, want done", sub.ID, sub.Status)
		}
	}
}

func TestBlockers(t *testing.T) {
	f := file(
		task.Task{ID: 1, Title: "a", Priority: 3, Status: task.StatusDone},
		pending(2, "b"),
		pending(3, "c", "1", "2", "2", "99", "3"),
	)
	n, _ := f.Resolve(task.TaskID(3))
	blockers := Blockers(f, n)
	// Done, duplicate, dangling and self deps do not block; task 2 does.
	if len(blockers) != 1 || blockers[0] != task.TaskID(2) {
		t.Errorf("Blockers = %v, want [2]", blockers)
	}
	if CanComplete(f, n) {
		t.Error("CanComplete true with an unfinished dependency")
	}
}

func TestNext(t *testing.T) {
	f := file(
		task.Task{ID: 1, Title: "a", Priority: 3, Status: task.StatusDone},
		task.Task{ID: 2, Title: "b", Priority: 1, Status: task.StatusPending, Dependencies: []task.RawID{"5"}},
		task.Task{ID: 3, Title: "c", Priority: 2, Status: task.StatusPending, Dependencies: []task.RawID{"1"}},
		task.Task{ID: 4, Title: "d", Priority: 2, Status: task.StatusPending},
		pending(5, "e"),
	)
	// Task 2 has the best priority but is blocked by 5; tasks 3 and 4 tie
	// on priority, lowest id wins.
	next := Next(f)
	if next == nil || next.ID != 3 {
		t.Fatalf("Next = %v, want task 3", next)
	}

	// An in-progress task preempts everything.
	f.Tasks[3].Status = task.StatusInProgress
	next = Next(f)
	if next == nil || next.ID != 4 {
		t.Fatalf("Next with in-progress = %v, want task 4", next)
	}
}

func TestNextNothingActionable(t *testing.T) {
	f := file(
		task.Task{ID: 1, Title: "a", Priority: 3, Status: task.StatusDone},
		task.Task{ID: 2, Title: "b", Priority: 1, Status: task.StatusPending, Dependencies: []task.RawID{"3"}},
		pending(3, "c", "2"),
	)
	// Tasks 2 and 3 block each other; nothing can start.
	if next := Next(f); next != nil {
		t.Errorf("Next = task %d, want nil", next.ID)
	}
}
