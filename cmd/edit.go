package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/deps"
	"github.com/taskweave/taskweave/internal/task"
)

// addTaskCommand appends a new task with the next free id.
func addTaskCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave add-task", flag.ContinueOnError)
	title := fs.String("title", "", "Task title (required)")
	description := fs.String("description", "", "Task description")
	priority := fs.Int("priority", 3, "Priority 1 (highest) to 5")
	depList := fs.String("deps", "", "Comma-separated dependency ids")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *title == "" {
		return fmt.Errorf("usage: taskweave add-task -title <title> [-description ...] [-priority N] [-deps 1,2.3]")
	}
	if *priority < 1 || *priority > 5 {
		return fmt.Errorf("priority must be between 1 and 5, got %d", *priority)
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	id := f.AddTask(task.Task{
		Title:       *title,
		Description: *description,
		Priority:    *priority,
	})
	for _, s := range splitIDs(*depList) {
		depID, err := parseCLIID(s)
		if err != nil {
			return err
		}
		if err := deps.AddDependency(f, task.TaskID(id), depID); err != nil {
			return err
		}
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("added task", "id", id, "title", *title)
	return nil
}

// addSubtaskCommand appends a subtask to an existing task.
func addSubtaskCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave add-subtask", flag.ContinueOnError)
	parent := fs.Int("parent", 0, "Parent task id (required)")
	title := fs.String("title", "", "Subtask title (required)")
	description := fs.String("description", "", "Subtask description")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *parent <= 0 || *title == "" {
		return fmt.Errorf("usage: taskweave add-subtask -parent <id> -title <title>")
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	id, err := f.AddSubtask(*parent, task.Subtask{
		Title:       *title,
		Description: *description,
	})
	if err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("added subtask", "id", id.String(), "title", *title)
	return nil
}

// removeTaskCommand deletes a task or subtask. Dependency references to
// the removed node are swept in the same write so the file stays
// consistent without waiting for the next fix-deps run.
func removeTaskCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave remove-task", flag.ContinueOnError)
	keepRefs := fs.Bool("keep-refs", false, "Leave dangling references for a later fix-deps pass")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taskweave remove-task <id>")
	}
	id, err := parseCLIID(fs.Arg(0))
	if err != nil {
		return err
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	if !f.RemoveNode(id) {
		return fmt.Errorf("task %s not found", id)
	}
	swept := 0
	if !*keepRefs {
		swept = f.RemoveAllEdgesTo(id)
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("removed task", "id", id.String(), "references_swept", swept)
	return nil
}

// setStatusCommand sets the status of one or more tasks or subtasks.
func setStatusCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave set-status", flag.ContinueOnError)
	idList := fs.String("id", "", "Comma-separated task/subtask ids (required)")
	status := fs.String("status", "", "New status (required)")
	force := fs.Bool("force", false, "Mark done even while dependencies are unfinished")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *idList == "" || *status == "" {
		return fmt.Errorf("usage: taskweave set-status -id <id[,id...]> -status <status> [-force]")
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	opts := deps.SetStatusOptions{Force: *force, Statuses: cfg.StatusSet()}
	for _, s := range splitIDs(*idList) {
		id, err := parseCLIID(s)
		if err != nil {
			return err
		}
		if err := deps.SetStatus(f, id, task.Status(*status), opts); err != nil {
			return err
		}
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("status updated", "ids", *idList, "status", *status)
	return nil
}

func splitIDs(s string) []string {
	if strings.TrimSpace(s) == "" {
		return nil
	}
	parts := strings.Split(s, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
