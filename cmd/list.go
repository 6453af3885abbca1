package cmd

import (
	"flag"
	"fmt"
	"strings"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/deps"
	"github.com/taskweave/taskweave/internal/task"
)

// listCommand prints the task list, optionally filtered by status.
func listCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave list", flag.ContinueOnError)
	status := fs.String("status", "", "Only show tasks with this status")
	withSubtasks := fs.Bool("subtasks", false, "Show subtasks")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, _, err := loadTasks(cfg)
	if err != nil {
		return err
	}

	shown := 0
	for i := range f.Tasks {
		t := &f.Tasks[i]
		if *status != "" && t.Status != task.Status(*status) {
			continue
		}
		shown++
		fmt.Printf("%3d  p%d  %-12s %s%s\n", t.ID, t.Priority, t.Status, t.Title, depSuffix(f, task.Node{Task: t}))
		if *withSubtasks {
			for j := range t.Subtasks {
				st := &t.Subtasks[j]
				fmt.Printf("     %d.%d  %-12s %s%s\n", t.ID, st.ID, st.Status, st.Title,
					depSuffix(f, task.Node{Task: t, Sub: st}))
			}
		}
	}
	if shown == 0 {
		fmt.Println("no tasks")
	}
	return nil
}

// depSuffix renders the dependency annotation for a node.
func depSuffix(f *task.File, n task.Node) string {
	rawDeps := n.Deps()
	if len(rawDeps) == 0 {
		return ""
	}
	ids := make([]string, 0, len(rawDeps))
	for _, raw := range rawDeps {
		ids = append(ids, string(raw))
	}
	suffix := fmt.Sprintf("  (deps: %s)", strings.Join(ids, ", "))
	if n.Status() != task.StatusDone && !deps.CanComplete(f, n) {
		suffix += " [blocked]"
	}
	return suffix
}

// showCommand prints one task or subtask in full.
func showCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave show", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taskweave show <id>")
	}
	id, err := parseCLIID(fs.Arg(0))
	if err != nil {
		return err
	}

	f, _, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	n, ok := f.Resolve(id)
	if !ok {
		return fmt.Errorf("task %s not found", id)
	}

	fmt.Printf("%s  %s\n", n.ID(), n.Title())
	fmt.Printf("status: %s\n", n.Status())
	if n.Sub == nil {
		fmt.Printf("priority: %d\n", n.Task.Priority)
		if n.Task.Description != "" {
			fmt.Printf("description: %s\n", n.Task.Description)
		}
		if n.Task.Details != "" {
			fmt.Printf("details: %s\n", n.Task.Details)
		}
		if n.Task.TestStrategy != "" {
			fmt.Printf("test strategy: %s\n", n.Task.TestStrategy)
		}
	} else if n.Sub.Description != "" {
		fmt.Printf("description: %s\n", n.Sub.Description)
	}
	if rawDeps := n.Deps(); len(rawDeps) > 0 {
		fmt.Println("dependencies:")
		for _, raw := range rawDeps {
			target, ok := f.ResolveDep(n, raw)
			if !ok {
				fmt.Printf("  %s (missing)\n", raw)
				continue
			}
			fmt.Printf("  %s  %-12s %s\n", target.ID(), target.Status(), target.Title())
		}
	}
	if n.Sub == nil && len(n.Task.Subtasks) > 0 {
		fmt.Println("subtasks:")
		for j := range n.Task.Subtasks {
			st := &n.Task.Subtasks[j]
			fmt.Printf("  %d.%d  %-12s %s\n", n.Task.ID, st.ID, st.Status, st.Title)
		}
	}
	return nil
}

// nextCommand prints the next actionable task.
func nextCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave next", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	f, _, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	t := deps.Next(f)
	if t == nil {
		fmt.Println("no actionable task: everything is done, blocked, or deferred")
		return nil
	}
	fmt.Printf("%3d  p%d  %-12s %s\n", t.ID, t.Priority, t.Status, t.Title)
	if t.Description != "" {
		fmt.Printf("     %s\n", t.Description)
	}
	return nil
}
