package cmd

import (
	"flag"
	"fmt"
	"os"
	"os/exec"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/deps"
	"github.com/taskweave/taskweave/internal/task"
)

// doctorCommand checks config, schema, agent binary, and tasks file
// health.
func doctorCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave doctor", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	fmt.Println("Taskweave Doctor")
	fmt.Println("================")
	fmt.Println()

	allOK := true

	fmt.Printf("Project root: %s\n", cfg.ProjectRoot)
	fmt.Println()

	fmt.Printf("Agent binary: %s\n", cfg.Agent.Binary)
	if _, err := exec.LookPath(cfg.Agent.Binary); err != nil {
		fmt.Printf("  not found in PATH (parse-prd will fail): %v\n", err)
	} else {
		fmt.Println("  OK")
	}
	fmt.Println()

	sp := schemaPath(cfg)
	fmt.Printf("Schema file: %s\n", sp)
	if _, err := os.Stat(sp); err != nil {
		fmt.Println("  missing; validation falls back to minimal checks")
	} else {
		fmt.Println("  OK")
	}
	fmt.Println()

	tp := tasksPath(cfg)
	fmt.Printf("Tasks file: %s\n", tp)
	f, err := task.Load(tp)
	if err != nil {
		fmt.Printf("  %v\n", err)
		fmt.Println()
		return fmt.Errorf("doctor found problems")
	}

	result := f.Validate(task.ValidationOptions{SchemaPath: sp, Statuses: cfg.StatusSet()})
	for _, w := range result.Warnings {
		fmt.Printf("  warning: %s\n", w)
	}
	if !result.Valid {
		allOK = false
		for _, e := range result.Errors {
			fmt.Printf("  %s\n", e)
		}
	} else {
		fmt.Printf("  shape OK (%d tasks)\n", len(f.Tasks))
	}
	fmt.Println()

	fmt.Println("Dependency graph:")
	findings := deps.Validate(f)
	if len(findings) == 0 {
		fmt.Println("  consistent")
	} else {
		allOK = false
		for _, finding := range findings {
			fmt.Printf("  %-22s %s\n", finding.Kind, finding.Message)
		}
		fmt.Println("  run `taskweave fix-deps` to repair")
	}
	fmt.Println()

	if !allOK {
		return fmt.Errorf("doctor found problems")
	}
	fmt.Println("All checks passed.")
	return nil
}
