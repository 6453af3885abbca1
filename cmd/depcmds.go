package cmd

import (
	"flag"
	"fmt"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/deps"
)

// addDepCommand adds the dependency edge <from> -> <to>.
func addDepCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave add-dep", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: taskweave add-dep <from> <to>")
	}
	from, err := parseCLIID(fs.Arg(0))
	if err != nil {
		return err
	}
	to, err := parseCLIID(fs.Arg(1))
	if err != nil {
		return err
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	if err := deps.AddDependency(f, from, to); err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("dependency added", "from", from.String(), "to", to.String())
	return nil
}

// removeDepCommand removes the dependency edge <from> -> <to>.
func removeDepCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave remove-dep", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 2 {
		return fmt.Errorf("usage: taskweave remove-dep <from> <to>")
	}
	from, err := parseCLIID(fs.Arg(0))
	if err != nil {
		return err
	}
	to, err := parseCLIID(fs.Arg(1))
	if err != nil {
		return err
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	if err := deps.RemoveDependency(f, from, to); err != nil {
		return err
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("dependency removed", "from", from.String(), "to", to.String())
	return nil
}

// validateDepsCommand reports dependency problems without fixing them.
func validateDepsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave validate-deps", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, _, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	findings := deps.Validate(f)
	if len(findings) == 0 {
		fmt.Println("dependency graph is consistent")
		return nil
	}
	for _, finding := range findings {
		fmt.Printf("%-22s %s\n", finding.Kind, finding.Message)
	}
	return fmt.Errorf("%d dependency problem(s) found", len(findings))
}

// fixDepsCommand repairs every structural dependency problem and writes
// the file back. Premature completions are reported but left alone.
func fixDepsCommand(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave fix-deps", flag.ContinueOnError)
	dryRun := fs.Bool("dry-run", false, "Show what would change without writing")
	if err := fs.Parse(args); err != nil {
		return err
	}

	f, path, err := loadTasks(cfg)
	if err != nil {
		return err
	}
	result := deps.Repair(f)
	for _, change := range result.Changes {
		fmt.Println(change.Message)
	}
	for _, finding := range result.Premature {
		fmt.Printf("not fixed: %s (revert the status or re-run set-status -force)\n", finding.Message)
	}
	if result.Clean() {
		fmt.Println("nothing to fix")
		return nil
	}
	if *dryRun {
		fmt.Printf("dry run: %d change(s) not written\n", len(result.Changes))
		return nil
	}
	if err := f.Save(path); err != nil {
		return err
	}
	console(cfg).Info("repaired dependency graph", "changes", len(result.Changes))
	return nil
}
