// Package cmd implements the CLI command structure for taskweave.
package cmd

import (
	"context"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/logging"
	"github.com/taskweave/taskweave/internal/task"
	"github.com/taskweave/taskweave/internal/ui"
)

// Version is set via ldflags at build time.
var Version = "dev"

// Run executes the taskweave CLI.
func Run(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("taskweave", flag.ContinueOnError)
	fs.Usage = func() {
		printUsage(fs, os.Stderr)
	}
	help := fs.Bool("help", false, "Show help")
	fs.BoolVar(help, "h", false, "Show help")
	showVersion := fs.Bool("version", false, "Show version")
	fs.BoolVar(showVersion, "v", false, "Show version")

	cfg, err := config.Load(fs, args)
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if *help {
		printUsage(fs, os.Stdout)
		return nil
	}
	if *showVersion {
		fmt.Printf("taskweave %s\n", Version)
		return nil
	}

	subcommand := "list"
	remainingArgs := fs.Args()
	if len(remainingArgs) > 0 && !strings.HasPrefix(remainingArgs[0], "-") {
		subcommand = remainingArgs[0]
		remainingArgs = remainingArgs[1:]
	}

	switch subcommand {
	case "list":
		return listCommand(cfg, remainingArgs)
	case "show":
		return showCommand(cfg, remainingArgs)
	case "next":
		return nextCommand(cfg, remainingArgs)
	case "add-task":
		return addTaskCommand(cfg, remainingArgs)
	case "add-subtask":
		return addSubtaskCommand(cfg, remainingArgs)
	case "remove-task":
		return removeTaskCommand(cfg, remainingArgs)
	case "set-status":
		return setStatusCommand(cfg, remainingArgs)
	case "add-dep":
		return addDepCommand(cfg, remainingArgs)
	case "remove-dep":
		return removeDepCommand(cfg, remainingArgs)
	case "validate-deps":
		return validateDepsCommand(cfg, remainingArgs)
	case "fix-deps":
		return fixDepsCommand(cfg, remainingArgs)
	case "parse-prd":
		return parsePRDCommand(ctx, cfg, remainingArgs)
	case "doctor":
		return doctorCommand(cfg, remainingArgs)
	case "tui":
		return ui.Run(ctx, tasksPath(cfg))
	case "version", "--version":
		fmt.Printf("taskweave %s\n", Version)
		return nil
	case "help", "--help":
		printUsage(fs, os.Stdout)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", subcommand)
		printUsage(fs, os.Stderr)
		return fmt.Errorf("unknown command: %s", subcommand)
	}
}

func printUsage(fs *flag.FlagSet, w io.Writer) {
	fmt.Fprintf(w, `taskweave - dependency-aware task file manager

Usage:
  taskweave [flags] <command> [command flags]

Commands:
  list           List tasks (default)
  show           Show one task or subtask
  next           Show the next actionable task
  add-task       Add a task
  add-subtask    Add a subtask to a task
  remove-task    Remove a task or subtask
  set-status     Set the status of one or more tasks
  add-dep        Add a dependency edge
  remove-dep     Remove a dependency edge
  validate-deps  Report dependency problems without fixing them
  fix-deps       Repair dependency problems and write the file back
  parse-prd      Generate a tasks file from a PRD via the agent
  doctor         Check config, schema, and tasks file health
  tui            Browse tasks in the terminal
  version        Show version

Flags:
`)
	fs.SetOutput(w)
	fs.PrintDefaults()
}

// console returns the CLI's leveled logger.
func console(cfg *config.Config) *log.Logger {
	return logging.NewConsole(logging.ConsoleOptions{
		Level:           cfg.LogLevel,
		ReportTimestamp: cfg.LogTimestamps,
	})
}

// tasksPath resolves the tasks file path against the project root.
func tasksPath(cfg *config.Config) string {
	if filepath.IsAbs(cfg.TasksFile) {
		return cfg.TasksFile
	}
	return filepath.Join(cfg.ProjectRoot, cfg.TasksFile)
}

func schemaPath(cfg *config.Config) string {
	if cfg.SchemaFile == "" || filepath.IsAbs(cfg.SchemaFile) {
		return cfg.SchemaFile
	}
	return filepath.Join(cfg.ProjectRoot, cfg.SchemaFile)
}

// loadTasks loads the tasks file named by the config.
func loadTasks(cfg *config.Config) (*task.File, string, error) {
	path := tasksPath(cfg)
	f, err := task.Load(path)
	if err != nil {
		return nil, path, err
	}
	return f, path, nil
}

// parseCLIID parses a task/subtask id given on the command line.
func parseCLIID(s string) (task.ID, error) {
	id, ok := task.ParseID(task.RawID(s))
	if !ok {
		return task.ID{}, fmt.Errorf("invalid task id %q", s)
	}
	return id, nil
}
