package cmd

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"github.com/taskweave/taskweave/internal/agent"
	"github.com/taskweave/taskweave/internal/config"
	"github.com/taskweave/taskweave/internal/deps"
	"github.com/taskweave/taskweave/internal/logging"
	"github.com/taskweave/taskweave/internal/prompts"
	"github.com/taskweave/taskweave/internal/task"
)

// parsePRDCommand feeds a PRD through the configured agent and writes
// the generated tasks file. Generation happens entirely in the agent;
// this command validates the shape of what comes back and runs a
// mandatory repair pass before anything touches disk.
func parsePRDCommand(ctx context.Context, cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("taskweave parse-prd", flag.ContinueOnError)
	numTasks := fs.Int("num", cfg.NumTasks, "Approximate number of tasks to generate")
	force := fs.Bool("force", false, "Overwrite an existing tasks file")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: taskweave parse-prd [-num N] [-force] <prd-file>")
	}
	prdPath := fs.Arg(0)

	outPath := tasksPath(cfg)
	if _, err := os.Stat(outPath); err == nil && !*force {
		return fmt.Errorf("%s already exists (use -force to overwrite)", outPath)
	}

	prd, err := os.ReadFile(prdPath)
	if err != nil {
		return fmt.Errorf("read PRD: %w", err)
	}

	prompt, err := prompts.ParsePRD(prompts.ParsePRDInput{
		PRD:      string(prd),
		NumTasks: *numTasks,
	})
	if err != nil {
		return err
	}

	logger := console(cfg)
	runLog, err := logging.NewRunLogger(cfg.LogDir, cfg.ProjectRoot)
	if err != nil {
		return fmt.Errorf("open run log: %w", err)
	}
	defer runLog.Close()
	events := logging.Tee{runLog, &logging.ConsoleEventWriter{Logger: logger}}

	logger.Info("parsing PRD", "file", prdPath, "agent", cfg.Agent.Binary, "log", runLog.LogPath)
	response, err := agent.Run(ctx, agent.Config{
		Binary:  cfg.Agent.Binary,
		Model:   cfg.Agent.Model,
		Args:    cfg.Agent.Args,
		Timeout: time.Duration(cfg.Agent.TimeoutSeconds) * time.Second,
		WorkDir: cfg.ProjectRoot,
	}, prompt, events)
	if err != nil {
		return fmt.Errorf("agent run: %w", err)
	}

	raw, err := agent.ExtractJSON(response)
	if err != nil {
		return err
	}
	f, err := task.Parse(raw)
	if err != nil {
		return fmt.Errorf("agent produced invalid tasks JSON: %w", err)
	}

	result := f.Validate(task.ValidationOptions{
		SchemaPath: schemaPath(cfg),
		Statuses:   cfg.StatusSet(),
	})
	for _, w := range result.Warnings {
		logger.Warn(w)
	}
	if !result.Valid {
		for _, e := range result.Errors {
			logger.Error(e.Error())
		}
		return fmt.Errorf("agent produced a tasks file that fails validation")
	}

	// Agents invent dependency problems too. Never write a generated
	// file without a repair pass.
	repair := deps.Repair(f)
	for _, change := range repair.Changes {
		logger.Warn("repaired generated tasks", "change", change.Message)
	}

	if err := f.Save(outPath); err != nil {
		return err
	}
	logger.Info("wrote tasks file", "path", outPath, "tasks", len(f.Tasks))
	return nil
}
