// Package config handles configuration loading and defaults.
package config

import (
	"github.com/taskweave/taskweave/internal/task"
)

// Default values.
const (
	DefaultTasksFile  = "tasks.json"
	DefaultSchemaFile = "tasks.schema.json"
	DefaultLogDir     = "~/.taskweave"
	DefaultAgentBin   = "claude"
	DefaultNumTasks   = 10
	DefaultLogLevel   = "info"
)

// Config holds the full configuration for taskweave.
type Config struct {
	// Paths
	TasksFile  string `toml:"tasks_file"`
	SchemaFile string `toml:"schema_file"`
	LogDir     string `toml:"log_dir"`

	// Statuses is the allowed status set. "done" always carries the
	// completion invariant regardless of what else is configured.
	Statuses []string `toml:"statuses"`

	// Agent configures the external agent CLI used by parse-prd.
	Agent Agent `toml:"agent"`

	// NumTasks is the default task count requested from parse-prd.
	NumTasks int `toml:"num_tasks"`

	// Logging
	LogLevel      string `toml:"log_level"`
	LogTimestamps bool   `toml:"log_timestamps"`

	// Project root (computed)
	ProjectRoot string `toml:"-"`
}

// Agent holds configuration for the external agent binary.
type Agent struct {
	Binary         string   `toml:"binary"`
	Model          string   `toml:"model"`
	Args           []string `toml:"args"` // extra arguments passed to the binary
	TimeoutSeconds int      `toml:"timeout_seconds"`
}

// StatusSet returns the configured statuses as the task package's type,
// falling back to the defaults when unset.
func (c *Config) StatusSet() []task.Status {
	if len(c.Statuses) == 0 {
		return task.DefaultStatuses()
	}
	out := make([]task.Status, 0, len(c.Statuses))
	for _, s := range c.Statuses {
		out = append(out, task.Status(s))
	}
	return out
}
