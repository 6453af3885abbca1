package config

import (
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BurntSushi/toml"
)

// Load loads configuration from multiple sources in priority order:
// 1. Defaults
// 2. User config file (~/.config/taskweave/taskweave.toml)
// 3. Project config file (taskweave.toml or .taskweave.toml)
// 4. Environment variables (TASKWEAVE_*)
// 5. CLI flags
func Load(fs *flag.FlagSet, args []string) (*Config, error) {
	cfg := &Config{}
	setDefaults(cfg)

	if userFile := findUserConfigFile(); userFile != "" {
		if err := loadConfigFile(cfg, userFile); err != nil {
			return nil, fmt.Errorf("loading user config file %s: %w", userFile, err)
		}
	}
	if projFile := findProjectConfigFile(); projFile != "" {
		if err := loadConfigFile(cfg, projFile); err != nil {
			return nil, fmt.Errorf("loading project config file %s: %w", projFile, err)
		}
	}

	loadFromEnv(cfg)

	if err := parseFlags(cfg, fs, args); err != nil {
		return nil, fmt.Errorf("parsing flags: %w", err)
	}

	if err := finalize(cfg); err != nil {
		return nil, fmt.Errorf("finalizing config: %w", err)
	}
	return cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.TasksFile = DefaultTasksFile
	cfg.SchemaFile = DefaultSchemaFile
	cfg.LogDir = DefaultLogDir
	cfg.NumTasks = DefaultNumTasks
	cfg.LogLevel = DefaultLogLevel
	cfg.Agent = Agent{Binary: DefaultAgentBin}
}

func findUserConfigFile() string {
	if dir, err := os.UserConfigDir(); err == nil {
		candidate := filepath.Join(dir, "taskweave", "taskweave.toml")
		if fileExists(candidate) {
			return candidate
		}
	}
	if home, err := os.UserHomeDir(); err == nil {
		candidate := filepath.Join(home, ".taskweave", "taskweave.toml")
		if fileExists(candidate) {
			return candidate
		}
	}
	return ""
}

func findProjectConfigFile() string {
	for _, name := range []string{"taskweave.toml", ".taskweave.toml"} {
		if fileExists(name) {
			return name
		}
	}
	return ""
}

func fileExists(path string) bool {
	fi, err := os.Stat(path)
	return err == nil && !fi.IsDir()
}

func loadConfigFile(cfg *Config, path string) error {
	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return err
	}
	return nil
}

// loadFromEnv overrides config from environment variables.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("TASKWEAVE_TASKS"); v != "" {
		cfg.TasksFile = v
	}
	if v := os.Getenv("TASKWEAVE_SCHEMA"); v != "" {
		cfg.SchemaFile = v
	}
	if v := os.Getenv("TASKWEAVE_LOG_DIR"); v != "" {
		cfg.LogDir = v
	}
	if v := os.Getenv("TASKWEAVE_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
	if v := os.Getenv("TASKWEAVE_STATUSES"); v != "" {
		cfg.Statuses = splitAndTrim(v, ",")
	}
	if v := os.Getenv("TASKWEAVE_AGENT"); v != "" {
		cfg.Agent.Binary = v
	}
	if v := os.Getenv("TASKWEAVE_MODEL"); v != "" {
		cfg.Agent.Model = v
	}
	if v := os.Getenv("TASKWEAVE_AGENT_TIMEOUT"); v != "" {
		if n, err := strconv.Atoi(v); err == nil && n > 0 {
			cfg.Agent.TimeoutSeconds = n
		}
	}
}

// parseFlags registers the global flags on fs and parses args. Flags
// override everything else.
func parseFlags(cfg *Config, fs *flag.FlagSet, args []string) error {
	fs.StringVar(&cfg.TasksFile, "file", cfg.TasksFile, "Path to the tasks file")
	fs.StringVar(&cfg.SchemaFile, "schema", cfg.SchemaFile, "Path to the tasks JSON schema")
	fs.StringVar(&cfg.LogDir, "log-dir", cfg.LogDir, "Directory for run logs")
	fs.StringVar(&cfg.LogLevel, "log-level", cfg.LogLevel, "Console log level (debug|info|warn|error)")
	return fs.Parse(args)
}

func finalize(cfg *Config) error {
	cfg.LogDir = expandPath(cfg.LogDir)
	cfg.TasksFile = expandPath(cfg.TasksFile)
	cfg.SchemaFile = expandPath(cfg.SchemaFile)

	wd, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("determine working directory: %w", err)
	}
	cfg.ProjectRoot = wd

	if cfg.NumTasks <= 0 {
		cfg.NumTasks = DefaultNumTasks
	}
	for _, s := range cfg.Statuses {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("statuses must not contain empty entries")
		}
	}
	return nil
}

func splitAndTrim(s, sep string) []string {
	parts := strings.Split(s, sep)
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}
