package config

import (
	"flag"
	"os"
	"path/filepath"
	"testing"
)

// isolate points HOME and the config dir at empty temp directories so
// tests never pick up the developer's real config files.
func isolate(t *testing.T) {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	t.Setenv("XDG_CONFIG_HOME", filepath.Join(home, ".config"))
	chdir(t, t.TempDir())
}

// chdir mirrors testing.T.Chdir, which needs Go 1.24.
func chdir(t *testing.T, dir string) {
	t.Helper()
	old, err := os.Getwd()
	if err != nil {
		t.Fatalf("getwd: %v", err)
	}
	if err := os.Chdir(dir); err != nil {
		t.Fatalf("chdir: %v", err)
	}
	t.Cleanup(func() {
		if err := os.Chdir(old); err != nil {
			t.Fatalf("restore wd: %v", err)
		}
	})
}

func load(t *testing.T, args ...string) *Config {
	t.Helper()
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	cfg, err := Load(fs, args)
	if err != nil {
		t.Fatalf("Load failed: %v", err)
	}
	return cfg
}

func TestLoadDefaults(t *testing.T) {
	isolate(t)
	cfg := load(t)

	if cfg.TasksFile != DefaultTasksFile {
		t.Errorf("TasksFile = %q, want %q", cfg.TasksFile, DefaultTasksFile)
	}
	if cfg.SchemaFile != DefaultSchemaFile {
		t.Errorf("SchemaFile = %q, want %q", cfg.SchemaFile, DefaultSchemaFile)
	}
	if cfg.Agent.Binary != DefaultAgentBin {
		t.Errorf("Agent.Binary = %q, want %q", cfg.Agent.Binary, DefaultAgentBin)
	}
	if cfg.NumTasks != DefaultNumTasks {
		t.Errorf("NumTasks = %d, want %d", cfg.NumTasks, DefaultNumTasks)
	}
	if cfg.LogLevel != DefaultLogLevel {
		t.Errorf("LogLevel = %q, want %q", cfg.LogLevel, DefaultLogLevel)
	}
	if cfg.ProjectRoot == "" {
		t.Error("ProjectRoot not set")
	}
}

func TestLoadProjectFile(t *testing.T) {
	isolate(t)
	content := `
tasks_file = "work/tasks.json"
log_level = "debug"
num_tasks = 5
statuses = ["pending", "done", "triage"]

[agent]
binary = "my-agent"
model = "fast"
timeout_seconds = 60
`
	if err := os.WriteFile("taskweave.toml", []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := load(t)

	if cfg.TasksFile != "work/tasks.json" {
		t.Errorf("TasksFile = %q", cfg.TasksFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.NumTasks != 5 {
		t.Errorf("NumTasks = %d, want 5", cfg.NumTasks)
	}
	if len(cfg.Statuses) != 3 || cfg.Statuses[2] != "triage" {
		t.Errorf("Statuses = %v", cfg.Statuses)
	}
	if cfg.Agent.Binary != "my-agent" || cfg.Agent.Model != "fast" || cfg.Agent.TimeoutSeconds != 60 {
		t.Errorf("Agent = %+v", cfg.Agent)
	}
}

func TestLoadUserFileOverriddenByProjectFile(t *testing.T) {
	isolate(t)
	userDir := filepath.Join(os.Getenv("XDG_CONFIG_HOME"), "taskweave")
	if err := os.MkdirAll(userDir, 0755); err != nil {
		t.Fatal(err)
	}
	userFile := filepath.Join(userDir, "taskweave.toml")
	if err := os.WriteFile(userFile, []byte("log_level = \"warn\"\nnum_tasks = 3\n"), 0644); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile("taskweave.toml", []byte("log_level = \"error\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	cfg := load(t)

	if cfg.LogLevel != "error" {
		t.Errorf("LogLevel = %q, want project file to win", cfg.LogLevel)
	}
	if cfg.NumTasks != 3 {
		t.Errorf("NumTasks = %d, want user file value to survive", cfg.NumTasks)
	}
}

func TestLoadEnvOverridesFiles(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("taskweave.toml", []byte("tasks_file = \"from-file.json\"\n"), 0644); err != nil {
		t.Fatal(err)
	}
	t.Setenv("TASKWEAVE_TASKS", "from-env.json")
	t.Setenv("TASKWEAVE_STATUSES", "pending, done ,review")
	t.Setenv("TASKWEAVE_AGENT_TIMEOUT", "120")

	cfg := load(t)
	if cfg.TasksFile != "from-env.json" {
		t.Errorf("TasksFile = %q, want env to win", cfg.TasksFile)
	}
	if len(cfg.Statuses) != 3 || cfg.Statuses[1] != "done" {
		t.Errorf("Statuses = %v", cfg.Statuses)
	}
	if cfg.Agent.TimeoutSeconds != 120 {
		t.Errorf("TimeoutSeconds = %d, want 120", cfg.Agent.TimeoutSeconds)
	}
}

func TestLoadFlagsOverrideEnv(t *testing.T) {
	isolate(t)
	t.Setenv("TASKWEAVE_TASKS", "from-env.json")
	cfg := load(t, "-file", "from-flag.json", "-log-level", "debug")

	if cfg.TasksFile != "from-flag.json" {
		t.Errorf("TasksFile = %q, want flag to win", cfg.TasksFile)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
}

func TestLoadRejectsEmptyStatus(t *testing.T) {
	isolate(t)
	if err := os.WriteFile("taskweave.toml", []byte("statuses = [\"pending\", \"  \"]\n"), 0644); err != nil {
		t.Fatal(err)
	}
	fs := flag.NewFlagSet("test", flag.ContinueOnError)
	if _, err := Load(fs, nil); err == nil {
		t.Error("empty status entry accepted")
	}
}

func TestStatusSet(t *testing.T) {
	cfg := &Config{}
	if got := cfg.StatusSet(); len(got) == 0 {
		t.Error("StatusSet with no config returned empty set")
	}
	cfg.Statuses = []string{"triage", "done"}
	got := cfg.StatusSet()
	if len(got) != 2 || string(got[0]) != "triage" {
		t.Errorf("StatusSet = %v", got)
	}
}

func TestExpandPath(t *testing.T) {
	t.Setenv("HOME", "/home/tester")
	tests := []struct {
		in, want string
	}{
		{"", ""},
		{"~", "/home/tester"},
		{"~/.taskweave", "/home/tester/.taskweave"},
		{"/abs/path", "/abs/path"},
		{"relative/path", "relative/path"},
	}
	for _, tt := range tests {
		if got := expandPath(tt.in); got != tt.want {
			t.Errorf("expandPath(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}
