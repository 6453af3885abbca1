// Package agent invokes an external agent CLI and streams its output.
// It is the only place taskweave touches a language model; everything
// it returns is plain text for the caller to validate.
package agent

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os/exec"
	"time"

	"github.com/taskweave/taskweave/internal/logging"
)

const (
	// maxScanTokenSize bounds a single NDJSON line. Tool events can be
	// large; 1MB gives ample headroom.
	maxScanTokenSize = 1024 * 1024
	scanBufferSize   = 64 * 1024

	// DefaultTimeout bounds a single agent run.
	DefaultTimeout = 15 * time.Minute
)

// Config holds configuration for an agent run.
type Config struct {
	// Binary is the agent executable.
	Binary string
	// Model is the model to use (optional).
	Model string
	// Args are extra arguments passed before the prompt.
	Args []string
	// Timeout is the maximum run duration; zero means DefaultTimeout.
	Timeout time.Duration
	// WorkDir is the working directory for the agent process.
	WorkDir string
}

// Run executes the agent with the given prompt and returns its final
// result text. Stream events are forwarded to events as they arrive.
func Run(ctx context.Context, cfg Config, prompt string, events logging.EventWriter) (string, error) {
	if events == nil {
		events = logging.NopWriter{}
	}
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	args := []string{"--output-format", "stream-json", "--verbose"}
	if cfg.Model != "" {
		args = append(args, "--model", cfg.Model)
	}
	args = append(args, cfg.Args...)
	args = append(args, "-p", prompt)

	cmd := exec.CommandContext(ctx, cfg.Binary, args...)
	if cfg.WorkDir != "" {
		cmd.Dir = cfg.WorkDir
	}
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("create stdout pipe: %w", err)
	}
	stderr, err := cmd.StderrPipe()
	if err != nil {
		return "", fmt.Errorf("create stderr pipe: %w", err)
	}

	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", cfg.Binary, err)
	}
	_ = events.Write(logging.Event{Type: "command", Command: cmd.Args})

	stderrDone := make(chan struct{})
	go func() {
		defer close(stderrDone)
		scanner := bufio.NewScanner(stderr)
		scanner.Buffer(make([]byte, scanBufferSize), maxScanTokenSize)
		for scanner.Scan() {
			line := scanner.Text()
			if line != "" {
				_ = events.Write(logging.Event{Type: "error", Content: line})
			}
		}
	}()

	result, streamErr := streamEvents(stdout, events)
	<-stderrDone

	runErr := cmd.Wait()
	_ = events.Write(logging.Event{Type: "command", Command: cmd.Args, ExitCode: exitCode(runErr)})

	if ctx.Err() == context.DeadlineExceeded {
		return "", fmt.Errorf("%s timeout after %s", cfg.Binary, timeout)
	}
	if runErr != nil {
		return "", fmt.Errorf("%s failed: %w", cfg.Binary, runErr)
	}
	if streamErr != nil {
		return "", streamErr
	}
	if result == "" {
		return "", fmt.Errorf("%s produced no result", cfg.Binary)
	}
	return result, nil
}

// streamEvents decodes the agent's NDJSON stream. The format carries
// assistant messages, tool events, and a final result event; the last
// assistant text doubles as the result when no result event arrives.
func streamEvents(r io.Reader, events logging.EventWriter) (string, error) {
	decoder := json.NewDecoder(r)
	var result string
	var lastAssistant string

	for {
		var raw map[string]any
		if err := decoder.Decode(&raw); err != nil {
			if err == io.EOF {
				break
			}
			return "", fmt.Errorf("decode agent stream: %w", err)
		}
		switch eventType(raw) {
		case "assistant":
			if text := assistantText(raw); text != "" {
				lastAssistant = text
				_ = events.Write(logging.Event{Type: "assistant_message", Content: text})
			}
			for _, tool := range toolNames(raw) {
				_ = events.Write(logging.Event{Type: "tool", Tool: tool})
			}
		case "result":
			if s, ok := raw["result"].(string); ok {
				result = s
			}
			_ = events.Write(logging.Event{Type: "result", Content: result})
		}
	}

	if result == "" {
		result = lastAssistant
	}
	return result, nil
}

func eventType(raw map[string]any) string {
	t, _ := raw["type"].(string)
	return t
}

// assistantText extracts the concatenated text blocks of an assistant
// message event.
func assistantText(raw map[string]any) string {
	msg, ok := raw["message"].(map[string]any)
	if !ok {
		return ""
	}
	content, ok := msg["content"].([]any)
	if !ok {
		return ""
	}
	var text string
	for _, block := range content {
		m, ok := block.(map[string]any)
		if !ok {
			continue
		}
		if m["type"] == "text" {
			if s, ok := m["text"].(string); ok {
				text += s
			}
		}
	}
	return text
}

func toolNames(raw map[string]any) []string {
	msg, ok := raw["message"].(map[string]any)
	if !ok {
		return nil
	}
	content, ok := msg["content"].([]any)
	if !ok {
		return nil
	}
	var tools []string
	for _, block := range content {
		m, ok := block.(map[string]any)
		if !ok {
			continue
		}
		if m["type"] == "tool_use" {
			if name, ok := m["name"].(string); ok {
				tools = append(tools, name)
			}
		}
	}
	return tools
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	if ee, ok := err.(*exec.ExitError); ok {
		return ee.ExitCode()
	}
	return -1
}
