package logging

import (
	"os"

	"github.com/charmbracelet/log"
)

// ConsoleOptions holds configuration for console logging.
type ConsoleOptions struct {
	Level           string
	ReportTimestamp bool
}

// NewConsole creates the leveled console logger used by the CLI.
func NewConsole(opts ConsoleOptions) *log.Logger {
	return log.NewWithOptions(os.Stderr, log.Options{
		Level:           parseLevel(opts.Level),
		Formatter:       log.TextFormatter,
		ReportTimestamp: opts.ReportTimestamp,
		Prefix:          "taskweave",
	})
}

func parseLevel(level string) log.Level {
	switch level {
	case "debug":
		return log.DebugLevel
	case "warn":
		return log.WarnLevel
	case "error":
		return log.ErrorLevel
	default:
		return log.InfoLevel
	}
}

// ConsoleEventWriter mirrors agent run events onto the console logger.
type ConsoleEventWriter struct {
	Logger *log.Logger
}

// Write implements EventWriter.
func (c *ConsoleEventWriter) Write(event Event) error {
	switch event.Type {
	case "error":
		c.Logger.Error(event.Content)
	case "command":
		c.Logger.Debug("agent command", "command", event.Command, "exit_code", event.ExitCode)
	case "tool":
		c.Logger.Debug("tool use", "tool", event.Tool)
	case "result":
		c.Logger.Info("agent finished")
	default:
		if event.Content != "" {
			c.Logger.Debug(event.Content)
		}
	}
	return nil
}

// Tee fans an event out to several writers; the first error wins.
type Tee []EventWriter

// Write implements EventWriter.
func (t Tee) Write(event Event) error {
	for _, w := range t {
		if err := w.Write(event); err != nil {
			return err
		}
	}
	return nil
}
