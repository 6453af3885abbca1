package agent

import (
	"fmt"
	"strings"
)

// ExtractJSON pulls the JSON document out of an agent response. Agents
// tend to wrap JSON in markdown fences or surround it with prose, so we
// try a fenced block first and fall back to the outermost braces.
func ExtractJSON(s string) ([]byte, error) {
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, fmt.Errorf("empty agent response")
	}

	if block, ok := fencedBlock(s); ok {
		s = block
	}

	start := strings.IndexByte(s, '{')
	end := strings.LastIndexByte(s, '}')
	if start < 0 || end <= start {
		return nil, fmt.Errorf("no JSON object in agent response")
	}
	return []byte(s[start : end+1]), nil
}

// fencedBlock returns the contents of the first ``` fence, tolerating a
// language tag on the opening line.
func fencedBlock(s string) (string, bool) {
	start := strings.Index(s, "```")
	if start < 0 {
		return "", false
	}
	rest := s[start+3:]
	if nl := strings.IndexByte(rest, '\n'); nl >= 0 {
		rest = rest[nl+1:]
	}
	end := strings.Index(rest, "```")
	if end < 0 {
		return "", false
	}
	return strings.TrimSpace(rest[:end]), true
}
