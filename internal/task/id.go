package task

import (
	"encoding/json"
	"strconv"
	"strings"
)

// RawID is a dependency identifier as it appears in the tasks file.
// The file format accepts both JSON numbers and strings ("7", 7, "7.2");
// RawID normalizes all of them to a trimmed string form at unmarshal time
// so the rest of the code never sees the ambiguity.
type RawID string

// UnmarshalJSON accepts either a JSON number or a JSON string.
func (r *RawID) UnmarshalJSON(data []byte) error {
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*r = RawID(strings.TrimSpace(s))
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return err
	}
	*r = RawID(n.String())
	return nil
}

// MarshalJSON writes plain task ids back as JSON numbers and everything
// else (composite ids, malformed leftovers) as strings.
func (r RawID) MarshalJSON() ([]byte, error) {
	s := string(r)
	if n, err := strconv.Atoi(s); err == nil && n > 0 && strconv.Itoa(n) == s {
		return []byte(s), nil
	}
	return json.Marshal(s)
}

// ID addresses a task or one of its subtasks. Sub is 0 for top-level
// tasks; subtask local ids are 1-based.
type ID struct {
	Task int
	Sub  int
}

// TaskID returns the ID for a top-level task.
func TaskID(n int) ID { return ID{Task: n} }

// SubtaskID returns the composite ID for a subtask.
func SubtaskID(parent, local int) ID { return ID{Task: parent, Sub: local} }

// IsSubtask reports whether the ID addresses a subtask.
func (id ID) IsSubtask() bool { return id.Sub != 0 }

// String renders the canonical form: "7" or "7.2".
func (id ID) String() string {
	if id.Sub != 0 {
		return strconv.Itoa(id.Task) + "." + strconv.Itoa(id.Sub)
	}
	return strconv.Itoa(id.Task)
}

// ParseID parses a raw identifier into a canonical ID. Strings are
// trimmed; exactly one dot means parentId.subIndex; anything else must
// be a plain positive integer. Malformed input returns ok=false rather
// than an error: bad identifiers are data problems, not caller bugs,
// and get reported as dangling references downstream.
func ParseID(raw RawID) (ID, bool) {
	s := strings.TrimSpace(string(raw))
	if s == "" {
		return ID{}, false
	}
	if i := strings.IndexByte(s, '.'); i >= 0 {
		if strings.IndexByte(s[i+1:], '.') >= 0 {
			return ID{}, false
		}
		parent, ok := parsePositive(s[:i])
		if !ok {
			return ID{}, false
		}
		local, ok := parsePositive(s[i+1:])
		if !ok {
			return ID{}, false
		}
		return ID{Task: parent, Sub: local}, true
	}
	n, ok := parsePositive(s)
	if !ok {
		return ID{}, false
	}
	return ID{Task: n}, true
}

func parsePositive(s string) (int, bool) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 {
		return 0, false
	}
	return n, true
}
