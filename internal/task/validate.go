package task

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	jsonschema "github.com/santhosh-tekuri/jsonschema/v5"
)

// ValidationError represents a file-shape validation error with context.
type ValidationError struct {
	Path string // JSON path to the error location
	Err  error
}

func (e *ValidationError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("%s: %s", e.Path, e.Err)
	}
	return e.Err.Error()
}

// Unwrap returns the underlying error.
func (e *ValidationError) Unwrap() error {
	return e.Err
}

// ValidationOptions controls file-shape validation behavior.
type ValidationOptions struct {
	// SchemaPath is the path to the JSON Schema file. If empty or the
	// file is missing, validation falls back to minimal checks.
	SchemaPath string
	// Statuses is the allowed status set; empty means the defaults.
	Statuses []Status
}

// ValidationResult contains file-shape validation results. Dependency
// graph consistency is the deps package's concern, not this one.
type ValidationResult struct {
	Valid      bool
	Errors     []error
	Warnings   []string
	UsedSchema bool
}

// Validate checks the shape of the tasks file: schema validation when a
// schema file is available, minimal structural checks otherwise.
func (f *File) Validate(opts ValidationOptions) *ValidationResult {
	result := &ValidationResult{Valid: true}

	if opts.SchemaPath != "" {
		errs, warnings, used := validateWithSchema(f, opts.SchemaPath)
		result.Warnings = append(result.Warnings, warnings...)
		if used {
			result.UsedSchema = true
			result.Errors = errs
			result.Valid = len(errs) == 0
			return result
		}
		result.Warnings = append(result.Warnings, "JSON Schema validation not available, using minimal checks")
	}

	f.validateMinimal(result, opts.Statuses)
	return result
}

// validateMinimal performs minimal validation without JSON Schema.
func (f *File) validateMinimal(result *ValidationResult, statuses []Status) {
	if f.SchemaVersion != 1 {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "schema_version",
			Err:  fmt.Errorf("expected 1, got %d", f.SchemaVersion),
		})
	}

	if f.Tasks == nil {
		result.Valid = false
		result.Errors = append(result.Errors, &ValidationError{
			Path: "tasks",
			Err:  fmt.Errorf("missing required field"),
		})
		return
	}

	seen := make(map[int]bool, len(f.Tasks))
	for i := range f.Tasks {
		t := &f.Tasks[i]
		path := fmt.Sprintf("tasks[%d]", i)
		if err := validateTaskMinimal(t, path, statuses); err != nil {
			result.Valid = false
			result.Errors = append(result.Errors, err)
			continue
		}
		if seen[t.ID] {
			result.Valid = false
			result.Errors = append(result.Errors, &ValidationError{
				Path: path + ".id",
				Err:  fmt.Errorf("duplicate task id %d", t.ID),
			})
		}
		seen[t.ID] = true
	}
}

func validateTaskMinimal(t *Task, path string, statuses []Status) *ValidationError {
	if t.ID <= 0 {
		return &ValidationError{
			Path: path + ".id",
			Err:  fmt.Errorf("must be a positive integer, got %d", t.ID),
		}
	}
	if t.Title == "" {
		return &ValidationError{
			Path: path + ".title",
			Err:  fmt.Errorf("missing required field"),
		}
	}
	if t.Priority < 1 || t.Priority > 5 {
		return &ValidationError{
			Path: path + ".priority",
			Err:  fmt.Errorf("must be between 1 and 5, got %d", t.Priority),
		}
	}
	if !StatusAllowed(t.Status, statuses) {
		return &ValidationError{
			Path: path + ".status",
			Err:  fmt.Errorf("invalid status %q", t.Status),
		}
	}
	seen := make(map[int]bool, len(t.Subtasks))
	for j := range t.Subtasks {
		st := &t.Subtasks[j]
		spath := fmt.Sprintf("%s.subtasks[%d]", path, j)
		if st.ID <= 0 {
			return &ValidationError{
				Path: spath + ".id",
				Err:  fmt.Errorf("must be a positive integer, got %d", st.ID),
			}
		}
		if seen[st.ID] {
			return &ValidationError{
				Path: spath + ".id",
				Err:  fmt.Errorf("duplicate subtask id %d", st.ID),
			}
		}
		seen[st.ID] = true
		if st.Title == "" {
			return &ValidationError{
				Path: spath + ".title",
				Err:  fmt.Errorf("missing required field"),
			}
		}
		if !StatusAllowed(st.Status, statuses) {
			return &ValidationError{
				Path: spath + ".status",
				Err:  fmt.Errorf("invalid status %q", st.Status),
			}
		}
	}
	return nil
}

// validateWithSchema checks the file against the schema at schemaPath.
// A missing or broken schema comes back as a warning with used=false so
// Validate can fall back to the minimal checks; schema violations come
// back as ValidationErrors keyed by dotted path.
func validateWithSchema(f *File, schemaPath string) (errs []error, warnings []string, used bool) {
	abs, err := filepath.Abs(schemaPath)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema path: %v", err)}, false
	}
	if _, err := os.Stat(abs); err != nil {
		return nil, []string{fmt.Sprintf("schema file unavailable: %v", err)}, false
	}
	compiler := jsonschema.NewCompiler()
	compiler.AssertFormat = true
	schema, err := compiler.Compile(abs)
	if err != nil {
		return nil, []string{fmt.Sprintf("invalid schema file: %v", err)}, false
	}

	// Round-trip through JSON so the schema sees the serialized form,
	// raw-id normalization included.
	data, err := json.Marshal(f)
	if err != nil {
		return []error{fmt.Errorf("marshal tasks file for validation: %w", err)}, nil, true
	}
	var doc any
	if err := json.Unmarshal(data, &doc); err != nil {
		return []error{fmt.Errorf("reparse tasks file for validation: %w", err)}, nil, true
	}
	if err := schema.Validate(doc); err != nil {
		return flattenSchemaError(err), nil, true
	}
	return nil, nil, true
}

// flattenSchemaError collects the leaf causes of a jsonschema
// validation error. Inner nodes only restate their children, so only
// leaves become ValidationErrors.
func flattenSchemaError(err error) []error {
	root, ok := err.(*jsonschema.ValidationError)
	if !ok {
		return []error{err}
	}
	var errs []error
	queue := []*jsonschema.ValidationError{root}
	for len(queue) > 0 {
		ve := queue[0]
		queue = queue[1:]
		if len(ve.Causes) > 0 {
			queue = append(queue, ve.Causes...)
			continue
		}
		errs = append(errs, &ValidationError{
			Path: pointerPath(ve.InstanceLocation),
			Err:  errors.New(ve.Message),
		})
	}
	return errs
}

// pointerPath converts a JSON pointer ("/tasks/0/id") to the dotted
// form used in ValidationError paths ("tasks[0].id").
func pointerPath(ptr string) string {
	var b strings.Builder
	for _, part := range strings.Split(strings.TrimPrefix(ptr, "#"), "/") {
		if part == "" {
			continue
		}
		part = strings.NewReplacer("~1", "/", "~0", "~").Replace(part)
		if n, err := strconv.Atoi(part); err == nil {
			fmt.Fprintf(&b, "[%d]", n)
			continue
		}
		if b.Len() > 0 {
			b.WriteByte('.')
		}
		b.WriteString(part)
	}
	return b.String()
}
