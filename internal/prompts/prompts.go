// Package prompts renders the prompt sent to the agent for PRD parsing.
package prompts

import (
	"bytes"
	"fmt"
	"text/template"
)

// bundledTasksSchema is the embedded tasks-file schema, used when no
// schema file is present on disk and embedded into the PRD prompt so
// the agent produces the right shape.
const bundledTasksSchema = `{
  "$schema": "https://json-schema.org/draft/2020-12/schema",
  "title": "Taskweave Tasks",
  "type": "object",
  "additionalProperties": false,
  "required": ["schema_version", "tasks"],
  "properties": {
    "schema_version": { "type": "integer", "const": 1 },
    "project": {
      "type": "object",
      "additionalProperties": false,
      "properties": {
        "name": { "type": "string" },
        "root": { "type": "string" }
      }
    },
    "tasks": {
      "type": "array",
      "items": { "$ref": "#/$defs/task" }
    }
  },
  "$defs": {
    "id_ref": {
      "oneOf": [
        { "type": "integer", "minimum": 1 },
        { "type": "string", "pattern": "^\\s*[0-9]+(\\.[0-9]+)?\\s*$" }
      ]
    },
    "task": {
      "type": "object",
      "additionalProperties": false,
      "required": ["id", "title", "priority", "status"],
      "properties": {
        "id": { "type": "integer", "minimum": 1 },
        "title": { "type": "string", "minLength": 1 },
        "description": { "type": "string" },
        "details": { "type": "string" },
        "test_strategy": { "type": "string" },
        "priority": { "type": "integer", "minimum": 1, "maximum": 5 },
        "status": { "type": "string", "minLength": 1 },
        "dependencies": { "type": "array", "items": { "$ref": "#/$defs/id_ref" } },
        "subtasks": { "type": "array", "items": { "$ref": "#/$defs/subtask" } },
        "created_at": { "type": "string", "format": "date-time" },
        "updated_at": { "type": "string", "format": "date-time" }
      }
    },
    "subtask": {
      "type": "object",
      "additionalProperties": false,
      "required": ["id", "title", "status"],
      "properties": {
        "id": { "type": "integer", "minimum": 1 },
        "title": { "type": "string", "minLength": 1 },
        "description": { "type": "string" },
        "status": { "type": "string", "minLength": 1 },
        "dependencies": { "type": "array", "items": { "$ref": "#/$defs/id_ref" } }
      }
    }
  }
}`

// BundledSchema returns the embedded tasks schema JSON content.
func BundledSchema() []byte {
	return []byte(bundledTasksSchema)
}

const parsePRDTemplate = `You are generating a task breakdown from a product requirements document.

Read the PRD below and produce approximately {{.NumTasks}} implementation tasks.

Rules:
- Respond with a single JSON object and nothing else.
- The JSON must conform to this schema:

{{.Schema}}

- Number tasks sequentially starting at {{.FirstID}}.
- Every task status must be "pending".
- Use the dependencies array to order work: a task lists the ids of
  tasks that must finish first. Dependencies must reference existing
  task ids only, never a task's own id, and must not form cycles.
- Prefer small, independently verifiable tasks. Put acceptance detail
  in test_strategy.

PRD:

{{.PRD}}
`

// ParsePRDInput is the data rendered into the PRD prompt.
type ParsePRDInput struct {
	PRD      string
	NumTasks int
	FirstID  int
	Schema   string
}

var parsePRD = template.Must(template.New("parse-prd").Parse(parsePRDTemplate))

// ParsePRD renders the PRD parsing prompt.
func ParsePRD(input ParsePRDInput) (string, error) {
	if input.NumTasks <= 0 {
		input.NumTasks = 10
	}
	if input.FirstID <= 0 {
		input.FirstID = 1
	}
	if input.Schema == "" {
		input.Schema = bundledTasksSchema
	}
	var buf bytes.Buffer
	if err := parsePRD.Execute(&buf, input); err != nil {
		return "", fmt.Errorf("render parse-prd prompt: %w", err)
	}
	return buf.String(), nil
}
