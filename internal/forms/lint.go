package forms

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/qri-io/jsonschema"
)

// definitionSchema describes the shape the renderer expects. It is used for
// warnings only.
const definitionSchema = `{
  "type": "object",
  "required": ["title", "sections"],
  "properties": {
    "id": {"type": "string"},
    "title": {"type": "string"},
    "description": {"type": "string"},
    "sections": {
      "type": "array",
      "items": {
        "type": "object",
        "required": ["id", "title", "fields"],
        "properties": {
          "id": {"type": "string", "minLength": 1},
          "title": {"type": "string"},
          "requiredNote": {"type": "string"},
          "fields": {
            "type": "array",
            "items": {
              "type": "object",
              "required": ["id", "label", "type"],
              "properties": {
                "id": {"type": "string", "minLength": 1},
                "label": {"type": "string"},
                "type": {"enum": ["text", "number", "email", "select", "radio", "checkbox", "textarea", "file", "datetime"]},
                "required": {"type": "boolean"},
                "options": {"type": "array", "items": {"type": "string"}},
                "hint": {"type": "string"}
              }
            }
          }
        }
      }
    }
  }
}`

// Linter checks override documents against the form definition schema and
// a few cross-field rules JSON Schema cannot express.
type Linter struct {
	schema *jsonschema.Schema
}

func NewLinter() *Linter {
	rs := &jsonschema.Schema{}
	if err := json.Unmarshal([]byte(definitionSchema), rs); err != nil {
		panic(fmt.Sprintf("compile form definition schema: %v", err))
	}
	return &Linter{schema: rs}
}

// Lint returns human-readable findings; an empty slice means clean.
func (l *Linter) Lint(ctx context.Context, formID string, raw []byte) []string {
	var warnings []string

	verrs, err := l.schema.ValidateBytes(ctx, raw)
	if err != nil {
		return []string{fmt.Sprintf("not a valid form definition: %v", err)}
	}
	for _, v := range verrs {
		p := v.PropertyPath
		if p == "" {
			p = "/"
		}
		warnings = append(warnings, fmt.Sprintf("%s: %s", p, v.Message))
	}

	def := DecodeDefinition(formID, raw)
	seen := map[string]bool{}
	for _, s := range def.Sections {
		for _, f := range s.Fields {
			if f.ID == "" {
				continue
			}
			if seen[f.ID] {
				warnings = append(warnings, fmt.Sprintf("field id %q appears more than once", f.ID))
			}
			seen[f.ID] = true
			if (f.Type == "select" || f.Type == "radio") && len(f.Options) == 0 {
				warnings = append(warnings, fmt.Sprintf("field %q is a %s without options", f.ID, f.Type))
			}
		}
	}

	return warnings
}
