package models

// Field types understood by the renderer and rule engine.
const (
	FieldText     = "text"
	FieldNumber   = "number"
	FieldEmail    = "email"
	FieldSelect   = "select"
	FieldRadio    = "radio"
	FieldCheckbox = "checkbox"
	FieldTextarea = "textarea"
	FieldFile     = "file"
	FieldDatetime = "datetime"
)

// FormDefinition is a checklist schema. It decodes from both the embedded
// YAML catalogue and JSON overrides.
type FormDefinition struct {
	ID          string    `json:"id" yaml:"id"`
	Title       string    `json:"title" yaml:"title"`
	Description string    `json:"description,omitempty" yaml:"description,omitempty"`
	Sections    []Section `json:"sections" yaml:"sections"`
}

type Section struct {
	ID           string  `json:"id" yaml:"id"`
	Title        string  `json:"title" yaml:"title"`
	RequiredNote string  `json:"requiredNote,omitempty" yaml:"requiredNote,omitempty"`
	Fields       []Field `json:"fields" yaml:"fields"`
}

type Field struct {
	ID       string   `json:"id" yaml:"id"`
	Label    string   `json:"label" yaml:"label"`
	Type     string   `json:"type" yaml:"type"`
	Required bool     `json:"required" yaml:"required"`
	Options  []string `json:"options,omitempty" yaml:"options,omitempty"`
	Hint     string   `json:"hint,omitempty" yaml:"hint,omitempty"`
}

func (f Field) HasOption(opt string) bool {
	for _, o := range f.Options {
		if o == opt {
			return true
		}
	}
	return false
}

// Field looks a field up by id across all sections.
func (d *FormDefinition) Field(id string) (Field, bool) {
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			if f.ID == id {
				return f, true
			}
		}
	}
	return Field{}, false
}

// FieldIDs lists every field id in schema order.
func (d *FormDefinition) FieldIDs() []string {
	var ids []string
	for _, s := range d.Sections {
		for _, f := range s.Fields {
			ids = append(ids, f.ID)
		}
	}
	return ids
}
