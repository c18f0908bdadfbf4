package rules

import (
	"slices"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
)

// FieldState is the computed state of one schema field.
type FieldState struct {
	ID       string `json:"id"`
	Section  string `json:"section"`
	Required bool   `json:"required"`
	Disabled bool   `json:"disabled,omitempty"`
}

// CompanionState describes a visible companion field.
type CompanionState struct {
	ID       string `json:"id"`
	ParentID string `json:"parentId"`
	Required bool   `json:"required"`
}

// View is the full effective state of a form for a set of answers.
type View struct {
	FormID      string           `json:"formId"`
	ActiveRules []string         `json:"activeRules"`
	Fields      []FieldState     `json:"fields"`
	Companions  []CompanionState `json:"companions"`
	Answers     map[string]any   `json:"answers"`
}

func (v View) field(id string) (FieldState, bool) {
	for _, f := range v.Fields {
		if f.ID == id {
			return f, true
		}
	}
	return FieldState{}, false
}

// Required reports the effective required flag of a schema or companion field.
func (v View) Required(id string) bool {
	if f, ok := v.field(id); ok {
		return f.Required
	}
	for _, c := range v.Companions {
		if c.ID == id {
			return c.Required
		}
	}
	return false
}

func (v View) Disabled(id string) bool {
	f, _ := v.field(id)
	return f.Disabled
}

// Visible reports whether id is a schema field or a shown companion.
func (v View) Visible(id string) bool {
	if _, ok := v.field(id); ok {
		return true
	}
	for _, c := range v.Companions {
		if c.ID == id {
			return true
		}
	}
	return false
}

// ComputeView evaluates every rule of table against answers from scratch.
// The answers map is not modified; View.Answers holds the result of
// auto-fill and companion clearing. A rule whose trigger field is missing
// from def never activates.
func ComputeView(def models.FormDefinition, answers map[string]any, table Table) View {
	next := make(map[string]any, len(answers))
	for k, v := range answers {
		next[k] = v
	}

	var active []Rule
	for _, r := range table.rulesFor(def.ID) {
		if _, ok := def.Field(r.TriggerFieldID); !ok {
			continue
		}
		if s, ok := next[r.TriggerFieldID].(string); ok && s == r.TriggerValue {
			active = append(active, r)
		}
	}

	view := View{
		FormID:      def.ID,
		ActiveRules: []string{},
		Fields:      []FieldState{},
		Companions:  []CompanionState{},
		Answers:     next,
	}
	for _, r := range active {
		if !slices.Contains(view.ActiveRules, r.TriggerFieldID) {
			view.ActiveRules = append(view.ActiveRules, r.TriggerFieldID)
		}
	}

	companions := table.companionsFor(def.ID)

	// Auto-fill runs in table order, so the last active rule writing a field wins.
	for _, r := range active {
		if r.Effect.AutoFill == "" {
			continue
		}
		for _, s := range def.Sections {
			for _, f := range s.Fields {
				if f.Type != models.FieldSelect || !r.covers(s.ID, f.ID) || !f.HasOption(r.Effect.AutoFill) {
					continue
				}
				next[f.ID] = r.Effect.AutoFill
				for _, c := range companions {
					delete(next, c.FieldID(f.ID))
				}
			}
		}
	}

	for _, s := range def.Sections {
		for _, f := range s.Fields {
			st := FieldState{ID: f.ID, Section: s.ID, Required: f.Required}
			for _, r := range active {
				if !r.covers(s.ID, f.ID) {
					continue
				}
				if r.Effect.RelaxRequired {
					st.Required = false
				}
				if r.Effect.Disable {
					st.Disabled = true
				}
			}
			view.Fields = append(view.Fields, st)
		}
	}

	for _, c := range companions {
		for _, s := range def.Sections {
			for _, f := range s.Fields {
				if f.Type != models.FieldSelect || slices.Contains(c.ExemptFieldIDs, f.ID) {
					continue
				}
				id := c.FieldID(f.ID)
				parent, _ := next[f.ID].(string)
				if parent == c.Sentinel && !view.Disabled(f.ID) {
					view.Companions = append(view.Companions, CompanionState{ID: id, ParentID: f.ID, Required: true})
					continue
				}
				delete(next, id)
			}
		}
	}

	return view
}

// Apply records one answer change and recomputes the view.
func Apply(def models.FormDefinition, answers map[string]any, fieldID string, value any, table Table) View {
	next := make(map[string]any, len(answers)+1)
	for k, v := range answers {
		next[k] = v
	}
	next[fieldID] = value
	return ComputeView(def, next, table)
}

// Toggle flips a checkbox answer. Checkboxes take no part in rules beyond
// being relaxed or disabled.
func Toggle(def models.FormDefinition, answers map[string]any, fieldID string, table Table) View {
	on, _ := answers[fieldID].(bool)
	return Apply(def, answers, fieldID, !on, table)
}

// CompletedAtLayout is the minute-precision local time used for completedAt.
const CompletedAtLayout = "2006-01-02T15:04"

// Prefill returns the initial answers for a freshly opened form.
func Prefill(def models.FormDefinition, answers map[string]any, now time.Time, table Table) map[string]any {
	out := make(map[string]any, len(answers)+1)
	for k, v := range answers {
		out[k] = v
	}
	if !slices.Contains(table.PrefillCompletedAt, def.ID) {
		return out
	}
	if s, _ := out["completedAt"].(string); s == "" {
		out["completedAt"] = now.Format(CompletedAtLayout)
	}
	return out
}
