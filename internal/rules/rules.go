// Package rules computes the effective state of a checklist: which fields
// are required, which are locked, which companion fields are shown, and
// which answers are filled in automatically.
//
// Behaviour is driven by a Table of trigger rules so that a new form only
// needs new rows.
package rules

import "slices"

type ScopeKind int

const (
	// AllSections covers every section of the form.
	AllSections ScopeKind = iota
	// OnlySections covers the listed sections.
	OnlySections
	// AllSectionsExcept covers every section but the listed ones.
	AllSectionsExcept
)

// Scope selects the sections a rule applies to.
type Scope struct {
	Kind     ScopeKind
	Sections []string
}

func Everywhere() Scope                 { return Scope{Kind: AllSections} }
func InSections(ids ...string) Scope     { return Scope{Kind: OnlySections, Sections: ids} }
func ExceptSections(ids ...string) Scope { return Scope{Kind: AllSectionsExcept, Sections: ids} }

func (s Scope) Contains(sectionID string) bool {
	switch s.Kind {
	case OnlySections:
		return slices.Contains(s.Sections, sectionID)
	case AllSectionsExcept:
		return !slices.Contains(s.Sections, sectionID)
	default:
		return true
	}
}

// Effect is what an active rule does to the fields it covers.
type Effect struct {
	// AutoFill, when set, is written into every covered select that lists it
	// as an option.
	AutoFill      string
	RelaxRequired bool
	Disable       bool
}

// Rule is active while the trigger field's answer equals TriggerValue.
type Rule struct {
	FormID         string
	TriggerFieldID string
	TriggerValue   string
	Scope          Scope
	ExemptFieldIDs []string
	Effect         Effect
}

func (r Rule) covers(sectionID, fieldID string) bool {
	if fieldID == r.TriggerFieldID || slices.Contains(r.ExemptFieldIDs, fieldID) {
		return false
	}
	return r.Scope.Contains(sectionID)
}

// Companion adds a numeric field "<select id><Suffix>" next to each select of
// a form. It is shown and required while the select's answer is Sentinel and
// the select is editable.
type Companion struct {
	FormID         string
	Suffix         string
	Sentinel       string
	ExemptFieldIDs []string
}

func (c Companion) FieldID(parentID string) string { return parentID + c.Suffix }

// Table is the full rule set.
type Table struct {
	Rules      []Rule
	Companions []Companion
	// PrefillCompletedAt lists forms whose completedAt answer starts as the
	// current time.
	PrefillCompletedAt []string
}

func (t Table) rulesFor(formID string) []Rule {
	var out []Rule
	for _, r := range t.Rules {
		if r.FormID == formID {
			out = append(out, r)
		}
	}
	return out
}

func (t Table) companionsFor(formID string) []Companion {
	var out []Companion
	for _, c := range t.Companions {
		if c.FormID == formID {
			out = append(out, c)
		}
	}
	return out
}

var (
	alsMeta    = []string{"practitionerName", "pin", "bagNumber", "completedAt", "email"}
	apMedsMeta = []string{"pin", "controlledPouchNumber", "completedAt", "email"}
	blsMeta    = []string{"practitionerName", "practitionerPin", "bagNumber", "sealNumber", "nameLocation", "oxygenCdLevel"}
	lockAll    = func(fill string) Effect { return Effect{AutoFill: fill, RelaxRequired: true, Disable: true} }
)

// DefaultTable reproduces the tamper-seal behaviour of the built-in forms.
func DefaultTable() Table {
	return Table{
		Rules: []Rule{
			{
				FormID: "system48", TriggerFieldID: "tamperSealTagged", TriggerValue: "Yes",
				Scope: Everywhere(), ExemptFieldIDs: alsMeta, Effect: lockAll("Yes"),
			},
			{
				FormID: "apMeds", TriggerFieldID: "controlledTamperTagged", TriggerValue: "Yes",
				Scope: InSections("apMeds-controlled"), ExemptFieldIDs: apMedsMeta, Effect: lockAll("Yes"),
			},
			{
				FormID: "apMeds", TriggerFieldID: "apBagTamperTagged", TriggerValue: "Yes",
				Scope: InSections("apMeds-other"), ExemptFieldIDs: apMedsMeta, Effect: lockAll("Yes"),
			},
			{
				FormID: "paramedicMeds", TriggerFieldID: "medsBagTamperTagged", TriggerValue: "Yes",
				Scope: InSections("paramedicMeds-items"), Effect: lockAll("Yes"),
			},
			{
				FormID: "paramedicMeds", TriggerFieldID: "medsBagTamperTagged", TriggerValue: "Yes",
				Scope:          InSections("paramedicMeds-details"),
				ExemptFieldIDs: []string{"pin", "controlledPouchNumber", "completedAt", "email"},
				Effect:         Effect{RelaxRequired: true},
			},
			{
				FormID: "blsBagUpdated", TriggerFieldID: "blsTamperTagged", TriggerValue: "Yes",
				Scope: ExceptSections("bls-comments"), ExemptFieldIDs: blsMeta, Effect: lockAll("Yes"),
			},
			{
				FormID: "emtMeds", TriggerFieldID: "emtPouchSealed", TriggerValue: "Yes",
				Scope: InSections("emtMeds-items"), Effect: lockAll("Present"),
			},
			{
				FormID: "emtMeds", TriggerFieldID: "emtPouchSealed", TriggerValue: "Yes",
				Scope:          InSections("emtMeds-details"),
				ExemptFieldIDs: []string{"practitionerName", "practitionerPin", "pouchNumber", "emtSealNumber"},
				Effect:         Effect{RelaxRequired: true},
			},
		},
		Companions: []Companion{
			{FormID: "system48", Suffix: "_quantity", Sentinel: "No", ExemptFieldIDs: []string{"tamperSealTagged"}},
		},
		PrefillCompletedAt: []string{"system48", "apMeds", "paramedicMeds"},
	}
}
