// Package pdf lays out submissions and equipment checks as printable
// documents. Building a Plan is pure; Render turns a Plan into PDF bytes.
package pdf

import (
	"encoding/json"
	"fmt"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/garnizeh/ambucheck/internal/uploads"
	"github.com/garnizeh/ambucheck/pkg/models"
)

// Placeholder printed for empty values.
const Placeholder = "—"

type Kind int

const (
	KindHeading Kind = iota
	KindField
	KindLine
	KindImage
)

// Item is one printable element. For KindImage, Value is the upload
// reference; when it cannot be fetched it is printed like a field.
type Item struct {
	Kind  Kind
	Label string
	Value string
}

type Plan struct {
	Title string
	// Styled plans use the form layout: small grey meta line and boxed values.
	Styled bool
	Meta   []string
	Items  []Item
}

func (p Plan) Fields() []Item {
	var out []Item
	for _, it := range p.Items {
		if it.Kind == KindField || it.Kind == KindImage {
			out = append(out, it)
		}
	}
	return out
}

// SubmissionPlan uses the snapshot layout when snap has a title and at least
// one section, otherwise the flat legacy layout.
func SubmissionPlan(sub models.Submission, snap *models.FormDefinition) Plan {
	if snap != nil && snap.Title != "" && len(snap.Sections) > 0 {
		return snapshotPlan(sub, snap)
	}
	return legacyPlan(sub)
}

func snapshotPlan(sub models.Submission, snap *models.FormDefinition) Plan {
	p := Plan{
		Title:  snap.Title,
		Styled: true,
		Meta: []string{fmt.Sprintf("Submission ID: %d  ·  Submitted: %s  ·  User ID: %s",
			sub.ID, formatTime(sub.CreatedAt), orDash(sub.CreatedBy))},
	}

	for _, s := range snap.Sections {
		title := s.Title
		if title == "" {
			title = "Section"
		}
		p.Items = append(p.Items, Item{Kind: KindHeading, Label: title})

		for _, f := range s.Fields {
			label := f.Label
			if label == "" {
				label = f.ID
			}
			v, _ := sub.Values.Get(f.ID)
			value := FormatValue(v)
			if value == "" {
				value = Placeholder
			}
			kind := KindField
			if uploads.LooksLikeImage(value) {
				kind = KindImage
			}
			p.Items = append(p.Items, Item{Kind: kind, Label: label, Value: value})
		}
	}
	return p
}

func legacyPlan(sub models.Submission) Plan {
	p := Plan{
		Title: "AmbuCheck – Completed Form",
		Meta: []string{
			"Form: " + sub.FormID,
			fmt.Sprintf("Submission ID: %d", sub.ID),
			"Submitted at: " + formatTime(sub.CreatedAt),
			"Submitted by (user id): " + orDash(sub.CreatedBy),
		},
		Items: []Item{{Kind: KindHeading, Label: "Answers"}},
	}
	for _, k := range sub.Values.Keys() {
		v, _ := sub.Values.Get(k)
		p.Items = append(p.Items, Item{Kind: KindLine, Label: k, Value: FormatValue(v)})
	}
	return p
}

// EquipmentPlan prints the vehicle header, every remaining key in stored
// order and then the photos.
func EquipmentPlan(c models.EquipmentCheck) Plan {
	p := Plan{
		Title: "AmbuCheck – VDI Start of Shift",
		Meta: []string{
			fmt.Sprintf("Record ID: %d", c.ID),
			"Vehicle registration: " + dashIfEmpty(c.Data.String("registration")),
			"Vehicle call sign: " + dashIfEmpty(c.Data.String("vehicleCallsign")),
			"Staff name: " + dashIfEmpty(c.Data.String("staffName")),
			"Created at: " + formatTime(c.CreatedAt),
		},
		Items: []Item{{Kind: KindHeading, Label: "Checklist Values"}},
	}

	for _, k := range c.Data.Keys() {
		v, _ := c.Data.Get(k)
		p.Items = append(p.Items, Item{Kind: KindLine, Label: k, Value: rawValue(v)})
	}

	if len(c.Photos) == 0 {
		return p
	}
	p.Items = append(p.Items, Item{Kind: KindHeading, Label: "Photos"})
	for _, k := range photoOrder(c.Photos) {
		value := c.Photos[k]
		if value == "" {
			value = Placeholder
		}
		p.Items = append(p.Items, Item{Kind: KindImage, Label: k + ":", Value: value})
	}
	return p
}

// photoOrder lists the known slots first, then any others by name.
func photoOrder(photos map[string]string) []string {
	var out []string
	known := map[string]bool{}
	for _, slot := range models.PhotoSlots {
		known[slot] = true
		if _, ok := photos[slot]; ok {
			out = append(out, slot)
		}
	}
	var extra []string
	for k := range photos {
		if !known[k] {
			extra = append(extra, k)
		}
	}
	sort.Strings(extra)
	return append(out, extra...)
}

// FormatValue coerces an answer to text: arrays joined by ", ", objects as
// JSON, nil as the empty string.
func FormatValue(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	case bool:
		return strconv.FormatBool(x)
	case float64:
		return strconv.FormatFloat(x, 'f', -1, 64)
	case json.Number:
		return x.String()
	case []any:
		parts := make([]string, len(x))
		for i, e := range x {
			parts[i] = FormatValue(e)
		}
		return strings.Join(parts, ", ")
	case []string:
		return strings.Join(x, ", ")
	case map[string]any, models.Fields:
		b, err := json.Marshal(x)
		if err != nil {
			return fmt.Sprint(x)
		}
		return string(b)
	default:
		return fmt.Sprint(x)
	}
}

// rawValue is the equipment layout coercion: anything structured is JSON.
func rawValue(v any) string {
	switch v.(type) {
	case []any, []string:
		b, err := json.Marshal(v)
		if err != nil {
			return fmt.Sprint(v)
		}
		return string(b)
	}
	return FormatValue(v)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "-"
	}
	return t.UTC().Format("2006-01-02T15:04:05.000Z07:00")
}

func orDash(id int64) string {
	if id == 0 {
		return "-"
	}
	return strconv.FormatInt(id, 10)
}

func dashIfEmpty(s string) string {
	if s == "" {
		return "-"
	}
	return s
}
