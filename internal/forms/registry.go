// Package forms holds the built-in checklist catalogue and resolves the
// schema in effect for a form id.
package forms

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"sync"

	"github.com/garnizeh/ambucheck/pkg/models"
	"gopkg.in/yaml.v3"
)

//go:embed catalog/*.yaml
var catalogFS embed.FS

// Registry is the read-only set of default form schemas.
type Registry struct {
	order []string
	defs  map[string]models.FormDefinition
}

// LoadRegistry reads every *.yaml document under dir in fsys. Files are
// taken in name order, which is the catalogue order.
func LoadRegistry(fsys fs.FS, dir string) (*Registry, error) {
	entries, err := fs.ReadDir(fsys, dir)
	if err != nil {
		return nil, fmt.Errorf("read catalogue: %w", err)
	}

	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !strings.HasSuffix(strings.ToLower(e.Name()), ".yaml") {
			continue
		}
		names = append(names, e.Name())
	}
	sort.Strings(names)

	r := &Registry{defs: make(map[string]models.FormDefinition, len(names))}
	for _, name := range names {
		b, err := fs.ReadFile(fsys, path.Join(dir, name))
		if err != nil {
			return nil, fmt.Errorf("read %s: %w", name, err)
		}
		var def models.FormDefinition
		if err := yaml.Unmarshal(b, &def); err != nil {
			return nil, fmt.Errorf("decode %s: %w", name, err)
		}
		if def.ID == "" {
			return nil, fmt.Errorf("%s: form without id", name)
		}
		if _, dup := r.defs[def.ID]; dup {
			return nil, fmt.Errorf("%s: duplicate form id %q", name, def.ID)
		}
		r.order = append(r.order, def.ID)
		r.defs[def.ID] = def
	}

	return r, nil
}

var (
	builtinOnce sync.Once
	builtin     *Registry
	builtinErr  error
)

// Builtin returns the catalogue compiled into the binary.
func Builtin() (*Registry, error) {
	builtinOnce.Do(func() {
		builtin, builtinErr = LoadRegistry(catalogFS, "catalog")
	})
	return builtin, builtinErr
}

// Get returns a copy of the default schema for id.
func (r *Registry) Get(id string) (models.FormDefinition, bool) {
	def, ok := r.defs[id]
	if !ok {
		return models.FormDefinition{}, false
	}
	return cloneDefinition(def), true
}

// List returns every default schema in catalogue order.
func (r *Registry) List() []models.FormDefinition {
	out := make([]models.FormDefinition, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, cloneDefinition(r.defs[id]))
	}
	return out
}

func (r *Registry) IDs() []string {
	out := make([]string, len(r.order))
	copy(out, r.order)
	return out
}

func cloneDefinition(d models.FormDefinition) models.FormDefinition {
	out := d
	out.Sections = make([]models.Section, len(d.Sections))
	for i, s := range d.Sections {
		cs := s
		cs.Fields = make([]models.Field, len(s.Fields))
		for j, f := range s.Fields {
			cf := f
			cf.Options = append([]string(nil), f.Options...)
			cs.Fields[j] = cf
		}
		out.Sections[i] = cs
	}
	return out
}
