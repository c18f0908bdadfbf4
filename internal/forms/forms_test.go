package forms_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/garnizeh/ambucheck/internal/forms"
	"github.com/garnizeh/ambucheck/pkg/repository"
	"github.com/garnizeh/ambucheck/pkg/repository/mock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuiltinCatalogue(t *testing.T) {
	reg, err := forms.Builtin()
	require.NoError(t, err)

	assert.Equal(t, []string{
		"ambulanceChecklist", "monitorCheck", "vehicleIr1", "shiftEndVdi", "blsBagUpdated",
		"aedChecklist", "emtMeds", "paramedicMeds", "apMeds", "system24", "system48",
	}, reg.IDs())

	def, ok := reg.Get("system48")
	require.True(t, ok)
	assert.Equal(t, "system48-details", def.Sections[0].ID)
	f, ok := def.Field("tamperSealTagged")
	require.True(t, ok)
	assert.Equal(t, []string{"Yes", "No"}, f.Options)

	_, ok = reg.Get("nope")
	assert.False(t, ok)
}

func TestRegistryGetReturnsCopy(t *testing.T) {
	reg, err := forms.Builtin()
	require.NoError(t, err)

	def, _ := reg.Get("system48")
	def.Sections[0].Fields[0].Label = "changed"
	def.Sections = nil

	again, _ := reg.Get("system48")
	assert.NotEqual(t, "changed", again.Sections[0].Fields[0].Label)
}

func TestLoadRegistry_Errors(t *testing.T) {
	tests := []struct {
		name string
		fs   fstest.MapFS
	}{
		{"no id", fstest.MapFS{"c/a.yaml": {Data: []byte("title: x\n")}}},
		{"duplicate", fstest.MapFS{
			"c/a.yaml": {Data: []byte("id: x\n")},
			"c/b.yaml": {Data: []byte("id: x\n")},
		}},
		{"bad yaml", fstest.MapFS{"c/a.yaml": {Data: []byte("id: [\n")}}},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			_, err := forms.LoadRegistry(tc.fs, "c")
			assert.Error(t, err)
		})
	}
}

func newResolver(t *testing.T) (*forms.Resolver, *mock.Store) {
	t.Helper()
	reg, err := forms.Builtin()
	require.NoError(t, err)
	store := mock.NewStore()
	return forms.NewResolver(reg, store, nil), store
}

func TestResolver_Effective(t *testing.T) {
	ctx := context.Background()
	r, store := newResolver(t)

	res, err := r.Effective(ctx, "monitorCheck")
	require.NoError(t, err)
	assert.Equal(t, forms.SourceDefault, res.Source)
	assert.Equal(t, "monitorCheck", res.Definition.ID)

	store.Overrides["monitorCheck"] = json.RawMessage(`{"id":"monitorCheck","title":"Custom","sections":[]}`)
	res, err = r.Effective(ctx, "monitorCheck")
	require.NoError(t, err)
	assert.Equal(t, forms.SourceOverride, res.Source)
	assert.Equal(t, "Custom", res.Definition.Title)
	assert.JSONEq(t, `{"id":"monitorCheck","title":"Custom","sections":[]}`, string(res.Raw))

	// overrides may introduce forms the catalogue does not have
	store.Overrides["brandNew"] = json.RawMessage(`{"title":"New"}`)
	res, err = r.Effective(ctx, "brandNew")
	require.NoError(t, err)
	assert.Equal(t, "brandNew", res.Definition.ID)

	_, err = r.Effective(ctx, "missing")
	assert.ErrorIs(t, err, forms.ErrNotFound)
}

func TestResolver_EffectiveStoreError(t *testing.T) {
	r, store := newResolver(t)
	store.Err = errors.New("disk on fire")

	_, err := r.Effective(context.Background(), "monitorCheck")
	assert.Error(t, err)
	assert.NotErrorIs(t, err, forms.ErrNotFound)
}

func TestResolver_SetOverride(t *testing.T) {
	ctx := context.Background()
	r, store := newResolver(t)

	warnings, err := r.SetOverride(ctx, "system24", json.RawMessage(`{"id":"system24","title":"T","sections":[{"id":"s","title":"S","fields":[{"id":"a","label":"A","type":"text"}]}]}`))
	require.NoError(t, err)
	assert.Empty(t, warnings)
	assert.Contains(t, store.Overrides, "system24")

	// last write wins, no merge
	warnings, err = r.SetOverride(ctx, "system24", json.RawMessage(`{"title": 5}`))
	require.NoError(t, err)
	assert.NotEmpty(t, warnings)
	assert.JSONEq(t, `{"title":5}`, string(store.Overrides["system24"]))

	res, err := r.Effective(ctx, "system24")
	require.NoError(t, err)
	assert.Equal(t, forms.SourceOverride, res.Source)
	assert.Empty(t, res.Definition.Sections)
}

func TestResolver_SetOverrideRejects(t *testing.T) {
	ctx := context.Background()
	r, _ := newResolver(t)

	for _, raw := range []string{`[]`, `"x"`, `null`, `42`, `{`} {
		_, err := r.SetOverride(ctx, "system24", json.RawMessage(raw))
		assert.ErrorIs(t, err, forms.ErrInvalidConfig, raw)
	}

	_, err := r.SetOverride(ctx, "../etc", json.RawMessage(`{}`))
	assert.ErrorIs(t, err, repository.ErrInvalidFormID)
}

func TestLinter(t *testing.T) {
	l := forms.NewLinter()
	ctx := context.Background()

	warnings := l.Lint(ctx, "x", []byte(`{"title":"T","sections":[{"id":"s","title":"S","fields":[
		{"id":"a","label":"A","type":"select"},
		{"id":"a","label":"A2","type":"text"},
		{"id":"b","label":"B","type":"slider"}
	]}]}`))
	assert.GreaterOrEqual(t, len(warnings), 3)
	assert.Contains(t, warnings, `field id "a" appears more than once`)
	assert.Contains(t, warnings, `field "a" is a select without options`)
}
