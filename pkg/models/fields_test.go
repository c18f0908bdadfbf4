package models_test

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFields_KeepsOrder(t *testing.T) {
	var f models.Fields
	require.NoError(t, json.Unmarshal([]byte(`{"zeta":"1","alpha":2,"mid":{"x":true}}`), &f))
	assert.Equal(t, []string{"zeta", "alpha", "mid"}, f.Keys())

	f.Set("alpha", 3)
	f.Set("new", nil)
	f.Delete("zeta")
	f.Delete("missing")

	b, err := json.Marshal(f)
	require.NoError(t, err)
	assert.Equal(t, `{"alpha":3,"mid":{"x":true},"new":null}`, string(b))
	assert.Equal(t, 3, f.Len())
}

func TestFields_RejectsNonObjects(t *testing.T) {
	for _, raw := range []string{`[]`, `"x"`, `null`, `12`} {
		var f models.Fields
		assert.ErrorIs(t, json.Unmarshal([]byte(raw), &f), models.ErrNotObject, raw)
	}
	var f models.Fields
	assert.Error(t, json.Unmarshal([]byte(`{"a":`), &f))
}

func TestFields_CloneIsIndependent(t *testing.T) {
	f := models.FieldsFromMap(map[string]any{"b": "2", "a": "1"}, "a", "b")
	c := f.Clone()
	c.Set("a", "changed")
	c.Delete("b")

	assert.Equal(t, "1", f.String("a"))
	assert.True(t, f.Has("b"))
	assert.Equal(t, []string{"a", "b"}, f.Keys())
}

func TestEquipmentCheck_FlatJSON(t *testing.T) {
	raw := `{"id":4,"registration":"AB12 CDE","photos":{"frontPhoto":"/uploads/f.jpg"},"staffName":"Jo","createdAt":"2026-01-28T10:00:00Z","createdBy":2}`

	var c models.EquipmentCheck
	require.NoError(t, json.Unmarshal([]byte(raw), &c))
	assert.Equal(t, int64(4), c.ID)
	assert.Equal(t, int64(2), c.CreatedBy)
	assert.Equal(t, time.Date(2026, 1, 28, 10, 0, 0, 0, time.UTC), c.CreatedAt)
	assert.Equal(t, map[string]string{"frontPhoto": "/uploads/f.jpg"}, c.Photos)
	assert.Equal(t, []string{"registration", "staffName"}, c.Data.Keys())

	b, err := json.Marshal(c)
	require.NoError(t, err)
	assert.Equal(t,
		`{"id":4,"registration":"AB12 CDE","staffName":"Jo","photos":{"frontPhoto":"/uploads/f.jpg"},"createdAt":"2026-01-28T10:00:00Z","createdBy":2}`,
		string(b))

	// Payload drops the server-owned keys and keeps photos.
	p := c.Payload()
	assert.Equal(t, []string{"registration", "staffName", "photos"}, p.Keys())
}

func TestRunsheet_ShiftTime(t *testing.T) {
	assert.Equal(t, time.Date(2025, 12, 6, 0, 0, 0, 0, time.UTC), models.Runsheet{ShiftDate: "06/12/2025"}.ShiftTime())
	assert.True(t, models.Runsheet{ShiftDate: "2025-12-06"}.ShiftTime().IsZero())
}

func TestUser_Public(t *testing.T) {
	u := models.User{ID: 1, Username: "admin", PasswordHash: "hash", Role: models.RoleAdmin}
	b, err := json.Marshal(u.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(b), "password")
	assert.True(t, u.IsAdmin())
}
