// Package repotest holds behaviour tests every repository.Store backend
// must pass.
package repotest

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Run exercises a fresh store returned by open for each subtest.
func Run(t *testing.T, open func(t *testing.T) repository.Store) {
	t.Run("users", func(t *testing.T) { testUsers(t, open(t)) })
	t.Run("runsheets", func(t *testing.T) { testRunsheets(t, open(t)) })
	t.Run("submissions", func(t *testing.T) { testSubmissions(t, open(t)) })
	t.Run("equipment_checks", func(t *testing.T) { testEquipmentChecks(t, open(t)) })
	t.Run("overrides", func(t *testing.T) { testOverrides(t, open(t)) })
	t.Run("practitioners", func(t *testing.T) { testPractitioners(t, open(t)) })
	t.Run("vehicles", func(t *testing.T) { testVehicles(t, open(t)) })
}

func ptr[T any](v T) *T { return &v }

func testUsers(t *testing.T, s repository.Store) {
	ctx := context.Background()

	users, err := s.ListUsers(ctx)
	require.NoError(t, err)
	assert.Empty(t, users)

	got, err := s.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	assert.Nil(t, got)

	require.NoError(t, s.ReplaceUsers(ctx, []models.User{
		{ID: 1, Username: "admin", PasswordHash: "h1", Role: models.RoleAdmin, Name: "Admin User"},
		{ID: 5, Username: "user1", PasswordHash: "h2", Role: models.RoleUser, Name: "Standard User"},
	}))

	got, err = s.GetUserByUsername(ctx, "user1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, int64(5), got.ID)
	assert.Equal(t, "h2", got.PasswordHash)

	// ids continue after the highest replaced id
	id, err := s.CreateUser(ctx, &models.User{Username: "crew", PasswordHash: "h3", Role: models.RoleUser, Name: "Crew"})
	require.NoError(t, err)
	assert.Equal(t, int64(6), id)

	got, err = s.GetUserByID(ctx, id)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "crew", got.Username)

	users, err = s.ListUsers(ctx)
	require.NoError(t, err)
	require.Len(t, users, 3)
	assert.Equal(t, "admin", users[0].Username)

	got, err = s.GetUserByID(ctx, 999)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testRunsheets(t *testing.T, s repository.Store) {
	ctx := context.Background()

	in := []models.Runsheet{
		{ID: 1, ShiftDate: "06/12/2025", BookOnTime: "17:35", BookOffTime: "02:00", Trust: "SCAS", Callsign: "PA926", ShiftEnded: true},
		{ID: 2, ShiftDate: "05/12/2025", BookOnTime: "20:37", BookOffTime: "07:00", Trust: "EMAS", Callsign: "ELT81"},
	}
	require.NoError(t, s.ReplaceRunsheets(ctx, in))

	out, err := s.ListRunsheets(ctx)
	require.NoError(t, err)
	assert.Equal(t, in, out)

	one, err := s.GetRunsheet(ctx, 2)
	require.NoError(t, err)
	require.NotNil(t, one)
	assert.Equal(t, in[1], *one)

	one, err = s.GetRunsheet(ctx, 3)
	require.NoError(t, err)
	assert.Nil(t, one)
}

func testSubmissions(t *testing.T, s repository.Store) {
	ctx := context.Background()

	values := models.NewFields()
	values.Set("vehicleCallsign", "PA926")
	values.Set("pin", "1234")
	values.Set("bvm", "Yes")
	values.Set("tags", []any{"a", "b"})

	created := time.Date(2026, 2, 1, 7, 30, 0, 0, time.UTC)
	first, err := s.CreateSubmission(ctx, &models.Submission{
		FormID:       "monitorCheck",
		Values:       values,
		FormSnapshot: json.RawMessage(`{"id":"monitorCheck","title":"Monitor","sections":[]}`),
		CreatedAt:    created,
		CreatedBy:    2,
	})
	require.NoError(t, err)
	require.NotZero(t, first.ID)

	second, err := s.CreateSubmission(ctx, &models.Submission{FormID: "monitorCheck", Values: models.NewFields(), CreatedAt: created.Add(time.Minute), CreatedBy: 2})
	require.NoError(t, err)
	assert.Greater(t, second.ID, first.ID)

	_, err = s.CreateSubmission(ctx, &models.Submission{FormID: "system24", Values: models.NewFields(), CreatedAt: created, CreatedBy: 1})
	require.NoError(t, err)

	list, err := s.ListSubmissions(ctx, "monitorCheck")
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, first.ID, list[0].ID)
	assert.Equal(t, []string{"vehicleCallsign", "pin", "bvm", "tags"}, list[0].Values.Keys())
	assert.JSONEq(t, `{"id":"monitorCheck","title":"Monitor","sections":[]}`, string(list[0].FormSnapshot))
	assert.True(t, list[0].CreatedAt.Equal(created))
	assert.Equal(t, int64(2), list[0].CreatedBy)
	assert.False(t, list[1].HasSnapshot())

	got, err := s.GetSubmission(ctx, "monitorCheck", first.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "PA926", got.Values.String("vehicleCallsign"))

	got, err = s.GetSubmission(ctx, "system48", first.ID)
	require.NoError(t, err)
	assert.Nil(t, got)

	empty, err := s.ListSubmissions(ctx, "never")
	require.NoError(t, err)
	assert.NotNil(t, empty)
	assert.Empty(t, empty)
}

func testEquipmentChecks(t *testing.T, s repository.Store) {
	ctx := context.Background()

	data := models.NewFields()
	data.Set("staffName", "Sam")
	data.Set("registration", "AB12 CDE")
	data.Set("pin", "1111")
	data.Set("tyres", "OK")

	created := time.Date(2026, 2, 1, 6, 0, 0, 0, time.UTC)
	c, err := s.CreateEquipmentCheck(ctx, &models.EquipmentCheck{
		Data:      data,
		Photos:    map[string]string{"frontPhoto": "/uploads/frontPhoto-1.jpg"},
		CreatedAt: created,
		CreatedBy: 2,
	})
	require.NoError(t, err)
	require.NotZero(t, c.ID)

	list, err := s.ListEquipmentChecks(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, []string{"staffName", "registration", "pin", "tyres"}, list[0].Data.Keys())
	assert.Equal(t, "/uploads/frontPhoto-1.jpg", list[0].Photos["frontPhoto"])
	assert.True(t, list[0].CreatedAt.Equal(created))

	got, err := s.GetEquipmentCheck(ctx, c.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "AB12 CDE", got.Data.String("registration"))

	ok, err := s.DeleteEquipmentCheck(ctx, c.ID)
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = s.DeleteEquipmentCheck(ctx, c.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	got, err = s.GetEquipmentCheck(ctx, c.ID)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func testOverrides(t *testing.T, s repository.Store) {
	ctx := context.Background()

	raw, err := s.GetOverride(ctx, "system24")
	require.NoError(t, err)
	assert.Nil(t, raw)

	require.NoError(t, s.SetOverride(ctx, "system24", json.RawMessage(`{"title":"One","sections":[]}`)))
	require.NoError(t, s.SetOverride(ctx, "system24", json.RawMessage(`{"title":"Two"}`)))
	require.NoError(t, s.SetOverride(ctx, "monitorCheck", json.RawMessage(`{"title":"M"}`)))

	raw, err = s.GetOverride(ctx, "system24")
	require.NoError(t, err)
	assert.JSONEq(t, `{"title":"Two"}`, string(raw))

	all, err := s.ListOverrides(ctx)
	require.NoError(t, err)
	assert.Len(t, all, 2)
	assert.JSONEq(t, `{"title":"M"}`, string(all["monitorCheck"]))
}

func testPractitioners(t *testing.T, s repository.Store) {
	ctx := context.Background()

	p, err := s.CreatePractitioner(ctx, &models.Practitioner{Name: "Alex", Pin: "1234", Role: "crew", Active: true})
	require.NoError(t, err)
	require.NotZero(t, p.ID)
	_, err = s.CreatePractitioner(ctx, &models.Practitioner{Name: "Bo", Pin: "9", Role: "crew", Active: true})
	require.NoError(t, err)

	upd, err := s.UpdatePractitioner(ctx, p.ID, models.PractitionerPatch{Pin: ptr("4321"), Active: ptr(false)})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, models.Practitioner{ID: p.ID, Name: "Alex", Pin: "4321", Role: "crew", Active: false}, *upd)

	upd, err = s.UpdatePractitioner(ctx, 999, models.PractitionerPatch{Name: ptr("x")})
	require.NoError(t, err)
	assert.Nil(t, upd)

	list, err := s.ListPractitioners(ctx)
	require.NoError(t, err)
	require.Len(t, list, 2)
	assert.Equal(t, "Alex", list[0].Name)

	ok, err := s.DeletePractitioner(ctx, p.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = s.DeletePractitioner(ctx, p.ID)
	require.NoError(t, err)
	assert.False(t, ok)
}

func testVehicles(t *testing.T, s repository.Store) {
	ctx := context.Background()

	v, err := s.CreateVehicle(ctx, &models.Vehicle{Registration: "AB12 CDE", Callsign: "PA926"})
	require.NoError(t, err)
	require.NotZero(t, v.ID)

	upd, err := s.UpdateVehicle(ctx, v.ID, models.VehiclePatch{Description: ptr("Spare")})
	require.NoError(t, err)
	require.NotNil(t, upd)
	assert.Equal(t, models.Vehicle{ID: v.ID, Registration: "AB12 CDE", Callsign: "PA926", Description: "Spare"}, *upd)

	list, err := s.ListVehicles(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)

	upd, err = s.UpdateVehicle(ctx, 999, models.VehiclePatch{})
	require.NoError(t, err)
	assert.Nil(t, upd)

	ok, err := s.DeleteVehicle(ctx, v.ID)
	require.NoError(t, err)
	assert.True(t, ok)
}
