package jsonfile_test

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/garnizeh/ambucheck/internal/repository/jsonfile"
	"github.com/garnizeh/ambucheck/internal/repository/repotest"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONFileStore(t *testing.T) {
	repotest.Run(t, func(t *testing.T) repository.Store {
		return jsonfile.New(filepath.Join(t.TempDir(), "data"), nil)
	})
}

func TestSubmissionsFilePerForm(t *testing.T) {
	dir := t.TempDir()
	s := jsonfile.New(dir, nil)
	ctx := context.Background()

	_, err := s.CreateSubmission(ctx, &models.Submission{FormID: "monitorCheck", Values: models.NewFields()})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "form-monitorCheck-submissions.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 1)
	assert.EqualValues(t, 1, rows[0]["id"])
	assert.Equal(t, "monitorCheck", rows[0]["formId"])
	assert.NotContains(t, rows[0], "formSnapshot")
}

func TestEquipmentCheckFileIsFlat(t *testing.T) {
	dir := t.TempDir()
	s := jsonfile.New(dir, nil)

	data := models.NewFields()
	data.Set("registration", "AB12 CDE")
	_, err := s.CreateEquipmentCheck(context.Background(), &models.EquipmentCheck{Data: data, CreatedBy: 3})
	require.NoError(t, err)

	b, err := os.ReadFile(filepath.Join(dir, "equipment-checks.json"))
	require.NoError(t, err)
	var rows []map[string]any
	require.NoError(t, json.Unmarshal(b, &rows))
	require.Len(t, rows, 1)
	assert.Equal(t, "AB12 CDE", rows[0]["registration"])
	assert.Equal(t, map[string]any{}, rows[0]["photos"])
	assert.EqualValues(t, 3, rows[0]["createdBy"])
}

func TestInvalidFormID(t *testing.T) {
	s := jsonfile.New(t.TempDir(), nil)
	_, err := s.ListSubmissions(context.Background(), "../users")
	assert.ErrorIs(t, err, repository.ErrInvalidFormID)
}

func TestCorruptFileIsAnError(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "vehicles.json"), []byte("{not json"), 0o644))

	s := jsonfile.New(dir, nil)
	_, err := s.ListVehicles(context.Background())
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "vehicles.json"))
}

func TestNoTempFilesLeft(t *testing.T) {
	dir := t.TempDir()
	s := jsonfile.New(dir, nil)
	_, err := s.CreateVehicle(context.Background(), &models.Vehicle{Registration: "X"})
	require.NoError(t, err)

	entries, err := os.ReadDir(dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "vehicles.json", entries[0].Name())
}
