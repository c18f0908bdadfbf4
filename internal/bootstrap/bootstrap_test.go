package bootstrap_test

import (
	"context"
	"io"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/garnizeh/ambucheck/internal/bootstrap"
	"github.com/garnizeh/ambucheck/internal/config"
	"github.com/garnizeh/ambucheck/pkg/models"
	"github.com/garnizeh/ambucheck/pkg/repository/mock"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

func TestSelectBackend(t *testing.T) {
	assert.Equal(t, bootstrap.BackendPostgres, bootstrap.SelectBackend(&config.Config{DatabaseURL: "postgres://x"}))
	assert.Equal(t, bootstrap.BackendSQLite, bootstrap.SelectBackend(&config.Config{DatabasePath: "a.db"}))
	assert.Equal(t, bootstrap.BackendJSON, bootstrap.SelectBackend(&config.Config{}))
}

func TestOpenStore_SQLite(t *testing.T) {
	ctx := context.Background()
	cfg := &config.Config{DatabasePath: filepath.Join(t.TempDir(), "ambucheck.db")}

	store, backend, err := bootstrap.OpenStore(ctx, cfg, quiet)
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	assert.Equal(t, bootstrap.BackendSQLite, backend)

	require.NoError(t, bootstrap.Seed(ctx, store, "pw", quiet))
	u, err := store.GetUserByUsername(ctx, "admin")
	require.NoError(t, err)
	require.NotNil(t, u)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte("pw")))
}

func TestOpenStore_JSON(t *testing.T) {
	cfg := &config.Config{DataDir: t.TempDir()}
	store, backend, err := bootstrap.OpenStore(context.Background(), cfg, quiet)
	require.NoError(t, err)
	assert.Equal(t, bootstrap.BackendJSON, backend)
	assert.NoError(t, store.Close())
}

func TestEnsureUsers_SeedsEmptyTable(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()

	require.NoError(t, bootstrap.EnsureUsers(ctx, store, "secret", quiet))
	require.Len(t, store.Users, 2)

	admin := store.Users[0]
	assert.Equal(t, int64(1), admin.ID)
	assert.Equal(t, models.RoleAdmin, admin.Role)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(admin.PasswordHash), []byte("secret")))

	user1 := store.Users[1]
	assert.Equal(t, "user1", user1.Username)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(user1.PasswordHash), []byte("1user")))
}

func TestEnsureUsers_RotatesLegacyAdminAndRestoresUser1(t *testing.T) {
	ctx := context.Background()
	legacy, err := bcrypt.GenerateFromPassword([]byte("admin123"), bcrypt.MinCost)
	require.NoError(t, err)

	store := mock.NewStore()
	store.Users = []models.User{
		{ID: 1, Username: "admin", PasswordHash: string(legacy), Role: models.RoleAdmin, Name: "Admin"},
		{ID: 7, Username: "crew", PasswordHash: "x", Role: models.RoleUser},
	}

	require.NoError(t, bootstrap.EnsureUsers(ctx, store, "newpw", quiet))
	require.Len(t, store.Users, 3)
	assert.NoError(t, bcrypt.CompareHashAndPassword([]byte(store.Users[0].PasswordHash), []byte("newpw")))
	assert.Equal(t, "user1", store.Users[2].Username)
	assert.Equal(t, int64(8), store.Users[2].ID)
}

func TestEnsureUsers_LeavesCustomisedTableAlone(t *testing.T) {
	ctx := context.Background()
	hash, err := bcrypt.GenerateFromPassword([]byte("custom"), bcrypt.MinCost)
	require.NoError(t, err)

	users := []models.User{
		{ID: 1, Username: "admin", PasswordHash: string(hash), Role: models.RoleAdmin},
		{ID: 2, Username: "user1", PasswordHash: "h", Role: models.RoleUser},
	}
	store := mock.NewStore()
	store.Users = append([]models.User(nil), users...)

	require.NoError(t, bootstrap.EnsureUsers(ctx, store, "other", quiet))
	assert.Equal(t, users, store.Users)
}

func TestEnsureRunsheets(t *testing.T) {
	ctx := context.Background()
	store := mock.NewStore()

	require.NoError(t, bootstrap.EnsureRunsheets(ctx, store, quiet))
	sample, err := bootstrap.SampleRunsheets()
	require.NoError(t, err)
	assert.Len(t, store.Runsheets, len(sample))
	assert.NotEmpty(t, sample)

	store.Runsheets = store.Runsheets[:1]
	require.NoError(t, bootstrap.EnsureRunsheets(ctx, store, quiet))
	assert.Len(t, store.Runsheets, 1)
}
