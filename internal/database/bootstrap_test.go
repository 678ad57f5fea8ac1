package database_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"github.com/samia-tarot/panel/internal/database"
	testutil "github.com/samia-tarot/panel/internal/database/testutil"
	"github.com/samia-tarot/panel/internal/models"
)

func TestEnsureAdminUserCreatesRoot(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	require.NoError(t, database.EnsureAdminUser(context.Background(), db, database.BootstrapAdmin{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "bootstrap secret",
	}))

	var user models.User
	require.NoError(t, db.Preload("Roles").First(&user, "username = ?", "admin").Error)
	require.True(t, user.IsRoot)
	require.True(t, user.IsActive)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("bootstrap secret")))

	require.Len(t, user.Roles, 1)
	require.Equal(t, "admin", user.Roles[0].ID)
}

func TestEnsureAdminUserLeavesExistingRootAlone(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	require.NoError(t, database.EnsureAdminUser(context.Background(), db, database.BootstrapAdmin{
		Username: "admin",
		Email:    "admin@example.com",
		Password: "original secret",
	}))

	// A second bootstrap with different credentials must be a no-op.
	require.NoError(t, database.EnsureAdminUser(context.Background(), db, database.BootstrapAdmin{
		Username: "other",
		Email:    "other@example.com",
		Password: "different secret",
	}))

	var count int64
	require.NoError(t, db.Model(&models.User{}).Where("is_root = ?", true).Count(&count).Error)
	require.EqualValues(t, 1, count)

	var user models.User
	require.NoError(t, db.First(&user, "is_root = ?", true).Error)
	require.Equal(t, "admin", user.Username)
	require.NoError(t, bcrypt.CompareHashAndPassword([]byte(user.Password), []byte("original secret")))
}

func TestEnsureAdminUserValidatesInput(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())
	require.Error(t, database.EnsureAdminUser(context.Background(), db, database.BootstrapAdmin{}))
}

func TestSeedDataGrantsViewerReadOnly(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithSeedData())

	var viewer models.Role
	require.NoError(t, db.Preload("Permissions").First(&viewer, "id = ?", "viewer").Error)

	ids := make([]string, 0, len(viewer.Permissions))
	for _, perm := range viewer.Permissions {
		ids = append(ids, perm.ID)
	}
	require.ElementsMatch(t, []string{"panel.view", "audit.view"}, ids)
}
