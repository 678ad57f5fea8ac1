package permissions_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	testutil "github.com/samia-tarot/panel/internal/database/testutil"
	"github.com/samia-tarot/panel/internal/models"
	"github.com/samia-tarot/panel/internal/permissions"
)

func openCheckerDB(t *testing.T) *gorm.DB {
	t.Helper()

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())
	require.NoError(t, permissions.Sync(context.Background(), db))
	return db
}

func seedCheckerUser(t *testing.T, db *gorm.DB, id string, root bool, permIDs ...string) {
	t.Helper()

	user := &models.User{
		BaseModel: models.BaseModel{ID: id},
		Username:  id,
		Email:     id + "@example.com",
		Password:  "password",
		IsActive:  true,
		IsRoot:    root,
	}
	require.NoError(t, db.Create(user).Error)

	if len(permIDs) == 0 {
		return
	}

	role := &models.Role{
		BaseModel: models.BaseModel{ID: "role-" + id},
		Name:      "Role " + id,
	}
	require.NoError(t, db.Create(role).Error)

	perms := make([]models.Permission, 0, len(permIDs))
	for _, pid := range permIDs {
		perms = append(perms, models.Permission{BaseModel: models.BaseModel{ID: pid}})
	}
	require.NoError(t, db.Model(role).Association("Permissions").Replace(perms))
	require.NoError(t, db.Model(user).Association("Roles").Append(role))
}

func TestCheckerRootBypass(t *testing.T) {
	db := openCheckerDB(t)
	seedCheckerUser(t, db, "root-user", true)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	allowed, err := checker.Check(context.Background(), "root-user", permissions.PanelUpdate)
	require.NoError(t, err)
	require.True(t, allowed)
}

func TestCheckerGrantedAndDenied(t *testing.T) {
	db := openCheckerDB(t)
	seedCheckerUser(t, db, "viewer-user", false, permissions.PanelView)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	allowed, err := checker.Check(context.Background(), "viewer-user", permissions.PanelView)
	require.NoError(t, err)
	require.True(t, allowed)

	allowed, err = checker.Check(context.Background(), "viewer-user", permissions.PanelUpdate)
	require.NoError(t, err)
	require.False(t, allowed)
}

func TestCheckerExpandsImpliedPermissions(t *testing.T) {
	db := openCheckerDB(t)
	seedCheckerUser(t, db, "editor-user", false, permissions.PanelUpdate)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	// panel.update implies panel.view.
	allowed, err := checker.Check(context.Background(), "editor-user", permissions.PanelView)
	require.NoError(t, err)
	require.True(t, allowed)

	perms, err := checker.GetUserPermissions(context.Background(), "editor-user")
	require.NoError(t, err)
	require.Contains(t, perms, permissions.PanelView)
	require.Contains(t, perms, permissions.PanelUpdate)
}

func TestCheckerUnknownPermission(t *testing.T) {
	db := openCheckerDB(t)
	seedCheckerUser(t, db, "plain-user", false)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), "plain-user", "panel.nonexistent")
	require.ErrorIs(t, err, permissions.ErrUnknownPermission)
}

func TestCheckerUnknownUser(t *testing.T) {
	db := openCheckerDB(t)

	checker, err := permissions.NewChecker(db)
	require.NoError(t, err)

	_, err = checker.Check(context.Background(), "ghost", permissions.PanelView)
	require.Error(t, err)
}
