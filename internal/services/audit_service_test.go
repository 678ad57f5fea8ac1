package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	testutil "github.com/samia-tarot/panel/internal/database/testutil"
)

func TestAuditService_LogAndList(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	userID := "user-1"
	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		UserID:   &userID,
		Username: "admin",
		Action:   "store_validation.updated",
		Resource: "settings:store_validation",
		Result:   "success",
		Metadata: map[string]any{"links": map[string]string{"testflight": "https://example.com"}},
	}))
	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Username: "viewer",
		Action:   "store_validation.read",
		Resource: "settings:store_validation",
		Result:   "success",
	}))

	logs, total, err := svc.List(context.Background(), AuditListOptions{Page: 1, PageSize: 10})
	require.NoError(t, err)
	require.EqualValues(t, 2, total)
	require.Len(t, logs, 2)

	filtered, total, err := svc.List(context.Background(), AuditListOptions{
		Filters: AuditFilters{Action: "store_validation.updated"},
	})
	require.NoError(t, err)
	require.EqualValues(t, 1, total)
	require.Len(t, filtered, 1)
	require.Equal(t, "admin", filtered[0].Username)
	require.NotNil(t, filtered[0].UserID)
	require.Equal(t, userID, *filtered[0].UserID)
	require.NotEmpty(t, filtered[0].Metadata)
}

func TestAuditService_LogRequiresActionAndResult(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.Error(t, svc.Log(context.Background(), AuditEntry{Result: "success"}))
	require.Error(t, svc.Log(context.Background(), AuditEntry{Action: "store_validation.read"}))
}

func TestAuditService_ExportHonoursTimeFilters(t *testing.T) {
	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Log(context.Background(), AuditEntry{
		Action: "auth.login", Resource: "auth:local", Result: "success",
	}))

	future := time.Now().Add(time.Hour)
	logs, err := svc.Export(context.Background(), AuditFilters{Since: &future})
	require.NoError(t, err)
	require.Empty(t, logs)

	past := time.Now().Add(-time.Hour)
	logs, err = svc.Export(context.Background(), AuditFilters{Since: &past})
	require.NoError(t, err)
	require.Len(t, logs, 1)
}
