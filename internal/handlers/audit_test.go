package handlers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	testutil "github.com/samia-tarot/panel/internal/database/testutil"
	"github.com/samia-tarot/panel/internal/models"
	"github.com/samia-tarot/panel/internal/services"
)

func TestAuditHandler_ListAndExport(t *testing.T) {
	gin.SetMode(gin.TestMode)

	db := testutil.MustOpenTestDB(t, testutil.WithAutoMigrate())

	svc, err := services.NewAuditService(db)
	require.NoError(t, err)

	require.NoError(t, svc.Log(context.Background(), services.AuditEntry{
		Action: "store_validation.read", Resource: "settings:store_validation", Result: "success",
	}))
	require.NoError(t, svc.Log(context.Background(), services.AuditEntry{
		Action: "store_validation.updated", Resource: "settings:store_validation", Result: "failure",
	}))

	handler := NewAuditHandler(svc)
	router := gin.New()
	router.GET("/api/audit", handler.List)
	router.GET("/api/audit/export", handler.Export)

	rec := httptest.NewRecorder()
	req, _ := http.NewRequest(http.MethodGet, "/api/audit?page=1&per_page=10", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var envelope apiEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.True(t, envelope.Success)

	var logs []models.AuditLog
	require.NoError(t, json.Unmarshal(envelope.Data, &logs))
	require.Len(t, logs, 2)

	rec = httptest.NewRecorder()
	req, _ = http.NewRequest(http.MethodGet, "/api/audit/export?result=failure", nil)
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &envelope))
	require.NoError(t, json.Unmarshal(envelope.Data, &logs))
	require.Len(t, logs, 1)
	require.Equal(t, "store_validation.updated", logs[0].Action)
}
