package handlers

import (
	"context"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/samia-tarot/panel/internal/middleware"
	"github.com/samia-tarot/panel/internal/permissions"
	"github.com/samia-tarot/panel/internal/services"
	apperrors "github.com/samia-tarot/panel/pkg/errors"
	"github.com/samia-tarot/panel/pkg/response"
)

// StoreValidationHandler exposes the admin endpoints for the store-validation
// summary panel.
type StoreValidationHandler struct {
	service *services.StoreValidationService
	checker *permissions.Checker
	audit   *services.AuditService
}

// NewStoreValidationHandler constructs a handler once dependencies are supplied.
func NewStoreValidationHandler(service *services.StoreValidationService, checker *permissions.Checker, audit *services.AuditService) *StoreValidationHandler {
	return &StoreValidationHandler{
		service: service,
		checker: checker,
		audit:   audit,
	}
}

// GET /api/admin/store-validation/summary
func (h *StoreValidationHandler) GetSummary(c *gin.Context) {
	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)
	if allowed, err := h.authorize(ctx, userID, permissions.PanelView); err != nil {
		response.Error(c, err)
		return
	} else if !allowed {
		h.auditDenied(ctx, "store_validation.read")
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	summary, err := h.service.GetSummary(ctx)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, http.StatusOK, summary)
}

// POST /api/admin/store-validation/summary
func (h *StoreValidationHandler) UpdateSummary(c *gin.Context) {
	userID := strings.TrimSpace(c.GetString(middleware.CtxUserIDKey))
	if userID == "" {
		response.Error(c, apperrors.ErrUnauthorized)
		return
	}

	ctx := requestContext(c)
	if allowed, err := h.authorize(ctx, userID, permissions.PanelUpdate); err != nil {
		response.Error(c, err)
		return
	} else if !allowed {
		h.auditDenied(ctx, "store_validation.updated")
		response.Error(c, apperrors.ErrForbidden)
		return
	}

	// The body is only parsed for authorized callers. Schema-level rejections
	// are audited inside the service; an unparseable body never reaches it.
	var payload services.UpdateSummaryInput
	if err := c.ShouldBindJSON(&payload); err != nil {
		response.Error(c, apperrors.NewBadRequest("invalid JSON payload"))
		return
	}

	summary, err := h.service.UpdateSummary(ctx, payload)
	if err != nil {
		response.Error(c, err)
		return
	}

	response.Success(c, http.StatusOK, summary)
}

func (h *StoreValidationHandler) authorize(ctx context.Context, userID, permissionID string) (bool, error) {
	if h.checker == nil {
		return true, nil
	}
	allowed, err := h.checker.Check(ctx, userID, permissionID)
	if err != nil {
		return false, apperrors.Wrap(err, "permission check failed")
	}
	return allowed, nil
}

func (h *StoreValidationHandler) auditDenied(ctx context.Context, action string) {
	if h.audit == nil {
		return
	}
	services.RecordDenied(h.audit, ctx, action, "settings:store_validation")
}
