package services

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/cache"
	"github.com/samia-tarot/panel/internal/database"
	apperrors "github.com/samia-tarot/panel/pkg/errors"
	"github.com/samia-tarot/panel/pkg/metrics"
	appvalidator "github.com/samia-tarot/panel/pkg/validator"
)

// Validation run statuses. Anything else is rejected.
const (
	StatusPass = "PASS"
	StatusFail = "FAIL"
	StatusNone = "NONE"
)

// Settings keys backing the summary document. Both rows together form one
// logical document and are always fetched with a single statement.
const (
	lastRunSettingKey = "store_validation.last_run"
	linksSettingKey   = "store_validation.links"
)

const summaryCacheKey = "store_validation:summary"

// LastRun describes the most recent store-validation run.
type LastRun struct {
	Status     string     `json:"status"`
	StartedAt  *time.Time `json:"started_at,omitempty"`
	FinishedAt *time.Time `json:"finished_at,omitempty"`
	Notes      string     `json:"notes,omitempty"`
}

// Links holds the distribution links surfaced alongside the run status.
type Links struct {
	TestFlight   string `json:"testflight,omitempty"`
	PlayInternal string `json:"play_internal,omitempty"`
}

// ValidationSummary is the document returned to the admin panel.
type ValidationSummary struct {
	LastRun LastRun `json:"last_run"`
	Links   Links   `json:"links"`
}

// LastRunInput captures a run submission.
type LastRunInput struct {
	Status     string     `json:"status" validate:"required,oneof=PASS FAIL NONE"`
	StartedAt  *time.Time `json:"started_at"`
	FinishedAt *time.Time `json:"finished_at"`
	Notes      string     `json:"notes" validate:"max=2000"`
}

// LinksInput captures distribution link updates.
type LinksInput struct {
	TestFlight   string `json:"testflight" validate:"omitempty,url,max=2048"`
	PlayInternal string `json:"play_internal" validate:"omitempty,url,max=2048"`
}

// UpdateSummaryInput carries the sections to upsert. Omitted sections keep
// their previously stored value (merge-by-top-level-key).
type UpdateSummaryInput struct {
	LastRun *LastRunInput `json:"last_run" validate:"omitempty"`
	Links   *LinksInput   `json:"links" validate:"omitempty"`
}

// StoreValidationOption customises StoreValidationService behaviour.
type StoreValidationOption func(*StoreValidationService)

// WithSummaryCache enables a short-lived read cache for the rendered summary.
func WithSummaryCache(store cache.Store, ttl time.Duration) StoreValidationOption {
	return func(svc *StoreValidationService) {
		if store != nil && ttl > 0 {
			svc.cache = store
			svc.cacheTTL = ttl
		}
	}
}

// StoreValidationService reads and updates the store-validation summary
// document persisted in the settings store.
type StoreValidationService struct {
	db       *gorm.DB
	audit    *AuditService
	cache    cache.Store
	cacheTTL time.Duration
}

// NewStoreValidationService constructs the service once dependencies are supplied.
func NewStoreValidationService(db *gorm.DB, audit *AuditService, opts ...StoreValidationOption) (*StoreValidationService, error) {
	if db == nil {
		return nil, fmt.Errorf("store validation service: db is required")
	}
	svc := &StoreValidationService{
		db:    db,
		audit: audit,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(svc)
		}
	}
	return svc, nil
}

// GetSummary returns the current summary document, defaulted when no run has
// ever been recorded. Every call is audited and counted.
func (s *StoreValidationService) GetSummary(ctx context.Context) (ValidationSummary, error) {
	ctx = ensureContext(ctx)

	summary, fromCache, err := s.loadSummary(ctx)
	if err != nil {
		recordAudit(s.audit, ctx, buildAuditEntry(ctx, AuditEntry{
			Action:   "store_validation.read",
			Resource: "settings:store_validation",
			Result:   "failure",
			Metadata: map[string]any{"error": err.Error()},
		}))
		if isUnavailableError(err) {
			return ValidationSummary{}, apperrors.NewUnavailable(err)
		}
		return ValidationSummary{}, err
	}

	recordAudit(s.audit, ctx, buildAuditEntry(ctx, AuditEntry{
		Action:   "store_validation.read",
		Resource: "settings:store_validation",
		Result:   "success",
		Metadata: map[string]any{"cached": fromCache},
	}))
	metrics.StoreValidationReads.Inc()

	return summary, nil
}

// UpdateSummary validates and persists the supplied sections, returning the
// resulting document. Rejected payloads leave state, cache, and the update
// counter untouched but still produce an audit record.
func (s *StoreValidationService) UpdateSummary(ctx context.Context, input UpdateSummaryInput) (ValidationSummary, error) {
	ctx = ensureContext(ctx)

	if err := s.validateInput(input); err != nil {
		recordAudit(s.audit, ctx, buildAuditEntry(ctx, AuditEntry{
			Action:   "store_validation.updated",
			Resource: "settings:store_validation",
			Result:   "failure",
			Metadata: map[string]any{"reason": err.Error()},
		}))
		return ValidationSummary{}, apperrors.NewBadRequest(err.Error())
	}

	auditMeta := map[string]any{}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if input.LastRun != nil {
			encoded, err := json.Marshal(LastRun{
				Status:     input.LastRun.Status,
				StartedAt:  input.LastRun.StartedAt,
				FinishedAt: input.LastRun.FinishedAt,
				Notes:      input.LastRun.Notes,
			})
			if err != nil {
				return fmt.Errorf("store validation: encode last_run: %w", err)
			}
			if err := database.UpsertSetting(ctx, tx, lastRunSettingKey, string(encoded)); err != nil {
				return err
			}
			auditMeta["last_run"] = json.RawMessage(encoded)
		}

		if input.Links != nil {
			encoded, err := json.Marshal(Links{
				TestFlight:   input.Links.TestFlight,
				PlayInternal: input.Links.PlayInternal,
			})
			if err != nil {
				return fmt.Errorf("store validation: encode links: %w", err)
			}
			if err := database.UpsertSetting(ctx, tx, linksSettingKey, string(encoded)); err != nil {
				return err
			}
			auditMeta["links"] = json.RawMessage(encoded)
		}

		return nil
	})
	if err != nil {
		recordAudit(s.audit, ctx, buildAuditEntry(ctx, AuditEntry{
			Action:   "store_validation.updated",
			Resource: "settings:store_validation",
			Result:   "failure",
			Metadata: map[string]any{"error": err.Error()},
		}))
		if isUnavailableError(err) {
			return ValidationSummary{}, apperrors.NewUnavailable(err)
		}
		return ValidationSummary{}, err
	}

	s.invalidateCache(ctx)

	recordAudit(s.audit, ctx, buildAuditEntry(ctx, AuditEntry{
		Action:   "store_validation.updated",
		Resource: "settings:store_validation",
		Result:   "success",
		Metadata: auditMeta,
	}))
	metrics.StoreValidationUpdates.Inc()

	summary, _, err := s.loadSummary(ctx)
	if err != nil {
		if isUnavailableError(err) {
			return ValidationSummary{}, apperrors.NewUnavailable(err)
		}
		return ValidationSummary{}, err
	}
	return summary, nil
}

// validateInput applies struct rules plus the cross-field timestamp invariant.
func (s *StoreValidationService) validateInput(input UpdateSummaryInput) error {
	if input.LastRun == nil && input.Links == nil {
		return fmt.Errorf("payload must include last_run or links")
	}

	if err := appvalidator.ValidateStruct(&input); err != nil {
		return err
	}

	if run := input.LastRun; run != nil && run.StartedAt != nil && run.FinishedAt != nil {
		if run.FinishedAt.Before(*run.StartedAt) {
			return fmt.Errorf("finished_at must not precede started_at")
		}
	}

	return nil
}

// loadSummary fetches the document without auditing or counting, trying the
// cache first. Both settings rows are fetched with a single statement; two
// statements would see different snapshots under READ COMMITTED and could
// mix keys from two different writes.
func (s *StoreValidationService) loadSummary(ctx context.Context) (ValidationSummary, bool, error) {
	if s.cache != nil {
		if raw, ok, err := s.cache.Get(ctx, summaryCacheKey); err == nil && ok {
			var cached ValidationSummary
			if err := json.Unmarshal(raw, &cached); err == nil {
				return cached, true, nil
			}
		}
	}

	values, err := database.GetSettings(ctx, s.db, lastRunSettingKey, linksSettingKey)
	if err != nil {
		return ValidationSummary{}, false, err
	}
	rawLastRun := values[lastRunSettingKey]
	rawLinks := values[linksSettingKey]

	summary := ValidationSummary{
		LastRun: LastRun{Status: StatusNone},
	}

	if rawLastRun != "" {
		if err := json.Unmarshal([]byte(rawLastRun), &summary.LastRun); err != nil {
			return ValidationSummary{}, false, fmt.Errorf("store validation: decode last_run: %w", err)
		}
		if summary.LastRun.Status == "" {
			summary.LastRun.Status = StatusNone
		}
	}

	if rawLinks != "" {
		if err := json.Unmarshal([]byte(rawLinks), &summary.Links); err != nil {
			return ValidationSummary{}, false, fmt.Errorf("store validation: decode links: %w", err)
		}
	}

	if s.cache != nil {
		if encoded, err := json.Marshal(summary); err == nil {
			_ = s.cache.Set(ctx, summaryCacheKey, encoded, s.cacheTTL)
		}
	}

	return summary, false, nil
}

func (s *StoreValidationService) invalidateCache(ctx context.Context) {
	if s.cache == nil {
		return
	}
	_ = s.cache.Delete(ctx, summaryCacheKey)
}
