package services

import (
	"context"

	"go.uber.org/zap"

	"github.com/samia-tarot/panel/internal/auditctx"
	"github.com/samia-tarot/panel/pkg/logger"
)

// recordAudit logs the supplied entry. A failure to persist the audit record
// must never fail the primary operation, so it degrades to a logged warning.
func recordAudit(audit *AuditService, ctx context.Context, entry AuditEntry) {
	if audit == nil {
		return
	}
	if err := audit.Log(ctx, entry); err != nil {
		logger.WithModule("audit").Warn("audit entry dropped",
			zap.String("action", entry.Action),
			zap.Error(err),
		)
	}
}

// RecordDenied writes a "denied" audit record for an action that was rejected
// before it reached a service, typically a permission failure at the handler.
func RecordDenied(audit *AuditService, ctx context.Context, action, resource string) {
	recordAudit(audit, ctx, buildAuditEntry(ctx, AuditEntry{
		Action:   action,
		Resource: resource,
		Result:   "denied",
	}))
}

// buildAuditEntry merges actor metadata from the request context into the entry.
func buildAuditEntry(ctx context.Context, entry AuditEntry) AuditEntry {
	actor, ok := auditctx.FromContext(ctx)
	if !ok {
		return entry
	}

	if entry.UserID == nil && actor.UserID != "" {
		id := actor.UserID
		entry.UserID = &id
	}
	if entry.Username == "" {
		entry.Username = actor.Username
	}
	if entry.IPAddress == "" {
		entry.IPAddress = actor.IPAddress
	}
	if entry.UserAgent == "" {
		entry.UserAgent = actor.UserAgent
	}
	return entry
}
