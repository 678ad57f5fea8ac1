package maintenance

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/robfig/cron/v3"
	"go.uber.org/multierr"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/samia-tarot/panel/internal/models"
	"github.com/samia-tarot/panel/pkg/logger"
)

const (
	defaultAuditRetentionDays = 90
	defaultCacheSpec          = "@hourly"
	defaultAuditSpec          = "@daily"
)

// Cleaner coordinates background maintenance tasks: purging expired cache
// entries and pruning audit logs past their retention window.
type Cleaner struct {
	db        *gorm.DB
	cron      *cron.Cron
	now       func() time.Time
	log       *zap.Logger
	retention int

	cacheSchedule string
	auditSchedule string
}

// Option customises the Cleaner.
type Option func(*Cleaner)

// WithCron injects a preconfigured cron instance, primarily for testing.
func WithCron(c *cron.Cron) Option {
	return func(cleaner *Cleaner) {
		if c != nil {
			cleaner.cron = c
		}
	}
}

// WithNow overrides the clock used for cleanup comparisons.
func WithNow(now func() time.Time) Option {
	return func(cleaner *Cleaner) {
		if now != nil {
			cleaner.now = now
		}
	}
}

// WithAuditRetentionDays adjusts how long audit logs are retained before cleanup.
func WithAuditRetentionDays(days int) Option {
	return func(cleaner *Cleaner) {
		if days > 0 {
			cleaner.retention = days
		}
	}
}

// WithCacheSchedule overrides the cron specification for cache cleanup.
func WithCacheSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.cacheSchedule = spec
		}
	}
}

// WithAuditSchedule overrides the cron specification for audit log cleanup.
func WithAuditSchedule(spec string) Option {
	return func(cleaner *Cleaner) {
		if spec != "" {
			cleaner.auditSchedule = spec
		}
	}
}

// NewCleaner builds a Cleaner with default schedules applied.
func NewCleaner(db *gorm.DB, opts ...Option) *Cleaner {
	cleaner := &Cleaner{
		db:            db,
		cron:          cron.New(),
		now:           time.Now,
		log:           logger.WithModule("maintenance"),
		retention:     defaultAuditRetentionDays,
		cacheSchedule: defaultCacheSpec,
		auditSchedule: defaultAuditSpec,
	}

	for _, opt := range opts {
		opt(cleaner)
	}

	return cleaner
}

// Start registers the cron jobs and begins running them in the background.
func (c *Cleaner) Start() error {
	if c.db == nil {
		return errors.New("maintenance: db is required")
	}

	if _, err := c.cron.AddFunc(c.cacheSchedule, func() {
		if err := c.pruneCacheEntries(context.Background()); err != nil {
			c.log.Warn("cache cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule cache cleanup: %w", err)
	}

	if _, err := c.cron.AddFunc(c.auditSchedule, func() {
		if err := c.pruneAuditLogs(context.Background()); err != nil {
			c.log.Warn("audit cleanup failed", zap.Error(err))
		}
	}); err != nil {
		return fmt.Errorf("maintenance: schedule audit cleanup: %w", err)
	}

	c.cron.Start()
	return nil
}

// Stop halts the scheduler and returns a context that completes once
// in-flight jobs have finished.
func (c *Cleaner) Stop() context.Context {
	return c.cron.Stop()
}

// RunOnce executes every maintenance task immediately, collecting errors.
func (c *Cleaner) RunOnce(ctx context.Context) error {
	return multierr.Combine(
		c.pruneCacheEntries(ctx),
		c.pruneAuditLogs(ctx),
	)
}

func (c *Cleaner) pruneCacheEntries(ctx context.Context) error {
	result := c.db.WithContext(ctx).
		Where("expires_at <= ?", c.now()).
		Delete(&models.CacheEntry{})
	if result.Error != nil {
		return fmt.Errorf("maintenance: prune cache entries: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		c.log.Debug("expired cache entries removed", zap.Int64("count", result.RowsAffected))
	}
	return nil
}

func (c *Cleaner) pruneAuditLogs(ctx context.Context) error {
	cutoff := c.now().AddDate(0, 0, -c.retention)

	result := c.db.WithContext(ctx).
		Where("created_at < ?", cutoff).
		Delete(&models.AuditLog{})
	if result.Error != nil {
		return fmt.Errorf("maintenance: prune audit logs: %w", result.Error)
	}

	if result.RowsAffected > 0 {
		c.log.Info("stale audit logs removed",
			zap.Int64("count", result.RowsAffected),
			zap.Time("cutoff", cutoff),
		)
	}
	return nil
}
