package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/tutor-schedule-api/internal/models"
	appErrors "github.com/noah-isme/tutor-schedule-api/pkg/errors"
)

const (
	profileKeyPrefix  = "person"
	defaultProfileTTL = 5 * time.Minute
)

// CacheRepository abstracts persistence for cached payloads.
type CacheRepository interface {
	Get(ctx context.Context, key string, dest interface{}) error
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	DeleteByPattern(ctx context.Context, pattern string) error
}

// ProfileCache holds reconciled person identities under the table and the key
// they were resolved from, so a teacher looked up by row id and by account id
// occupies two entries carrying the same canonical identity. Schedules and
// rosters are never cached. A nil or disabled cache is a permanent miss.
type ProfileCache struct {
	repo    CacheRepository
	metrics *MetricsService
	ttl     time.Duration
	logger  *zap.Logger
	enabled bool
}

// NewProfileCache constructs the profile cache. A non-positive ttl uses five
// minutes.
func NewProfileCache(repo CacheRepository, metrics *MetricsService, ttl time.Duration, logger *zap.Logger, enabled bool) *ProfileCache {
	if ttl <= 0 {
		ttl = defaultProfileTTL
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ProfileCache{repo: repo, metrics: metrics, ttl: ttl, logger: logger, enabled: enabled}
}

// Enabled indicates whether caching is active.
func (c *ProfileCache) Enabled() bool {
	return c != nil && c.enabled && c.repo != nil
}

// Lookup returns the cached identity for key. Backend failures are logged and
// read as a miss so the caller falls through to the store.
func (c *ProfileCache) Lookup(ctx context.Context, table models.PersonTable, key string) (models.PersonIdentity, bool) {
	var identity models.PersonIdentity
	if !c.Enabled() {
		return identity, false
	}
	start := time.Now()
	err := c.repo.Get(ctx, profileKey(table, key), &identity)
	c.metrics.RecordCacheOperation(err == nil, time.Since(start))
	if err != nil {
		if !errors.Is(err, appErrors.ErrCacheMiss) {
			c.logger.Warn("profile cache read failed", zap.String("table", string(table)), zap.String("key", key), zap.Error(err))
		}
		return models.PersonIdentity{}, false
	}
	return identity, true
}

// Remember stores an identity resolved from a profile row. Placeholders for
// unmatched keys must not be passed in.
func (c *ProfileCache) Remember(ctx context.Context, table models.PersonTable, key string, identity models.PersonIdentity) error {
	if !c.Enabled() {
		return nil
	}
	start := time.Now()
	err := c.repo.Set(ctx, profileKey(table, key), identity, c.ttl)
	c.metrics.ObserveCacheWrite(time.Since(start))
	if err != nil {
		c.logger.Warn("profile cache write failed", zap.String("table", string(table)), zap.String("key", key), zap.Error(err))
	}
	return err
}

// Flush drops cached profiles of one table, or of every table when table is
// empty.
func (c *ProfileCache) Flush(ctx context.Context, table models.PersonTable) error {
	if !c.Enabled() {
		return nil
	}
	pattern := profileKeyPrefix + ":*"
	if table != "" {
		pattern = fmt.Sprintf("%s:%s:*", profileKeyPrefix, table)
	}
	if err := c.repo.DeleteByPattern(ctx, pattern); err != nil {
		c.logger.Warn("profile cache flush failed", zap.String("pattern", pattern), zap.Error(err))
		return appErrors.WrapAs(err, appErrors.ErrUpstreamUnavailable)
	}
	return nil
}

func profileKey(table models.PersonTable, key string) string {
	return fmt.Sprintf("%s:%s:%s", profileKeyPrefix, table, key)
}
