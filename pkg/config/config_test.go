package config

import (
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
)

func TestFromViperDefaults(t *testing.T) {
	v := viper.New()
	setDefaults(v)

	cfg := fromViper(v)

	assert.Equal(t, EnvDevelopment, cfg.Env)
	assert.Equal(t, 8080, cfg.Port)
	assert.False(t, cfg.ProfileCache.Enabled)
	assert.Equal(t, 5*time.Minute, cfg.ProfileCache.TTL)
	assert.Equal(t, "en", cfg.Schedule.Locale)
	assert.Equal(t, 3, cfg.Schedule.ConflictPreviewLimit)
	assert.Equal(t, []string{"ACTIVE"}, cfg.Enrollment.ActiveStatuses)
	assert.Nil(t, cfg.CORS.AllowedOrigins)
}

func TestFromViperOverrides(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.Set("PROFILE_CACHE_TTL", "not-a-duration")
	v.Set("SCHEDULE_LOCALE", " ID ")
	v.Set("CONFLICT_PREVIEW_LIMIT", 0)
	v.Set("ENROLLMENT_ACTIVE_STATUSES", "active, trial ,")
	v.Set("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg := fromViper(v)

	assert.Equal(t, 5*time.Minute, cfg.ProfileCache.TTL)
	assert.Equal(t, "id", cfg.Schedule.Locale)
	assert.Equal(t, 3, cfg.Schedule.ConflictPreviewLimit)
	assert.Equal(t, []string{"ACTIVE", "TRIAL"}, cfg.Enrollment.ActiveStatuses)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORS.AllowedOrigins)
}
