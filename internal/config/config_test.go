package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yiyi75/careerquest/internal/theme"
)

func TestLoad_AppliesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "careerquest.yml")
	content := `
version: "1"
timezone: America/New_York
leveling:
  xp_per_level: 300
storage:
  redis:
    enabled: true
    addr: redis.internal:6379
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, 300, cfg.Leveling.XPPerLevel)
	assert.Equal(t, 100, cfg.Leveling.BaseTaskXP)
	assert.Equal(t, 25, cfg.Leveling.MinTaskXP)
	assert.Equal(t, "data", cfg.Storage.DataDir)
	assert.True(t, cfg.Storage.Redis.Enabled)
	assert.Equal(t, "redis.internal:6379", cfg.Storage.Redis.Addr)

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "America/New_York", loc.String())
}

func TestLocation_RejectsBogusZone(t *testing.T) {
	cfg := Default()
	cfg.Timezone = "Mars/Olympus_Mons"
	_, err := cfg.Location()
	assert.Error(t, err)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("CAREERQUEST_ADDR", ":9999")
	t.Setenv("CAREERQUEST_XP_PER_LEVEL", "500")
	t.Setenv("CAREERQUEST_REDIS_ENABLED", "yes")
	t.Setenv("CAREERQUEST_REDIS_ADDR", "override:6379")

	cfg := FromEnv(Default())
	assert.Equal(t, ":9999", cfg.Server.Addr)
	assert.Equal(t, 500, cfg.Leveling.XPPerLevel)
	assert.True(t, cfg.Storage.Redis.Enabled)
	assert.Equal(t, "override:6379", cfg.Storage.Redis.Addr)
}

func TestThemeCatalog_FallsBackToBuiltin(t *testing.T) {
	cfg := Default()
	assert.Equal(t, theme.Catalog(), cfg.ThemeCatalog())
}

func TestThemeCatalog_DropsInvalidMetrics(t *testing.T) {
	cfg := Default()
	cfg.Themes = []Theme{
		{Name: "ok", DisplayName: "OK", Condition: &ThemeCondition{Metric: "level", Threshold: 2}},
		{Name: "bad", Condition: &ThemeCondition{Metric: "charisma", Threshold: 9}},
		{Name: "open"},
	}

	got := cfg.ThemeCatalog()
	require.Len(t, got, 2)
	assert.Equal(t, "ok", got[0].Name)
	assert.Equal(t, theme.MetricLevel, got[0].Condition.Metric)
	assert.Equal(t, "open", got[1].Name)
	assert.Equal(t, "open", got[1].DisplayName)
	assert.Nil(t, got[1].Condition)
}
