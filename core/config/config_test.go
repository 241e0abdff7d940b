package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validEnv(t *testing.T) {
	t.Setenv("TELEGRAM_TOKEN", "123:abc")
	t.Setenv("RAPIDAPI_KEYS", "k1, k2,,")
}

func TestLoadConfig_Defaults(t *testing.T) {
	validEnv(t)

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Same(t, cfg, Global)

	assert.Equal(t, ModePolling, cfg.Telegram.Mode)
	assert.Equal(t, []string{"k1", "k2"}, cfg.RapidAPI.Keys)
	assert.Equal(t, 10*time.Second, cfg.RapidAPI.Timeout)
	assert.Equal(t, 3, cfg.RapidAPI.CityAttempts)
	assert.Equal(t, BackendGorm, cfg.History.Backend)
	assert.Equal(t, BackendMemory, cfg.Session.Backend)
	assert.Equal(t, 20, cfg.WorkerPool.Size)
	assert.Equal(t, 1000, cfg.WorkerPool.QueueSize)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfig_Overrides(t *testing.T) {
	validEnv(t)
	t.Setenv("TELEGRAM_ADMIN_IDS", "42, nope, -100")
	t.Setenv("TELEGRAM_WEBHOOK", "yes")
	t.Setenv("TELEGRAM_WEBHOOK_URL", "https://bot.example.com/webhook/telegram")
	t.Setenv("SESSION_TTL", "45")
	t.Setenv("RAPIDAPI_PHOTO_CACHE_TTL", "5m")
	t.Setenv("HISTORY_BACKEND", "Mongo")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, []int64{42, -100}, cfg.Telegram.AdminIDs)
	assert.Equal(t, ModeWebhook, cfg.Telegram.Mode)
	assert.Equal(t, 45*time.Second, cfg.Session.TTL)
	assert.Equal(t, 5*time.Minute, cfg.RapidAPI.PhotoCacheTTL)
	assert.Equal(t, BackendMongo, cfg.History.Backend)
	assert.NoError(t, cfg.Validate())
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		errHas string
	}{
		{"missing token", func(c *Config) { c.Telegram.Token = "" }, "telegram"},
		{"webhook without url", func(c *Config) {
			c.Telegram.Mode = ModeWebhook
			c.Telegram.WebhookURL = ""
		}, "telegram"},
		{"no rapidapi keys", func(c *Config) { c.RapidAPI.Keys = nil }, "rapidapi"},
		{"unknown history backend", func(c *Config) { c.History.Backend = "redis" }, "history"},
		{"unknown session backend", func(c *Config) { c.Session.Backend = "mongo" }, "session"},
		{"bad gorm driver", func(c *Config) { c.Database.Driver = "mysql" }, "database"},
		{"valkey without address", func(c *Config) {
			c.Session.Backend = BackendValkey
			c.Valkey.Address = ""
		}, "valkey"},
		{"zero workers", func(c *Config) { c.WorkerPool.Size = 0 }, "Size"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			validEnv(t)
			cfg, err := LoadConfig()
			require.NoError(t, err)
			tc.mutate(cfg)

			err = cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.errHas)
		})
	}
}

func TestGetEnvHelpers(t *testing.T) {
	t.Setenv("X_DURATION_BAD", "soon")
	t.Setenv("X_FLOAT", "2.5")
	t.Setenv("X_BOOL", "ON")

	assert.Equal(t, time.Minute, getEnvDuration("X_DURATION_BAD", time.Minute))
	assert.Equal(t, 2.5, getEnvFloat("X_FLOAT", 1))
	assert.True(t, getEnvBool("X_BOOL", false))
	assert.Nil(t, getEnvList("X_UNSET_LIST"))
}

func TestGetAllSettings_HidesSecrets(t *testing.T) {
	validEnv(t)
	_, err := LoadConfig()
	require.NoError(t, err)

	settings := GetAllSettings()
	assert.Equal(t, 2, settings["rapidapi_keys"])
	for _, v := range settings {
		assert.NotEqual(t, "123:abc", v)
	}
}
