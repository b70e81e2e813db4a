package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var managedKeys = []string{
	"APP_PORT", "APP_ENV", "LOG_LEVEL", "FARM_ID", "TIMEZONE", "STORAGE_DRIVER", "SQLITE_PATH",
	"MONGODB_URI", "MONGODB_DB_NAME", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN",
	"WHATSAPP_BASE_URL", "WHATSAPP_API_VERSION", "WHATSAPP_GROUP_ID", "WHATSAPP_MANAGER_ID",
	"GOOGLE_SHEETS_CREDENTIALS_PATH", "GOOGLE_SHEET_DATABASE_ID", "REPORT_CRON_SCHEDULE", "ANTHROPIC_API_KEY",
}

// clearEnv blanks every key the loader reads so the host environment
// cannot leak into a test.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range managedKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, DriverSQLite, cfg.Storage.Driver)
	assert.Equal(t, "mongodb://localhost:27017", cfg.MongoDB.URI)
	assert.Equal(t, "0 6 * * *", cfg.Reporting.CronSchedule)
	assert.False(t, cfg.IsDevelopment())
	assert.False(t, cfg.WhatsAppEnabled())
	assert.False(t, cfg.SheetsEnabled())

	loc, err := cfg.Location()
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}

func TestLoadFromFile(t *testing.T) {
	clearEnv(t)
	for _, k := range []string{"APP_ENV", "STORAGE_DRIVER", "WHATSAPP_TOKEN", "WHATSAPP_PHONE_NUMBER_ID", "META_VERIFY_TOKEN", "WHATSAPP_GROUP_ID"} {
		require.NoError(t, os.Unsetenv(k))
	}

	path := filepath.Join(t.TempDir(), ".env")
	content := "APP_ENV=development\nSTORAGE_DRIVER=memory\nWHATSAPP_TOKEN=tok\nWHATSAPP_PHONE_NUMBER_ID=123\nMETA_VERIFY_TOKEN=verify\nWHATSAPP_GROUP_ID=group\n"
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.IsDevelopment())
	assert.Equal(t, DriverMemory, cfg.Storage.Driver)
	assert.True(t, cfg.WhatsAppEnabled())
	assert.Equal(t, "group", cfg.Recipient())
}

func TestValidate(t *testing.T) {
	clearEnv(t)

	tests := []struct {
		name   string
		mutate func(*Config)
	}{
		{"unknown driver", func(c *Config) { c.Storage.Driver = "postgres" }},
		{"sqlite without path", func(c *Config) { c.Storage.SQLitePath = "" }},
		{"mongo without db", func(c *Config) { c.Storage.Driver = DriverMongoDB; c.MongoDB.DBName = "" }},
		{"bad timezone", func(c *Config) { c.Farm.Timezone = "Mars/Olympus" }},
		{"bad cron", func(c *Config) { c.Reporting.CronSchedule = "every day" }},
		{"half whatsapp", func(c *Config) { c.WhatsApp.AccessToken = "tok" }},
		{"half sheets", func(c *Config) { c.Sheets.SpreadsheetID = "sheet" }},
		{"no port", func(c *Config) { c.Server.Port = "" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := FromEnv()
			require.NoError(t, cfg.Validate())
			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	var nilCfg *Config
	assert.Error(t, nilCfg.Validate())
}
