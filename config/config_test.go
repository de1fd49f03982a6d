package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setBaseEnv(t *testing.T) {
	t.Helper()
	t.Setenv("SESSION_COOKIE_NAME", "turva_session")
	t.Setenv("SESSION_COOKIE_LIFETIME", "3600")
	t.Setenv("FRONTEND_BASE_URL", "https://app.turva.org")
	t.Setenv("DB_HOST", "localhost")
	t.Setenv("DB_USER", "turva")
	t.Setenv("DB_DATABASE", "turva")
}

func TestLoadDefaults(t *testing.T) {
	setBaseEnv(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 5432, cfg.DB.Port)
	assert.Equal(t, "public", cfg.DB.Schema)
	assert.Equal(t, time.Hour, cfg.App.SessionLifetime())
	assert.Equal(t, ":8080", cfg.App.HTTPAddr)
	assert.Equal(t, StoreDriverPostgres, cfg.App.StoreDriver)
	assert.Equal(t, MailDriverLog, cfg.Mail.Driver)
	assert.True(t, cfg.App.CookieSecure)
	assert.False(t, cfg.Queue.Enabled())
	assert.Equal(t, []string{"https://app.turva.org", "http://localhost:5173", "https://localhost/", "http://localhost/"}, cfg.App.CORSOrigins)
}

func TestLoadMissingRequired(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_COOKIE_NAME", "")
	require.NoError(t, os.Unsetenv("SESSION_COOKIE_NAME"))

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadMalformedInteger(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("SESSION_COOKIE_LIFETIME", "an hour")

	_, err := Load()
	assert.Error(t, err)
}

func TestLoadReadsEnvFile(t *testing.T) {
	setBaseEnv(t)
	t.Setenv("API_PATH", "")
	require.NoError(t, os.Unsetenv("API_PATH"))

	file := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(file, []byte("API_PATH=/api\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("API_PATH") })

	cfg, err := Load(file, filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "/api", cfg.App.APIPath)
}

func TestValidate(t *testing.T) {
	valid := Config{
		DB:   Database{Host: "db", User: "u", Database: "d"},
		App:  Application{SessionCookieLifetime: 60, FrontendBaseURL: "https://app.turva.org", StoreDriver: StoreDriverPostgres},
		Mail: Mail{Driver: MailDriverLog},
		Log:  Logging{Level: "info", Format: "json"},
	}
	require.NoError(t, valid.Validate())

	cases := map[string]func(*Config){
		"zero lifetime":       func(c *Config) { c.App.SessionCookieLifetime = 0 },
		"relative frontend":   func(c *Config) { c.App.FrontendBaseURL = "/verify" },
		"unknown store":       func(c *Config) { c.App.StoreDriver = "redis" },
		"postgres without db": func(c *Config) { c.DB.Host = "" },
		"smtp without host":   func(c *Config) { c.Mail.Driver = MailDriverSMTP },
		"resend without key":  func(c *Config) { c.Mail.Driver = MailDriverResend; c.Mail.FromAddress = "a@b.c" },
		"bad log level":       func(c *Config) { c.Log.Level = "loud" },
		"bad log format":      func(c *Config) { c.Log.Format = "xml" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}

	memory := valid
	memory.App.StoreDriver = StoreDriverMemory
	memory.DB = Database{}
	assert.NoError(t, memory.Validate())
}

func TestDSN(t *testing.T) {
	db := Database{Host: "localhost", Port: 5432, User: "turva", Password: "p@ss word", Database: "turva", Schema: "app", SSLMode: "disable"}
	assert.Equal(t,
		"host=localhost port=5432 user=turva dbname=turva sslmode=disable search_path=app password='p@ss word'",
		db.DSN())
}

func TestMailFrom(t *testing.T) {
	assert.Equal(t, "Turva <noreply@turva.org>", Mail{FromName: "Turva", FromAddress: "noreply@turva.org"}.From())
	assert.Equal(t, "noreply@turva.org", Mail{FromAddress: "noreply@turva.org"}.From())
}
