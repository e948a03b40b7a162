package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testSecret = "0123456789abcdef0123456789abcdef"

func TestLoad_EnvDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", testSecret)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Addr)
	assert.Equal(t, "store-rating.db", cfg.DatabasePath)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, 12, cfg.BcryptCost)
	assert.True(t, cfg.CookieSecure)
	assert.Equal(t, 5, cfg.RecentLimit)
	assert.Equal(t, 5, cfg.LoginBurst)
	assert.Empty(t, cfg.Admin.Email)
}

func TestLoad_EnvOverrides(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("JWT_SECRET", testSecret)
	t.Setenv("ADDR", ":9090")
	t.Setenv("BCRYPT_COST", "4")
	t.Setenv("COOKIE_SECURE", "false")
	t.Setenv("TOKEN_TTL", "30m")
	t.Setenv("LOG_LEVEL", "debug")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.Addr)
	assert.Equal(t, 4, cfg.BcryptCost)
	assert.False(t, cfg.CookieSecure)
	assert.Equal(t, 30*time.Minute, cfg.TokenTTL)

	lvl, err := cfg.Level()
	require.NoError(t, err)
	assert.Equal(t, "DEBUG", lvl.String())
}

func TestLoad_YAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
database_path: /var/lib/store-rating/data.db
http_server:
  addr: ":7000"
auth:
  jwt_secret: "` + testSecret + `"
  token_ttl: 2h
admin:
  email: root@example.com
  password: "Sup3rSecret!"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "/var/lib/store-rating/data.db", cfg.DatabasePath)
	assert.Equal(t, ":7000", cfg.Addr)
	assert.Equal(t, 2*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "root@example.com", cfg.Admin.Email)
	assert.Equal(t, 12, cfg.BcryptCost, "defaults still apply")
}

func TestLoad_MissingFile(t *testing.T) {
	t.Setenv("CONFIG_PATH", filepath.Join(t.TempDir(), "absent.yaml"))

	_, err := Load()
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		return Config{
			Auth:     Auth{JWTSecret: testSecret, BcryptCost: 12, TokenTTL: time.Hour, LoginBurst: 5},
			LogLevel: "info",
		}
	}

	cfg := valid()
	assert.NoError(t, cfg.Validate())

	cases := map[string]func(*Config){
		"missing secret": func(c *Config) { c.JWTSecret = "" },
		"short secret":   func(c *Config) { c.JWTSecret = "short" },
		"cost too low":   func(c *Config) { c.BcryptCost = 3 },
		"cost too high":  func(c *Config) { c.BcryptCost = 15 },
		"zero ttl":       func(c *Config) { c.TokenTTL = 0 },
		"zero burst":     func(c *Config) { c.LoginBurst = 0 },
		"admin half set": func(c *Config) { c.Admin.Email = "a@example.com" },
		"bad log level":  func(c *Config) { c.LogLevel = "loud" },
	}
	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := valid()
			mutate(&cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
