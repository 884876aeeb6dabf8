package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/LENAX/buildsys/pkg/core/resolver"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(NewViper(), "")
	require.NoError(t, err)

	assert.Equal(t, "info", cfg.General.LogLevel)
	assert.Equal(t, SourceFile, cfg.Source.Type)
	assert.Equal(t, "tasks.yaml", cfg.Source.TasksFile)
	assert.Equal(t, "builds.yaml", cfg.Source.BuildsFile)
	assert.Equal(t, resolver.CycleCheckPath, cfg.CycleCheckMode())
	assert.Equal(t, "0.0.0.0:8080", cfg.Server.Address())
	assert.Equal(t, 15*time.Second, cfg.Server.ReadTimeout)
}

func TestLoad_FileAndEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "buildsys.yaml")
	content := `general:
  log_level: debug
source:
  type: database
  database:
    type: sqlite
    dsn: defs.db
resolver:
  cycle_check: legacy
server:
  port: 9090
  read_timeout: 3s
  reload_schedule: "*/5 * * * *"
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	t.Setenv("BUILDSYS_SERVER_PORT", "9191")

	cfg, err := Load(NewViper(), path)
	require.NoError(t, err)

	assert.Equal(t, "debug", cfg.General.LogLevel)
	assert.Equal(t, SourceDatabase, cfg.Source.Type)
	assert.Equal(t, "defs.db", cfg.Source.Database.DSN)
	assert.Equal(t, 10, cfg.Source.Database.MaxOpenConns)
	assert.Equal(t, resolver.CycleCheckLegacy, cfg.CycleCheckMode())
	assert.Equal(t, 9191, cfg.Server.Port, "环境变量优先于配置文件")
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "*/5 * * * *", cfg.Server.ReloadSchedule)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(NewViper(), filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(c *Config)
	}{
		{"log level", func(c *Config) { c.General.LogLevel = "loud" }},
		{"log format", func(c *Config) { c.General.LogFormat = "xml" }},
		{"source type", func(c *Config) { c.Source.Type = "http" }},
		{"database without dsn", func(c *Config) { c.Source.Type = SourceDatabase }},
		{"database type", func(c *Config) {
			c.Source.Type = SourceDatabase
			c.Source.Database.Type = "oracle"
			c.Source.Database.DSN = "x"
		}},
		{"cycle check", func(c *Config) { c.Resolver.CycleCheck = "strict" }},
		{"port", func(c *Config) { c.Server.Port = 70000 }},
		{"schedule", func(c *Config) { c.Server.ReloadSchedule = "every minute" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{}
			cfg.ApplyDefaults()
			require.NoError(t, cfg.Validate())

			tt.mutate(cfg)
			assert.Error(t, cfg.Validate())
		})
	}
}
