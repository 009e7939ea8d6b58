package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func defaults() *Config {
	c := &Config{}
	c.LoadDefaults()
	return c
}

func writeTempJSON(t *testing.T, data map[string]any) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "cfg.json")
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	c := defaults()
	assert.Equal(t, "data", c.DataDir)
	assert.Equal(t, 4, c.IOWorkers)
	assert.Equal(t, 5*time.Second, c.HealthProbeTimeout)
	assert.Equal(t, filepath.Join("data", "users.db"), c.UsersPath())
	assert.Equal(t, filepath.Join("data", "orders.db"), c.OrdersPath())
	assert.Equal(t, filepath.Join("data", "prefs.db"), c.PrefsPath())
}

func TestLoadConfig_NoSources(t *testing.T) {
	cfg, err := LoadConfig(nil)
	require.NoError(t, err)
	assert.Empty(t, cmp.Diff(defaults(), cfg))
}

func TestParseJson(t *testing.T) {
	path := writeTempJSON(t, map[string]any{
		"data_dir":             "/var/lib/diner",
		"orders_db_file":       "cart.db",
		"io_workers":           8,
		"health_probe_timeout": "2s",
	})

	cfg := defaults()
	require.NoError(t, parseJson(cfg, []string{"-c", path}))

	want := defaults()
	want.DataDir = "/var/lib/diner"
	want.OrdersDBFile = "cart.db"
	want.IOWorkers = 8
	want.HealthProbeTimeout = 2 * time.Second
	assert.Empty(t, cmp.Diff(want, cfg))
}

func TestParseJson_Errors(t *testing.T) {
	cfg := defaults()
	require.Error(t, parseJson(cfg, []string{"-config", filepath.Join(t.TempDir(), "missing.json")}))

	bad := filepath.Join(t.TempDir(), "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{ not json`), 0o600))
	require.Error(t, parseJson(cfg, []string{"-config", bad}))
}

func TestParseEnv(t *testing.T) {
	t.Setenv("DINER_LOG_LEVEL", "debug")
	t.Setenv("DINER_IO_WORKERS", "2")
	t.Setenv("DINER_HEALTH_PROBE_TIMEOUT", "750ms")

	cfg := defaults()
	require.NoError(t, parseEnv(cfg))

	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, 2, cfg.IOWorkers)
	assert.Equal(t, 750*time.Millisecond, cfg.HealthProbeTimeout)
	assert.Equal(t, "data", cfg.DataDir, "unset variables keep their value")
}

func TestParseEnv_Invalid(t *testing.T) {
	t.Setenv("DINER_IO_WORKERS", "many")
	require.Error(t, parseEnv(defaults()))
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		want    func(c *Config)
		wantErr bool
	}{
		{
			name: "all flags",
			args: []string{"-d", "/tmp/d", "-l", "warn", "-w", "6", "-t", "3s"},
			want: func(c *Config) {
				c.DataDir, c.LogLevel, c.IOWorkers, c.HealthProbeTimeout = "/tmp/d", "warn", 6, 3*time.Second
			},
		},
		{
			name: "foreign flags ignored",
			args: []string{"-c", "x.json", "-w", "1", "-zzz"},
			want: func(c *Config) { c.IOWorkers = 1 },
		},
		{name: "bad int", args: []string{"-w", "abc"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := defaults()
			err := parseFlags(cfg, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			want := defaults()
			tt.want(want)
			assert.Empty(t, cmp.Diff(want, cfg))
		})
	}
}

func TestLoadConfig_Precedence(t *testing.T) {
	path := writeTempJSON(t, map[string]any{"log_level": "error", "io_workers": 9, "data_dir": "from-json"})
	t.Setenv("DINER_LOG_LEVEL", "warn")

	cfg, err := LoadConfig([]string{"-c", path, "-w", "3"})
	require.NoError(t, err)

	assert.Equal(t, "from-json", cfg.DataDir)
	assert.Equal(t, "warn", cfg.LogLevel, "env beats json")
	assert.Equal(t, 3, cfg.IOWorkers, "flags beat json")
}
