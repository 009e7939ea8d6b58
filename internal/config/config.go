package config

import (
	"time"

	"github.com/dmitrijs2005/diner/internal/filex"
)

// Config holds runtime settings. File names are resolved against DataDir
// unless they are absolute.
type Config struct {
	DataDir            string        `env:"DATA_DIR"`
	UsersDBFile        string        `env:"USERS_DB_FILE"`
	OrdersDBFile       string        `env:"ORDERS_DB_FILE"`
	PrefsDBFile        string        `env:"PREFS_DB_FILE"`
	LogLevel           string        `env:"LOG_LEVEL"`
	IOWorkers          int           `env:"IO_WORKERS"`
	HealthProbeTimeout time.Duration `env:"HEALTH_PROBE_TIMEOUT"`
}

func (c *Config) LoadDefaults() {
	c.DataDir = "data"
	c.UsersDBFile = "users.db"
	c.OrdersDBFile = "orders.db"
	c.PrefsDBFile = "prefs.db"
	c.LogLevel = "info"
	c.IOWorkers = 4
	c.HealthProbeTimeout = 5 * time.Second
}

// LoadConfig applies defaults, the JSON file, the environment and finally
// the flags found in args (usually os.Args[1:]).
func LoadConfig(args []string) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()
	if err := parseJson(cfg, args); err != nil {
		return nil, err
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) UsersPath() string  { return filex.Resolve(c.DataDir, c.UsersDBFile) }
func (c *Config) OrdersPath() string { return filex.Resolve(c.DataDir, c.OrdersDBFile) }
func (c *Config) PrefsPath() string  { return filex.Resolve(c.DataDir, c.PrefsDBFile) }
