package config

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/dmitrijs2005/diner/internal/flagx"
	"github.com/dmitrijs2005/diner/internal/timex"
)

// JsonConfig is the on-disk layout. Absent fields leave the current value.
type JsonConfig struct {
	DataDir            string          `json:"data_dir"`
	UsersDBFile        string          `json:"users_db_file"`
	OrdersDBFile       string          `json:"orders_db_file"`
	PrefsDBFile        string          `json:"prefs_db_file"`
	LogLevel           string          `json:"log_level"`
	IOWorkers          int             `json:"io_workers"`
	HealthProbeTimeout *timex.Duration `json:"health_probe_timeout"`
}

func parseJson(cfg *Config, args []string) error {
	path := flagx.ConfigFile(args)
	if path == "" {
		return nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config %s: %w", path, err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		return fmt.Errorf("parse config %s: %w", path, err)
	}

	setString(&cfg.DataDir, jc.DataDir)
	setString(&cfg.UsersDBFile, jc.UsersDBFile)
	setString(&cfg.OrdersDBFile, jc.OrdersDBFile)
	setString(&cfg.PrefsDBFile, jc.PrefsDBFile)
	setString(&cfg.LogLevel, jc.LogLevel)
	if jc.IOWorkers > 0 {
		cfg.IOWorkers = jc.IOWorkers
	}
	if jc.HealthProbeTimeout != nil {
		cfg.HealthProbeTimeout = jc.HealthProbeTimeout.Duration
	}
	return nil
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
