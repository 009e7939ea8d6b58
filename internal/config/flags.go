package config

import (
	"flag"
	"fmt"

	"github.com/dmitrijs2005/diner/internal/flagx"
)

func parseFlags(cfg *Config, args []string) error {
	args = flagx.FilterArgs(args, []string{"-d", "-l", "-w", "-t"})

	fs := flag.NewFlagSet("diner", flag.ContinueOnError)

	fs.StringVar(&cfg.DataDir, "d", cfg.DataDir, "data directory")
	fs.StringVar(&cfg.LogLevel, "l", cfg.LogLevel, "log level (debug, info, warn, error)")
	fs.IntVar(&cfg.IOWorkers, "w", cfg.IOWorkers, "storage worker pool size")
	fs.DurationVar(&cfg.HealthProbeTimeout, "t", cfg.HealthProbeTimeout, "health probe timeout")

	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("parse flags: %w", err)
	}
	return nil
}
