// Package config loads runtime settings for the diner shell.
//
// Sources, later ones overriding earlier ones:
//
//  1. Built-in defaults (see (*Config).LoadDefaults).
//  2. Optional JSON file given with -c or -config.
//  3. Environment variables prefixed with DINER_.
//  4. Command-line flags.
//
// Flags
//
//	-d string     data directory holding the database files
//	-l string     log level: debug, info, warn, error
//	-w int        size of the storage worker pool
//	-t duration   health probe timeout, e.g. 5s
//
// # JSON
//
//	{
//	  "data_dir": "data",
//	  "users_db_file": "users.db",
//	  "orders_db_file": "orders.db",
//	  "prefs_db_file": "prefs.db",
//	  "log_level": "info",
//	  "io_workers": 4,
//	  "health_probe_timeout": "5s"
//	}
package config
