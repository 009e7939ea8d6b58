package main

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/dmitrijs2005/diner/internal/buildinfo"
	"github.com/dmitrijs2005/diner/internal/catalog"
	"github.com/dmitrijs2005/diner/internal/cli"
	"github.com/dmitrijs2005/diner/internal/config"
	"github.com/dmitrijs2005/diner/internal/cryptox"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/filex"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/dmitrijs2005/diner/internal/payment"
	"github.com/dmitrijs2005/diner/internal/repositories/orders"
	"github.com/dmitrijs2005/diner/internal/repositories/prefs"
	"github.com/dmitrijs2005/diner/internal/services"
	"github.com/dmitrijs2005/diner/internal/workpool"
)

func main() {

	buildinfo.PrintBuildData(os.Stdout)

	cfg, err := config.LoadConfig(os.Args[1:])
	if err != nil {
		log.Fatalf("%v", err)
	}

	logger := logging.NewTextLogger(os.Stderr, cfg.LogLevel)
	if err := run(context.Background(), cfg, logger); err != nil {
		log.Fatalf("%v", err)
	}
}

func run(ctx context.Context, cfg *config.Config, logger logging.Logger) error {
	dir, err := filex.EnsureDir(cfg.DataDir)
	if err != nil {
		return err
	}
	cfg.DataDir = dir

	m := metrics.NewCollector("diner")
	pool := workpool.New(cfg.IOWorkers)

	prefsDB, err := migrations.Open(ctx, dbx.FileDSN(cfg.PrefsPath()), migrations.Prefs)
	if err != nil {
		return fmt.Errorf("open preferences: %w", err)
	}
	defer prefsDB.Close()

	usersDB, err := openUsers(ctx, cfg.UsersPath(), logger)
	if err != nil {
		return err
	}

	auth := services.NewAuthService(services.AuthDeps{
		UsersDB:      usersDB,
		UsersPath:    cfg.UsersPath(),
		Prefs:        prefs.NewSQLiteRepository(prefsDB),
		Digester:     cryptox.NewArgon2Digester(cryptox.DefaultArgon2Params),
		Pool:         pool,
		Log:          logger,
		Metrics:      m,
		ProbeTimeout: cfg.HealthProbeTimeout,
	})
	defer auth.Close()

	ordersDB, err := openOrders(ctx, cfg.OrdersPath(), logger)
	if err != nil {
		return err
	}
	store := orders.NewStore(ordersDB, logger, m)
	defer store.Close()

	probe := auth.StartHealthProbe(ctx)

	menu, err := catalog.NewStaticSource()
	if err != nil {
		return err
	}

	app := cli.NewApp(cli.AppDeps{
		Auth:    auth,
		Orders:  services.NewOrderService(store, auth, pool, logger, m),
		Catalog: menu,
		Cards:   payment.NewValidator(),
		Metrics: m,
		Log:     logger,
	})
	app.Run(ctx)

	select {
	case <-probe:
	case <-time.After(cfg.HealthProbeTimeout):
	}

	if store.UsingFallback() {
		logger.Warn(ctx, "orders placed in this session were kept in memory only", "disk_file", cfg.OrdersPath())
	}
	return nil
}

// openUsers opens the users database; a file that cannot be opened because
// it is corrupt is deleted and created afresh.
func openUsers(ctx context.Context, path string, logger logging.Logger) (*sql.DB, error) {
	db, err := services.OpenUsersDB(ctx, path)
	if err == nil {
		return db, nil
	}
	if !dbx.IndicatesCorruption(err) {
		return nil, fmt.Errorf("open users: %w", err)
	}

	logger.Warn(ctx, "users database corrupt at startup, recreating", "path", path, "error", err)
	if err := dbx.RemoveDatabaseFiles(path); err != nil {
		return nil, fmt.Errorf("remove users database: %w", err)
	}
	db, err = services.OpenUsersDB(ctx, path)
	if err != nil {
		return nil, fmt.Errorf("recreate users: %w", err)
	}
	return db, nil
}

// openOrders opens the orders database. The disk file is never deleted:
// when it cannot be opened the session runs on an in-memory database.
func openOrders(ctx context.Context, path string, logger logging.Logger) (*sql.DB, error) {
	db, err := migrations.Open(ctx, dbx.FileDSN(path), migrations.Orders)
	if err == nil {
		return db, nil
	}

	logger.Warn(ctx, "orders database unavailable, using memory", "path", path, "error", err)
	db, err = orders.OpenMemory(ctx)
	if err != nil {
		return nil, fmt.Errorf("open orders: %w", err)
	}
	return db, nil
}
