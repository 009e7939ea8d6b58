package orders

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"

	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/google/uuid"
)

// ErrFallbackUnavailable is returned when the in-memory store could not be opened.
var ErrFallbackUnavailable = errors.New("orders fallback store unavailable")

// OpenFunc opens and migrates a database.
type OpenFunc func(ctx context.Context) (*sql.DB, error)

type handle struct {
	db       *sql.DB
	fallback bool
}

// Store routes order operations to the disk database and, after a corruption
// error, to an in-memory fallback for the rest of the process lifetime.
type Store struct {
	active atomic.Pointer[handle]
	disk   *sql.DB

	mu           sync.Mutex // guards the switch to the fallback
	openFallback OpenFunc

	log     logging.Logger
	metrics *metrics.Collector
}

// NewStore wraps an opened and migrated disk database.
func NewStore(disk *sql.DB, log logging.Logger, m *metrics.Collector) *Store {
	s := &Store{
		disk:         disk,
		openFallback: OpenMemory,
		log:          log.With("store", metrics.StoreOrders),
		metrics:      m,
	}
	s.active.Store(&handle{db: disk})
	return s
}

// OpenMemory opens a fresh, uniquely named in-memory database with the orders schema.
func OpenMemory(ctx context.Context) (*sql.DB, error) {
	return migrations.Open(ctx, dbx.MemoryDSN("orders-fallback-"+uuid.NewString()), migrations.Orders)
}

// UsingFallback reports whether operations are served from memory.
func (s *Store) UsingFallback() bool {
	return s.active.Load().fallback
}

// Do runs fn against the active repository. A corruption error from the disk
// database switches the store to the fallback and runs fn once more there.
func (s *Store) Do(ctx context.Context, op string, fn func(ctx context.Context, r Repository) error) error {
	return s.run(ctx, op, func(ctx context.Context, db *sql.DB) error {
		return fn(ctx, NewSQLiteRepository(db))
	})
}

// DoTx is Do with fn running inside a single transaction.
func (s *Store) DoTx(ctx context.Context, op string, fn func(ctx context.Context, r Repository) error) error {
	return s.run(ctx, op, func(ctx context.Context, db *sql.DB) error {
		return dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
			return fn(ctx, NewSQLiteRepository(tx))
		})
	})
}

func (s *Store) run(ctx context.Context, op string, fn func(ctx context.Context, db *sql.DB) error) error {
	h := s.active.Load()
	err := fn(ctx, h.db)
	if err == nil || h.fallback || !dbx.IndicatesCorruption(err) {
		return err
	}

	s.log.Warn(ctx, "disk store unusable, switching to memory", "op", op, "error", err)

	fh, ferr := s.failover(ctx)
	if ferr != nil {
		s.log.Error(ctx, "failover failed", "op", op, "error", ferr)
		return errors.Join(err, ferr)
	}

	if err := fn(ctx, fh.db); err != nil {
		return fmt.Errorf("%s on fallback: %w", op, err)
	}
	return nil
}

func (s *Store) failover(ctx context.Context) (*handle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if h := s.active.Load(); h.fallback {
		return h, nil
	}

	db, err := s.openFallback(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrFallbackUnavailable, err)
	}

	h := &handle{db: db, fallback: true}
	s.active.Store(h)
	s.metrics.RecordFailover(metrics.StoreOrders)
	s.log.Warn(ctx, "orders now served from memory; disk file kept for recovery")
	return h, nil
}

// Close closes the fallback, if any, and the disk database.
func (s *Store) Close() error {
	var errs []error
	if h := s.active.Load(); h.fallback {
		errs = append(errs, h.db.Close())
	}
	errs = append(errs, s.disk.Close())
	return errors.Join(errs...)
}
