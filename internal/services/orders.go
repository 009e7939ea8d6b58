package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/diner/internal/broker"
	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/repositories/orders"
	"github.com/dmitrijs2005/diner/internal/workpool"
)

// CurrentUserSource resolves the owner of order operations.
type CurrentUserSource interface {
	GetCurrentUserID(ctx context.Context) int64
}

// SessionSource is an optional extension of CurrentUserSource that lets
// live order lists follow sign-in and sign-out.
type SessionSource interface {
	SubscribeSession() (<-chan struct{}, func())
}

// OrderService defines the cart operations of the current user.
//
// Every call resolves the current user first and touches only that user's
// rows. Failures return -1, false or nil plus a sentinel from package
// common; Upsert alone returns the storage error once the fallback retry
// is exhausted.
type OrderService interface {
	Insert(ctx context.Context, mealID, mealName string, quantity int, timestamp int64, submitted bool) (int64, error)
	Upsert(ctx context.Context, mealID, mealName string, quantity int, timestamp int64) (int64, error)
	UpdateQuantity(ctx context.Context, id int64, quantity int, timestamp int64) (bool, error)
	Delete(ctx context.Context, id int64) (bool, error)
	ClearAll(ctx context.Context) (bool, error)
	GetByMealID(ctx context.Context, mealID string) (*models.Order, error)
	SubmitByIDs(ctx context.Context, ids []int64) (bool, error)
	SubmitAllPending(ctx context.Context) (bool, error)

	// List is a one-shot read; read failures yield an empty list.
	List(ctx context.Context, f models.Filter) []models.Order

	// Watch streams the list selected by f: the current snapshot first and
	// a fresh one after every committed change of the current user's orders
	// or of the current user. The channel is closed when ctx is done.
	Watch(ctx context.Context, f models.Filter) <-chan []models.Order
}

type orderService struct {
	store   *orders.Store
	users   CurrentUserSource
	pool    *workpool.Pool
	changes *broker.Broker[int64]
	now     func() time.Time

	log     logging.Logger
	metrics *metrics.Collector
}

// NewOrderService builds the aggregator over store.
func NewOrderService(store *orders.Store, users CurrentUserSource, pool *workpool.Pool,
	log logging.Logger, m *metrics.Collector) OrderService {
	return &orderService{
		store:   store,
		users:   users,
		pool:    pool,
		changes: broker.New[int64](),
		now:     time.Now,
		log:     log.With("store", metrics.StoreOrders),
		metrics: m,
	}
}

// do resolves the current user and runs fn through the store. Successful
// writes notify the user's live lists.
func (s *orderService) do(ctx context.Context, op string, write, tx bool, fn func(ctx context.Context, uid int64, r orders.Repository) error) (int64, error) {
	// resolved outside the pool: the lookup takes a slot of its own
	uid := s.users.GetCurrentUserID(ctx)

	run := s.store.Do
	if tx {
		run = s.store.DoTx
	}

	err := s.pool.Run(ctx, func(ctx context.Context) error {
		return run(ctx, op, func(ctx context.Context, r orders.Repository) error {
			return fn(ctx, uid, r)
		})
	})
	if err == nil && write {
		s.changes.Publish(uid)
	}
	return uid, err
}

func (s *orderService) Insert(ctx context.Context, mealID, mealName string, quantity int, timestamp int64, submitted bool) (int64, error) {
	if quantity < 1 {
		return -1, common.ErrorInvalidQuantity
	}

	var id int64
	_, err := s.do(ctx, "insert", true, false, func(ctx context.Context, uid int64, r orders.Repository) (err error) {
		id, err = r.Insert(ctx, &models.Order{
			MealID: mealID, MealName: mealName, Quantity: quantity,
			Timestamp: timestamp, Submitted: submitted, UserID: uid,
		})
		return err
	})
	if err != nil {
		return -1, s.reason(ctx, "insert", err)
	}
	return id, nil
}

func (s *orderService) Upsert(ctx context.Context, mealID, mealName string, quantity int, timestamp int64) (int64, error) {
	if quantity < 1 {
		return -1, common.ErrorInvalidQuantity
	}

	var id int64
	uid, err := s.do(ctx, "upsert", true, true, func(ctx context.Context, uid int64, r orders.Repository) error {
		existing, err := r.GetPendingByMealID(ctx, uid, mealID)
		switch {
		case err == nil:
			id = existing.ID
			_, err = r.AddQuantity(ctx, uid, existing.ID, quantity, s.now().UnixMilli())
			return err
		case errors.Is(err, common.ErrorNotFound):
			id, err = r.Insert(ctx, &models.Order{
				MealID: mealID, MealName: mealName, Quantity: quantity, Timestamp: timestamp, UserID: uid,
			})
			return err
		default:
			return err
		}
	})
	if err != nil {
		s.metrics.RecordOperationFailure(metrics.StoreOrders, "upsert")
		s.log.Error(ctx, "upsert failed", "user_id", uid, "meal_id", mealID, "error", err)
		return -1, fmt.Errorf("upsert order: %w", err)
	}
	return id, nil
}

func (s *orderService) UpdateQuantity(ctx context.Context, id int64, quantity int, timestamp int64) (bool, error) {
	if quantity < 1 {
		return false, common.ErrorInvalidQuantity
	}
	return s.affectOne(ctx, "update_quantity", func(ctx context.Context, uid int64, r orders.Repository) (bool, error) {
		return r.UpdateQuantity(ctx, uid, id, quantity, timestamp)
	})
}

func (s *orderService) Delete(ctx context.Context, id int64) (bool, error) {
	return s.affectOne(ctx, "delete", func(ctx context.Context, uid int64, r orders.Repository) (bool, error) {
		return r.DeleteByID(ctx, uid, id)
	})
}

func (s *orderService) ClearAll(ctx context.Context) (bool, error) {
	return s.affectAny(ctx, "clear_all", func(ctx context.Context, uid int64, r orders.Repository) (int64, error) {
		return r.DeleteAll(ctx, uid)
	})
}

func (s *orderService) SubmitByIDs(ctx context.Context, ids []int64) (bool, error) {
	if len(ids) == 0 {
		return true, nil
	}
	return s.affectAny(ctx, "submit_by_ids", func(ctx context.Context, uid int64, r orders.Repository) (int64, error) {
		return r.MarkSubmittedByIDs(ctx, uid, ids)
	})
}

func (s *orderService) SubmitAllPending(ctx context.Context) (bool, error) {
	return s.affectAny(ctx, "submit_all", func(ctx context.Context, uid int64, r orders.Repository) (int64, error) {
		return r.MarkAllSubmitted(ctx, uid)
	})
}

func (s *orderService) GetByMealID(ctx context.Context, mealID string) (*models.Order, error) {
	var o *models.Order
	_, err := s.do(ctx, "get_by_meal", false, false, func(ctx context.Context, uid int64, r orders.Repository) (err error) {
		o, err = r.GetByMealID(ctx, uid, mealID)
		return err
	})
	if err != nil {
		return nil, s.reason(ctx, "get_by_meal", err)
	}
	return o, nil
}

func (s *orderService) List(ctx context.Context, f models.Filter) []models.Order {
	return s.list(ctx, s.users.GetCurrentUserID(ctx), f)
}

func (s *orderService) list(ctx context.Context, uid int64, f models.Filter) []models.Order {
	var out []models.Order
	err := s.pool.Run(ctx, func(ctx context.Context) error {
		return s.store.Do(ctx, "list", func(ctx context.Context, r orders.Repository) (err error) {
			out, err = r.List(ctx, uid, f)
			return err
		})
	})
	if err != nil {
		if ctx.Err() == nil {
			s.log.Error(ctx, "list failed", "user_id", uid, "filter", f.String(), "error", err)
		}
		return []models.Order{}
	}
	return out
}

func (s *orderService) Watch(ctx context.Context, f models.Filter) <-chan []models.Order {
	out := make(chan []models.Order)

	var session <-chan struct{}
	stopSession := func() {}
	if src, ok := s.users.(SessionSource); ok {
		session, stopSession = src.SubscribeSession()
	}

	go func() {
		defer close(out)
		defer stopSession()

		for {
			uid := s.users.GetCurrentUserID(ctx)
			changed, stop := s.changes.Subscribe(uid)
			switched := s.follow(ctx, uid, f, changed, session, out)
			stop()
			if !switched {
				return
			}
		}
	}()
	return out
}

// follow emits lists of uid until ctx ends (false) or the session changes (true).
func (s *orderService) follow(ctx context.Context, uid int64, f models.Filter,
	changed, session <-chan struct{}, out chan<- []models.Order) bool {
	for {
		list := s.list(ctx, uid, f)
		select {
		case out <- list:
		case <-ctx.Done():
			return false
		}

		select {
		case <-ctx.Done():
			return false
		case <-changed:
		case <-session:
			return true
		}
	}
}

func (s *orderService) affectOne(ctx context.Context, op string, fn func(ctx context.Context, uid int64, r orders.Repository) (bool, error)) (bool, error) {
	var ok bool
	_, err := s.do(ctx, op, true, false, func(ctx context.Context, uid int64, r orders.Repository) (err error) {
		ok, err = fn(ctx, uid, r)
		return err
	})
	if err != nil {
		return false, s.reason(ctx, op, err)
	}
	if !ok {
		return false, common.ErrorNotFound
	}
	return true, nil
}

func (s *orderService) affectAny(ctx context.Context, op string, fn func(ctx context.Context, uid int64, r orders.Repository) (int64, error)) (bool, error) {
	_, err := s.do(ctx, op, true, false, func(ctx context.Context, uid int64, r orders.Repository) error {
		_, err := fn(ctx, uid, r)
		return err
	})
	if err != nil {
		return false, s.reason(ctx, op, err)
	}
	return true, nil
}

func (s *orderService) reason(ctx context.Context, op string, err error) error {
	if errors.Is(err, common.ErrorNotFound) {
		return common.ErrorNotFound
	}
	s.metrics.RecordOperationFailure(metrics.StoreOrders, op)
	s.log.Error(ctx, "orders store operation failed", "op", op, "error", err)
	return common.ErrorInternal
}
