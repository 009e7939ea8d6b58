package viewstate

import (
	"context"
	"time"

	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/services"
)

// OrderViewModel exposes the live order lists, the last error and an event
// per successful add-to-cart carrying the order id.
type OrderViewModel struct {
	orders services.OrderService
	now    func() time.Time

	All       *State[[]models.Order]
	Pending   *State[[]models.Order]
	Submitted *State[[]models.Order]
	Error     *State[string]
	Placed    *Events[int64]
}

func NewOrderViewModel(orders services.OrderService) *OrderViewModel {
	return &OrderViewModel{
		orders:    orders,
		now:       time.Now,
		All:       NewState([]models.Order{}),
		Pending:   NewState([]models.Order{}),
		Submitted: NewState([]models.Order{}),
		Error:     NewState(""),
		Placed:    NewEvents[int64](),
	}
}

// Start keeps the three lists current until ctx is done.
func (vm *OrderViewModel) Start(ctx context.Context) {
	for f, st := range map[models.Filter]*State[[]models.Order]{
		models.FilterAll:       vm.All,
		models.FilterPending:   vm.Pending,
		models.FilterSubmitted: vm.Submitted,
	} {
		ch := vm.orders.Watch(ctx, f)
		st := st
		go func() {
			for list := range ch {
				st.Set(list)
			}
		}()
	}
}

// PlaceOrder always adds a new order line.
func (vm *OrderViewModel) PlaceOrder(ctx context.Context, mealID, mealName string, quantity int) {
	if _, err := vm.orders.Insert(ctx, mealID, mealName, quantity, vm.now().UnixMilli(), false); err != nil {
		vm.Error.Set(orDefault(err, "Failed to place order"))
	}
}

// AddOrUpdateOrder adds to the cart, merging with a pending line of the same meal.
func (vm *OrderViewModel) AddOrUpdateOrder(ctx context.Context, mealID, mealName string, quantity int) {
	id, err := vm.orders.Upsert(ctx, mealID, mealName, quantity, vm.now().UnixMilli())
	if err != nil || id < 0 {
		vm.Error.Set(orDefault(err, "Failed to add/update order"))
		return
	}
	vm.Placed.Emit(id)
}

func (vm *OrderViewModel) UpdateQuantity(ctx context.Context, id int64, quantity int) {
	if ok, err := vm.orders.UpdateQuantity(ctx, id, quantity, vm.now().UnixMilli()); !ok {
		vm.Error.Set(orDefault(err, "Failed to update quantity"))
	}
}

func (vm *OrderViewModel) SubmitOrdersByIDs(ctx context.Context, ids []int64) {
	if ok, err := vm.orders.SubmitByIDs(ctx, ids); !ok {
		vm.Error.Set(orDefault(err, "Failed to submit orders"))
	}
}

func (vm *OrderViewModel) SubmitAllPending(ctx context.Context) {
	if ok, err := vm.orders.SubmitAllPending(ctx); !ok {
		vm.Error.Set(orDefault(err, "Failed to submit all pending orders"))
	}
}

func (vm *OrderViewModel) DeleteOrder(ctx context.Context, id int64) {
	if ok, err := vm.orders.Delete(ctx, id); !ok {
		vm.Error.Set(orDefault(err, "Failed to delete order"))
	}
}

func (vm *OrderViewModel) ClearAll(ctx context.Context) {
	if ok, err := vm.orders.ClearAll(ctx); !ok {
		vm.Error.Set(orDefault(err, "Failed to clear orders"))
	}
}

// ClearError drops the last error once the UI has shown it.
func (vm *OrderViewModel) ClearError() {
	vm.Error.Set("")
}

func orDefault(err error, fallback string) string {
	if err == nil {
		return fallback
	}
	return fallback + ": " + err.Error()
}
