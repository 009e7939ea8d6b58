package viewstate

import (
	"context"

	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/services"
)

// fakeAuth implements services.AuthService for view-model tests.
type fakeAuth struct {
	current int64
	users   map[int64]*models.User

	SignUpID   int64
	SignUpErr  error
	SignInID   int64
	SignInErr  error
	Exists     bool
	UpdateOK   bool
	UpdateErr  error
	SignOutErr error

	LastSignUp services.SignUpParams
}

func newFakeAuth() *fakeAuth {
	return &fakeAuth{users: map[int64]*models.User{}}
}

func (f *fakeAuth) GetCurrentUserID(context.Context) int64 { return f.current }

func (f *fakeAuth) SetCurrentUserID(_ context.Context, id int64) error {
	f.current = id
	return nil
}

func (f *fakeAuth) SignUp(_ context.Context, p services.SignUpParams) (int64, error) {
	f.LastSignUp = p
	return f.SignUpID, f.SignUpErr
}

func (f *fakeAuth) SignIn(context.Context, string, string) (int64, error) {
	if f.SignInErr == nil {
		f.current = f.SignInID
	}
	return f.SignInID, f.SignInErr
}

func (f *fakeAuth) SignOut(context.Context) error {
	if f.SignOutErr == nil {
		f.current = 0
	}
	return f.SignOutErr
}

func (f *fakeAuth) GetUserByID(_ context.Context, id int64) (*models.User, error) {
	if u, ok := f.users[id]; ok {
		return u, nil
	}
	return nil, errNotFound
}

func (f *fakeAuth) UsernameExists(context.Context, string) bool { return f.Exists }

func (f *fakeAuth) UpdatePassword(context.Context, string, string, string) (bool, error) {
	return f.UpdateOK, f.UpdateErr
}

func (f *fakeAuth) Theme(context.Context) string           { return services.ThemeLight }
func (f *fakeAuth) SetTheme(context.Context, string) error { return nil }

func (f *fakeAuth) SubscribeSession() (<-chan struct{}, func()) {
	return make(chan struct{}), func() {}
}

func (f *fakeAuth) StartHealthProbe(context.Context) <-chan struct{} {
	done := make(chan struct{})
	close(done)
	return done
}

func (f *fakeAuth) Close() error { return nil }

// fakeOrders implements services.OrderService.
type fakeOrders struct {
	UpsertID  int64
	UpsertErr error
	InsertErr error
	OK        bool
	OpErr     error

	lists map[models.Filter][]models.Order

	Inserted  []models.Order
	Submitted []int64
}

func (f *fakeOrders) Insert(_ context.Context, mealID, mealName string, q int, ts int64, sub bool) (int64, error) {
	if f.InsertErr != nil {
		return -1, f.InsertErr
	}
	f.Inserted = append(f.Inserted, models.Order{MealID: mealID, MealName: mealName, Quantity: q, Timestamp: ts, Submitted: sub})
	return int64(len(f.Inserted)), nil
}

func (f *fakeOrders) Upsert(context.Context, string, string, int, int64) (int64, error) {
	return f.UpsertID, f.UpsertErr
}

func (f *fakeOrders) UpdateQuantity(context.Context, int64, int, int64) (bool, error) {
	return f.OK, f.OpErr
}

func (f *fakeOrders) Delete(context.Context, int64) (bool, error) { return f.OK, f.OpErr }
func (f *fakeOrders) ClearAll(context.Context) (bool, error)      { return f.OK, f.OpErr }

func (f *fakeOrders) GetByMealID(context.Context, string) (*models.Order, error) {
	return nil, errNotFound
}

func (f *fakeOrders) SubmitByIDs(_ context.Context, ids []int64) (bool, error) {
	f.Submitted = append(f.Submitted, ids...)
	return f.OK, f.OpErr
}

func (f *fakeOrders) SubmitAllPending(context.Context) (bool, error) { return f.OK, f.OpErr }

func (f *fakeOrders) List(_ context.Context, flt models.Filter) []models.Order { return f.lists[flt] }

func (f *fakeOrders) Watch(ctx context.Context, flt models.Filter) <-chan []models.Order {
	ch := make(chan []models.Order, 1)
	ch <- f.lists[flt]
	go func() {
		<-ctx.Done()
		close(ch)
	}()
	return ch
}
