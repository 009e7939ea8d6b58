package services

import (
	"context"
	"database/sql"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/dmitrijs2005/diner/internal/broker"
	"github.com/dmitrijs2005/diner/internal/cryptox"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/dmitrijs2005/diner/internal/repositories/orders"
	"github.com/dmitrijs2005/diner/internal/repositories/prefs"
	"github.com/dmitrijs2005/diner/internal/workpool"
	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
)

var fastDigest = cryptox.Argon2Params{Time: 1, MemoryKiB: 1024, Threads: 1, KeyLen: 16, SaltLen: 8}

type authFixture struct {
	svc     *authService
	path    string
	metrics *metrics.Collector
}

func newAuth(t *testing.T) *authFixture {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "users.db")
	usersDB, err := OpenUsersDB(ctx, path)
	require.NoError(t, err)

	prefsDB, err := migrations.Open(ctx, dbx.MemoryDSN("prefs_"+uuid.NewString()), migrations.Prefs)
	require.NoError(t, err)
	t.Cleanup(func() { _ = prefsDB.Close() })

	m := metrics.NewCollector("test")
	svc := NewAuthService(AuthDeps{
		UsersDB:   usersDB,
		UsersPath: path,
		Prefs:     prefs.NewSQLiteRepository(prefsDB),
		Digester:  cryptox.NewArgon2Digester(fastDigest),
		Pool:      workpool.New(4),
		Log:       logging.NewNopLogger(),
		Metrics:   m,
	}).(*authService)
	t.Cleanup(func() { _ = svc.Close() })

	return &authFixture{svc: svc, path: path, metrics: m}
}

// fakeSession is a CurrentUserSource whose user the test switches directly.
type fakeSession struct {
	id atomic.Int64
	b  *broker.Broker[struct{}]
}

func newFakeSession() *fakeSession {
	return &fakeSession{b: broker.New[struct{}]()}
}

func (f *fakeSession) GetCurrentUserID(context.Context) int64 { return f.id.Load() }

func (f *fakeSession) SubscribeSession() (<-chan struct{}, func()) {
	return f.b.Subscribe(struct{}{})
}

func (f *fakeSession) switchTo(id int64) {
	f.id.Store(id)
	f.b.Publish(struct{}{})
}

type ordersFixture struct {
	svc     *orderService
	session *fakeSession
	store   *orders.Store
	disk    *sql.DB
	path    string
}

func newOrders(t *testing.T) *ordersFixture {
	t.Helper()
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "orders.db")
	disk, err := migrations.Open(ctx, dbx.FileDSN(path), migrations.Orders)
	require.NoError(t, err)

	store := orders.NewStore(disk, logging.NewNopLogger(), nil)
	t.Cleanup(func() { _ = store.Close() })

	session := newFakeSession()
	svc := NewOrderService(store, session, workpool.New(4), logging.NewNopLogger(), nil).(*orderService)
	return &ordersFixture{svc: svc, session: session, store: store, disk: disk, path: path}
}
