// Package services contains the application services of the diner core.
// This file defines the credential store: sign-up, sign-in, sign-out,
// password changes, the session scalar and the recovery of the users
// database when it turns out to be closed or corrupt.
package services

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/diner/internal/broker"
	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/cryptox"
	"github.com/dmitrijs2005/diner/internal/dbx"
	"github.com/dmitrijs2005/diner/internal/logging"
	"github.com/dmitrijs2005/diner/internal/metrics"
	"github.com/dmitrijs2005/diner/internal/migrations"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/repositories/prefs"
	"github.com/dmitrijs2005/diner/internal/repositories/users"
	"github.com/dmitrijs2005/diner/internal/workpool"
	"github.com/google/uuid"
)

// Themes accepted by SetTheme.
const (
	ThemeLight = "light"
	ThemeDark  = "dark"
)

// SignUpParams carries the profile of a new account. DisplayName, Phone and
// Address are optional.
type SignUpParams struct {
	Username    string
	Password    string
	DisplayName string
	Email       string
	Phone       string
	Address     string
}

// AuthService defines the credential store operations.
//
// Business failures return the zero value (0, false or nil) together with a
// sentinel from package common describing the reason; storage errors are
// never returned as is.
type AuthService interface {
	GetCurrentUserID(ctx context.Context) int64
	SetCurrentUserID(ctx context.Context, id int64) error
	SignUp(ctx context.Context, p SignUpParams) (int64, error)
	SignIn(ctx context.Context, username, password string) (int64, error)
	SignOut(ctx context.Context) error
	GetUserByID(ctx context.Context, id int64) (*models.User, error)
	UsernameExists(ctx context.Context, username string) bool
	UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error)

	Theme(ctx context.Context) string
	SetTheme(ctx context.Context, theme string) error

	// SubscribeSession notifies whenever the current user id changes.
	SubscribeSession() (<-chan struct{}, func())

	// StartHealthProbe checks the users database once in the background and
	// rebuilds it when the check reports corruption. The channel is closed
	// when the probe is done.
	StartHealthProbe(ctx context.Context) <-chan struct{}

	Close() error
}

// OpenUsersDB opens (creating when needed) and migrates the users database at path.
func OpenUsersDB(ctx context.Context, path string) (*sql.DB, error) {
	return migrations.Open(ctx, dbx.FileDSN(path), migrations.Users)
}

type usersHandle struct {
	db *sql.DB
}

// AuthDeps are the collaborators of the credential store.
type AuthDeps struct {
	UsersDB   *sql.DB
	UsersPath string
	Prefs     prefs.Repository
	Digester  cryptox.Digester
	Pool      *workpool.Pool
	Log       logging.Logger
	Metrics   *metrics.Collector

	// ProbeTimeout bounds the startup health probe; zero means no bound.
	ProbeTimeout time.Duration
}

type authService struct {
	handle    atomic.Pointer[usersHandle]
	rebuildMu sync.Mutex
	path      string
	openUsers func(ctx context.Context, path string) (*sql.DB, error)

	prefs        prefs.Repository
	digester     cryptox.Digester
	pool         *workpool.Pool
	sessions     *broker.Broker[struct{}]
	probeTimeout time.Duration

	log     logging.Logger
	metrics *metrics.Collector
}

// NewAuthService constructs the credential store over an opened users
// database located at d.UsersPath.
func NewAuthService(d AuthDeps) AuthService {
	s := &authService{
		path:         d.UsersPath,
		openUsers:    OpenUsersDB,
		prefs:        d.Prefs,
		digester:     d.Digester,
		pool:         d.Pool,
		sessions:     broker.New[struct{}](),
		probeTimeout: d.ProbeTimeout,
		log:          d.Log.With("store", metrics.StoreUsers),
		metrics:      d.Metrics,
	}
	s.handle.Store(&usersHandle{db: d.UsersDB})
	return s
}

// withUsers runs fn on the current users repository inside the worker pool.
// A corruption error rebuilds the database and retries fn once.
func (s *authService) withUsers(ctx context.Context, op string, fn func(ctx context.Context, r users.Repository) error) error {
	return s.pool.Run(ctx, func(ctx context.Context) error {
		h := s.handle.Load()
		err := fn(ctx, users.NewSQLiteRepository(h.db))
		if err == nil || !dbx.IndicatesCorruption(err) {
			return err
		}

		s.log.Warn(ctx, "users store unusable, rebuilding", "op", op, "error", err)
		nh, rerr := s.rebuild(ctx, h)
		if rerr != nil {
			return errors.Join(err, rerr)
		}
		return fn(ctx, users.NewSQLiteRepository(nh.db))
	})
}

// rebuild replaces failed with a freshly created database. When another
// caller already replaced it, the current handle is returned as is.
func (s *authService) rebuild(ctx context.Context, failed *usersHandle) (*usersHandle, error) {
	s.rebuildMu.Lock()
	defer s.rebuildMu.Unlock()

	if cur := s.handle.Load(); cur != failed {
		return cur, nil
	}

	start := time.Now()
	h, err := s.recreate(ctx, failed)
	s.metrics.RecordRecovery(metrics.StoreUsers, time.Since(start), err)
	if err != nil {
		s.log.Error(ctx, "users store rebuild failed", "path", s.path, "error", err)
		return nil, err
	}

	s.handle.Store(h)
	s.log.Warn(ctx, "users store rebuilt", "path", s.path, "took", time.Since(start))
	return h, nil
}

func (s *authService) recreate(ctx context.Context, failed *usersHandle) (*usersHandle, error) {
	_ = failed.db.Close()

	if err := dbx.RemoveDatabaseFiles(s.path); err != nil {
		return nil, fmt.Errorf("remove users db: %w", err)
	}

	db, err := s.openUsers(ctx, s.path)
	if err != nil {
		return nil, fmt.Errorf("reopen users db: %w", err)
	}

	if err := sanityCheck(ctx, users.NewSQLiteRepository(db)); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("users db sanity check: %w", err)
	}
	return &usersHandle{db: db}, nil
}

// sanityCheck writes a probe row and reads it back.
func sanityCheck(ctx context.Context, r users.Repository) error {
	email := "__probe__" + uuid.NewString() + "@local"
	if _, err := r.Insert(ctx, &models.User{Email: email, DisplayName: "Probe"}); err != nil {
		return err
	}
	_, err := r.GetByEmail(ctx, email)
	return err
}

func (s *authService) StartHealthProbe(ctx context.Context) <-chan struct{} {
	done := make(chan struct{})
	go func() {
		defer close(done)

		if s.probeTimeout > 0 {
			var cancel context.CancelFunc
			ctx, cancel = context.WithTimeout(ctx, s.probeTimeout)
			defer cancel()
		}

		err := s.withUsers(ctx, "probe", func(ctx context.Context, r users.Repository) error {
			_, err := r.GetByID(ctx, models.GuestID)
			if errors.Is(err, common.ErrorNotFound) {
				return nil
			}
			return err
		})
		if err != nil {
			s.log.Error(ctx, "users health probe failed", "error", err)
			return
		}
		s.log.Debug(ctx, "users health probe ok")
	}()
	return done
}

func (s *authService) GetCurrentUserID(ctx context.Context) int64 {
	id, err := workpool.Do(ctx, s.pool, func(ctx context.Context) (int64, error) {
		return prefs.GetInt64(ctx, s.prefs, prefs.KeyCurrentUserID, models.GuestID)
	})
	if err != nil {
		s.log.Error(ctx, "failed to read current user id", "error", err)
		return models.GuestID
	}
	return id
}

func (s *authService) SetCurrentUserID(ctx context.Context, id int64) error {
	if id != models.GuestID {
		s.ensureUser(ctx, id)
	}
	return s.writeSession(ctx, id)
}

// ensureUser inserts a placeholder row for id when none exists. Failures are
// logged and otherwise ignored.
func (s *authService) ensureUser(ctx context.Context, id int64) {
	err := s.withUsers(ctx, "ensure user", func(ctx context.Context, r users.Repository) error {
		_, err := r.GetByID(ctx, id)
		if !errors.Is(err, common.ErrorNotFound) {
			return err
		}
		label := fmt.Sprintf("%d", id)
		_, err = r.Insert(ctx, &models.User{ID: id, Email: "user_" + label + "@local", DisplayName: "User " + label})
		if errors.Is(err, common.ErrorAlreadyExists) {
			return nil
		}
		return err
	})
	if err != nil {
		s.metrics.RecordOperationFailure(metrics.StoreUsers, "ensure_user")
		s.log.Warn(ctx, "placeholder user not created", "id", id, "error", err)
	}
}

func (s *authService) writeSession(ctx context.Context, id int64) error {
	err := s.pool.Run(ctx, func(ctx context.Context) error {
		return prefs.SetInt64(ctx, s.prefs, prefs.KeyCurrentUserID, id)
	})
	if err != nil {
		s.log.Error(ctx, "failed to write current user id", "id", id, "error", err)
		return common.ErrorInternal
	}
	s.sessions.Publish(struct{}{})
	return nil
}

func (s *authService) SubscribeSession() (<-chan struct{}, func()) {
	return s.sessions.Subscribe(struct{}{})
}

func (s *authService) SignUp(ctx context.Context, p SignUpParams) (int64, error) {
	p.Username = strings.TrimSpace(p.Username)
	p.Email = strings.TrimSpace(p.Email)
	if p.Username == "" || p.Email == "" || p.Password == "" {
		return 0, common.ErrorValidation
	}

	digest, err := s.digester.Digest(p.Password)
	if err != nil {
		s.log.Error(ctx, "failed to digest password", "error", err)
		return 0, common.ErrorInternal
	}

	var id int64
	err = s.withUsers(ctx, "sign up", func(ctx context.Context, r users.Repository) error {
		if taken, err := exists(ctx, r.GetByUsername, p.Username); err != nil || taken {
			return orAlreadyExists(err)
		}
		if taken, err := exists(ctx, r.GetByEmail, p.Email); err != nil || taken {
			return orAlreadyExists(err)
		}

		var err error
		id, err = r.Insert(ctx, &models.User{
			Email:          p.Email,
			Username:       p.Username,
			PasswordDigest: digest,
			DisplayName:    strings.TrimSpace(p.DisplayName),
			PhoneNumber:    strings.TrimSpace(p.Phone),
			Address:        strings.TrimSpace(p.Address),
		})
		return err
	})
	if err != nil {
		return 0, s.reason(ctx, "sign_up", err)
	}

	s.log.Debug(ctx, "user signed up", "id", id, "username", p.Username)
	return id, nil
}

func (s *authService) SignIn(ctx context.Context, username, password string) (int64, error) {
	u, err := s.userByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return 0, err
	}
	if !u.HasCredentials() || !s.digester.Verify(password, u.PasswordDigest) {
		return 0, common.ErrorUnauthorized
	}

	if err := s.writeSession(ctx, u.ID); err != nil {
		return 0, err
	}
	s.log.Debug(ctx, "user signed in", "id", u.ID)
	return u.ID, nil
}

func (s *authService) SignOut(ctx context.Context) error {
	return s.writeSession(ctx, models.GuestID)
}

func (s *authService) GetUserByID(ctx context.Context, id int64) (*models.User, error) {
	var u *models.User
	err := s.withUsers(ctx, "get user", func(ctx context.Context, r users.Repository) (err error) {
		u, err = r.GetByID(ctx, id)
		return err
	})
	if err != nil {
		return nil, s.reason(ctx, "get_user", err)
	}
	return u, nil
}

func (s *authService) UsernameExists(ctx context.Context, username string) bool {
	_, err := s.userByUsername(ctx, strings.TrimSpace(username))
	return err == nil
}

func (s *authService) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) (bool, error) {
	if newPassword == "" {
		return false, common.ErrorValidation
	}

	u, err := s.userByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		return false, err
	}
	if !u.HasCredentials() || !s.digester.Verify(oldPassword, u.PasswordDigest) {
		return false, common.ErrorUnauthorized
	}

	digest, err := s.digester.Digest(newPassword)
	if err != nil {
		s.log.Error(ctx, "failed to digest password", "error", err)
		return false, common.ErrorInternal
	}

	var changed bool
	err = s.withUsers(ctx, "update password", func(ctx context.Context, r users.Repository) (err error) {
		changed, err = r.UpdatePasswordDigestByUsername(ctx, u.Username, digest)
		return err
	})
	if err != nil {
		return false, s.reason(ctx, "update_password", err)
	}
	if !changed {
		return false, common.ErrorNotFound
	}
	return true, nil
}

func (s *authService) Theme(ctx context.Context) string {
	theme, err := workpool.Do(ctx, s.pool, func(ctx context.Context) (string, error) {
		return prefs.GetString(ctx, s.prefs, prefs.KeyTheme, ThemeLight)
	})
	if err != nil {
		s.log.Error(ctx, "failed to read theme", "error", err)
		return ThemeLight
	}
	return theme
}

func (s *authService) SetTheme(ctx context.Context, theme string) error {
	theme = strings.ToLower(strings.TrimSpace(theme))
	if theme != ThemeLight && theme != ThemeDark {
		return common.ErrorValidation
	}
	err := s.pool.Run(ctx, func(ctx context.Context) error {
		return prefs.SetString(ctx, s.prefs, prefs.KeyTheme, theme)
	})
	if err != nil {
		s.log.Error(ctx, "failed to write theme", "error", err)
		return common.ErrorInternal
	}
	return nil
}

func (s *authService) Close() error {
	return s.handle.Load().db.Close()
}

func (s *authService) userByUsername(ctx context.Context, username string) (*models.User, error) {
	if username == "" {
		return nil, common.ErrorNotFound
	}
	var u *models.User
	err := s.withUsers(ctx, "get user by username", func(ctx context.Context, r users.Repository) (err error) {
		u, err = r.GetByUsername(ctx, username)
		return err
	})
	if err != nil {
		return nil, s.reason(ctx, "get_user_by_username", err)
	}
	return u, nil
}

// reason maps err to the sentinel handed to callers. Unexpected errors are
// logged and counted.
func (s *authService) reason(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, common.ErrorNotFound):
		return common.ErrorNotFound
	case errors.Is(err, common.ErrorAlreadyExists):
		return common.ErrorAlreadyExists
	}
	s.metrics.RecordOperationFailure(metrics.StoreUsers, op)
	s.log.Error(ctx, "users store operation failed", "op", op, "error", err)
	return common.ErrorInternal
}

func exists(ctx context.Context, get func(context.Context, string) (*models.User, error), key string) (bool, error) {
	_, err := get(ctx, key)
	switch {
	case err == nil:
		return true, nil
	case errors.Is(err, common.ErrorNotFound):
		return false, nil
	default:
		return false, err
	}
}

func orAlreadyExists(err error) error {
	if err != nil {
		return err
	}
	return common.ErrorAlreadyExists
}
