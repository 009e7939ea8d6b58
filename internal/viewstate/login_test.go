package viewstate

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/services"
	"github.com/stretchr/testify/assert"
)

func TestLogin_InitLoadsSession(t *testing.T) {
	auth := newFakeAuth()
	auth.current = 3
	auth.users[3] = &models.User{ID: 3, Username: "carol"}

	vm := NewLoginViewModel(auth)
	vm.Init(context.Background())

	assert.Equal(t, int64(3), vm.CurrentUserID.Get())
	assert.Equal(t, "carol", vm.DisplayName.Get())
}

func TestLogin_SignUpMessages(t *testing.T) {
	tests := []struct {
		name string
		id   int64
		err  error
		want string
	}{
		{"ok", 5, nil, "Signed up successfully (id=5). Please login."},
		{"duplicate", 0, common.ErrorAlreadyExists, "Sign up failed (username or email may already exist)"},
		{"validation", 0, common.ErrorValidation, "Sign up failed (username, password and email are required)"},
		{"internal", 0, common.ErrorInternal, "Sign up failed: internal error"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			auth := newFakeAuth()
			auth.SignUpID, auth.SignUpErr = tt.id, tt.err
			vm := NewLoginViewModel(auth)

			vm.SignUp(context.Background(), services.SignUpParams{Username: "a", Password: "p", Email: "e"})
			assert.Equal(t, tt.want, vm.Status.Get())
			assert.Equal(t, models.GuestID, vm.CurrentUserID.Get(), "sign-up never signs in")
		})
	}
}

func TestLogin_SignInSuccess(t *testing.T) {
	auth := newFakeAuth()
	auth.SignInID = 7
	auth.users[7] = &models.User{ID: 7, Username: "alice", DisplayName: "Alice"}
	vm := NewLoginViewModel(auth)
	vm.PasswordUpdateRequest.Set("alice")

	vm.SignIn(context.Background(), " alice ", "pw")

	assert.Equal(t, int64(7), vm.CurrentUserID.Get())
	assert.Equal(t, "Signed in as alice (id=7)", vm.Status.Get())
	assert.Equal(t, "Alice", vm.DisplayName.Get())
	assert.Empty(t, vm.PasswordUpdateRequest.Get())
}

func TestLogin_SignInWrongPasswordOffersUpdate(t *testing.T) {
	auth := newFakeAuth()
	auth.SignInErr = common.ErrorUnauthorized
	auth.Exists = true
	vm := NewLoginViewModel(auth)

	vm.SignIn(context.Background(), "alice", "bad")

	assert.Equal(t, "Wrong password for alice. Would you like to update it?", vm.Status.Get())
	assert.Equal(t, "alice", vm.PasswordUpdateRequest.Get())
	assert.Equal(t, models.GuestID, vm.CurrentUserID.Get())

	vm.DismissPasswordUpdate()
	assert.Empty(t, vm.PasswordUpdateRequest.Get())
}

func TestLogin_SignInUnknownUser(t *testing.T) {
	auth := newFakeAuth()
	auth.SignInErr = common.ErrorNotFound
	vm := NewLoginViewModel(auth)

	vm.SignIn(context.Background(), "bob", "pw")
	assert.Equal(t, "No account found for bob", vm.Status.Get())
	assert.Empty(t, vm.PasswordUpdateRequest.Get())
}

func TestLogin_UpdatePassword(t *testing.T) {
	auth := newFakeAuth()
	vm := NewLoginViewModel(auth)
	vm.PasswordUpdateRequest.Set("alice")

	auth.UpdateErr = common.ErrorUnauthorized
	vm.UpdatePassword(context.Background(), "alice", "bad", "new")
	assert.Equal(t, "Password update failed (old password incorrect or user missing).", vm.Status.Get())
	assert.Equal(t, "alice", vm.PasswordUpdateRequest.Get())

	auth.UpdateOK, auth.UpdateErr = true, nil
	vm.UpdatePassword(context.Background(), "alice", "pw", "new")
	assert.Equal(t, "Password updated successfully. Please login with your new password.", vm.Status.Get())
	assert.Empty(t, vm.PasswordUpdateRequest.Get())
}

func TestLogin_SignOutAndSwitch(t *testing.T) {
	auth := newFakeAuth()
	vm := NewLoginViewModel(auth)
	ctx := context.Background()

	vm.SetCurrentUserID(ctx, 42)
	assert.Equal(t, int64(42), vm.CurrentUserID.Get())
	assert.Equal(t, "Switched to user 42", vm.Status.Get())
	assert.Empty(t, vm.DisplayName.Get(), "unknown users have no display name")

	vm.SignOut(ctx)
	assert.Equal(t, models.GuestID, vm.CurrentUserID.Get())
	assert.Equal(t, "Signed out", vm.Status.Get())

	vm.ClearStatus()
	assert.Empty(t, vm.Status.Get())
}
