package viewstate

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/services"
)

// LoginViewModel exposes the session and the outcome of account actions.
// PasswordUpdateRequest holds the username a wrong-password sign-in offered
// a password change for, or "" when there is none.
type LoginViewModel struct {
	auth services.AuthService

	CurrentUserID         *State[int64]
	DisplayName           *State[string]
	Status                *State[string]
	PasswordUpdateRequest *State[string]
}

func NewLoginViewModel(auth services.AuthService) *LoginViewModel {
	return &LoginViewModel{
		auth:                  auth,
		CurrentUserID:         NewState(models.GuestID),
		DisplayName:           NewState(""),
		Status:                NewState(""),
		PasswordUpdateRequest: NewState(""),
	}
}

// Init loads the persisted session.
func (vm *LoginViewModel) Init(ctx context.Context) {
	id := vm.auth.GetCurrentUserID(ctx)
	vm.CurrentUserID.Set(id)
	vm.refreshDisplayName(ctx, id)
}

func (vm *LoginViewModel) SetCurrentUserID(ctx context.Context, id int64) {
	if err := vm.auth.SetCurrentUserID(ctx, id); err != nil {
		vm.Status.Set("Switching user failed: " + err.Error())
		return
	}
	vm.CurrentUserID.Set(id)
	vm.Status.Set(fmt.Sprintf("Switched to user %d", id))
	vm.refreshDisplayName(ctx, id)
}

func (vm *LoginViewModel) SignUp(ctx context.Context, p services.SignUpParams) {
	id, err := vm.auth.SignUp(ctx, p)
	switch {
	case err == nil && id > 0:
		vm.Status.Set(fmt.Sprintf("Signed up successfully (id=%d). Please login.", id))
	case errors.Is(err, common.ErrorValidation):
		vm.Status.Set("Sign up failed (username, password and email are required)")
	case errors.Is(err, common.ErrorAlreadyExists):
		vm.Status.Set("Sign up failed (username or email may already exist)")
	default:
		vm.Status.Set("Sign up failed: " + errText(err))
	}
}

func (vm *LoginViewModel) SignIn(ctx context.Context, username, password string) {
	username = strings.TrimSpace(username)
	id, err := vm.auth.SignIn(ctx, username, password)
	if err == nil && id > 0 {
		vm.CurrentUserID.Set(id)
		vm.Status.Set(fmt.Sprintf("Signed in as %s (id=%d)", username, id))
		vm.refreshDisplayName(ctx, id)
		vm.PasswordUpdateRequest.Set("")
		return
	}

	if errors.Is(err, common.ErrorInternal) {
		vm.Status.Set("Login failed: " + err.Error())
		return
	}
	if vm.auth.UsernameExists(ctx, username) {
		vm.Status.Set(fmt.Sprintf("Wrong password for %s. Would you like to update it?", username))
		vm.PasswordUpdateRequest.Set(username)
		return
	}
	vm.Status.Set("No account found for " + username)
}

func (vm *LoginViewModel) UpdatePassword(ctx context.Context, username, oldPassword, newPassword string) {
	ok, err := vm.auth.UpdatePassword(ctx, strings.TrimSpace(username), oldPassword, newPassword)
	switch {
	case ok:
		vm.Status.Set("Password updated successfully. Please login with your new password.")
		vm.PasswordUpdateRequest.Set("")
	case errors.Is(err, common.ErrorInternal):
		vm.Status.Set("Password update failed: " + err.Error())
	default:
		vm.Status.Set("Password update failed (old password incorrect or user missing).")
	}
}

// DismissPasswordUpdate drops a pending password-change offer.
func (vm *LoginViewModel) DismissPasswordUpdate() {
	vm.PasswordUpdateRequest.Set("")
}

func (vm *LoginViewModel) SignOut(ctx context.Context) {
	if err := vm.auth.SignOut(ctx); err != nil {
		vm.Status.Set("Sign out failed: " + err.Error())
		return
	}
	vm.CurrentUserID.Set(models.GuestID)
	vm.DisplayName.Set("")
	vm.Status.Set("Signed out")
}

func (vm *LoginViewModel) ClearStatus() {
	vm.Status.Set("")
}

func (vm *LoginViewModel) refreshDisplayName(ctx context.Context, id int64) {
	if id == models.GuestID {
		vm.DisplayName.Set("")
		return
	}
	u, err := vm.auth.GetUserByID(ctx, id)
	if err != nil {
		vm.DisplayName.Set("")
		return
	}
	vm.DisplayName.Set(u.Label())
}

func errText(err error) string {
	if err == nil {
		return "unknown error"
	}
	return err.Error()
}
