package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/diner/internal/common"
	"github.com/dmitrijs2005/diner/internal/models"
	"github.com/dmitrijs2005/diner/internal/services"
)

// SignUp prompts for a new account. Display name, phone and address may be left empty.
func (a *App) SignUp(ctx context.Context) error {
	var p services.SignUpParams
	fields := []struct {
		prompt string
		dst    *string
	}{
		{"Username", &p.Username},
		{"Email", &p.Email},
		{"Display name (optional)", &p.DisplayName},
		{"Phone (optional)", &p.Phone},
		{"Address (optional)", &p.Address},
	}
	for _, f := range fields {
		v, err := getSimpleText(a.reader, f.prompt, a.out)
		if err != nil {
			return err
		}
		*f.dst = v
	}

	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}
	p.Password = password

	a.login.SignUp(ctx, p)
	a.reportStatus()
	return nil
}

// Login signs in. After a wrong password it offers to change the password.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username", a.out)
	if err != nil {
		return err
	}
	password, err := getPassword(a.reader, "Password", a.out)
	if err != nil {
		return err
	}

	a.login.SignIn(ctx, username, password)
	a.reportStatus()

	if req := a.login.PasswordUpdateRequest.Get(); req != "" {
		if Confirm(a.reader, "Update the password now?", a.out) {
			return a.changePassword(ctx, req)
		}
		a.login.DismissPasswordUpdate()
	}
	return nil
}

func (a *App) Logout(ctx context.Context) error {
	a.login.SignOut(ctx)
	a.reportStatus()
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	id := a.login.CurrentUserID.Get()
	if id == models.GuestID {
		a.say("guest (not signed in)")
		return nil
	}

	u, err := a.auth.GetUserByID(ctx, id)
	if err != nil {
		a.say("user %d (no profile: %v)", id, err)
		return nil
	}
	a.say("%s (id=%d)", u.Label(), u.ID)
	if u.Username != "" {
		a.say("  username: %s", u.Username)
	}
	if u.Email != "" {
		a.say("  email:    %s", u.Email)
	}
	if u.PhoneNumber != "" {
		a.say("  phone:    %s", u.PhoneNumber)
	}
	if u.Address != "" {
		a.say("  address:  %s", u.Address)
	}
	return nil
}

// Passwd changes a password. An empty username means the signed-in user.
func (a *App) Passwd(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Username (empty for current user)", a.out)
	if err != nil {
		return err
	}
	if username == "" {
		u, err := a.auth.GetUserByID(ctx, a.login.CurrentUserID.Get())
		if err != nil || u.Username == "" {
			return fmt.Errorf("no signed-in account, give a username")
		}
		username = u.Username
	}
	return a.changePassword(ctx, username)
}

func (a *App) changePassword(ctx context.Context, username string) error {
	oldPassword, err := getPassword(a.reader, "Old password", a.out)
	if err != nil {
		return err
	}
	newPassword, err := getPassword(a.reader, "New password", a.out)
	if err != nil {
		return err
	}

	a.login.UpdatePassword(ctx, username, oldPassword, newPassword)
	a.reportStatus()
	return nil
}

// Switch makes id the current user without checking credentials.
func (a *App) Switch(ctx context.Context, args []string) error {
	if len(args) != 1 {
		return errUsage("switch <userId>")
	}
	id, err := parseID(args[0])
	if err != nil {
		return err
	}
	a.login.SetCurrentUserID(ctx, id)
	a.reportStatus()
	return nil
}

func (a *App) Theme(ctx context.Context, args []string) error {
	if len(args) == 0 {
		a.say("Theme: %s", a.auth.Theme(ctx))
		return nil
	}
	if err := a.auth.SetTheme(ctx, args[0]); err != nil {
		if errors.Is(err, common.ErrorValidation) {
			return errUsage("theme [light|dark]")
		}
		return err
	}
	a.say("Theme set to %s", a.auth.Theme(ctx))
	return nil
}
