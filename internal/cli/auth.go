package cli

import (
	"context"
	"errors"
	"fmt"
	"os"

	"github.com/librefy/librefy-cli/internal/common"
	"github.com/librefy/librefy-cli/internal/services"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts for account details and creates the account. A successful
// registration lands the user signed in, like the mobile app does.
func (a *App) Register(ctx context.Context) error {
	req := services.RegisterRequest{}
	var err error

	if req.Name, err = getSimpleText(a.reader, "Enter display name", os.Stdout); err != nil {
		return err
	}
	if req.Username, err = getSimpleText(a.reader, "Enter username", os.Stdout); err != nil {
		return err
	}
	if req.Email, err = getSimpleText(a.reader, "Enter email", os.Stdout); err != nil {
		return err
	}
	if req.BirthDate, err = getSimpleText(a.reader, "Enter birth date (YYYY-MM-DD)", os.Stdout); err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)
	req.Password = string(password)

	session, err := a.auth.Register(ctx, req)
	if err != nil {
		printlnFn("Registration failed:", err)
		return err
	}

	a.user = &session.User
	a.setMode(ModeOnline)
	printlnFn("Welcome,", session.User.Name+"!")
	return a.Refresh(ctx)
}

// Login prompts for credentials and tries to authenticate.
//
// The method first attempts an online login. If the server is unreachable it
// falls back to the locally stored unlock material. The final connectivity
// state is reflected in App.Mode:
//   - ModeOnline if online login succeeds,
//   - ModeOffline if only the offline unlock succeeds,
//   - ModeDisabled if both fail.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	username, err := getSimpleText(a.reader, "Enter username", os.Stdout)
	if err != nil {
		return err
	}

	password, err := getPassword(os.Stdout)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	session, err := a.auth.Login(ctx, username, password)
	if err == nil {
		a.user = &session.User
		a.setMode(ModeOnline)
		printlnFn("Login successful")
		return a.Refresh(ctx)
	}

	if errors.Is(err, common.ErrNetwork) || errors.Is(err, common.ErrUnavailable) {
		printlnFn("Server unavailable, trying offline unlock...")
		user, offErr := a.auth.OfflineUnlock(ctx, username, password)
		if offErr != nil {
			printlnFn("Offline unlock failed:", offErr)
			a.setMode(ModeDisabled)
			return offErr
		}
		a.user = user
		a.setMode(ModeOffline)
		printlnFn("Offline unlock successful; cached library only")
		return a.Refresh(ctx)
	}

	printlnFn("Login failed:", err)
	return err
}

// Logout signs out and forgets the local session.
func (a *App) Logout(ctx context.Context) error {
	if err := a.auth.Logout(ctx); err != nil {
		printlnFn("Logout failed:", err)
		return err
	}
	a.user = nil
	a.Mode = ""
	printlnFn("Logged out")
	return nil
}

// Profile prints the account profile, fetching a fresh copy when online.
func (a *App) Profile(ctx context.Context) error {
	user, err := a.auth.Profile(ctx)
	if err != nil {
		// Offline: show the stored copy if we have one.
		stored, sErr := a.sessions.User(ctx)
		if sErr != nil {
			printlnFn("Profile unavailable:", err)
			return err
		}
		user = stored
	}

	printlnFn(fmt.Sprintf("%s (@%s) <%s>", user.Name, user.Username, user.Email))
	if user.Bio != "" {
		printlnFn(user.Bio)
	}
	return nil
}
