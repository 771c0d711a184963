package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mymind/internal/client/client"
	"github.com/dmitrijs2005/mymind/internal/client/services"
	"github.com/dmitrijs2005/mymind/internal/client/views"
	"github.com/dmitrijs2005/mymind/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Register prompts the user for a username and password and attempts to
// create a new account via the AuthService.
//
// The password byte slice is wiped before returning.
func (a *App) Register(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	if err := a.auth.Register(ctx, userName, password); err != nil {
		return err
	}

	fmt.Fprintln(a.out, "Success!")
	return nil
}

// Login prompts for credentials, signs in, evaluates the app lock for the
// new session and loads the owner's items.
//
// A failed initial fetch leaves the user signed in with an empty collection;
// "reload" retries it.
func (a *App) Login(ctx context.Context) error {
	userName, err := getSimpleText(a.reader, "Enter username", a.out)
	if err != nil {
		return err
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	profile, err := a.auth.Login(ctx, userName, password)
	if err != nil {
		if errors.Is(err, client.ErrUnavailable) {
			a.setMode(ctx, ModeOffline)
			return fmt.Errorf("server unavailable: %w", err)
		}
		a.logger.Warn(ctx, "login unsuccessful", "error", err)
		return err
	}

	a.logger.Info(ctx, "login successful", "user", profile.Username)
	a.userName = profile.Username
	a.filter = views.Filter{}
	a.setMode(ctx, ModeOnline)

	if a.gate.Evaluate(ctx) == services.Locked {
		fmt.Fprintln(a.out, renderAlert("App lock is on. Type 'unlock' to continue."))
	}

	if err := a.items.Reload(ctx); err != nil {
		return err
	}
	return nil
}

// Logout waits for in-flight remote writes, drops the session and empties
// the local collection. "logout forget" also wipes the cached credentials.
func (a *App) Logout(ctx context.Context, args []string) error {
	a.items.Wait()
	if err := a.auth.Logout(ctx); err != nil {
		return err
	}
	if err := a.items.Reload(ctx); err != nil {
		return err
	}
	if len(args) > 0 && args[0] == "forget" {
		if err := a.auth.ClearOfflineData(ctx); err != nil {
			return err
		}
	}
	a.userName = ""
	a.filter = views.Filter{}
	fmt.Fprintln(a.out, "Logged out")
	return nil
}
