package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mymind/internal/client/services"
)

// Lock turns the app lock setting on or off. The current session is not
// affected; the setting applies from the next sign-in.
func (a *App) Lock(ctx context.Context, args []string) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if len(args) != 1 || (args[0] != "on" && args[0] != "off") {
		return usage("lock on|off")
	}
	enabled := args[0] == "on"
	if err := a.gate.SetAppLock(ctx, enabled); err != nil {
		return err
	}
	fmt.Fprintf(a.out, "App lock %s\n", args[0])
	return nil
}

// Unlock runs the password challenge. Whatever the outcome, the session
// proceeds unlocked; a failed or unavailable challenge is reported.
func (a *App) Unlock(ctx context.Context) error {
	if !a.isLoggedIn() {
		return ErrNotLoggedIn
	}
	if !a.gate.IsLocked() {
		fmt.Fprintln(a.out, "Already unlocked")
		return nil
	}
	outcome := a.gate.Unlock(ctx, a.challenge)
	if outcome != services.ChallengeSucceeded {
		fmt.Fprintln(a.out, renderAlert(fmt.Sprintf("unlock challenge %s", outcome)))
	}
	fmt.Fprintln(a.out, "Unlocked")
	return nil
}
