package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	user := a.store.Current().User()
	if user == nil || user.Email == "" {
		return ""
	}
	return fmt.Sprintf("(%s) ", user.Email)
}

// Root restores the persisted session, follows auth events for the
// lifetime of the REPL and blocks until the user exits.
func (a *App) Root(ctx context.Context) {
	fmt.Fprintln(a.out, "Welcome to HealthKeeper CLI (type 'help' for commands)")

	if err := a.store.Initialize(ctx); err != nil {
		fmt.Fprintln(a.out, "Could not restore the previous session, please login again")
	}

	if err := a.store.Subscribe(ctx); err != nil {
		a.log.Warn(ctx, "auth events unavailable", "error", err)
	}
	defer a.store.Teardown()

	if user := a.store.Current().User(); user != nil {
		fmt.Fprintf(a.out, "Signed in as %s\n", user.Email)
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
