package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/services"
)

func (a *App) Balance(ctx context.Context) error {
	snap, err := a.balances.Refresh(ctx)
	if err != nil {
		return err
	}
	printlnFn(fmt.Sprintf("Balance: %s", snap.Value.StringFixed(2)))
	return nil
}

// Watch toggles live balance updates. Updates are printed as they arrive
// and the connection state shows up in the prompt.
func (a *App) Watch(ctx context.Context) error {
	if a.stopWatch() {
		printlnFn("Stopped watching balance")
		return nil
	}

	sub, err := a.balances.Watch(ctx)
	if err != nil {
		return err
	}

	a.mu.Lock()
	a.watch = sub
	a.mu.Unlock()

	printlnFn("Watching balance (type 'watch' again to stop)")
	go a.follow(sub)
	return nil
}

// follow drains sub until the channel stops.
func (a *App) follow(sub *services.Subscription) {
	for ev := range sub.Events {
		switch {
		case ev.Kind.CarriesBalance():
			printlnFn(fmt.Sprintf("Balance updated: %s", ev.Balance.StringFixed(2)))
		case ev.Kind == models.EventStateChanged:
			a.setMode(Mode(ev.State.String()))
		case ev.Kind == models.EventSessionEnded:
			printlnFn("Session ended, please log in again")
		}
	}
	err := sub.Wait()

	a.mu.Lock()
	if a.watch == sub {
		a.watch = nil
	}
	a.mu.Unlock()
	a.setMode(ModeOffline)

	if err != nil {
		report(err)
	}
}

// stopWatch stops a running watch and reports whether there was one.
func (a *App) stopWatch() bool {
	a.mu.Lock()
	sub := a.watch
	a.watch = nil
	a.mu.Unlock()

	if sub == nil {
		return false
	}
	sub.Stop()
	_ = sub.Wait()
	return true
}
