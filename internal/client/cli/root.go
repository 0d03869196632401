package cli

import (
	"context"
	"fmt"
)

func (a *App) getStatus() string {
	s := ""
	if sess := a.auth.Current(); sess != nil {
		s = sess.Profile.DisplayName() + " "
	}
	s += string(a.mode())
	return fmt.Sprintf("(%s)", s)
}

// Root greets the user, restores the persisted session (prompting for a
// login when there is none) and runs the REPL.
func (a *App) Root(ctx context.Context) {
	printlnFn("Welcome to mobank CLI (type 'help' for commands)")

	sess, err := a.auth.Resume(ctx)
	switch {
	case err != nil:
		report(err)
	case sess != nil:
		printlnFn(fmt.Sprintf("Welcome back, %s", sess.Profile.DisplayName()))
	}

	if sess == nil {
		report(a.Login(ctx))
	}

	runREPL(ctx, a, a.getStatus, a.reader)
}
