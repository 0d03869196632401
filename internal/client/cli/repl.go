package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/dmitrijs2005/mobank/internal/client/services"
)

// printlnFn is a test seam for user-facing output. In tests, replace it with a stub.
var printlnFn = fmt.Println

// execIface defines the minimal command surface the REPL needs to operate.
// The real App type satisfies this interface; tests can provide a lightweight stub.
type execIface interface {
	isLoggedIn() bool
	Login(ctx context.Context) error
	Logout(ctx context.Context) error
	WhoAmI(ctx context.Context) error
	Balance(ctx context.Context) error
	Watch(ctx context.Context) error
	Recipients(ctx context.Context) error
	AddRecipient(ctx context.Context) error
	DelRecipient(ctx context.Context, args []string) error
	ClearRecipients(ctx context.Context) error
	ResetRecipients(ctx context.Context, args []string) error
}

const (
	helpLoggedOut = "Available commands: login, help, exit"
	helpLoggedIn  = "Available commands: whoami, balance, watch, recipients, addrecipient, " +
		"delrecipient <id>..., clearrecipients, resetrecipients [--starter], logout, help, exit"
)

// runREPL starts a simple read–eval–print loop for the mobank CLI.
//
// It reads a line from reader, parses the first token as the command, and
// dispatches to methods on 'a'. Command errors are reported and the loop
// continues. The loop exits on EOF or when the user types "exit" or "quit".
//
// Prompt & Commands
//
//	Not logged in:
//	  - help                          show available commands
//	  - login                         authenticate
//	  - exit | quit                   leave the program
//
//	Logged in:
//	  - whoami                        show the signed-in profile
//	  - balance                       fetch the balance from the server
//	  - watch                         start/stop live balance updates
//	  - recipients                    list saved recipients
//	  - addrecipient                  add a recipient (interactive)
//	  - delrecipient <id>...          delete recipients by id
//	  - clearrecipients               remove the whole list
//	  - resetrecipients [--starter]   reload from storage or restore the starter list
//	  - logout                        log out
//	  - exit | quit                   leave the program
func runREPL(ctx context.Context, a execIface, statusFn func() string, reader *bufio.Reader) {
	for {
		printlnFn(fmt.Sprintf("mobank %s> ", statusFn()))

		line, err := reader.ReadString('\n')
		if err != nil && (!errors.Is(err, io.EOF) || line == "") {
			return
		}
		parts := strings.Fields(line)
		if len(parts) == 0 {
			continue
		}
		cmd, args := parts[0], parts[1:]

		if cmd == "exit" || cmd == "quit" {
			printlnFn("Bye!")
			return
		}
		report(dispatch(ctx, a, cmd, args))
	}
}

var errNeedLogin = errors.New("please log in first")

func dispatch(ctx context.Context, a execIface, cmd string, args []string) error {
	switch cmd {
	case "help":
		if a.isLoggedIn() {
			printlnFn(helpLoggedIn)
		} else {
			printlnFn(helpLoggedOut)
		}
		return nil
	case "login":
		return a.Login(ctx)
	}

	if !a.isLoggedIn() {
		switch cmd {
		case "logout", "whoami", "balance", "watch", "recipients", "addrecipient",
			"delrecipient", "clearrecipients", "resetrecipients":
			return errNeedLogin
		}
	}

	switch cmd {
	case "logout":
		return a.Logout(ctx)
	case "whoami":
		return a.WhoAmI(ctx)
	case "balance":
		return a.Balance(ctx)
	case "watch":
		return a.Watch(ctx)
	case "recipients", "l":
		return a.Recipients(ctx)
	case "addrecipient":
		return a.AddRecipient(ctx)
	case "delrecipient":
		return a.DelRecipient(ctx, args)
	case "clearrecipients":
		return a.ClearRecipients(ctx)
	case "resetrecipients":
		return a.ResetRecipients(ctx, args)
	default:
		printlnFn("Unknown command:", cmd)
		return nil
	}
}

func report(err error) {
	switch {
	case err == nil:
	case services.IsSessionEnded(err):
		printlnFn("Session ended, please log in again:", err)
	default:
		printlnFn("Error:", err)
	}
}
