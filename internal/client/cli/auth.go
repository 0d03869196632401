package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mobank/internal/common"
)

// getSimpleText and getPassword are indirections used to facilitate testing.
// They point to interactive input helpers and can be swapped in tests.
var getSimpleText = GetSimpleText
var getPassword = GetPassword

// Login prompts for a login id and password and signs in. A different
// account replaces the current session.
//
// The password is wiped before returning.
func (a *App) Login(ctx context.Context) error {
	loginID, err := getSimpleText(a.reader, "Enter username, email or phone", a.out)
	if err != nil {
		return err
	}
	if loginID == "" {
		return fmt.Errorf("login id is required: %w", common.ErrInvalidArgument)
	}

	password, err := getPassword(a.out)
	if err != nil {
		return err
	}
	defer common.WipeByteArray(password)

	a.stopWatch()
	sess, err := a.auth.Login(ctx, loginID, string(password))
	if err != nil {
		return err
	}

	printlnFn(fmt.Sprintf("Logged in as %s", sess.Profile.DisplayName()))
	return nil
}

// Logout stops the live watch and clears the session. Recipient lists stay
// on the device.
func (a *App) Logout(ctx context.Context) error {
	a.stopWatch()
	a.auth.Logout(ctx)
	printlnFn("Logged out")
	return nil
}

func (a *App) WhoAmI(ctx context.Context) error {
	sess := a.auth.Current()
	if sess == nil {
		return common.ErrNoSession
	}

	p := sess.Profile
	printlnFn(fmt.Sprintf("User ID:  %s", sess.UserID))
	printlnFn(fmt.Sprintf("Name:     %s", p.DisplayName()))
	if p.Username != "" {
		printlnFn(fmt.Sprintf("Username: %s", p.Username))
	}
	if p.Email != "" {
		printlnFn(fmt.Sprintf("Email:    %s", p.Email))
	}
	return nil
}
