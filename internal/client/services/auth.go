// Package services orchestrates the client core for the view layer.
// This file defines the authentication lifecycle: login, resume after a
// process restart, and logout.
package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/mobank/internal/client/api"
	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/recipients"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

// AuthService defines the session lifecycle used by the CLI.
//
// Contract:
//   - Login: authenticate against the server, establish and persist the
//     session, then load (seeding on first use) the user's recipients.
//   - Resume: rehydrate a persisted session; (nil, nil) when there is none.
//   - Logout: stop realtime watchers and clear the session. Recipient lists
//     stay on the device.
//   - Current: the in-memory session, nil when logged out.
//
// All methods honor context cancellation.
type AuthService interface {
	Login(ctx context.Context, loginID, password string) (*models.Session, error)
	Resume(ctx context.Context) (*models.Session, error)
	Logout(ctx context.Context)
	Current() *models.Session
}

type authService struct {
	api        api.Client
	sessions   *session.Store
	recipients *recipients.Cache
	tracker    *balance.Tracker
	watchers   Stopper
	seed       bool
	log        logging.Logger
}

// Stopper tears down background work bound to the session.
type Stopper interface {
	Stop()
}

func NewAuthService(client api.Client, sessions *session.Store, cache *recipients.Cache,
	tracker *balance.Tracker, watchers Stopper, seed bool, log logging.Logger) AuthService {
	return &authService{
		api:        client,
		sessions:   sessions,
		recipients: cache,
		tracker:    tracker,
		watchers:   watchers,
		seed:       seed,
		log:        log.With("component", "auth"),
	}
}

func (a *authService) Login(ctx context.Context, loginID, password string) (*models.Session, error) {
	creds, err := a.api.Login(ctx, loginID, password)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	if cur := a.sessions.Current(); cur != nil && cur.UserID != creds.Profile.UserID.String() {
		a.log.Info(ctx, "switching account", "from", cur.UserID, "to", creds.Profile.UserID)
		a.stopWatchers()
		a.tracker.Reset()
	}

	sess, err := a.sessions.Establish(ctx, *creds)
	if err != nil {
		return nil, fmt.Errorf("establish session: %w", err)
	}

	a.afterSignIn(ctx, sess)
	return sess, nil
}

func (a *authService) Resume(ctx context.Context) (*models.Session, error) {
	sess, err := a.sessions.Rehydrate(ctx)
	if err != nil {
		return nil, fmt.Errorf("resume session: %w", err)
	}
	if sess == nil {
		return nil, nil
	}

	a.afterSignIn(ctx, sess)
	return sess, nil
}

// afterSignIn primes the per-user state. Failures here do not undo the
// login; the recipient screen reports them on its own load.
func (a *authService) afterSignIn(ctx context.Context, sess *models.Session) {
	if sess.Profile.Balance != nil {
		a.tracker.Set(*sess.Profile.Balance, balance.SourceProfile)
	}

	if !a.seed {
		return
	}
	rs, seeded, err := a.recipients.LoadOrSeed(ctx, sess.UserID)
	if err != nil {
		a.log.Warn(ctx, "recipient load failed", "user_id", sess.UserID, "error", err)
		return
	}
	a.log.Info(ctx, "recipients ready", "user_id", sess.UserID, "count", len(rs), "seeded", seeded)
}

func (a *authService) Logout(ctx context.Context) {
	a.stopWatchers()
	a.tracker.Reset()
	a.sessions.Clear(ctx)
}

func (a *authService) Current() *models.Session {
	return a.sessions.Current()
}

func (a *authService) stopWatchers() {
	if a.watchers != nil {
		a.watchers.Stop()
	}
}

// IsSessionEnded reports whether err means the user must log in again.
func IsSessionEnded(err error) bool {
	return errors.Is(err, common.ErrCredentialRejected) || errors.Is(err, common.ErrNoSession)
}
