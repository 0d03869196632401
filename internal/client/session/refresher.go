package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"golang.org/x/sync/singleflight"
)

// Exchanger trades a refresh token for a new access token.
type Exchanger interface {
	Refresh(ctx context.Context, refreshToken string) (TokenPair, error)
}

// Refresher coordinates credential refreshes. Concurrent triggers (a
// realtime close, a rejected REST call) share one in-flight exchange.
type Refresher struct {
	store   *Store
	ex      Exchanger
	log     logging.Logger
	timeout time.Duration
	group   singleflight.Group
}

func NewRefresher(store *Store, ex Exchanger, timeout time.Duration, log logging.Logger) *Refresher {
	return &Refresher{store: store, ex: ex, timeout: timeout, log: log.With("component", "refresher")}
}

// Refresh exchanges the stored refresh token and rotates the session.
//
// rejected is the access token the caller saw rejected. When the session
// already holds a different token, another trigger refreshed in the meantime
// and the current session is returned without a new exchange. Pass "" to
// force an exchange.
//
// On any exchange failure the session is cleared and the error wraps
// common.ErrCredentialRejected. Cancelling ctx only abandons the wait.
func (r *Refresher) Refresh(ctx context.Context, rejected string) (*models.Session, error) {
	sess := r.store.Current()
	if sess == nil {
		return nil, common.ErrNoSession
	}
	if rejected != "" && sess.AccessToken != rejected {
		return sess, nil
	}

	ch := r.group.DoChan("refresh", func() (any, error) {
		return r.exchange(context.WithoutCancel(ctx))
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*models.Session), nil
	}
}

func (r *Refresher) exchange(ctx context.Context) (*models.Session, error) {
	if r.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, r.timeout)
		defer cancel()
	}

	sess := r.store.Current()
	if sess == nil {
		return nil, common.ErrNoSession
	}

	r.log.Info(ctx, "refreshing credentials", "user_id", sess.UserID)

	pair, err := r.ex.Refresh(ctx, sess.RefreshToken)
	if err == nil && pair.AccessToken == "" {
		err = fmt.Errorf("refresh response has no access token: %w", common.ErrMalformedResponse)
	}
	if err != nil {
		r.log.Warn(ctx, "credential refresh failed, ending session", "user_id", sess.UserID, "error", err)
		r.store.Clear(ctx)
		if errors.Is(err, common.ErrCredentialRejected) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %w", common.ErrCredentialRejected, err)
	}

	rotated, err := r.store.RotateTokens(ctx, pair.AccessToken, pair.RefreshToken)
	if err != nil {
		if errors.Is(err, common.ErrNoSession) {
			return nil, fmt.Errorf("%w: session ended during refresh", common.ErrCredentialRejected)
		}
		r.log.Error(ctx, "failed to persist refreshed tokens", "error", err)
		r.store.Clear(ctx)
		return nil, fmt.Errorf("%w: %w", common.ErrCredentialRejected, err)
	}
	return rotated, nil
}
