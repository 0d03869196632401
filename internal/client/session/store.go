// Package session keeps the authenticated identity of the device user in
// memory and mirrored to the durable key-value store.
//
// A session is all-or-nothing: either the access token, the refresh token
// and the profile (with its user id) are all present, or the user is logged
// out. Token rotation after a credential refresh goes through the same
// persistence path as Establish.
package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/dmitrijs2005/mobank/internal/client/kvstore"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/golang-jwt/jwt/v5"
)

var sessionKeys = []string{common.KeyAccessToken, common.KeyRefreshToken, common.KeyUserData}

// Credentials is a successful authentication result.
type Credentials struct {
	AccessToken  string
	RefreshToken string
	Profile      models.Profile
}

// TokenPair is the result of a refresh exchange. RefreshToken is empty when
// the server did not rotate it.
type TokenPair struct {
	AccessToken  string
	RefreshToken string
}

type Store struct {
	kv  kvstore.Store
	log logging.Logger

	mu      sync.RWMutex
	current *models.Session
}

func NewStore(kv kvstore.Store, log logging.Logger) *Store {
	return &Store{kv: kv, log: log.With("component", "session")}
}

// Establish persists c and makes it the current session.
func (s *Store) Establish(ctx context.Context, c Credentials) (*models.Session, error) {
	if c.AccessToken == "" || c.RefreshToken == "" || c.Profile.UserID == "" {
		return nil, fmt.Errorf("establish session: missing access token, refresh token or user id: %w",
			common.ErrMalformedResponse)
	}

	profile, err := json.Marshal(c.Profile)
	if err != nil {
		return nil, fmt.Errorf("encode profile: %w", common.ErrMalformedResponse)
	}

	err = kvstore.SetAll(ctx, s.kv, map[string]string{
		common.KeyAccessToken:  c.AccessToken,
		common.KeyRefreshToken: c.RefreshToken,
		common.KeyUserData:     string(profile),
	})
	if err != nil {
		return nil, fmt.Errorf("persist session: %w: %w", common.ErrPersistence, err)
	}

	sess := &models.Session{
		UserID:          c.Profile.UserID.String(),
		AccessToken:     c.AccessToken,
		RefreshToken:    c.RefreshToken,
		Profile:         c.Profile,
		AccessExpiresAt: accessExpiry(c.AccessToken),
	}
	s.set(sess)

	s.log.Info(ctx, "session established", "user_id", sess.UserID)
	return clone(sess), nil
}

// Rehydrate restores the session persisted by a previous process. It
// returns (nil, nil) when no complete session is stored. A profile that no
// longer parses is removed.
func (s *Store) Rehydrate(ctx context.Context) (*models.Session, error) {
	values := make(map[string]string, len(sessionKeys))
	for _, k := range sessionKeys {
		v, ok, err := s.kv.Get(ctx, k)
		if err != nil {
			return nil, fmt.Errorf("read %s: %w: %w", k, common.ErrPersistence, err)
		}
		if ok && v != "" {
			values[k] = v
		}
	}

	if len(values) == 0 {
		s.log.Debug(ctx, "no stored session")
		return nil, nil
	}

	access, refresh, data := values[common.KeyAccessToken], values[common.KeyRefreshToken], values[common.KeyUserData]
	if data == "" || access == "" || refresh == "" {
		s.log.Warn(ctx, "stored session is partial, ignoring",
			"has_access", access != "", "has_refresh", refresh != "", "has_profile", data != "")
		return nil, nil
	}

	var profile models.Profile
	if err := json.Unmarshal([]byte(data), &profile); err != nil {
		s.log.Warn(ctx, "stored profile is corrupted, discarding", "error", err)
		if err := s.kv.Remove(ctx, common.KeyUserData); err != nil {
			s.log.Error(ctx, "failed to remove corrupted profile", "error", err)
		}
		return nil, nil
	}
	if profile.UserID == "" {
		s.log.Warn(ctx, "stored profile has no user id, ignoring")
		return nil, nil
	}

	sess := &models.Session{
		UserID:          profile.UserID.String(),
		AccessToken:     access,
		RefreshToken:    refresh,
		Profile:         profile,
		AccessExpiresAt: accessExpiry(access),
	}
	s.set(sess)

	s.log.Info(ctx, "session rehydrated", "user_id", sess.UserID)
	return clone(sess), nil
}

// Clear logs the user out. Storage failures are logged, never returned.
func (s *Store) Clear(ctx context.Context) {
	s.set(nil)
	if err := kvstore.RemoveAll(ctx, s.kv, sessionKeys...); err != nil {
		s.log.Error(ctx, "failed to remove session keys", "error", err)
		return
	}
	s.log.Info(ctx, "session cleared")
}

// Current returns a copy of the in-memory session, or nil when logged out.
func (s *Store) Current() *models.Session {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return clone(s.current)
}

// RotateTokens replaces the tokens of the current session. An empty refresh
// keeps the existing refresh token.
func (s *Store) RotateTokens(ctx context.Context, access, refresh string) (*models.Session, error) {
	if access == "" {
		return nil, fmt.Errorf("rotate tokens: empty access token: %w", common.ErrMalformedResponse)
	}

	sess := s.Current()
	if sess == nil {
		return nil, common.ErrNoSession
	}

	values := map[string]string{common.KeyAccessToken: access}
	sess.AccessToken = access
	sess.AccessExpiresAt = accessExpiry(access)
	if refresh != "" {
		values[common.KeyRefreshToken] = refresh
		sess.RefreshToken = refresh
	}

	if err := kvstore.SetAll(ctx, s.kv, values); err != nil {
		return nil, fmt.Errorf("persist rotated tokens: %w: %w", common.ErrPersistence, err)
	}

	s.mu.Lock()
	// A concurrent Clear wins over a late rotation.
	if s.current == nil || s.current.UserID != sess.UserID {
		s.mu.Unlock()
		return nil, common.ErrNoSession
	}
	s.current = sess
	s.mu.Unlock()

	s.log.Info(ctx, "session tokens rotated", "user_id", sess.UserID, "refresh_rotated", refresh != "")
	return clone(sess), nil
}

func (s *Store) set(sess *models.Session) {
	s.mu.Lock()
	s.current = sess
	s.mu.Unlock()
}

func clone(sess *models.Session) *models.Session {
	if sess == nil {
		return nil
	}
	c := *sess
	return &c
}

// accessExpiry reads the exp claim without verifying the signature; the
// server stays the authority on validity. Opaque tokens have no expiry.
func accessExpiry(token string) time.Time {
	var claims jwt.RegisteredClaims
	if _, _, err := jwt.NewParser().ParseUnverified(token, &claims); err != nil {
		return time.Time{}
	}
	if claims.ExpiresAt == nil {
		return time.Time{}
	}
	return claims.ExpiresAt.Time
}
