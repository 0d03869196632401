// Package realtime implements the balance push channel.
//
// A Channel keeps one websocket to <ws base>/api/v1/ws/user, authenticated
// with the session's access token, and turns server frames into a typed
// event stream. State machine:
//
//	Disconnected -> Connecting            a token is available
//	Connecting -> Connected               handshake succeeded
//	Connected -> Disconnected             any close (reconnects after a delay)
//	Connected -> RefreshingCredentials    close code 4001
//	RefreshingCredentials -> Connecting   refresh succeeded, tokens rotated
//	RefreshingCredentials -> Disconnected refresh failed, session cleared (terminal)
//
// A handshake answered with 401/403 counts as close code 4001, and a JWT
// access token that is already past its exp goes straight to refreshing.
package realtime

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"sync"
	"time"

	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const eventBuffer = 64

var ErrAlreadyRunning = errors.New("realtime channel already ran")

// Sessions is the part of the session store the channel needs.
type Sessions interface {
	Current() *models.Session
	Clear(ctx context.Context)
}

// Refresher performs the shared credential refresh.
type Refresher interface {
	Refresh(ctx context.Context, rejected string) (*models.Session, error)
}

type Config struct {
	// BaseURL is the websocket origin, e.g. wss://bank.example.com.
	BaseURL          string
	ReconnectDelay   time.Duration
	HandshakeTimeout time.Duration
}

type Channel struct {
	cfg       Config
	sessions  Sessions
	refresher Refresher
	tracker   *balance.Tracker
	log       logging.Logger
	dialer    *websocket.Dialer
	now       func() time.Time

	events chan models.Event

	mu      sync.Mutex
	state   models.ConnState
	started bool
}

func New(cfg Config, sessions Sessions, refresher Refresher, tracker *balance.Tracker, log logging.Logger) *Channel {
	if cfg.HandshakeTimeout <= 0 {
		cfg.HandshakeTimeout = 10 * time.Second
	}
	return &Channel{
		cfg:       cfg,
		sessions:  sessions,
		refresher: refresher,
		tracker:   tracker,
		log:       log.With("component", "realtime"),
		dialer: &websocket.Dialer{
			Proxy:            http.ProxyFromEnvironment,
			HandshakeTimeout: cfg.HandshakeTimeout,
		},
		now:    time.Now,
		events: make(chan models.Event, eventBuffer),
	}
}

// Events is the single event stream of the channel. It is closed when Run
// returns. Balance and session_ended events are never dropped, so the
// stream must be drained; state_changed events are dropped when the
// buffer is full.
func (c *Channel) Events() <-chan models.Event {
	return c.events
}

func (c *Channel) State() models.ConnState {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// Run drives the channel until ctx is cancelled (nil), the session can no
// longer be refreshed (common.ErrCredentialRejected), there is no session
// (common.ErrNoSession) or the server cannot be reached
// (common.ErrNetworkUnavailable). A Channel runs once.
func (c *Channel) Run(ctx context.Context) error {
	c.mu.Lock()
	if c.started {
		c.mu.Unlock()
		return ErrAlreadyRunning
	}
	c.started = true
	c.mu.Unlock()

	defer close(c.events)
	defer c.setState(ctx, models.StateDisconnected, "")

	err := c.loop(ctx)
	if ctx.Err() != nil {
		c.log.Info(ctx, "realtime channel stopped")
		return nil
	}
	return err
}

func (c *Channel) loop(ctx context.Context) error {
	refresh := false
	// handshake rejections since the last refresh
	rejected := 0

	for {
		sess := c.sessions.Current()
		if !sess.Valid() {
			return common.ErrNoSession
		}

		if refresh || sess.AccessExpired(c.now()) {
			c.setState(ctx, models.StateRefreshingCredentials, "")
			fresh, err := c.refresher.Refresh(ctx, sess.AccessToken)
			if err != nil {
				if ctx.Err() != nil {
					return ctx.Err()
				}
				return c.endSession(ctx, err)
			}
			sess, refresh = fresh, false
		}

		c.setState(ctx, models.StateConnecting, "")
		conn, resp, err := c.dialer.DialContext(ctx, c.endpoint(sess.AccessToken), nil)
		if err != nil {
			if ctx.Err() != nil {
				return ctx.Err()
			}
			if resp != nil && (resp.StatusCode == http.StatusUnauthorized || resp.StatusCode == http.StatusForbidden) {
				rejected++
				c.log.Warn(ctx, "handshake rejected", "status", resp.StatusCode)
				if rejected > 1 {
					// a freshly refreshed token was rejected too
					c.sessions.Clear(ctx)
					return c.endSession(ctx, fmt.Errorf("handshake status %d: %w", resp.StatusCode, common.ErrCredentialRejected))
				}
				refresh = true
				continue
			}
			c.setState(ctx, models.StateDisconnected, "")
			c.log.Warn(ctx, "realtime connect failed", "error", err)
			return fmt.Errorf("connect realtime: %w: %w", common.ErrNetworkUnavailable, err)
		}
		rejected = 0

		connID := uuid.NewString()
		c.setState(ctx, models.StateConnected, connID)

		code, err := c.serve(ctx, conn, connID)
		if ctx.Err() != nil {
			return ctx.Err()
		}

		c.log.Info(ctx, "realtime connection closed", "conn_id", connID, "code", code, "error", err)
		if code == common.CloseCredentialRejected {
			refresh = true
			continue
		}

		c.setState(ctx, models.StateDisconnected, connID)
		if err := sleep(ctx, c.cfg.ReconnectDelay); err != nil {
			return err
		}
	}
}

func (c *Channel) endSession(ctx context.Context, cause error) error {
	c.setState(ctx, models.StateDisconnected, "")
	c.log.Warn(ctx, "session ended by credential refresh failure", "error", cause)

	if !errors.Is(cause, common.ErrCredentialRejected) {
		cause = fmt.Errorf("%w: %w", common.ErrCredentialRejected, cause)
	}
	c.emit(ctx, models.Event{Kind: models.EventSessionEnded, Err: cause, At: c.now()}, true)
	return cause
}

func (c *Channel) endpoint(token string) string {
	return strings.TrimRight(c.cfg.BaseURL, "/") + "/api/v1/ws/user?token=" + url.QueryEscape(token)
}

// serve owns conn until it closes or ctx is done, and returns the close code
// (0 when the connection broke without a close frame).
func (c *Channel) serve(ctx context.Context, conn *websocket.Conn, connID string) (int, error) {
	defer conn.Close()

	if err := conn.WriteJSON(models.Envelope{Type: "ping"}); err != nil {
		return 0, fmt.Errorf("send ping: %w", err)
	}

	done := make(chan struct{})
	defer close(done)
	go func() {
		select {
		case <-ctx.Done():
			msg := websocket.FormatCloseMessage(websocket.CloseNormalClosure, "client shutdown")
			_ = conn.WriteControl(websocket.CloseMessage, msg, time.Now().Add(time.Second))
			_ = conn.Close()
		case <-done:
		}
	}()

	for {
		_, data, err := conn.ReadMessage()
		if err != nil {
			var ce *websocket.CloseError
			if errors.As(err, &ce) {
				return ce.Code, err
			}
			return 0, err
		}
		c.handle(ctx, data, connID)
	}
}

func (c *Channel) handle(ctx context.Context, data []byte, connID string) {
	ev, err := decode(data)
	if err != nil {
		c.log.Warn(ctx, "dropping realtime message", "conn_id", connID, "error", err)
		return
	}
	if ev == nil {
		return
	}

	ev.ConnID = connID
	ev.At = c.now()
	c.tracker.Set(ev.Balance, balance.SourceRealtime)
	c.log.Debug(ctx, "balance event", "conn_id", connID, "kind", ev.Kind, "balance", ev.Balance.String())
	c.emit(ctx, *ev, true)
}

func (c *Channel) setState(ctx context.Context, s models.ConnState, connID string) {
	c.mu.Lock()
	prev := c.state
	c.state = s
	c.mu.Unlock()

	if prev == s {
		return
	}
	c.log.Debug(ctx, "realtime state", "from", prev, "to", s, "conn_id", connID)
	c.emit(ctx, models.Event{Kind: models.EventStateChanged, State: s, ConnID: connID, At: c.now()}, false)
}

func (c *Channel) emit(ctx context.Context, ev models.Event, mustDeliver bool) {
	if !mustDeliver {
		select {
		case c.events <- ev:
		default:
			c.log.Debug(ctx, "event buffer full, dropping", "kind", ev.Kind)
		}
		return
	}
	select {
	case c.events <- ev:
	case <-ctx.Done():
	}
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
