package services

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/dmitrijs2005/mobank/internal/client/api"
	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/realtime"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

// BalanceService keeps the balance snapshot current.
//
// Contract:
//   - Refresh: read the profile and overwrite the snapshot. A rejected access
//     token triggers one shared credential refresh and a single retry.
//   - Current: the last snapshot received from either source.
//   - Watch: open the realtime channel for the current session.
//   - Stop: tear down every running watch (logout).
type BalanceService interface {
	Refresh(ctx context.Context) (balance.Snapshot, error)
	Current() balance.Snapshot
	Watch(ctx context.Context) (*Subscription, error)
	Stop()
}

type balanceService struct {
	api       api.Client
	sessions  *session.Store
	refresher *session.Refresher
	tracker   *balance.Tracker
	rtConfig  realtime.Config
	log       logging.Logger

	mu     sync.Mutex
	nextID int
	subs   map[int]*Subscription
}

func NewBalanceService(client api.Client, sessions *session.Store, refresher *session.Refresher,
	tracker *balance.Tracker, rtConfig realtime.Config, log logging.Logger) BalanceService {
	return &balanceService{
		api:       client,
		sessions:  sessions,
		refresher: refresher,
		tracker:   tracker,
		rtConfig:  rtConfig,
		log:       log.With("component", "balance"),
		subs:      make(map[int]*Subscription),
	}
}

func (s *balanceService) Refresh(ctx context.Context) (balance.Snapshot, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return balance.Snapshot{}, common.ErrNoSession
	}

	p, err := s.api.Me(ctx, sess.AccessToken)
	if errors.Is(err, common.ErrCredentialRejected) {
		s.log.Info(ctx, "profile read rejected, refreshing credentials")
		fresh, rerr := s.refresher.Refresh(ctx, sess.AccessToken)
		if rerr != nil {
			return balance.Snapshot{}, fmt.Errorf("refresh credentials: %w", rerr)
		}
		p, err = s.api.Me(ctx, fresh.AccessToken)
	}
	if err != nil {
		return balance.Snapshot{}, fmt.Errorf("read profile: %w", err)
	}
	if p.Balance == nil {
		return balance.Snapshot{}, fmt.Errorf("profile has no balance: %w", common.ErrMalformedResponse)
	}

	return s.tracker.Set(*p.Balance, balance.SourceProfile), nil
}

func (s *balanceService) Current() balance.Snapshot {
	return s.tracker.Get()
}

// Subscription is a running realtime channel.
type Subscription struct {
	// Events is closed once the channel stops.
	Events <-chan models.Event

	cancel context.CancelFunc
	done   chan struct{}
	err    error
}

// Wait blocks until the channel stops and returns why it stopped; nil after
// Stop or context cancellation.
func (s *Subscription) Wait() error {
	<-s.done
	return s.err
}

func (s *Subscription) Stop() {
	s.cancel()
}

func (s *balanceService) Watch(ctx context.Context) (*Subscription, error) {
	if s.sessions.Current() == nil {
		return nil, common.ErrNoSession
	}

	ctx, cancel := context.WithCancel(ctx)
	ch := realtime.New(s.rtConfig, s.sessions, s.refresher, s.tracker, s.log)
	sub := &Subscription{Events: ch.Events(), cancel: cancel, done: make(chan struct{})}

	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.subs[id] = sub
	s.mu.Unlock()

	go func() {
		defer close(sub.done)
		sub.err = ch.Run(ctx)
		cancel()

		s.mu.Lock()
		delete(s.subs, id)
		s.mu.Unlock()
	}()
	return sub, nil
}

func (s *balanceService) Stop() {
	s.mu.Lock()
	subs := make([]*Subscription, 0, len(s.subs))
	for _, sub := range s.subs {
		subs = append(subs, sub)
	}
	s.mu.Unlock()

	for _, sub := range subs {
		sub.Stop()
	}
}
