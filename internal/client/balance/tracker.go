// Package balance holds the in-memory balance snapshot shown to the user.
//
// The client never computes a balance. It only overwrites the snapshot with
// values received from the profile API or the realtime channel, in receipt
// order: the last value received wins regardless of its size.
package balance

import (
	"context"
	"sync"
	"time"

	"github.com/shopspring/decimal"
)

// Source names where a balance value came from.
type Source string

const (
	SourceProfile  Source = "profile"
	SourceRealtime Source = "realtime"
)

type Snapshot struct {
	Value  decimal.Decimal
	Source Source
	At     time.Time
	Known  bool
}

type Tracker struct {
	mu   sync.Mutex
	snap Snapshot
	subs map[int]chan Snapshot
	next int
	now  func() time.Time
}

func NewTracker() *Tracker {
	return &Tracker{subs: make(map[int]chan Snapshot), now: time.Now}
}

// Set records v as the current balance and notifies watchers.
func (t *Tracker) Set(v decimal.Decimal, src Source) Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()

	t.snap = Snapshot{Value: v, Source: src, At: t.now(), Known: true}
	for _, ch := range t.subs {
		offer(ch, t.snap)
	}
	return t.snap
}

func (t *Tracker) Get() Snapshot {
	t.mu.Lock()
	defer t.mu.Unlock()
	return t.snap
}

// Reset forgets the balance, e.g. on logout.
func (t *Tracker) Reset() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.snap = Snapshot{}
}

// Watch streams snapshots until ctx is done. A slow reader only ever sees
// the latest value; the current snapshot, if known, is delivered first.
func (t *Tracker) Watch(ctx context.Context) <-chan Snapshot {
	ch := make(chan Snapshot, 1)

	t.mu.Lock()
	id := t.next
	t.next++
	t.subs[id] = ch
	if t.snap.Known {
		ch <- t.snap
	}
	t.mu.Unlock()

	go func() {
		<-ctx.Done()
		t.mu.Lock()
		delete(t.subs, id)
		close(ch)
		t.mu.Unlock()
	}()
	return ch
}

// offer replaces any undelivered snapshot in ch with s.
func offer(ch chan Snapshot, s Snapshot) {
	select {
	case ch <- s:
		return
	default:
	}
	select {
	case <-ch:
	default:
	}
	select {
	case ch <- s:
	default:
	}
}
