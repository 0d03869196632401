// Package recipients is the per-user recipient cache.
//
// Each user's list lives under its own durable key (@recipients:<userID>).
// Every mutation is a full read-modify-write of that key followed by a
// verifying read. The cache applies no locking: overlapping writers for the
// same user race and the last write wins.
package recipients

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/mobank/internal/client/kvstore"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

type Cache struct {
	kv      kvstore.Store
	log     logging.Logger
	starter func() []models.Recipient
}

type Option func(*Cache)

// WithStarter overrides the seed list used by LoadOrSeed.
func WithStarter(rs []models.Recipient) Option {
	return func(c *Cache) {
		c.starter = func() []models.Recipient { return append([]models.Recipient(nil), rs...) }
	}
}

func NewCache(kv kvstore.Store, log logging.Logger, opts ...Option) *Cache {
	c := &Cache{kv: kv, log: log.With("component", "recipients"), starter: Starter}
	for _, o := range opts {
		o(c)
	}
	return c
}

// Key returns the durable key of userID's list.
func Key(userID string) (string, error) {
	if strings.TrimSpace(userID) == "" {
		return "", fmt.Errorf("user id is required: %w", common.ErrInvalidArgument)
	}
	return common.RecipientsKeyPrefix + userID, nil
}

// Get returns userID's recipients. A user with no stored list has an empty
// list, not an error.
func (c *Cache) Get(ctx context.Context, userID string) ([]models.Recipient, error) {
	key, err := Key(userID)
	if err != nil {
		return nil, err
	}

	rs, found, err := c.read(ctx, key)
	if err != nil {
		c.log.Error(ctx, "failed to retrieve recipients", "user_id", userID, "error", err)
		return nil, err
	}
	if !found {
		c.log.Debug(ctx, "no recipients stored", "user_id", userID)
		return []models.Recipient{}, nil
	}

	c.log.Debug(ctx, "retrieved recipients", "user_id", userID, "count", len(rs))
	return rs, nil
}

// Save appends r with the next free id (max + 1, or 1 for an empty list)
// and the default image when r has none.
func (c *Cache) Save(ctx context.Context, userID string, r models.Recipient) (models.Recipient, error) {
	key, err := Key(userID)
	if err != nil {
		return models.Recipient{}, err
	}
	if strings.TrimSpace(r.Name) == "" {
		return models.Recipient{}, fmt.Errorf("recipient name is required: %w", common.ErrInvalidArgument)
	}

	rs, _, err := c.read(ctx, key)
	if err != nil {
		return models.Recipient{}, err
	}

	r.RecipientID = nextID(rs)
	if r.Image == "" {
		r.Image = models.DefaultRecipientImage
	}
	rs = append(rs, r)

	saved, err := c.writeVerified(ctx, key, rs)
	if err != nil {
		c.log.Error(ctx, "failed to save recipient", "user_id", userID, "error", err)
		return models.Recipient{}, err
	}
	if !contains(saved, r.RecipientID) {
		return models.Recipient{}, fmt.Errorf("recipient %d missing after save: %w", r.RecipientID, common.ErrPersistence)
	}

	c.log.Info(ctx, "saved recipient", "user_id", userID, "recipient_id", r.RecipientID, "count", len(saved))
	return r, nil
}

// Delete removes the recipients with the given ids, or every recipient when
// no id is given, and returns the list as stored afterwards.
func (c *Cache) Delete(ctx context.Context, userID string, ids ...int) ([]models.Recipient, error) {
	key, err := Key(userID)
	if err != nil {
		return nil, err
	}

	rs, _, err := c.read(ctx, key)
	if err != nil {
		return nil, err
	}

	kept := []models.Recipient{}
	if len(ids) > 0 {
		drop := make(map[int]struct{}, len(ids))
		for _, id := range ids {
			drop[id] = struct{}{}
		}
		for _, r := range rs {
			if _, ok := drop[r.RecipientID]; !ok {
				kept = append(kept, r)
			}
		}
	}

	saved, err := c.writeVerified(ctx, key, kept)
	if err != nil {
		c.log.Error(ctx, "failed to delete recipients", "user_id", userID, "error", err)
		return nil, err
	}

	c.log.Info(ctx, "deleted recipients", "user_id", userID, "ids", ids, "remaining", len(saved))
	return saved, nil
}

// Clear removes userID's key entirely and checks it is gone.
func (c *Cache) Clear(ctx context.Context, userID string) error {
	key, err := Key(userID)
	if err != nil {
		return err
	}

	if err := c.kv.Remove(ctx, key); err != nil {
		return fmt.Errorf("clear recipients: %w: %w", common.ErrPersistence, err)
	}

	_, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return fmt.Errorf("verify clear: %w: %w", common.ErrPersistence, err)
	}
	if ok {
		return fmt.Errorf("recipients for %s still present after clear: %w", userID, common.ErrPersistence)
	}

	c.log.Info(ctx, "cleared recipients", "user_id", userID)
	return nil
}

// ResetToLocalStorage drops nothing and re-reads the list from durable
// storage, returning the authoritative copy.
func (c *Cache) ResetToLocalStorage(ctx context.Context, userID string) ([]models.Recipient, error) {
	rs, err := c.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	c.log.Info(ctx, "reset to local storage", "user_id", userID, "count", len(rs))
	return rs, nil
}

// Seed replaces userID's list with starter. Recipients without an id are
// numbered after the highest id in starter.
func (c *Cache) Seed(ctx context.Context, userID string, starter []models.Recipient) ([]models.Recipient, error) {
	key, err := Key(userID)
	if err != nil {
		return nil, err
	}

	rs := make([]models.Recipient, 0, len(starter))
	seen := make(map[int]struct{}, len(starter))
	for _, r := range starter {
		if r.RecipientID <= 0 {
			continue
		}
		if _, dup := seen[r.RecipientID]; dup {
			return nil, fmt.Errorf("duplicate seed recipient id %d: %w", r.RecipientID, common.ErrInvalidArgument)
		}
		seen[r.RecipientID] = struct{}{}
	}
	next := nextID(starter)
	for _, r := range starter {
		if r.RecipientID <= 0 {
			r.RecipientID = next
			next++
		}
		if r.Image == "" {
			r.Image = models.DefaultRecipientImage
		}
		rs = append(rs, r)
	}

	if err := c.kv.Remove(ctx, key); err != nil {
		return nil, fmt.Errorf("remove before seed: %w: %w", common.ErrPersistence, err)
	}
	saved, err := c.writeVerified(ctx, key, rs)
	if err != nil {
		return nil, err
	}
	if len(saved) != len(rs) {
		return nil, fmt.Errorf("seeded %d recipients, read back %d: %w", len(rs), len(saved), common.ErrPersistence)
	}
	if err := c.kv.Set(ctx, common.RecipientsSeededKeyPrefix+userID, "1"); err != nil {
		return nil, fmt.Errorf("mark seeded: %w: %w", common.ErrPersistence, err)
	}

	c.log.Info(ctx, "seeded recipients", "user_id", userID, "count", len(saved))
	return saved, nil
}

// LoadOrSeed returns userID's list, seeding it with the starter set the
// first time the user is ever seen on this device. seeded reports whether
// seeding happened.
func (c *Cache) LoadOrSeed(ctx context.Context, userID string) (rs []models.Recipient, seeded bool, err error) {
	key, err := Key(userID)
	if err != nil {
		return nil, false, err
	}

	_, listed, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("load recipients: %w: %w", common.ErrPersistence, err)
	}
	_, marked, err := c.kv.Get(ctx, common.RecipientsSeededKeyPrefix+userID)
	if err != nil {
		return nil, false, fmt.Errorf("load seed marker: %w: %w", common.ErrPersistence, err)
	}

	if listed || marked {
		rs, err = c.Get(ctx, userID)
		return rs, false, err
	}

	rs, err = c.Seed(ctx, userID, c.starter())
	return rs, err == nil, err
}

func (c *Cache) read(ctx context.Context, key string) ([]models.Recipient, bool, error) {
	v, ok, err := c.kv.Get(ctx, key)
	if err != nil {
		return nil, false, fmt.Errorf("read %s: %w: %w", key, common.ErrPersistence, err)
	}
	if !ok {
		return []models.Recipient{}, false, nil
	}

	var rs []models.Recipient
	if err := json.Unmarshal([]byte(v), &rs); err != nil {
		return nil, true, fmt.Errorf("decode %s: %w: %w", key, common.ErrPersistence, err)
	}
	if rs == nil {
		rs = []models.Recipient{}
	}
	return rs, true, nil
}

func (c *Cache) writeVerified(ctx context.Context, key string, rs []models.Recipient) ([]models.Recipient, error) {
	b, err := json.Marshal(rs)
	if err != nil {
		return nil, fmt.Errorf("encode %s: %w: %w", key, common.ErrPersistence, err)
	}
	if err := c.kv.Set(ctx, key, string(b)); err != nil {
		return nil, fmt.Errorf("write %s: %w: %w", key, common.ErrPersistence, err)
	}

	saved, found, err := c.read(ctx, key)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("%s missing after write: %w", key, common.ErrPersistence)
	}
	return saved, nil
}

func nextID(rs []models.Recipient) int {
	highest := 0
	for _, r := range rs {
		if r.RecipientID > highest {
			highest = r.RecipientID
		}
	}
	return highest + 1
}

func contains(rs []models.Recipient, id int) bool {
	for _, r := range rs {
		if r.RecipientID == id {
			return true
		}
	}
	return false
}
