package recipients

import (
	"context"

	"github.com/dmitrijs2005/mobank/internal/client/models"
)

// UserRecipients is a Cache bound to one user's partition.
type UserRecipients struct {
	cache  *Cache
	userID string
}

// ForUser binds subsequent operations to userID. An empty id is rejected
// with common.ErrInvalidArgument.
func (c *Cache) ForUser(userID string) (*UserRecipients, error) {
	if _, err := Key(userID); err != nil {
		return nil, err
	}
	return &UserRecipients{cache: c, userID: userID}, nil
}

func (u *UserRecipients) UserID() string {
	return u.userID
}

func (u *UserRecipients) Get(ctx context.Context) ([]models.Recipient, error) {
	return u.cache.Get(ctx, u.userID)
}

func (u *UserRecipients) Save(ctx context.Context, r models.Recipient) (models.Recipient, error) {
	return u.cache.Save(ctx, u.userID, r)
}

func (u *UserRecipients) Delete(ctx context.Context, ids ...int) ([]models.Recipient, error) {
	return u.cache.Delete(ctx, u.userID, ids...)
}

func (u *UserRecipients) Clear(ctx context.Context) error {
	return u.cache.Clear(ctx, u.userID)
}

func (u *UserRecipients) ResetToLocalStorage(ctx context.Context) ([]models.Recipient, error) {
	return u.cache.ResetToLocalStorage(ctx, u.userID)
}

func (u *UserRecipients) Seed(ctx context.Context, starter []models.Recipient) ([]models.Recipient, error) {
	return u.cache.Seed(ctx, u.userID, starter)
}

func (u *UserRecipients) LoadOrSeed(ctx context.Context) ([]models.Recipient, bool, error) {
	return u.cache.LoadOrSeed(ctx, u.userID)
}
