package services

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/dmitrijs2005/mobank/internal/client/avatars"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/recipients"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

// RecipientService runs recipient cache operations for the logged-in user.
type RecipientService interface {
	List(ctx context.Context) ([]models.Recipient, error)
	// Add saves r. A non-empty imagePath is uploaded when an avatar store
	// is configured and kept as a local reference otherwise.
	Add(ctx context.Context, r models.Recipient, imagePath string) (models.Recipient, error)
	Delete(ctx context.Context, ids ...int) ([]models.Recipient, error)
	Clear(ctx context.Context) error
	Reset(ctx context.Context) ([]models.Recipient, error)
	Reseed(ctx context.Context) ([]models.Recipient, error)
}

type recipientService struct {
	sessions *session.Store
	cache    *recipients.Cache
	uploader avatars.Uploader
	log      logging.Logger
}

// NewRecipientService builds the service; uploader may be nil.
func NewRecipientService(sessions *session.Store, cache *recipients.Cache, uploader avatars.Uploader, log logging.Logger) RecipientService {
	return &recipientService{sessions: sessions, cache: cache, uploader: uploader, log: log.With("component", "recipients")}
}

func (s *recipientService) user() (*recipients.UserRecipients, error) {
	sess := s.sessions.Current()
	if sess == nil {
		return nil, common.ErrNoSession
	}
	return s.cache.ForUser(sess.UserID)
}

func (s *recipientService) List(ctx context.Context) ([]models.Recipient, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	return u.Get(ctx)
}

func (s *recipientService) Add(ctx context.Context, r models.Recipient, imagePath string) (models.Recipient, error) {
	u, err := s.user()
	if err != nil {
		return models.Recipient{}, err
	}

	if imagePath != "" {
		img, err := s.image(ctx, u.UserID(), imagePath)
		if err != nil {
			return models.Recipient{}, err
		}
		r.Image = img
	}
	return u.Save(ctx, r)
}

func (s *recipientService) image(ctx context.Context, userID, path string) (string, error) {
	if s.uploader == nil {
		return path, nil
	}

	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("open image: %w: %w", common.ErrInvalidArgument, err)
	}
	defer f.Close()

	return s.upload(ctx, userID, filepath.Base(path), f)
}

func (s *recipientService) upload(ctx context.Context, userID, name string, body io.Reader) (string, error) {
	url, err := s.uploader.Upload(ctx, userID, name, body)
	if err != nil {
		return "", fmt.Errorf("upload image: %w", err)
	}
	return url, nil
}

func (s *recipientService) Delete(ctx context.Context, ids ...int) ([]models.Recipient, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	return u.Delete(ctx, ids...)
}

func (s *recipientService) Clear(ctx context.Context) error {
	u, err := s.user()
	if err != nil {
		return err
	}
	return u.Clear(ctx)
}

func (s *recipientService) Reset(ctx context.Context) ([]models.Recipient, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	return u.ResetToLocalStorage(ctx)
}

// Reseed replaces the list with the starter set.
func (s *recipientService) Reseed(ctx context.Context) ([]models.Recipient, error) {
	u, err := s.user()
	if err != nil {
		return nil, err
	}
	return u.Seed(ctx, recipients.Starter())
}
