package api

import (
	"context"

	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/session"
)

type Client interface {
	Login(ctx context.Context, loginID, password string) (*session.Credentials, error)
	Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error)
	Me(ctx context.Context, accessToken string) (*models.Profile, error)
}
