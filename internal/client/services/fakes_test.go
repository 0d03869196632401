package services

import (
	"context"
	"io"
	"sync"
	"testing"

	"github.com/dmitrijs2005/mobank/internal/client/api"
	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/kvstore"
	"github.com/dmitrijs2005/mobank/internal/client/models"
	"github.com/dmitrijs2005/mobank/internal/client/recipients"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
)

type fakeAPI struct {
	mu sync.Mutex

	users     map[string]models.Profile
	validTok  map[string]bool
	refreshes int
	meCalls   int
	refreshFn func(refresh string) (session.TokenPair, error)
}

var _ api.Client = (*fakeAPI)(nil)

func newFakeAPI() *fakeAPI {
	return &fakeAPI{
		users:    map[string]models.Profile{},
		validTok: map[string]bool{},
	}
}

func (f *fakeAPI) addUser(login string, p models.Profile) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.users[login] = p
}

func (f *fakeAPI) Login(ctx context.Context, loginID, password string) (*session.Credentials, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	p, ok := f.users[loginID]
	if !ok || password != "secret" {
		return nil, &api.Error{Status: 401, Message: "invalid credentials"}
	}
	access := "a-" + loginID
	f.validTok[access] = true
	return &session.Credentials{AccessToken: access, RefreshToken: "r-" + loginID, Profile: p}, nil
}

func (f *fakeAPI) Refresh(ctx context.Context, refreshToken string) (session.TokenPair, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.refreshes++
	if f.refreshFn != nil {
		return f.refreshFn(refreshToken)
	}
	access := "a2-" + refreshToken
	f.validTok[access] = true
	return session.TokenPair{AccessToken: access, RefreshToken: refreshToken}, nil
}

func (f *fakeAPI) Me(ctx context.Context, accessToken string) (*models.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.meCalls++
	if !f.validTok[accessToken] {
		return nil, &api.Error{Status: 401, Message: "token expired"}
	}
	for _, p := range f.users {
		return &p, nil
	}
	return nil, &api.Error{Status: 404, Message: "not found"}
}

func (f *fakeAPI) revoke(token string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	delete(f.validTok, token)
}

type fakeUploader struct {
	userID, filename string
	body             []byte
	err              error
}

func (u *fakeUploader) Upload(ctx context.Context, userID, filename string, body io.Reader) (string, error) {
	if u.err != nil {
		return "", u.err
	}
	b, err := io.ReadAll(body)
	if err != nil {
		return "", err
	}
	u.userID, u.filename, u.body = userID, filename, b
	return "https://cdn.example.com/avatars/" + userID + "/" + filename, nil
}

type fixture struct {
	api        *fakeAPI
	kv         *kvstore.Memory
	sessions   *session.Store
	refresher  *session.Refresher
	cache      *recipients.Cache
	tracker    *balance.Tracker
	balances   BalanceService
	auth       AuthService
	recipients RecipientService
	uploader   *fakeUploader
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	log := logging.Nop()

	f := &fixture{api: newFakeAPI(), kv: kvstore.NewMemory(), tracker: balance.NewTracker(), uploader: &fakeUploader{}}
	bal := decimal.RequireFromString("100.00")
	f.api.addUser("alice", models.Profile{UserID: "42", Username: "alice", Balance: &bal})

	f.sessions = session.NewStore(f.kv, log)
	f.refresher = session.NewRefresher(f.sessions, f.api, 0, log)
	f.cache = recipients.NewCache(f.kv, log)
	f.balances = NewBalanceService(f.api, f.sessions, f.refresher, f.tracker, realtimeConfigFor(""), log)
	f.auth = NewAuthService(f.api, f.sessions, f.cache, f.tracker, f.balances, true, log)
	f.recipients = NewRecipientService(f.sessions, f.cache, f.uploader, log)
	return f
}

func (f *fixture) login(t *testing.T) *models.Session {
	t.Helper()
	sess, err := f.auth.Login(context.Background(), "alice", "secret")
	require.NoError(t, err)
	return sess
}
