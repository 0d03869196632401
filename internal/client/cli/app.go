package cli

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	"github.com/dmitrijs2005/mobank/internal/client/api"
	"github.com/dmitrijs2005/mobank/internal/client/avatars"
	"github.com/dmitrijs2005/mobank/internal/client/balance"
	"github.com/dmitrijs2005/mobank/internal/client/config"
	"github.com/dmitrijs2005/mobank/internal/client/realtime"
	"github.com/dmitrijs2005/mobank/internal/client/recipients"
	"github.com/dmitrijs2005/mobank/internal/client/services"
	"github.com/dmitrijs2005/mobank/internal/client/session"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

// Mode is the state of the live balance connection shown in the prompt.
type Mode string

// ModeOffline means no watch is running.
const ModeOffline Mode = "offline"

type App struct {
	config     *config.Config
	log        logging.Logger
	auth       services.AuthService
	balances   services.BalanceService
	recipients services.RecipientService
	closers    []func() error
	reader     *bufio.Reader
	out        io.Writer

	mu    sync.Mutex
	Mode  Mode
	watch *services.Subscription
}

// NewApp opens the configured store and wires the client core.
func NewApp(ctx context.Context, c *config.Config, log logging.Logger) (*App, error) {
	kv, closeStore, err := openStore(ctx, c, log)
	if err != nil {
		return nil, err
	}

	apiClient := api.NewHTTPClient(c.APIBaseURL, c.RequestTimeout, log)
	sessions := session.NewStore(kv, log)
	refresher := session.NewRefresher(sessions, apiClient, c.RequestTimeout, log)
	cache := recipients.NewCache(kv, log)
	tracker := balance.NewTracker()

	rt := realtime.Config{
		BaseURL:          c.WSBaseURL,
		ReconnectDelay:   c.ReconnectDelay,
		HandshakeTimeout: c.RequestTimeout,
	}
	bs := services.NewBalanceService(apiClient, sessions, refresher, tracker, rt, log)
	as := services.NewAuthService(apiClient, sessions, cache, tracker, bs, c.SeedRecipients, log)

	var uploader avatars.Uploader
	if c.AvatarsEnabled() {
		u, err := avatars.NewS3Uploader(ctx, avatars.Config{
			Bucket:    c.AvatarBucket,
			Region:    c.AvatarRegion,
			Endpoint:  c.AvatarEndpoint,
			PublicURL: c.AvatarPublicURL,
			AccessKey: c.AvatarAccessKey,
			SecretKey: c.AvatarSecretKey,
		}, log)
		if err != nil {
			_ = closeStore()
			return nil, fmt.Errorf("avatar storage: %w", err)
		}
		uploader = u
	}
	rs := services.NewRecipientService(sessions, cache, uploader, log)

	a := newApp(as, bs, rs, os.Stdin, os.Stdout, log)
	a.config = c
	a.closers = append(a.closers, closeStore)
	return a, nil
}

func newApp(as services.AuthService, bs services.BalanceService, rs services.RecipientService,
	in io.Reader, out io.Writer, log logging.Logger) *App {
	return &App{
		log:        log,
		auth:       as,
		balances:   bs,
		recipients: rs,
		reader:     bufio.NewReader(in),
		out:        out,
		Mode:       ModeOffline,
	}
}

func (a *App) setMode(mode Mode) {
	a.mu.Lock()
	changed := a.Mode != mode
	a.Mode = mode
	a.mu.Unlock()

	if changed {
		a.log.Info(context.Background(), "switched mode", "mode", mode)
	}
}

func (a *App) mode() Mode {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.Mode
}

// Run resumes or establishes a session and serves the REPL until the user
// exits or input ends.
func (a *App) Run(ctx context.Context) {
	defer a.Close()
	a.Root(ctx)
}

// Close stops the live watch and releases the store.
func (a *App) Close() {
	a.stopWatch()
	for _, c := range a.closers {
		if err := c(); err != nil {
			a.log.Warn(context.Background(), "close failed", "error", err)
		}
	}
	a.closers = nil
}

func (a *App) isLoggedIn() bool {
	return a.auth.Current() != nil
}
