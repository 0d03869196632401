package cli

import (
	"context"
	"fmt"

	"github.com/dmitrijs2005/mobank/internal/client/config"
	"github.com/dmitrijs2005/mobank/internal/client/kvstore"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/filex"
	"github.com/dmitrijs2005/mobank/internal/logging"
)

const redisNamespace = "mobank:"

func nopClose() error { return nil }

// openStore builds the configured key-value backend, sealed when a store
// secret is set. The returned func releases it.
func openStore(ctx context.Context, c *config.Config, log logging.Logger) (kvstore.Store, func() error, error) {
	var (
		kv      kvstore.Store
		release = nopClose
	)

	switch c.StoreBackend {
	case config.BackendSQLite, "":
		path, err := filex.EnsureParentDir(c.StorePath)
		if err != nil {
			return nil, nil, fmt.Errorf("store path: %w", err)
		}
		s, err := kvstore.OpenSQLite(ctx, path)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w: %w", common.ErrPersistence, err)
		}
		kv, release = s, s.Close

	case config.BackendRedis:
		client, err := kvstore.DialRedis(ctx, c.RedisAddr, "", 0)
		if err != nil {
			return nil, nil, fmt.Errorf("open store: %w: %w", common.ErrPersistence, err)
		}
		kv, release = kvstore.NewRedis(client, redisNamespace), client.Close

	case config.BackendMemory:
		kv = kvstore.NewMemory()

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q: %w", c.StoreBackend, common.ErrInvalidArgument)
	}

	if c.StoreSecret != "" {
		sealed, err := kvstore.NewSealed(ctx, kv, []byte(c.StoreSecret))
		if err != nil {
			_ = release()
			return nil, nil, fmt.Errorf("seal store: %w", err)
		}
		kv = sealed
	}

	log.Info(ctx, "store opened", "backend", c.StoreBackend, "sealed", c.StoreSecret != "")
	return kv, release, nil
}
