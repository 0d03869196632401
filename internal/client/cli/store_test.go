package cli

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/dmitrijs2005/mobank/internal/client/config"
	"github.com/dmitrijs2005/mobank/internal/client/kvstore"
	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/logging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func storeConfig(backend string) *config.Config {
	c := &config.Config{}
	c.LoadDefaults()
	c.StoreBackend = backend
	return c
}

func TestOpenStore_Backends(t *testing.T) {
	ctx := context.Background()
	mr := miniredis.RunT(t)

	sqliteCfg := storeConfig(config.BackendSQLite)
	sqliteCfg.StorePath = filepath.Join(t.TempDir(), "nested", "mobank.db")
	redisCfg := storeConfig(config.BackendRedis)
	redisCfg.RedisAddr = mr.Addr()

	tests := []struct {
		name string
		cfg  *config.Config
		want any
	}{
		{"memory", storeConfig(config.BackendMemory), &kvstore.Memory{}},
		{"sqlite", sqliteCfg, &kvstore.SQLite{}},
		{"redis", redisCfg, &kvstore.Redis{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			kv, release, err := openStore(ctx, tt.cfg, logging.Nop())
			require.NoError(t, err)
			defer func() { require.NoError(t, release()) }()

			assert.IsType(t, tt.want, kv)
			require.NoError(t, kv.Set(ctx, "k", "v"))
			got, ok, err := kv.Get(ctx, "k")
			require.NoError(t, err)
			assert.True(t, ok)
			assert.Equal(t, "v", got)
		})
	}

	assert.True(t, mr.Exists("mobank:k"))
}

func TestOpenStore_SealedWhenSecretSet(t *testing.T) {
	ctx := context.Background()
	cfg := storeConfig(config.BackendSQLite)
	cfg.StorePath = filepath.Join(t.TempDir(), "mobank.db")
	cfg.StoreSecret = "1234"

	kv, release, err := openStore(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	assert.IsType(t, &kvstore.Sealed{}, kv)
	require.NoError(t, kv.Set(ctx, "k", "v"))
	require.NoError(t, release())

	// same secret reads back, the raw store only holds ciphertext
	raw, err := kvstore.OpenSQLite(ctx, cfg.StorePath)
	require.NoError(t, err)
	defer raw.Close()
	stored, ok, err := raw.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.NotEqual(t, "v", stored)

	kv, release, err = openStore(ctx, cfg, logging.Nop())
	require.NoError(t, err)
	defer release()
	got, ok, err := kv.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "v", got)
}

func TestOpenStore_Errors(t *testing.T) {
	ctx := context.Background()

	_, _, err := openStore(ctx, storeConfig("etcd"), logging.Nop())
	assert.ErrorIs(t, err, common.ErrInvalidArgument)

	cfg := storeConfig(config.BackendRedis)
	cfg.RedisAddr = "127.0.0.1:1"
	_, _, err = openStore(ctx, cfg, logging.Nop())
	assert.ErrorIs(t, err, common.ErrPersistence)
}
