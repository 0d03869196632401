package kvstore

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupSQLite(t *testing.T) *SQLite {
	t.Helper()
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSQLite_Contract(t *testing.T) {
	runStoreContract(t, setupSQLite(t))
}

func TestRunMigrations_Idempotent(t *testing.T) {
	s := setupSQLite(t)
	require.NoError(t, RunMigrations(context.Background(), s.DB()))

	var n int
	require.NoError(t, s.DB().QueryRow(`SELECT COUNT(*) FROM kv`).Scan(&n))
	assert.Equal(t, 0, n)
}

func TestSQLite_SetMany_IsAtomic(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetMany(ctx, map[string]string{
		"accessToken":  "a",
		"refreshToken": "r",
		"userData":     `{"UserID":"u1"}`,
	}))

	keys, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"accessToken", "refreshToken", "userData"}, keys)

	cancelled, cancel := context.WithCancel(ctx)
	cancel()
	err = s.SetMany(cancelled, map[string]string{"accessToken": "b"})
	require.Error(t, err)

	v, _, err := s.Get(ctx, "accessToken")
	require.NoError(t, err)
	assert.Equal(t, "a", v)
}

func TestSQLite_RemoveMany(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.SetMany(ctx, map[string]string{"a": "1", "b": "2", "c": "3"}))
	require.NoError(t, s.RemoveMany(ctx, "a", "c"))

	keys, err := s.Keys(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, []string{"b"}, keys)
}

func TestSQLite_Keys_FiltersByPrefix(t *testing.T) {
	s := setupSQLite(t)
	ctx := context.Background()

	require.NoError(t, s.Set(ctx, "@recipients:u2", "[]"))
	require.NoError(t, s.Set(ctx, "@recipients:u1", "[]"))
	require.NoError(t, s.Set(ctx, "accessToken", "t"))

	keys, err := s.Keys(ctx, "@recipients:")
	require.NoError(t, err)
	assert.Equal(t, []string{"@recipients:u1", "@recipients:u2"}, keys)
}

func TestSQLite_ClosedDB_ReturnsErrors(t *testing.T) {
	s, err := OpenSQLite(context.Background(), ":memory:")
	require.NoError(t, err)
	require.NoError(t, s.Close())

	ctx := context.Background()
	_, _, err = s.Get(ctx, "k")
	assert.ErrorContains(t, err, "failed to get kv[k]")
	assert.ErrorContains(t, s.Set(ctx, "k", "v"), "failed to set kv[k]")
	assert.ErrorContains(t, s.Remove(ctx, "k"), "failed to remove kv[k]")
}
