package kvstore

import (
	"context"
	"encoding/base64"
	"encoding/hex"
	"fmt"

	"github.com/dmitrijs2005/mobank/internal/common"
	"github.com/dmitrijs2005/mobank/internal/cryptox"
)

// SaltKey holds the hex-encoded key-derivation salt in the inner store.
// It is the only value Sealed writes in clear text.
const SaltKey = "@kv:salt"

// Sealed encrypts values before handing them to the inner store. The storage
// key is bound as additional data, so a value copied to another key fails
// to open.
type Sealed struct {
	inner Store
	key   []byte
}

// NewSealed derives the encryption key from secret and a per-store salt,
// creating the salt on first use.
func NewSealed(ctx context.Context, inner Store, secret []byte) (*Sealed, error) {
	salt, err := loadSalt(ctx, inner)
	if err != nil {
		return nil, err
	}
	return &Sealed{inner: inner, key: cryptox.DeriveKey(secret, salt)}, nil
}

func loadSalt(ctx context.Context, s Store) ([]byte, error) {
	v, ok, err := s.Get(ctx, SaltKey)
	if err != nil {
		return nil, fmt.Errorf("read salt: %w", err)
	}
	if ok {
		salt, err := hex.DecodeString(v)
		if err != nil {
			return nil, fmt.Errorf("decode salt: %w", err)
		}
		return salt, nil
	}

	salt := common.GenerateRandByteArray(cryptox.SaltSize)
	if err := s.Set(ctx, SaltKey, hex.EncodeToString(salt)); err != nil {
		return nil, fmt.Errorf("write salt: %w", err)
	}
	return salt, nil
}

func (s *Sealed) seal(key, value string) (string, error) {
	b, err := cryptox.Seal(s.key, []byte(value), []byte(key))
	if err != nil {
		return "", fmt.Errorf("seal kv[%s]: %w", key, err)
	}
	return base64.StdEncoding.EncodeToString(b), nil
}

func (s *Sealed) Get(ctx context.Context, key string) (string, bool, error) {
	v, ok, err := s.inner.Get(ctx, key)
	if err != nil || !ok {
		return "", ok, err
	}

	raw, err := base64.StdEncoding.DecodeString(v)
	if err != nil {
		return "", false, fmt.Errorf("decode kv[%s]: %w", key, err)
	}
	plain, err := cryptox.Open(s.key, raw, []byte(key))
	if err != nil {
		return "", false, fmt.Errorf("open kv[%s]: %w", key, err)
	}
	return string(plain), true, nil
}

func (s *Sealed) Set(ctx context.Context, key, value string) error {
	v, err := s.seal(key, value)
	if err != nil {
		return err
	}
	return s.inner.Set(ctx, key, v)
}

func (s *Sealed) Remove(ctx context.Context, key string) error {
	return s.inner.Remove(ctx, key)
}

func (s *Sealed) SetMany(ctx context.Context, values map[string]string) error {
	sealed := make(map[string]string, len(values))
	for k, v := range values {
		sv, err := s.seal(k, v)
		if err != nil {
			return err
		}
		sealed[k] = sv
	}
	return SetAll(ctx, s.inner, sealed)
}

func (s *Sealed) RemoveMany(ctx context.Context, keys ...string) error {
	return RemoveAll(ctx, s.inner, keys...)
}
