package config

import (
	"errors"
	"io/fs"
	"os"
	"strconv"
	"time"

	"github.com/dmitrijs2005/mobank/internal/flagx"
	"github.com/joho/godotenv"
)

const envPrefix = "MOBANK_"

// loadDotEnv copies variables from a .env file into the process
// environment without overriding ones already set. The file is the one
// named by -e/-env, or ./.env when that exists.
func loadDotEnv() {
	if path := flagx.EnvFileFlags(); path != "" {
		if err := godotenv.Load(path); err != nil {
			panic(err)
		}
		return
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		panic(err)
	}
}

func parseEnv(cfg *Config) {
	parseEnvFrom(cfg, os.LookupEnv)
}

// parseEnvFrom overlays cfg with MOBANK_* variables. Unparsable durations
// or booleans panic, like malformed JSON.
func parseEnvFrom(cfg *Config, lookup func(string) (string, bool)) {
	str := func(name string, dst *string) {
		if v, ok := lookup(envPrefix + name); ok {
			*dst = v
		}
	}
	dur := func(name string, dst *time.Duration) {
		if v, ok := lookup(envPrefix + name); ok {
			d, err := time.ParseDuration(v)
			if err != nil {
				panic(err)
			}
			*dst = d
		}
	}

	str("API_URL", &cfg.APIBaseURL)
	str("WS_URL", &cfg.WSBaseURL)
	str("STORE", &cfg.StoreBackend)
	str("STORE_PATH", &cfg.StorePath)
	str("REDIS_ADDR", &cfg.RedisAddr)
	str("STORE_SECRET", &cfg.StoreSecret)
	dur("REQUEST_TIMEOUT", &cfg.RequestTimeout)
	dur("RECONNECT_DELAY", &cfg.ReconnectDelay)
	str("LOG_LEVEL", &cfg.LogLevel)
	str("AVATAR_BUCKET", &cfg.AvatarBucket)
	str("AVATAR_REGION", &cfg.AvatarRegion)
	str("AVATAR_ENDPOINT", &cfg.AvatarEndpoint)
	str("AVATAR_PUBLIC_URL", &cfg.AvatarPublicURL)
	str("AVATAR_ACCESS_KEY", &cfg.AvatarAccessKey)
	str("AVATAR_SECRET_KEY", &cfg.AvatarSecretKey)

	if v, ok := lookup(envPrefix + "SEED_RECIPIENTS"); ok {
		b, err := strconv.ParseBool(v)
		if err != nil {
			panic(err)
		}
		cfg.SeedRecipients = b
	}
}
