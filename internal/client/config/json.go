package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dmitrijs2005/mobank/internal/flagx"
	"github.com/dmitrijs2005/mobank/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling. Absent
// fields leave the corresponding Config value untouched, hence the
// pointers.
type JsonConfig struct {
	APIBaseURL      *string         `json:"api_base_url"`
	WSBaseURL       *string         `json:"ws_base_url"`
	StoreBackend    *string         `json:"store_backend"`
	StorePath       *string         `json:"store_path"`
	RedisAddr       *string         `json:"redis_addr"`
	StoreSecret     *string         `json:"store_secret"`
	RequestTimeout  *timex.Duration `json:"request_timeout"`
	ReconnectDelay  *timex.Duration `json:"reconnect_delay"`
	SeedRecipients  *bool           `json:"seed_recipients"`
	LogLevel        *string         `json:"log_level"`
	AvatarBucket    *string         `json:"avatar_bucket"`
	AvatarRegion    *string         `json:"avatar_region"`
	AvatarEndpoint  *string         `json:"avatar_endpoint"`
	AvatarPublicURL *string         `json:"avatar_public_url"`
}

// parseJson overlays Config with values loaded from the JSON file named by
// -c or -config. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	var jc JsonConfig
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}
	jc.apply(cfg)
}

func (jc *JsonConfig) apply(cfg *Config) {
	setStr := func(src *string, dst *string) {
		if src != nil {
			*dst = *src
		}
	}
	setDur := func(src *timex.Duration, dst *time.Duration) {
		if src != nil {
			*dst = src.Duration
		}
	}

	setStr(jc.APIBaseURL, &cfg.APIBaseURL)
	setStr(jc.WSBaseURL, &cfg.WSBaseURL)
	setStr(jc.StoreBackend, &cfg.StoreBackend)
	setStr(jc.StorePath, &cfg.StorePath)
	setStr(jc.RedisAddr, &cfg.RedisAddr)
	setStr(jc.StoreSecret, &cfg.StoreSecret)
	setDur(jc.RequestTimeout, &cfg.RequestTimeout)
	setDur(jc.ReconnectDelay, &cfg.ReconnectDelay)
	setStr(jc.LogLevel, &cfg.LogLevel)
	setStr(jc.AvatarBucket, &cfg.AvatarBucket)
	setStr(jc.AvatarRegion, &cfg.AvatarRegion)
	setStr(jc.AvatarEndpoint, &cfg.AvatarEndpoint)
	setStr(jc.AvatarPublicURL, &cfg.AvatarPublicURL)
	if jc.SeedRecipients != nil {
		cfg.SeedRecipients = *jc.SeedRecipients
	}
}
