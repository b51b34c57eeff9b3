package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Port string
	}
	API struct {
		BaseURL string
	}
	Storage struct {
		LocalPath string
		SyncPath  string
	}
	Delivery struct {
		PeriodMinutes int
		SnoozeMinutes int
	}
	Connectivity struct {
		ProbeSeconds int
	}
	Push struct {
		GatewayURL string
		Token      string
		User       string
	}
}

// LoadConfig reads the YAML config at path, with SCRIPTURE_* environment
// overrides. A missing file is fine; defaults cover every knob.
func LoadConfig(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetEnvPrefix("SCRIPTURE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("server.port", ":8090")
	v.SetDefault("api.base_url", "http://localhost:8000/v1")
	v.SetDefault("storage.local_path", "data/local")
	v.SetDefault("storage.sync_path", "data/sync")
	v.SetDefault("delivery.period_minutes", 15)
	v.SetDefault("delivery.snooze_minutes", 30)
	v.SetDefault("connectivity.probe_seconds", 60)
	v.SetDefault("push.gateway_url", "")
	v.SetDefault("push.token", "")
	v.SetDefault("push.user", "")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("read config %s: %w", path, err)
		}
	}

	cfg := &Config{}
	cfg.Server.Port = v.GetString("server.port")
	cfg.API.BaseURL = v.GetString("api.base_url")
	cfg.Storage.LocalPath = v.GetString("storage.local_path")
	cfg.Storage.SyncPath = v.GetString("storage.sync_path")
	cfg.Delivery.PeriodMinutes = v.GetInt("delivery.period_minutes")
	cfg.Delivery.SnoozeMinutes = v.GetInt("delivery.snooze_minutes")
	cfg.Connectivity.ProbeSeconds = v.GetInt("connectivity.probe_seconds")
	cfg.Push.GatewayURL = v.GetString("push.gateway_url")
	cfg.Push.Token = v.GetString("push.token")
	cfg.Push.User = v.GetString("push.user")
	return cfg, nil
}
