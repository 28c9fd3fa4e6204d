package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Server struct {
		Addr        string `mapstructure:"addr"`
		MetricsPort string `mapstructure:"metrics_port"`
		Mode        string `mapstructure:"mode"`
	} `mapstructure:"server"`
	Deck struct {
		// ContentPath overrides the embedded research document when set.
		ContentPath string `mapstructure:"content_path"`
	} `mapstructure:"deck"`
	Telemetry struct {
		BurstPaceMS int `mapstructure:"burst_pace_ms"`
	} `mapstructure:"telemetry"`
	Session struct {
		Secret     string `mapstructure:"secret"`
		CookieName string `mapstructure:"cookie_name"`
		TTLHours   int    `mapstructure:"ttl_hours"`
	} `mapstructure:"session"`
	Database struct {
		Driver   string `mapstructure:"driver"`
		DSN      string `mapstructure:"dsn"`
		Host     string `mapstructure:"host"`
		Port     string `mapstructure:"port"`
		User     string `mapstructure:"user"`
		Password string `mapstructure:"password"`
		Name     string `mapstructure:"name"`
	} `mapstructure:"database"`
	Storage struct {
		Provider      string `mapstructure:"provider"`
		LocalStorage  string `mapstructure:"local_path"`
		KeyID         string `mapstructure:"key_id"`
		AppKey        string `mapstructure:"app_key"`
		Endpoint      string `mapstructure:"endpoint"`
		Region        string `mapstructure:"region"`
		BucketExports string `mapstructure:"bucket_exports"`
	} `mapstructure:"storage"`
	MQTT struct {
		Broker   string `mapstructure:"broker"`
		Topic    string `mapstructure:"topic"`
		ClientID string `mapstructure:"client_id"`
	} `mapstructure:"mqtt"`
}

// BurstPace is the delay between two revealed burst readings.
func (c *Config) BurstPace() time.Duration {
	return time.Duration(c.Telemetry.BurstPaceMS) * time.Millisecond
}

// SessionTTL is the lifetime of the session cookie, 12h when unset.
func (c *Config) SessionTTL() time.Duration {
	if c.Session.TTLHours <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(c.Session.TTLHours) * time.Hour
}

var keys = []string{
	"server.addr",
	"server.metrics_port",
	"server.mode",
	"deck.content_path",
	"telemetry.burst_pace_ms",
	"session.secret",
	"session.cookie_name",
	"session.ttl_hours",
	"database.driver",
	"database.dsn",
	"database.host",
	"database.port",
	"database.user",
	"database.password",
	"database.name",
	"storage.provider",
	"storage.local_path",
	"storage.key_id",
	"storage.app_key",
	"storage.endpoint",
	"storage.region",
	"storage.bucket_exports",
	"mqtt.broker",
	"mqtt.topic",
	"mqtt.client_id",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.addr", ":8080")
	v.SetDefault("server.metrics_port", ":9091")
	v.SetDefault("server.mode", "release")

	v.SetDefault("telemetry.burst_pace_ms", 800)

	v.SetDefault("session.cookie_name", "microcasa_session")
	v.SetDefault("session.ttl_hours", 12)

	// In-memory sqlite: sessions live as long as the process.
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.dsn", "file:microcasa?mode=memory&cache=shared")

	v.SetDefault("storage.provider", "local")
	v.SetDefault("storage.local_path", "./exports")
	v.SetDefault("storage.bucket_exports", "telemetry")

	v.SetDefault("mqtt.topic", "microcasa/telemetry")
	v.SetDefault("mqtt.client_id", "microcasa-deck")
}

// Load reads config.yaml (optional) and MICROCASA_* environment variables.
// configFile may be empty to search the working directory.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix("MICROCASA")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for _, k := range keys {
		if err := v.BindEnv(k); err != nil {
			return nil, err
		}
	}
	setDefaults(v)

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("../")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	if cfg.Session.Secret == "" {
		return nil, errors.New("session secret is missing (MICROCASA_SESSION_SECRET)")
	}
	if cfg.Telemetry.BurstPaceMS < 0 {
		return nil, fmt.Errorf("telemetry.burst_pace_ms must not be negative, got %d", cfg.Telemetry.BurstPaceMS)
	}

	return &cfg, nil
}
