package config

import (
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/spf13/viper"

	sharedConfig "github.com/connecthub/connecthub/internal/shared/config"
)

type Config struct {
	Server      sharedConfig.ServerConfig              `mapstructure:"server"`
	Database    sharedConfig.DatabaseConfig            `mapstructure:"database"`
	Logger      sharedConfig.LoggerConfig              `mapstructure:"logger"`
	Auth        sharedConfig.AuthConfig                `mapstructure:"auth"`
	Email       sharedConfig.EmailConfig               `mapstructure:"email"`
	Redis       sharedConfig.RedisConfig               `mapstructure:"redis"`
	Credentials sharedConfig.CredentialsConfig         `mapstructure:"credentials"`
	Workspace   sharedConfig.WorkspaceConfig           `mapstructure:"workspace"`
	Platforms   map[string]sharedConfig.PlatformConfig `mapstructure:"platforms"`
}

var (
	appConfig   *Config
	appConfigMu sync.RWMutex
)

// Load reads configs/config.yaml, applies CONNECTHUB_* environment overrides
// and stores the result for Get.
func Load(env string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath("../configs")
	v.AddConfigPath("../../configs")

	v.SetEnvPrefix("CONNECTHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if env != "" && env != "default" {
		v.Set("server.mode", env)
	}

	cfg, err := decode(v)
	if err != nil {
		return nil, err
	}

	appConfigMu.Lock()
	appConfig = cfg
	appConfigMu.Unlock()

	return cfg, nil
}

func decode(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Platforms == nil {
		cfg.Platforms = map[string]sharedConfig.PlatformConfig{}
	}
	return &cfg, nil
}

// Get returns the configuration stored by the last successful Load.
func Get() *Config {
	appConfigMu.RLock()
	defer appConfigMu.RUnlock()
	return appConfig
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("server.base_url", "http://localhost:8080")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:5173"})
	v.SetDefault("server.frontend_callback_url", "http://localhost:5173/oauth/callback")
	v.SetDefault("server.timezone", "UTC")

	v.SetDefault("database.driver", sharedConfig.DriverMySQL)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 3306)
	v.SetDefault("database.username", "root")
	v.SetDefault("database.password", "password")
	v.SetDefault("database.database", "connecthub_dev")
	v.SetDefault("database.max_idle_conns", 10)
	v.SetDefault("database.max_open_conns", 100)
	v.SetDefault("database.conn_max_lifetime", 60)

	v.SetDefault("logger.level", "info")
	v.SetDefault("logger.format", "console")
	v.SetDefault("logger.output_path", "stdout")

	v.SetDefault("auth.password.bcrypt_cost", 12)
	v.SetDefault("auth.jwt.secret", "change-me-in-production")
	v.SetDefault("auth.jwt.access_exp_minutes", 15)
	v.SetDefault("auth.jwt.refresh_exp_days", 7)
	v.SetDefault("auth.rate_limit.enabled", true)
	v.SetDefault("auth.rate_limit.requests", 20)
	v.SetDefault("auth.rate_limit.window_seconds", 60)

	v.SetDefault("email.smtp_host", "localhost")
	v.SetDefault("email.smtp_port", 1025)
	v.SetDefault("email.from_address", "noreply@connecthub.local")
	v.SetDefault("email.from_name", "ConnectHub")

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.db", 0)

	v.SetDefault("credentials.encryption_key", "")
	v.SetDefault("credentials.oauth_state_ttl_minutes", 10)
	v.SetDefault("credentials.expiry_check_minutes", 15)

	v.SetDefault("workspace.invitation_ttl_hours", 168)
}
