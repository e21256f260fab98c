package config

import (
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"
)

const (
	DefaultConfigFile = "./app.env"

	DbDriverPostgres = "postgres"
	DbDriverMemory   = "memory"
)

/*
把init跟read分開
init : 需要設置viper watch 與 onConfigChange
read : 一般讀取  需要使用讀寫鎖
*/
var configSingleton *ConfigSingleton
var muonce sync.Once

type ConfigSingleton struct {
	Config *Config
	v      *viper.Viper
	mu     sync.RWMutex
}

type Config struct {
	ServerPort      string        `mapstructure:"SERVER_PORT"`
	Env             string        `mapstructure:"ENV"`
	LogLevel        string        `mapstructure:"LOG_LEVEL"`
	DbDriver        string        `mapstructure:"DB_DRIVER"`
	DbName          string        `mapstructure:"POSTGRES_DB"`
	DbHost          string        `mapstructure:"POSTGRES_HOST"`
	DbPort          string        `mapstructure:"POSTGRES_PORT"`
	DbUser          string        `mapstructure:"POSTGRES_USER"`
	DbPas           string        `mapstructure:"POSTGRES_PASSWORD"`
	RedisAddr       string        `mapstructure:"REDIS_ADDR"`
	RedisPassword   string        `mapstructure:"REDIS_PASSWORD"`
	RedisDB         int           `mapstructure:"REDIS_DB"`
	OrderCacheTTL   time.Duration `mapstructure:"ORDER_CACHE_TTL"`
	KafkaBrokers    string        `mapstructure:"KAFKA_BROKERS"`
	KafkaOrderTopic string        `mapstructure:"KAFKA_ORDER_TOPIC"`
	// 任一為 0 時不限流
	RateLimitCapacity int `mapstructure:"RATE_LIMIT_CAPACITY"`
	RateLimitRPS      int `mapstructure:"RATE_LIMIT_RPS"`
}

func (c *Config) Validate() error {
	switch c.DbDriver {
	case DbDriverPostgres:
		if c.DbHost == "" || c.DbName == "" || c.DbUser == "" {
			return errors.New("POSTGRES_HOST, POSTGRES_DB and POSTGRES_USER are required for postgres driver")
		}
	case DbDriverMemory:
	default:
		return fmt.Errorf("unknown DB_DRIVER %q", c.DbDriver)
	}
	if c.ServerPort == "" {
		return errors.New("SERVER_PORT is required")
	}
	if c.RateLimitCapacity < 0 || c.RateLimitRPS < 0 {
		return errors.New("RATE_LIMIT_CAPACITY and RATE_LIMIT_RPS must not be negative")
	}
	if c.OrderCacheTTL < 0 {
		return errors.New("ORDER_CACHE_TTL must not be negative")
	}
	return nil
}

// GetConfig 第一次呼叫時載入並開始監看設定檔
// 設定檔路徑由 CONFIG_FILE 指定，預設 ./app.env
func GetConfig() *Config {
	initConfig()
	configSingleton.mu.RLock()
	defer configSingleton.mu.RUnlock()
	return configSingleton.Config
}

func initConfig() {
	muonce.Do(func() {
		path := os.Getenv("CONFIG_FILE")
		if path == "" {
			path = DefaultConfigFile
		}

		configSingleton = &ConfigSingleton{v: newViper(path)}
		cf, err := load(configSingleton.v)
		if err != nil {
			log.Fatal().Err(err).Str("path", path).Msg("error read config")
		}
		configSingleton.Config = cf

		if !fileExists(path) {
			return
		}
		configSingleton.v.OnConfigChange(func(e fsnotify.Event) {
			cf, err := load(configSingleton.v)
			if err != nil {
				// 保留舊設定
				log.Error().Err(err).Str("file", e.Name).Msg("failed to reload config file")
				return
			}
			configSingleton.mu.Lock()
			configSingleton.Config = cf
			configSingleton.mu.Unlock()
			log.Info().Str("file", e.Name).Msg("config reloaded")
		})
		configSingleton.v.WatchConfig()
	})
}

/*
單純回傳錯誤  由外部決定要不要Fatal
設定檔不存在時只讀環境變數
*/
func LoadConfig(path string) (*Config, error) {
	return load(newViper(path))
}

func newViper(path string) *viper.Viper {
	v := viper.New()
	v.SetConfigFile(path)
	v.SetConfigType("env")
	v.AutomaticEnv()

	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("ENV", "development")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("DB_DRIVER", DbDriverPostgres)
	v.SetDefault("POSTGRES_DB", "")
	v.SetDefault("POSTGRES_HOST", "")
	v.SetDefault("POSTGRES_PORT", "5432")
	v.SetDefault("POSTGRES_USER", "")
	v.SetDefault("POSTGRES_PASSWORD", "")
	v.SetDefault("REDIS_ADDR", "")
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("ORDER_CACHE_TTL", "1h")
	v.SetDefault("KAFKA_BROKERS", "")
	v.SetDefault("KAFKA_ORDER_TOPIC", "order-events")
	v.SetDefault("RATE_LIMIT_CAPACITY", 100)
	v.SetDefault("RATE_LIMIT_RPS", 50)
	return v
}

func load(v *viper.Viper) (*Config, error) {
	if fileExists(v.ConfigFileUsed()) {
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config file failed: %w", err)
		}
	}

	cf := &Config{}
	if err := v.Unmarshal(cf); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}
	if err := cf.Validate(); err != nil {
		return nil, err
	}
	return cf, nil
}

func fileExists(path string) bool {
	if path == "" {
		return false
	}
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}
