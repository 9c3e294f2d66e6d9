package config

import (
	"time"

	"github.com/spf13/viper"

	pkgconfig "github.com/astrolive/loyalty-engine/pkg/config"
	"github.com/astrolive/loyalty-engine/pkg/database"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

type Config struct {
	Server    ServerConfig
	WebSocket WebSocketConfig
	Auth      AuthConfig
	Payment   PaymentConfig
	Points    PointsConfig
	History   HistoryConfig
	Notify    NotifyConfig
	Cache     CacheConfig
	Kafka     KafkaConfig
	Redis     RedisConfig
	Database  database.Config
	Log       log.Config
}

type ServerConfig struct {
	Host string
	Port int
}

type WebSocketConfig struct {
	PingInterval   time.Duration `mapstructure:"ping_interval"`
	PongWait       time.Duration `mapstructure:"pong_wait"`
	WriteWait      time.Duration `mapstructure:"write_wait"`
	MaxMessageSize int64         `mapstructure:"max_message_size"`
}

type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string
}

type PaymentConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Timeout time.Duration `mapstructure:"timeout"`
}

// PointsConfig holds the accrual policy values. The product defaults are
// 1 point per chat message and 10 points per minute of watch time.
type PointsConfig struct {
	ChatAmount    int64         `mapstructure:"chat_amount"`
	WatchAmount   int64         `mapstructure:"watch_amount"`
	WatchInterval time.Duration `mapstructure:"watch_interval"`
}

type HistoryConfig struct {
	Capacity int
}

type NotifyConfig struct {
	DisplayWindow time.Duration `mapstructure:"display_window"`
}

type CacheConfig struct {
	LevelTTL time.Duration `mapstructure:"level_ttl"`
}

type KafkaConfig struct {
	Enabled    bool
	Brokers    string
	Topic      string
	Partitions int
}

type RedisConfig struct {
	Enabled  bool
	Address  string
	Password string
	DB       int
}

func Load() (*Config, error) {
	v, err := pkgconfig.Load("./config", "config")
	if err != nil {
		return nil, err
	}

	// Set defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8090)
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.pong_wait", "60s")
	v.SetDefault("websocket.write_wait", "10s")
	v.SetDefault("websocket.max_message_size", 4096)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("auth.issuer", "astrolive")
	v.SetDefault("payment.base_url", "http://localhost:8085")
	v.SetDefault("payment.timeout", "10s")
	v.SetDefault("points.chat_amount", 1)
	v.SetDefault("points.watch_amount", 10)
	v.SetDefault("points.watch_interval", "60s")
	v.SetDefault("history.capacity", 200)
	v.SetDefault("notify.display_window", "5s")
	v.SetDefault("cache.level_ttl", "30s")
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", "localhost:9092")
	v.SetDefault("kafka.topic", "loyalty-events")
	v.SetDefault("kafka.partitions", 8)
	v.SetDefault("redis.enabled", false)
	v.SetDefault("redis.address", "localhost:6379")
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("database.driver", "sqlite")
	v.SetDefault("database.file_path", "./loyalty.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.service_name", "loyalty-engine")

	// Override from environment
	v.BindEnv("server.port", "PORT")
	v.BindEnv("auth.jwt_secret", "JWT_SECRET")
	v.BindEnv("payment.base_url", "PAYMENT_BASE_URL")
	v.BindEnv("kafka.enabled", "KAFKA_ENABLED")
	v.BindEnv("kafka.brokers", "KAFKA_BROKERS")
	v.BindEnv("kafka.topic", "KAFKA_TOPIC")
	v.BindEnv("redis.enabled", "REDIS_ENABLED")
	v.BindEnv("redis.address", "REDIS_ADDRESS")
	v.BindEnv("redis.password", "REDIS_PASSWORD")
	v.BindEnv("database.driver", "DB_DRIVER")

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, err
	}

	// Parse durations
	cfg.WebSocket.PingInterval = parseDuration(v, "websocket.ping_interval", 30*time.Second)
	cfg.WebSocket.PongWait = parseDuration(v, "websocket.pong_wait", 60*time.Second)
	cfg.WebSocket.WriteWait = parseDuration(v, "websocket.write_wait", 10*time.Second)
	cfg.Payment.Timeout = parseDuration(v, "payment.timeout", 10*time.Second)
	cfg.Points.WatchInterval = parseDuration(v, "points.watch_interval", 60*time.Second)
	cfg.Notify.DisplayWindow = parseDuration(v, "notify.display_window", 5*time.Second)
	cfg.Cache.LevelTTL = parseDuration(v, "cache.level_ttl", 30*time.Second)

	return &cfg, nil
}

func parseDuration(v *viper.Viper, key string, defaultVal time.Duration) time.Duration {
	str := v.GetString(key)
	d, err := time.ParseDuration(str)
	if err != nil {
		return defaultVal
	}
	return d
}
