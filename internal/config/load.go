package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// envBindings は設定キーと環境変数名の対応です。
var envBindings = map[string]string{
	"server.port":            "SERVER_PORT",
	"server.read_timeout":    "SERVER_READ_TIMEOUT",
	"server.write_timeout":   "SERVER_WRITE_TIMEOUT",
	"server.allowed_origins": "ALLOWED_ORIGINS",
	"server.gin_mode":        "GIN_MODE",
	"store.driver":           "STORE_DRIVER",
	"mysql.user":             "DB_USER",
	"mysql.password":         "DB_PASS",
	"mysql.host":             "DB_HOST",
	"mysql.port":             "DB_PORT",
	"mysql.name":             "DB_NAME",
	"mongo.uri":              "MONGO_URI",
	"mongo.database":         "MONGO_DB_NAME",
	"session.driver":         "SESSION_DRIVER",
	"session.secret":         "SESSION_SECRET",
	"session.ttl":            "SESSION_TTL",
	"session.cookie_secure":  "COOKIE_SECURE",
	"session.redis_addr":     "REDIS_ADDR",
	"session.redis_password": "REDIS_PASSWORD",
	"session.redis_db":       "REDIS_DB",
	"auth.bcrypt_cost":       "BCRYPT_COST",
	"log.level":              "LOG_LEVEL",
	"log.format":             "LOG_FORMAT",
	"log.file":               "LOG_FILE",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 3000)
	v.SetDefault("server.read_timeout", "10s")
	v.SetDefault("server.write_timeout", "10s")
	v.SetDefault("server.allowed_origins", "http://localhost:3000")
	v.SetDefault("server.gin_mode", "release")
	v.SetDefault("store.driver", "mysql")
	v.SetDefault("mysql.port", "3306")
	v.SetDefault("mongo.database", "task_tracker")
	v.SetDefault("session.driver", "memory")
	v.SetDefault("session.ttl", "24h")
	v.SetDefault("session.redis_addr", "localhost:6379")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")
}

// Load は .env を読み込んだ上で環境変数から Config を組み立て、検証します。
// .env が無いことはエラーにしません。
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	// 既に設定済みの環境変数は上書きしない
	_ = godotenv.Load(envFiles...)

	v := viper.New()
	setDefaults(v)
	for key, env := range envBindings {
		if err := v.BindEnv(key, env); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", env, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.Server.AllowedOrigins = splitOrigins(cfg.Server.AllowedOrigins)

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は構造体タグとドライバーごとの必須項目を検証します。
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}

	switch c.Store.Driver {
	case "mysql":
		if c.MySQL.User == "" || c.MySQL.Host == "" || c.MySQL.Name == "" {
			return errors.New("invalid config: DB_USER, DB_HOST and DB_NAME are required for STORE_DRIVER=mysql")
		}
	case "mongo":
		if c.Mongo.URI == "" {
			return errors.New("invalid config: MONGO_URI is required for STORE_DRIVER=mongo")
		}
	}
	if c.Session.Driver == "redis" && c.Session.RedisAddr == "" {
		return errors.New("invalid config: REDIS_ADDR is required for SESSION_DRIVER=redis")
	}
	return nil
}

// Addr はHTTPサーバーの待ち受けアドレスを返します。
func (c *Config) Addr() string {
	return fmt.Sprintf(":%d", c.Server.Port)
}

// MySQLDSN は go-sql-driver/mysql 形式の接続文字列を返します。
func (c *Config) MySQLDSN() string {
	m := c.MySQL
	return fmt.Sprintf("%s:%s@tcp(%s:%s)/%s?parseTime=true&loc=UTC", m.User, m.Password, m.Host, m.Port, m.Name)
}

// splitOrigins はカンマ区切りの1要素をばらします。
func splitOrigins(in []string) []string {
	out := []string{}
	for _, item := range in {
		for _, o := range strings.Split(item, ",") {
			if o = strings.TrimSpace(o); o != "" {
				out = append(out, o)
			}
		}
	}
	return out
}
