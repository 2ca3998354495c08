// Package config は環境変数と .env ファイルから設定を読み込みます。
package config

import "time"

// Config はアプリケーション全体の設定です。
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Store   StoreConfig   `mapstructure:"store"`
	MySQL   MySQLConfig   `mapstructure:"mysql"`
	Mongo   MongoConfig   `mapstructure:"mongo"`
	Session SessionConfig `mapstructure:"session"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Log     LogConfig     `mapstructure:"log"`
}

// ServerConfig はHTTPサーバーの設定です。
type ServerConfig struct {
	Port           int           `mapstructure:"port" validate:"gt=0,lt=65536"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout" validate:"gt=0"`
	WriteTimeout   time.Duration `mapstructure:"write_timeout" validate:"gt=0"`
	AllowedOrigins []string      `mapstructure:"allowed_origins"`
	GinMode        string        `mapstructure:"gin_mode" validate:"oneof=debug release test"`
}

// StoreConfig はユーザーとタスクの保存先を選びます。
type StoreConfig struct {
	Driver string `mapstructure:"driver" validate:"oneof=mysql mongo memory"`
}

type MySQLConfig struct {
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Host     string `mapstructure:"host"`
	Port     string `mapstructure:"port"`
	Name     string `mapstructure:"name"`
}

type MongoConfig struct {
	URI      string `mapstructure:"uri"`
	Database string `mapstructure:"database"`
}

// SessionConfig はセッションストアとクッキーの設定です。
type SessionConfig struct {
	Driver        string        `mapstructure:"driver" validate:"oneof=redis memory"`
	Secret        string        `mapstructure:"secret" validate:"required,min=32"`
	TTL           time.Duration `mapstructure:"ttl" validate:"gt=0"`
	CookieSecure  bool          `mapstructure:"cookie_secure"`
	RedisAddr     string        `mapstructure:"redis_addr"`
	RedisPassword string        `mapstructure:"redis_password"`
	RedisDB       int           `mapstructure:"redis_db" validate:"gte=0"`
}

type AuthConfig struct {
	BcryptCost int `mapstructure:"bcrypt_cost" validate:"gte=4,lte=31"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
	File   string `mapstructure:"file"`
}
