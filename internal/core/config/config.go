package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type HTTP struct {
	Host            string
	Port            int
	ReadTimeoutSec  int
	WriteTimeoutSec int
	IdleTimeoutSec  int
}
type AdminHTTP struct {
	Host string
	Port int
}

type App struct {
	Name  string
	Env   string
	HTTP  HTTP
	Admin AdminHTTP
}

type LogFile struct {
	Enable     bool
	Filename   string
	MaxSizeMB  int
	MaxBackups int
	MaxAgeDays int
	Compress   bool
}

type Log struct {
	Level string
	JSON  bool
	File  LogFile
}

// APIKey API key 签名配置（HS256）
type APIKey struct {
	Secret      string
	Issuer      string
	CacheTTLSec int
}

type Redis struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

type DB struct {
	Driver             string
	DSN                string
	Username           string
	Password           string
	MaxOpenConns       int
	MaxIdleConns       int
	ConnMaxLifetimeMin int
	AutoMigrate        bool
	LogLevel           string
}

type Mail struct {
	Host        string
	Port        int
	Username    string
	Password    string
	From        string
	QueueKey    string
	MaxAttempts int
}

type Limits struct {
	RPS           float64
	Burst         int
	AuthRPS       float64
	AuthBurst     int
	MaxConcurrent int64
	MaxBodyBytes  int64
	TimeoutSec    int
}

type Config struct {
	App    App
	Log    Log
	APIKey APIKey `mapstructure:"apikey"`
	DB     DB
	Redis  Redis `mapstructure:"redis"`
	Mail   Mail
	Limits Limits
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.name", "bookmarks-api")
	v.SetDefault("app.env", "local")
	v.SetDefault("app.http.host", "0.0.0.0")
	v.SetDefault("app.http.port", 8080)
	v.SetDefault("app.http.readTimeoutSec", 5)
	v.SetDefault("app.http.writeTimeoutSec", 10)
	v.SetDefault("app.http.idleTimeoutSec", 60)
	v.SetDefault("app.admin.host", "127.0.0.1")
	v.SetDefault("app.admin.port", 8081)
	v.SetDefault("log.level", "info")
	v.SetDefault("apikey.issuer", "bookmarks-api")
	v.SetDefault("apikey.cacheTTLSec", 300)
	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "bookmarks.db")
	v.SetDefault("db.maxOpenConns", 10)
	v.SetDefault("db.maxIdleConns", 5)
	v.SetDefault("db.connMaxLifetimeMin", 30)
	v.SetDefault("db.logLevel", "warn")
	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.from", "no-reply@bookmarks.local")
	v.SetDefault("mail.queueKey", "bookmarks:mail")
	v.SetDefault("mail.maxAttempts", 5)
	v.SetDefault("limits.rps", 200)
	v.SetDefault("limits.burst", 400)
	v.SetDefault("limits.authRPS", 1)
	v.SetDefault("limits.authBurst", 5)
	v.SetDefault("limits.maxConcurrent", 300)
	v.SetDefault("limits.maxBodyBytes", 1<<20)
	v.SetDefault("limits.timeoutSec", 10)
}

// Load 读取 YAML + APP_ 前缀环境变量；失败返回 error，由 main 决定是否退出
func Load(path string) (*Config, error) {
	v := viper.New()
	if path == "" {
		path = os.Getenv("CONFIG_PATH")
		if path == "" {
			path = "./configs/config.local.yaml"
		}
	}
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	var c Config
	if err := v.Unmarshal(&c); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if c.APIKey.Secret == "" {
		return nil, fmt.Errorf("config: apikey.secret is required")
	}
	return &c, nil
}

// MustLoad 读不到配置直接退出
func MustLoad(path string) *Config {
	c, err := Load(path)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	return c
}
