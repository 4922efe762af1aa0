package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config アプリケーション全体の設定
type Config struct {
	Server  ServerConfig  `yaml:"server"`
	Speller SpellerConfig `yaml:"speller"`
	Redis   RedisConfig   `yaml:"redis"`
	MySQL   MySQLConfig   `yaml:"mysql"`
	Log     LogConfig     `yaml:"log"`
}

// ServerConfig HTTPサーバーの設定
type ServerConfig struct {
	// AllowedOrigin /spellcheck へのクロスオリジンアクセスを許可する唯一のオリジン
	AllowedOrigin string `yaml:"allowed_origin"`
	MaxBodyBytes  int64  `yaml:"max_body_bytes"`
}

// SpellerConfig 外部スペルチェックプロバイダー（Naver 맞춤법 검사기）の設定
type SpellerConfig struct {
	Endpoint        string        `yaml:"endpoint"`
	PassportKey     string        `yaml:"passport_key"`
	PassportKeyPage string        `yaml:"passport_key_page"`
	UserAgent       string        `yaml:"user_agent"`
	Timeout         time.Duration `yaml:"timeout"`
	MaxTextLength   int           `yaml:"max_text_length"`
}

// RedisConfig Redisの設定
type RedisConfig struct {
	Enabled  bool          `yaml:"enabled"`
	Host     string        `yaml:"host"`
	Port     int           `yaml:"port"`
	Password string        `yaml:"password"`
	DB       int           `yaml:"db"`
	TTL      time.Duration `yaml:"ttl"`
}

// MySQLConfig MySQLの設定
type MySQLConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
}

// LogConfig ログ出力の設定
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load 設定ファイルを読み込む
func Load(configPath string) (*Config, error) {
	// 設定ファイルが存在しない場合はデフォルト設定を返す
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	// 環境変数の展開
	dataStr := os.ExpandEnv(string(data))

	// ファイルに無い項目はデフォルト値のまま残す
	cfg := DefaultConfig()
	if err := yaml.Unmarshal([]byte(dataStr), cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config file: %w", err)
	}

	return cfg, nil
}

// DefaultConfig デフォルト設定を返す
func DefaultConfig() *Config {
	// Redis/MySQLのホストはテスト環境では localhost を使用
	redisHost := "redis"
	mysqlHost := "mysql"
	if os.Getenv("GO_ENV") == "test" {
		redisHost = "localhost"
		mysqlHost = "localhost"
	}

	return &Config{
		Server: ServerConfig{
			AllowedOrigin: "http://localhost:8080",
			MaxBodyBytes:  1 << 20,
		},
		Speller: SpellerConfig{
			Endpoint:        "https://m.search.naver.com/p/csearch/ocontent/util/SpellerProxy",
			PassportKey:     os.Getenv("NAVER_PASSPORT_KEY"),
			PassportKeyPage: "https://search.naver.com/search.naver?where=nexearch&sm=top_hty&fbm=0&ie=utf8&query=%EB%A7%9E%EC%B6%A4%EB%B2%95%EA%B2%80%EC%82%AC%EA%B8%B0",
			UserAgent:       "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36",
			Timeout:         10 * time.Second,
			MaxTextLength:   500,
		},
		Redis: RedisConfig{
			Enabled:  false,
			Host:     redisHost,
			Port:     6379,
			Password: "",
			DB:       0,
			TTL:      24 * time.Hour,
		},
		MySQL: MySQLConfig{
			Enabled:  false,
			Host:     mysqlHost,
			Port:     3306,
			User:     "root",
			Password: os.Getenv("MYSQL_ROOT_PASSWORD"),
			Database: "spellcheck",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
	}
}

// Validate 設定値を検証する
func (c *Config) Validate() error {
	var errs []error

	if c.Server.AllowedOrigin == "" {
		errs = append(errs, errors.New("server.allowed_origin is required"))
	}
	if c.Server.MaxBodyBytes <= 0 {
		errs = append(errs, errors.New("server.max_body_bytes must be positive"))
	}
	if c.Speller.Endpoint == "" {
		errs = append(errs, errors.New("speller.endpoint is required"))
	}
	if c.Speller.Timeout <= 0 {
		errs = append(errs, errors.New("speller.timeout must be positive"))
	}
	if c.Speller.MaxTextLength <= 0 {
		errs = append(errs, errors.New("speller.max_text_length must be positive"))
	}
	if c.Redis.Enabled && c.Redis.TTL <= 0 {
		errs = append(errs, errors.New("redis.ttl must be positive when redis is enabled"))
	}

	return errors.Join(errs...)
}

// Save 設定をファイルに保存する
func (c *Config) Save(configPath string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
