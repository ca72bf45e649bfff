// Package config は通知サービスの設定を読み込む。
//
// 既定値、YAML設定ファイル（任意）、NOTIFIER_ 接頭辞の環境変数、
// コマンドラインフラグの順に後のものが優先される。
package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// EnvPrefix は環境変数の接頭辞。
const EnvPrefix = "NOTIFIER"

// ServerConfig はHTTPサーバーの設定。
type ServerConfig struct {
	// Port はリッスンポート。環境変数PORTでも指定できる。
	Port string `mapstructure:"port"`
	// AllowedOrigins はCORSを許可するオリジン。
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// StoreConfig はストアの設定。
type StoreConfig struct {
	// DSN はストアの接続先。スキームで実装を選ぶ。
	DSN string `mapstructure:"dsn"`
	// Timeout はSQLストアの1操作ごとのタイムアウト。
	Timeout time.Duration `mapstructure:"timeout"`
}

// DedupConfig は重複判定の設定。
type DedupConfig struct {
	// Window は参照する直近の同一通知の件数。
	Window int `mapstructure:"window"`
}

// ListConfig は一覧取得の設定。
type ListConfig struct {
	// DefaultLimit はlimit未指定時の件数。
	DefaultLimit int `mapstructure:"default_limit"`
	// MaxLimit はlimitで指定できる最大件数。
	MaxLimit int `mapstructure:"max_limit"`
}

// ClearConfig は一括削除の設定。
type ClearConfig struct {
	// PageSize は1回の呼び出しで削除する最大件数。
	PageSize int `mapstructure:"page_size"`
}

// AuthConfig は削除系エンドポイントの認証設定。
type AuthConfig struct {
	// JWTSecret はJWTの署名鍵。空の場合は認証しない。
	JWTSecret string `mapstructure:"jwt_secret"`
}

// EventsConfig は外部イベントストアへの送信設定。
type EventsConfig struct {
	// URL はイベントストアのベースURL。空の場合は送信しない。
	URL string `mapstructure:"url"`
	// Token はイベントストアに送るBearerトークン。
	Token string `mapstructure:"token"`
	// Timeout は1リクエストのタイムアウト。
	Timeout time.Duration `mapstructure:"timeout"`
}

// Config は通知サービス全体の設定。
type Config struct {
	Server ServerConfig `mapstructure:"server"`
	Store  StoreConfig  `mapstructure:"store"`
	Dedup  DedupConfig  `mapstructure:"dedup"`
	List   ListConfig   `mapstructure:"list"`
	Clear  ClearConfig  `mapstructure:"clear"`
	Auth   AuthConfig   `mapstructure:"auth"`
	Events EventsConfig `mapstructure:"events"`
}

// flagKeys はフラグ名と設定キーの対応。
var flagKeys = map[string]string{
	"port": "server.port",
	"dsn":  "store.dsn",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.allowed_origins", []string{})
	v.SetDefault("store.dsn", "sqlite:///data/notifier.db")
	v.SetDefault("store.timeout", 5*time.Second)
	v.SetDefault("dedup.window", 5)
	v.SetDefault("list.default_limit", 100)
	v.SetDefault("list.max_limit", 100)
	v.SetDefault("clear.page_size", 500)
	v.SetDefault("auth.jwt_secret", "")
	v.SetDefault("events.url", "")
	v.SetDefault("events.token", "")
	v.SetDefault("events.timeout", 5*time.Second)
}

// Load は設定を読み込む。pathが空なら設定ファイルは使わない。
// flagsがnilでなければ、変更されたフラグで設定を上書きする。
func Load(path string, flags *pflag.FlagSet) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// Cloud Run などが渡すPORTも受け付ける
	if err := v.BindEnv("server.port", EnvPrefix+"_SERVER_PORT", "PORT"); err != nil {
		return nil, fmt.Errorf("環境変数のバインドに失敗: %w", err)
	}

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			var pathErr *os.PathError
			if errors.As(err, &pathErr) {
				return nil, fmt.Errorf("設定ファイル %s が見つかりません: %w", path, err)
			}
			return nil, fmt.Errorf("設定ファイル %s の読み込みに失敗: %w", path, err)
		}
	}

	if flags != nil {
		for name, key := range flagKeys {
			if f := flags.Lookup(name); f != nil && f.Changed {
				if err := v.BindPFlag(key, f); err != nil {
					return nil, fmt.Errorf("フラグ %s のバインドに失敗: %w", name, err)
				}
			}
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("設定の解析に失敗: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate は設定値の整合性を検証する。
func (c *Config) Validate() error {
	var errs []error
	if strings.TrimSpace(c.Server.Port) == "" {
		errs = append(errs, errors.New("server.port が空です"))
	}
	if strings.TrimSpace(c.Store.DSN) == "" {
		errs = append(errs, errors.New("store.dsn が空です"))
	}
	if c.Dedup.Window <= 0 {
		errs = append(errs, fmt.Errorf("dedup.window は正の整数が必要です: %d", c.Dedup.Window))
	}
	if c.List.DefaultLimit <= 0 {
		errs = append(errs, fmt.Errorf("list.default_limit は正の整数が必要です: %d", c.List.DefaultLimit))
	}
	if c.List.MaxLimit < c.List.DefaultLimit {
		errs = append(errs, fmt.Errorf("list.max_limit (%d) は list.default_limit (%d) 以上が必要です", c.List.MaxLimit, c.List.DefaultLimit))
	}
	if c.Clear.PageSize <= 0 {
		errs = append(errs, fmt.Errorf("clear.page_size は正の整数が必要です: %d", c.Clear.PageSize))
	}
	if len(errs) > 0 {
		return fmt.Errorf("設定が不正です: %w", errors.Join(errs...))
	}
	return nil
}
