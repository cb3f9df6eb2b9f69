package config

import (
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	defaultRetentionPeriod = 3 * 365 * 24 * time.Hour
	defaultRequestTTL      = 30 * 24 * time.Hour
	defaultNumberPrefix    = "EMP"
	defaultNumberDigits    = 4
)

// Config はアプリケーション全体の設定を表現します。
type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	Auth      AuthConfig      `yaml:"auth"`
	Storage   StorageConfig   `yaml:"storage"`
	Events    EventsConfig    `yaml:"events"`
	Retention RetentionConfig `yaml:"retention"`
	Numbering NumberingConfig `yaml:"numbering"`
	Log       LogConfig       `yaml:"log"`
}

// ServerConfig は gRPC サーバーに関する設定です。
type ServerConfig struct {
	ListenAddr  string `yaml:"listen_addr"`
	MetricsAddr string `yaml:"metrics_addr"`
}

// DatabaseConfig は PostgreSQL 接続に関する設定です。
type DatabaseConfig struct {
	Host               string        `yaml:"host"`
	Port               int           `yaml:"port"`
	User               string        `yaml:"user"`
	Password           string        `yaml:"password"`
	Name               string        `yaml:"name"`
	SSLMode            string        `yaml:"ssl_mode"`
	MaxOpenConns       int           `yaml:"max_open_conns"`
	MaxIdleConns       int           `yaml:"max_idle_conns"`
	ConnMaxLifetime    time.Duration `yaml:"-"`
	ConnMaxIdleTime    time.Duration `yaml:"-"`
	ConnMaxLifetimeRaw string        `yaml:"conn_max_lifetime"`
	ConnMaxIdleTimeRaw string        `yaml:"conn_max_idle_time"`
	ApplicationName    string        `yaml:"application_name"`
	TxMaxRetries       int           `yaml:"tx_max_retries"`
}

// AuthConfig は Bearer トークン検証の設定です。
type AuthConfig struct {
	JWTSecret string `yaml:"jwt_secret"`
	Issuer    string `yaml:"issuer"`
}

// StorageConfig は添付ファイル保存先の設定です。
type StorageConfig struct {
	RootDir string `yaml:"root_dir"`
}

// EventsConfig はドメインイベント送信先の設定です。AMQPURL が空の場合はログ出力のみ行います。
type EventsConfig struct {
	AMQPURL          string `yaml:"amqp_url"`
	Exchange         string `yaml:"exchange"`
	RoutingKeyPrefix string `yaml:"routing_key_prefix"`
}

// RetentionConfig は契約終了後の保持期間と申請の有効期限です。
type RetentionConfig struct {
	Period        time.Duration `yaml:"-"`
	RequestTTL    time.Duration `yaml:"-"`
	PeriodRaw     string        `yaml:"period"`
	RequestTTLRaw string        `yaml:"request_ttl"`
}

// NumberingConfig は会社ごとの設定が無い場合の社員番号採番ルールです。
type NumberingConfig struct {
	Prefix      string `yaml:"prefix"`
	Digits      int    `yaml:"digits"`
	IncludeYear *bool  `yaml:"include_year"`
}

// LogConfig はロガーの設定です。
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

// Load は指定されたパスから設定ファイルを読み込みます。
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read file %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(b, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse yaml: %w", err)
	}

	if err := cfg.validateAndNormalize(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) validateAndNormalize() error {
	if c.Server.ListenAddr == "" {
		return fmt.Errorf("config: server.listen_addr must be set")
	}

	db := &c.Database
	if err := db.validateAndNormalize(); err != nil {
		return err
	}

	if strings.TrimSpace(c.Auth.JWTSecret) == "" {
		return fmt.Errorf("config: auth.jwt_secret must be set")
	}

	if c.Storage.RootDir == "" {
		return fmt.Errorf("config: storage.root_dir must be set")
	}

	if c.Events.AMQPURL != "" && c.Events.Exchange == "" {
		return fmt.Errorf("config: events.exchange must be set when events.amqp_url is set")
	}
	if c.Events.RoutingKeyPrefix == "" {
		c.Events.RoutingKeyPrefix = "hrlink"
	}

	if err := c.Retention.validateAndNormalize(); err != nil {
		return err
	}

	c.Numbering.normalize()

	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "json"
	}

	return nil
}

func (d *DatabaseConfig) validateAndNormalize() error {
	if d.Host == "" {
		return fmt.Errorf("config: database.host must be set")
	}
	if d.Port == 0 {
		return fmt.Errorf("config: database.port must be set")
	}
	if d.User == "" {
		return fmt.Errorf("config: database.user must be set")
	}
	if d.Password == "" {
		return fmt.Errorf("config: database.password must be set")
	}
	if d.Name == "" {
		return fmt.Errorf("config: database.name must be set")
	}
	if d.SSLMode == "" {
		d.SSLMode = "disable"
	}
	if d.ApplicationName == "" {
		d.ApplicationName = "hrlink"
	}
	if d.TxMaxRetries < 0 {
		return fmt.Errorf("config: database.tx_max_retries must not be negative")
	}

	lifetime, err := parseDurationAllowEmpty(d.ConnMaxLifetimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_lifetime: %w", err)
	}
	d.ConnMaxLifetime = lifetime

	idleTime, err := parseDurationAllowEmpty(d.ConnMaxIdleTimeRaw)
	if err != nil {
		return fmt.Errorf("config: database.conn_max_idle_time: %w", err)
	}
	d.ConnMaxIdleTime = idleTime

	return nil
}

func (r *RetentionConfig) validateAndNormalize() error {
	period, err := parseDurationAllowEmpty(r.PeriodRaw)
	if err != nil {
		return fmt.Errorf("config: retention.period: %w", err)
	}
	if period == 0 {
		period = defaultRetentionPeriod
	}
	r.Period = period

	ttl, err := parseDurationAllowEmpty(r.RequestTTLRaw)
	if err != nil {
		return fmt.Errorf("config: retention.request_ttl: %w", err)
	}
	if ttl == 0 {
		ttl = defaultRequestTTL
	}
	r.RequestTTL = ttl

	return nil
}

func (n *NumberingConfig) normalize() {
	n.Prefix = strings.ToUpper(strings.TrimSpace(n.Prefix))
	if n.Prefix == "" {
		n.Prefix = defaultNumberPrefix
	}
	if n.Digits <= 0 {
		n.Digits = defaultNumberDigits
	}
	if n.IncludeYear == nil {
		includeYear := true
		n.IncludeYear = &includeYear
	}
}

func parseDurationAllowEmpty(raw string) (time.Duration, error) {
	if raw == "" {
		return 0, nil
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	return d, nil
}

// DSN は pgx 用の接続文字列を返します。
func (d DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme:   "postgres",
		User:     url.UserPassword(d.User, d.Password),
		Host:     fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:     "/" + d.Name,
		RawQuery: "sslmode=" + url.QueryEscape(d.SSLMode),
	}
	return u.String()
}
