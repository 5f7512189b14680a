package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

const (
	EnvDev   = "dev"
	EnvStage = "stage"
	EnvProd  = "prod"
)

type Config struct {
	Env               string        `yaml:"env"`
	ClientOrigin      string        `yaml:"client_origin"`
	APIOrigin         string        `yaml:"api_origin"`
	WhitelistedEmails []string      `yaml:"whitelisted_emails"`
	StorageTimeout    time.Duration `yaml:"storage_timeout"`
	HTTPServer        `yaml:"http_server"`
	Postgres          `yaml:"postgres"`
	JWT               `yaml:"jwt"`
	SMTP              `yaml:"smtp"`
	RateLimit         `yaml:"rate_limit"`
}

type HTTPServer struct {
	Port           int           `yaml:"port"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
	IdleTimeout    time.Duration `yaml:"idle_timeout"`
	MaxHeaderBytes int           `yaml:"max_header_bytes"`
	CertFile       string        `yaml:"cert_file"`
	KeyFile        string        `yaml:"key_file"`
	AllowedOrigins []string      `yaml:"allowed_origins"`
}

var defaultHTTPServer = HTTPServer{
	Port:           8080,
	ReadTimeout:    5 * time.Second,
	WriteTimeout:   10 * time.Second,
	IdleTimeout:    time.Minute,
	MaxHeaderBytes: 1 << 20,
	AllowedOrigins: []string{"https://*"},
}

func (s *HTTPServer) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type Postgres struct {
	User            string        `yaml:"user"`
	Password        string        `yaml:"password"`
	Host            string        `yaml:"host"`
	Port            int           `yaml:"port"`
	DB              string        `yaml:"db"`
	SSLMode         string        `yaml:"sslmode"`
	ConnMaxIdleTime time.Duration `yaml:"conn_max_idle_time"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
}

var defaultPostgres = Postgres{
	Host:            "localhost",
	Port:            5432,
	SSLMode:         "disable",
	ConnMaxIdleTime: 5 * time.Minute,
	ConnMaxLifetime: 30 * time.Minute,
	MaxIdleConns:    5,
	MaxOpenConns:    25,
}

func (p *Postgres) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		p.User, p.Password, p.Host, p.Port, p.DB, p.SSLMode)
}

type JWT struct {
	AccessSecret     string        `yaml:"access_secret"`
	RefreshSecret    string        `yaml:"refresh_secret"`
	PassResetSecret  string        `yaml:"pass_reset_secret"`
	AccessTTL        time.Duration `yaml:"access_ttl"`
	RefreshTTL       time.Duration `yaml:"refresh_ttl"`
	PassResetTTL     time.Duration `yaml:"pass_reset_ttl"`
	RefreshCookieAge time.Duration `yaml:"refresh_cookie_age"`
}

var defaultJWT = JWT{
	AccessTTL:        30 * time.Minute,
	RefreshTTL:       7 * 24 * time.Hour,
	PassResetTTL:     time.Hour,
	RefreshCookieAge: 7 * 24 * time.Hour,
}

type SMTP struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	From     string `yaml:"from"`
}

var defaultSMTP = SMTP{
	Port: 587,
	From: "Shortly <no-reply@shortly.dev>",
}

// RateLimit holds per-category request budgets sharing one window length.
type RateLimit struct {
	Window    time.Duration `yaml:"window"`
	Basic     int           `yaml:"basic"`
	Auth      int           `yaml:"auth"`
	PassReset int           `yaml:"pass_reset"`
}

var defaultRateLimit = RateLimit{
	Window:    time.Hour,
	Basic:     100,
	Auth:      10,
	PassReset: 3,
}

func Load(path string) (*Config, error) {
	const op = "config.Load"

	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("%s: failed to open config file: %w", op, err)
	}
	defer f.Close()

	var cfg Config
	setDefaults(&cfg)

	if err := yaml.NewDecoder(f).Decode(&cfg); err != nil {
		return nil, fmt.Errorf("%s: failed to decode config file: %w", op, err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	cfg.Env = EnvDev
	cfg.ClientOrigin = "http://localhost:8080"
	cfg.APIOrigin = "http://localhost:8080"
	cfg.StorageTimeout = 5 * time.Second
	cfg.HTTPServer = defaultHTTPServer
	cfg.Postgres = defaultPostgres
	cfg.JWT = defaultJWT
	cfg.SMTP = defaultSMTP
	cfg.RateLimit = defaultRateLimit
}
