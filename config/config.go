package config

import (
	"errors"
	"fmt"
	"net/url"
	"os"
	"strings"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"

	MailDriverLog    = "log"
	MailDriverSMTP   = "smtp"
	MailDriverResend = "resend"
)

type Config struct {
	DB    Database
	App   Application
	Mail  Mail
	Queue Queue
	Log   Logging
}

// Database fields are only required by the postgres store driver; Validate
// enforces that.
type Database struct {
	Host     string `env:"DB_HOST"`
	Port     int    `env:"DB_PORT" env-default:"5432"`
	User     string `env:"DB_USER"`
	Password string `env:"DB_PASSWORD"`
	Database string `env:"DB_DATABASE"`
	Schema   string `env:"DB_SCHEMA" env-default:"public"`
	SSLMode  string `env:"DB_SSLMODE" env-default:"disable"`
}

type Application struct {
	SessionCookieName     string   `env:"SESSION_COOKIE_NAME" env-required:"true"`
	SessionCookieLifetime int      `env:"SESSION_COOKIE_LIFETIME" env-required:"true"`
	APIPath               string   `env:"API_PATH"`
	FrontendBaseURL       string   `env:"FRONTEND_BASE_URL" env-required:"true"`
	Debug                 bool     `env:"DEBUG" env-default:"false"`
	CookieDomain          string   `env:"COOKIE_DOMAIN"`
	CookieSecure          bool     `env:"COOKIE_SECURE" env-default:"true"`
	CORSOrigins           []string `env:"CORS_ORIGINS" env-default:"https://app.turva.org,http://localhost:5173,https://localhost/,http://localhost/"`
	HTTPAddr              string   `env:"HTTP_ADDR" env-default:":8080"`
	StoreDriver           string   `env:"STORE_DRIVER" env-default:"postgres"`
}

type Mail struct {
	Driver      string `env:"MAIL_DRIVER" env-default:"log"`
	FromAddress string `env:"MAIL_FROM_ADDRESS"`
	FromName    string `env:"MAIL_FROM_NAME" env-default:"Turva"`
	SMTPHost    string `env:"SMTP_HOST"`
	SMTPPort    int    `env:"SMTP_PORT" env-default:"587"`
	SMTPUser    string `env:"SMTP_USER"`
	SMTPPass    string `env:"SMTP_PASSWORD"`
	SMTPUseTLS  bool   `env:"SMTP_USE_TLS" env-default:"true"`
	ResendKey   string `env:"RESEND_API_KEY"`
}

type Queue struct {
	RedisAddr     string `env:"REDIS_ADDR"`
	RedisPassword string `env:"REDIS_PASSWORD"`
	RedisDB       int    `env:"REDIS_DB" env-default:"0"`
	Concurrency   int    `env:"WORKER_CONCURRENCY" env-default:"2"`
}

type Logging struct {
	Level  string `env:"LOG_LEVEL" env-default:"info"`
	Format string `env:"LOG_FORMAT" env-default:"json"`
}

// Load reads envFiles (missing files are ignored) into the process
// environment, then resolves and validates the configuration.
func Load(envFiles ...string) (Config, error) {
	for _, file := range envFiles {
		if err := godotenv.Load(file); err != nil && !errors.Is(err, os.ErrNotExist) {
			return Config{}, fmt.Errorf("load %s: %w", file, err)
		}
	}

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return Config{}, fmt.Errorf("read configuration: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func (c Config) Validate() error {
	var problems []string

	if c.App.SessionCookieLifetime <= 0 {
		problems = append(problems, "SESSION_COOKIE_LIFETIME must be a positive number of seconds")
	}
	if u, err := url.Parse(c.App.FrontendBaseURL); err != nil || u.Scheme == "" || u.Host == "" {
		problems = append(problems, "FRONTEND_BASE_URL must be an absolute URL")
	}

	switch c.App.StoreDriver {
	case StoreDriverPostgres:
		if c.DB.Host == "" || c.DB.User == "" || c.DB.Database == "" {
			problems = append(problems, "DB_HOST, DB_USER and DB_DATABASE are required by the postgres store")
		}
	case StoreDriverMemory:
	default:
		problems = append(problems, fmt.Sprintf("unknown STORE_DRIVER %q", c.App.StoreDriver))
	}

	switch c.Mail.Driver {
	case MailDriverLog:
	case MailDriverSMTP:
		if c.Mail.SMTPHost == "" || c.Mail.FromAddress == "" {
			problems = append(problems, "SMTP_HOST and MAIL_FROM_ADDRESS are required by the smtp mail driver")
		}
	case MailDriverResend:
		if c.Mail.ResendKey == "" || c.Mail.FromAddress == "" {
			problems = append(problems, "RESEND_API_KEY and MAIL_FROM_ADDRESS are required by the resend mail driver")
		}
	default:
		problems = append(problems, fmt.Sprintf("unknown MAIL_DRIVER %q", c.Mail.Driver))
	}

	if _, err := logrus.ParseLevel(c.Log.Level); err != nil {
		problems = append(problems, fmt.Sprintf("invalid LOG_LEVEL %q", c.Log.Level))
	}
	if c.Log.Format != "json" && c.Log.Format != "text" {
		problems = append(problems, fmt.Sprintf("invalid LOG_FORMAT %q", c.Log.Format))
	}

	if len(problems) > 0 {
		return fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}
	return nil
}

func (a Application) SessionLifetime() time.Duration {
	return time.Duration(a.SessionCookieLifetime) * time.Second
}

// From is the RFC 5322 sender, e.g. "Turva <noreply@turva.org>".
func (m Mail) From() string {
	if m.FromName == "" {
		return m.FromAddress
	}
	return fmt.Sprintf("%s <%s>", m.FromName, m.FromAddress)
}

func (q Queue) Enabled() bool {
	return q.RedisAddr != ""
}

// DSN renders a keyword/value connection string that pins search_path to the
// configured schema.
func (d Database) DSN() string {
	pairs := []string{
		"host=" + dsnValue(d.Host),
		fmt.Sprintf("port=%d", d.Port),
		"user=" + dsnValue(d.User),
		"dbname=" + dsnValue(d.Database),
		"sslmode=" + dsnValue(d.SSLMode),
		"search_path=" + dsnValue(d.Schema),
	}
	if d.Password != "" {
		pairs = append(pairs, "password="+dsnValue(d.Password))
	}
	return strings.Join(pairs, " ")
}

func dsnValue(value string) string {
	if value != "" && !strings.ContainsAny(value, ` '\`) {
		return value
	}
	escaped := strings.NewReplacer(`\`, `\\`, `'`, `\'`).Replace(value)
	return "'" + escaped + "'"
}
