package config

import (
	"fmt"
	"net/url"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Redis     RedisConfig     `mapstructure:"redis"`
	Auth      AuthConfig      `mapstructure:"auth"`
	Alerts    AlertConfig     `mapstructure:"alerts"`
	Email     EmailConfig     `mapstructure:"email"`
	Twilio    TwilioConfig    `mapstructure:"twilio"`
	RateLimit RateLimitConfig `mapstructure:"rate_limit"`
}

type ServerConfig struct {
	Port           int `mapstructure:"port"`
	TimeoutSeconds int `mapstructure:"timeoutSeconds"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	Name     string `mapstructure:"name"`
	SSLMode  string `mapstructure:"sslmode"`
}

// URL renders the postgres:// form used by the migration tooling.
func (c DatabaseConfig) URL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, url.QueryEscape(c.Password), c.Host, c.Port, c.Name, c.SSLMode)
}

type RedisConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	URL     string `mapstructure:"url"`
}

type AuthConfig struct {
	JWTSecret        string `mapstructure:"jwt_secret"`
	SessionHours     int    `mapstructure:"session_hours"`
	WebAdminPhone    string `mapstructure:"web_admin_phone"`
	OfficeAdminPhone string `mapstructure:"office_admin_phone"`
	CronSecret       string `mapstructure:"cron_secret"`
}

type AlertConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	SweepInterval time.Duration `mapstructure:"sweep_interval"`
}

type EmailConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Username string `mapstructure:"username"`
	Password string `mapstructure:"password"`
	From     string `mapstructure:"from"`
}

type TwilioConfig struct {
	AccountSID       string `mapstructure:"account_sid"`
	AuthToken        string `mapstructure:"auth_token"`
	FromNumber       string `mapstructure:"from_number"`
	VerifyServiceSID string `mapstructure:"verify_service_sid"`
}

type RateLimitConfig struct {
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	Burst             int     `mapstructure:"burst"`
	OTPWindowMinutes  int     `mapstructure:"otp_window_minutes"`
	OTPSendLimit      int     `mapstructure:"otp_send_limit"`
	OTPVerifyLimit    int     `mapstructure:"otp_verify_limit"`
}

// secrets are credentials that never live in config.yaml. They overlay the
// file values when the environment provides them.
type secrets struct {
	DBPassword       string `envconfig:"DB_PASSWORD"`
	JWTSecret        string `envconfig:"JWT_SECRET"`
	CronSecret       string `envconfig:"CRON_SECRET"`
	WebAdminPhone    string `envconfig:"WEB_ADMIN_PHONE"`
	OfficeAdminPhone string `envconfig:"OFFICE_ADMIN_PHONE"`
	SMTPUsername     string `envconfig:"SMTP_USERNAME"`
	SMTPPassword     string `envconfig:"SMTP_PASSWORD"`
	TwilioAccountSID string `envconfig:"TWILIO_ACCOUNT_SID"`
	TwilioAuthToken  string `envconfig:"TWILIO_AUTH_TOKEN"`
	TwilioVerifySID  string `envconfig:"TWILIO_VERIFY_SERVICE_SID"`
	TwilioFromNumber string `envconfig:"TWILIO_FROM_NUMBER"`
	RedisURL         string `envconfig:"REDIS_URL"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	config.applyDefaults()

	var sec secrets
	if err := envconfig.Process("", &sec); err != nil {
		return nil, fmt.Errorf("failed to read environment secrets: %w", err)
	}
	config.applySecrets(&sec)

	if config.Auth.JWTSecret == "" {
		return nil, fmt.Errorf("auth.jwt_secret is required (set JWT_SECRET)")
	}

	return &config, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.TimeoutSeconds == 0 {
		c.Server.TimeoutSeconds = 30
	}
	if c.Auth.SessionHours == 0 {
		c.Auth.SessionHours = 24
	}
	if c.Alerts.SweepInterval == 0 {
		c.Alerts.SweepInterval = time.Hour
	}
	if c.RateLimit.RequestsPerSecond == 0 {
		c.RateLimit.RequestsPerSecond = 50
	}
	if c.RateLimit.Burst == 0 {
		c.RateLimit.Burst = 100
	}
	if c.RateLimit.OTPWindowMinutes == 0 {
		c.RateLimit.OTPWindowMinutes = 15
	}
	if c.RateLimit.OTPSendLimit == 0 {
		c.RateLimit.OTPSendLimit = 5
	}
	if c.RateLimit.OTPVerifyLimit == 0 {
		c.RateLimit.OTPVerifyLimit = 10
	}
}

func (c *Config) applySecrets(sec *secrets) {
	if sec.DBPassword != "" {
		c.Database.Password = sec.DBPassword
	}
	if sec.JWTSecret != "" {
		c.Auth.JWTSecret = sec.JWTSecret
	}
	if sec.CronSecret != "" {
		c.Auth.CronSecret = sec.CronSecret
	}
	if sec.WebAdminPhone != "" {
		c.Auth.WebAdminPhone = sec.WebAdminPhone
	}
	if sec.OfficeAdminPhone != "" {
		c.Auth.OfficeAdminPhone = sec.OfficeAdminPhone
	}
	if sec.SMTPUsername != "" {
		c.Email.Username = sec.SMTPUsername
	}
	if sec.SMTPPassword != "" {
		c.Email.Password = sec.SMTPPassword
	}
	if sec.TwilioAccountSID != "" {
		c.Twilio.AccountSID = sec.TwilioAccountSID
	}
	if sec.TwilioAuthToken != "" {
		c.Twilio.AuthToken = sec.TwilioAuthToken
	}
	if sec.TwilioVerifySID != "" {
		c.Twilio.VerifyServiceSID = sec.TwilioVerifySID
	}
	if sec.TwilioFromNumber != "" {
		c.Twilio.FromNumber = sec.TwilioFromNumber
	}
	if sec.RedisURL != "" {
		c.Redis.URL = sec.RedisURL
		c.Redis.Enabled = true
	}
}
