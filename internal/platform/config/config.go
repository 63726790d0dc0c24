package config

import (
	"errors"
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Env      string `mapstructure:"APP_ENV"`
	HTTPAddr string `mapstructure:"HTTP_ADDR"`
	LogLevel string `mapstructure:"LOG_LEVEL"`
	Storage  string `mapstructure:"STORAGE"`

	DBHost     string `mapstructure:"DB_HOST"`
	DBPort     string `mapstructure:"DB_PORT"`
	DBUser     string `mapstructure:"DB_USER"`
	DBPassword string `mapstructure:"DB_PASSWORD"`
	DBName     string `mapstructure:"DB_NAME"`
	DBSSLMode  string `mapstructure:"DB_SSLMODE"`
	DBMaxConns int    `mapstructure:"DB_MAX_CONNS"`

	RedisAddr     string `mapstructure:"REDIS_ADDR"`
	RedisPassword string `mapstructure:"REDIS_PASSWORD"`
	RedisDB       int    `mapstructure:"REDIS_DB"`

	JWTSecret string `mapstructure:"JWT_SECRET"`

	SMTPHost   string `mapstructure:"SMTP_HOST"`
	SMTPPort   int    `mapstructure:"SMTP_PORT"`
	SMTPUser   string `mapstructure:"SMTP_USER"`
	SMTPPass   string `mapstructure:"SMTP_PASS"`
	SMTPFrom   string `mapstructure:"SMTP_FROM"`
	AdminEmail string `mapstructure:"ADMIN_EMAIL"`

	RabbitURL       string `mapstructure:"RABBIT_URL"`
	BookingExchange string `mapstructure:"BOOKING_EXCHANGE"`
	NotifyQueue     string `mapstructure:"NOTIFY_QUEUE"`

	RateLimitPerMin int    `mapstructure:"RATE_LIMIT_PER_MIN"`
	RateLimitBurst  int    `mapstructure:"RATE_LIMIT_BURST"`
	CORSOrigins     string `mapstructure:"CORS_ORIGINS"`
}

var defaults = map[string]any{
	"APP_ENV":            "development",
	"HTTP_ADDR":          ":8080",
	"LOG_LEVEL":          "info",
	"STORAGE":            "postgres",
	"DB_HOST":            "localhost",
	"DB_PORT":            "5432",
	"DB_USER":            "postgres",
	"DB_PASSWORD":        "",
	"DB_NAME":            "property_booking",
	"DB_SSLMODE":         "disable",
	"DB_MAX_CONNS":       25,
	"REDIS_ADDR":         "localhost:6379",
	"REDIS_PASSWORD":     "",
	"REDIS_DB":           0,
	"JWT_SECRET":         "",
	"SMTP_HOST":          "",
	"SMTP_PORT":          587,
	"SMTP_USER":          "",
	"SMTP_PASS":          "",
	"SMTP_FROM":          "",
	"ADMIN_EMAIL":        "",
	"RABBIT_URL":         "",
	"BOOKING_EXCHANGE":   "booking.exchange",
	"NOTIFY_QUEUE":       "booking:notifications",
	"RATE_LIMIT_PER_MIN": 30,
	"RATE_LIMIT_BURST":   10,
	"CORS_ORIGINS":       "*",
}

// Load reads an optional .env or config.yaml from the working directory and
// overlays environment variables. Every key has a default.
func Load(paths ...string) (Config, error) {
	v := viper.New()

	for key, value := range defaults {
		v.SetDefault(key, value)
	}
	v.AutomaticEnv()

	if len(paths) == 0 {
		paths = []string{"."}
	}

	for _, file := range []struct{ name, kind string }{{".env", "env"}, {"config", "yaml"}} {
		fv := viper.New()
		fv.SetConfigName(file.name)
		fv.SetConfigType(file.kind)
		for _, p := range paths {
			fv.AddConfigPath(p)
		}

		if err := fv.ReadInConfig(); err != nil {
			var notFound viper.ConfigFileNotFoundError
			if errors.As(err, &notFound) {
				continue
			}
			return Config{}, err
		}

		for _, key := range fv.AllKeys() {
			upper := strings.ToUpper(key)
			if _, set := os.LookupEnv(upper); set {
				continue
			}
			v.Set(upper, fv.Get(key))
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

func (c Config) IsProduction() bool {
	return c.Env == "production"
}

func (c Config) SMTPEnabled() bool {
	return c.SMTPHost != "" && c.SMTPUser != "" && c.SMTPPass != ""
}

func (c Config) AllowedOrigins() []string {
	var origins []string
	for _, o := range strings.Split(c.CORSOrigins, ",") {
		if o = strings.TrimSpace(o); o != "" {
			origins = append(origins, o)
		}
	}
	return origins
}
