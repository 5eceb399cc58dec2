package config

import (
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds application level configuration loaded from environment variables.
type Config struct {
	AppEnv      string
	AppName     string
	LogLevel    string
	ServerPort  string
	DBDriver    string
	DBDSN       string
	ResetDB     bool
	RedisAddr   string
	RedisDB     int
	RedisPass   string
	JWTSecret   string
	AccessTTL   time.Duration
	RefreshTTL  time.Duration
	AuthRate    float64 // requests per second per client on /auth routes
	SwaggerHost string
}

// Load builds Config from environment with sensible defaults.
// MYSQL_DSN is still honoured when DB_DSN is not set.
func Load() *Config {
	return load(viper.New())
}

func load(v *viper.Viper) *Config {
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	setDefaults(v)

	dsn := v.GetString("DB_DSN")
	if dsn == "" {
		dsn = v.GetString("MYSQL_DSN")
	}

	return &Config{
		AppEnv:      v.GetString("APP_ENV"),
		AppName:     v.GetString("APP_NAME"),
		LogLevel:    v.GetString("LOG_LEVEL"),
		ServerPort:  v.GetString("SERVER_PORT"),
		DBDriver:    strings.ToLower(v.GetString("DB_DRIVER")),
		DBDSN:       dsn,
		ResetDB:     v.GetBool("RESET_DB"),
		RedisAddr:   v.GetString("REDIS_ADDR"),
		RedisDB:     v.GetInt("REDIS_DB"),
		RedisPass:   v.GetString("REDIS_PASSWORD"),
		JWTSecret:   v.GetString("JWT_SECRET"),
		AccessTTL:   v.GetDuration("JWT_ACCESS_TTL"),
		RefreshTTL:  v.GetDuration("JWT_REFRESH_TTL"),
		AuthRate:    v.GetFloat64("AUTH_RATE_LIMIT"),
		SwaggerHost: v.GetString("SWAGGER_HOST"),
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("APP_ENV", "development")
	v.SetDefault("APP_NAME", "jobboard")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("DB_DRIVER", "mysql")
	v.SetDefault("MYSQL_DSN", "user:password@tcp(localhost:3306)/app?charset=utf8mb4&parseTime=True&loc=Local")
	v.SetDefault("RESET_DB", false)
	v.SetDefault("REDIS_ADDR", "localhost:6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("JWT_SECRET", "change-me")
	v.SetDefault("JWT_ACCESS_TTL", 15*time.Minute)
	v.SetDefault("JWT_REFRESH_TTL", 7*24*time.Hour)
	v.SetDefault("AUTH_RATE_LIMIT", 5)
}

// IsDevelopment reports whether the app runs with developer ergonomics (console logs).
func (c *Config) IsDevelopment() bool {
	return c.AppEnv == "development"
}
