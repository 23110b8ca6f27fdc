package config

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"

	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"

	StorageLocal = "local"
	StorageS3    = "s3"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Server    ServerConfig
	Database  DatabaseConfig
	JWT       JWTConfig
	Storage   StorageConfig
	Redis     RedisConfig
	RateLimit RateLimitConfig
	Phone     PhoneConfig
	Log       LogConfig
	Seed      SeedConfig
}

type AppConfig struct {
	Name    string
	Env     string
	Version string
}

// IsDevelopment reports whether error responses may expose internals
func (a AppConfig) IsDevelopment() bool {
	return a.Env == EnvDevelopment
}

type ServerConfig struct {
	Port       int
	BodyLimit  int
	CORSOrigin string
}

// Addr returns the listen address
func (s ServerConfig) Addr() string {
	return fmt.Sprintf(":%d", s.Port)
}

type DatabaseConfig struct {
	Driver string
	DSN    string
}

type JWTConfig struct {
	Secret           string
	RefreshSecret    string
	ExpiresIn        time.Duration
	RefreshExpiresIn time.Duration
	Issuer           string
}

type StorageConfig struct {
	Driver    string
	LocalDir  string
	PublicURL string
	S3        S3Config
}

type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string
	AccessKey string
	SecretKey string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Enabled reports whether a redis address was configured
func (r RedisConfig) Enabled() bool {
	return strings.TrimSpace(r.Addr) != ""
}

type RateLimitConfig struct {
	Login LoginLimitConfig
}

// LoginLimitConfig caps failed logins per email inside Window. A zero
// MaxAttempts disables throttling.
type LoginLimitConfig struct {
	MaxAttempts int
	Window      time.Duration
}

type PhoneConfig struct {
	DefaultRegion string
}

type LogConfig struct {
	Level  string
	Format string
}

type SeedConfig struct {
	Enabled bool
}

// Load reads defaults, an optional config file and the environment.
// When path is empty config.yaml and .env in the working directory are
// tried; neither is required.
func Load(path string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	} else if err := readOptional(v); err != nil {
		return nil, err
	}

	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	cfg, err := bindConfig(v)
	if err != nil {
		return nil, fmt.Errorf("failed to bind config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func readOptional(v *viper.Viper) error {
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	err := v.ReadInConfig()
	if err == nil {
		return nil
	}
	var notFound viper.ConfigFileNotFoundError
	if !errors.As(err, &notFound) {
		return fmt.Errorf("failed to read config file: %w", err)
	}

	env := viper.New()
	env.SetConfigFile(".env")
	env.SetConfigType("env")
	if err := env.ReadInConfig(); err != nil {
		return nil
	}
	for _, key := range env.AllKeys() {
		v.SetDefault(envToKey(key), env.Get(key))
	}
	return nil
}

// envToKey maps JWT_REFRESH_SECRET style names onto the dotted key they
// override. Unknown names are kept as is.
func envToKey(name string) string {
	name = strings.ToLower(name)
	for _, d := range defaults {
		if strings.ReplaceAll(d.key, ".", "_") == name {
			return d.key
		}
	}
	return name
}

var defaults = []struct {
	key   string
	value any
}{
	{"app.name", "tenant-auth"},
	{"app.env", EnvDevelopment},
	{"app.version", "1.0.0"},

	{"server.port", 5000},
	{"server.body_limit", 10 * 1024 * 1024},
	{"server.cors_origin", "*"},

	{"database.driver", DriverSQLite},
	{"database.dsn", "file:tenant-auth.db?cache=shared"},

	{"jwt.secret", ""},
	{"jwt.refresh_secret", ""},
	{"jwt.expires_in", "7d"},
	{"jwt.refresh_expires_in", "30d"},
	{"jwt.issuer", "tenant-auth"},

	{"storage.driver", StorageLocal},
	{"storage.local_dir", "uploads"},
	{"storage.public_url", "/uploads"},
	{"storage.s3.bucket", ""},
	{"storage.s3.region", "us-east-1"},
	{"storage.s3.endpoint", ""},
	{"storage.s3.access_key", ""},
	{"storage.s3.secret_key", ""},

	{"redis.addr", ""},
	{"redis.password", ""},
	{"redis.db", 0},

	{"ratelimit.login.max_attempts", 0},
	{"ratelimit.login.window", "15m"},

	{"phone.default_region", "IN"},

	{"log.level", "info"},
	{"log.format", "json"},

	{"seed.enabled", false},
}

func setDefaults(v *viper.Viper) {
	for _, d := range defaults {
		v.SetDefault(d.key, d.value)
	}
}

func bindConfig(v *viper.Viper) (*Config, error) {
	cfg := &Config{}

	cfg.App.Name = v.GetString("app.name")
	cfg.App.Env = v.GetString("app.env")
	cfg.App.Version = v.GetString("app.version")

	cfg.Server.Port = v.GetInt("server.port")
	cfg.Server.BodyLimit = v.GetInt("server.body_limit")
	cfg.Server.CORSOrigin = v.GetString("server.cors_origin")

	cfg.Database.Driver = strings.ToLower(v.GetString("database.driver"))
	cfg.Database.DSN = v.GetString("database.dsn")

	var err error
	cfg.JWT.Secret = v.GetString("jwt.secret")
	cfg.JWT.RefreshSecret = v.GetString("jwt.refresh_secret")
	if cfg.JWT.ExpiresIn, err = ParseDuration(v.GetString("jwt.expires_in")); err != nil {
		return nil, fmt.Errorf("jwt.expires_in: %w", err)
	}
	if cfg.JWT.RefreshExpiresIn, err = ParseDuration(v.GetString("jwt.refresh_expires_in")); err != nil {
		return nil, fmt.Errorf("jwt.refresh_expires_in: %w", err)
	}
	cfg.JWT.Issuer = v.GetString("jwt.issuer")

	cfg.Storage.Driver = strings.ToLower(v.GetString("storage.driver"))
	cfg.Storage.LocalDir = v.GetString("storage.local_dir")
	cfg.Storage.PublicURL = v.GetString("storage.public_url")
	cfg.Storage.S3.Bucket = v.GetString("storage.s3.bucket")
	cfg.Storage.S3.Region = v.GetString("storage.s3.region")
	cfg.Storage.S3.Endpoint = v.GetString("storage.s3.endpoint")
	cfg.Storage.S3.AccessKey = v.GetString("storage.s3.access_key")
	cfg.Storage.S3.SecretKey = v.GetString("storage.s3.secret_key")

	cfg.Redis.Addr = v.GetString("redis.addr")
	cfg.Redis.Password = v.GetString("redis.password")
	cfg.Redis.DB = v.GetInt("redis.db")

	cfg.RateLimit.Login.MaxAttempts = v.GetInt("ratelimit.login.max_attempts")
	if cfg.RateLimit.Login.Window, err = ParseDuration(v.GetString("ratelimit.login.window")); err != nil {
		return nil, fmt.Errorf("ratelimit.login.window: %w", err)
	}

	cfg.Phone.DefaultRegion = strings.ToUpper(v.GetString("phone.default_region"))

	cfg.Log.Level = strings.ToLower(v.GetString("log.level"))
	cfg.Log.Format = strings.ToLower(v.GetString("log.format"))

	cfg.Seed.Enabled = v.GetBool("seed.enabled")

	return cfg, nil
}

// ParseDuration accepts time.ParseDuration values plus a whole day
// suffix, so both "168h" and "7d" work.
func ParseDuration(raw string) (time.Duration, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	if days, ok := strings.CutSuffix(raw, "d"); ok {
		n, err := strconv.Atoi(days)
		if err != nil {
			return 0, fmt.Errorf("invalid duration %q", raw)
		}
		return time.Duration(n) * 24 * time.Hour, nil
	}
	return time.ParseDuration(raw)
}

// Validate checks the values the server cannot start without
func (c *Config) Validate() error {
	return validation.Errors{
		"server": validation.ValidateStruct(&c.Server,
			validation.Field(&c.Server.Port, validation.Required, validation.Min(1), validation.Max(65535)),
		),
		"database": validation.ValidateStruct(&c.Database,
			validation.Field(&c.Database.Driver, validation.Required, validation.In(DriverSQLite, DriverPostgres)),
			validation.Field(&c.Database.DSN, validation.Required),
		),
		"jwt": validation.ValidateStruct(&c.JWT,
			validation.Field(&c.JWT.Secret, validation.Required),
			validation.Field(&c.JWT.RefreshSecret,
				validation.Required,
				validation.By(differentFrom(c.JWT.Secret)),
			),
			validation.Field(&c.JWT.ExpiresIn, validation.Required, validation.Min(time.Second)),
			validation.Field(&c.JWT.RefreshExpiresIn, validation.Required, validation.Min(time.Second)),
		),
		"storage": validation.ValidateStruct(&c.Storage,
			validation.Field(&c.Storage.Driver, validation.Required, validation.In(StorageLocal, StorageS3)),
		),
		"s3": c.validateS3(),
		"ratelimit": validation.ValidateStruct(&c.RateLimit.Login,
			validation.Field(&c.RateLimit.Login.MaxAttempts, validation.Min(0)),
		),
	}.Filter()
}

func (c *Config) validateS3() error {
	if c.Storage.Driver != StorageS3 {
		return nil
	}
	return validation.ValidateStruct(&c.Storage.S3,
		validation.Field(&c.Storage.S3.Bucket, validation.Required),
		validation.Field(&c.Storage.S3.Region, validation.Required),
	)
}

func differentFrom(other string) validation.RuleFunc {
	return func(value any) error {
		if s, _ := value.(string); s != "" && s == other {
			return errors.New("must differ from the access token secret")
		}
		return nil
	}
}
