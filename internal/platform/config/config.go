package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"civicdesk/pkg/platform/strutil"
)

// Server captures process-level configuration. Values come from an optional
// YAML file named by CIVICDESK_CONFIG, then environment variables override.
type Server struct {
	Addr         string        `yaml:"addr"`
	LogLevel     string        `yaml:"log_level"`
	LogFormat    string        `yaml:"log_format"`
	Store        string        `yaml:"store"`
	RequestLimit time.Duration `yaml:"request_timeout"`

	Redis      RedisConfig      `yaml:"redis"`
	Postgres   PostgresConfig   `yaml:"postgres"`
	Classifier ClassifierConfig `yaml:"classifier"`
	Auth       AuthConfig       `yaml:"auth"`
	Media      MediaConfig      `yaml:"media"`
	Kafka      KafkaConfig      `yaml:"kafka"`
	CORS       CORSConfig       `yaml:"cors"`
}

// Grievance store backends.
const (
	StoreMemory   = "memory"
	StorePostgres = "postgres"
	StoreRedis    = "redis"
)

type RedisConfig struct {
	URL          string        `yaml:"url"`
	KeyPrefix    string        `yaml:"key_prefix"`
	PoolSize     int           `yaml:"pool_size"`
	MinIdleConns int           `yaml:"min_idle_conns"`
	DialTimeout  time.Duration `yaml:"dial_timeout"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
}

type PostgresConfig struct {
	DSN             string        `yaml:"dsn"`
	MaxConns        int32         `yaml:"max_conns"`
	MaxConnIdleTime time.Duration `yaml:"max_conn_idle_time"`
	MaxConnLifetime time.Duration `yaml:"max_conn_lifetime"`
}

type ClassifierConfig struct {
	APIKey           string        `yaml:"api_key"`
	Model            string        `yaml:"model"`
	BaseURL          string        `yaml:"base_url"`
	Timeout          time.Duration `yaml:"timeout"`
	FailureThreshold int           `yaml:"failure_threshold"`
	Cooldown         time.Duration `yaml:"cooldown"`
}

type AuthConfig struct {
	JWTSigningKey string        `yaml:"jwt_signing_key"`
	Issuer        string        `yaml:"issuer"`
	TokenTTL      time.Duration `yaml:"token_ttl"`
	RequireStaff  bool          `yaml:"require_staff"`
	// Identity accounts go to Postgres when set, otherwise memory.
	DSN string `yaml:"dsn"`
}

type MediaConfig struct {
	Bucket          string        `yaml:"bucket"`
	CredentialsFile string        `yaml:"credentials_file"`
	AccountSID      string        `yaml:"account_sid"`
	AuthToken       string        `yaml:"auth_token"`
	FetchTimeout    time.Duration `yaml:"fetch_timeout"`
}

type KafkaConfig struct {
	Brokers           []string `yaml:"brokers"`
	MessagesTopic     string   `yaml:"messages_topic"`
	Partitions        int32    `yaml:"partitions"`
	ReplicationFactor int16    `yaml:"replication_factor"`
}

type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// Defaults returns the development configuration.
func Defaults() Server {
	return Server{
		Addr:         ":8080",
		LogLevel:     "info",
		LogFormat:    "json",
		Store:        StoreMemory,
		RequestLimit: 30 * time.Second,
		Redis: RedisConfig{
			KeyPrefix:    "civicdesk:",
			PoolSize:     10,
			MinIdleConns: 2,
			DialTimeout:  5 * time.Second,
			ReadTimeout:  3 * time.Second,
			WriteTimeout: 3 * time.Second,
		},
		Postgres: PostgresConfig{
			MaxConns:        16,
			MaxConnIdleTime: 30 * time.Second,
			MaxConnLifetime: 5 * time.Minute,
		},
		Classifier: ClassifierConfig{
			Model:            "gemini-1.5-flash-latest",
			Timeout:          10 * time.Second,
			FailureThreshold: 5,
			Cooldown:         30 * time.Second,
		},
		Auth: AuthConfig{
			// Use a default for development - should be overridden in production
			JWTSigningKey: "dev-secret-key-change-in-production",
			Issuer:        "civicdesk",
			TokenTTL:      time.Hour,
		},
		Media: MediaConfig{
			FetchTimeout: 30 * time.Second,
		},
		Kafka: KafkaConfig{
			MessagesTopic:     "outbound-messages",
			Partitions:        1,
			ReplicationFactor: 1,
		},
		CORS: CORSConfig{AllowedOrigins: []string{"*"}},
	}
}

// FromEnv builds the config so main stays lean.
func FromEnv() (Server, error) {
	return load(os.Getenv, os.ReadFile)
}

func load(getenv func(string) string, readFile func(string) ([]byte, error)) (Server, error) {
	cfg := Defaults()

	if path := getenv("CIVICDESK_CONFIG"); path != "" {
		data, err := readFile(path)
		if err != nil {
			return Server{}, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return Server{}, fmt.Errorf("parse config file %s: %w", path, err)
		}
	}

	e := envReader{getenv: getenv}
	e.str("CIVICDESK_ADDR", &cfg.Addr)
	e.str("LOG_LEVEL", &cfg.LogLevel)
	e.str("LOG_FORMAT", &cfg.LogFormat)
	e.str("GRIEVANCE_STORE", &cfg.Store)
	e.duration("REQUEST_TIMEOUT", &cfg.RequestLimit)

	e.str("REDIS_URL", &cfg.Redis.URL)
	e.str("REDIS_KEY_PREFIX", &cfg.Redis.KeyPrefix)
	e.integer("REDIS_POOL_SIZE", &cfg.Redis.PoolSize)

	e.str("DATABASE_URL", &cfg.Postgres.DSN)

	e.str("GEMINI_KEY", &cfg.Classifier.APIKey)
	e.str("GEMINI_MODEL", &cfg.Classifier.Model)
	e.str("GEMINI_BASE_URL", &cfg.Classifier.BaseURL)
	e.duration("CLASSIFIER_TIMEOUT", &cfg.Classifier.Timeout)
	e.integer("CLASSIFIER_FAILURE_THRESHOLD", &cfg.Classifier.FailureThreshold)
	e.duration("CLASSIFIER_COOLDOWN", &cfg.Classifier.Cooldown)

	e.str("JWT_SIGNING_KEY", &cfg.Auth.JWTSigningKey)
	e.str("JWT_ISSUER", &cfg.Auth.Issuer)
	e.duration("JWT_TTL", &cfg.Auth.TokenTTL)
	e.boolean("AUTH_REQUIRE_STAFF", &cfg.Auth.RequireStaff)
	e.str("IDENTITY_DATABASE_URL", &cfg.Auth.DSN)

	e.str("MEDIA_BUCKET", &cfg.Media.Bucket)
	e.str("GOOGLE_APPLICATION_CREDENTIALS", &cfg.Media.CredentialsFile)
	e.str("TWILIO_ACCOUNT_SID", &cfg.Media.AccountSID)
	e.str("TWILIO_AUTH_TOKEN", &cfg.Media.AuthToken)
	e.duration("MEDIA_FETCH_TIMEOUT", &cfg.Media.FetchTimeout)

	e.list("KAFKA_BROKERS", &cfg.Kafka.Brokers)
	e.str("KAFKA_MESSAGES_TOPIC", &cfg.Kafka.MessagesTopic)

	e.list("CORS_ALLOWED_ORIGINS", &cfg.CORS.AllowedOrigins)

	if e.err != nil {
		return Server{}, e.err
	}
	if err := cfg.validate(); err != nil {
		return Server{}, err
	}
	return cfg, nil
}

func (c Server) validate() error {
	switch c.Store {
	case StoreMemory:
	case StorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("GRIEVANCE_STORE=postgres requires DATABASE_URL")
		}
	case StoreRedis:
		if c.Redis.URL == "" {
			return fmt.Errorf("GRIEVANCE_STORE=redis requires REDIS_URL")
		}
	default:
		return fmt.Errorf("unknown GRIEVANCE_STORE %q", c.Store)
	}
	if c.Auth.JWTSigningKey == "" {
		return fmt.Errorf("JWT_SIGNING_KEY must not be empty")
	}
	return nil
}

// envReader applies overrides, keeping the first parse error.
type envReader struct {
	getenv func(string) string
	err    error
}

func (e *envReader) str(key string, dst *string) {
	if v := e.getenv(key); v != "" {
		*dst = v
	}
}

func (e *envReader) list(key string, dst *[]string) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	*dst = strutil.SplitList(v, ",")
}

func (e *envReader) boolean(key string, dst *bool) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = b
}

func (e *envReader) integer(key string, dst *int) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = n
}

func (e *envReader) duration(key string, dst *time.Duration) {
	v := e.getenv(key)
	if v == "" {
		return
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		e.fail(key, err)
		return
	}
	*dst = d
}

func (e *envReader) fail(key string, err error) {
	if e.err == nil {
		e.err = fmt.Errorf("invalid %s: %w", key, err)
	}
}
