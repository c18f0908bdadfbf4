package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultJWTSecret is only acceptable in development.
const DefaultJWTSecret = "ambucheck_jwt_secret_2026_01_28"

type Config struct {
	Addr          string        `yaml:"addr"`
	Env           string        `yaml:"env"`
	JWTSecret     string        `yaml:"jwt_secret"`
	APITimeout    time.Duration `yaml:"timeout"`
	TokenDuration time.Duration `yaml:"token_duration"`

	// Storage backend: DatabaseURL selects Postgres, DatabasePath selects
	// SQLite, otherwise JSON files under DataDir.
	DatabaseURL  string `yaml:"database_url"`
	DatabasePath string `yaml:"database_path"`
	DataDir      string `yaml:"data_dir"`

	UploadsDir           string `yaml:"uploads_dir"`
	MaxBodyBytes         int64  `yaml:"max_body_bytes"`
	AdminDefaultPassword string `yaml:"admin_default_password"`

	Storage StorageConfig `yaml:"storage"`
}

// StorageConfig holds the optional upload mirrors.
type StorageConfig struct {
	Supabase SupabaseConfig `yaml:"supabase"`
	S3       S3Config       `yaml:"s3"`
}

type SupabaseConfig struct {
	URL            string `yaml:"url"`
	ServiceRoleKey string `yaml:"service_role_key"`
	Bucket         string `yaml:"bucket"`
}

func (c SupabaseConfig) Enabled() bool {
	return c.URL != "" && c.ServiceRoleKey != ""
}

// S3Config covers AWS S3 and S3-compatible stores such as R2 (Endpoint set).
type S3Config struct {
	Bucket          string `yaml:"bucket"`
	Region          string `yaml:"region"`
	Endpoint        string `yaml:"endpoint"`
	AccessKeyID     string `yaml:"access_key_id"`
	SecretAccessKey string `yaml:"secret_access_key"`
	PublicURL       string `yaml:"public_url"`
}

func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// LoadConfig builds the configuration from the environment (a .env file in
// the working directory is loaded first, without overriding real variables)
// and then applies the YAML file at path, if given.
func LoadConfig(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	addr := getEnv("AMBUCHECK_ADDR", "")
	if addr == "" {
		addr = ":" + getEnv("PORT", "5001")
	}

	cfg := &Config{
		Addr:          addr,
		Env:           getEnv("AMBUCHECK_ENV", "development"),
		JWTSecret:     getEnv("AMBUCHECK_JWT_SECRET", getEnv("JWT_SECRET", DefaultJWTSecret)),
		APITimeout:    getDuration("AMBUCHECK_TIMEOUT", 30*time.Second),
		TokenDuration: getDuration("AMBUCHECK_TOKEN_DURATION", 24*time.Hour),

		DatabaseURL:  getEnv("AMBUCHECK_DATABASE_URL", getEnv("DATABASE_URL", "")),
		DatabasePath: getEnv("AMBUCHECK_DATABASE_PATH", ""),
		DataDir:      getEnv("AMBUCHECK_DATA_DIR", "data"),

		UploadsDir:           getEnv("AMBUCHECK_UPLOADS_DIR", "uploads"),
		MaxBodyBytes:         getInt64("AMBUCHECK_MAX_BODY_BYTES", 50<<20),
		AdminDefaultPassword: getEnv("ADMIN_DEFAULT_PASSWORD", "admin1994"),

		Storage: StorageConfig{
			Supabase: SupabaseConfig{
				URL:            strings.TrimRight(getEnv("SUPABASE_URL", ""), "/"),
				ServiceRoleKey: getEnv("SUPABASE_SERVICE_ROLE_KEY", ""),
				Bucket:         getEnv("SUPABASE_BUCKET", "uploads"),
			},
			S3: S3Config{
				Bucket:          getEnv("S3_BUCKET", ""),
				Region:          getEnv("S3_REGION", "us-east-1"),
				Endpoint:        getEnv("S3_ENDPOINT", ""),
				AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
				SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
				PublicURL:       getEnv("S3_PUBLIC_URL", ""),
			},
		},
	}
	if path != "" {
		f, err := os.Open(path)
		if err != nil {
			return nil, err
		}
		defer f.Close()

		dec := yaml.NewDecoder(f)
		if err := dec.Decode(cfg); err != nil {
			return nil, err
		}
	}

	return cfg, nil
}

// IsDevelopment reports whether insecure defaults are tolerated.
func (c *Config) IsDevelopment() bool {
	env := c.Env
	if v := os.Getenv("AMBUCHECK_ENV"); v != "" {
		env = v
	}
	return env == "" || env == "development"
}

// Validate checks the configuration and fills zero values with defaults.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr must not be empty")
	}
	if c.JWTSecret == "" {
		return errors.New("jwt_secret must not be empty")
	}
	if c.JWTSecret == DefaultJWTSecret && !c.IsDevelopment() {
		return errors.New("jwt_secret uses the built-in default; set JWT_SECRET outside development")
	}
	if c.DatabaseURL != "" && c.DatabasePath != "" {
		return errors.New("database_url and database_path are mutually exclusive")
	}
	if c.AdminDefaultPassword == "" {
		return errors.New("admin_default_password must not be empty")
	}

	if c.APITimeout <= 0 {
		c.APITimeout = 30 * time.Second
	}
	if c.TokenDuration <= 0 {
		c.TokenDuration = 24 * time.Hour
	}
	if c.MaxBodyBytes <= 0 {
		c.MaxBodyBytes = 50 << 20
	}
	if c.DataDir == "" {
		c.DataDir = "data"
	}
	if c.UploadsDir == "" {
		c.UploadsDir = "uploads"
	}
	if c.Storage.S3.Region == "" {
		c.Storage.S3.Region = "us-east-1"
	}
	if c.Storage.Supabase.Bucket == "" {
		c.Storage.Supabase.Bucket = "uploads"
	}

	return nil
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}

	return def
}

func getDuration(key string, def time.Duration) time.Duration {
	if d, err := time.ParseDuration(os.Getenv(key)); err == nil && d > 0 {
		return d
	}
	return def
}

func getInt64(key string, def int64) int64 {
	if n, err := strconv.ParseInt(os.Getenv(key), 10, 64); err == nil && n > 0 {
		return n
	}
	return def
}
