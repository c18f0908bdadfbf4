package config_test

import (
	"os"
	"testing"
	"time"

	"github.com/garnizeh/ambucheck/internal/config"
)

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range []string{
		"AMBUCHECK_ADDR", "PORT", "AMBUCHECK_ENV", "AMBUCHECK_JWT_SECRET", "JWT_SECRET",
		"AMBUCHECK_DATABASE_URL", "DATABASE_URL", "AMBUCHECK_DATABASE_PATH", "AMBUCHECK_DATA_DIR",
		"AMBUCHECK_UPLOADS_DIR", "ADMIN_DEFAULT_PASSWORD", "AMBUCHECK_TIMEOUT", "AMBUCHECK_TOKEN_DURATION",
		"S3_BUCKET", "S3_REGION", "S3_ENDPOINT", "S3_PUBLIC_URL", "AWS_ACCESS_KEY_ID", "AWS_SECRET_ACCESS_KEY",
		"SUPABASE_URL", "SUPABASE_SERVICE_ROLE_KEY", "SUPABASE_BUCKET",
	} {
		t.Setenv(k, "")
	}
}

func validConfig() *config.Config {
	return &config.Config{
		Addr:                 ":5001",
		JWTSecret:            config.DefaultJWTSecret,
		APITimeout:           5 * time.Second,
		TokenDuration:        time.Hour,
		AdminDefaultPassword: "pw",
	}
}

func TestValidate_InsecureJWT_FailsWhenNotDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AMBUCHECK_ENV", "production")

	if err := validConfig().Validate(); err == nil {
		t.Fatalf("expected Validate to fail for insecure JWT in non-development env")
	}
}

func TestValidate_InsecureJWT_AllowsDevelopment(t *testing.T) {
	clearEnv(t)
	t.Setenv("AMBUCHECK_ENV", "development")

	if err := validConfig().Validate(); err != nil {
		t.Fatalf("expected Validate to succeed in development env, got: %v", err)
	}
}

func TestValidate_InsecureJWT_FromFileEnv(t *testing.T) {
	clearEnv(t)

	cfg := validConfig()
	cfg.Env = "production"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected validation error for insecure jwt secret, got nil")
	}
}

func TestValidate_ExclusiveDatabases(t *testing.T) {
	clearEnv(t)

	cfg := validConfig()
	cfg.DatabaseURL = "postgres://x"
	cfg.DatabasePath = "ambucheck.db"
	if err := cfg.Validate(); err == nil {
		t.Fatalf("expected Validate to fail when both database_url and database_path are set")
	}
}

func TestValidate_DefaultsPopulated(t *testing.T) {
	clearEnv(t)

	cfg := &config.Config{Addr: ":1", JWTSecret: "strong", AdminDefaultPassword: "pw"}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Validate failed unexpectedly: %v", err)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("unexpected TokenDuration: %v", cfg.TokenDuration)
	}
	if cfg.UploadsDir != "uploads" || cfg.DataDir != "data" {
		t.Fatalf("unexpected dirs: %q %q", cfg.UploadsDir, cfg.DataDir)
	}
	if cfg.Storage.S3.Region != "us-east-1" {
		t.Fatalf("unexpected S3 region: %q", cfg.Storage.S3.Region)
	}
	if cfg.MaxBodyBytes <= 0 {
		t.Fatalf("expected MaxBodyBytes default")
	}
}

func TestLoadConfig_Defaults(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig returned error for empty path: %v", err)
	}

	if cfg.Addr != ":5001" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":5001")
	}
	if cfg.JWTSecret != config.DefaultJWTSecret {
		t.Fatalf("unexpected JWTSecret: got %q", cfg.JWTSecret)
	}
	if cfg.AdminDefaultPassword != "admin1994" {
		t.Fatalf("unexpected AdminDefaultPassword: %q", cfg.AdminDefaultPassword)
	}
	if cfg.TokenDuration != 24*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 24*time.Hour)
	}
	if cfg.Storage.S3.Enabled() || cfg.Storage.Supabase.Enabled() {
		t.Fatalf("expected mirrors disabled by default")
	}
}

func TestLoadConfig_WellKnownEnv(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	t.Setenv("PORT", "7000")
	t.Setenv("JWT_SECRET", "envkey")
	t.Setenv("DATABASE_URL", "postgres://db")
	t.Setenv("S3_BUCKET", "b")
	t.Setenv("AWS_ACCESS_KEY_ID", "id")
	t.Setenv("AWS_SECRET_ACCESS_KEY", "secret")
	t.Setenv("SUPABASE_URL", "https://x.supabase.co/")

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Addr != ":7000" {
		t.Fatalf("unexpected Addr: %q", cfg.Addr)
	}
	if cfg.JWTSecret != "envkey" || cfg.DatabaseURL != "postgres://db" {
		t.Fatalf("env not applied: %+v", cfg)
	}
	if !cfg.Storage.S3.Enabled() {
		t.Fatalf("expected S3 mirror enabled")
	}
	if cfg.Storage.Supabase.URL != "https://x.supabase.co" {
		t.Fatalf("expected trailing slash trimmed, got %q", cfg.Storage.Supabase.URL)
	}
	if cfg.Storage.Supabase.Enabled() {
		t.Fatalf("supabase needs a service role key")
	}
}

func TestLoadConfig_DotEnv(t *testing.T) {
	clearEnv(t)
	os.Unsetenv("JWT_SECRET")
	dir := t.TempDir()
	t.Chdir(dir)
	if err := os.WriteFile(".env", []byte("JWT_SECRET=fromdotenv\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { os.Unsetenv("JWT_SECRET") })

	cfg, err := config.LoadConfig("")
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.JWTSecret != "fromdotenv" {
		t.Fatalf("expected secret from .env, got %q", cfg.JWTSecret)
	}
}

func TestLoadConfig_FromFile(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())

	f, err := os.CreateTemp("", "config-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	content := []byte("addr: \":9090\"\njwt_secret: \"filekey\"\ntimeout: \"30s\"\ndatabase_path: \"test.db\"\ntoken_duration: \"2h\"\nstorage:\n  s3:\n    bucket: photos\n")
	if err := os.WriteFile(f.Name(), content, 0o600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	cfg, err := config.LoadConfig(f.Name())
	if err != nil {
		t.Fatalf("LoadConfig returned error for file: %v", err)
	}

	if cfg.Addr != ":9090" {
		t.Fatalf("unexpected Addr: got %q want %q", cfg.Addr, ":9090")
	}
	if cfg.JWTSecret != "filekey" {
		t.Fatalf("unexpected JWTSecret: got %q want %q", cfg.JWTSecret, "filekey")
	}
	if cfg.DatabasePath != "test.db" {
		t.Fatalf("unexpected DatabasePath: got %q want %q", cfg.DatabasePath, "test.db")
	}
	if cfg.APITimeout != 30*time.Second {
		t.Fatalf("unexpected APITimeout: got %v want %v", cfg.APITimeout, 30*time.Second)
	}
	if cfg.TokenDuration != 2*time.Hour {
		t.Fatalf("unexpected TokenDuration: got %v want %v", cfg.TokenDuration, 2*time.Hour)
	}
	if cfg.Storage.S3.Bucket != "photos" || cfg.Storage.S3.Region != "us-east-1" {
		t.Fatalf("unexpected S3 config: %+v", cfg.Storage.S3)
	}
}

func TestLoadConfig_BadPath(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	if _, err := config.LoadConfig("/path/that/does/not/exist.yaml"); err == nil {
		t.Fatalf("expected error for nonexistent path, got nil")
	}
}

func TestLoadConfig_BadYAML(t *testing.T) {
	clearEnv(t)
	t.Chdir(t.TempDir())
	f, err := os.CreateTemp("", "bad-*.yaml")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	defer os.Remove(f.Name())
	f.Close()

	if err := os.WriteFile(f.Name(), []byte("::: not yaml :::"), 0o600); err != nil {
		t.Fatalf("failed to write bad yaml: %v", err)
	}

	if _, err := config.LoadConfig(f.Name()); err == nil {
		t.Fatalf("expected YAML decode error, got nil")
	}
}
