package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"trimveo/internal/config"
)

func TestLoadDefaultConfigExpandsPaths(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)
	t.Setenv("USER", "archivist")
	t.Setenv(config.PasswordEnv, "")
	t.Chdir(t.TempDir())

	cfg, resolved, exists, err := config.Load("")
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if resolved == "" {
		t.Fatal("expected resolved path")
	}
	if exists {
		t.Fatal("expected config file to be absent in temp HOME")
	}

	wantState := filepath.Join(tempHome, ".local", "share", "trimveo")
	if cfg.Paths.StateDir != wantState {
		t.Fatalf("unexpected state dir: got %q want %q", cfg.Paths.StateDir, wantState)
	}
	if !filepath.IsAbs(cfg.Paths.OutputDir) {
		t.Fatalf("expected absolute output dir, got %q", cfg.Paths.OutputDir)
	}
	if cfg.Package.HashAlgorithm != "SHA-512" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Package.HashAlgorithm)
	}
	if !cfg.Package.Sign {
		t.Fatal("expected signing enabled by default")
	}
	if cfg.Input.DuplicatePolicy != config.DuplicateLastWriteWins {
		t.Fatalf("unexpected duplicate policy: %q", cfg.Input.DuplicatePolicy)
	}
	if cfg.Input.Encoding != config.EncodingUTF16 {
		t.Fatalf("unexpected encoding: %q", cfg.Input.Encoding)
	}
	if cfg.Signing.UserID != "archivist" {
		t.Fatalf("expected user id from USER, got %q", cfg.Signing.UserID)
	}
	if got := cfg.LedgerPath(); got != filepath.Join(wantState, "ledger.db") {
		t.Fatalf("unexpected ledger path %q", got)
	}
}

func TestLoadCustomConfigOverridesDefaults(t *testing.T) {
	tempHome := t.TempDir()
	t.Setenv("HOME", tempHome)

	configPath := filepath.Join(tempHome, "config.toml")
	content := []byte(`
[paths]
output_dir = "~/out"
support_dir = "~/support"

[package]
hash_algorithm = "sha256"
sign = false

[input]
encoding = "UTF8"
extensions = ["txt", ".TSV"]
duplicate_policy = "reject"

[records.record_types]
"LEGACY FILE" = "Legacy File"

[formats]
approved = ["PDF", ".txt"]
`)
	if err := os.WriteFile(configPath, content, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := config.Load(configPath)
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if !exists {
		t.Fatal("expected config to exist")
	}
	if cfg.Paths.OutputDir != filepath.Join(tempHome, "out") {
		t.Fatalf("unexpected output dir: %q", cfg.Paths.OutputDir)
	}
	if cfg.Package.HashAlgorithm != "SHA-256" {
		t.Fatalf("unexpected hash algorithm: %q", cfg.Package.HashAlgorithm)
	}
	if cfg.Input.Encoding != config.EncodingUTF8 {
		t.Fatalf("unexpected encoding: %q", cfg.Input.Encoding)
	}
	if strings.Join(cfg.Input.Extensions, ",") != ".txt,.tsv" {
		t.Fatalf("unexpected extensions: %v", cfg.Input.Extensions)
	}
	if strings.Join(cfg.Formats.Approved, ",") != ".pdf,.txt" {
		t.Fatalf("unexpected approved formats: %v", cfg.Formats.Approved)
	}
	if cfg.Records.RecordTypes["LEGACY FILE"] != "Legacy File" {
		t.Fatalf("unexpected record types: %v", cfg.Records.RecordTypes)
	}
	if err := cfg.ValidateForConversion(); err != nil {
		t.Fatalf("ValidateForConversion: %v", err)
	}
}

func TestLoadRejectsUnknownKeys(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("[package]\nhash = \"SHA-512\"\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
	if _, _, _, err := config.Load(path); err == nil {
		t.Fatal("expected unknown key to be rejected")
	}
}

func TestValidateErrors(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*config.Config)
		want   string
	}{
		{"hash", func(c *config.Config) { c.Package.HashAlgorithm = "MD5" }, "package.hash_algorithm"},
		{"encoding", func(c *config.Config) { c.Input.Encoding = "latin1" }, "input.encoding"},
		{"duplicates", func(c *config.Config) { c.Input.DuplicatePolicy = "first" }, "input.duplicate_policy"},
		{"record types", func(c *config.Config) { c.Records.RecordTypes = map[string]string{"X": " "} }, "records.record_types"},
		{"log format", func(c *config.Config) { c.Logging.Format = "xml" }, "logging.format"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := config.Default()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if err == nil || !strings.Contains(err.Error(), tc.want) {
				t.Fatalf("expected error mentioning %q, got %v", tc.want, err)
			}
		})
	}
}

func TestValidateForConversionRequiresFormatsAndSigner(t *testing.T) {
	cfg := config.Default()
	if err := cfg.ValidateForConversion(); err == nil || !strings.Contains(err.Error(), "paths.support_dir") {
		t.Fatalf("expected support dir error, got %v", err)
	}

	cfg.Formats.Approved = []string{".pdf"}
	if err := cfg.ValidateForConversion(); err == nil || !strings.Contains(err.Error(), "signing.pfx_file") {
		t.Fatalf("expected pfx error, got %v", err)
	}

	cfg.Package.Sign = false
	if err := cfg.ValidateForConversion(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestPasswordFromEnvironment(t *testing.T) {
	t.Setenv("HOME", t.TempDir())
	t.Setenv(config.PasswordEnv, "s3cret")
	cfg, _, _, err := config.Load(filepath.Join(t.TempDir(), "missing.toml"))
	if err != nil {
		t.Fatalf("Load returned error: %v", err)
	}
	if cfg.Signing.PFXPassword != "s3cret" {
		t.Fatalf("expected password from env, got %q", cfg.Signing.PFXPassword)
	}
}

func TestSampleConfigDecodes(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sample.toml")
	if err := config.CreateSample(path); err != nil {
		t.Fatalf("CreateSample: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read sample: %v", err)
	}
	var cfg config.Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		t.Fatalf("sample config does not decode: %v", err)
	}
	if cfg.Package.HashAlgorithm != "SHA-512" {
		t.Fatalf("unexpected sample hash algorithm %q", cfg.Package.HashAlgorithm)
	}
}
