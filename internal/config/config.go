package config

import (
	_ "embed"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/pelletier/go-toml/v2"
)

//go:embed sample_config.toml
var sampleConfig string

// Paths contains directory configuration.
type Paths struct {
	OutputDir   string `toml:"output_dir"`
	ContentDir  string `toml:"content_dir"`
	SupportDir  string `toml:"support_dir"`
	TemplateDir string `toml:"template_dir"`
	StateDir    string `toml:"state_dir"`
}

// Package contains settings applied to every generated package.
type Package struct {
	HashAlgorithm   string `toml:"hash_algorithm"`
	RDFIDPrefix     string `toml:"rdf_id_prefix"`
	LabelPrefix     string `toml:"label_prefix"`
	Sign            bool   `toml:"sign"`
	KeepDirectories bool   `toml:"keep_directories"`
}

// Signing contains the credentials used to seal packages.
type Signing struct {
	PFXFile     string `toml:"pfx_file"`
	PFXPassword string `toml:"pfx_password"`
	UserID      string `toml:"user_id"`
}

// Input controls how export files are discovered and decoded.
type Input struct {
	Encoding        string   `toml:"encoding"`
	Extensions      []string `toml:"extensions"`
	DuplicatePolicy string   `toml:"duplicate_policy"`
}

// Records contains record normalization settings.
type Records struct {
	// RecordTypes maps raw record type values to display labels. Entries are
	// merged over the built-in vocabulary.
	RecordTypes map[string]string `toml:"record_types"`
}

// Formats contains the long-term sustainable format allow-list.
type Formats struct {
	// Approved lists file extensions inline. When empty the list is read from
	// validLTSF.txt in the support directory.
	Approved []string `toml:"approved"`
}

// Ledger contains settings for the persistent record ledger.
type Ledger struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Logging contains configuration for log output.
type Logging struct {
	Format string `toml:"format"`
	Level  string `toml:"level"`
	File   string `toml:"file"`
}

// Config encapsulates all configuration values for the converter.
//
// Configuration sections by subsystem:
//   - Paths: output, content, support, template and state directories
//   - Package: hash algorithm, RDF identifiers, labels, signing toggle
//   - Signing: PFX credentials and the user recorded in package history
//   - Input: export encoding, directory walk extensions, duplicate handling
//   - Records: record type vocabulary overrides
//   - Formats: long-term sustainable format allow-list
//   - Ledger: SQLite ledger of converted records
//   - Logging: log format, level and optional file
type Config struct {
	Paths   Paths   `toml:"paths"`
	Package Package `toml:"package"`
	Signing Signing `toml:"signing"`
	Input   Input   `toml:"input"`
	Records Records `toml:"records"`
	Formats Formats `toml:"formats"`
	Ledger  Ledger  `toml:"ledger"`
	Logging Logging `toml:"logging"`
}

// DefaultConfigPath returns the absolute path to the default configuration file location.
func DefaultConfigPath() (string, error) {
	return expandPath(defaultConfigPath)
}

// Load locates, parses, and validates a configuration file. The returned config has all
// path fields expanded and normalized.
func Load(path string) (*Config, string, bool, error) {
	cfg := Default()

	resolvedPath, exists, err := resolveConfigPath(path)
	if err != nil {
		return nil, "", false, err
	}

	if exists {
		file, err := os.Open(resolvedPath)
		if err != nil {
			return nil, "", false, fmt.Errorf("open config: %w", err)
		}
		defer file.Close()

		decoder := toml.NewDecoder(file)
		decoder.DisallowUnknownFields()
		if err := decoder.Decode(&cfg); err != nil {
			return nil, "", false, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := cfg.normalize(); err != nil {
		return nil, "", false, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, "", false, err
	}

	return &cfg, resolvedPath, exists, nil
}

func resolveConfigPath(path string) (string, bool, error) {
	if path != "" {
		expanded, err := expandPath(path)
		if err != nil {
			return "", false, err
		}
		_, err = os.Stat(expanded)
		if err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				return expanded, false, nil
			}
			return "", false, fmt.Errorf("stat config: %w", err)
		}
		return expanded, true, nil
	}

	defaultPath, err := expandPath(defaultConfigPath)
	if err != nil {
		return "", false, err
	}

	projectPath, err := filepath.Abs("trimveo.toml")
	if err != nil {
		return "", false, err
	}

	if info, err := os.Stat(defaultPath); err == nil && !info.IsDir() {
		return defaultPath, true, nil
	}
	if info, err := os.Stat(projectPath); err == nil && !info.IsDir() {
		return projectPath, true, nil
	}

	return defaultPath, false, nil
}

// EnsureDirectories creates the output and state directories.
func (c *Config) EnsureDirectories() error {
	for _, dir := range []string{c.Paths.OutputDir, c.Paths.StateDir} {
		if strings.TrimSpace(dir) == "" {
			continue
		}
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create directory %q: %w", dir, err)
		}
	}
	return nil
}

// LedgerPath returns the ledger database location.
func (c *Config) LedgerPath() string {
	if strings.TrimSpace(c.Ledger.Path) != "" {
		return c.Ledger.Path
	}
	return filepath.Join(c.Paths.StateDir, "ledger.db")
}

// LockPath returns the run lock location.
func (c *Config) LockPath() string {
	return filepath.Join(c.Paths.StateDir, "trimveo.lock")
}

// LTSFListPath returns the location of the long-term sustainable format list.
func (c *Config) LTSFListPath() string {
	if c.Paths.SupportDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.SupportDir, "validLTSF.txt")
}

// ReadmePath returns the location of the optional VEOReadme.txt copied into
// every package.
func (c *Config) ReadmePath() string {
	if c.Paths.SupportDir == "" {
		return ""
	}
	return filepath.Join(c.Paths.SupportDir, "VEOReadme.txt")
}

func expandPath(pathValue string) (string, error) {
	if pathValue == "" {
		return pathValue, nil
	}
	if strings.HasPrefix(pathValue, "~") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("resolve home directory: %w", err)
		}
		if pathValue == "~" {
			pathValue = home
		} else if len(pathValue) > 1 && (pathValue[1] == '/' || pathValue[1] == '\\') {
			pathValue = filepath.Join(home, pathValue[2:])
		}
	}
	cleaned := filepath.Clean(pathValue)
	absolute, err := filepath.Abs(cleaned)
	if err != nil {
		return "", fmt.Errorf("resolve absolute path for %q: %w", cleaned, err)
	}
	return absolute, nil
}

// ExpandPath exposes the repository path expansion rules for other packages.
func ExpandPath(pathValue string) (string, error) {
	return expandPath(pathValue)
}

// CreateSample writes a sample configuration file to the specified location.
func CreateSample(path string) error {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create config directory: %w", err)
		}
	}

	if err := os.WriteFile(path, []byte(sampleConfig), 0o644); err != nil {
		return fmt.Errorf("write sample config: %w", err)
	}
	return nil
}
