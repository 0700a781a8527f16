package config

import (
	"errors"
	"fmt"
	"os"
	"slices"
	"strings"
)

// Validate ensures the configuration values are well formed.
func (c *Config) Validate() error {
	if err := c.validatePackage(); err != nil {
		return err
	}
	if err := c.validateInput(); err != nil {
		return err
	}
	if err := c.validateRecords(); err != nil {
		return err
	}
	return c.validateLogging()
}

// ValidateForConversion checks the settings a conversion run cannot start
// without. It runs after command-line overrides have been applied.
func (c *Config) ValidateForConversion() error {
	if err := c.Validate(); err != nil {
		return err
	}
	if len(c.Formats.Approved) == 0 {
		if c.Paths.SupportDir == "" {
			return errors.New("paths.support_dir must be set (it holds validLTSF.txt) or formats.approved must list extensions")
		}
		if _, err := os.Stat(c.LTSFListPath()); err != nil {
			return fmt.Errorf("paths.support_dir: read format list: %w", err)
		}
	}
	if c.Paths.TemplateDir != "" {
		if info, err := os.Stat(c.Paths.TemplateDir); err != nil || !info.IsDir() {
			return fmt.Errorf("paths.template_dir %q must be an existing directory", c.Paths.TemplateDir)
		}
	}
	if c.Package.Sign && c.Signing.PFXFile == "" {
		defaultPath, err := DefaultConfigPath()
		if err != nil {
			defaultPath = defaultConfigPath
		}
		return fmt.Errorf("signing.pfx_file is required when package.sign is true. Pass --pfx, or edit %s (create with 'trimveo config init')", defaultPath)
	}
	return nil
}

func (c *Config) validatePackage() error {
	if !slices.Contains(HashAlgorithms, c.Package.HashAlgorithm) {
		return fmt.Errorf("package.hash_algorithm must be one of %s", strings.Join(HashAlgorithms, ", "))
	}
	return nil
}

func (c *Config) validateInput() error {
	switch c.Input.Encoding {
	case EncodingUTF16, EncodingUTF8:
	default:
		return fmt.Errorf("input.encoding must be %q or %q", EncodingUTF16, EncodingUTF8)
	}
	switch c.Input.DuplicatePolicy {
	case DuplicateLastWriteWins, DuplicateReject:
	default:
		return fmt.Errorf("input.duplicate_policy must be %q or %q", DuplicateLastWriteWins, DuplicateReject)
	}
	return nil
}

func (c *Config) validateRecords() error {
	for raw, label := range c.Records.RecordTypes {
		if strings.TrimSpace(raw) == "" {
			return errors.New("records.record_types keys must not be empty")
		}
		if strings.TrimSpace(label) == "" {
			return fmt.Errorf("records.record_types[%q] must not be empty", raw)
		}
	}
	return nil
}

func (c *Config) validateLogging() error {
	switch c.Logging.Format {
	case "console", "json":
	default:
		return errors.New("logging.format must be console or json")
	}
	switch c.Logging.Level {
	case "debug", "info", "warn", "error":
	default:
		return errors.New("logging.level must be debug, info, warn, or error")
	}
	return nil
}
