package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizePackage()
	if err := c.normalizeSigning(); err != nil {
		return err
	}
	c.normalizeInput()
	c.normalizeFormats()
	if err := c.normalizeLedger(); err != nil {
		return err
	}
	return c.normalizeLogging()
}

// Normalize re-applies path expansion and value canonicalisation after
// callers override fields (for example from command-line flags).
func (c *Config) Normalize() error {
	return c.normalize()
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.OutputDir) == "" {
		c.Paths.OutputDir = defaultOutputDir
	}
	if c.Paths.OutputDir, err = expandPath(c.Paths.OutputDir); err != nil {
		return fmt.Errorf("paths.output_dir: %w", err)
	}
	if c.Paths.ContentDir, err = expandPath(strings.TrimSpace(c.Paths.ContentDir)); err != nil {
		return fmt.Errorf("paths.content_dir: %w", err)
	}
	if c.Paths.SupportDir, err = expandPath(strings.TrimSpace(c.Paths.SupportDir)); err != nil {
		return fmt.Errorf("paths.support_dir: %w", err)
	}
	if c.Paths.TemplateDir, err = expandPath(strings.TrimSpace(c.Paths.TemplateDir)); err != nil {
		return fmt.Errorf("paths.template_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePackage() {
	c.Package.HashAlgorithm = CanonicalHashAlgorithm(c.Package.HashAlgorithm)
	if c.Package.HashAlgorithm == "" {
		c.Package.HashAlgorithm = defaultHashAlgorithm
	}
	c.Package.RDFIDPrefix = strings.TrimSpace(c.Package.RDFIDPrefix)
	if c.Package.RDFIDPrefix == "" {
		c.Package.RDFIDPrefix = defaultRDFIDPrefix
	}
}

func (c *Config) normalizeSigning() error {
	var err error
	if c.Signing.PFXFile, err = expandPath(strings.TrimSpace(c.Signing.PFXFile)); err != nil {
		return fmt.Errorf("signing.pfx_file: %w", err)
	}
	if c.Signing.PFXPassword == "" {
		if value, ok := os.LookupEnv(PasswordEnv); ok {
			c.Signing.PFXPassword = value
		}
	}
	c.Signing.UserID = strings.TrimSpace(c.Signing.UserID)
	if c.Signing.UserID == "" {
		c.Signing.UserID = strings.TrimSpace(os.Getenv("USER"))
	}
	if c.Signing.UserID == "" {
		c.Signing.UserID = "unknown"
	}
	return nil
}

func (c *Config) normalizeInput() {
	c.Input.Encoding = strings.ToLower(strings.TrimSpace(c.Input.Encoding))
	switch c.Input.Encoding {
	case "", "utf16", "utf-16le", "utf-16be":
		c.Input.Encoding = EncodingUTF16
	case "utf8":
		c.Input.Encoding = EncodingUTF8
	}
	if len(c.Input.Extensions) == 0 {
		c.Input.Extensions = append([]string(nil), defaultInputExtensions...)
	}
	for i, ext := range c.Input.Extensions {
		c.Input.Extensions[i] = normalizeExtension(ext)
	}
	c.Input.DuplicatePolicy = strings.ToLower(strings.TrimSpace(c.Input.DuplicatePolicy))
	if c.Input.DuplicatePolicy == "" {
		c.Input.DuplicatePolicy = defaultDuplicatePolicy
	}
}

func (c *Config) normalizeFormats() {
	out := c.Formats.Approved[:0]
	for _, ext := range c.Formats.Approved {
		if ext = normalizeExtension(ext); ext != "" {
			out = append(out, ext)
		}
	}
	c.Formats.Approved = out
}

func (c *Config) normalizeLedger() error {
	var err error
	if c.Ledger.Path, err = expandPath(strings.TrimSpace(c.Ledger.Path)); err != nil {
		return fmt.Errorf("ledger.path: %w", err)
	}
	return nil
}

func (c *Config) normalizeLogging() error {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
	var err error
	if c.Logging.File, err = expandPath(strings.TrimSpace(c.Logging.File)); err != nil {
		return fmt.Errorf("logging.file: %w", err)
	}
	return nil
}

// CanonicalHashAlgorithm maps spellings such as "sha512" or "SHA-512" to the
// canonical name. Unknown values are returned upper-cased.
func CanonicalHashAlgorithm(value string) string {
	upper := strings.ToUpper(strings.TrimSpace(value))
	switch strings.ReplaceAll(upper, "-", "") {
	case "SHA1":
		return "SHA-1"
	case "SHA256":
		return "SHA-256"
	case "SHA384":
		return "SHA-384"
	case "SHA512":
		return "SHA-512"
	}
	return upper
}

func normalizeExtension(ext string) string {
	ext = strings.ToLower(strings.TrimSpace(ext))
	if ext == "" {
		return ""
	}
	if !strings.HasPrefix(ext, ".") {
		ext = "." + ext
	}
	return ext
}
