package config

const (
	defaultConfigPath      = "~/.config/trimveo/config.toml"
	defaultOutputDir       = "."
	defaultStateDir        = "~/.local/share/trimveo"
	defaultHashAlgorithm   = "SHA-512"
	defaultRDFIDPrefix     = "file:///"
	defaultLabelPrefix     = "Cabinet-in-Confidence Departmental Working Records: "
	defaultInputEncoding   = EncodingUTF16
	defaultDuplicatePolicy = DuplicateLastWriteWins
	defaultLogFormat       = "console"
	defaultLogLevel        = "info"

	// PasswordEnv names the environment variable consulted for the PFX password.
	PasswordEnv = "TRIMVEO_PFX_PASSWORD"
)

// Input encodings.
const (
	EncodingUTF16 = "utf-16"
	EncodingUTF8  = "utf-8"
)

// Duplicate identifier policies.
const (
	DuplicateLastWriteWins = "last_write_wins"
	DuplicateReject        = "reject"
)

var defaultInputExtensions = []string{".txt", ".tsv"}

// HashAlgorithms lists the supported package hash algorithms.
var HashAlgorithms = []string{"SHA-1", "SHA-256", "SHA-384", "SHA-512"}

// Default returns a Config populated with repository defaults.
func Default() Config {
	extensions := make([]string, len(defaultInputExtensions))
	copy(extensions, defaultInputExtensions)
	return Config{
		Paths: Paths{
			OutputDir: defaultOutputDir,
			StateDir:  defaultStateDir,
		},
		Package: Package{
			HashAlgorithm: defaultHashAlgorithm,
			RDFIDPrefix:   defaultRDFIDPrefix,
			LabelPrefix:   defaultLabelPrefix,
			Sign:          true,
		},
		Input: Input{
			Encoding:        defaultInputEncoding,
			Extensions:      extensions,
			DuplicatePolicy: defaultDuplicatePolicy,
		},
		Ledger: Ledger{
			Enabled: true,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
