package preflight

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"trimveo/internal/config"
)

func TestCheckDirectoryAccess_OK(t *testing.T) {
	dir := t.TempDir()
	result := CheckDirectoryAccess("test", dir)
	if !result.Passed {
		t.Fatalf("expected pass for temp dir, got: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotExist(t *testing.T) {
	result := CheckDirectoryAccess("test", filepath.Join(t.TempDir(), "nope"))
	if result.Passed {
		t.Fatal("expected failure for missing dir")
	}
	if !strings.Contains(result.Detail, "does not exist") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}
}

func TestCheckDirectoryAccess_NotDir(t *testing.T) {
	f := filepath.Join(t.TempDir(), "file.txt")
	if err := os.WriteFile(f, []byte("x"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckReadableDirectory("test", f)
	if result.Passed {
		t.Fatal("expected failure for file path")
	}
}

func TestCheckDirectoryAccess_Empty(t *testing.T) {
	if result := CheckDirectoryAccess("test", ""); result.Passed {
		t.Fatal("expected failure for unset path")
	}
}

func TestCheckFormatList(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "validLTSF.txt")
	if err := os.WriteFile(path, []byte("! approved\n.pdf\ntxt\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	result := CheckFormatList(path)
	if !result.Passed {
		t.Fatalf("expected pass, got: %s", result.Detail)
	}
	if !strings.HasPrefix(result.Detail, "2 extensions") {
		t.Fatalf("unexpected detail: %s", result.Detail)
	}

	if result := CheckFormatList(filepath.Join(dir, "missing.txt")); result.Passed {
		t.Fatal("expected failure for missing list")
	}
	if result := CheckFormatList(""); result.Passed {
		t.Fatal("expected failure when no list is configured")
	}
}

func TestCheckTemplates_MissingCommon(t *testing.T) {
	if result := CheckTemplates(t.TempDir()); result.Passed {
		t.Fatal("expected failure without aglsCommon.txt")
	}
}

func TestCheckCredentials(t *testing.T) {
	if result := CheckCredentials("", ""); result.Passed {
		t.Fatal("expected failure for unset pfx")
	}

	path := filepath.Join(t.TempDir(), "signer.pfx")
	if err := os.WriteFile(path, []byte("not a pfx"), 0o600); err != nil {
		t.Fatal(err)
	}
	result := CheckCredentials(path, "")
	if !result.Passed {
		t.Fatalf("expected readable pfx to pass without a password, got: %s", result.Detail)
	}
	if result := CheckCredentials(path, "secret"); result.Passed {
		t.Fatal("expected failure decoding a corrupt pfx")
	}
}

func TestRunAll_NilConfig(t *testing.T) {
	if results := RunAll(nil); results != nil {
		t.Fatal("expected nil results for nil config")
	}
}

func TestRunAll_MinimalConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Formats.Approved = []string{".pdf"}
	cfg.Package.Sign = false

	results := RunAll(&cfg)
	// output + state + inline formats
	if len(results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(results))
	}
	if failed := Failed(results); len(failed) != 0 {
		t.Fatalf("unexpected failures: %+v", failed)
	}
}

func TestRunAll_IncludesCredentialsWhenSigning(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.OutputDir = t.TempDir()
	cfg.Paths.StateDir = t.TempDir()
	cfg.Paths.ContentDir = t.TempDir()
	cfg.Formats.Approved = []string{".pdf"}
	cfg.Package.Sign = true
	cfg.Signing.PFXFile = ""

	results := RunAll(&cfg)
	failed := Failed(results)
	if len(failed) != 1 || failed[0].Name != "Signing credentials" {
		t.Fatalf("expected only the credentials check to fail, got %+v", failed)
	}
	if len(results) != 5 {
		t.Fatalf("expected 5 results, got %d", len(results))
	}
}
