package preflight

import (
	"fmt"
	"os"

	"golang.org/x/sys/unix"

	"trimveo/internal/ltsf"
	"trimveo/internal/signing"
	"trimveo/internal/template"
)

// CheckDirectoryAccess verifies that the directory exists and is readable/writable.
func CheckDirectoryAccess(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.W_OK|unix.X_OK, "read/write ok")
}

// CheckReadableDirectory verifies that the directory exists and can be listed.
func CheckReadableDirectory(name, path string) Result {
	return checkDirectory(name, path, unix.R_OK|unix.X_OK, "read ok")
}

func checkDirectory(name, path string, mode uint32, okDetail string) Result {
	if path == "" {
		return Result{Name: name, Detail: "not configured"}
	}
	info, err := os.Stat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: does not exist)", path)}
		}
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: stat: %v)", path, err)}
	}
	if !info.IsDir() {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: is not a directory)", path)}
	}
	if err := unix.Access(path, mode); err != nil {
		return Result{Name: name, Detail: fmt.Sprintf("%s (error: insufficient permissions: %v)", path, err)}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (%s)", path, okDetail)}
}

// CheckInlineFormats reports the size of the formats.approved list.
func CheckInlineFormats(exts []string) Result {
	const name = "Approved formats"
	v := ltsf.New(exts...)
	if v.Len() == 0 {
		return Result{Name: name, Detail: "formats.approved lists no usable extensions"}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d extensions (formats.approved)", v.Len())}
}

// CheckFormatList verifies that validLTSF.txt parses and lists at least one
// extension.
func CheckFormatList(path string) Result {
	const name = "Approved formats"
	if path == "" {
		return Result{Name: name, Detail: "paths.support_dir not set and formats.approved empty"}
	}
	v, err := ltsf.Load(path)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%d extensions (%s)", v.Len(), path)}
}

// CheckTemplates verifies that the AGLS template fragment loads.
func CheckTemplates(dir string) Result {
	const name = "Templates"
	if _, err := template.Load(dir); err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: dir}
}

// CheckCredentials verifies the PFX file. The key is only decoded when a
// password is available; otherwise the file is checked for readability and
// the password is left to the interactive prompt.
func CheckCredentials(path, password string) Result {
	const name = "Signing credentials"
	if path == "" {
		return Result{Name: name, Detail: "signing.pfx_file not set"}
	}
	if password == "" {
		if err := unix.Access(path, unix.R_OK); err != nil {
			return Result{Name: name, Detail: fmt.Sprintf("%s (error: %v)", path, err)}
		}
		return Result{Name: name, Passed: true, Detail: fmt.Sprintf("%s (readable, password not checked)", path)}
	}
	signer, err := signing.LoadPFX(path, password)
	if err != nil {
		return Result{Name: name, Detail: err.Error()}
	}
	return Result{Name: name, Passed: true, Detail: signer.Subject()}
}
