// validate.go provides structural validation for bundling descriptors.
//
// Validation runs against the module root the descriptor lives in, so
// every referenced path (entry package, icons, data sources) is checked
// for existence before the pipeline spends time staging and compiling.
// A descriptor that passes validation can still fail later (the manifest
// checks and the compile step have their own failure modes), but the
// common authoring mistakes are caught up front with field-level errors.
package bundle

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// ValidationError represents a specific validation failure in a
// bundling descriptor.
type ValidationError struct {
	// Field is the descriptor field that failed validation
	// (e.g. "icon.ico").
	Field string

	// Message describes what is wrong with the field value.
	Message string
}

// Error implements the error interface for ValidationError.
func (e *ValidationError) Error() string {
	return fmt.Sprintf("bundle descriptor validation error: %s: %s", e.Field, e.Message)
}

// Validate performs structural checks on a descriptor against the
// module root it describes. It returns a list of validation errors
// (empty list = valid descriptor).
//
// Checks performed:
//   - name: non-empty after defaults, no path separators
//   - entry: module-relative, the package directory exists
//   - icon: both assets declared, exist, and carry the right extension
//   - datas: every source exists
//   - windowed: only valid for windows targets
func (d *Descriptor) Validate(baseDir string) []ValidationError {
	var errors []ValidationError

	// Check 1: Name becomes the output file name, so it must not be
	// blank and must not try to escape dist/ via separators.
	if strings.TrimSpace(d.Name) == "" {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name must not be empty",
		})
	} else if strings.ContainsAny(d.Name, `/\`) {
		errors = append(errors, ValidationError{
			Field:   "name",
			Message: "name must not contain path separators",
		})
	}

	// Check 2: Entry must be a module-relative package path whose
	// directory exists. The "./" prefix is what `go build` expects for
	// package paths inside the current module.
	if !strings.HasPrefix(d.Entry, "./") {
		errors = append(errors, ValidationError{
			Field:   "entry",
			Message: fmt.Sprintf("entry must be a module-relative path starting with ./ (got %q)", d.Entry),
		})
	} else if !dirExists(filepath.Join(baseDir, filepath.FromSlash(d.Entry))) {
		errors = append(errors, ValidationError{
			Field:   "entry",
			Message: fmt.Sprintf("entry package directory not found: %s", d.Entry),
		})
	}

	// Check 3: Both icon assets are mandatory. The .ico is embedded as
	// a Windows resource, the .png ships in the payload for the UI.
	errors = append(errors, validateIcon(baseDir, "icon.ico", d.Icon.Ico, ".ico")...)
	errors = append(errors, validateIcon(baseDir, "icon.png", d.Icon.Png, ".png")...)

	// Check 4: Every declared data source must exist. Targets are free
	// form (they only name paths inside the payload archive).
	for i, data := range d.Datas {
		field := fmt.Sprintf("datas[%d].source", i)
		if data.Source == "" {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: "source must not be empty",
			})
			continue
		}
		if !pathExists(filepath.Join(baseDir, filepath.FromSlash(data.Source))) {
			errors = append(errors, ValidationError{
				Field:   field,
				Message: fmt.Sprintf("data source not found: %s", data.Source),
			})
		}
	}

	// Check 5: -H=windowsgui is a PE linker flag; other targets reject it.
	if d.Windowed && d.GOOS != "windows" {
		errors = append(errors, ValidationError{
			Field:   "windowed",
			Message: fmt.Sprintf("windowed builds require goos windows (got %q)", d.GOOS),
		})
	}

	return errors
}

// validateIcon checks a single icon asset declaration: the field must be
// set, the file must exist, and the extension must match what the field
// is for (the resource embedder and the UI loader each expect a specific
// format).
func validateIcon(baseDir, field, path, wantExt string) []ValidationError {
	if path == "" {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("icon asset is required (%s file)", wantExt),
		}}
	}
	if !strings.EqualFold(filepath.Ext(path), wantExt) {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("icon asset must be a %s file (got %s)", wantExt, path),
		}}
	}
	if !pathExists(filepath.Join(baseDir, filepath.FromSlash(path))) {
		return []ValidationError{{
			Field:   field,
			Message: fmt.Sprintf("icon asset not found: %s", path),
		}}
	}
	return nil
}

// ValidationErrorsToError folds a non-empty validation list into a
// single CLIError-compatible error message, one line per failure.
// Returns nil for an empty list.
func ValidationErrorsToError(errs []ValidationError) error {
	if len(errs) == 0 {
		return nil
	}
	lines := make([]string, 0, len(errs))
	for i := range errs {
		lines = append(lines, errs[i].Field+": "+errs[i].Message)
	}
	return fmt.Errorf("invalid bundle descriptor:\n  %s", strings.Join(lines, "\n  "))
}

func pathExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func dirExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && info.IsDir()
}
