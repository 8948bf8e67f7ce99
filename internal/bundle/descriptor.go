package bundle

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/tidwall/jsonc"

	"github.com/progriv/progriv/internal/model"
)

// DescriptorFileName is the standard name of the bundling descriptor,
// expected at the module root.
const DescriptorFileName = "progriv.bundle.jsonc"

// Default descriptor values, applied for fields left empty in the file.
const (
	defaultName   = "Progriv"
	defaultEntry  = "./cmd/progriv"
	defaultGOOS   = "windows"
	defaultGOARCH = "amd64"
)

// Descriptor is the parsed bundling descriptor. It declares everything
// the freezing step needs to know about the application: which package
// to compile, which assets to ship, and which target to build for.
//
// The descriptor file is JSONC, so real-world files frequently carry
// comments next to the knobs they explain.
type Descriptor struct {
	// Name is the base name of the output executable. dist/<Name>.exe
	// is the final artifact. Defaults to "Progriv".
	Name string `json:"name"`

	// Entry is the module-relative path of the main package to compile,
	// e.g. "./cmd/progriv". Defaults to "./cmd/progriv".
	Entry string `json:"entry"`

	// Icon names the two icon assets. Both must exist: the .ico becomes
	// the Windows resource embedded in the executable, the .png is the
	// runtime icon shipped inside the payload for the UI theme.
	Icon IconSpec `json:"icon"`

	// Datas lists files and directories to ship verbatim inside the
	// bundle payload. Paths are relative to the module root.
	Datas []DataSpec `json:"datas,omitempty"`

	// HiddenImports lists module paths that must be present in go.mod
	// even though static analysis of the entry package cannot prove they
	// are needed. The bundler fails if any is absent from the manifest,
	// and generates underscore imports for them in the staged source so
	// the toolchain links them in.
	HiddenImports []string `json:"hiddenImports,omitempty"`

	// Excludes lists module paths that must NOT appear in go.mod.
	// These are bloat guards: the bundler fails if any is present.
	Excludes []string `json:"excludes,omitempty"`

	// Windowed builds the executable without a console window
	// (-ldflags -H=windowsgui). Only meaningful for windows targets.
	Windowed bool `json:"windowed"`

	// Onefile packs the data payload into the executable itself, so
	// dist/ contains exactly one file. When false the payload is written
	// next to the executable as <Name>.payload.zip.
	Onefile bool `json:"onefile"`

	// GOOS is the target operating system. Defaults to "windows".
	GOOS string `json:"goos"`

	// GOARCH is the target architecture. Defaults to "amd64".
	GOARCH string `json:"goarch"`
}

// IconSpec names the two icon assets referenced by the descriptor.
type IconSpec struct {
	// Ico is the module-relative path of the .ico file used for the
	// embedded Windows resource.
	Ico string `json:"ico"`

	// Png is the module-relative path of the .png file used by the
	// running application for its window icon and theme.
	Png string `json:"png"`
}

// DataSpec is a single payload entry: a source file or directory to
// ship, and the path it should appear under inside the payload.
type DataSpec struct {
	// Source is the module-relative path of the file or directory.
	Source string `json:"source"`

	// Target is the path inside the payload. Empty means "same as
	// source".
	Target string `json:"target"`
}

// LoadDescriptor reads and parses a bundling descriptor file.
//
// Comments and trailing commas are stripped with github.com/tidwall/jsonc
// before decoding, mirroring how the settings file is handled. Defaults
// are applied for name, entry and target platform, so a minimal
// descriptor only has to declare its icons and datas.
//
// Returns a CLIError with ExitConfigError when the file is missing or
// not valid JSONC.
func LoadDescriptor(path string) (*Descriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, model.WrapCLIError(
				model.ExitConfigError,
				fmt.Sprintf("bundle descriptor not found: %s", path),
				err,
			)
		}
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("failed to read bundle descriptor: %s", path),
			err,
		)
	}

	cleanJSON := jsonc.ToJSON(data)

	var d Descriptor
	if err := json.Unmarshal(cleanJSON, &d); err != nil {
		return nil, model.WrapCLIError(
			model.ExitConfigError,
			fmt.Sprintf("invalid bundle descriptor at %s", path),
			err,
		)
	}

	d.applyDefaults()
	return &d, nil
}

// applyDefaults fills empty descriptor fields with their defaults.
func (d *Descriptor) applyDefaults() {
	if d.Name == "" {
		d.Name = defaultName
	}
	if d.Entry == "" {
		d.Entry = defaultEntry
	}
	if d.GOOS == "" {
		d.GOOS = defaultGOOS
	}
	if d.GOARCH == "" {
		d.GOARCH = defaultGOARCH
	}
}

// OutputName returns the file name of the final executable, with the
// .exe suffix for windows targets.
func (d *Descriptor) OutputName() string {
	if d.GOOS == "windows" {
		return d.Name + ".exe"
	}
	return d.Name
}

// Target returns the goos/goarch pair in the conventional slash form,
// e.g. "windows/amd64". Used in logs and the staging manifest.
func (d *Descriptor) Target() string {
	return d.GOOS + "/" + d.GOARCH
}
