// stage.go copies the module source into the staging area and prepares
// it for compilation: generated hidden-imports file, and the staging
// manifest written next to the staged tree.
package bundle

import (
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"time"

	"github.com/cespare/xxhash/v2"
	"gopkg.in/yaml.v3"
)

// EnvDirName is the isolated build environment directory at the module
// root. It holds the private module cache and build cache the pipeline
// points GOMODCACHE and GOCACHE at, and is never staged or shipped.
const EnvDirName = ".progriv-build"

// HiddenImportsFileName is the generated source file placed in the
// staged entry package to force linking of the descriptor's
// hiddenImports modules.
const HiddenImportsFileName = "bundle_imports.go"

// StagingManifestFileName is the manifest written into the staging
// directory describing every file packed into the bundle.
const StagingManifestFileName = "bundle.yaml"

// rootSkipDirs are module-root directories never copied into the
// staging area: prior build output and the isolated environment.
var rootSkipDirs = map[string]bool{
	"build":    true,
	"dist":     true,
	EnvDirName: true,
}

// vcsSkipDirs are version control directories skipped at any depth.
var vcsSkipDirs = map[string]bool{
	".git": true,
	".hg":  true,
	".svn": true,
}

// Stage copies the module tree from srcDir into dstDir, skipping prior
// build artifacts, the isolated environment and VCS directories. File
// permissions are preserved so staged scripts and the like stay
// executable.
func Stage(srcDir, dstDir string) error {
	if err := os.MkdirAll(dstDir, 0o755); err != nil {
		return fmt.Errorf("failed to create staging directory: %w", err)
	}

	return filepath.WalkDir(srcDir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		rel, err := filepath.Rel(srcDir, path)
		if err != nil {
			return err
		}
		if rel == "." {
			return nil
		}

		if d.IsDir() {
			if rootSkipDirs[rel] || vcsSkipDirs[d.Name()] {
				return filepath.SkipDir
			}
			return os.MkdirAll(filepath.Join(dstDir, rel), 0o755)
		}

		// Sockets, device nodes and symlinks have no place in a staged
		// module tree; only regular files are copied.
		if !d.Type().IsRegular() {
			return nil
		}

		return copyFile(path, filepath.Join(dstDir, rel))
	})
}

// copyFile copies a single regular file preserving its permission bits.
func copyFile(src, dst string) error {
	info, err := os.Stat(src)
	if err != nil {
		return err
	}

	in, err := os.Open(src)
	if err != nil {
		return err
	}
	defer in.Close()

	out, err := os.OpenFile(dst, os.O_WRONLY|os.O_CREATE|os.O_TRUNC, info.Mode().Perm())
	if err != nil {
		return err
	}

	if _, err := io.Copy(out, in); err != nil {
		out.Close()
		return err
	}
	return out.Close()
}

// WriteHiddenImportsFile generates a source file in the staged entry
// package containing one underscore import per hiddenImports module, so
// the compiler links modules the entry package never references
// directly. Returns the path of the written file, or empty when the
// descriptor declares no hidden imports.
func WriteHiddenImportsFile(entryDir string, imports []string) (string, error) {
	if len(imports) == 0 {
		return "", nil
	}

	var b []byte
	b = append(b, "// Code generated by progriv-dist; DO NOT EDIT.\n\npackage main\n\nimport (\n"...)
	for _, mod := range imports {
		b = append(b, fmt.Sprintf("\t_ %q\n", mod)...)
	}
	b = append(b, ")\n"...)

	path := filepath.Join(entryDir, HiddenImportsFileName)
	if err := os.WriteFile(path, b, 0o644); err != nil {
		return "", fmt.Errorf("failed to write hidden imports file: %w", err)
	}
	return path, nil
}

// StagingManifest describes one staged bundle: what was built, when,
// for which target, and the exact files that went into it.
type StagingManifest struct {
	// Name is the descriptor name (also the executable base name).
	Name string `yaml:"name"`

	// Target is the goos/goarch pair, e.g. "windows/amd64".
	Target string `yaml:"target"`

	// BuiltAt is the UTC timestamp of the bundling run.
	BuiltAt time.Time `yaml:"builtAt"`

	// Files lists every packed file with size and content digest,
	// sorted by path.
	Files []ManifestFile `yaml:"files"`
}

// ManifestFile is one packed file entry in the staging manifest.
type ManifestFile struct {
	// Path is the file's path inside the payload, or the executable
	// name for the compiled binary.
	Path string `yaml:"path"`

	// Size is the file size in bytes.
	Size int64 `yaml:"size"`

	// XXH64 is the xxhash-64 digest of the file contents, in fixed
	// width hex.
	XXH64 string `yaml:"xxh64"`
}

// DigestFile hashes a file's contents and returns its manifest entry
// under the given manifest path.
func DigestFile(path, manifestPath string) (ManifestFile, error) {
	f, err := os.Open(path)
	if err != nil {
		return ManifestFile{}, err
	}
	defer f.Close()

	h := xxhash.New()
	size, err := io.Copy(h, f)
	if err != nil {
		return ManifestFile{}, err
	}

	return ManifestFile{
		Path:  manifestPath,
		Size:  size,
		XXH64: fmt.Sprintf("%016x", h.Sum64()),
	}, nil
}

// DigestBytes returns a manifest entry for in-memory contents, used for
// files that exist only inside the payload archive.
func DigestBytes(data []byte, manifestPath string) ManifestFile {
	return ManifestFile{
		Path:  manifestPath,
		Size:  int64(len(data)),
		XXH64: fmt.Sprintf("%016x", xxhash.Sum64(data)),
	}
}

// WriteStagingManifest writes the staging manifest as YAML with a
// generated-file header comment. Entries are sorted by path so repeated
// runs produce stable output.
func WriteStagingManifest(path string, m *StagingManifest) error {
	sort.Slice(m.Files, func(i, j int) bool { return m.Files[i].Path < m.Files[j].Path })

	body, err := yaml.Marshal(m)
	if err != nil {
		return fmt.Errorf("failed to encode staging manifest: %w", err)
	}

	header := "# Staging manifest written by progriv-dist. DO NOT EDIT.\n" +
		"# Lists every file packed into the bundle with xxhash-64 digests.\n"
	return os.WriteFile(path, append([]byte(header), body...), 0o644)
}
