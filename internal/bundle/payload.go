// payload.go builds the data payload archive and handles the onefile
// packing trick: the zip archive is appended after the compiled
// executable image, followed by a fixed-size trailer recording the
// archive length, so the running application can locate and read its
// own bundled assets.
package bundle

import (
	"archive/zip"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
)

// payloadMagic terminates a packed executable. Its presence in the last
// eight bytes of a file is how OpenPayload decides a payload exists.
const payloadMagic = "PRGVBNDL"

// payloadTrailerSize is the appended trailer: an 8-byte little-endian
// archive length followed by the 8-byte magic.
const payloadTrailerSize = 16

// BuildPayloadArchive packs the descriptor's datas and both icon assets
// into an in-memory zip archive. Directory sources are walked
// recursively; every file keeps its bytes untouched, so extraction
// yields sources byte-identical to what was on disk at build time.
//
// Returns the archive plus one manifest entry per packed file.
func BuildPayloadArchive(baseDir string, d *Descriptor) ([]byte, []ManifestFile, error) {
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)

	var entries []ManifestFile
	seen := make(map[string]bool)

	addFile := func(srcPath, target string) error {
		// Data sources may overlap with the icon assets (a datas entry
		// shipping the whole assets/ directory is common). First
		// declaration wins; duplicates would corrupt the archive.
		target = path.Clean(filepath.ToSlash(target))
		if seen[target] {
			return nil
		}
		seen[target] = true

		data, err := os.ReadFile(srcPath)
		if err != nil {
			return fmt.Errorf("failed to read payload source %s: %w", srcPath, err)
		}

		w, err := zw.Create(target)
		if err != nil {
			return err
		}
		if _, err := w.Write(data); err != nil {
			return err
		}

		entries = append(entries, DigestBytes(data, target))
		return nil
	}

	addSource := func(source, target string) error {
		if target == "" {
			target = source
		}
		srcPath := filepath.Join(baseDir, filepath.FromSlash(source))

		info, err := os.Stat(srcPath)
		if err != nil {
			return fmt.Errorf("payload source not found: %s: %w", source, err)
		}
		if !info.IsDir() {
			return addFile(srcPath, target)
		}

		return filepath.WalkDir(srcPath, func(p string, de fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if de.IsDir() || !de.Type().IsRegular() {
				return nil
			}
			rel, err := filepath.Rel(srcPath, p)
			if err != nil {
				return err
			}
			return addFile(p, path.Join(target, filepath.ToSlash(rel)))
		})
	}

	for _, data := range d.Datas {
		if err := addSource(data.Source, data.Target); err != nil {
			return nil, nil, err
		}
	}

	// Both icon assets always ship, under their module-relative paths,
	// so the running application finds them where the source tree had
	// them.
	if err := addSource(d.Icon.Ico, d.Icon.Ico); err != nil {
		return nil, nil, err
	}
	if err := addSource(d.Icon.Png, d.Icon.Png); err != nil {
		return nil, nil, err
	}

	if err := zw.Close(); err != nil {
		return nil, nil, err
	}
	return buf.Bytes(), entries, nil
}

// AppendPayload appends the payload archive and its trailer to an
// already compiled executable. The executable image itself is not
// touched; Windows and Linux both ignore bytes after the image, which
// is what makes the onefile layout work.
func AppendPayload(exePath string, archive []byte) error {
	f, err := os.OpenFile(exePath, os.O_WRONLY|os.O_APPEND, 0)
	if err != nil {
		return fmt.Errorf("failed to open executable for payload append: %w", err)
	}

	trailer := make([]byte, payloadTrailerSize)
	binary.LittleEndian.PutUint64(trailer[:8], uint64(len(archive)))
	copy(trailer[8:], payloadMagic)

	if _, err := f.Write(archive); err != nil {
		f.Close()
		return fmt.Errorf("failed to append payload: %w", err)
	}
	if _, err := f.Write(trailer); err != nil {
		f.Close()
		return fmt.Errorf("failed to append payload trailer: %w", err)
	}
	return f.Close()
}

// Payload provides read access to the assets packed into an executable
// or a standalone payload archive. Close releases the underlying file.
type Payload struct {
	zr     *zip.Reader
	closer io.Closer
}

// OpenPayload opens the payload appended to a packed executable.
// Returns an error when the file carries no payload trailer.
func OpenPayload(exePath string) (*Payload, error) {
	f, err := os.Open(exePath)
	if err != nil {
		return nil, err
	}

	info, err := f.Stat()
	if err != nil {
		f.Close()
		return nil, err
	}
	size := info.Size()
	if size < payloadTrailerSize {
		f.Close()
		return nil, fmt.Errorf("%s carries no bundle payload", exePath)
	}

	trailer := make([]byte, payloadTrailerSize)
	if _, err := f.ReadAt(trailer, size-payloadTrailerSize); err != nil {
		f.Close()
		return nil, err
	}
	if string(trailer[8:]) != payloadMagic {
		f.Close()
		return nil, fmt.Errorf("%s carries no bundle payload", exePath)
	}

	archiveSize := int64(binary.LittleEndian.Uint64(trailer[:8]))
	if archiveSize < 0 || archiveSize > size-payloadTrailerSize {
		f.Close()
		return nil, fmt.Errorf("%s has a corrupt payload trailer", exePath)
	}

	section := io.NewSectionReader(f, size-payloadTrailerSize-archiveSize, archiveSize)
	zr, err := zip.NewReader(section, archiveSize)
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to read payload archive: %w", err)
	}

	return &Payload{zr: zr, closer: f}, nil
}

// OpenPayloadArchive opens a standalone payload archive, the layout
// used when the descriptor sets onefile to false.
func OpenPayloadArchive(zipPath string) (*Payload, error) {
	rc, err := zip.OpenReader(zipPath)
	if err != nil {
		return nil, err
	}
	return &Payload{zr: &rc.Reader, closer: rc}, nil
}

// Open returns a reader for a single payload file by its archive path.
func (p *Payload) Open(name string) (io.ReadCloser, error) {
	return p.zr.Open(name)
}

// ReadFile reads a single payload file into memory.
func (p *Payload) ReadFile(name string) ([]byte, error) {
	rc, err := p.zr.Open(name)
	if err != nil {
		return nil, err
	}
	defer rc.Close()
	return io.ReadAll(rc)
}

// Files returns the archive paths of all payload files, sorted.
func (p *Payload) Files() []string {
	names := make([]string, 0, len(p.zr.File))
	for _, f := range p.zr.File {
		names = append(names, f.Name)
	}
	sort.Strings(names)
	return names
}

// Close releases the underlying file handle.
func (p *Payload) Close() error {
	return p.closer.Close()
}
