package archive

import (
	"archive/zip"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/bodgit/sevenzip"

	"scsm/pkg/logging"
)

// Supported reports whether name has an extension Extract understands.
func Supported(name string) bool {
	if _, ok := compressionFromName(name); ok {
		return true
	}
	return strings.HasSuffix(name, ".zip") || strings.HasSuffix(name, ".7z")
}

// Extract unpacks the archive at src into dest. The format is chosen from
// the file extension: tarballs with any supported compression, zip or 7z.
func Extract(src, dest string) error {
	if err := os.MkdirAll(dest, 0o755); err != nil {
		return err
	}

	var err error
	switch {
	case strings.HasSuffix(src, ".zip"):
		err = extractZip(src, dest)
	case strings.HasSuffix(src, ".7z"):
		err = extract7z(src, dest)
	default:
		err = extractTarball(src, dest)
	}
	if err != nil {
		return fmt.Errorf("extracting %s: %w", src, err)
	}

	logging.Debug(subsystem, "extracted %s into %s", src, dest)
	return nil
}

func extractTarball(src, dest string) error {
	c, ok := compressionFromName(src)
	if !ok {
		return fmt.Errorf("unrecognised archive type")
	}

	f, err := os.Open(src)
	if err != nil {
		return err
	}
	defer f.Close()

	r, err := decompressReader(f, c)
	if err != nil {
		return err
	}
	defer r.Close()

	return extractTar(r, dest)
}

func extractZip(src, dest string) error {
	r, err := zip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractMember(dest, f.Name, f.Mode(), f.Open); err != nil {
			return err
		}
	}
	return nil
}

func extract7z(src, dest string) error {
	r, err := sevenzip.OpenReader(src)
	if err != nil {
		return err
	}
	defer r.Close()

	for _, f := range r.File {
		if err := extractMember(dest, f.Name, f.Mode(), f.Open); err != nil {
			return err
		}
	}
	return nil
}

// extractMember writes one zip or 7z entry.
func extractMember(dest, name string, mode os.FileMode, open func() (io.ReadCloser, error)) error {
	target, err := safeJoin(dest, name)
	if err != nil {
		return err
	}
	if err := checkParents(dest, target); err != nil {
		return err
	}

	if mode.IsDir() || strings.HasSuffix(name, "/") {
		return os.MkdirAll(target, 0o755)
	}

	rc, err := open()
	if err != nil {
		return err
	}
	defer rc.Close()

	perm := mode.Perm()
	if perm == 0 {
		perm = 0o644
	}
	if isSymlink(target) {
		os.Remove(target)
	}
	return writeFile(target, rc, perm)
}
