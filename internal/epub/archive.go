package epub

import (
	"archive/zip"
	"bytes"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
)

var (
	ErrMalformedArchive = errors.New("epub: malformed archive")
	ErrMalformedPackage = errors.New("epub: malformed package document")
)

// maxMemberSize caps the decompressed size of a single archive member to
// guard against zip bombs.
const maxMemberSize int64 = 256 * 1024 * 1024

// Archive is a read-only index over the members of an EPUB zip container.
// It is immutable after construction and safe for concurrent reads.
type Archive struct {
	files map[string]*zip.File
}

// NewArchive decodes raw container bytes into a random-access member index.
// Returns ErrMalformedArchive if the bytes are not a valid zip.
func NewArchive(data []byte) (*Archive, error) {
	zr, err := zip.NewReader(bytes.NewReader(data), int64(len(data)))
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrMalformedArchive, err)
	}

	a := &Archive{files: make(map[string]*zip.File, len(zr.File))}
	for _, f := range zr.File {
		a.files[normalizePath(f.Name)] = f
	}
	return a, nil
}

// OpenArchive reads an EPUB file from disk and indexes it.
func OpenArchive(path string) (*Archive, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open EPUB: %w", err)
	}
	return NewArchive(data)
}

// Has reports whether the archive contains a member at path.
func (a *Archive) Has(path string) bool {
	_, ok := a.files[normalizePath(path)]
	return ok
}

// Find returns the bytes of the member at path, or false if the member is
// absent or unreadable.
func (a *Archive) Find(path string) ([]byte, bool) {
	data, err := a.Read(path)
	if err != nil {
		return nil, false
	}
	return data, true
}

// Read returns the bytes of the member at path.
func (a *Archive) Read(path string) ([]byte, error) {
	f, ok := a.files[normalizePath(path)]
	if !ok {
		return nil, fmt.Errorf("file not found: %s", path)
	}

	if f.UncompressedSize64 > uint64(maxMemberSize) {
		return nil, fmt.Errorf("member %s too large: %d bytes", path, f.UncompressedSize64)
	}

	rc, err := f.Open()
	if err != nil {
		return nil, fmt.Errorf("failed to open member %s: %w", path, err)
	}
	defer rc.Close()

	// The declared size may be forged; read one byte past the limit to
	// detect oversized payloads.
	data, err := io.ReadAll(io.LimitReader(rc, maxMemberSize+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read member %s: %w", path, err)
	}
	if int64(len(data)) > maxMemberSize {
		return nil, fmt.Errorf("member %s exceeds size limit", path)
	}
	return data, nil
}

// Len returns the number of indexed members.
func (a *Archive) Len() int {
	return len(a.files)
}

// normalizePath normalizes member paths (removes ./ prefix).
func normalizePath(path string) string {
	return strings.TrimPrefix(path, "./")
}
