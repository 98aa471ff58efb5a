package epub

import (
	"fmt"
	"strings"
)

const epubMimetype = "application/epub+zip"

// Book is the assembled, randomly-addressable model of one opened EPUB.
// It is the handle every downstream consumer works against; there is no
// ambient registry of open books. A Book is immutable after Open and safe
// for concurrent reads.
type Book struct {
	archive  *Archive
	pkg      *PackageDocument
	toc      []NavPoint
	chapters []Chapter
	warnings []string
}

// Open reads an EPUB file from disk and assembles the book model.
func Open(path string) (*Book, error) {
	a, err := OpenArchive(path)
	if err != nil {
		return nil, err
	}
	return fromArchive(a)
}

// OpenBytes assembles the book model from raw container bytes.
// The parse is a one-shot synchronous pipeline: archive index, container
// descriptor, package document, navigation source, chapters. Only a
// malformed archive or package aborts it; every other defect degrades and
// lands in Warnings.
func OpenBytes(data []byte) (*Book, error) {
	a, err := NewArchive(data)
	if err != nil {
		return nil, err
	}
	return fromArchive(a)
}

func fromArchive(a *Archive) (*Book, error) {
	b := &Book{archive: a}

	// A wrong or missing mimetype member is tolerated; plenty of real
	// books get this wrong.
	if data, ok := a.Find("mimetype"); !ok {
		b.warn("mimetype member missing")
	} else if strings.TrimSpace(string(data)) != epubMimetype {
		b.warn(fmt.Sprintf("unexpected mimetype %q", strings.TrimSpace(string(data))))
	}

	opfPath, _, err := resolveContainer(a)
	if err != nil {
		return nil, err
	}

	b.pkg, err = parsePackageDocument(a, opfPath)
	if err != nil {
		return nil, err
	}

	b.toc = resolveTOC(a, b.pkg)
	if len(b.toc) == 0 {
		b.warn("no usable navigation source; table of contents is empty")
	}

	var warnings []string
	b.chapters, warnings = assembleChapters(a, b.pkg, b.toc)
	b.warnings = append(b.warnings, warnings...)

	return b, nil
}

// Title returns the book title, or "Unknown" when the package declares none.
func (b *Book) Title() string { return b.pkg.Metadata.Title }

// Author returns the first declared creator, or "Unknown".
func (b *Book) Author() string { return b.pkg.Metadata.Author }

// Description returns the package description, possibly empty.
func (b *Book) Description() string { return b.pkg.Metadata.Description }

// Metadata returns the full package metadata.
func (b *Book) Metadata() Metadata { return b.pkg.Metadata }

// Package returns the parsed package document, retained for resource
// base-path queries.
func (b *Book) Package() *PackageDocument { return b.pkg }

// TOC returns the hierarchical table of contents. Empty for books without
// a usable navigation source.
func (b *Book) TOC() []NavPoint { return b.toc }

// Chapters returns the assembled chapters in spine order.
func (b *Book) Chapters() []Chapter { return b.chapters }

// ChapterAt returns the chapter at index i, or false when i is out of range.
func (b *Book) ChapterAt(i int) (Chapter, bool) {
	if i < 0 || i >= len(b.chapters) {
		return Chapter{}, false
	}
	return b.chapters[i], true
}

// ChapterForToken returns the chapter a position token points at. Malformed
// tokens resolve to the start of the book; an empty book returns false.
func (b *Book) ChapterForToken(token string) (Chapter, bool) {
	idx := DecodePosition(token)
	if idx >= len(b.chapters) {
		idx = 0
	}
	return b.ChapterAt(idx)
}

// ResolveResource resolves a relative asset reference against the archive.
// baseDir is usually BaseDirFor of the chapter the reference came from.
func (b *Book) ResolveResource(href, baseDir string) ([]byte, bool) {
	return resolveResource(b.archive, href, baseDir)
}

// BaseDirFor returns the directory references inside ch resolve against.
func (b *Book) BaseDirFor(ch Chapter) string {
	return chapterBaseDir(b.pkg, ch)
}

// Warnings returns the non-fatal defects recorded while assembling the
// model: skipped spine entries, missing navigation sources and the like.
func (b *Book) Warnings() []string { return b.warnings }

func (b *Book) warn(msg string) {
	b.warnings = append(b.warnings, msg)
}
