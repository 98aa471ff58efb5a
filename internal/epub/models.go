package epub

// PackageDocument represents the parsed OPF package document.
type PackageDocument struct {
	// OPFPath is the archive path of the package document itself.
	OPFPath string
	// OPFDir is the directory prefix of OPFPath. It is either empty or
	// ends with a path separator; manifest hrefs resolve relative to it.
	OPFDir string

	Metadata Metadata
	Manifest map[string]ManifestItem // id -> item
	// ManifestOrder holds manifest ids in document order. Map iteration is
	// randomized, so ordered scans (cover detection, nav lookup) use this.
	ManifestOrder []string
	Spine         []SpineItem
	Guide         []GuideReference
	// TocID is the spine toc attribute referencing the NCX manifest item.
	TocID string
}

// Metadata represents the metadata section of the OPF.
type Metadata struct {
	Title       string // "Unknown" when absent
	Author      string // first creator, "Unknown" when absent
	Description string // empty when absent
	Creators    []string
	Language    string
	Identifier  string
	Publisher   string
	Date        string
	Subjects    []string
	CoverID     string // EPUB 2.0 cover image manifest item ID (from meta name="cover")
}

// ManifestItem represents an item in the manifest. Href is kept relative
// to OPFDir; callers join the two when touching the archive.
type ManifestItem struct {
	ID         string
	Href       string
	MediaType  string
	Properties []string
}

// SpineItem represents an item reference in the spine.
type SpineItem struct {
	IDRef  string
	Linear bool
}

// GuideReference represents a reference in the OPF guide section.
type GuideReference struct {
	Type  string
	Title string
	Href  string
}

// NavPoint is a single entry in the table of contents. The TOC is a tree
// built strictly top-down from the navigation source; every node owns its
// children outright, so the structure is acyclic by construction.
type NavPoint struct {
	// Label is the trimmed display text of the entry.
	Label string
	// Href is the target reference, possibly carrying a #fragment suffix.
	Href string
	// Children holds nested entries in document order.
	Children []NavPoint
}

// Chapter is one assembled reading unit. Chapters are immutable once
// assembled and ordered exactly as the spine, minus skipped entries.
type Chapter struct {
	// Index is the position in the assembled chapter list. Indices stay
	// contiguous even when spine entries were skipped.
	Index int
	// ID is the manifest id of the spine entry.
	ID string
	// Href is the content path relative to the package document directory.
	Href string
	// Title is the display title resolved from the TOC, or "Chapter N".
	Title string
	// Content is the decoded markup text.
	Content string
}

// CoverImage holds the detected cover image.
type CoverImage struct {
	ID        string
	Href      string
	MediaType string
	Data      []byte
}
