package epub

import "strings"

// contentDirPrefixes are conventional top-level content directories tried
// as a last resort when resolving relative asset references.
var contentDirPrefixes = []string{"OEBPS/", "OPS/"}

// resolveResource resolves a relative asset reference (image, stylesheet)
// to archive bytes. Candidates are tried in order: the reference joined to
// baseDir, the bare reference, and the conventional content directories.
// Returns false when no candidate exists, so callers can substitute a
// placeholder.
func resolveResource(a *Archive, href, baseDir string) ([]byte, bool) {
	for _, candidate := range resourceCandidates(href, baseDir) {
		if data, ok := a.Find(candidate); ok {
			return data, true
		}
	}
	return nil, false
}

// resourceCandidates builds the ordered candidate paths for href.
func resourceCandidates(href, baseDir string) []string {
	n := normalizeHref(href)
	candidates := make([]string, 0, 2+len(contentDirPrefixes))
	candidates = append(candidates, baseDir+n, n)
	for _, prefix := range contentDirPrefixes {
		candidates = append(candidates, prefix+n)
	}
	return candidates
}

// normalizeHref strips any run of leading ../ and ./ segments.
func normalizeHref(href string) string {
	for {
		switch {
		case strings.HasPrefix(href, "../"):
			href = href[len("../"):]
		case strings.HasPrefix(href, "./"):
			href = href[len("./"):]
		default:
			return href
		}
	}
}

// chapterBaseDir computes the base directory for resolving references found
// inside a chapter: the package directory plus the chapter href's own
// directory component.
func chapterBaseDir(pkg *PackageDocument, ch Chapter) string {
	return pkg.OPFDir + dirPrefix(ch.Href)
}
