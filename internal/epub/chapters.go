package epub

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
)

// assembleChapters walks the spine in order and produces the chapter list.
// Spine entries without a manifest item, or whose content member is absent
// from the archive, are skipped silently; the skip is recorded as a warning
// and later indices close the gap.
func assembleChapters(a *Archive, pkg *PackageDocument, toc []NavPoint) ([]Chapter, []string) {
	flat := flattenTOC(toc)

	var chapters []Chapter
	var warnings []string
	for pos, si := range pkg.Spine {
		item, ok := pkg.Manifest[si.IDRef]
		if !ok {
			warnings = append(warnings, fmt.Sprintf("spine entry %q has no manifest item", si.IDRef))
			continue
		}

		href := normalizePath(item.Href)
		data, ok := a.Find(pkg.OPFDir + href)
		if !ok {
			warnings = append(warnings, fmt.Sprintf("content file %s not found in archive", pkg.OPFDir+href))
			continue
		}

		title, ok := tocTitleFor(flat, href)
		if !ok {
			title = fmt.Sprintf("Chapter %d", pos+1)
		}

		chapters = append(chapters, Chapter{
			Index:   len(chapters),
			ID:      si.IDRef,
			Href:    href,
			Title:   title,
			Content: decodeText(data),
		})
	}
	return chapters, warnings
}

// tocTitleFor scans the flattened TOC for an entry matching href. The
// fragment-free TOC target and the chapter href match when either is a
// substring of the other; the first match wins.
func tocTitleFor(flat []NavPoint, href string) (string, bool) {
	for _, np := range flat {
		target, _ := splitFragment(np.Href)
		target = normalizePath(strings.TrimSpace(target))
		if target == "" {
			continue
		}
		if strings.Contains(href, target) || strings.Contains(target, href) {
			return np.Label, true
		}
	}
	return "", false
}

// decodeText decodes content bytes as UTF-8, falling back to Latin-1 for
// legacy single-byte encodings. The fallback always succeeds; a decode
// problem is treated as data, never as an error.
func decodeText(data []byte) string {
	if utf8.Valid(data) {
		return string(data)
	}
	decoded, err := charmap.ISO8859_1.NewDecoder().Bytes(data)
	if err != nil {
		return string(data)
	}
	return string(decoded)
}
