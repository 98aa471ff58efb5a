package epub

import (
	"bytes"
	"encoding/xml"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

// ncxMediaType is the manifest media type of the legacy navigation control
// file (EPUB 2 NCX).
const ncxMediaType = "application/x-dtbncx+xml"

// resolveTOC locates and parses the navigation source of the book.
// Location order: the spine toc reference, then a manifest scan for the NCX
// media type, then an EPUB 3 manifest item with the "nav" property. Books
// without a usable navigation source yield an empty TOC, never an error.
func resolveTOC(a *Archive, pkg *PackageDocument) []NavPoint {
	item, ok := locateNavSource(pkg)
	if !ok {
		return nil
	}

	path := pkg.OPFDir + normalizePath(item.Href)
	data, ok := a.Find(path)
	if !ok {
		return nil
	}

	if item.MediaType == ncxMediaType || strings.HasSuffix(strings.ToLower(item.Href), ".ncx") {
		return parseNCX(data)
	}
	return parseNavDocument(data)
}

// locateNavSource picks the manifest item describing the table of contents.
func locateNavSource(pkg *PackageDocument) (ManifestItem, bool) {
	if pkg.TocID != "" {
		if item, ok := pkg.Manifest[pkg.TocID]; ok {
			return item, true
		}
	}

	for _, id := range pkg.ManifestOrder {
		if pkg.Manifest[id].MediaType == ncxMediaType {
			return pkg.Manifest[id], true
		}
	}

	for _, id := range pkg.ManifestOrder {
		for _, prop := range pkg.Manifest[id].Properties {
			if prop == "nav" {
				return pkg.Manifest[id], true
			}
		}
	}

	return ManifestItem{}, false
}

// --- NCX (EPUB 2) ---

type ncxDocument struct {
	XMLName xml.Name `xml:"ncx"`
	NavMap  struct {
		NavPoints []ncxNavPoint `xml:"navPoint"`
	} `xml:"navMap"`
}

// ncxNavPoint represents a <navPoint> element which may nest arbitrarily.
type ncxNavPoint struct {
	Label struct {
		Text string `xml:"text"`
	} `xml:"navLabel"`
	Content struct {
		Src string `xml:"src,attr"`
	} `xml:"content"`
	Children []ncxNavPoint `xml:"navPoint"`
}

// parseNCX parses NCX bytes into a NavPoint tree. Undecodable XML degrades
// to an empty TOC.
func parseNCX(data []byte) []NavPoint {
	var doc ncxDocument
	if err := xml.Unmarshal(data, &doc); err != nil {
		return nil
	}
	return convertNavPoints(doc.NavMap.NavPoints)
}

// convertNavPoints converts nested navPoint elements depth-first,
// preserving document order.
func convertNavPoints(points []ncxNavPoint) []NavPoint {
	if len(points) == 0 {
		return nil
	}
	out := make([]NavPoint, 0, len(points))
	for _, np := range points {
		out = append(out, NavPoint{
			Label:    strings.TrimSpace(np.Label.Text),
			Href:     strings.TrimSpace(np.Content.Src),
			Children: convertNavPoints(np.Children),
		})
	}
	return out
}

// --- Nav document (EPUB 3) ---

// parseNavDocument parses an EPUB 3 XHTML nav document. It uses the
// <nav epub:type="toc"> element, falling back to the first <nav> found.
func parseNavDocument(data []byte) []NavPoint {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(data))
	if err != nil {
		return nil
	}

	nav := doc.Find("nav").FilterFunction(func(_ int, s *goquery.Selection) bool {
		return hasEpubType(s, "toc")
	}).First()
	if nav.Length() == 0 {
		nav = doc.Find("nav").First()
	}
	if nav.Length() == 0 {
		return nil
	}

	return parseNavList(nav.Find("ol").First())
}

// parseNavList converts an <ol> into NavPoints, recursing into nested lists.
func parseNavList(ol *goquery.Selection) []NavPoint {
	var points []NavPoint
	ol.ChildrenFiltered("li").Each(func(_ int, li *goquery.Selection) {
		np := NavPoint{}
		if a := li.ChildrenFiltered("a").First(); a.Length() > 0 {
			np.Href, _ = a.Attr("href")
			np.Label = strings.TrimSpace(a.Text())
		} else if span := li.ChildrenFiltered("span").First(); span.Length() > 0 {
			np.Label = strings.TrimSpace(span.Text())
		}
		if sub := li.ChildrenFiltered("ol").First(); sub.Length() > 0 {
			np.Children = parseNavList(sub)
		}
		points = append(points, np)
	})
	return points
}

// hasEpubType checks whether the selection carries the given epub:type
// token (space-separated matching).
func hasEpubType(s *goquery.Selection, typeName string) bool {
	val, _ := s.Attr("epub:type")
	for _, t := range strings.Fields(val) {
		if t == typeName {
			return true
		}
	}
	return false
}

// splitFragment splits a TOC target into path and fragment identifier.
func splitFragment(src string) (path, fragment string) {
	if i := strings.IndexByte(src, '#'); i >= 0 {
		return src[:i], src[i+1:]
	}
	return src, ""
}

// flattenTOC collects all NavPoints depth-first into a flat slice.
func flattenTOC(points []NavPoint) []NavPoint {
	var flat []NavPoint
	for _, np := range points {
		flat = append(flat, np)
		flat = append(flat, flattenTOC(np.Children)...)
	}
	return flat
}
