package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// unknownField is the placeholder for absent title/author metadata.
const unknownField = "Unknown"

// opfPackage represents the OPF XML structure with Dublin Core namespaced
// metadata elements.
type opfPackage struct {
	XMLName  xml.Name    `xml:"package"`
	Version  string      `xml:"version,attr"`
	Metadata opfMetadata `xml:"metadata"`
	Manifest opfManifest `xml:"manifest"`
	Spine    opfSpine    `xml:"spine"`
	Guide    opfGuide    `xml:"guide"`
}

type opfMetadata struct {
	Title       []string `xml:"http://purl.org/dc/elements/1.1/ title"`
	Creator     []string `xml:"http://purl.org/dc/elements/1.1/ creator"`
	Description []string `xml:"http://purl.org/dc/elements/1.1/ description"`
	Language    []string `xml:"http://purl.org/dc/elements/1.1/ language"`
	Identifier  []string `xml:"http://purl.org/dc/elements/1.1/ identifier"`
	Publisher   []string `xml:"http://purl.org/dc/elements/1.1/ publisher"`
	Date        []string `xml:"http://purl.org/dc/elements/1.1/ date"`
	Subject     []string `xml:"http://purl.org/dc/elements/1.1/ subject"`
	Meta        []struct {
		Name    string `xml:"name,attr"`
		Content string `xml:"content,attr"`
	} `xml:"meta"`
}

// opfMetadataPlain captures metadata by bare local name for packages that
// drop the Dublin Core namespace. An unqualified field tag matches elements
// in any namespace, so this also sees properly namespaced documents; it is
// consulted only when the namespaced decode came up empty.
type opfPackagePlain struct {
	XMLName  xml.Name `xml:"package"`
	Metadata struct {
		Title       []string `xml:"title"`
		Creator     []string `xml:"creator"`
		Description []string `xml:"description"`
		Language    []string `xml:"language"`
		Identifier  []string `xml:"identifier"`
		Publisher   []string `xml:"publisher"`
		Date        []string `xml:"date"`
		Subject     []string `xml:"subject"`
	} `xml:"metadata"`
}

type opfManifest struct {
	Items []struct {
		ID         string `xml:"id,attr"`
		Href       string `xml:"href,attr"`
		MediaType  string `xml:"media-type,attr"`
		Properties string `xml:"properties,attr"`
	} `xml:"item"`
}

type opfSpine struct {
	Toc      string `xml:"toc,attr"`
	ItemRefs []struct {
		IDRef  string `xml:"idref,attr"`
		Linear string `xml:"linear,attr"`
	} `xml:"itemref"`
}

type opfGuide struct {
	References []struct {
		Type  string `xml:"type,attr"`
		Title string `xml:"title,attr"`
		Href  string `xml:"href,attr"`
	} `xml:"reference"`
}

// parsePackageDocument reads and parses the package document at opfPath.
// A missing member or undecodable XML fails with ErrMalformedPackage.
func parsePackageDocument(a *Archive, opfPath string) (*PackageDocument, error) {
	data, ok := a.Find(opfPath)
	if !ok {
		return nil, fmt.Errorf("%w: %s not found", ErrMalformedPackage, opfPath)
	}

	var pkg opfPackage
	if err := xml.Unmarshal(data, &pkg); err != nil {
		return nil, fmt.Errorf("%w: failed to parse %s: %v", ErrMalformedPackage, opfPath, err)
	}

	// Second decode for unqualified metadata fallback. The bytes already
	// parsed once, so the error here is unreachable in practice.
	var plain opfPackagePlain
	_ = xml.Unmarshal(data, &plain)

	doc := &PackageDocument{
		OPFPath:  opfPath,
		OPFDir:   dirPrefix(opfPath),
		Metadata: parseMetadata(&pkg, &plain),
		Manifest: make(map[string]ManifestItem, len(pkg.Manifest.Items)),
		TocID:    pkg.Spine.Toc,
	}

	// Manifest: items missing an id or href contribute nothing.
	for _, item := range pkg.Manifest.Items {
		if item.ID == "" || item.Href == "" {
			continue
		}
		mi := ManifestItem{
			ID:        item.ID,
			Href:      normalizePath(item.Href),
			MediaType: item.MediaType,
		}
		if item.Properties != "" {
			mi.Properties = strings.Fields(item.Properties)
		}
		if _, dup := doc.Manifest[item.ID]; !dup {
			doc.ManifestOrder = append(doc.ManifestOrder, item.ID)
		}
		doc.Manifest[item.ID] = mi
	}

	// Spine: order of appearance is reading order; duplicates permitted.
	for _, ref := range pkg.Spine.ItemRefs {
		if ref.IDRef == "" {
			continue
		}
		doc.Spine = append(doc.Spine, SpineItem{
			IDRef:  ref.IDRef,
			Linear: ref.Linear != "no",
		})
	}

	for _, ref := range pkg.Guide.References {
		doc.Guide = append(doc.Guide, GuideReference{
			Type:  ref.Type,
			Title: ref.Title,
			Href:  ref.Href,
		})
	}

	return doc, nil
}

// parseMetadata extracts metadata, preferring Dublin Core namespaced
// elements and falling back to unqualified local names. First match wins.
func parseMetadata(pkg *opfPackage, plain *opfPackagePlain) Metadata {
	md := Metadata{
		Title:       firstOr(unknownField, pkg.Metadata.Title, plain.Metadata.Title),
		Description: firstOr("", pkg.Metadata.Description, plain.Metadata.Description),
		Language:    firstOr("", pkg.Metadata.Language, plain.Metadata.Language),
		Identifier:  firstOr("", pkg.Metadata.Identifier, plain.Metadata.Identifier),
		Publisher:   firstOr("", pkg.Metadata.Publisher, plain.Metadata.Publisher),
		Date:        firstOr("", pkg.Metadata.Date, plain.Metadata.Date),
	}

	creators := pkg.Metadata.Creator
	if len(creators) == 0 {
		creators = plain.Metadata.Creator
	}
	for _, c := range creators {
		if c = strings.TrimSpace(c); c != "" {
			md.Creators = append(md.Creators, c)
		}
	}
	md.Author = unknownField
	if len(md.Creators) > 0 {
		md.Author = md.Creators[0]
	}

	md.Subjects = pkg.Metadata.Subject
	if len(md.Subjects) == 0 {
		md.Subjects = plain.Metadata.Subject
	}

	for _, m := range pkg.Metadata.Meta {
		if m.Name == "cover" && m.Content != "" {
			md.CoverID = m.Content
			break
		}
	}

	return md
}

// firstOr returns the first non-blank value from the candidate lists,
// trimmed, or def when every candidate is blank.
func firstOr(def string, lists ...[]string) string {
	for _, list := range lists {
		for _, v := range list {
			if v = strings.TrimSpace(v); v != "" {
				return v
			}
		}
	}
	return def
}
