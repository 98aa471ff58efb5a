package epub

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/disintegration/imaging"
)

const thumbnailJPEGQuality = 85

// detectCover finds the cover image item in the package document.
// Methods are tried in priority order:
//  1. properties="cover-image" (EPUB 3.0)
//  2. meta name="cover" (EPUB 2.0)
//  3. guide type="cover" (matched to image manifest items)
//  4. filename pattern (basename contains "cover", case-insensitive, SVG excluded)
func detectCover(pkg *PackageDocument) (ManifestItem, bool) {
	for _, id := range pkg.ManifestOrder {
		item := pkg.Manifest[id]
		for _, prop := range item.Properties {
			if prop == "cover-image" {
				return item, true
			}
		}
	}

	if pkg.Metadata.CoverID != "" {
		if item, ok := pkg.Manifest[pkg.Metadata.CoverID]; ok {
			return item, true
		}
	}

	for _, ref := range pkg.Guide {
		if ref.Type != "cover" {
			continue
		}
		guideHref, _ := splitFragment(ref.Href)
		for _, id := range pkg.ManifestOrder {
			item := pkg.Manifest[id]
			if isImageMediaType(item.MediaType) && item.Href == guideHref {
				return item, true
			}
		}
	}

	for _, id := range pkg.ManifestOrder {
		item := pkg.Manifest[id]
		if !isImageMediaType(item.MediaType) {
			continue
		}
		base := item.Href
		if i := strings.LastIndex(base, "/"); i >= 0 {
			base = base[i+1:]
		}
		if strings.Contains(strings.ToLower(base), "cover") {
			return item, true
		}
	}

	return ManifestItem{}, false
}

// isImageMediaType checks if a media type is a raster image (SVG excluded).
func isImageMediaType(mediaType string) bool {
	if mediaType == "image/svg+xml" {
		return false
	}
	return strings.HasPrefix(mediaType, "image/")
}

// Cover returns the detected cover image with its bytes, or false when the
// book has no detectable cover.
func (b *Book) Cover() (*CoverImage, bool) {
	item, ok := detectCover(b.pkg)
	if !ok {
		return nil, false
	}
	data, ok := b.ResolveResource(item.Href, b.pkg.OPFDir)
	if !ok {
		return nil, false
	}
	return &CoverImage{
		ID:        item.ID,
		Href:      item.Href,
		MediaType: item.MediaType,
		Data:      data,
	}, true
}

// CoverThumbnail decodes the cover, downscales it to fit within
// maxWidth x maxHeight preserving aspect ratio, and re-encodes it as JPEG.
func (b *Book) CoverThumbnail(maxWidth, maxHeight int) ([]byte, error) {
	cover, ok := b.Cover()
	if !ok {
		return nil, fmt.Errorf("no cover image found")
	}

	img, err := imaging.Decode(bytes.NewReader(cover.Data))
	if err != nil {
		return nil, fmt.Errorf("failed to decode cover %s: %w", cover.Href, err)
	}

	thumb := imaging.Fit(img, maxWidth, maxHeight, imaging.Lanczos)

	var buf bytes.Buffer
	if err := imaging.Encode(&buf, thumb, imaging.JPEG, imaging.JPEGQuality(thumbnailJPEGQuality)); err != nil {
		return nil, fmt.Errorf("failed to encode thumbnail: %w", err)
	}
	return buf.Bytes(), nil
}
