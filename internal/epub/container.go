package epub

import (
	"encoding/xml"
	"fmt"
	"strings"
)

// containerPath is the fixed location of the container descriptor.
const containerPath = "META-INF/container.xml"

// packageMediaType marks a rootfile as an OPF package document.
const packageMediaType = "application/oebps-package+xml"

// containerXML models META-INF/container.xml.
type containerXML struct {
	Rootfiles struct {
		Rootfile []struct {
			FullPath  string `xml:"full-path,attr"`
			MediaType string `xml:"media-type,attr"`
		} `xml:"rootfile"`
	} `xml:"rootfiles"`
}

// resolveContainer reads the container descriptor and returns the package
// document path together with its directory prefix. A missing descriptor or
// a descriptor without a usable full-path fails with ErrMalformedArchive.
func resolveContainer(a *Archive) (opfPath, opfDir string, err error) {
	data, ok := a.Find(containerPath)
	if !ok {
		return "", "", fmt.Errorf("%w: %s not found", ErrMalformedArchive, containerPath)
	}

	var c containerXML
	if err := xml.Unmarshal(data, &c); err != nil {
		return "", "", fmt.Errorf("%w: failed to parse %s: %v", ErrMalformedArchive, containerPath, err)
	}

	// Prefer a rootfile declared as a package document, then fall back to
	// the first rootfile carrying a path at all.
	var fallback string
	for _, rf := range c.Rootfiles.Rootfile {
		full := normalizePath(strings.TrimSpace(rf.FullPath))
		if full == "" {
			continue
		}
		if strings.TrimSpace(rf.MediaType) == packageMediaType {
			return full, dirPrefix(full), nil
		}
		if fallback == "" {
			fallback = full
		}
	}
	if fallback != "" {
		return fallback, dirPrefix(fallback), nil
	}

	return "", "", fmt.Errorf("%w: no package document path in %s", ErrMalformedArchive, containerPath)
}

// dirPrefix returns the directory component of an archive path, up to and
// including the last separator. Empty when the path has no directory.
func dirPrefix(path string) string {
	if i := strings.LastIndex(path, "/"); i >= 0 {
		return path[:i+1]
	}
	return ""
}
