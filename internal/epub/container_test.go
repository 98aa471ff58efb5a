package epub

import (
	"errors"
	"testing"
)

func TestResolveContainer(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "META-INF/container.xml", data: testContainerXML("OEBPS/content.opf")},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	opfPath, opfDir, err := resolveContainer(a)
	if err != nil {
		t.Fatalf("resolveContainer() error = %v", err)
	}
	if opfPath != "OEBPS/content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OEBPS/content.opf")
	}
	if opfDir != "OEBPS/" {
		t.Errorf("opfDir = %q, want %q", opfDir, "OEBPS/")
	}
}

func TestResolveContainer_RootLevelOPF(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "META-INF/container.xml", data: testContainerXML("content.opf")},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	opfPath, opfDir, err := resolveContainer(a)
	if err != nil {
		t.Fatalf("resolveContainer() error = %v", err)
	}
	if opfPath != "content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "content.opf")
	}
	if opfDir != "" {
		t.Errorf("opfDir = %q, want empty", opfDir)
	}
}

func TestResolveContainer_MissingDescriptor(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "mimetype", data: []byte("application/epub+zip")},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	if _, _, err := resolveContainer(a); !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("resolveContainer() error = %v, want ErrMalformedArchive", err)
	}
}

func TestResolveContainer_NoRootfilePath(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "META-INF/container.xml", data: []byte(`<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	if _, _, err := resolveContainer(a); !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("resolveContainer() error = %v, want ErrMalformedArchive", err)
	}
}

func TestResolveContainer_PrefersPackageMediaType(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "META-INF/container.xml", data: []byte(`<?xml version="1.0"?>
<container xmlns="urn:oasis:names:tc:opendocument:xmlns:container">
  <rootfiles>
    <rootfile full-path="extras/other.xml" media-type="text/xml"/>
    <rootfile full-path="OEBPS/content.opf" media-type="application/oebps-package+xml"/>
  </rootfiles>
</container>`)},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	opfPath, _, err := resolveContainer(a)
	if err != nil {
		t.Fatalf("resolveContainer() error = %v", err)
	}
	if opfPath != "OEBPS/content.opf" {
		t.Errorf("opfPath = %q, want %q", opfPath, "OEBPS/content.opf")
	}
}

func TestResolveContainer_UnparseableDescriptor(t *testing.T) {
	a, err := NewArchive(buildZip(t, []zipEntry{
		{name: "META-INF/container.xml", data: []byte("<container><unclosed")},
	}))
	if err != nil {
		t.Fatalf("NewArchive() error = %v", err)
	}

	if _, _, err := resolveContainer(a); !errors.Is(err, ErrMalformedArchive) {
		t.Fatalf("resolveContainer() error = %v, want ErrMalformedArchive", err)
	}
}

func TestDirPrefix(t *testing.T) {
	tests := []struct {
		name string
		path string
		want string
	}{
		{name: "nested", path: "OEBPS/content.opf", want: "OEBPS/"},
		{name: "deeply nested", path: "a/b/c.opf", want: "a/b/"},
		{name: "root level", path: "content.opf", want: ""},
		{name: "empty", path: "", want: ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := dirPrefix(tt.path); got != tt.want {
				t.Errorf("dirPrefix(%q) = %q, want %q", tt.path, got, tt.want)
			}
		})
	}
}
