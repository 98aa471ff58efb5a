package epub

import (
	"strings"
	"testing"
)

func TestCleanContent_UnwrapsWrappers(t *testing.T) {
	ch := Chapter{Content: `<html><body>
<section><h1>Title</h1><article><p>Body text.</p></article></section>
</body></html>`}

	got, err := ch.CleanContent()
	if err != nil {
		t.Fatalf("CleanContent() error = %v", err)
	}

	for _, tag := range []string{"<section", "<article"} {
		if strings.Contains(got, tag) {
			t.Errorf("CleanContent() still contains %s: %q", tag, got)
		}
	}
	if !strings.Contains(got, "<h1>Title</h1>") {
		t.Errorf("CleanContent() lost heading: %q", got)
	}
	if !strings.Contains(got, "<p>Body text.</p>") {
		t.Errorf("CleanContent() lost paragraph: %q", got)
	}
}

func TestCleanContent_RemovesScriptAndStyle(t *testing.T) {
	ch := Chapter{Content: `<html><head><style>p{color:red}</style></head>
<body><p>Keep</p><script>alert("x")</script></body></html>`}

	got, err := ch.CleanContent()
	if err != nil {
		t.Fatalf("CleanContent() error = %v", err)
	}

	if strings.Contains(got, "script") || strings.Contains(got, "alert") {
		t.Errorf("CleanContent() kept script content: %q", got)
	}
	if !strings.Contains(got, "<p>Keep</p>") {
		t.Errorf("CleanContent() lost paragraph: %q", got)
	}
}

func TestCleanContent_EmptyWrapperRemoved(t *testing.T) {
	ch := Chapter{Content: `<html><body><p>a</p><section></section><p>b</p></body></html>`}

	got, err := ch.CleanContent()
	if err != nil {
		t.Fatalf("CleanContent() error = %v", err)
	}

	if strings.Contains(got, "<section") {
		t.Errorf("CleanContent() kept empty wrapper: %q", got)
	}
}

func TestCleanContent_MalformedMarkup(t *testing.T) {
	// Unclosed and misnested wrappers: the HTML5 parser repairs the tree
	// first, so the result is defined rather than order-sensitive.
	ch := Chapter{Content: `<body><section><p>one<aside>two</section></aside><p>three`}

	got, err := ch.CleanContent()
	if err != nil {
		t.Fatalf("CleanContent() error = %v", err)
	}

	for _, want := range []string{"one", "two", "three"} {
		if !strings.Contains(got, want) {
			t.Errorf("CleanContent() lost text %q: %q", want, got)
		}
	}
	for _, tag := range []string{"<section", "<aside"} {
		if strings.Contains(got, tag) {
			t.Errorf("CleanContent() still contains %s: %q", tag, got)
		}
	}
}

func TestChapterText(t *testing.T) {
	ch := Chapter{Content: `<html><head><style>p{}</style></head>
<body><h1>Heading</h1><p>First.</p><p>Second.</p><script>var x;</script></body></html>`}

	got := ch.Text()
	if strings.Contains(got, "var x") || strings.Contains(got, "p{}") {
		t.Errorf("Text() leaked script/style content: %q", got)
	}

	lines := strings.FieldsFunc(got, func(r rune) bool { return r == '\n' })
	var nonEmpty []string
	for _, l := range lines {
		if s := strings.TrimSpace(l); s != "" {
			nonEmpty = append(nonEmpty, s)
		}
	}
	want := []string{"Heading", "First.", "Second."}
	if len(nonEmpty) != len(want) {
		t.Fatalf("Text() lines = %v, want %v", nonEmpty, want)
	}
	for i := range want {
		if nonEmpty[i] != want[i] {
			t.Errorf("line %d = %q, want %q", i, nonEmpty[i], want[i])
		}
	}
}

func TestChapterAssets(t *testing.T) {
	b, err := OpenBytes(buildTestBook(t))
	if err != nil {
		t.Fatalf("OpenBytes() error = %v", err)
	}

	ch, _ := b.ChapterAt(0)
	assets, err := b.ChapterAssets(ch)
	if err != nil {
		t.Fatalf("ChapterAssets() error = %v", err)
	}

	if len(assets.Stylesheets) != 1 || assets.Stylesheets[0] != "../style/book.css" {
		t.Errorf("Stylesheets = %v, want [../style/book.css]", assets.Stylesheets)
	}
	if len(assets.Images) != 1 || assets.Images[0] != "../images/cover.png" {
		t.Errorf("Images = %v, want [../images/cover.png]", assets.Images)
	}

	// Every discovered asset must resolve through the archive.
	baseDir := b.BaseDirFor(ch)
	for _, ref := range append(assets.Stylesheets, assets.Images...) {
		if _, ok := b.ResolveResource(ref, baseDir); !ok {
			t.Errorf("asset %q did not resolve", ref)
		}
	}
}
