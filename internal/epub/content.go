package epub

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"
)

// wrapperTags is the fixed set of structural wrapper elements removed when
// normalizing chapter markup for display. Each occurrence is unwrapped in
// place, hoisting its children; the element set matches the HTML5 semantic
// wrappers that carry no content of their own.
var wrapperTags = []string{
	"article",
	"section",
	"aside",
	"nav",
	"header",
	"footer",
	"figure",
}

// Assets lists the external references found inside one chapter's markup.
// Paths are as written in the document; resolve them with
// Book.ResolveResource against Book.BaseDirFor.
type Assets struct {
	Stylesheets []string
	Images      []string
}

// CleanContent normalizes the chapter markup for display: script and style
// subtrees are dropped, the fixed wrapper element set is unwrapped, and the
// inner HTML of the body is returned. Malformed markup is first repaired by
// the HTML5 parser, so the transformation does not depend on tag order.
func (c Chapter) CleanContent() (string, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.Content))
	if err != nil {
		return "", err
	}

	doc.Find("script, style").Remove()

	selector := strings.Join(wrapperTags, ", ")
	for {
		sel := doc.Find(selector).First()
		if sel.Length() == 0 {
			break
		}
		contents := sel.Contents()
		if contents.Length() == 0 {
			sel.Remove()
			continue
		}
		// Unwrap removes the parent of the matched nodes, which is the
		// wrapper element itself.
		contents.Unwrap()
	}

	body, err := doc.Find("body").Html()
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(body), nil
}

// ChapterAssets scans a chapter's markup for stylesheet links and image
// references.
func (b *Book) ChapterAssets(c Chapter) (Assets, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(c.Content))
	if err != nil {
		return Assets{}, err
	}

	var assets Assets
	doc.Find("link[rel='stylesheet']").Each(func(_ int, s *goquery.Selection) {
		if href, exists := s.Attr("href"); exists {
			assets.Stylesheets = append(assets.Stylesheets, href)
		}
	})
	doc.Find("img").Each(func(_ int, s *goquery.Selection) {
		if src, exists := s.Attr("src"); exists {
			assets.Images = append(assets.Images, src)
		}
	})
	return assets, nil
}

// blockTags insert a line break during text extraction.
var blockTags = map[atom.Atom]bool{
	atom.P:          true,
	atom.Br:         true,
	atom.Div:        true,
	atom.H1:         true,
	atom.H2:         true,
	atom.H3:         true,
	atom.H4:         true,
	atom.H5:         true,
	atom.H6:         true,
	atom.Li:         true,
	atom.Tr:         true,
	atom.Blockquote: true,
	atom.Hr:         true,
}

// skipTags have their content skipped entirely during text extraction.
var skipTags = map[atom.Atom]bool{
	atom.Script: true,
	atom.Style:  true,
}

// Text extracts the plain text of the chapter. Block-level elements produce
// line breaks; script and style content is skipped.
func (c Chapter) Text() string {
	tokenizer := html.NewTokenizer(strings.NewReader(c.Content))

	var buf strings.Builder
	skipDepth := 0
	for {
		switch tokenizer.Next() {
		case html.ErrorToken:
			// Tokenizing in-memory content only ever stops at EOF.
			return strings.TrimSpace(buf.String())

		case html.StartTagToken:
			name, _ := tokenizer.TagName()
			a := atom.Lookup(name)
			if skipTags[a] {
				skipDepth++
			} else if blockTags[a] {
				buf.WriteByte('\n')
			}

		case html.EndTagToken:
			name, _ := tokenizer.TagName()
			a := atom.Lookup(name)
			if skipTags[a] && skipDepth > 0 {
				skipDepth--
			} else if blockTags[a] {
				buf.WriteByte('\n')
			}

		case html.SelfClosingTagToken:
			name, _ := tokenizer.TagName()
			if blockTags[atom.Lookup(name)] {
				buf.WriteByte('\n')
			}

		case html.TextToken:
			if skipDepth == 0 {
				buf.Write(tokenizer.Text())
			}
		}
	}
}
