package epub

import (
	"fmt"
	"regexp"
	"strconv"
)

// Reading positions travel as compact ASCII tokens of the form pos(/6/N)
// where N is a positive even integer derived from the chapter index. The
// scheme is internal and chapter-granular; it is not a general document
// addressing format.

var positionRe = regexp.MustCompile(`/6/(\d+)`)

// EncodePosition encodes a chapter index as a position token.
func EncodePosition(chapterIndex int) string {
	return fmt.Sprintf("pos(/6/%d)", (chapterIndex+1)*2)
}

// DecodePosition decodes a position token back to a chapter index.
// Malformed or foreign tokens degrade to 0, the start of the book; decoding
// never fails.
func DecodePosition(token string) int {
	m := positionRe.FindStringSubmatch(token)
	if m == nil {
		return 0
	}
	n, err := strconv.Atoi(m[1])
	if err != nil {
		return 0
	}
	idx := n/2 - 1
	if idx < 0 {
		return 0
	}
	return idx
}
