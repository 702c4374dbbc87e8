package markdown

import (
	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// MaxDepth bounds both tag stacks.
const MaxDepth = 8

// blockKind identifies a block-level tag.
type blockKind uint8

const (
	blockP blockKind = iota
	blockLI
	blockHeading
	blockUL
	blockOL
	blockQuote
	blockFigure
	blockFigcaption
	blockFootnoteOL
	blockFootnoteLI
)

// blockTag is an open block element.
type blockTag struct {
	kind blockKind

	// level is the heading level (1-6).
	level int

	// indent is the content column of a list item; continuation lines must
	// be indented at least this far.
	indent int

	// label is the footnote label of a footnote item.
	label string

	// filled is set once the tag holds content.
	filled bool
}

// container reports whether the tag holds other blocks and is matched line
// by line against container markers.
func (b blockTag) container() bool {
	switch b.kind {
	case blockUL, blockOL, blockQuote, blockFigure, blockFootnoteOL:
		return true
	default:
		return false
	}
}

// leaf reports whether inline content is written directly into the tag.
func (b blockTag) leaf() bool {
	switch b.kind {
	case blockP, blockLI, blockHeading, blockFigcaption, blockFootnoteLI:
		return true
	default:
		return false
	}
}

// blockStack is a fixed-capacity stack of open block tags.
type blockStack struct {
	tags [MaxDepth]blockTag
	n    int
}

// push reports false when the stack is full.
func (s *blockStack) push(tag blockTag) bool {
	if s.n == MaxDepth {
		return false
	}
	s.tags[s.n] = tag
	s.n++
	return true
}

func (s *blockStack) pop() blockTag {
	s.n--
	return s.tags[s.n]
}

// top returns the innermost tag, or nil when the stack is empty.
func (s *blockStack) top() *blockTag {
	if s.n == 0 {
		return nil
	}
	return &s.tags[s.n-1]
}

func (s *blockStack) at(idx int) *blockTag {
	return &s.tags[idx]
}

// inlineKind identifies an inline tag.
type inlineKind uint8

const (
	inlineEm inlineKind = iota
	inlineStrong
	inlineCode
	inlineLink
)

var inlineNames = [...]string{
	inlineEm:     "em",
	inlineStrong: "strong",
	inlineCode:   "code",
	inlineLink:   "a",
}

func (k inlineKind) String() string {
	return inlineNames[k]
}

// inlineTag is an open inline element and where it was opened.
type inlineTag struct {
	kind inlineKind
	loc  scanner.Location
}

// inlineStack is a fixed-capacity stack of open inline tags.
type inlineStack struct {
	tags [MaxDepth]inlineTag
	n    int
}

func (s *inlineStack) push(tag inlineTag) bool {
	if s.n == MaxDepth {
		return false
	}
	s.tags[s.n] = tag
	s.n++
	return true
}

func (s *inlineStack) pop() inlineTag {
	s.n--
	return s.tags[s.n]
}

func (s *inlineStack) top() *inlineTag {
	if s.n == 0 {
		return nil
	}
	return &s.tags[s.n-1]
}

// contains reports whether a tag of kind is open anywhere on the stack.
func (s *inlineStack) contains(kind inlineKind) bool {
	for idx := range s.n {
		if s.tags[idx].kind == kind {
			return true
		}
	}
	return false
}
