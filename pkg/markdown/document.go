package markdown

import (
	"bytes"

	"github.com/yaklabco/gomdsite/pkg/scanner"
)

// LinkMap maps link reference labels to their targets. Targets borrow from
// the document source, so the source must outlive every render.
type LinkMap map[string]scanner.Span

// Document is a Markdown body split from its trailing link definitions.
type Document struct {
	Filename string
	Body     scanner.Span
	Links    LinkMap
}

// Parse consumes the rest of s and splits it into the body and the link
// reference definitions ("[label]: target" lines) at its end. Definitions
// are collected backwards from the end of input, skipping blank lines and
// stopping at the first line that is not a definition.
func Parse(s *scanner.Scanner) (Document, error) {
	start := s.Offset()
	src := s.Source()
	links := LinkMap{}

	bodyEnd := len(src)
	lineEnd := len(src)
	for lineEnd > start {
		lineStart := bytes.LastIndexByte(src[start:lineEnd], '\n') + 1 + start
		if lineStart == lineEnd {
			lineEnd--
			continue
		}
		line := src[lineStart:lineEnd]
		if isBlank(line) {
			lineEnd = max(lineStart-1, start)
			continue
		}
		label, target, targetAt, ok := parseDefinition(line)
		if !ok {
			break
		}
		// Walking backwards, an earlier definition overwrites a later one.
		links[string(label)] = scanner.Span{Text: target, Location: s.LocationAt(lineStart + targetAt)}
		bodyEnd = lineStart
		lineEnd = max(lineStart-1, start)
	}

	body := s.SpanFrom(start)
	body.Text = src[start:bodyEnd]
	s.Consume(len(src) - s.Offset())
	return Document{Filename: s.Filename, Body: body, Links: links}, nil
}

// parseDefinition matches "[label]: target". Footnote definitions
// ("[^label]: ...") are not link definitions.
func parseDefinition(line []byte) (label, target []byte, targetAt int, ok bool) {
	if len(line) < 4 || line[0] != '[' || line[1] == '^' {
		return nil, nil, 0, false
	}
	closeAt := bytes.IndexByte(line, ']')
	if closeAt < 2 || closeAt+1 >= len(line) || line[closeAt+1] != ':' {
		return nil, nil, 0, false
	}
	label = line[1:closeAt]
	rest := line[closeAt+2:]
	trimmed := bytes.TrimLeft(rest, " \t")
	targetAt = closeAt + 2 + len(rest) - len(trimmed)
	target = bytes.TrimRight(trimmed, " \t\r")
	if len(target) >= 2 && target[0] == '<' && target[len(target)-1] == '>' {
		target = target[1 : len(target)-1]
		targetAt++
	}
	if len(target) == 0 {
		return nil, nil, 0, false
	}
	return label, target, targetAt, true
}
