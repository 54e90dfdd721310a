// Package tfedit performs surgical edits on brace-delimited configuration
// files (tfvars-style documents with top-level named blocks). It is not an
// HCL parser: it locates blocks by quote-aware brace matching and rewrites
// single spans, leaving comments and formatting outside the edited span
// byte-identical.
package tfedit

import (
	"errors"
	"fmt"
	"strings"
)

// ErrBlockNotFound is returned when a document contains no block with the
// requested name.
var ErrBlockNotFound = errors.New("block not found")

// Span is a half-open [Start, End) byte range into a document.
type Span struct {
	Start int
	End   int
}

// Len returns the number of bytes covered by the span.
func (s Span) Len() int { return s.End - s.Start }

// Block is a located top-level named block. Spans index into the document the
// block was found in; they are recomputed on every lookup and must not be
// reused after the document text changes.
//
// FullSpan includes both braces. InnerSpan is the body between them.
// HeaderSpan covers the block name and everything up to the opening brace.
type Block struct {
	Name       string
	HeaderSpan Span
	InnerSpan  Span
	FullSpan   Span
}

// Inner returns the block body text from doc.
func (b Block) Inner(doc string) string {
	return doc[b.InnerSpan.Start:b.InnerSpan.End]
}

// FindBlock locates the first top-level block named name in doc.
//
// The name must appear at an identifier boundary (so "network" does not match
// inside "networking"). The block body is found by depth-counted brace
// matching; braces inside quoted strings and line comments do not count.
// Unbalanced braces after the block opener are a fatal input error.
func FindBlock(doc, name string) (Block, error) {
	nameIdx := findIdentifier(doc, name)
	if nameIdx < 0 {
		return Block{}, fmt.Errorf("%w: %q", ErrBlockNotFound, name)
	}

	openIdx := -1
	depth := 0
	closeIdx := -1

	s := newScanner(doc, nameIdx+len(name))
	for s.next() {
		switch s.ch {
		case '{':
			if openIdx < 0 {
				openIdx = s.pos
			}
			depth++
		case '}':
			if openIdx < 0 {
				continue
			}
			depth--
			if depth == 0 {
				closeIdx = s.pos
			}
		case '=', '\n':
			// Still before the opening brace; anything else on the header
			// line (labels, the assignment sign) is fine.
		}
		if closeIdx >= 0 {
			break
		}
	}

	if openIdx < 0 {
		return Block{}, fmt.Errorf("block %q has no opening brace", name)
	}
	if closeIdx < 0 {
		return Block{}, fmt.Errorf("block %q has unbalanced braces", name)
	}

	return Block{
		Name:       name,
		HeaderSpan: Span{Start: nameIdx, End: openIdx},
		InnerSpan:  Span{Start: openIdx + 1, End: closeIdx},
		FullSpan:   Span{Start: nameIdx, End: closeIdx + 1},
	}, nil
}

// ReplaceBlockBody returns a new document equal to doc with the block's body
// replaced by newInner. Braces and everything outside the block are untouched.
func ReplaceBlockBody(doc string, block Block, newInner string) string {
	return doc[:block.InnerSpan.Start] + newInner + doc[block.InnerSpan.End:]
}

// findIdentifier returns the index of the first occurrence of name in doc
// that sits at an identifier boundary on both sides, or -1.
func findIdentifier(doc, name string) int {
	from := 0
	for {
		i := strings.Index(doc[from:], name)
		if i < 0 {
			return -1
		}
		i += from
		before := i == 0 || !isIdentChar(doc[i-1])
		after := i+len(name) >= len(doc) || !isIdentChar(doc[i+len(name)])
		if before && after {
			return i
		}
		from = i + len(name)
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '-' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

// scanner walks document bytes, skipping the contents of quoted strings and
// line comments so that structural characters are only ever reported when
// they are structural.
type scanner struct {
	doc string
	pos int
	ch  byte
}

func newScanner(doc string, start int) *scanner {
	return &scanner{doc: doc, pos: start - 1}
}

// next advances to the next structural byte. It returns false at end of input.
func (s *scanner) next() bool {
	for s.pos+1 < len(s.doc) {
		s.pos++
		c := s.doc[s.pos]
		switch c {
		case '"':
			s.skipString()
		case '#':
			s.skipLine()
		case '/':
			if s.pos+1 < len(s.doc) && s.doc[s.pos+1] == '/' {
				s.skipLine()
			} else {
				s.ch = c
				return true
			}
		default:
			s.ch = c
			return true
		}
	}
	return false
}

func (s *scanner) skipString() {
	for s.pos+1 < len(s.doc) {
		s.pos++
		switch s.doc[s.pos] {
		case '\\':
			s.pos++
		case '"':
			return
		case '\n':
			// Unterminated string literal; treat the newline as its end so a
			// stray quote cannot swallow the rest of the document.
			s.pos--
			return
		}
	}
}

func (s *scanner) skipLine() {
	for s.pos+1 < len(s.doc) && s.doc[s.pos+1] != '\n' {
		s.pos++
	}
}
