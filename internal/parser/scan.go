package parser

import (
	"strings"

	"github.com/aryamurray/roku-svelte-sub001/internal/ast"
)

func (s *scriptScanner) eof() bool { return s.pos >= len(s.src) }

// abs returns the current position as an offset into the whole source file.
func (s *scriptScanner) abs() int { return s.base + s.pos }

func (s *scriptScanner) peek(tok string) bool {
	return strings.HasPrefix(s.src[s.pos:], tok)
}

func (s *scriptScanner) consume(tok string) bool {
	if s.peek(tok) {
		s.pos += len(tok)
		return true
	}
	return false
}

// consumeWord consumes tok only when it is a whole word.
func (s *scriptScanner) consumeWord(tok string) bool {
	if !s.peek(tok) {
		return false
	}
	after := s.pos + len(tok)
	if after < len(s.src) && isIdentChar(s.src[after]) {
		return false
	}
	s.pos = after
	return true
}

// skipTrivia skips whitespace and // and /* */ comments.
func (s *scriptScanner) skipTrivia() {
	for !s.eof() {
		c := s.src[s.pos]
		switch {
		case c == ' ' || c == '\t' || c == '\n' || c == '\r':
			s.pos++
		case s.peek("//"):
			for !s.eof() && s.src[s.pos] != '\n' {
				s.pos++
			}
		case s.peek("/*"):
			end := strings.Index(s.src[s.pos+2:], "*/")
			if end < 0 {
				s.pos = len(s.src)
				return
			}
			s.pos += 2 + end + 2
		default:
			return
		}
	}
}

// skipInlineSpace skips spaces and tabs but not newlines; statement
// boundaries are newline-sensitive.
func (s *scriptScanner) skipInlineSpace() {
	for !s.eof() && (s.src[s.pos] == ' ' || s.src[s.pos] == '\t') {
		s.pos++
	}
}

func isIdentChar(c byte) bool {
	return c == '_' || c == '$' ||
		(c >= 'a' && c <= 'z') || (c >= 'A' && c <= 'Z') || (c >= '0' && c <= '9')
}

func isIdentStart(c byte) bool {
	return isIdentChar(c) && !(c >= '0' && c <= '9')
}

func isIdent(s string) bool {
	if s == "" || !isIdentStart(s[0]) {
		return false
	}
	for i := 1; i < len(s); i++ {
		if !isIdentChar(s[i]) {
			return false
		}
	}
	return true
}

func (s *scriptScanner) readIdent() string {
	if s.eof() || !isIdentStart(s.src[s.pos]) {
		return ""
	}
	start := s.pos
	for !s.eof() && isIdentChar(s.src[s.pos]) {
		s.pos++
	}
	return s.src[start:s.pos]
}

// readString reads a single- or double-quoted string literal and returns
// its unquoted contents.
func (s *scriptScanner) readString() (string, bool) {
	if s.eof() {
		return "", false
	}
	quote := s.src[s.pos]
	if quote != '\'' && quote != '"' {
		return "", false
	}
	s.pos++
	start := s.pos
	for !s.eof() {
		if s.src[s.pos] == quote {
			out := s.src[start:s.pos]
			s.pos++
			return out, true
		}
		if s.src[s.pos] == '\\' {
			s.pos++
		}
		s.pos++
	}
	return "", false
}

// captureExpr captures a balanced expression span up to a statement
// boundary: a top-level ';', an unbracketed newline, or a '}' closing the
// surrounding block.
func (s *scriptScanner) captureExpr() *ast.RawExpr {
	s.skipInlineSpace()
	start := s.pos
	depth := 0
	for !s.eof() {
		c := s.src[s.pos]
		switch c {
		case '(', '[', '{':
			depth++
		case ')', ']':
			depth--
		case '}':
			if depth == 0 {
				return s.finishCapture(start, 0)
			}
			depth--
		case ';', '\n':
			if depth == 0 {
				skip := 0
				if c == ';' {
					skip = 1
				}
				return s.finishCapture(start, skip)
			}
		case '\'', '"', '`':
			s.skipStringFrom(c)
			continue
		}
		s.pos++
	}
	return s.finishCapture(start, 0)
}

func (s *scriptScanner) finishCapture(start, skip int) *ast.RawExpr {
	text := strings.TrimSpace(s.src[start:s.pos])
	expr := &ast.RawExpr{Text: text, Start: s.base + start}
	s.pos += skip
	return expr
}

// skipStringFrom advances past a quoted literal whose opening quote is at
// the current position.
func (s *scriptScanner) skipStringFrom(quote byte) {
	s.pos++
	for !s.eof() {
		c := s.src[s.pos]
		if c == '\\' {
			s.pos += 2
			continue
		}
		s.pos++
		if c == quote {
			return
		}
	}
}

// captureStatementText captures an unrecognized statement verbatim so it
// can be diagnosed with its real location.
func (s *scriptScanner) captureStatementText() *ast.RawExpr {
	return s.captureExpr()
}

// readParenExpr reads a parenthesized condition, returning its inner span.
func (s *scriptScanner) readParenExpr() (*ast.RawExpr, bool) {
	s.skipTrivia()
	if !s.consume("(") {
		return nil, false
	}
	s.skipTrivia()
	return s.captureUntilCloseParen(), true
}

// captureUntilCloseParen captures up to (and consumes) the matching ')'.
func (s *scriptScanner) captureUntilCloseParen() *ast.RawExpr {
	start := s.pos
	depth := 0
	for !s.eof() {
		c := s.src[s.pos]
		switch c {
		case '(', '[', '{':
			depth++
		case ']', '}':
			depth--
		case ')':
			if depth == 0 {
				expr := &ast.RawExpr{Text: strings.TrimSpace(s.src[start:s.pos]), Start: s.base + start}
				s.pos++
				return expr
			}
			depth--
		case '\'', '"', '`':
			s.skipStringFrom(c)
			continue
		}
		s.pos++
	}
	return &ast.RawExpr{Text: strings.TrimSpace(s.src[start:s.pos]), Start: s.base + start}
}

// skipBalanced consumes a balanced open..close span starting at the
// current position.
func (s *scriptScanner) skipBalanced(open, close byte) bool {
	if s.eof() || s.src[s.pos] != open {
		return false
	}
	depth := 0
	for !s.eof() {
		c := s.src[s.pos]
		if c == open {
			depth++
		} else if c == close {
			depth--
			if depth == 0 {
				s.pos++
				return true
			}
		} else if c == '\'' || c == '"' || c == '`' {
			s.skipStringFrom(c)
			continue
		}
		s.pos++
	}
	return false
}
