// scan turns SQL source text into a stream of tokens for the parser. The
// scanner is a rune pointer over the input with a single-token lookahead
// produced on request; it skips whitespace and line comments between
// tokens.
package scan

import (
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/pxsql/pxsql/pxerr"
	"github.com/pxsql/pxsql/token"
)

// Scanner produces tokens on demand from a SQL source string.
type Scanner struct {
	src  string
	pos  int // byte offset of the next unread rune
	line int
	col  int

	hasLookahead bool
	lookahead    token.Token
	lookaheadErr error
}

// New returns a scanner over src.
func New(src string) *Scanner {
	return &Scanner{src: src, line: 1, col: 1}
}

// HasNext reports whether another token remains. It must be called before
// every call to Next.
func (s *Scanner) HasNext() bool {
	s.fill()
	return s.hasLookahead
}

// Next returns the next token. It must not be called when HasNext is
// false.
func (s *Scanner) Next() (token.Token, error) {
	s.fill()
	if !s.hasLookahead {
		return token.Token{}, pxerr.New(pxerr.InvalidSQL, "no more tokens")
	}
	t, err := s.lookahead, s.lookaheadErr
	s.hasLookahead = false
	return t, err
}

// fill advances past whitespace/comments and scans the next token into the
// lookahead slot, if one hasn't already been buffered.
func (s *Scanner) fill() {
	if s.hasLookahead {
		return
	}
	s.skipTrivia()
	if s.pos >= len(s.src) {
		return
	}
	pos := token.Position{Offset: s.pos, Line: s.line, Column: s.col}
	t, err := s.scanOne()
	t.Pos = pos
	s.hasLookahead = true
	s.lookahead, s.lookaheadErr = t, err
}

func (s *Scanner) skipTrivia() {
	for s.pos < len(s.src) {
		r, size := s.peek()
		if r == 0 {
			return
		}
		if isSpace(r) {
			s.advance(size, r)
			continue
		}
		if r == '-' && strings.HasPrefix(s.src[s.pos:], "--") {
			for s.pos < len(s.src) {
				r, size := s.peek()
				if r == '\n' {
					break
				}
				s.advance(size, r)
			}
			continue
		}
		return
	}
}

func (s *Scanner) scanOne() (token.Token, error) {
	r, _ := s.peek()
	switch {
	case isIdentStart(r):
		return s.scanWord()
	case unicode.IsDigit(r):
		return s.scanNumber()
	case r == '\'':
		return s.scanQuoted('\'', token.Character, false)
	case r == '"':
		return s.scanQuoted('"', token.Identifier, true)
	case r == '[':
		return s.scanBracketed()
	default:
		return s.scanPunctuationOrOperator()
	}
}

func (s *Scanner) scanWord() (token.Token, error) {
	start := s.pos
	for {
		r, size := s.peek()
		if !isIdentPart(r) {
			break
		}
		s.advance(size, r)
	}
	lexeme := s.src[start:s.pos]
	upper := strings.ToUpper(lexeme)
	if kind, ok := token.Lookup(upper); ok {
		return token.Token{Kind: kind, Lexeme: upper}, nil
	}
	return token.Token{Kind: token.Identifier, Lexeme: lexeme}, nil
}

func (s *Scanner) scanNumber() (token.Token, error) {
	start := s.pos
	s.consumeDigits()
	if r, _ := s.peek(); r == '.' {
		if r2, _ := s.peekAt(s.pos + 1); unicode.IsDigit(r2) {
			s.advance(1, '.')
			s.consumeDigits()
		}
	}
	if r, _ := s.peek(); r == 'e' || r == 'E' {
		save := s.pos
		s.advance(1, r)
		if r, _ := s.peek(); r == '+' || r == '-' {
			s.advance(1, r)
		}
		if r, _ := s.peek(); unicode.IsDigit(r) {
			s.consumeDigits()
		} else {
			s.pos = save
		}
	}
	return token.Token{Kind: token.Numeric, Lexeme: s.src[start:s.pos]}, nil
}

func (s *Scanner) consumeDigits() {
	for {
		r, size := s.peek()
		if !unicode.IsDigit(r) {
			return
		}
		s.advance(size, r)
	}
}

// scanQuoted handles both single-quote character literals and
// double-quote delimited identifiers. Doubled quotes inside the lexeme
// escape to a single literal quote character.
func (s *Scanner) scanQuoted(quote rune, kind token.Kind, delimited bool) (token.Token, error) {
	s.advance(1, quote) // opening quote
	var b strings.Builder
	for {
		r, size := s.peek()
		if r == 0 {
			return token.Token{}, pxerr.New(pxerr.InvalidSQL, "unterminated string starting with %c", quote)
		}
		if r == quote {
			if r2, size2 := s.peekAt(s.pos + size); r2 == quote {
				b.WriteRune(quote)
				s.advance(size, r)
				s.advance(size2, r2)
				continue
			}
			s.advance(size, r)
			break
		}
		b.WriteRune(r)
		s.advance(size, r)
	}
	return token.Token{Kind: kind, Lexeme: b.String(), Delimited: delimited}, nil
}

func (s *Scanner) scanBracketed() (token.Token, error) {
	s.advance(1, '[')
	var b strings.Builder
	for {
		r, size := s.peek()
		if r == 0 {
			return token.Token{}, pxerr.New(pxerr.InvalidSQL, "unterminated bracketed identifier")
		}
		if r == ']' {
			if r2, size2 := s.peekAt(s.pos + size); r2 == ']' {
				b.WriteRune(']')
				s.advance(size, r)
				s.advance(size2, r2)
				continue
			}
			s.advance(size, r)
			break
		}
		b.WriteRune(r)
		s.advance(size, r)
	}
	return token.Token{Kind: token.Identifier, Lexeme: b.String(), Delimited: true}, nil
}

func (s *Scanner) scanPunctuationOrOperator() (token.Token, error) {
	r, size := s.peek()
	switch r {
	case '(':
		s.advance(size, r)
		return token.Token{Kind: token.LParen, Lexeme: "("}, nil
	case ')':
		s.advance(size, r)
		return token.Token{Kind: token.RParen, Lexeme: ")"}, nil
	case ',':
		s.advance(size, r)
		return token.Token{Kind: token.Comma, Lexeme: ","}, nil
	case '.':
		s.advance(size, r)
		return token.Token{Kind: token.Period, Lexeme: "."}, nil
	case ';':
		s.advance(size, r)
		return token.Token{Kind: token.Semicolon, Lexeme: ";"}, nil
	case '*':
		s.advance(size, r)
		return token.Token{Kind: token.Asterisk, Lexeme: "*"}, nil
	case '=':
		s.advance(size, r)
		return token.Token{Kind: token.Equals, Lexeme: "="}, nil
	case '<':
		s.advance(size, r)
		if r2, size2 := s.peek(); r2 == '>' {
			s.advance(size2, r2)
			return token.Token{Kind: token.NotEquals, Lexeme: "<>"}, nil
		}
		return token.Token{Kind: token.Less, Lexeme: "<"}, nil
	case '>':
		s.advance(size, r)
		return token.Token{Kind: token.More, Lexeme: ">"}, nil
	case '!':
		s.advance(size, r)
		if r2, size2 := s.peek(); r2 == '=' {
			s.advance(size2, r2)
			return token.Token{Kind: token.NotEquals2, Lexeme: "!="}, nil
		}
		return token.Token{}, pxerr.New(pxerr.InvalidSQL, "unexpected character '!'")
	default:
		return token.Token{}, pxerr.New(pxerr.InvalidSQL, "unexpected character %q", r)
	}
}

// peek returns the rune at the current position and its width in bytes, or
// (0, 0) at end of input.
func (s *Scanner) peek() (rune, int) {
	return s.peekAt(s.pos)
}

func (s *Scanner) peekAt(pos int) (rune, int) {
	if pos >= len(s.src) {
		return 0, 0
	}
	r, size := utf8.DecodeRuneInString(s.src[pos:])
	return r, size
}

func (s *Scanner) advance(size int, r rune) {
	s.pos += size
	if r == '\n' {
		s.line++
		s.col = 1
	} else {
		s.col++
	}
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r'
}

func isIdentStart(r rune) bool {
	return unicode.IsLetter(r) || r == '_'
}

func isIdentPart(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r) || r == '_'
}
