package main

import (
	"bufio"
	"fmt"
	"io"
	"unicode"
)

type TokenKind int

const (
	EOF TokenKind = iota
	ILLEGAL

	COLON
	COMMA
	LPAREN
	RPAREN
	LBRACE
	RBRACE
	LBRACKET
	RBRACKET
	LT
	GT
	AMP
	ARROW
	FATARROW
	PUNCT

	IDENT
	NUMBER
	STRING
	CHAR

	ENUM
	FN
	DISPATCH
	MOVE
	REF
	AS
)

func (t TokenKind) String() string {
	data := map[TokenKind]string{
		EOF:      "EOF",
		ILLEGAL:  "ILLEGAL",
		COLON:    "COLON",
		COMMA:    "COMMA",
		LPAREN:   "LPAREN",
		RPAREN:   "RPAREN",
		LBRACE:   "LBRACE",
		RBRACE:   "RBRACE",
		LBRACKET: "LBRACKET",
		RBRACKET: "RBRACKET",
		LT:       "LT",
		GT:       "GT",
		AMP:      "AMP",
		ARROW:    "ARROW",
		FATARROW: "FATARROW",
		PUNCT:    "PUNCT",
		IDENT:    "IDENT",
		NUMBER:   "NUMBER",
		STRING:   "STRING",
		CHAR:     "CHAR",
		ENUM:     "ENUM",
		FN:       "FN",
		DISPATCH: "DISPATCH",
		MOVE:     "MOVE",
		REF:      "REF",
		AS:       "AS",
	}
	return data[t]
}

var keywords = map[string]TokenKind{
	"enum":     ENUM,
	"fn":       FN,
	"dispatch": DISPATCH,
	"move":     MOVE,
	"ref":      REF,
	"as":       AS,
}

var singles = map[rune]TokenKind{
	':': COLON,
	',': COMMA,
	'(': LPAREN,
	')': RPAREN,
	'{': LBRACE,
	'}': RBRACE,
	'[': LBRACKET,
	']': RBRACKET,
	'<': LT,
	'>': GT,
	'&': AMP,
}

type Position struct {
	Line   int
	Column int
}

type Span struct {
	From Position
	To   Position
}

func (s Span) String() string {
	return fmt.Sprintf("%d:%d - %d:%d", s.From.Line, s.From.Column, s.To.Line, s.To.Column)
}

type Token struct {
	Kind     TokenKind
	Location Span
}

type Lexer struct {
	pos          Position
	name         string
	reader       *bufio.Reader
	peeked       *Token
	peekedString string
}

func NewLexer(reader io.Reader, name string) *Lexer {
	return &Lexer{
		pos:    Position{Line: 1, Column: 0},
		name:   name,
		reader: bufio.NewReader(reader),
	}
}

func (l *Lexer) Name() string {
	return l.name
}

func (l *Lexer) newline() {
	l.pos.Line++
	l.pos.Column = 0
}

func (l *Lexer) backup() {
	if err := l.reader.UnreadRune(); err != nil {
		panic(err)
	}

	l.pos.Column--
}

func (l *Lexer) kinded(t TokenKind) Token {
	return Token{
		Kind:     t,
		Location: Span{From: l.pos, To: l.pos},
	}
}

func firstChar(r rune) bool {
	return r == '_' || unicode.IsLetter(r)
}

func otherChar(r rune) bool {
	return firstChar(r) || unicode.IsDigit(r)
}

func (l *Lexer) lexIdent() (Span, string) {
	var lit string
	var loc Span

	r, _, err := l.reader.ReadRune()
	l.pos.Column++
	loc.From = l.pos
	loc.To = l.pos

	for {
		if err != nil {
			if err == io.EOF {
				return loc, lit
			}
			panic(err)
		}

		if otherChar(r) {
			lit += string(r)
			loc.To = l.pos
		} else {
			l.backup()
			return loc, lit
		}

		r, _, err = l.reader.ReadRune()
		l.pos.Column++
	}
}

func (l *Lexer) lexNumber() (Span, string) {
	var lit string
	var loc Span
	seenDot := false

	r, _, err := l.reader.ReadRune()
	l.pos.Column++
	loc.From = l.pos
	loc.To = l.pos

	for {
		if err != nil {
			if err == io.EOF {
				return loc, lit
			}
			panic(err)
		}

		if unicode.IsDigit(r) || (r == '.' && !seenDot) {
			if r == '.' {
				seenDot = true
			}
			lit += string(r)
			loc.To = l.pos
		} else {
			l.backup()
			return loc, lit
		}

		r, _, err = l.reader.ReadRune()
		l.pos.Column++
	}
}

// lexQuoted reads a delimited literal, keeping the delimiters in the
// literal text so the token can be re-emitted verbatim.
func (l *Lexer) lexQuoted(quote rune) (Span, string) {
	lit := string(quote)
	loc := Span{From: l.pos, To: l.pos}
	escaped := false

	for {
		r, _, err := l.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				panic(UnterminatedLiteral{Location: loc})
			}
			panic(err)
		}
		l.pos.Column++
		loc.To = l.pos

		lit += string(r)
		if escaped {
			escaped = false
			continue
		}
		switch r {
		case '\\':
			escaped = true
		case quote:
			return loc, lit
		case '\n':
			panic(UnterminatedLiteral{Location: loc})
		}
	}
}

func (l *Lexer) skipLineComment() {
	for {
		r, _, err := l.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				return
			}
			panic(err)
		}
		l.pos.Column++
		if r == '\n' {
			l.newline()
			return
		}
	}
}

func (l *Lexer) Peek() (Token, string) {
	if l.peeked != nil {
		return *l.peeked, l.peekedString
	}

	tok, str := l.Lex()
	l.peeked = &tok
	l.peekedString = str

	return tok, str
}

func (l *Lexer) PeekIs(k ...TokenKind) bool {
	token, _ := l.Peek()
	for _, kind := range k {
		if token.Kind == kind {
			return true
		}
	}

	return false
}

func (l *Lexer) LexExpecting(k ...TokenKind) (Token, string) {
	token, lit := l.Lex()
	for _, kind := range k {
		if token.Kind == kind {
			return token, lit
		}
	}

	if len(k) == 1 {
		panic(ExpectedKindGotKind{
			Expected: k[0],
			Got:      token.Kind,
			Location: token.Location,
		})
	}
	panic(ExpectedOneOfKindGotKind{
		Expected: k,
		Got:      token.Kind,
		Location: token.Location,
	})
}

func (l *Lexer) Lex() (Token, string) {
	if l.peeked != nil {
		defer func() { l.peeked = nil }()
		return *l.peeked, l.peekedString
	}

	for {
		r, _, err := l.reader.ReadRune()
		if err != nil {
			if err == io.EOF {
				return l.kinded(EOF), ""
			}
			panic(err)
		}

		l.pos.Column++

		if r == '\n' {
			l.newline()
			continue
		}
		if unicode.IsSpace(r) {
			continue
		}

		switch r {
		case '=':
			byt, err := l.reader.Peek(1)
			if err != nil && err != io.EOF {
				panic(err)
			}
			if len(byt) > 0 && byt[0] == '>' {
				if _, _, err := l.reader.ReadRune(); err != nil {
					panic(err)
				}
				l.pos.Column++
				return l.kinded(FATARROW), "=>"
			}
			return l.kinded(PUNCT), "="
		case '-':
			byt, err := l.reader.Peek(1)
			if err != nil && err != io.EOF {
				panic(err)
			}
			if len(byt) > 0 && byt[0] == '>' {
				if _, _, err := l.reader.ReadRune(); err != nil {
					panic(err)
				}
				l.pos.Column++
				return l.kinded(ARROW), "->"
			}
			return l.kinded(PUNCT), "-"
		case '/':
			byt, err := l.reader.Peek(1)
			if err != nil && err != io.EOF {
				panic(err)
			}
			if len(byt) > 0 && byt[0] == '/' {
				l.skipLineComment()
				continue
			}
			return l.kinded(PUNCT), "/"
		case '"':
			loc, lit := l.lexQuoted('"')
			return Token{STRING, loc}, lit
		case '\'':
			loc, lit := l.lexQuoted('\'')
			return Token{CHAR, loc}, lit
		}

		if kind, ok := singles[r]; ok {
			return l.kinded(kind), string(r)
		}

		switch {
		case unicode.IsDigit(r):
			l.backup()
			loc, lit := l.lexNumber()
			return Token{NUMBER, loc}, lit
		case firstChar(r):
			l.backup()
			loc, lit := l.lexIdent()

			if kind, ok := keywords[lit]; ok {
				return Token{kind, loc}, lit
			}

			return Token{IDENT, loc}, lit
		case unicode.IsPrint(r):
			// Everything else rides along as raw punctuation so that
			// verbatim expression bodies survive the round trip.
			return l.kinded(PUNCT), string(r)
		}

		return l.kinded(ILLEGAL), string(r)
	}
}

// litToken pairs a token with the literal text it was lexed from.
type litToken struct {
	t Token
	s string
}

func (l *Lexer) lexToEOF() (ret []litToken) {
	t, s := l.Lex()
	for t.Kind != EOF {
		ret = append(ret, litToken{
			t: t,
			s: s,
		})
		t, s = l.Lex()
	}
	return
}
