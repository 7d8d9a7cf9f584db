package main

import (
	"strings"

	"github.com/ztrue/tracerr"
)

type Parser struct {
	l   *Lexer
	ast AST
}

func NewParser(l *Lexer) Parser {
	a := AST{File: l.Name()}
	return Parser{l, a}
}

func (p *Parser) Parse() (err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if ok {
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()
	for {
		tok, _ := p.l.Lex()

		if tok.Kind == EOF {
			return
		}

		switch tok.Kind {
		case ENUM:
			p.ast.Toplevels = append(p.ast.Toplevels, p.parseEnum())
		case DISPATCH:
			p.ast.Toplevels = append(p.ast.Toplevels, p.parseDispatch(tok))
		default:
			panic(ExpectedOneOfKindGotKind{
				Expected: []TokenKind{ENUM, DISPATCH},
				Got:      tok.Kind,
				Location: tok.Location,
			})
		}
	}
}

// expected to be called past the enum keyword.
func (p *Parser) parseEnum() EnumSpec {
	tok, name := p.l.LexExpecting(IDENT)

	e := EnumSpec{Ident: NewID(name, tok.Location)}
	if p.l.PeekIs(LT) {
		e.Generics = p.parseGenericParams(false)
	}

	p.l.LexExpecting(LBRACE)

	for !p.l.PeekIs(RBRACE, FN) {
		e.Variants = append(e.Variants, p.parseVariant(&e))

		if p.l.PeekIs(COMMA) {
			p.l.LexExpecting(COMMA)
			continue
		}
		break
	}

	for p.l.PeekIs(FN) {
		p.l.LexExpecting(FN)
		e.Methods = append(e.Methods, p.parseMethod())
	}

	p.l.LexExpecting(RBRACE)

	p.validateEnum(&e)

	return e
}

func (p *Parser) parseGenericParams(variantOwned bool) []GenericParam {
	p.l.LexExpecting(LT)

	var params []GenericParam
	for {
		tok, name := p.l.LexExpecting(IDENT)
		param := GenericParam{
			Ident:        NewID(name, tok.Location),
			VariantOwned: variantOwned,
		}

		if p.l.PeekIs(COLON) {
			p.l.LexExpecting(COLON)
			param.Bound = p.parseType()
		}

		params = append(params, param)

		if p.l.PeekIs(COMMA) {
			p.l.LexExpecting(COMMA)
			continue
		}
		break
	}
	p.l.LexExpecting(GT)

	return params
}

func (p *Parser) parseVariant(e *EnumSpec) Variant {
	tok, name := p.l.LexExpecting(IDENT)
	v := Variant{Ident: NewID(name, tok.Location)}

	if p.l.PeekIs(LT) {
		v.Generics = p.parseGenericParams(true)
	}

	if p.l.PeekIs(LPAREN) {
		p.l.LexExpecting(LPAREN)
		if !p.l.PeekIs(RPAREN) {
			for {
				v.Fields = append(v.Fields, p.parseField())

				if p.l.PeekIs(COMMA, RPAREN) {
					if p.l.PeekIs(RPAREN) {
						break
					}
					p.l.LexExpecting(COMMA)
					continue
				}

				p.l.LexExpecting(COMMA, RPAREN)
			}
		}
		p.l.LexExpecting(RPAREN)
	}

	if p.l.PeekIs(COLON) {
		p.l.LexExpecting(COLON)
		v.Refines = p.parseRefinement(e)
	}

	return v
}

// parseField accepts either `binder: Type` or a bare `Type`.
func (p *Parser) parseField() FieldDef {
	if p.l.PeekIs(IDENT) {
		tok, name := p.l.Lex()
		if p.l.PeekIs(COLON) {
			p.l.LexExpecting(COLON)
			id := NewID(name, tok.Location)
			return FieldDef{Binder: &id, Kind: p.parseType()}
		}
		return FieldDef{Kind: p.finishType(tok, name)}
	}

	return FieldDef{Kind: p.parseType()}
}

func (p *Parser) parseRefinement(e *EnumSpec) *Refinement {
	tok, head := p.l.LexExpecting(IDENT)

	if head != e.Ident.Name {
		panic(RefinementHeadMismatch{
			Enum:     e.Ident.Name,
			Got:      head,
			Location: tok.Location,
		})
	}

	r := Refinement{Head: NewID(head, tok.Location)}
	if p.l.PeekIs(LT) {
		p.l.LexExpecting(LT)
		for {
			r.Args = append(r.Args, p.parseType())
			if p.l.PeekIs(COMMA) {
				p.l.LexExpecting(COMMA)
				continue
			}
			break
		}
		p.l.LexExpecting(GT)
	}

	if len(r.Args) != len(e.Generics) {
		panic(RefinementArityMismatch{
			Enum:     e.Ident.Name,
			Want:     len(e.Generics),
			Got:      len(r.Args),
			Location: tok.Location,
		})
	}

	return &r
}

// expected to be called past the fn keyword.
func (p *Parser) parseMethod() Method {
	tok, name := p.l.LexExpecting(IDENT)
	m := Method{Ident: NewID(name, tok.Location)}

	p.l.LexExpecting(LPAREN)

	// Receiver: &self borrows, bare self consumes.
	if p.l.PeekIs(AMP) {
		p.l.LexExpecting(AMP)
	} else {
		m.Consuming = true
	}
	rtok, recv := p.l.LexExpecting(IDENT)
	if recv != "self" {
		panic(ExpectedOneOfKindGotKind{
			Expected: []TokenKind{IDENT},
			Got:      rtok.Kind,
			Location: rtok.Location,
		})
	}

	for p.l.PeekIs(COMMA) {
		p.l.LexExpecting(COMMA)
		ptok, pname := p.l.LexExpecting(IDENT)
		p.l.LexExpecting(COLON)
		m.Params = append(m.Params, MethodParam{
			Ident: NewID(pname, ptok.Location),
			Kind:  p.parseType(),
		})
	}
	p.l.LexExpecting(RPAREN)

	if p.l.PeekIs(ARROW) {
		p.l.LexExpecting(ARROW)
		m.Returns = p.parseType()
	}

	p.l.LexExpecting(LBRACE)
	for !p.l.PeekIs(RBRACE) {
		m.Arms = append(m.Arms, p.parseMethodArm())

		if p.l.PeekIs(COMMA) {
			p.l.LexExpecting(COMMA)
			continue
		}
		break
	}
	p.l.LexExpecting(RBRACE)

	return m
}

func (p *Parser) parseMethodArm() MethodArm {
	tok, name := p.l.LexExpecting(IDENT)
	arm := MethodArm{Variant: NewID(name, tok.Location)}

	if p.l.PeekIs(LPAREN) {
		arm.Binders = p.parseBinders()
	}

	p.l.LexExpecting(FATARROW)
	arm.Body = p.captureExpr(COMMA, RBRACE)

	return arm
}

func (p *Parser) parseBinders() []Identifier {
	p.l.LexExpecting(LPAREN)

	var binders []Identifier
	if !p.l.PeekIs(RPAREN) {
		for {
			tok, name := p.l.LexExpecting(IDENT)
			binders = append(binders, NewID(name, tok.Location))

			if p.l.PeekIs(COMMA) {
				p.l.LexExpecting(COMMA)
				continue
			}
			break
		}
	}
	p.l.LexExpecting(RPAREN)

	return binders
}

func (p *Parser) parseType() TypeExpr {
	tok, lit := p.l.LexExpecting(IDENT, AMP)

	if tok.Kind == AMP {
		return TypeRef{Elem: p.parseType(), Pos: tok.Location}
	}

	return p.finishType(tok, lit)
}

// finishType completes a type whose head identifier is already consumed.
func (p *Parser) finishType(tok Token, lit string) TypeExpr {
	if !p.l.PeekIs(LT) {
		return TypeName(NewID(lit, tok.Location))
	}

	p.l.LexExpecting(LT)
	apply := TypeApply{Head: NewID(lit, tok.Location)}
	for {
		apply.Args = append(apply.Args, p.parseType())
		if p.l.PeekIs(COMMA) {
			p.l.LexExpecting(COMMA)
			continue
		}
		break
	}
	p.l.LexExpecting(GT)

	return apply
}

// captureExpr collects raw tokens up to (not consuming) one of the stop
// kinds at bracket depth zero, and renders them back to expression text.
func (p *Parser) captureExpr(stop ...TokenKind) RawExpr {
	var toks []litToken
	depth := 0

	for {
		if p.l.PeekIs(EOF) {
			tok, _ := p.l.Peek()
			panic(ExpectedOneOfKindGotKind{
				Expected: stop,
				Got:      EOF,
				Location: tok.Location,
			})
		}
		if depth == 0 && p.l.PeekIs(stop...) {
			break
		}

		tok, lit := p.l.Lex()
		switch tok.Kind {
		case LPAREN, LBRACE, LBRACKET:
			depth++
		case RPAREN, RBRACE, RBRACKET:
			depth--
		}
		toks = append(toks, litToken{t: tok, s: lit})
	}

	if len(toks) == 0 {
		tok, _ := p.l.Peek()
		panic(ExpectedOneOfKindGotKind{
			Expected: []TokenKind{IDENT},
			Got:      tok.Kind,
			Location: tok.Location,
		})
	}

	return RawExpr{
		Text: joinTokens(toks),
		Pos:  Span{From: toks[0].t.Location.From, To: toks[len(toks)-1].t.Location.To},
	}
}

var noSpaceBefore = map[string]bool{
	".": true, ",": true, ")": true, "]": true, "(": true, "[": true,
}

var noSpaceAfter = map[string]bool{
	".": true, "(": true, "[": true, "&": true, "!": true,
}

// prefixOps can be unary; in prefix position they attach to their operand.
var prefixOps = map[string]bool{
	"*": true, "-": true,
}

// joinTokens renders captured tokens back into source text with enough
// spacing discipline that the result reads like hand-written code.
func joinTokens(toks []litToken) string {
	var b strings.Builder

	for i, tok := range toks {
		if i > 0 && !noSpaceBefore[tok.s] && !noSpaceAfter[toks[i-1].s] &&
			!(prefixOps[toks[i-1].s] && prefixPosition(toks, i-1)) {
			b.WriteString(" ")
		}
		b.WriteString(tok.s)
	}

	return b.String()
}

// prefixPosition reports whether the token at i follows something that
// cannot end an operand, making an ambiguous operator there unary.
func prefixPosition(toks []litToken, i int) bool {
	if i == 0 {
		return true
	}
	switch toks[i-1].t.Kind {
	case IDENT, NUMBER, STRING, CHAR, RPAREN, RBRACKET:
		return false
	}
	return true
}

func (p *Parser) validateEnum(e *EnumSpec) {
	seen := map[string]bool{}
	shapes := map[string]string{}
	enclosing := map[string]bool{}

	for _, g := range e.Generics {
		enclosing[g.Ident.Name] = true
	}

	for _, v := range e.Variants {
		if seen[v.Ident.Name] {
			panic(DuplicateVariant{
				Enum:     e.Ident.Name,
				Name:     v.Ident.Name,
				Location: v.Ident.Pos,
			})
		}
		seen[v.Ident.Name] = true

		for _, g := range v.Generics {
			if enclosing[g.Ident.Name] {
				panic(ShadowedParam{
					Variant:  v.Ident.Name,
					Name:     g.Ident.Name,
					Location: g.Ident.Pos,
				})
			}
		}

		binders := map[string]bool{}
		for _, f := range v.Fields {
			if f.Binder == nil {
				continue
			}
			if binders[f.Binder.Name] {
				panic(DuplicateField{
					Variant:  v.Ident.Name,
					Name:     f.Binder.Name,
					Location: f.Binder.Pos,
				})
			}
			binders[f.Binder.Name] = true
		}

		if v.Refines != nil {
			key := v.Refines.key() + "|" + fieldShape(v.Fields)
			if prev, ok := shapes[key]; ok {
				panic(DuplicateConcreteShape{
					Enum:     e.Ident.Name,
					Variants: [2]string{prev, v.Ident.Name},
					Location: v.Ident.Pos,
				})
			}
			shapes[key] = v.Ident.Name
		}
	}

	for _, m := range e.Methods {
		covered := map[string]bool{}
		for _, arm := range m.Arms {
			if !seen[arm.Variant.Name] {
				panic(UnknownVariantArm{
					Method:   m.Ident.Name,
					Variant:  arm.Variant.Name,
					Location: arm.Variant.Pos,
				})
			}
			covered[arm.Variant.Name] = true
		}
		for _, v := range e.Variants {
			if !covered[v.Ident.Name] {
				panic(MissingArm{
					Method:   m.Ident.Name,
					Variant:  v.Ident.Name,
					Location: m.Ident.Pos,
				})
			}
			arm := m.armFor(v.Ident.Name)
			if len(arm.Binders) != len(v.Fields) {
				panic(ArmBinderMismatch{
					Context:  "method " + m.Ident.Name,
					Variant:  v.Ident.Name,
					Want:     len(v.Fields),
					Got:      len(arm.Binders),
					Location: arm.Variant.Pos,
				})
			}
		}
	}
}

func (m Method) armFor(variant string) MethodArm {
	for _, arm := range m.Arms {
		if arm.Variant.Name == variant {
			return arm
		}
	}
	panic("no arm for " + variant)
}

func (r Refinement) key() string {
	var args []string
	for _, a := range r.Args {
		args = append(args, a.String())
	}
	return r.Head.Name + "<" + strings.Join(args, ",") + ">"
}

// fieldShape is the type-level identity of a variant's field list; binder
// names do not participate.
func fieldShape(fields []FieldDef) string {
	var parts []string
	for _, f := range fields {
		parts = append(parts, f.Kind.String())
	}
	return strings.Join(parts, ",")
}
