package main

// expected to be called past the dispatch keyword.
func (p *Parser) parseDispatch(tok Token) DispatchBlock {
	d := DispatchBlock{Pos: tok.Location}

	p.l.LexExpecting(LPAREN)

	if p.l.PeekIs(MOVE) {
		p.l.LexExpecting(MOVE)
		d.Move = true
	}

	d.Subject = p.captureExpr(AS, ARROW, LBRACE)

	if p.l.PeekIs(AS) {
		p.l.LexExpecting(AS)
		d.Hint = p.parseHint()
	}

	p.l.LexExpecting(ARROW)
	d.Returns = p.parseType()

	p.l.LexExpecting(LBRACE)
	for !p.l.PeekIs(RBRACE) {
		d.Arms = append(d.Arms, p.parseDispatchArm())

		if p.l.PeekIs(COMMA) {
			p.l.LexExpecting(COMMA)
			continue
		}
		break
	}
	p.l.LexExpecting(RBRACE)
	p.l.LexExpecting(RPAREN)

	p.validateDispatch(&d)

	return d
}

// parseHint reads the `as Name<Args>` subject hint; a bare name is an
// application of zero arguments.
func (p *Parser) parseHint() *TypeApply {
	t := p.parseType()

	switch hint := t.(type) {
	case TypeApply:
		return &hint
	case TypeName:
		return &TypeApply{Head: Identifier(hint)}
	case TypeRef:
		panic(ExpectedOneOfKindGotKind{
			Expected: []TokenKind{IDENT},
			Got:      AMP,
			Location: hint.Pos,
		})
	}

	panic("unhandled")
}

func (p *Parser) parseDispatchArm() DispatchArm {
	var arm DispatchArm

	if p.l.PeekIs(MOVE) {
		p.l.LexExpecting(MOVE)
		arm.Mode = ModeMove
	} else if p.l.PeekIs(REF) {
		p.l.LexExpecting(REF)
		arm.Mode = ModeRef
	}

	tok, name := p.l.LexExpecting(IDENT)
	arm.Variant = NewID(name, tok.Location)

	if p.l.PeekIs(LT) {
		p.l.LexExpecting(LT)
		for {
			arm.TypeArgs = append(arm.TypeArgs, p.parseType())
			if p.l.PeekIs(COMMA) {
				p.l.LexExpecting(COMMA)
				continue
			}
			break
		}
		p.l.LexExpecting(GT)
	}

	if p.l.PeekIs(LPAREN) {
		arm.Binders = p.parseBinders()
	}

	p.l.LexExpecting(FATARROW)
	arm.Body = p.captureExpr(COMMA, RBRACE)

	return arm
}

func (p *Parser) validateDispatch(d *DispatchBlock) {
	if len(d.Arms) == 0 {
		panic(EmptyDispatch{Location: d.Pos})
	}

	seen := map[string]bool{}
	for _, arm := range d.Arms {
		if seen[arm.Variant.Name] {
			panic(DuplicateArm{
				Variant:  arm.Variant.Name,
				Location: arm.Variant.Pos,
			})
		}
		seen[arm.Variant.Name] = true

		// The consumption mode is chosen once per block; a per-arm
		// prefix is allowed only as a restatement of it.
		switch arm.Mode {
		case ModeMove:
			if !d.Move {
				panic(MixedModes{Variant: arm.Variant.Name, Location: arm.Variant.Pos})
			}
		case ModeRef:
			if d.Move {
				panic(MixedModes{Variant: arm.Variant.Name, Location: arm.Variant.Pos})
			}
		}
	}
}
