package main

// VariantInfo is the analyzed shape of one variant: the type parameters its
// generated struct carries, which of those are phantom, the interface
// instantiation it is pinned at, and the substitution that instantiation
// induces on the enclosing parameters.
type VariantInfo struct {
	Variant  *Variant
	Params   []GenericParam
	Phantoms []GenericParam
	RefArgs  []TypeExpr
	Subst    map[string]TypeExpr
}

// analyzeEnum runs the two-pass parameter analysis for every variant.
// Pass one collects the generics referenced by a variant's own shape, pass
// two set-differences against the refinement's argument list to split the
// enclosing parameters into kept, phantom, and dropped.
func analyzeEnum(e *EnumSpec) []VariantInfo {
	enclosing := map[string]bool{}
	declaredAnywhere := map[string]Identifier{}

	for _, g := range e.Generics {
		enclosing[g.Ident.Name] = true
		declaredAnywhere[g.Ident.Name] = g.Ident
	}
	for _, v := range e.Variants {
		for _, g := range v.Generics {
			declaredAnywhere[g.Ident.Name] = g.Ident
		}
	}

	infos := make([]VariantInfo, 0, len(e.Variants))
	for i := range e.Variants {
		infos = append(infos, analyzeVariant(e, &e.Variants[i], enclosing, declaredAnywhere))
	}

	return infos
}

func analyzeVariant(e *EnumSpec, v *Variant, enclosing map[string]bool, declaredAnywhere map[string]Identifier) VariantInfo {
	visible := map[string]bool{}
	for name := range enclosing {
		visible[name] = true
	}
	for _, g := range v.Generics {
		visible[g.Ident.Name] = true
	}

	// Pass one: generics referenced by the variant's own shape.
	shapeRefs := map[string]bool{}
	for _, f := range v.Fields {
		collectParams(f.Kind, visible, shapeRefs)
		checkDeclared(v, f.Kind, visible, declaredAnywhere)
	}
	for _, g := range v.Generics {
		if g.Bound != nil {
			collectParams(g.Bound, visible, shapeRefs)
			checkDeclared(v, g.Bound, visible, declaredAnywhere)
		}
	}

	// Pass two: the refinement's argument list. An unrefined variant is
	// pinned at the enclosing parameters applied directly.
	refArgs := make([]TypeExpr, 0, len(e.Generics))
	if v.Refines != nil {
		refArgs = append(refArgs, v.Refines.Args...)
	} else {
		for _, g := range e.Generics {
			refArgs = append(refArgs, TypeName(g.Ident))
		}
	}

	refRefs := map[string]bool{}
	for _, a := range refArgs {
		collectParams(a, visible, refRefs)
		checkDeclared(v, a, visible, declaredAnywhere)
	}

	info := VariantInfo{
		Variant: v,
		RefArgs: refArgs,
		Subst:   map[string]TypeExpr{},
	}

	for i, g := range e.Generics {
		info.Subst[g.Ident.Name] = refArgs[i]
	}

	bounds := newBoundSet(v)
	for _, g := range e.Generics {
		switch {
		case shapeRefs[g.Ident.Name]:
			if kept, fresh := bounds.add(g); fresh {
				info.Params = append(info.Params, kept)
			}
		case refRefs[g.Ident.Name]:
			// Present in the refinement but backed by no field: the
			// struct still carries it, as a zero-content marker.
			if kept, fresh := bounds.add(g); fresh {
				info.Params = append(info.Params, kept)
				info.Phantoms = append(info.Phantoms, kept)
			}
		}
		// In neither set: dropped for this variant.
	}
	for _, g := range v.Generics {
		if kept, fresh := bounds.add(g); fresh {
			info.Params = append(info.Params, kept)
		}
	}

	return info
}

// boundSet merges (parameter, bound) pairs, rejecting contradictions.
type boundSet struct {
	variant *Variant
	bounds  map[string]TypeExpr
}

func newBoundSet(v *Variant) *boundSet {
	return &boundSet{variant: v, bounds: map[string]TypeExpr{}}
}

func (s *boundSet) add(g GenericParam) (GenericParam, bool) {
	prev, ok := s.bounds[g.Ident.Name]
	if !ok {
		s.bounds[g.Ident.Name] = g.Bound
		return g, true
	}

	if boundText(prev) != boundText(g.Bound) {
		panic(ContradictoryBound{
			Param:    g.Ident.Name,
			Bounds:   [2]string{boundText(prev), boundText(g.Bound)},
			Location: g.Ident.Pos,
		})
	}

	return g, false
}

func boundText(t TypeExpr) string {
	if t == nil {
		return "any"
	}
	return t.String()
}

// collectParams recursively marks every name in t that resolves to a
// generic parameter in scope.
func collectParams(t TypeExpr, scope map[string]bool, used map[string]bool) {
	switch ty := t.(type) {
	case TypeName:
		if scope[ty.Name] {
			used[ty.Name] = true
		}
	case TypeApply:
		if scope[ty.Head.Name] {
			used[ty.Head.Name] = true
		}
		for _, a := range ty.Args {
			collectParams(a, scope, used)
		}
	case TypeRef:
		collectParams(ty.Elem, scope, used)
	}
}

// checkDeclared rejects references to a generic parameter that is declared
// on some other variant but not visible here. Names declared nowhere are
// left alone: they are externally-defined types, and mistakes among them
// are the host type checker's to report.
func checkDeclared(v *Variant, t TypeExpr, visible map[string]bool, declaredAnywhere map[string]Identifier) {
	switch ty := t.(type) {
	case TypeName:
		if _, declared := declaredAnywhere[ty.Name]; declared && !visible[ty.Name] {
			panic(UndeclaredParam{
				Variant:  v.Ident.Name,
				Name:     ty.Name,
				Location: ty.Pos,
			})
		}
	case TypeApply:
		if _, declared := declaredAnywhere[ty.Head.Name]; declared && !visible[ty.Head.Name] {
			panic(UndeclaredParam{
				Variant:  v.Ident.Name,
				Name:     ty.Head.Name,
				Location: ty.Head.Pos,
			})
		}
		for _, a := range ty.Args {
			checkDeclared(v, a, visible, declaredAnywhere)
		}
	case TypeRef:
		checkDeclared(v, ty.Elem, visible, declaredAnywhere)
	}
}

// substType rewrites generic parameter references under a refinement's
// substitution, leaving everything else untouched.
func substType(t TypeExpr, subst map[string]TypeExpr) TypeExpr {
	if t == nil {
		return nil
	}

	switch ty := t.(type) {
	case TypeName:
		if repl, ok := subst[ty.Name]; ok {
			return repl
		}
		return ty
	case TypeApply:
		out := TypeApply{Head: ty.Head}
		if repl, ok := subst[ty.Head.Name]; ok {
			if name, isName := repl.(TypeName); isName {
				out.Head = Identifier(name)
			}
		}
		for _, a := range ty.Args {
			out.Args = append(out.Args, substType(a, subst))
		}
		return out
	case TypeRef:
		return TypeRef{Elem: substType(ty.Elem, subst), Pos: ty.Pos}
	}

	return t
}
