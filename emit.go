package main

import (
	"fmt"
	"strings"

	"github.com/ztrue/tracerr"
)

type settings struct {
	packageName string
	warnf       func(format string, args ...interface{})
}

// Emitter holds the analyzed enums of one invocation. Dispatch expansion
// consults them for field names and for the advisory arm cross-check; they
// are discarded when the invocation ends.
type Emitter struct {
	settings settings

	enums       map[string]*enumUnit
	needPhantom bool
}

type enumUnit struct {
	spec      *EnumSpec
	infos     []VariantInfo
	byVariant map[string]*VariantInfo
}

func NewEmitter(s settings) *Emitter {
	if s.warnf == nil {
		s.warnf = func(string, ...interface{}) {}
	}
	return &Emitter{
		settings: s,
		enums:    map[string]*enumUnit{},
	}
}

// Expand turns the parsed files into one set of Go declarations plus one
// expression per dispatch block. Failures are all-or-nothing: any error
// means no output at all.
func (em *Emitter) Expand(asts []AST) (decls string, dispatches []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			rerr, ok := r.(error)
			if ok {
				decls = ""
				dispatches = nil
				err = tracerr.Wrap(rerr)
			} else {
				panic(r)
			}
		}
	}()

	// Analysis pass over every enum before a single line is emitted.
	for ai := range asts {
		for _, top := range asts[ai].Toplevels {
			e, ok := top.(EnumSpec)
			if !ok {
				continue
			}
			em.register(asts[ai].File, e)
		}
	}

	var b strings.Builder
	b.WriteString("// Code generated by tigo. DO NOT EDIT.\n\n")
	fmt.Fprintf(&b, "package %s\n\n", em.settings.packageName)

	if em.needPhantom {
		b.WriteString("// phantom is a zero-content marker carrying a type parameter that is\n")
		b.WriteString("// present in a variant's refinement but backed by no field data.\n")
		b.WriteString("type phantom[T any] struct{}\n\n")
	}

	for ai := range asts {
		for _, top := range asts[ai].Toplevels {
			switch t := top.(type) {
			case EnumSpec:
				em.emitEnum(&b, asts[ai].File, em.enums[t.Ident.Name])
			case DispatchBlock:
				dispatches = append(dispatches, em.expandDispatch(asts[ai].File, &t))
			}
		}
	}

	return b.String(), dispatches, nil
}

func (em *Emitter) register(file string, e EnumSpec) {
	if _, ok := em.enums[e.Ident.Name]; ok {
		panic(DuplicateEnum{
			Name:     e.Ident.Name,
			Location: e.Ident.Pos,
		})
	}

	spec := e
	infos := analyzeEnum(&spec)

	unit := &enumUnit{
		spec:      &spec,
		infos:     infos,
		byVariant: map[string]*VariantInfo{},
	}
	for i := range infos {
		unit.byVariant[infos[i].Variant.Ident.Name] = &infos[i]
		if len(infos[i].Phantoms) > 0 {
			em.needPhantom = true
		}
	}

	em.enums[spec.Ident.Name] = unit
}

func (em *Emitter) emitEnum(b *strings.Builder, file string, unit *enumUnit) {
	e := unit.spec

	fmt.Fprintf(b, "// Generated from enum %s (%s).\n", e.Ident.Name, at(file, e.Ident.Pos))
	fmt.Fprintf(b, "type %s%s interface {\n", e.Ident.Name, paramDecls(e.Generics))
	fmt.Fprintf(b, "\tis_%s(%s)\n", e.Ident.Name, paramNames(e.Generics))
	for _, m := range e.Methods {
		fmt.Fprintf(b, "\t%s\n", methodSig(&m, nil))
	}
	b.WriteString("}\n\n")

	for i := range unit.infos {
		em.emitVariant(b, file, unit, &unit.infos[i])
	}
}

func (em *Emitter) emitVariant(b *strings.Builder, file string, unit *enumUnit, info *VariantInfo) {
	e := unit.spec
	v := info.Variant
	recv := v.Ident.Name + typeArgs(info.Params)

	fmt.Fprintf(b, "// Generated from variant %s of enum %s (%s).\n", v.Ident.Name, e.Ident.Name, at(file, v.Ident.Pos))
	fmt.Fprintf(b, "type %s%s struct {\n", v.Ident.Name, paramDecls(info.Params))
	// Markers go first so a trailing zero-size field never pads the struct.
	for _, p := range info.Phantoms {
		fmt.Fprintf(b, "\t_ phantom[%s]\n", p.Ident.Name)
	}
	for i, f := range v.Fields {
		fmt.Fprintf(b, "\t%s %s\n", fieldName(v, i), typeToGo(f.Kind))
	}
	b.WriteString("}\n\n")

	var refArgs []string
	for _, a := range info.RefArgs {
		refArgs = append(refArgs, typeToGo(a))
	}
	fmt.Fprintf(b, "func (v %s) is_%s(%s) {}\n\n", recv, e.Ident.Name, strings.Join(refArgs, ", "))

	em.emitConstructor(b, info, recv)

	for mi := range e.Methods {
		em.emitMethod(b, info, recv, &e.Methods[mi])
	}
}

func (em *Emitter) emitConstructor(b *strings.Builder, info *VariantInfo, recv string) {
	v := info.Variant

	var params, inits []string
	for i, f := range v.Fields {
		arg := argName(v, i)
		params = append(params, arg+" "+typeToGo(f.Kind))
		inits = append(inits, fieldName(v, i)+": "+arg)
	}

	fmt.Fprintf(b, "func New%s%s(%s) %s {\n", v.Ident.Name, paramDecls(info.Params), strings.Join(params, ", "), recv)
	fmt.Fprintf(b, "\treturn %s{%s}\n", recv, strings.Join(inits, ", "))
	b.WriteString("}\n\n")
}

func (em *Emitter) emitMethod(b *strings.Builder, info *VariantInfo, recv string, m *Method) {
	v := info.Variant
	arm := m.armFor(v.Ident.Name)

	// The receiver name is hygienic: arm binders are in charge of the
	// names the body sees. A consuming method binds field values out of
	// the receiver's copy, a borrowing one binds their addresses, the
	// same split dispatch blocks make between move and ref.
	fmt.Fprintf(b, "func (__v %s) %s {\n", recv, methodSig(m, info.Subst))
	for i, binder := range arm.Binders {
		if binder.Name == "_" {
			continue
		}
		if m.Consuming {
			fmt.Fprintf(b, "\t%s := __v.%s\n", binder.Name, fieldName(v, i))
		} else {
			fmt.Fprintf(b, "\t%s := &__v.%s\n", binder.Name, fieldName(v, i))
		}
		fmt.Fprintf(b, "\t_ = %s\n", binder.Name)
	}
	if m.Returns != nil {
		fmt.Fprintf(b, "\treturn %s\n", arm.Body.Text)
	} else {
		fmt.Fprintf(b, "\t%s\n", arm.Body.Text)
	}
	b.WriteString("}\n\n")
}

// methodSig renders a method signature, substituted under a refinement
// when subst is given (nil means the interface's own declaration).
func methodSig(m *Method, subst map[string]TypeExpr) string {
	var params []string
	for _, p := range m.Params {
		kind := p.Kind
		if subst != nil {
			kind = substType(kind, subst)
		}
		params = append(params, p.Ident.Name+" "+typeToGo(kind))
	}

	sig := fmt.Sprintf("%s(%s)", m.Ident.Name, strings.Join(params, ", "))
	if m.Returns != nil {
		ret := m.Returns
		if subst != nil {
			ret = substType(ret, subst)
		}
		sig += " " + typeToGo(ret)
	}

	return sig
}

func fieldName(v *Variant, i int) string {
	if v.Fields[i].Binder != nil {
		return v.Fields[i].Binder.Name
	}
	return fmt.Sprintf("F%d", i)
}

func argName(v *Variant, i int) string {
	if v.Fields[i].Binder != nil {
		return v.Fields[i].Binder.Name
	}
	return fmt.Sprintf("f%d", i)
}

// paramDecls renders a generic parameter list with resolved bounds, or
// nothing at all for a monomorphic declaration.
func paramDecls(params []GenericParam) string {
	if len(params) == 0 {
		return ""
	}

	var parts []string
	for _, p := range params {
		bound := "any"
		if p.Bound != nil {
			bound = typeToGo(p.Bound)
		}
		parts = append(parts, p.Ident.Name+" "+bound)
	}
	return "[" + strings.Join(parts, ", ") + "]"
}

func paramNames(params []GenericParam) string {
	var names []string
	for _, p := range params {
		names = append(names, p.Ident.Name)
	}
	return strings.Join(names, ", ")
}

func typeArgs(params []GenericParam) string {
	if len(params) == 0 {
		return ""
	}
	return "[" + paramNames(params) + "]"
}

func typeToGo(t TypeExpr) string {
	switch ty := t.(type) {
	case TypeName:
		return ty.Name
	case TypeApply:
		var args []string
		for _, a := range ty.Args {
			args = append(args, typeToGo(a))
		}
		return ty.Head.Name + "[" + strings.Join(args, ", ") + "]"
	case TypeRef:
		return "*" + typeToGo(ty.Elem)
	}
	panic("unhandled")
}

func at(file string, loc Span) string {
	return fmt.Sprintf("%s:%d:%d", file, loc.From.Line, loc.From.Column)
}
