package main

import (
	"fmt"
	"sort"
	"strings"
)

// expandDispatch compiles one match block into an immediately-invoked func
// literal: an ordered run of checked type assertions, first match wins, and
// a hard panic when the run falls through.
func (em *Emitter) expandDispatch(file string, d *DispatchBlock) string {
	var b strings.Builder

	fmt.Fprintf(&b, "func() (__ret %s) {\n", typeToGo(d.Returns))
	fmt.Fprintf(&b, "\t__subject := %s\n", d.Subject.Text)

	for i := range d.Arms {
		em.emitArm(&b, d, &d.Arms[i])
	}

	fmt.Fprintf(&b, "\tpanic(\"tigo: no arm matched in dispatch at %s\")\n", at(file, d.Pos))
	b.WriteString("}()")

	return b.String()
}

func (em *Emitter) emitArm(b *strings.Builder, d *DispatchBlock, arm *DispatchArm) {
	info := em.lookupVariant(d, arm)

	if info != nil && len(arm.Binders) != len(info.Variant.Fields) {
		panic(ArmBinderMismatch{
			Context:  "dispatch",
			Variant:  arm.Variant.Name,
			Want:     len(info.Variant.Fields),
			Got:      len(arm.Binders),
			Location: arm.Variant.Pos,
		})
	}

	fmt.Fprintf(b, "\tif __v, __ok := __subject.(%s); __ok {\n", em.concreteType(d, arm, info))
	for i, binder := range arm.Binders {
		if binder.Name == "_" {
			continue
		}
		field := fmt.Sprintf("F%d", i)
		if info != nil {
			field = fieldName(info.Variant, i)
		}
		if d.Move {
			fmt.Fprintf(b, "\t\t%s := __v.%s\n", binder.Name, field)
		} else {
			fmt.Fprintf(b, "\t\t%s := &__v.%s\n", binder.Name, field)
		}
		fmt.Fprintf(b, "\t\t_ = %s\n", binder.Name)
	}
	fmt.Fprintf(b, "\t\t__ret = %s\n", arm.Body.Text)
	b.WriteString("\t\treturn\n")
	b.WriteString("\t}\n")
}

// lookupVariant finds the analyzed variant an arm names, when the enums of
// this invocation are in scope. A nil result keeps the dispatch compiler
// usable standalone: binding then falls back to positional field names.
func (em *Emitter) lookupVariant(d *DispatchBlock, arm *DispatchArm) *VariantInfo {
	if d.Hint != nil {
		if unit, ok := em.enums[d.Hint.Head.Name]; ok {
			info, ok := unit.byVariant[arm.Variant.Name]
			if !ok {
				em.settings.warnf("dispatch arm names %s, which is not a variant of %s", arm.Variant.Name, d.Hint.Head.Name)
			}
			return info
		}
	}

	for _, name := range em.order() {
		if info, ok := em.enums[name].byVariant[arm.Variant.Name]; ok {
			return info
		}
	}

	if len(em.enums) > 0 {
		em.settings.warnf("dispatch arm names %s, which is not a variant of any enum in this run", arm.Variant.Name)
	}

	return nil
}

func (em *Emitter) order() []string {
	var names []string
	for name := range em.enums {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// concreteType renders the struct type an arm downcasts to. Explicit type
// arguments win; otherwise the `as` hint supplies the enclosing arguments,
// positionally when the variant's analyzed parameter list is known and
// verbatim when it is not.
func (em *Emitter) concreteType(d *DispatchBlock, arm *DispatchArm, info *VariantInfo) string {
	if len(arm.TypeArgs) > 0 {
		var args []string
		for _, a := range arm.TypeArgs {
			args = append(args, typeToGo(a))
		}
		return arm.Variant.Name + "[" + strings.Join(args, ", ") + "]"
	}

	if info != nil && len(info.Params) == 0 {
		return arm.Variant.Name
	}

	if info != nil && d.Hint != nil && len(d.Hint.Args) > 0 {
		enclosingIndex := map[string]int{}
		if unit, ok := em.enums[d.Hint.Head.Name]; ok {
			for i, g := range unit.spec.Generics {
				enclosingIndex[g.Ident.Name] = i
			}
		}

		var args []string
		for _, p := range info.Params {
			idx, ok := enclosingIndex[p.Ident.Name]
			if !ok || p.VariantOwned || idx >= len(d.Hint.Args) {
				args = nil
				break
			}
			args = append(args, typeToGo(d.Hint.Args[idx]))
		}
		if args != nil {
			return arm.Variant.Name + "[" + strings.Join(args, ", ") + "]"
		}
	}

	if d.Hint != nil && len(d.Hint.Args) > 0 {
		var args []string
		for _, a := range d.Hint.Args {
			args = append(args, typeToGo(a))
		}
		return arm.Variant.Name + "[" + strings.Join(args, ", ") + "]"
	}

	return arm.Variant.Name
}
