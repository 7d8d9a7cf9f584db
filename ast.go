package main

import (
	"fmt"
	"strings"
)

type Identifier struct {
	Name string
	Pos  Span
}

func NewID(name string, loc Span) Identifier {
	return Identifier{Name: name, Pos: loc}
}

// TypeExpr is a reference graph over names; some resolve to generic
// parameters in scope, the rest to externally-defined types.
type TypeExpr interface {
	is_TypeExpr()
	String() string
}

type TypeName Identifier

func (v TypeName) is_TypeExpr() {}

func (v TypeName) String() string { return v.Name }

type TypeApply struct {
	Head Identifier
	Args []TypeExpr
}

func (v TypeApply) is_TypeExpr() {}

func (v TypeApply) String() string {
	var args []string
	for _, a := range v.Args {
		args = append(args, a.String())
	}
	return fmt.Sprintf("%s<%s>", v.Head.Name, strings.Join(args, ", "))
}

type TypeRef struct {
	Elem TypeExpr
	Pos  Span
}

func (v TypeRef) is_TypeExpr() {}

func (v TypeRef) String() string { return "&" + v.Elem.String() }

// RawExpr is a verbatim expression captured from the source, re-emitted
// untouched into the generated code.
type RawExpr struct {
	Text string
	Pos  Span
}

type GenericParam struct {
	Ident        Identifier
	Bound        TypeExpr // nil when unbounded
	VariantOwned bool
}

type FieldDef struct {
	Binder *Identifier // nil for a positional field
	Kind   TypeExpr
}

// Refinement is the variant's declared instantiation of the enclosing
// interface's parameters.
type Refinement struct {
	Head Identifier
	Args []TypeExpr
}

type Variant struct {
	Ident    Identifier
	Generics []GenericParam
	Fields   []FieldDef
	Refines  *Refinement
}

type MethodParam struct {
	Ident Identifier
	Kind  TypeExpr
}

type MethodArm struct {
	Variant Identifier
	Binders []Identifier
	Body    RawExpr
}

type Method struct {
	Ident     Identifier
	Consuming bool // fn f(self, ...) as opposed to fn f(&self, ...)
	Params    []MethodParam
	Returns   TypeExpr // nil for no declared return
	Arms      []MethodArm
}

type EnumSpec struct {
	Ident    Identifier
	Generics []GenericParam
	Variants []Variant
	Methods  []Method
}

type ArmMode int

const (
	ModeInherit ArmMode = iota
	ModeMove
	ModeRef
)

type DispatchArm struct {
	Mode     ArmMode
	Variant  Identifier
	TypeArgs []TypeExpr
	Binders  []Identifier
	Body     RawExpr
}

type DispatchBlock struct {
	Move    bool
	Subject RawExpr
	Hint    *TypeApply // optional `as Name<Args>` hint
	Returns TypeExpr
	Arms    []DispatchArm
	Pos     Span
}

type TopLevel interface {
	is_TopLevel()
}

func (v EnumSpec) is_TopLevel() {}

func (v DispatchBlock) is_TopLevel() {}

type AST struct {
	File      string
	Toplevels []TopLevel
}
