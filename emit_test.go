package main

import (
	"errors"
	"strings"
	"testing"
)

func expandSrc(t *testing.T, src string) string {
	t.Helper()

	ast := parseSrc(t, src)
	em := NewEmitter(settings{packageName: "shapes"})
	decls, _, err := em.Expand([]AST{ast})
	if err != nil {
		t.Fatalf("expand failed: %s", err)
	}
	return decls
}

func mustContain(t *testing.T, haystack string, wants ...string) {
	t.Helper()
	for _, want := range wants {
		if !strings.Contains(haystack, want) {
			t.Errorf("generated code is missing %q\n---\n%s", want, haystack)
		}
	}
}

func TestEmitMonomorphicEnum(t *testing.T) {
	decls := expandSrc(t, `
enum Shape {
	Circle(radius: float64),
	Rect(w: float64, h: float64),
	fn area(self) -> float64 {
		Circle(r) => 3.14 * r * r,
		Rect(w, h) => w * h,
	}
}
`)

	mustContain(t, decls,
		"// Code generated by tigo. DO NOT EDIT.",
		"package shapes",
		"type Shape interface {",
		"\tis_Shape()",
		"\tarea() float64",
		"type Circle struct {",
		"\tradius float64",
		"func (v Circle) is_Shape() {}",
		"func NewCircle(radius float64) Circle {",
		"func (__v Circle) area() float64 {",
		"\tr := __v.radius",
		"\treturn 3.14 * r * r",
		"func (__v Rect) area() float64 {",
		"\treturn w * h",
	)

	if strings.Contains(decls, "phantom") {
		t.Errorf("monomorphic enum should not pull in the phantom marker")
	}
}

func TestEmitPhantomMarkers(t *testing.T) {
	decls := expandSrc(t, safeListSrc)

	mustContain(t, decls,
		"type phantom[T any] struct{}",
		"type SafeList[T any, E any] interface {",
		"\tis_SafeList(T, E)",
		"type Nil[T any] struct {",
		"\t_ phantom[T]",
		"func (v Nil[T]) is_SafeList(T, Empty) {}",
		"type Cons[T any, E any] struct {",
		"\tF0 T",
		"\tF1 Ref[SafeList[T, E]]",
		"func (v Cons[T, E]) is_SafeList(T, NonEmpty) {}",
		"func NewCons[T any, E any](f0 T, f1 Ref[SafeList[T, E]]) Cons[T, E] {",
	)
}

func TestEmitUnrefinedGenericEnum(t *testing.T) {
	decls := expandSrc(t, eitherSrc)

	mustContain(t, decls,
		"type Either[A any, B any] interface {",
		"\tis_Either(A, B)",
		"type Left[A any, B any] struct {",
		"\tF0 A",
		"\t_ phantom[B]",
		"func (v Left[A, B]) is_Either(A, B) {}",
		"type Right[A any, B any] struct {",
		"\t_ phantom[A]",
	)
}

func TestEmitMethodSubstitution(t *testing.T) {
	decls := expandSrc(t, `
enum Term<T> {
	Lift(value: T),
	Boolean(b: bool) : Term<bool>,
	fn eval(self) -> T {
		Lift(v) => v,
		Boolean(b) => b,
	}
}
`)

	mustContain(t, decls,
		"\teval() T",
		"func (__v Lift[T]) eval() T {",
		"func (__v Boolean) eval() bool {",
	)
}

func TestEmitBorrowingMethodBindsAddresses(t *testing.T) {
	decls := expandSrc(t, `
enum Counter {
	Count(n: int),
	fn get(&self) -> int {
		Count(n) => *n,
	}
}
`)

	mustContain(t, decls,
		"func (__v Count) get() int {",
		"\tn := &__v.n",
		"\treturn *n",
	)
}

func TestEmitBounds(t *testing.T) {
	decls := expandSrc(t, `
enum Box<T: Stringer> {
	Full(T),
	Empty : Box<T>,
}
`)

	mustContain(t, decls,
		"type Box[T Stringer] interface {",
		"type Full[T Stringer] struct {",
		"type Empty[T Stringer] struct {",
		"\t_ phantom[T]",
	)
}

func TestEmitReferenceFields(t *testing.T) {
	decls := expandSrc(t, `
enum L<T> {
	C(T, &L<T>),
}
`)

	mustContain(t, decls, "\tF1 *L[T]")
}

func TestEmitDeterministic(t *testing.T) {
	src := safeListSrc + eitherSrc

	first := expandSrc(t, src)
	second := expandSrc(t, src)
	if first != second {
		t.Errorf("expansion is not deterministic")
	}
}

func TestEmitTraceComments(t *testing.T) {
	decls := expandSrc(t, safeListSrc)

	mustContain(t, decls,
		"// Generated from enum SafeList (test.tigo:2:6).",
		"// Generated from variant Cons of enum SafeList (test.tigo:4:2).",
	)
}

func TestEmitDuplicateEnum(t *testing.T) {
	first := parseSrc(t, "enum E { A(int) }")
	second := parseSrc(t, "enum E { B(string) }")

	em := NewEmitter(settings{packageName: "p"})
	decls, dispatches, err := em.Expand([]AST{first, second})
	if err == nil {
		t.Fatalf("expand succeeded, expected a failure")
	}
	var want DuplicateEnum
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want DuplicateEnum", err, err)
	}
	if decls != "" || dispatches != nil {
		t.Errorf("failed expansion still produced output")
	}
}

func TestEmitAllOrNothing(t *testing.T) {
	ast := parseSrc(t, eitherSrc)
	bad := parseSrc(t, "enum Bad<A> { X<U>(U), Y(U) }")

	em := NewEmitter(settings{packageName: "p"})
	decls, dispatches, err := em.Expand([]AST{ast, bad})
	if err == nil {
		t.Fatalf("expand succeeded, expected a failure")
	}
	if decls != "" || dispatches != nil {
		t.Errorf("failed expansion still produced output")
	}
}
