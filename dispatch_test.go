package main

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func expandAll(t *testing.T, src string) (string, []string, []string) {
	t.Helper()

	var warnings []string
	ast := parseSrc(t, src)
	em := NewEmitter(settings{
		packageName: "p",
		warnf: func(format string, args ...interface{}) {
			warnings = append(warnings, fmt.Sprintf(format, args...))
		},
	})
	decls, dispatches, err := em.Expand([]AST{ast})
	if err != nil {
		t.Fatalf("expand failed: %s", err)
	}
	return decls, dispatches, warnings
}

func TestDispatchOrderedArms(t *testing.T) {
	_, dispatches, _ := expandAll(t, eitherSrc+`
dispatch(move subject as Either<int, string> -> int {
	Left(a) => *new(int),
	Right(b) => 0,
})
`)

	if len(dispatches) != 1 {
		t.Fatalf("got %d dispatch expansions, want 1", len(dispatches))
	}
	d := dispatches[0]

	mustContain(t, d,
		"func() (__ret int) {",
		"__subject := subject",
		"if __v, __ok := __subject.(Left[int, string]); __ok {",
		"if __v, __ok := __subject.(Right[int, string]); __ok {",
		"panic(\"tigo: no arm matched in dispatch at test.tigo:",
	)

	left := strings.Index(d, "Left[int, string]")
	right := strings.Index(d, "Right[int, string]")
	if left == -1 || right == -1 || left > right {
		t.Errorf("arms are not in declared order:\n%s", d)
	}

	reordered := eitherSrc + `
dispatch(move subject as Either<int, string> -> int {
	Right(b) => 0,
	Left(a) => *new(int),
})
`
	_, swapped, _ := expandAll(t, reordered)
	d2 := swapped[0]
	if strings.Index(d2, "Right[int, string]") > strings.Index(d2, "Left[int, string]") {
		t.Errorf("reordering arms did not reorder the downcast sequence:\n%s", d2)
	}
}

func TestDispatchMoveBindsValues(t *testing.T) {
	_, dispatches, _ := expandAll(t, `
enum Shape {
	Circle(radius: float64),
	Rect(w: float64, h: float64),
}
dispatch(move fig as Shape -> float64 {
	Circle(r) => 3.14 * r * r,
	Rect(w, h) => w * h,
})
`)

	mustContain(t, dispatches[0],
		"if __v, __ok := __subject.(Circle); __ok {",
		"r := __v.radius",
		"__ret = 3.14 * r * r",
		"w := __v.w",
		"h := __v.h",
	)
}

func TestDispatchRefBindsAddresses(t *testing.T) {
	_, dispatches, _ := expandAll(t, `
enum Shape {
	Circle(radius: float64),
}
dispatch(fig as Shape -> float64 {
	Circle(r) => *r,
})
`)

	mustContain(t, dispatches[0], "r := &__v.radius")
}

func TestDispatchExplicitTypeArgsWin(t *testing.T) {
	_, dispatches, _ := expandAll(t, eitherSrc+`
dispatch(move subject as Either<int, string> -> int {
	Left<int, bool>(a) => 1,
	Right(b) => 0,
})
`)

	mustContain(t, dispatches[0], "__subject.(Left[int, bool])")
}

func TestDispatchStandalonePositionalFields(t *testing.T) {
	_, dispatches, _ := expandAll(t, `
dispatch(move v as Pair<int, string> -> int {
	First(a) => a,
	Second(b) => 0,
})
`)

	mustContain(t, dispatches[0],
		"__subject.(First[int, string])",
		"a := __v.F0",
	)
}

func TestDispatchUnknownVariantWarns(t *testing.T) {
	_, _, warnings := expandAll(t, eitherSrc+`
dispatch(move subject as Either<int, string> -> int {
	Left(a) => 1,
	Middle => 0,
})
`)

	if len(warnings) != 1 || !strings.Contains(warnings[0], "Middle") {
		t.Errorf("warnings: %#v", warnings)
	}
}

func TestDispatchDuplicateArm(t *testing.T) {
	err := parseFail(t, `
dispatch(move v -> int {
	A(x) => x,
	A<int>(x) => x,
})
`)

	var want DuplicateArm
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want DuplicateArm", err, err)
	}
}

func TestDispatchMixedModes(t *testing.T) {
	err := parseFail(t, `
dispatch(move v -> int {
	ref A(x) => x,
})
`)

	var want MixedModes
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want MixedModes", err, err)
	}

	err = parseFail(t, `
dispatch(v -> int {
	move A(x) => x,
})
`)
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want MixedModes", err, err)
	}
}

func TestDispatchRestatedModeAllowed(t *testing.T) {
	parseSrc(t, `
dispatch(move v -> int {
	move A(x) => x,
})
`)
}

func TestDispatchEmpty(t *testing.T) {
	err := parseFail(t, `
dispatch(move v -> int {})
`)

	var want EmptyDispatch
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want EmptyDispatch", err, err)
	}
}

func TestDispatchBinderMismatch(t *testing.T) {
	ast := parseSrc(t, eitherSrc+`
dispatch(move v as Either<int, string> -> int {
	Left(a, b) => 1,
	Right(b) => 0,
})
`)

	em := NewEmitter(settings{packageName: "p"})
	_, _, err := em.Expand([]AST{ast})
	if err == nil {
		t.Fatalf("expand succeeded, expected a failure")
	}
	var want ArmBinderMismatch
	if !errors.As(err, &want) {
		t.Fatalf("got %T (%s), want ArmBinderMismatch", err, err)
	}
}

func TestDispatchWildcardBinderSkipsExtraction(t *testing.T) {
	_, dispatches, _ := expandAll(t, eitherSrc+`
dispatch(move v as Either<int, string> -> int {
	Left(_) => 1,
	Right(_) => 0,
})
`)

	if strings.Contains(dispatches[0], "_ := ") {
		t.Errorf("wildcard binder leaked into bindings:\n%s", dispatches[0])
	}
}
