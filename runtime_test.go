package main

import (
	"testing"
	"unsafe"
)

// The declarations below are written in the exact shape the emitter
// produces, so the behavioral guarantees of generated code can be
// checked directly without a compile-and-run harness.

type rtPhantom[T any] struct{}

type rtEmpty struct{}
type rtNonEmpty struct{}

type rtSafeList[T any, E any] interface {
	is_SafeList(T, E)
}

type rtNil[T any] struct {
	_ rtPhantom[T]
}

func (v rtNil[T]) is_SafeList(T, rtEmpty) {}

type rtCons[T any, E any] struct {
	F0 T
	F1 *rtSafeList[T, E]
}

func (v rtCons[T, E]) is_SafeList(T, rtNonEmpty) {}

type rtEither[A any, B any] interface {
	is_Either(A, B)
}

type rtLeft[A any, B any] struct {
	_  rtPhantom[B]
	F0 A
}

func (v rtLeft[A, B]) is_Either(A, B) {}

type rtRight[A any, B any] struct {
	_  rtPhantom[A]
	F0 B
}

func (v rtRight[A, B]) is_Either(A, B) {}

func TestRuntimeFirstMatchWins(t *testing.T) {
	visited := 0
	subject := rtEither[int, string](rtLeft[int, string]{F0: 5})

	got := func() (__ret int) {
		__subject := subject
		if __v, __ok := __subject.(rtLeft[int, string]); __ok {
			visited++
			a := __v.F0
			__ret = a
			return
		}
		if __v, __ok := __subject.(rtRight[int, string]); __ok {
			visited++
			_ = __v
			__ret = -1
			return
		}
		panic("tigo: no arm matched in dispatch at test.tigo:1:1")
	}()

	if got != 5 {
		t.Errorf("got %d, want 5", got)
	}
	if visited != 1 {
		t.Errorf("visited %d arms, want exactly 1", visited)
	}
}

func TestRuntimeArmOrderIrrelevantForDistinctVariants(t *testing.T) {
	subject := rtEither[int, string](rtRight[int, string]{F0: "hi"})

	forward := func() (__ret string) {
		__subject := subject
		if __v, __ok := __subject.(rtLeft[int, string]); __ok {
			_ = __v
			__ret = "left"
			return
		}
		if __v, __ok := __subject.(rtRight[int, string]); __ok {
			__ret = __v.F0
			return
		}
		panic("tigo: no arm matched in dispatch at test.tigo:1:1")
	}()

	backward := func() (__ret string) {
		__subject := subject
		if __v, __ok := __subject.(rtRight[int, string]); __ok {
			__ret = __v.F0
			return
		}
		if __v, __ok := __subject.(rtLeft[int, string]); __ok {
			_ = __v
			__ret = "left"
			return
		}
		panic("tigo: no arm matched in dispatch at test.tigo:1:1")
	}()

	if forward != backward {
		t.Errorf("arm order changed the result: %q vs %q", forward, backward)
	}
	if forward != "hi" {
		t.Errorf("got %q, want %q", forward, "hi")
	}
}

func TestRuntimeFallthroughPanicsDeterministically(t *testing.T) {
	run := func() (msg string) {
		defer func() {
			msg, _ = recover().(string)
		}()

		subject := rtEither[int, string](rtRight[int, string]{F0: "x"})
		func() (__ret int) {
			__subject := subject
			if __v, __ok := __subject.(rtLeft[int, string]); __ok {
				__ret = __v.F0
				return
			}
			panic("tigo: no arm matched in dispatch at test.tigo:7:3")
		}()
		return
	}

	first := run()
	second := run()
	if first != "tigo: no arm matched in dispatch at test.tigo:7:3" {
		t.Errorf("panic message: %q", first)
	}
	if first != second {
		t.Errorf("panic message not stable: %q vs %q", first, second)
	}
}

func TestRuntimePhantomMarkersAreZeroSize(t *testing.T) {
	if s := unsafe.Sizeof(rtNil[int]{}); s != 0 {
		t.Errorf("rtNil[int] is %d bytes, want 0", s)
	}
	if s := unsafe.Sizeof(rtPhantom[map[string]int]{}); s != 0 {
		t.Errorf("rtPhantom is %d bytes, want 0", s)
	}
}

func TestRuntimeRefinementPinsInstantiation(t *testing.T) {
	// rtNil's marker takes rtEmpty, so it satisfies the interface only
	// at the Empty index; handing it off at NonEmpty must not compile,
	// and at runtime a widened value must not downcast across indices.
	var list rtSafeList[int, rtEmpty] = rtNil[int]{}

	if _, ok := interface{}(list).(rtSafeList[int, rtNonEmpty]); ok {
		t.Error("rtNil[int] asserted at the NonEmpty index")
	}

	tail := rtSafeList[int, rtEmpty](rtNil[int]{})
	var cons rtSafeList[int, rtNonEmpty] = rtCons[int, rtEmpty]{F0: 1, F1: &tail}
	if _, ok := interface{}(cons).(rtCons[int, rtEmpty]); !ok {
		t.Error("rtCons lost its identity behind the interface")
	}
}

func TestRuntimeRefModeObservesMutation(t *testing.T) {
	subject := rtEither[int, string](rtLeft[int, string]{F0: 1})

	got := func() (__ret int) {
		__subject := subject
		if __v, __ok := __subject.(rtLeft[int, string]); __ok {
			a := &__v.F0
			*a = 10
			__ret = __v.F0
			return
		}
		panic("tigo: no arm matched in dispatch at test.tigo:1:1")
	}()

	if got != 10 {
		t.Errorf("mutation through the ref binder was lost: got %d", got)
	}
}
