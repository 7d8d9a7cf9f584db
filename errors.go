package main

import (
	"fmt"
	"strings"
)

type ExpectedKindGotKind struct {
	Expected TokenKind
	Got      TokenKind
	Location Span
}

func (e ExpectedKindGotKind) Error() string {
	return fmt.Sprintf("got a %s, expected a %s. %s", e.Got, e.Expected, e.Location)
}

type ExpectedOneOfKindGotKind struct {
	Expected []TokenKind
	Got      TokenKind
	Location Span
}

func (e ExpectedOneOfKindGotKind) Error() string {
	var kinds []string
	for _, k := range e.Expected {
		kinds = append(kinds, k.String())
	}
	return fmt.Sprintf("got a %s, expected one of %s. %s", e.Got, strings.Join(kinds, ", "), e.Location)
}

type UnterminatedLiteral struct {
	Location Span
}

func (e UnterminatedLiteral) Error() string {
	return fmt.Sprintf("literal left unterminated. %s", e.Location)
}

type DuplicateEnum struct {
	Name     string
	Location Span
}

func (e DuplicateEnum) Error() string {
	return fmt.Sprintf("enum %s is declared more than once in this run. %s", e.Name, e.Location)
}

type DuplicateVariant struct {
	Enum     string
	Name     string
	Location Span
}

func (e DuplicateVariant) Error() string {
	return fmt.Sprintf("enum %s declares variant %s more than once. %s", e.Enum, e.Name, e.Location)
}

type DuplicateField struct {
	Variant  string
	Name     string
	Location Span
}

func (e DuplicateField) Error() string {
	return fmt.Sprintf("variant %s binds field %s more than once. %s", e.Variant, e.Name, e.Location)
}

type RefinementHeadMismatch struct {
	Enum     string
	Got      string
	Location Span
}

func (e RefinementHeadMismatch) Error() string {
	return fmt.Sprintf("refinement names %s, but the enclosing enum is %s. %s", e.Got, e.Enum, e.Location)
}

type RefinementArityMismatch struct {
	Enum     string
	Want     int
	Got      int
	Location Span
}

func (e RefinementArityMismatch) Error() string {
	return fmt.Sprintf("refinement of %s applies %d type arguments, the enum declares %d. %s", e.Enum, e.Got, e.Want, e.Location)
}

type UndeclaredParam struct {
	Variant  string
	Name     string
	Location Span
}

func (e UndeclaredParam) Error() string {
	return fmt.Sprintf("variant %s references type parameter %s, which is declared neither on the variant nor on the enum. %s", e.Variant, e.Name, e.Location)
}

type ShadowedParam struct {
	Variant  string
	Name     string
	Location Span
}

func (e ShadowedParam) Error() string {
	return fmt.Sprintf("variant %s redeclares enclosing type parameter %s. %s", e.Variant, e.Name, e.Location)
}

type ContradictoryBound struct {
	Param    string
	Bounds   [2]string
	Location Span
}

func (e ContradictoryBound) Error() string {
	return fmt.Sprintf("type parameter %s is bounded by both %s and %s. %s", e.Param, e.Bounds[0], e.Bounds[1], e.Location)
}

type DuplicateConcreteShape struct {
	Enum     string
	Variants [2]string
	Location Span
}

func (e DuplicateConcreteShape) Error() string {
	return fmt.Sprintf("variants %s and %s of enum %s share a refinement and an identical field shape. %s", e.Variants[0], e.Variants[1], e.Enum, e.Location)
}

type UnknownVariantArm struct {
	Method   string
	Variant  string
	Location Span
}

func (e UnknownVariantArm) Error() string {
	return fmt.Sprintf("method %s has an arm for %s, which is not a variant of the enclosing enum. %s", e.Method, e.Variant, e.Location)
}

type MissingArm struct {
	Method   string
	Variant  string
	Location Span
}

func (e MissingArm) Error() string {
	return fmt.Sprintf("method %s has no arm for variant %s. %s", e.Method, e.Variant, e.Location)
}

type ArmBinderMismatch struct {
	Context  string
	Variant  string
	Want     int
	Got      int
	Location Span
}

func (e ArmBinderMismatch) Error() string {
	return fmt.Sprintf("%s binds %d names for variant %s, which has %d fields. %s", e.Context, e.Got, e.Variant, e.Want, e.Location)
}

type DuplicateArm struct {
	Variant  string
	Location Span
}

func (e DuplicateArm) Error() string {
	return fmt.Sprintf("dispatch names variant %s in more than one arm. %s", e.Variant, e.Location)
}

type MixedModes struct {
	Variant  string
	Location Span
}

func (e MixedModes) Error() string {
	return fmt.Sprintf("arm for %s disagrees with the dispatch block's consumption mode. %s", e.Variant, e.Location)
}

type EmptyDispatch struct {
	Location Span
}

func (e EmptyDispatch) Error() string {
	return fmt.Sprintf("dispatch block has no arms. %s", e.Location)
}
