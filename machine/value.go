// Some of the machine package is adapted from the nenuphar language's own
// lang/machine package, itself adapted in part from the Starlark source:
// https://github.com/google/starlark-go/tree/ee8ed142361c69d52fe8e9fb5e311d2a0a7c02de
package machine

import "strconv"

// Value is the interface implemented by every runtime value the engine
// manipulates. There are exactly five concrete implementations: Number,
// Boolean, String, *Function and NullType.
type Value interface {
	// String returns the display form used by PRINT and by disassembly.
	String() string
	// Type returns a short name for the value's variant, used in error
	// messages (e.g. "expected number, got string").
	Type() string
}

// Number is a 64-bit IEEE-754 floating point value.
type Number float64

var _ Value = Number(0)

func (n Number) String() string { return strconv.FormatFloat(float64(n), 'g', -1, 64) }
func (n Number) Type() string   { return "number" }

// Boolean is a two-valued truth value.
type Boolean bool

const (
	False Boolean = false
	True  Boolean = true
)

var _ Value = True

func (b Boolean) String() string {
	if b {
		return "true"
	}
	return "false"
}
func (b Boolean) Type() string { return "boolean" }

// String is an owned Unicode text sequence.
type String string

var _ Value = String("")

func (s String) String() string { return string(s) }
func (s String) Type() string   { return "string" }

// NullType is the type of Null. Its only legal value is the Null constant; it
// is represented as a byte, not struct{}, so Null can be a compile-time
// constant comparable with ==, mirroring the teacher's NilType.
type NullType byte

// Null is the singleton absent value.
const Null = NullType(0)

var _ Value = Null

func (NullType) String() string { return "null" }
func (NullType) Type() string   { return "null" }

// IsFalsey reports whether v is considered false by NOT and JUMPIFFALSE.
//
// Null is deliberately NOT falsey here: Boolean(false) is the only falsey
// value besides nothing, and every other variant (including Null) is
// truthy. This mirrors the reference engine exactly and is very likely an
// inversion of designer intent (see the Null entry in DESIGN.md's open
// questions) — it is preserved rather than "fixed".
func IsFalsey(v Value) bool {
	if b, ok := v.(Boolean); ok {
		return !bool(b)
	}
	return false
}

// Equal implements the structural equality used by EQ/NEQ: equal only when
// both values share the same concrete variant, and within a variant compares
// by value (Function compares its Program structurally and its arity).
func Equal(x, y Value) bool {
	switch x := x.(type) {
	case Number:
		y, ok := y.(Number)
		return ok && x == y
	case Boolean:
		y, ok := y.(Boolean)
		return ok && x == y
	case String:
		y, ok := y.(String)
		return ok && x == y
	case NullType:
		_, ok := y.(NullType)
		return ok
	case *Function:
		y, ok := y.(*Function)
		return ok && x.Arity == y.Arity && programsEqual(x.Program, y.Program)
	default:
		return false
	}
}

func programsEqual(a, b *Program) bool {
	if a == b {
		return true
	}
	if a == nil || b == nil {
		return false
	}
	if len(a.Instructions) != len(b.Instructions) || len(a.Constants) != len(b.Constants) {
		return false
	}
	for i, ins := range a.Instructions {
		if ins != b.Instructions[i] {
			return false
		}
	}
	for i, c := range a.Constants {
		if !Equal(c, b.Constants[i]) {
			return false
		}
	}
	return true
}
