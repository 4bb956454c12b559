package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsFalsey(t *testing.T) {
	tests := []struct {
		name string
		v    Value
		want bool
	}{
		{"false is falsey", Boolean(false), true},
		{"true is not falsey", Boolean(true), false},
		{"null is not falsey", Null, false},
		{"zero number is not falsey", Number(0), false},
		{"empty string is not falsey", String(""), false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, IsFalsey(tc.v))
		})
	}
}

func TestEqual(t *testing.T) {
	fn := &Function{Arity: 1, Program: &Program{Instructions: []Instruction{{Op: RETURN}}}}
	sameFn := &Function{Arity: 1, Program: &Program{Instructions: []Instruction{{Op: RETURN}}}}
	diffFn := &Function{Arity: 2, Program: &Program{Instructions: []Instruction{{Op: RETURN}}}}

	tests := []struct {
		name string
		a, b Value
		want bool
	}{
		{"equal numbers", Number(1), Number(1), true},
		{"unequal numbers", Number(1), Number(2), false},
		{"equal strings", String("a"), String("a"), true},
		{"unequal strings", String("a"), String("b"), false},
		{"equal booleans", Boolean(true), Boolean(true), true},
		{"unequal booleans", Boolean(true), Boolean(false), false},
		{"null equals null", Null, Null, true},
		{"number is never equal to string", Number(1), String("1"), false},
		{"number is never equal to null", Number(0), Null, false},
		{"structurally equal functions", fn, sameFn, true},
		{"structurally different functions", fn, diffFn, false},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, Equal(tc.a, tc.b))
			assert.Equal(t, tc.want, Equal(tc.b, tc.a))
		})
	}
}

func TestNumberStringRoundTrips(t *testing.T) {
	assert.Equal(t, "4.2", Number(4.2).String())
	assert.Equal(t, "2", Number(2).String())
	assert.Equal(t, "-1", Number(-1).String())
}
