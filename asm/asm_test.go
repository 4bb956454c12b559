package asm_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mna/nenuphar-vm/asm"
	"github.com/mna/nenuphar-vm/machine"
)

func TestAsmErrors(t *testing.T) {
	cases := []struct {
		desc string
		in   string
		err  string
	}{
		{"empty", ``, "expected program section"},
		{"not program", `function: @f 0`, "expected program section"},
		{"minimally valid", "program:\n\tcode:\n", ""},
		{"invalid opcode", "program:\n\tcode:\n\t\tfoobar\n", "invalid opcode: foobar"},
		{"missing opcode arg", "program:\n\tcode:\n\t\tjump\n", "expected an operand for opcode jump"},
		{"extra opcode arg", "program:\n\tcode:\n\t\tjump 1 2\n", "expected an operand for opcode jump, got 3 fields"},
		{"unexpected opcode arg", "program:\n\tcode:\n\t\tpop 1\n", "expected no operand for opcode pop, got 2 fields"},
		{"undefined function label", "program:\n\tconstants:\n\t\tfunction 0 @missing\n\tcode:\n", "undefined function label: @missing"},
		{"extra unknown section", "program:\n\tcode:\nconstants:\n", "unexpected section: constants:"},
	}
	for _, tc := range cases {
		t.Run(tc.desc, func(t *testing.T) {
			_, err := asm.Asm([]byte(tc.in))
			if tc.err == "" {
				require.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tc.err)
		})
	}
}

func TestAsmConstants(t *testing.T) {
	src := `
program:
	constants:
		number 1.5
		string "hello world"
		bool true
		null
	code:
		const 0
`
	p, err := asm.Asm([]byte(src))
	require.NoError(t, err)
	require.Len(t, p.Constants, 4)
	assert.Equal(t, machine.Number(1.5), p.Constants[0])
	assert.Equal(t, machine.String("hello world"), p.Constants[1])
	assert.Equal(t, machine.Boolean(true), p.Constants[2])
	assert.Equal(t, machine.Null, p.Constants[3])
}

func TestAsmNestedFunction(t *testing.T) {
	src := `
program:
	constants:
		number 4.2
		function 1 @square
	code:
		const 0
		const 1
		call

function: @square 1
	constants:
		number 2
	code:
		getlocal 0
		const 0
		mul
		return
`
	p, err := asm.Asm([]byte(src))
	require.NoError(t, err)
	require.Len(t, p.Constants, 2)
	fn, ok := p.Constants[1].(*machine.Function)
	require.True(t, ok)
	assert.Equal(t, 1, fn.Arity)
	require.Len(t, fn.Program.Instructions, 4)
	assert.Equal(t, machine.GETLOCAL, fn.Program.Instructions[0].Op)
}

func TestAsmDasmRoundTrip(t *testing.T) {
	square := &machine.Function{
		Arity: 1,
		Program: &machine.Program{
			Instructions: []machine.Instruction{
				{Op: machine.GETLOCAL, Operand: 0},
				{Op: machine.CONST, Operand: 0},
				{Op: machine.MUL},
				{Op: machine.RETURN},
			},
			Constants: []machine.Value{machine.Number(2)},
		},
	}
	prog := &machine.Program{
		Instructions: []machine.Instruction{
			{Op: machine.CONST, Operand: 0},
			{Op: machine.CONST, Operand: 1},
			{Op: machine.CALL},
		},
		Constants: []machine.Value{machine.Number(4.2), square},
	}

	out, err := asm.Dasm(prog)
	require.NoError(t, err)

	back, err := asm.Asm(out)
	require.NoError(t, err)
	assert.True(t, machine.Equal(prog.Constants[0], back.Constants[0]))
	assert.True(t, machine.Equal(prog.Constants[1], back.Constants[1]))
	assert.Equal(t, prog.Instructions, back.Instructions)
}
