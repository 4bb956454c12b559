// Package asm implements a human-readable/writable textual form of a
// machine.Program. Its purpose is to exercise the engine in tests and from
// the command line without writing a front-end compiler for the guest
// language, which is out of scope for this module.
//
// The format looks like this:
//
//	program:
//		constants:
//			number 1.5
//			string "a name"
//			bool true
//			null
//			function 1 @square
//		code:
//			const 0
//			getglobal 0
//			call
//			return
//
//	function: @square 1
//		code:
//			getlocal 0
//			getlocal 0
//			mul
//			return
//
// Every "function:" section other than the implicit one inside "program:"
// is addressed by the @label used to reference it from a constants section,
// anywhere in the file (order does not matter, forward references are
// fine). A function constant's own program may in turn reference other
// labelled functions, recursively.
//
// Unlike the teacher compiler's variant-length encoded bytecode, this
// engine's Instructions are fixed-width struct values, so a jump's operand
// is already the destination's index into Instructions: no separate
// index-to-address translation pass is needed here.
package asm

import (
	"bufio"
	"bytes"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/mna/nenuphar-vm/machine"
)

var sections = map[string]bool{
	"program:":   true,
	"constants:": true,
	"code:":      true,
	"function:":  true,
}

// Asm parses a program from its assembler textual format.
func Asm(b []byte) (*machine.Program, error) {
	a := &asm{
		s:       bufio.NewScanner(bytes.NewReader(b)),
		funcs:   map[string]*funcSpec{},
		strings: machine.NewInterner(8),
	}

	fields := a.next()
	if len(fields) == 0 || !strings.EqualFold(fields[0], "program:") {
		msg := "expected program section"
		if len(fields) > 0 {
			msg += ", found " + fields[0]
		}
		return nil, errors.New(msg)
	}

	top := &funcSpec{}
	fields = a.next()
	fields = a.constants(top, fields)
	fields = a.code(top, fields)

	for a.err == nil && len(fields) > 0 && strings.EqualFold(fields[0], "function:") {
		fields = a.function(fields)
	}

	if a.err == nil && len(fields) > 0 {
		a.err = fmt.Errorf("unexpected section: %s", fields[0])
	}
	if a.err != nil {
		return nil, a.err
	}

	building := map[string]bool{}
	return a.build(top, building)
}

type constSpec struct {
	kind  string // "number", "string", "bool", "null", "function"
	num   float64
	str   string
	val   machine.Value // resolved "bool"/"null" literal, looked up in machine.Universe
	arity int
	label string
}

type funcSpec struct {
	label     string
	arity     int
	constants []constSpec
	code      []machine.Instruction
}

type asm struct {
	s       *bufio.Scanner
	err     error
	funcs   map[string]*funcSpec
	strings *machine.Interner
}

func (a *asm) function(fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "function:") {
		return fields
	}
	if len(fields) != 3 {
		a.err = fmt.Errorf("invalid function: want 'function: @label arity', got %d fields", len(fields))
		return a.next()
	}
	label := fields[1]
	arity, err := strconv.Atoi(fields[2])
	if err != nil {
		a.err = fmt.Errorf("invalid function arity %q: %w", fields[2], err)
		return a.next()
	}

	fn := &funcSpec{label: label, arity: arity}
	fields = a.next()
	fields = a.constants(fn, fields)
	fields = a.code(fn, fields)

	if a.err == nil {
		a.funcs[label] = fn
	}
	return fields
}

func (a *asm) constants(fn *funcSpec, fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "constants:") {
		return fields
	}

	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		switch fields[0] {
		case "number":
			if len(fields) != 2 {
				a.err = fmt.Errorf("invalid number constant: want 1 argument, got %d", len(fields)-1)
				return fields
			}
			f, err := strconv.ParseFloat(fields[1], 64)
			if err != nil {
				a.err = fmt.Errorf("invalid number constant %q: %w", fields[1], err)
				return fields
			}
			fn.constants = append(fn.constants, constSpec{kind: "number", num: f})
		case "string":
			if len(fields) < 2 {
				a.err = errors.New("invalid string constant: missing value")
				return fields
			}
			raw := strings.Join(fields[1:], " ")
			s, err := strconv.Unquote(raw)
			if err != nil {
				a.err = fmt.Errorf("invalid string constant %s: %w", raw, err)
				return fields
			}
			fn.constants = append(fn.constants, constSpec{kind: "string", str: s})
		case "bool":
			if len(fields) != 2 {
				a.err = fmt.Errorf("invalid bool constant: want 1 argument, got %d", len(fields)-1)
				return fields
			}
			v, ok := machine.Universe[fields[1]].(machine.Boolean)
			if !ok {
				a.err = fmt.Errorf("invalid bool constant %q: want true or false", fields[1])
				return fields
			}
			fn.constants = append(fn.constants, constSpec{kind: "bool", val: v})
		case "null":
			if len(fields) != 1 {
				a.err = fmt.Errorf("invalid null constant: want 0 arguments, got %d", len(fields)-1)
				return fields
			}
			fn.constants = append(fn.constants, constSpec{kind: "null", val: machine.Universe["null"]})
		case "function":
			if len(fields) != 3 {
				a.err = fmt.Errorf("invalid function constant: want 'function arity @label', got %d fields", len(fields))
				return fields
			}
			arity, err := strconv.Atoi(fields[1])
			if err != nil {
				a.err = fmt.Errorf("invalid function constant arity %q: %w", fields[1], err)
				return fields
			}
			fn.constants = append(fn.constants, constSpec{kind: "function", arity: arity, label: fields[2]})
		default:
			a.err = fmt.Errorf("invalid constant type: %s", fields[0])
			return fields
		}
	}
	return fields
}

func (a *asm) code(fn *funcSpec, fields []string) []string {
	if a.err != nil || len(fields) == 0 || !strings.EqualFold(fields[0], "code:") {
		return fields
	}

	for fields = a.next(); len(fields) > 0 && !sections[fields[0]]; fields = a.next() {
		op, ok := machine.LookupOpcode(strings.ToLower(fields[0]))
		if !ok {
			a.err = fmt.Errorf("invalid opcode: %s", fields[0])
			return fields
		}

		needsArg := machine.HasOperand(op)
		var arg uint64
		switch {
		case needsArg && len(fields) == 2:
			v, err := strconv.ParseUint(fields[1], 10, 32)
			if err != nil {
				a.err = fmt.Errorf("invalid operand for opcode %s: %w", fields[0], err)
				return fields
			}
			arg = v
		case needsArg:
			a.err = fmt.Errorf("expected an operand for opcode %s, got %d fields", fields[0], len(fields))
			return fields
		case len(fields) != 1:
			a.err = fmt.Errorf("expected no operand for opcode %s, got %d fields", fields[0], len(fields))
			return fields
		}
		fn.code = append(fn.code, machine.Instruction{Op: op, Operand: uint32(arg)})
	}
	return fields
}

// build turns a funcSpec into a machine.Program, resolving "function"
// constants recursively by name against a.funcs. building guards against a
// self-referencing label (which would otherwise recurse forever).
func (a *asm) build(fn *funcSpec, building map[string]bool) (*machine.Program, error) {
	prog := &machine.Program{Instructions: fn.code}
	for _, c := range fn.constants {
		switch c.kind {
		case "number":
			prog.Constants = append(prog.Constants, machine.Number(c.num))
		case "string":
			prog.Constants = append(prog.Constants, a.strings.Intern(c.str))
		case "bool", "null":
			prog.Constants = append(prog.Constants, c.val)
		case "function":
			if building[c.label] {
				return nil, fmt.Errorf("function %s is self-referential", c.label)
			}
			target, ok := a.funcs[c.label]
			if !ok {
				return nil, fmt.Errorf("undefined function label: %s", c.label)
			}
			building[c.label] = true
			sub, err := a.build(target, building)
			delete(building, c.label)
			if err != nil {
				return nil, err
			}
			prog.Constants = append(prog.Constants, &machine.Function{Program: sub, Arity: c.arity})
		}
	}
	return prog, nil
}

// returns the fields for the next non-empty, non-comment-only line.
func (a *asm) next() []string {
	if a.err != nil {
		return nil
	}
	for a.s.Scan() {
		fields := strings.Fields(a.s.Text())
		if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
			continue
		}
		for i, fld := range fields {
			if strings.HasPrefix(fld, "#") {
				fields = fields[:i]
				break
			}
		}
		if len(fields) == 0 {
			continue
		}
		return fields
	}
	a.err = a.s.Err()
	return nil
}

