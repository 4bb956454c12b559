package machine

// Universe maps the textual names of the engine's well-known constant
// values to the values themselves. It plays the same role as the teacher's
// machine.Universe (the set of identifiers available to every program
// without being a global or a local) but here it exists purely so the
// assembler (package asm) can parse literal tokens like `null`, `true` and
// `false` in a constants: section without hand-rolling a second lookup
// table that could drift from the Value implementations above.
var Universe = map[string]Value{
	"null":  Null,
	"true":  True,
	"false": False,
}
