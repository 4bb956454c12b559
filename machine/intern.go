package machine

import "github.com/dolthub/swiss"

// Interner deduplicates String constants by their text so that repeated
// string literals loaded from the same source (typically the assembler, see
// package asm) share one underlying Go string instead of allocating a fresh
// copy per occurrence. This is the same role the teacher's machine.Map plays
// for its user-level map value — there is no user-level map in this value
// domain, so the dependency is repurposed here for constant-pool
// deduplication instead of being dropped. It is purely an allocation
// optimization: per the Value notes in §9, sharing immutable representations
// never changes equality or display semantics, since String compares and
// prints by content regardless of backing allocation.
type Interner struct {
	seen *swiss.Map[string, String]
}

// NewInterner returns an Interner with initial capacity for at least size
// distinct strings.
func NewInterner(size int) *Interner {
	return &Interner{seen: swiss.NewMap[string, String](uint32(size))}
}

// Intern returns the canonical String value for s, reusing a previously
// interned value with the same content when one exists.
func (in *Interner) Intern(s string) String {
	if v, ok := in.seen.Get(s); ok {
		return v
	}
	v := String(s)
	in.seen.Put(s, v)
	return v
}
