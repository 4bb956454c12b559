package machine

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternerDedupesEqualStrings(t *testing.T) {
	in := NewInterner(4)
	a := in.Intern("hello")
	b := in.Intern("hello")
	assert.Equal(t, a, b)
	assert.Equal(t, String("hello"), a)
}

func TestInternerDistinguishesStrings(t *testing.T) {
	in := NewInterner(4)
	a := in.Intern("hello")
	b := in.Intern("world")
	assert.NotEqual(t, a, b)
}
