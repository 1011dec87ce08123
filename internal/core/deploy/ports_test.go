package deploy

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPortAllocator_Sequential(t *testing.T) {
	alloc := NewPortAllocator()

	assert.Equal(t, 50000, alloc.Next())
	assert.Equal(t, 50001, alloc.Next())
	assert.Equal(t, 50002, alloc.Next())
}

func TestPortAllocator_IndependentPerInvocation(t *testing.T) {
	a := NewPortAllocator()
	a.Next()
	a.Next()

	// A fresh allocator starts over: allocation state is scoped to one
	// invocation. This documents the accepted collision between concurrent
	// runs rather than protecting against it.
	b := NewPortAllocator()
	assert.Equal(t, 50000, b.Next())
}
