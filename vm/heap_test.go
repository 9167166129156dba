package vm

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrunix00/vibelang/object"
)

func TestInternReturnsSameObjectForEqualContent(t *testing.T) {
	machine := New(Options{})
	a := machine.Intern("hello")
	b := machine.Intern("hello")
	assert.Same(t, a, b)

	c := machine.Intern("world")
	assert.NotSame(t, a, c)
}

func TestCollectGarbageFreesUnreachableKeepsReachable(t *testing.T) {
	machine := New(Options{})

	kept := machine.AllocateArray(nil)
	slot := machine.DefineGlobalSlot("kept")
	machine.globals[slot] = object.NewObj(kept)
	machine.globalDefined[slot] = true

	// Allocated but never rooted anywhere: eligible for collection.
	machine.AllocateArray(nil)

	machine.CollectGarbage()

	assert.False(t, kept.IsMarked(), "sweep clears the mark bit on survivors")
	found := false
	for o := machine.objects; o != nil; o = o.Next() {
		if o == object.Obj(kept) {
			found = true
		}
	}
	assert.True(t, found, "the globally-rooted array must survive collection")
}

func TestPruneInternTableRunsBeforeSweep(t *testing.T) {
	machine := New(Options{})
	s := machine.Intern("transient")
	_ = s

	machine.CollectGarbage()

	_, ok := machine.strings["transient"]
	assert.False(t, ok, "an interned string with no other root does not survive collection")

	again := machine.Intern("transient")
	assert.Equal(t, "transient", again.Value)
}

func TestStackGrowthPreservesFrameRegisters(t *testing.T) {
	machine := New(Options{})
	machine.reserve(4)
	f := frame{base: 0}
	machine.setReg(&f, 0, object.NewNumber(1))
	machine.setReg(&f, 1, object.NewNumber(2))

	// Force the backing array to grow well past its original capacity.
	machine.reserve(4096)

	require.Equal(t, 1.0, machine.reg(&f, 0).Number)
	require.Equal(t, 2.0, machine.reg(&f, 1).Number)
}

func TestDefineAndResolveGlobalSlot(t *testing.T) {
	machine := New(Options{})
	slot := machine.DefineGlobalSlot("x")
	again := machine.DefineGlobalSlot("x")
	assert.Equal(t, slot, again, "defining the same global name twice returns the same slot")

	resolved, ok := machine.ResolveGlobalSlot("x")
	require.True(t, ok)
	assert.Equal(t, slot, resolved)

	_, ok = machine.ResolveGlobalSlot("y")
	assert.False(t, ok)
}
