package symtab

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDeclareAssignsDenseZeroBasedSlots(t *testing.T) {
	tab := New()
	a, err := tab.Declare("a")
	require.NoError(t, err)
	b, err := tab.Declare("b")
	require.NoError(t, err)
	c, err := tab.Declare("c")
	require.NoError(t, err)
	assert.Equal(t, 0, a)
	assert.Equal(t, 1, b)
	assert.Equal(t, 2, c)
	assert.Equal(t, 3, tab.Count())
}

func TestDeclareDuplicateIsAnError(t *testing.T) {
	tab := New()
	_, err := tab.Declare("x")
	require.NoError(t, err)
	_, err = tab.Declare("x")
	require.Error(t, err)
	var symErr *SymbolError
	require.ErrorAs(t, err, &symErr)
	assert.Equal(t, "x", symErr.Name)
}

func TestResolveUndeclaredIsAnError(t *testing.T) {
	tab := New()
	_, err := tab.Resolve("missing")
	require.Error(t, err)
	var symErr *SymbolError
	require.ErrorAs(t, err, &symErr)
}

func TestResolveReturnsDeclaredSlot(t *testing.T) {
	tab := New()
	slot, err := tab.Declare("x")
	require.NoError(t, err)
	got, err := tab.Resolve("x")
	require.NoError(t, err)
	assert.Equal(t, slot, got)
}
