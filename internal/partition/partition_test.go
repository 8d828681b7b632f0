package partition

import (
	"testing"

	"github.com/m-unkel/zkay-go/internal/label"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInsertHasRemove(t *testing.T) {
	s := New()
	alice := label.NewOwner("alice")

	assert.False(t, s.Has(alice))
	s.Insert(alice)
	assert.True(t, s.Has(alice))
	s.Remove(alice)
	assert.False(t, s.Has(alice))
}

func TestMergeAndSamePartition(t *testing.T) {
	s := New()
	a := label.NewOwner("a")
	b := label.NewOwner("b")
	s.Insert(a)
	s.Insert(b)

	require.False(t, s.SamePartition(a, b))
	s.Merge(a, b)
	assert.True(t, s.SamePartition(a, b))
}

func TestMoveTo(t *testing.T) {
	s := New()
	x := label.NewOwner("x")
	y := label.NewOwner("y")
	z := label.NewOwner("z")
	s.Insert(x)
	s.Insert(y)
	s.Insert(z)
	s.Merge(y, z)

	s.MoveTo(x, y)
	assert.True(t, s.SamePartition(x, y))
	assert.True(t, s.SamePartition(x, z))
}

func TestSeparateAll(t *testing.T) {
	s := New()
	a := label.NewOwner("a")
	b := label.NewOwner("b")
	s.Insert(a)
	s.Insert(b)
	s.Merge(a, b)
	require.True(t, s.SamePartition(a, b))

	s.SeparateAll()
	assert.False(t, s.SamePartition(a, b))
	assert.True(t, s.Has(a))
	assert.True(t, s.Has(b))
}

func TestCopyIsIndependent(t *testing.T) {
	s := New()
	a := label.NewOwner("a")
	b := label.NewOwner("b")
	s.Insert(a)
	s.Insert(b)

	clone := s.Copy()
	clone.Merge(a, b)

	assert.True(t, clone.SamePartition(a, b))
	assert.False(t, s.SamePartition(a, b))
}

func TestSamePartitionMissingLabel(t *testing.T) {
	s := New()
	a := label.NewOwner("a")
	assert.False(t, s.SamePartition(a, a))
}
