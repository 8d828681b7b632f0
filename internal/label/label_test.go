package label

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEqualAll(t *testing.T) {
	assert.True(t, AllLabel.Equal(AllLabel))
	assert.True(t, AllLabel.IsPublic())
}

func TestEqualMe(t *testing.T) {
	assert.True(t, MeLabel.Equal(MeLabel))
	assert.False(t, MeLabel.Equal(AllLabel))
}

func TestEqualOwnerBySpelling(t *testing.T) {
	alice1 := NewOwner("alice")
	alice2 := NewOwner("alice")
	bob := NewOwner("bob")

	assert.True(t, alice1.Equal(alice2))
	assert.False(t, alice1.Equal(bob))
	assert.False(t, alice1.Equal(MeLabel))
}

func TestOwnerPanicsOnWrongKind(t *testing.T) {
	assert.Panics(t, func() { AllLabel.Owner() })
}

func TestString(t *testing.T) {
	assert.Equal(t, "all", AllLabel.String())
	assert.Equal(t, "me", MeLabel.String())
	assert.Equal(t, "alice", NewOwner("alice").String())
}
