package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewLocalActor(t *testing.T) {
	actor, err := NewLocalActor("alice", "Alice", nil)
	require.NoError(t, err)
	assert.Equal(t, ActorKindLocal, actor.Kind)
	assert.Equal(t, "alice", actor.Username)
	assert.Equal(t, "Alice", actor.DisplayName)
	assert.True(t, actor.IsLocal())
	assert.False(t, actor.IsRemote())
	assert.Empty(t, actor.URI)
	assert.NotEqual(t, actor.ID.String(), "00000000-0000-0000-0000-000000000000")
}

func TestNewLocalActorDisplayNameDefaults(t *testing.T) {
	actor, err := NewLocalActor("bob", "", nil)
	require.NoError(t, err)
	assert.Equal(t, "bob", actor.DisplayName)
}

func TestNewLocalActorRejectsEmptyUsername(t *testing.T) {
	_, err := NewLocalActor("", "Someone", nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewLocalActorRejectsLongUsername(t *testing.T) {
	_, err := NewLocalActor(strings.Repeat("a", UsernameMaxLength+1), "", nil)
	assert.ErrorIs(t, err, ErrInvalid)

	_, err = NewLocalActor(strings.Repeat("a", UsernameMaxLength), "", nil)
	assert.NoError(t, err)
}

func TestNewLocalActorRejectsLongDisplayName(t *testing.T) {
	_, err := NewLocalActor("carol", strings.Repeat("d", UsernameMaxLength+1), nil)
	assert.ErrorIs(t, err, ErrInvalid)
}

func TestNewLocalActorIDsAreTimeOrdered(t *testing.T) {
	first, err := NewLocalActor("first", "", nil)
	require.NoError(t, err)
	second, err := NewLocalActor("second", "", nil)
	require.NoError(t, err)
	assert.Less(t, first.ID.String(), second.ID.String())
}

func TestNewRemoteActor(t *testing.T) {
	actor := NewRemoteActor("https://remote.example/users/dave", "dave", "")
	assert.Equal(t, ActorKindRemote, actor.Kind)
	assert.True(t, actor.IsRemote())
	assert.Equal(t, "https://remote.example/users/dave", actor.URI)
	assert.Equal(t, "dave", actor.DisplayName)
	assert.Nil(t, actor.Identity)
}
