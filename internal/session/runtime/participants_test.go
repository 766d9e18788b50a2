package runtime

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestParticipantSet_AddAndRejoin(t *testing.T) {
	set := newParticipantSet()

	require.True(t, set.add("u1", "sock-1"))
	require.False(t, set.add("u1", "sock-1"), "rejoin is not a new membership")
	require.Equal(t, 1, set.len())
	require.Equal(t, "sock-1", set.socketOf("u1"))

	// A rejoin from another connection transfers socket ownership.
	require.False(t, set.add("u1", "sock-2"))
	require.Equal(t, "sock-2", set.socketOf("u1"))
}

func TestParticipantSet_RemoveRequiresOwningSocket(t *testing.T) {
	set := newParticipantSet()
	set.add("u1", "sock-2")

	require.False(t, set.remove("u1", "sock-1"), "a stale socket cannot remove the user")
	require.True(t, set.contains("u1"))

	require.True(t, set.remove("u1", "sock-2"))
	require.False(t, set.contains("u1"))
	require.Equal(t, "", set.socketOf("u1"))
	require.False(t, set.remove("u1", "sock-2"), "double removal is a no-op")
}

func TestParticipantSet_UsersInJoinOrder(t *testing.T) {
	set := newParticipantSet()
	set.add("b", "sock-b")
	set.add("a", "sock-a")
	set.add("c", "sock-c")

	require.Equal(t, []string{"b", "a", "c"}, set.users())

	set.remove("a", "sock-a")
	require.Equal(t, []string{"b", "c"}, set.users())
	require.Equal(t, 2, set.len())
}
