package domain

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func Test_Accept_Moves_Pending_Invitation_To_Accepted(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")

	// Act
	err := event.Accept("bob")

	// Assert
	require.NoError(t, err)
	require.Equal(t, StatusAccepted, event.Status)
}

func Test_Accept_Rejects_Caller_Other_Than_Invited_Opponent(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")

	// Act
	err := event.Accept("alice")

	// Assert
	require.Error(t, err)
	require.Equal(t, StatusPending, event.Status)
}

func Test_Acknowledge_On_Accepted_Starts_Playing(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")
	require.NoError(t, event.Accept("bob"))

	// Act
	err := event.Acknowledge("alice")

	// Assert
	require.NoError(t, err)
	require.Equal(t, StatusPlaying, event.Status)
}

func Test_Acknowledge_On_Declined_Aborts(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")
	require.NoError(t, event.Decline("bob"))

	// Act
	err := event.Acknowledge("alice")

	// Assert
	require.NoError(t, err)
	require.Equal(t, StatusAborted, event.Status)
}

func Test_Acknowledge_On_Pending_Is_Illegal_And_Leaves_Status_Unchanged(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")

	// Act
	err := event.Acknowledge("alice")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), string(StatusPending))
	require.Equal(t, StatusPending, event.Status)
}

func Test_Abort_Requires_Playing_Status(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")
	require.NoError(t, event.Accept("bob"))

	// Act
	err := event.Abort("alice")

	// Assert
	require.Error(t, err)
	require.Contains(t, err.Error(), string(StatusAccepted))
	require.Equal(t, StatusAccepted, event.Status)
}

func Test_Complete_Allows_Either_Participant(t *testing.T) {
	// Arrange
	event := NewInvitation("alice", "bob")
	require.NoError(t, event.Accept("bob"))
	require.NoError(t, event.Acknowledge("alice"))

	// Act
	err := event.Complete("bob")

	// Assert
	require.NoError(t, err)
	require.Equal(t, StatusCompleted, event.Status)
}

func Test_PostMove_Rejects_Consecutive_Moves_By_Same_User(t *testing.T) {
	// Arrange
	event := playingEvent()
	require.NoError(t, event.PostMove(4, "alice"))

	// Act
	err := event.PostMove(5, "alice")

	// Assert
	require.ErrorIs(t, err, ErrConsecutiveMove)
	require.Equal(t, 4, event.Move)
	require.Equal(t, "alice", event.Turn)
}

func Test_PostMove_Allows_Alternating_Callers(t *testing.T) {
	// Arrange
	event := playingEvent()

	// Act
	require.NoError(t, event.PostMove(0, "alice"))
	require.Equal(t, 0, event.TakeMove("bob"))

	err := event.PostMove(8, "bob")

	// Assert
	require.NoError(t, err)
	require.Equal(t, 8, event.Move)
	require.Equal(t, "bob", event.Turn)
}

func Test_TakeMove_Delivers_Pending_Move_Exactly_Once(t *testing.T) {
	// Arrange
	event := playingEvent()
	require.NoError(t, event.PostMove(7, "alice"))

	// Act
	first := event.TakeMove("bob")
	second := event.TakeMove("bob")

	// Assert
	require.Equal(t, 7, first)
	require.Equal(t, NoMove, second)
	require.Empty(t, event.Turn)
}

func Test_TakeMove_Does_Not_Return_Callers_Own_Move(t *testing.T) {
	// Arrange
	event := playingEvent()
	require.NoError(t, event.PostMove(3, "alice"))

	// Act
	move := event.TakeMove("alice")

	// Assert
	require.Equal(t, NoMove, move)
	require.Equal(t, 3, event.Move)
	require.Equal(t, "alice", event.Turn)
}

func playingEvent() Event {
	event := NewInvitation("alice", "bob")
	_ = event.Accept("bob")
	_ = event.Acknowledge("alice")
	return event
}
