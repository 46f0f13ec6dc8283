package domain

import (
	"fmt"
	"time"
)

type EventStatus string

const (
	StatusPending   EventStatus = "PENDING"
	StatusAccepted  EventStatus = "ACCEPTED"
	StatusDeclined  EventStatus = "DECLINED"
	StatusPlaying   EventStatus = "PLAYING"
	StatusCompleted EventStatus = "COMPLETED"
	StatusAborted   EventStatus = "ABORTED"
)

// NoMove marks an empty move mailbox.
const NoMove = -1

// Cells of the board run 0..8, top-left to bottom-right.
const (
	MinCell = 0
	MaxCell = 8
)

var ErrConsecutiveMove = fmt.Errorf("cannot send two moves in a row")

// Event is one invitation-to-game lifecycle between two users. Sender is
// the inviter. Turn and Move form a one-slot mailbox: Turn holds the
// username whose move is waiting for the opponent to pick it up.
//
// Invariant: Move != NoMove implies Turn is one of Sender, Opponent.
type Event struct {
	ID        int64       `db:"id"`
	Sender    string      `db:"sender"`
	Opponent  string      `db:"opponent"`
	Status    EventStatus `db:"status"`
	Turn      string      `db:"turn"`
	Move      int         `db:"move"`
	CreatedAt time.Time   `db:"created_at"`
}

func NewInvitation(sender, opponent string) Event {
	return Event{
		Sender:   sender,
		Opponent: opponent,
		Status:   StatusPending,
		Move:     NoMove,
	}
}

func (e Event) Participant(username string) bool {
	return username == e.Sender || username == e.Opponent
}

// Live reports whether the event still counts as an engagement between the
// two users for pairing purposes.
func (e Event) Live() bool {
	switch e.Status {
	case StatusPending, StatusAccepted, StatusPlaying:
		return true
	default:
		return false
	}
}

// Terminal events are never mutated again.
func (e Event) Terminal() bool {
	return e.Status == StatusCompleted || e.Status == StatusAborted
}

// Accept moves a PENDING invitation to ACCEPTED. Only the invited opponent
// may accept.
func (e *Event) Accept(caller string) error {
	if e.Status != StatusPending {
		return errInvalidStatus("accept", e.Status)
	}

	if caller != e.Opponent {
		return fmt.Errorf("user %q is not the invited opponent", caller)
	}

	e.Status = StatusAccepted
	return nil
}

// Decline moves a PENDING invitation to DECLINED. Only the invited opponent
// may decline.
func (e *Event) Decline(caller string) error {
	if e.Status != StatusPending {
		return errInvalidStatus("decline", e.Status)
	}

	if caller != e.Opponent {
		return fmt.Errorf("user %q is not the invited opponent", caller)
	}

	e.Status = StatusDeclined
	return nil
}

// Acknowledge is the sender consuming the opponent's answer: an ACCEPTED
// invitation starts PLAYING, a DECLINED one is ABORTED.
func (e *Event) Acknowledge(caller string) error {
	if caller != e.Sender {
		return fmt.Errorf("user %q is not the invitation sender", caller)
	}

	switch e.Status {
	case StatusAccepted:
		e.Status = StatusPlaying
	case StatusDeclined:
		e.Status = StatusAborted
	default:
		return errInvalidStatus("acknowledge", e.Status)
	}

	return nil
}

// Abort ends a PLAYING game prematurely. Either participant may abort.
func (e *Event) Abort(caller string) error {
	if e.Status != StatusPlaying {
		return errInvalidStatus("abort", e.Status)
	}

	if !e.Participant(caller) {
		return fmt.Errorf("user %q is not part of the game", caller)
	}

	e.Status = StatusAborted
	return nil
}

// Complete ends a PLAYING game normally. Either participant may complete.
func (e *Event) Complete(caller string) error {
	if e.Status != StatusPlaying {
		return errInvalidStatus("complete", e.Status)
	}

	if !e.Participant(caller) {
		return fmt.Errorf("user %q is not part of the game", caller)
	}

	e.Status = StatusCompleted
	return nil
}

// PostMove puts caller's move into the mailbox. The caller's previous move
// must have been consumed by the opponent first.
func (e *Event) PostMove(cell int, caller string) error {
	if e.Turn == caller {
		return ErrConsecutiveMove
	}

	e.Move = cell
	e.Turn = caller
	return nil
}

// TakeMove consumes the pending move and empties the mailbox. It returns
// NoMove when the mailbox is empty or when caller would be reading back
// its own move.
func (e *Event) TakeMove(caller string) int {
	if e.Move == NoMove || e.Turn == caller {
		return NoMove
	}

	move := e.Move
	e.Move = NoMove
	e.Turn = ""
	return move
}

func errInvalidStatus(action string, status EventStatus) error {
	return fmt.Errorf("cannot %s an event with status %s", action, status)
}
