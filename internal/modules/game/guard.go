package game

import (
	"sync"

	"github.com/eskrenkovic/tictactoe-go/internal/modules/core"
)

// SessionGuard serializes mutations of session records. Every single-record
// read-modify-write runs under that event's lock. Sequences that touch
// multiple records at once (invitation existence checks, the bulk abort on
// acknowledge) additionally hold the pairing lock.
//
// Lock ordering: pairing before event, always.
type SessionGuard struct {
	events  *core.KeyedMutex
	pairing sync.Mutex
}

func NewSessionGuard() *SessionGuard {
	return &SessionGuard{events: core.NewKeyedMutex()}
}

func (g *SessionGuard) LockEvent(id int64) {
	g.events.Lock(id)
}

func (g *SessionGuard) UnlockEvent(id int64) {
	g.events.Unlock(id)
}

func (g *SessionGuard) LockPairing() {
	g.pairing.Lock()
}

func (g *SessionGuard) UnlockPairing() {
	g.pairing.Unlock()
}
