package service

import "sync"

const ticketLockStripes = 64

// ticketLocks serializes operations on one ticket from the start of their transaction
// until their events are published, so notifications leave in commit order.
// Tickets sharing a stripe also wait for each other.
type ticketLocks struct {
	stripes [ticketLockStripes]sync.Mutex
}

func (l *ticketLocks) lock(id int64) (unlock func()) {
	m := &l.stripes[uint64(id)%ticketLockStripes]
	m.Lock()
	return m.Unlock
}
