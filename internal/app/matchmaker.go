package app

import "sync"

// Matchmaker keeps the FIFO queue of users waiting for an opponent. It is
// process-wide shared state, so unlike the per-session services it guards
// itself with a mutex.
type Matchmaker struct {
	mu    sync.Mutex
	queue []string
}

// NewMatchmaker returns an empty matchmaking queue.
func NewMatchmaker() *Matchmaker {
	return &Matchmaker{}
}

// Enqueue appends a user to the queue. When two or more users wait, the
// two oldest are dequeued and returned as a pair. Enqueueing a user that is
// already queued is a no-op.
func (m *Matchmaker) Enqueue(userID string) ([2]string, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, queued := range m.queue {
		if queued == userID {
			return [2]string{}, false
		}
	}
	m.queue = append(m.queue, userID)

	if len(m.queue) < TableSeats {
		return [2]string{}, false
	}

	pair := [2]string{m.queue[0], m.queue[1]}
	m.queue = m.queue[TableSeats:]
	return pair, true
}

// Cancel removes the first occurrence of the user from the queue. It
// reports whether the user was queued; removing an absent user is a no-op.
// Disconnects funnel through the same removal.
func (m *Matchmaker) Cancel(userID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()

	for i, queued := range m.queue {
		if queued == userID {
			m.queue = append(m.queue[:i], m.queue[i+1:]...)
			return true
		}
	}
	return false
}

// Waiting returns the number of queued users.
func (m *Matchmaker) Waiting() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.queue)
}
