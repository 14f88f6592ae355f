package app

import (
	"sync"

	"github.com/google/uuid"
)

// Table records an active pairing: the Nakama match hosting it, the
// deterministic table id, and the two seated users.
type Table struct {
	MatchID string
	TableID string
	Seats   [2]string
}

// TableRegistry is the process-wide lookup from connection identity to
// active table, maintained at pairing time and torn down with the match.
// Authoritative session state lives in the match handler; the registry only
// routes identities to rooms.
type TableRegistry struct {
	mu      sync.RWMutex
	byUser  map[string]Table
	byMatch map[string]Table
}

// NewTableRegistry returns an empty registry.
func NewTableRegistry() *TableRegistry {
	return &TableRegistry{
		byUser:  make(map[string]Table),
		byMatch: make(map[string]Table),
	}
}

// Register records a table for both seated users.
func (r *TableRegistry) Register(t Table) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.byMatch[t.MatchID] = t
	for _, uid := range t.Seats {
		r.byUser[uid] = t
	}
}

// LookupUser returns the table the user is seated at, if any.
func (r *TableRegistry) LookupUser(userID string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byUser[userID]
	return t, ok
}

// LookupMatch returns the table hosted by the given match, if any.
func (r *TableRegistry) LookupMatch(matchID string) (Table, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byMatch[matchID]
	return t, ok
}

// Remove tears down the table hosted by the given match. Removing an
// unknown match is a no-op.
func (r *TableRegistry) Remove(matchID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	t, ok := r.byMatch[matchID]
	if !ok {
		return
	}
	delete(r.byMatch, matchID)
	for _, uid := range t.Seats {
		delete(r.byUser, uid)
	}
}

// TableID derives the table identifier for a pair of users. The pair is
// sorted first so the id depends only on the identities, not on queue
// order.
func TableID(a, b string) string {
	if b < a {
		a, b = b, a
	}
	return uuid.NewSHA1(uuid.NameSpaceOID, []byte(a+":"+b)).String()
}
