package usecase

import (
	"cmp"
	"slices"
	"sync"

	"Kanban/internal/entity"
)

// Registry indexes live connections by board and by user.
//
// boards maps board -> user -> connection and users maps user -> set of
// boards. Every mutation updates both under the same lock, so a board is in
// a user's set exactly when that (board, user) pair has a connection.
// Readers get snapshots; no send ever happens while the lock is held.
type Registry struct {
	mu     sync.RWMutex
	boards map[int64]map[int64]entity.Connection
	users  map[int64]map[int64]struct{}
}

func NewRegistry() *Registry {
	return &Registry{
		boards: make(map[int64]map[int64]entity.Connection),
		users:  make(map[int64]map[int64]struct{}),
	}
}

// Register maps (boardID, userID) to conn. If another connection already held
// the pair it is returned so the caller can close it; the registry itself
// never closes anything.
func (r *Registry) Register(
	conn entity.Connection,
	boardID int64,
	userID int64,
) (entity.Connection, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()

	if r.boards[boardID] == nil {
		r.boards[boardID] = make(map[int64]entity.Connection)
	}

	if r.users[userID] == nil {
		r.users[userID] = make(map[int64]struct{})
	}

	previous, replaced := r.boards[boardID][userID]

	r.boards[boardID][userID] = conn
	r.users[userID][boardID] = struct{}{}

	if replaced && previous.ID() == conn.ID() {
		return nil, false
	}
	return previous, replaced
}

// Unregister drops the (boardID, userID) entry whatever connection holds it.
// It reports whether anything was removed.
func (r *Registry) Unregister(boardID int64, userID int64) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	return r.remove(boardID, userID)
}

// Release drops the (boardID, userID) entry only while it still belongs to
// conn. A connection that was superseded cannot evict its replacement.
func (r *Registry) Release(
	boardID int64,
	userID int64,
	conn entity.Connection,
) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.boards[boardID][userID]
	if !ok || current.ID() != conn.ID() {
		return false
	}

	return r.remove(boardID, userID)
}

// Leave releases conn's entry and reports whether (boardID, userID) is now
// vacant. It returns false only when another connection holds the pair, in
// which case the user is still on the board. Both answers come from one
// critical section.
func (r *Registry) Leave(
	boardID int64,
	userID int64,
	conn entity.Connection,
) bool {
	r.mu.Lock()
	defer r.mu.Unlock()

	current, ok := r.boards[boardID][userID]
	if !ok {
		return true
	}
	if current.ID() != conn.ID() {
		return false
	}

	r.remove(boardID, userID)
	return true
}

func (r *Registry) remove(boardID int64, userID int64) bool {
	removed := false

	if r.boards[boardID] != nil {
		if _, ok := r.boards[boardID][userID]; ok {
			delete(r.boards[boardID], userID)
			removed = true
		}

		if len(r.boards[boardID]) == 0 {
			delete(r.boards, boardID)
		}
	}

	if r.users[userID] != nil {
		delete(r.users[userID], boardID)

		if len(r.users[userID]) == 0 {
			delete(r.users, userID)
		}
	}

	return removed
}

func (r *Registry) Lookup(boardID int64, userID int64) (entity.Connection, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	conn, ok := r.boards[boardID][userID]
	return conn, ok
}

// UsersOnBoard returns the ids of users connected to boardID in ascending
// order. The result is empty, never nil.
func (r *Registry) UsersOnBoard(boardID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	users := make([]int64, 0, len(r.boards[boardID]))
	for userID := range r.boards[boardID] {
		users = append(users, userID)
	}
	slices.Sort(users)
	return users
}

func (r *Registry) BoardsForUser(userID int64) []int64 {
	r.mu.RLock()
	defer r.mu.RUnlock()

	boards := make([]int64, 0, len(r.users[userID]))
	for boardID := range r.users[userID] {
		boards = append(boards, boardID)
	}
	slices.Sort(boards)
	return boards
}

// BoardRecipients snapshots every connection on boardID, ordered by user id.
func (r *Registry) BoardRecipients(boardID int64) []entity.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipients := make([]entity.Recipient, 0, len(r.boards[boardID]))
	for userID, conn := range r.boards[boardID] {
		recipients = append(recipients, entity.Recipient{
			BoardID: boardID,
			UserID:  userID,
			Conn:    conn,
		})
	}
	slices.SortFunc(recipients, func(a, b entity.Recipient) int {
		return cmp.Compare(a.UserID, b.UserID)
	})
	return recipients
}

// UserRecipients snapshots every connection userID holds, ordered by board id.
func (r *Registry) UserRecipients(userID int64) []entity.Recipient {
	r.mu.RLock()
	defer r.mu.RUnlock()

	recipients := make([]entity.Recipient, 0, len(r.users[userID]))
	for boardID := range r.users[userID] {
		conn, ok := r.boards[boardID][userID]
		if !ok {
			continue
		}
		recipients = append(recipients, entity.Recipient{
			BoardID: boardID,
			UserID:  userID,
			Conn:    conn,
		})
	}
	slices.SortFunc(recipients, func(a, b entity.Recipient) int {
		return cmp.Compare(a.BoardID, b.BoardID)
	})
	return recipients
}

func (r *Registry) Stats() entity.RegistryStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	stats := entity.RegistryStats{
		Boards: len(r.boards),
		Users:  len(r.users),
	}
	for _, conns := range r.boards {
		stats.Connections += len(conns)
	}
	return stats
}

// CloseAll closes every registered connection. Entries are left in place;
// each session removes its own when its loop observes the close.
func (r *Registry) CloseAll(code int, reason string) {
	r.mu.RLock()
	conns := make([]entity.Connection, 0)
	for _, byUser := range r.boards {
		for _, conn := range byUser {
			conns = append(conns, conn)
		}
	}
	r.mu.RUnlock()

	for _, conn := range conns {
		_ = conn.Close(code, reason)
	}
}
