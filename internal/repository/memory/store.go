// Package memory is an in-process implementation of store.Store.  It backs
// the test suites and the STORAGE_DRIVER=memory development mode.
//
// Transactions work on a deep copy of the whole state which replaces the
// live state only when the callback succeeds, so a failing step never
// leaves partial writes behind.
package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

type state struct {
	seq           uint64
	rooms         map[uint64]model.Room
	subRooms      map[uint64]model.SubRoom
	assignments   map[uint64][]model.Assignment
	proposals     map[uint64]model.Proposal
	archives      map[uint64]model.ArchivedSubRoom
	students      map[uint64]model.Student
	prefs         map[uint64]model.Preferences
	notifications []model.Notification
}

func newState() *state {
	return &state{
		rooms:       make(map[uint64]model.Room),
		subRooms:    make(map[uint64]model.SubRoom),
		assignments: make(map[uint64][]model.Assignment),
		proposals:   make(map[uint64]model.Proposal),
		archives:    make(map[uint64]model.ArchivedSubRoom),
		students:    make(map[uint64]model.Student),
		prefs:       make(map[uint64]model.Preferences),
	}
}

func (s *state) nextID() uint64 {
	s.seq++
	return s.seq
}

func (s *state) clone() *state {
	c := newState()
	c.seq = s.seq
	for k, v := range s.rooms {
		c.rooms[k] = cloneRoom(v)
	}
	for k, v := range s.subRooms {
		c.subRooms[k] = cloneSubRoom(v)
	}
	for k, v := range s.assignments {
		c.assignments[k] = slices.Clone(v)
	}
	for k, v := range s.proposals {
		c.proposals[k] = cloneProposal(v)
	}
	for k, v := range s.archives {
		c.archives[k] = cloneArchive(v)
	}
	for k, v := range s.students {
		c.students[k] = v
	}
	for k, v := range s.prefs {
		c.prefs[k] = v
	}
	c.notifications = make([]model.Notification, len(s.notifications))
	for i, n := range s.notifications {
		c.notifications[i] = cloneNotification(n)
	}
	return c
}

// Store is the in-memory store.  The zero value is not usable; call New.
type Store struct {
	mu    sync.RWMutex
	st    *state
	nowFn func() time.Time
}

var _ store.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{st: newState(), nowFn: func() time.Time { return time.Now().UTC() }}
}

// WithClock overrides the clock used for created/updated timestamps.
func (s *Store) WithClock(now func() time.Time) *Store {
	s.nowFn = now
	return s
}

// SeedStudents loads roster entries; the memory store has no directory of
// its own.
func (s *Store) SeedStudents(students ...model.Student) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, st := range students {
		s.st.students[st.ID] = st
	}
}

func (s *Store) Ping(context.Context) error { return nil }

// InTx runs fn on a copy of the state and publishes the copy on success.
// Transactions are serialized.
func (s *Store) InTx(ctx context.Context, fn func(store.Repos) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &view{s: s, st: s.st.clone(), tx: true}
	if err := fn(tx); err != nil {
		return err
	}
	s.st = tx.st
	return nil
}

func (s *Store) live() *view { return &view{s: s} }

func (s *Store) Rooms() store.RoomRepository                 { return s.live() }
func (s *Store) SubRooms() store.SubRoomRepository           { return s.live() }
func (s *Store) Assignments() store.AssignmentRepository     { return s.live() }
func (s *Store) Proposals() store.ProposalRepository         { return s.live() }
func (s *Store) Archives() store.ArchiveRepository           { return s.live() }
func (s *Store) Students() store.StudentRepository           { return s.live() }
func (s *Store) Preferences() store.PreferenceRepository     { return s.live() }
func (s *Store) Notifications() store.NotificationRepository { return s.live() }

// view implements every repository interface.  Outside a transaction each
// call takes the store lock itself; inside one the lock is already held
// by InTx and st is the transaction's private copy.
type view struct {
	s  *Store
	st *state
	tx bool
}

func (v *view) Rooms() store.RoomRepository                 { return v }
func (v *view) SubRooms() store.SubRoomRepository           { return v }
func (v *view) Assignments() store.AssignmentRepository     { return v }
func (v *view) Proposals() store.ProposalRepository         { return v }
func (v *view) Archives() store.ArchiveRepository           { return v }
func (v *view) Students() store.StudentRepository           { return v }
func (v *view) Preferences() store.PreferenceRepository     { return v }
func (v *view) Notifications() store.NotificationRepository { return v }

func (v *view) read(fn func(st *state) error) error {
	if v.tx {
		return fn(v.st)
	}
	v.s.mu.RLock()
	defer v.s.mu.RUnlock()
	return fn(v.s.st)
}

func (v *view) write(fn func(st *state) error) error {
	if v.tx {
		return fn(v.st)
	}
	v.s.mu.Lock()
	defer v.s.mu.Unlock()
	// single statements are atomic too
	c := v.s.st.clone()
	if err := fn(c); err != nil {
		return err
	}
	v.s.st = c
	return nil
}

func (v *view) now() time.Time { return v.s.nowFn() }
