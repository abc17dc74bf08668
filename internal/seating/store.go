package seating

import (
	"fmt"
	"sort"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Store is the in-memory seat → student mapping of one sub-room.  It keeps
// a reverse index so that every mutation preserves the invariant that a
// seat holds at most one student and a student sits on at most one seat.
// Unassigned seats are simply absent.
//
// A Store is owned by a single editing session and is not safe for
// concurrent use.
type Store struct {
	total     int
	bySeat    map[int]uint64
	byStudent map[uint64]int
}

// NewStore returns an empty store for a room with totalSeats seats.
func NewStore(totalSeats int) *Store {
	return &Store{
		total:     totalSeats,
		bySeat:    make(map[int]uint64),
		byStudent: make(map[uint64]int),
	}
}

// NewStoreFrom rebuilds a store from persisted assignments.  It refuses a
// snapshot that double-books a seat or a student or that references a seat
// outside the room.
func NewStoreFrom(totalSeats int, assignments []model.Assignment) (*Store, error) {
	s := NewStore(totalSeats)
	for _, a := range assignments {
		if err := s.checkSeat(a.SeatNumber); err != nil {
			return nil, err
		}
		if a.StudentID == 0 {
			return nil, ErrInvalidStudent
		}
		if _, ok := s.bySeat[a.SeatNumber]; ok {
			return nil, fmt.Errorf("%w: seat %d", ErrDuplicateSeat, a.SeatNumber)
		}
		if _, ok := s.byStudent[a.StudentID]; ok {
			return nil, fmt.Errorf("%w: student %d", ErrDuplicateStudent, a.StudentID)
		}
		s.set(a.SeatNumber, a.StudentID)
	}
	return s, nil
}

// NewStoreFromSeats is NewStoreFrom for proposal seat lists.
func NewStoreFromSeats(totalSeats int, seats []model.ProposedSeat) (*Store, error) {
	as := make([]model.Assignment, len(seats))
	for i, p := range seats {
		as[i] = model.Assignment{SeatNumber: p.SeatNumber, StudentID: p.StudentID}
	}
	return NewStoreFrom(totalSeats, as)
}

func (s *Store) checkSeat(seat int) error {
	if seat < 1 || seat > s.total {
		return fmt.Errorf("%w: %d not in [1, %d]", ErrSeatOutOfRange, seat, s.total)
	}
	return nil
}

func (s *Store) set(seat int, student uint64) {
	s.bySeat[seat] = student
	s.byStudent[student] = seat
}

// Place seats student on seat.
//
// If the seat is free the student moves there and vacates any previous
// seat.  If the seat is taken by someone else the two exchange places: the
// occupant moves to the student's previous seat, or back to the unplaced
// pool when the student had none.  Placing a student on their own seat
// is a no-op.
func (s *Store) Place(seat int, student uint64) error {
	if err := s.checkSeat(seat); err != nil {
		return err
	}
	if student == 0 {
		return ErrInvalidStudent
	}
	prev, seated := s.byStudent[student]
	if seated && prev == seat {
		return nil
	}
	occupant, taken := s.bySeat[seat]
	if seated {
		delete(s.bySeat, prev)
	}
	if taken {
		delete(s.byStudent, occupant)
		if seated {
			s.set(prev, occupant)
		}
	}
	s.set(seat, student)
	return nil
}

// Swap exchanges the occupants of two seats.  Either seat may be empty.
func (s *Store) Swap(a, b int) error {
	if err := s.checkSeat(a); err != nil {
		return err
	}
	if err := s.checkSeat(b); err != nil {
		return err
	}
	if a == b {
		return nil
	}
	sa, okA := s.bySeat[a]
	sb, okB := s.bySeat[b]
	delete(s.bySeat, a)
	delete(s.bySeat, b)
	if okA {
		s.set(b, sa)
	}
	if okB {
		s.set(a, sb)
	}
	return nil
}

// Remove frees seat.  Removing an empty or unknown seat is a no-op.
func (s *Store) Remove(seat int) {
	if student, ok := s.bySeat[seat]; ok {
		delete(s.bySeat, seat)
		delete(s.byStudent, student)
	}
}

// RemoveStudent frees whatever seat student occupies and returns it.
func (s *Store) RemoveStudent(student uint64) (int, bool) {
	seat, ok := s.byStudent[student]
	if ok {
		delete(s.byStudent, student)
		delete(s.bySeat, seat)
	}
	return seat, ok
}

// Clear empties the store.
func (s *Store) Clear() {
	s.bySeat = make(map[int]uint64)
	s.byStudent = make(map[uint64]int)
}

// TotalSeats returns the number of seats of the room.
func (s *Store) TotalSeats() int { return s.total }

// Len returns the number of occupied seats.
func (s *Store) Len() int { return len(s.bySeat) }

// StudentAt returns the student seated on seat.
func (s *Store) StudentAt(seat int) (uint64, bool) {
	st, ok := s.bySeat[seat]
	return st, ok
}

// SeatOf returns the seat occupied by student.
func (s *Store) SeatOf(student uint64) (int, bool) {
	seat, ok := s.byStudent[student]
	return seat, ok
}

// FreeSeats returns the unassigned seat numbers in ascending order.
func (s *Store) FreeSeats() []int {
	free := make([]int, 0, s.total-len(s.bySeat))
	for n := 1; n <= s.total; n++ {
		if _, ok := s.bySeat[n]; !ok {
			free = append(free, n)
		}
	}
	return free
}

// Snapshot returns a copy of the seat → student mapping.
func (s *Store) Snapshot() map[int]uint64 {
	out := make(map[int]uint64, len(s.bySeat))
	for k, v := range s.bySeat {
		out[k] = v
	}
	return out
}

// Assignments returns the content of the store as assignment records for
// subRoomID, ordered by seat number.
func (s *Store) Assignments(subRoomID uint64) []model.Assignment {
	out := make([]model.Assignment, 0, len(s.bySeat))
	for seat, st := range s.bySeat {
		out = append(out, model.Assignment{SubRoomID: subRoomID, SeatNumber: seat, StudentID: st})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SeatNumber < out[j].SeatNumber })
	return out
}

// Seats is Assignments without the sub-room id, as embedded in proposals
// and archive snapshots.
func (s *Store) Seats() []model.ProposedSeat {
	as := s.Assignments(0)
	out := make([]model.ProposedSeat, len(as))
	for i, a := range as {
		out[i] = model.ProposedSeat{SeatNumber: a.SeatNumber, StudentID: a.StudentID}
	}
	return out
}

// replace swaps the whole content for the given pairs.  Callers guarantee
// the pairs are one-to-one and within range.
func (s *Store) replace(seats []int, students []uint64) {
	s.Clear()
	for i := range seats {
		s.set(seats[i], students[i])
	}
}
