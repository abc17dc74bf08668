package service

import (
	"context"
	"fmt"
	"maps"
	"math/rand/v2"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// EditResult is returned by every server-side edit.
type EditResult struct {
	SubRoomID   uint64             `json:"sub_room_id"`
	Revision    uint64             `json:"revision"`
	Assignments []model.Assignment `json:"assignments"`
	Placed      int                `json:"placed,omitempty"`
	FreedSeat   int                `json:"freed_seat,omitempty"`
}

// StrategyInput selects a bulk placement.
type StrategyInput struct {
	Revision uint64         `json:"revision" validate:"required"`
	Name     string         `json:"strategy" validate:"required,oneof=random alphabetical complete"`
	Order    seating.Order  `json:"order" validate:"omitempty,oneof=asc desc"`
	Method   seating.Method `json:"method" validate:"omitempty,oneof=random alphabetical"`
}

// AssignmentService runs editor operations against persisted sub-rooms:
// load, apply one seating operation, save with the caller's revision.
type AssignmentService struct {
	store store.Store
	rec   *Reconciler
	rng   *rand.Rand
}

func NewAssignmentService(st store.Store, rec *Reconciler) *AssignmentService {
	return &AssignmentService{store: st, rec: rec}
}

// WithRand fixes the random source used by random placements.
func (s *AssignmentService) WithRand(rng *rand.Rand) *AssignmentService {
	s.rng = rng
	return s
}

// Get returns the current plan of a sub-room the actor may view.
func (s *AssignmentService) Get(ctx context.Context, actor model.Actor, subRoomID uint64) (*Snapshot, error) {
	snap, err := s.rec.Load(ctx, subRoomID)
	if err != nil {
		return nil, err
	}
	if err := requireView(actor, snap.SubRoom); err != nil {
		return nil, err
	}
	return snap, nil
}

// edit loads the sub-room, checks ownership and revision, runs fn on an
// editor bound to the actor's preferences and saves the result.  An edit
// that leaves every seat as it was is not saved and keeps the revision.
func (s *AssignmentService) edit(ctx context.Context, actor model.Actor, subRoomID, revision uint64,
	fn func(snap *Snapshot, ed *seating.Editor) error) (*EditResult, error) {
	snap, err := s.rec.Load(ctx, subRoomID)
	if err != nil {
		return nil, err
	}
	if err := requireManage(actor, snap.SubRoom); err != nil {
		return nil, err
	}
	if snap.SubRoom.Revision != revision {
		return nil, revisionConflict(store.ErrStaleRevision, subRoomID)
	}
	prefs, err := s.store.Preferences().GetPreferences(ctx, actor.ID)
	if err != nil {
		return nil, err
	}
	before := snap.Seats.Snapshot()
	if err := fn(snap, seating.NewEditor(snap.Seats, prefs)); err != nil {
		return nil, err
	}
	if maps.Equal(before, snap.Seats.Snapshot()) {
		return &EditResult{SubRoomID: subRoomID, Revision: revision, Assignments: snap.Seats.Assignments(subRoomID)}, nil
	}
	rev, err := s.rec.Save(ctx, subRoomID, revision, snap.Seats)
	if err != nil {
		return nil, err
	}
	return &EditResult{SubRoomID: subRoomID, Revision: rev, Assignments: snap.Seats.Assignments(subRoomID)}, nil
}

func (s *AssignmentService) roster(ctx context.Context, sr *model.SubRoom) ([]model.Student, error) {
	students, err := s.store.Students().ListStudents(ctx, sr.ClassIDs)
	if err != nil {
		return nil, fmt.Errorf("roster of sub-room %d: %w", sr.ID, err)
	}
	return students, nil
}

func (s *AssignmentService) requireEnrolled(ctx context.Context, sr *model.SubRoom, ids ...uint64) error {
	students, err := s.roster(ctx, sr)
	if err != nil {
		return err
	}
	known := make(map[uint64]bool, len(students))
	for _, st := range students {
		known[st.ID] = true
	}
	for _, id := range ids {
		if !known[id] {
			return invalid("student_id", fmt.Sprintf("student %d is not in the sub-room's classes", id))
		}
	}
	return nil
}

// Replace saves a complete assignment set.
func (s *AssignmentService) Replace(ctx context.Context, actor model.Actor, subRoomID, revision uint64, seats []model.ProposedSeat) (*EditResult, error) {
	return s.edit(ctx, actor, subRoomID, revision, func(snap *Snapshot, _ *seating.Editor) error {
		next, err := seating.NewStoreFromSeats(snap.Topology.TotalSeats(), seats)
		if err != nil {
			return NewValidationError(err, FieldError{Field: "assignments", Error: err.Error()})
		}
		ids := make([]uint64, 0, len(seats))
		for _, st := range seats {
			ids = append(ids, st.StudentID)
		}
		if err := s.requireEnrolled(ctx, snap.SubRoom, ids...); err != nil {
			return err
		}
		snap.Seats = next
		return nil
	})
}

// PlaceSeat seats student on seat, swapping occupants as needed.
func (s *AssignmentService) PlaceSeat(ctx context.Context, actor model.Actor, subRoomID, revision uint64, seat int, student uint64) (*EditResult, error) {
	return s.edit(ctx, actor, subRoomID, revision, func(snap *Snapshot, ed *seating.Editor) error {
		if err := s.requireEnrolled(ctx, snap.SubRoom, student); err != nil {
			return err
		}
		return ed.Place(seat, student)
	})
}

// UnplaceStudent moves student back to the unplaced pool.
func (s *AssignmentService) UnplaceStudent(ctx context.Context, actor model.Actor, subRoomID, revision, student uint64, confirmed bool) (*EditResult, error) {
	var freed int
	res, err := s.edit(ctx, actor, subRoomID, revision, func(_ *Snapshot, ed *seating.Editor) error {
		var err error
		freed, err = ed.Unplace(student, confirmed)
		return err
	})
	if res != nil {
		res.FreedSeat = freed
	}
	return res, err
}

// ClearSeat frees seat.
func (s *AssignmentService) ClearSeat(ctx context.Context, actor model.Actor, subRoomID, revision uint64, seat int, confirmed bool) (*EditResult, error) {
	return s.edit(ctx, actor, subRoomID, revision, func(_ *Snapshot, ed *seating.Editor) error {
		return ed.ClearSeat(seat, confirmed)
	})
}

// SwapSeats exchanges the occupants of seats a and b.  Either seat may be
// empty, which moves the other occupant.
func (s *AssignmentService) SwapSeats(ctx context.Context, actor model.Actor, subRoomID, revision uint64, a, b int) (*EditResult, error) {
	return s.edit(ctx, actor, subRoomID, revision, func(snap *Snapshot, _ *seating.Editor) error {
		return snap.Seats.Swap(a, b)
	})
}

// ApplyStrategy runs a bulk placement over the sub-room's roster.
func (s *AssignmentService) ApplyStrategy(ctx context.Context, actor model.Actor, subRoomID uint64, in StrategyInput) (*EditResult, error) {
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	strat, err := seating.ParseStrategy(in.Name, in.Order, in.Method, s.rng)
	if err != nil {
		return nil, invalid("strategy", err.Error())
	}
	var placed int
	res, err := s.edit(ctx, actor, subRoomID, in.Revision, func(snap *Snapshot, ed *seating.Editor) error {
		students, err := s.roster(ctx, snap.SubRoom)
		if err != nil {
			return err
		}
		placed = ed.Apply(strat, students)
		return nil
	})
	if res != nil {
		res.Placed = placed
	}
	return res, err
}
