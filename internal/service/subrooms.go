package service

import (
	"context"
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// SubRoomInput is the body of a sub-room create request.
type SubRoomInput struct {
	RoomID     uint64            `json:"room_id" validate:"required"`
	Name       string            `json:"name" validate:"required,notblank,max=150"`
	Type       model.SubRoomType `json:"type" validate:"omitempty,oneof=permanent temporary"`
	TeacherIDs []uint64          `json:"teacher_ids" validate:"required,min=1,dive,required"`
	ClassIDs   []uint64          `json:"class_ids" validate:"required,min=1,dive,required"`
	StartsAt   *time.Time        `json:"starts_at"`
	EndsAt     *time.Time        `json:"ends_at"`
}

// SubRoomService creates and reads seating plans.
type SubRoomService struct {
	store        store.Store
	validityDays int
	now          func() time.Time
}

// NewSubRoomService returns a service giving temporary sub-rooms created
// without dates a window of validityDays.
func NewSubRoomService(st store.Store, validityDays int) *SubRoomService {
	return &SubRoomService{store: st, validityDays: validityDays, now: utcNow}
}

func utcNow() time.Time { return time.Now().UTC() }

// Create stores a new empty plan.  Teachers creating a plan always own
// it.  Delegates go through proposals instead.
func (s *SubRoomService) Create(ctx context.Context, actor model.Actor, in SubRoomInput) (*model.SubRoom, error) {
	if !actor.IsAdmin() && !actor.IsTeacher() {
		return nil, fmt.Errorf("%w: only administrators and teachers create sub-rooms", ErrForbidden)
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if _, err := s.store.Rooms().GetRoom(ctx, in.RoomID); err != nil {
		return nil, fmt.Errorf("room %d: %w", in.RoomID, err)
	}

	sr := &model.SubRoom{
		RoomID:      in.RoomID,
		Name:        strings.TrimSpace(in.Name),
		Type:        in.Type,
		TeacherIDs:  dedupe(in.TeacherIDs),
		ClassIDs:    dedupe(in.ClassIDs),
		CreatedBy:   actor.ID,
		CreatorRole: actor.Role,
		CreatedAt:   s.now(),
	}
	if sr.Type == "" {
		sr.Type = model.SubRoomPermanent
	}
	if actor.IsTeacher() && !sr.HasTeacher(actor.ID) {
		sr.TeacherIDs = append(sr.TeacherIDs, actor.ID)
	}
	if sr.IsTemporary() {
		sr.StartsAt, sr.EndsAt = in.StartsAt, in.EndsAt
		if sr.StartsAt == nil {
			start := sr.CreatedAt
			sr.StartsAt = &start
		}
		if sr.EndsAt == nil {
			end := sr.StartsAt.AddDate(0, 0, s.validityDays)
			sr.EndsAt = &end
		}
		if !sr.EndsAt.After(*sr.StartsAt) {
			return nil, invalid("ends_at", "ends_at must be after starts_at")
		}
	}
	if err := s.store.SubRooms().CreateSubRoom(ctx, sr); err != nil {
		return nil, fmt.Errorf("create sub-room: %w", err)
	}
	return sr, nil
}

// Get returns a sub-room the actor may view.
func (s *SubRoomService) Get(ctx context.Context, actor model.Actor, id uint64) (*model.SubRoom, error) {
	sr, err := s.store.SubRooms().GetSubRoom(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := requireView(actor, sr); err != nil {
		return nil, err
	}
	return sr, nil
}

// ListByTeacher lists a teacher's plans.  Teachers may only list their own.
func (s *SubRoomService) ListByTeacher(ctx context.Context, actor model.Actor, teacherID uint64) ([]model.SubRoom, error) {
	if teacherID == 0 {
		teacherID = actor.ID
	}
	if !actor.IsAdmin() && teacherID != actor.ID {
		return nil, fmt.Errorf("%w: cannot list another teacher's sub-rooms", ErrForbidden)
	}
	return s.store.SubRooms().ListSubRoomsByTeacher(ctx, teacherID)
}

// LayoutSeat is one seat of the rendered grid.
type LayoutSeat struct {
	Number  int            `json:"number"`
	Student *model.Student `json:"student,omitempty"`
}

type LayoutTable struct {
	Seats []LayoutSeat `json:"seats"`
}

type LayoutColumn struct {
	Tables []LayoutTable `json:"tables"`
}

// Layout is the seat grid of a sub-room with occupants resolved against
// the roster, plus the roster students not seated yet.
type Layout struct {
	SubRoomID  uint64              `json:"sub_room_id"`
	Revision   uint64              `json:"revision"`
	Board      model.BoardPosition `json:"board"`
	TotalSeats int                 `json:"total_seats"`
	Columns    []LayoutColumn      `json:"columns"`
	Unplaced   []model.Student     `json:"unplaced"`
}

// Layout renders the plan column by column in seat-number order.
func (s *SubRoomService) Layout(ctx context.Context, actor model.Actor, id uint64) (*Layout, error) {
	snap, err := loadSnapshot(ctx, s.store, id)
	if err != nil {
		return nil, err
	}
	if err := requireView(actor, snap.SubRoom); err != nil {
		return nil, err
	}
	roster, err := s.store.Students().ListStudents(ctx, snap.SubRoom.ClassIDs)
	if err != nil {
		return nil, err
	}
	byID := make(map[uint64]model.Student, len(roster))
	for _, st := range roster {
		byID[st.ID] = st
	}

	out := &Layout{
		SubRoomID:  id,
		Revision:   snap.SubRoom.Revision,
		Board:      snap.Room.Board,
		TotalSeats: snap.Topology.TotalSeats(),
	}
	for ci, col := range snap.Topology.Columns() {
		lc := LayoutColumn{Tables: make([]LayoutTable, col.Tables)}
		for ti := range col.Tables {
			seats := make([]LayoutSeat, col.SeatsPerTable)
			for si := range col.SeatsPerTable {
				n, err := snap.Topology.SeatNumber(ci, ti, si)
				if err != nil {
					return nil, err
				}
				seats[si] = LayoutSeat{Number: n}
				if sid, ok := snap.Seats.StudentAt(n); ok {
					st, known := byID[sid]
					if !known {
						st = model.Student{ID: sid}
					}
					seats[si].Student = &st
				}
			}
			lc.Tables[ti] = LayoutTable{Seats: seats}
		}
		out.Columns = append(out.Columns, lc)
	}
	for _, st := range seating.SortStudents(roster, seating.Ascending) {
		if _, seated := snap.Seats.SeatOf(st.ID); !seated {
			out.Unplaced = append(out.Unplaced, st)
		}
	}
	return out, nil
}

func dedupe(ids []uint64) []uint64 {
	out := slices.Clone(ids)
	slices.Sort(out)
	return slices.Compact(out)
}
