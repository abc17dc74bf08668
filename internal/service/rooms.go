package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// RoomInput is the body of room create and update requests.
type RoomInput struct {
	Name    string              `json:"name" validate:"required,notblank,max=100"`
	Columns []model.Column      `json:"columns" validate:"required,min=1,max=100,dive"`
	Board   model.BoardPosition `json:"board" validate:"omitempty,board"`
}

// RoomService administers room topologies.
type RoomService struct {
	store    store.Store
	maxSeats int
}

// NewRoomService returns a service enforcing maxSeats per room (a
// non-positive value disables the cap).
func NewRoomService(st store.Store, maxSeats int) *RoomService {
	return &RoomService{store: st, maxSeats: maxSeats}
}

// topology checks the shape against the seat cap.  No single dimension
// may exceed the cap, so the seat product is bounded before it is taken.
func (s *RoomService) topology(cols []model.Column) error {
	if s.maxSeats > 0 {
		for i, c := range cols {
			if c.Tables > s.maxSeats {
				return invalid(fmt.Sprintf("columns[%d].tables", i), fmt.Sprintf("must be at most %d", s.maxSeats))
			}
			if c.SeatsPerTable > s.maxSeats {
				return invalid(fmt.Sprintf("columns[%d].seats_per_table", i), fmt.Sprintf("must be at most %d", s.maxSeats))
			}
		}
	}
	topo, err := seating.NewTopology(cols)
	if err == nil {
		err = topo.CheckCapacity(s.maxSeats)
	}
	if err != nil {
		return NewValidationError(err, FieldError{Field: "columns", Error: err.Error()})
	}
	return nil
}

// Create validates the topology and stores a new room.
func (s *RoomService) Create(ctx context.Context, actor model.Actor, in RoomInput) (*model.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.topology(in.Columns); err != nil {
		return nil, err
	}
	room := &model.Room{
		Name:      strings.TrimSpace(in.Name),
		Columns:   in.Columns,
		Board:     boardOrDefault(in.Board),
		CreatedBy: actor.ID,
	}
	if err := s.store.Rooms().CreateRoom(ctx, room); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return nil, invalid("name", "a room with this name already exists")
		}
		return nil, fmt.Errorf("create room: %w", err)
	}
	return room, nil
}

// Update edits a room.  Renames and board moves are always allowed; a
// shape change is refused while live sub-rooms use the room since it
// would renumber their seats.
func (s *RoomService) Update(ctx context.Context, actor model.Actor, id uint64, in RoomInput) (*model.Room, error) {
	if err := requireAdmin(actor); err != nil {
		return nil, err
	}
	if err := validateStruct(in); err != nil {
		return nil, err
	}
	if err := s.topology(in.Columns); err != nil {
		return nil, err
	}
	var out *model.Room
	err := s.store.InTx(ctx, func(r store.Repos) error {
		room, err := r.Rooms().GetRoom(ctx, id)
		if err != nil {
			return err
		}
		if !model.SameShape(room.Columns, in.Columns) {
			n, err := r.SubRooms().CountSubRoomsByRoom(ctx, id)
			if err != nil {
				return err
			}
			if n > 0 {
				return conflict(ReasonRoomInUse, "room %d is used by %d sub-room(s); archive them before changing its shape", id, n)
			}
		}
		room.Name = strings.TrimSpace(in.Name)
		room.Columns = in.Columns
		if in.Board != "" {
			room.Board = in.Board
		}
		if err := r.Rooms().UpdateRoom(ctx, room); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return invalid("name", "a room with this name already exists")
			}
			return err
		}
		out = room
		return nil
	})
	return out, err
}

func (s *RoomService) Get(ctx context.Context, id uint64) (*model.Room, error) {
	return s.store.Rooms().GetRoom(ctx, id)
}

func (s *RoomService) List(ctx context.Context) ([]model.Room, error) {
	return s.store.Rooms().ListRooms(ctx)
}

func boardOrDefault(b model.BoardPosition) model.BoardPosition {
	if b == "" {
		return model.BoardTop
	}
	return b
}
