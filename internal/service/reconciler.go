package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// Snapshot is a sub-room loaded for editing: the plan, the room it is
// built on, the derived topology and the in-memory assignment store.
type Snapshot struct {
	SubRoom  *model.SubRoom
	Room     *model.Room
	Topology *seating.Topology
	Seats    *seating.Store
}

// Reconciler moves assignment sets between a seating.Store and the
// persistent store.  Saves are full replaces guarded by the sub-room
// revision; Load is their exact inverse.
type Reconciler struct {
	store   store.Store
	metrics *Metrics
}

func NewReconciler(st store.Store, m *Metrics) *Reconciler {
	return &Reconciler{store: st, metrics: m}
}

// Load reads the sub-room and rebuilds its assignment store.
func (r *Reconciler) Load(ctx context.Context, subRoomID uint64) (*Snapshot, error) {
	return loadSnapshot(ctx, r.store, subRoomID)
}

// Save persists seats as the complete assignment set of the sub-room and
// returns the new revision.  store.ErrStaleRevision is reported as a
// ConflictError.
func (r *Reconciler) Save(ctx context.Context, subRoomID, expectedRevision uint64, seats *seating.Store) (uint64, error) {
	rev, err := saveSeats(ctx, r.store, subRoomID, expectedRevision, seats)
	switch {
	case err == nil:
		r.metrics.save("ok")
	case errors.Is(err, store.ErrStaleRevision):
		r.metrics.save("stale")
	default:
		r.metrics.save("error")
	}
	return rev, revisionConflict(err, subRoomID)
}

func loadSnapshot(ctx context.Context, repos store.Repos, subRoomID uint64) (*Snapshot, error) {
	sr, err := repos.SubRooms().GetSubRoom(ctx, subRoomID)
	if err != nil {
		return nil, fmt.Errorf("load sub-room %d: %w", subRoomID, err)
	}
	room, err := repos.Rooms().GetRoom(ctx, sr.RoomID)
	if err != nil {
		return nil, fmt.Errorf("load room %d: %w", sr.RoomID, err)
	}
	topo, err := seating.NewTopology(room.Columns)
	if err != nil {
		return nil, fmt.Errorf("room %d: %w", room.ID, err)
	}
	as, err := repos.Assignments().ListAssignments(ctx, subRoomID)
	if err != nil {
		return nil, fmt.Errorf("load assignments of %d: %w", subRoomID, err)
	}
	seats, err := seating.NewStoreFrom(topo.TotalSeats(), as)
	if err != nil {
		return nil, fmt.Errorf("sub-room %d: %w", subRoomID, err)
	}
	return &Snapshot{SubRoom: sr, Room: room, Topology: topo, Seats: seats}, nil
}

func saveSeats(ctx context.Context, repos store.Repos, subRoomID, expectedRevision uint64, seats *seating.Store) (uint64, error) {
	rev, err := repos.Assignments().ReplaceAssignments(ctx, subRoomID, expectedRevision, seats.Assignments(subRoomID))
	if err != nil {
		return 0, fmt.Errorf("save assignments of %d: %w", subRoomID, err)
	}
	return rev, nil
}
