package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// ArchiveService moves sub-rooms in and out of the archive.  Archiving
// snapshots the sub-room with its assignments and deletes the live row;
// restoring creates a new sub-room from the snapshot.
type ArchiveService struct {
	store        store.Store
	validityDays int
	log          *slog.Logger
	metrics      *Metrics
	now          func() time.Time
}

// NewArchiveService returns a service giving restored temporary sub-rooms
// a fresh window of validityDays starting at restoration.
func NewArchiveService(st store.Store, validityDays int, log *slog.Logger, m *Metrics) *ArchiveService {
	if log == nil {
		log = slog.Default()
	}
	return &ArchiveService{store: st, validityDays: validityDays, log: log, metrics: m, now: utcNow}
}

func snapshotOf(sr *model.SubRoom, as []model.Assignment, reason model.ArchiveReason, by *uint64, at time.Time) *model.ArchivedSubRoom {
	seats := make([]model.ProposedSeat, 0, len(as))
	for _, a := range as {
		seats = append(seats, model.ProposedSeat{SeatNumber: a.SeatNumber, StudentID: a.StudentID})
	}
	return &model.ArchivedSubRoom{
		OriginalID:        sr.ID,
		RoomID:            sr.RoomID,
		Name:              sr.Name,
		Type:              sr.Type,
		TeacherIDs:        sr.TeacherIDs,
		ClassIDs:          sr.ClassIDs,
		CreatedBy:         sr.CreatedBy,
		CreatorRole:       sr.CreatorRole,
		OriginalCreatedAt: sr.CreatedAt,
		StartsAt:          sr.StartsAt,
		EndsAt:            sr.EndsAt,
		Seats:             seats,
		Reason:            reason,
		ArchivedBy:        by,
		ArchivedAt:        at,
	}
}

// archiveIn snapshots and deletes the sub-room inside r.
func archiveIn(ctx context.Context, r store.Repos, sr *model.SubRoom, reason model.ArchiveReason, by *uint64, at time.Time) (*model.ArchivedSubRoom, error) {
	as, err := r.Assignments().ListAssignments(ctx, sr.ID)
	if err != nil {
		return nil, err
	}
	a := snapshotOf(sr, as, reason, by, at)
	if err := r.Archives().CreateArchive(ctx, a); err != nil {
		return nil, fmt.Errorf("archive sub-room %d: %w", sr.ID, err)
	}
	if err := r.SubRooms().DeleteSubRoom(ctx, sr.ID); err != nil {
		return nil, fmt.Errorf("delete sub-room %d: %w", sr.ID, err)
	}
	return a, nil
}

// ArchiveManual archives a sub-room on behalf of actor.  reason defaults
// to manual; expired is reserved for the sweep.
func (s *ArchiveService) ArchiveManual(ctx context.Context, actor model.Actor, subRoomID uint64, reason model.ArchiveReason) (*model.ArchivedSubRoom, error) {
	if reason == "" {
		reason = model.ArchiveManual
	}
	if !reason.Valid() || reason == model.ArchiveExpired {
		return nil, invalid("reason", "reason must be manual or cleanup")
	}
	var out *model.ArchivedSubRoom
	err := s.store.InTx(ctx, func(r store.Repos) error {
		sr, err := r.SubRooms().GetSubRoom(ctx, subRoomID)
		if errors.Is(err, store.ErrNotFound) {
			return conflict(ReasonNotFound, "sub-room %d does not exist", subRoomID)
		}
		if err != nil {
			return err
		}
		if err := requireManage(actor, sr); err != nil {
			return err
		}
		by := actor.ID
		out, err = archiveIn(ctx, r, sr, reason, &by, s.now())
		return err
	})
	if err != nil {
		return nil, err
	}
	s.metrics.archive(string(reason), 1)
	s.log.Info("sub-room archived", "sub_room_id", subRoomID, "archive_id", out.ID, "reason", reason)
	return out, nil
}

// ArchiveExpired archives every temporary sub-room whose window closed
// before now and returns how many it archived.  Each sub-room is handled
// in its own transaction; one deleted concurrently is skipped.  Failures
// on individual sub-rooms do not stop the sweep and are returned joined.
func (s *ArchiveService) ArchiveExpired(ctx context.Context) (int, error) {
	now := s.now()
	expired, err := s.store.SubRooms().ListExpiredSubRooms(ctx, now)
	if err != nil {
		return 0, fmt.Errorf("list expired sub-rooms: %w", err)
	}
	var (
		count int
		errs  []error
	)
	for _, candidate := range expired {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		err := s.store.InTx(ctx, func(r store.Repos) error {
			sr, err := r.SubRooms().GetSubRoom(ctx, candidate.ID)
			if err != nil {
				return err
			}
			if !sr.Expired(now) {
				return store.ErrNotFound
			}
			_, err = archiveIn(ctx, r, sr, model.ArchiveExpired, nil, now)
			return err
		})
		switch {
		case err == nil:
			count++
		case errors.Is(err, store.ErrNotFound):
		default:
			s.log.Error("archive expired sub-room", "sub_room_id", candidate.ID, "err", err)
			errs = append(errs, err)
		}
	}
	s.metrics.archive(string(model.ArchiveExpired), count)
	return count, errors.Join(errs...)
}

// Restore recreates the archived sub-room under a new id with its seats,
// dropping seat numbers the room no longer has.  A temporary sub-room
// gets a new window starting now.
func (s *ArchiveService) Restore(ctx context.Context, actor model.Actor, archiveID uint64) (*model.SubRoom, error) {
	var out *model.SubRoom
	err := s.store.InTx(ctx, func(r store.Repos) error {
		a, err := r.Archives().LockArchive(ctx, archiveID)
		if err != nil {
			return err
		}
		if !canManage(actor, a.TeacherIDs) {
			return fmt.Errorf("%w: archive %d belongs to other teachers", ErrForbidden, archiveID)
		}
		if a.IsRestored {
			return conflict(ReasonAlreadyRestored, "archive %d was already restored", archiveID)
		}
		room, err := r.Rooms().GetRoom(ctx, a.RoomID)
		if errors.Is(err, store.ErrNotFound) {
			return conflict(ReasonNotFound, "room %d no longer exists", a.RoomID)
		}
		if err != nil {
			return err
		}
		topo, err := seating.NewTopology(room.Columns)
		if err != nil {
			return err
		}

		now := s.now()
		sr := &model.SubRoom{
			RoomID:      a.RoomID,
			Name:        a.Name,
			Type:        a.Type,
			TeacherIDs:  a.TeacherIDs,
			ClassIDs:    a.ClassIDs,
			CreatedBy:   a.CreatedBy,
			CreatorRole: a.CreatorRole,
			CreatedAt:   now,
		}
		if sr.IsTemporary() {
			start, end := now, now.AddDate(0, 0, s.validityDays)
			sr.StartsAt, sr.EndsAt = &start, &end
		}
		if err := r.SubRooms().CreateSubRoom(ctx, sr); err != nil {
			return fmt.Errorf("restore archive %d: %w", archiveID, err)
		}

		seats := seating.NewStore(topo.TotalSeats())
		for _, st := range a.Seats {
			if !topo.Contains(st.SeatNumber) {
				continue
			}
			if err := seats.Place(st.SeatNumber, st.StudentID); err != nil {
				return err
			}
		}
		if seats.Len() > 0 {
			if sr.Revision, err = saveSeats(ctx, r, sr.ID, sr.Revision, seats); err != nil {
				return err
			}
		}
		if err := r.Archives().MarkRestored(ctx, a.ID, actor.ID, now, sr.ID); err != nil {
			if errors.Is(err, store.ErrConflict) {
				return conflict(ReasonAlreadyRestored, "archive %d was already restored", archiveID)
			}
			return err
		}
		out = sr
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.restore()
	s.log.Info("archive restored", "archive_id", archiveID, "sub_room_id", out.ID)
	return out, nil
}

// List returns archives visible to actor; teachers see their own.
func (s *ArchiveService) List(ctx context.Context, actor model.Actor, restored *bool, limit int) ([]model.ArchivedSubRoom, error) {
	f := store.ArchiveFilter{Restored: restored, Limit: limit}
	switch {
	case actor.IsAdmin():
	case actor.IsTeacher():
		f.TeacherID = actor.ID
	default:
		return nil, fmt.Errorf("%w: archives are visible to teachers and administrators", ErrForbidden)
	}
	return s.store.Archives().ListArchives(ctx, f)
}
