package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// SubRoomRepo stores seating plans.  Teachers and classes live in the
// sub_room_teachers and sub_room_classes join tables and are folded back
// with GROUP_CONCAT on read.
type SubRoomRepo struct {
	db DBTX
}

// NewSubRoomRepo constructs a SubRoomRepo with the given DB handle.
func NewSubRoomRepo(db DBTX) *SubRoomRepo { return &SubRoomRepo{db: db} }

const subRoomSelect = `SELECT s.id, s.room_id, s.name, s.type, s.created_by, s.creator_role,
	       s.created_at, s.starts_at, s.ends_at, s.revision,
	       (SELECT GROUP_CONCAT(t.teacher_id ORDER BY t.teacher_id) FROM sub_room_teachers t WHERE t.sub_room_id = s.id),
	       (SELECT GROUP_CONCAT(c.class_id ORDER BY c.class_id) FROM sub_room_classes c WHERE c.sub_room_id = s.id)
	FROM sub_rooms s`

func scanSubRoom(sc scanner) (*model.SubRoom, error) {
	var (
		s                 model.SubRoom
		starts, ends      sql.NullTime
		teachers, classes sql.NullString
	)
	if err := sc.Scan(&s.ID, &s.RoomID, &s.Name, &s.Type, &s.CreatedBy, &s.CreatorRole,
		&s.CreatedAt, &starts, &ends, &s.Revision, &teachers, &classes); err != nil {
		return nil, err
	}
	s.StartsAt, s.EndsAt = timePtr(starts), timePtr(ends)
	var err error
	if s.TeacherIDs, err = splitIDs(teachers); err != nil {
		return nil, err
	}
	if s.ClassIDs, err = splitIDs(classes); err != nil {
		return nil, err
	}
	return &s, nil
}

// CreateSubRoom inserts the sub-room with its teachers and classes in one
// transaction and sets ID, Revision and CreatedAt.
func (r *SubRoomRepo) CreateSubRoom(ctx context.Context, s *model.SubRoom) error {
	if s.CreatedAt.IsZero() {
		s.CreatedAt = now()
	}
	return withTx(ctx, r.db, func(db DBTX) error {
		const q = `INSERT INTO sub_rooms (room_id, name, type, created_by, creator_role, created_at, starts_at, ends_at, revision)
		           VALUES (?, ?, ?, ?, ?, ?, ?, ?, 1)`
		res, err := db.ExecContext(ctx, q, s.RoomID, s.Name, s.Type, s.CreatedBy, s.CreatorRole,
			s.CreatedAt, nullTime(s.StartsAt), nullTime(s.EndsAt))
		if err != nil {
			return mapErr(err)
		}
		id, err := res.LastInsertId()
		if err != nil {
			return err
		}
		if err := insertMembers(ctx, db, "sub_room_teachers", "teacher_id", uint64(id), s.TeacherIDs); err != nil {
			return err
		}
		if err := insertMembers(ctx, db, "sub_room_classes", "class_id", uint64(id), s.ClassIDs); err != nil {
			return err
		}
		s.ID = uint64(id)
		s.Revision = 1
		return nil
	})
}

func insertMembers(ctx context.Context, db DBTX, table, column string, subRoomID uint64, ids []uint64) error {
	if len(ids) == 0 {
		return nil
	}
	q := bulkInsert(`INSERT INTO `+table+` (sub_room_id, `+column+`) VALUES `, "(?, ?)", len(ids))
	args := make([]any, 0, len(ids)*2)
	for _, id := range ids {
		args = append(args, subRoomID, id)
	}
	_, err := db.ExecContext(ctx, q, args...)
	return mapErr(err)
}

// GetSubRoom returns store.ErrNotFound when the sub-room does not exist.
func (r *SubRoomRepo) GetSubRoom(ctx context.Context, id uint64) (*model.SubRoom, error) {
	s, err := scanSubRoom(r.db.QueryRowContext(ctx, subRoomSelect+` WHERE s.id = ?`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return s, nil
}

func (r *SubRoomRepo) list(ctx context.Context, where string, args ...any) ([]model.SubRoom, error) {
	rows, err := r.db.QueryContext(ctx, subRoomSelect+` WHERE `+where+` ORDER BY s.id`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.SubRoom
	for rows.Next() {
		s, err := scanSubRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *s)
	}
	return out, rows.Err()
}

// ListSubRoomsByTeacher returns the sub-rooms the teacher co-owns.
func (r *SubRoomRepo) ListSubRoomsByTeacher(ctx context.Context, teacherID uint64) ([]model.SubRoom, error) {
	return r.list(ctx, `EXISTS (SELECT 1 FROM sub_room_teachers x WHERE x.sub_room_id = s.id AND x.teacher_id = ?)`, teacherID)
}

// ListExpiredSubRooms returns temporary sub-rooms whose window closed
// before now.
func (r *SubRoomRepo) ListExpiredSubRooms(ctx context.Context, at time.Time) ([]model.SubRoom, error) {
	return r.list(ctx, `s.type = ? AND s.ends_at IS NOT NULL AND s.ends_at < ?`, model.SubRoomTemporary, at)
}

// CountSubRoomsByRoom reports how many live sub-rooms use the room.
func (r *SubRoomRepo) CountSubRoomsByRoom(ctx context.Context, roomID uint64) (int, error) {
	var n int
	err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM sub_rooms WHERE room_id = ?`, roomID).Scan(&n)
	return n, err
}

// DeleteSubRoom removes the sub-room; its members and assignments go with
// it through ON DELETE CASCADE.
func (r *SubRoomRepo) DeleteSubRoom(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sub_rooms WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	return nil
}
