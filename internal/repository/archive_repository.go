package repository

import (
	"context"
	"database/sql"
	"strings"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// ArchiveRepo stores archived sub-room snapshots.  Teacher, class and
// seat lists are frozen as JSON since the snapshot never changes.
type ArchiveRepo struct {
	db DBTX
}

// NewArchiveRepo constructs an ArchiveRepo with the given DB handle.
func NewArchiveRepo(db DBTX) *ArchiveRepo { return &ArchiveRepo{db: db} }

const archiveColumns = `id, original_id, room_id, name, type, teacher_ids, class_ids, created_by, creator_role,
	original_created_at, starts_at, ends_at, seats, reason, archived_by, archived_at,
	is_restored, restored_by, restored_at, restored_sub_room_id`

func scanArchive(sc scanner) (*model.ArchivedSubRoom, error) {
	var (
		a                                   model.ArchivedSubRoom
		teachers, classes, seats            []byte
		starts, ends, restoredAt            sql.NullTime
		archivedBy, restoredBy, restoredSub sql.NullInt64
	)
	if err := sc.Scan(&a.ID, &a.OriginalID, &a.RoomID, &a.Name, &a.Type, &teachers, &classes, &a.CreatedBy,
		&a.CreatorRole, &a.OriginalCreatedAt, &starts, &ends, &seats, &a.Reason, &archivedBy, &a.ArchivedAt,
		&a.IsRestored, &restoredBy, &restoredAt, &restoredSub); err != nil {
		return nil, err
	}
	for raw, dst := range map[*[]byte]any{&teachers: &a.TeacherIDs, &classes: &a.ClassIDs, &seats: &a.Seats} {
		if err := fromJSON(*raw, dst); err != nil {
			return nil, err
		}
	}
	a.StartsAt, a.EndsAt, a.RestoredAt = timePtr(starts), timePtr(ends), timePtr(restoredAt)
	a.ArchivedBy, a.RestoredBy, a.RestoredSubRoomID = idPtr(archivedBy), idPtr(restoredBy), idPtr(restoredSub)
	return &a, nil
}

// CreateArchive inserts the snapshot and sets its ID.
func (r *ArchiveRepo) CreateArchive(ctx context.Context, a *model.ArchivedSubRoom) error {
	teachers, err := toJSON(nonNilIDs(a.TeacherIDs))
	if err != nil {
		return err
	}
	classes, err := toJSON(nonNilIDs(a.ClassIDs))
	if err != nil {
		return err
	}
	seats, err := seatsJSON(a.Seats)
	if err != nil {
		return err
	}
	if a.ArchivedAt.IsZero() {
		a.ArchivedAt = now()
	}
	const q = `INSERT INTO archived_sub_rooms (original_id, room_id, name, type, teacher_ids, class_ids, created_by,
	                                           creator_role, original_created_at, starts_at, ends_at, seats, reason,
	                                           archived_by, archived_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, a.OriginalID, a.RoomID, a.Name, a.Type, teachers, classes, a.CreatedBy,
		a.CreatorRole, a.OriginalCreatedAt, nullTime(a.StartsAt), nullTime(a.EndsAt), seats, a.Reason,
		nullID(a.ArchivedBy), a.ArchivedAt)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	a.ID = uint64(id)
	return nil
}

func nonNilIDs(ids []uint64) []uint64 {
	if ids == nil {
		return []uint64{}
	}
	return ids
}

func (r *ArchiveRepo) get(ctx context.Context, id uint64, suffix string) (*model.ArchivedSubRoom, error) {
	a, err := scanArchive(r.db.QueryRowContext(ctx, `SELECT `+archiveColumns+` FROM archived_sub_rooms WHERE id = ?`+suffix, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return a, nil
}

// GetArchive returns store.ErrNotFound when no archive has that id.
func (r *ArchiveRepo) GetArchive(ctx context.Context, id uint64) (*model.ArchivedSubRoom, error) {
	return r.get(ctx, id, "")
}

// LockArchive reads the row with FOR UPDATE.
func (r *ArchiveRepo) LockArchive(ctx context.Context, id uint64) (*model.ArchivedSubRoom, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// MarkRestored flips is_restored only if it is still false.
func (r *ArchiveRepo) MarkRestored(ctx context.Context, id, by uint64, at time.Time, subRoomID uint64) error {
	const q = `UPDATE archived_sub_rooms
	           SET is_restored = TRUE, restored_by = ?, restored_at = ?, restored_sub_room_id = ?
	           WHERE id = ? AND is_restored = FALSE`
	res, err := r.db.ExecContext(ctx, q, by, at, subRoomID, id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n > 0 {
		return nil
	}
	var exists int
	err = r.db.QueryRowContext(ctx, `SELECT 1 FROM archived_sub_rooms WHERE id = ?`, id).Scan(&exists)
	if err != nil {
		return mapErr(err)
	}
	return store.ErrConflict
}

// ListArchives returns archives matching f, newest first.
func (r *ArchiveRepo) ListArchives(ctx context.Context, f store.ArchiveFilter) ([]model.ArchivedSubRoom, error) {
	where := []string{}
	args := []any{}
	if f.Restored != nil {
		where = append(where, "is_restored = ?")
		args = append(args, *f.Restored)
	}
	if f.TeacherID != 0 {
		where = append(where, "JSON_CONTAINS(teacher_ids, CAST(? AS JSON))")
		args = append(args, f.TeacherID)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	q := `SELECT ` + archiveColumns + ` FROM archived_sub_rooms WHERE ` + cond + ` ORDER BY id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.ArchivedSubRoom
	for rows.Next() {
		a, err := scanArchive(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *a)
	}
	return out, rows.Err()
}
