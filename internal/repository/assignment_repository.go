package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// AssignmentRepo persists seat bindings.  Saves are full replaces guarded
// by the sub-room revision.
type AssignmentRepo struct {
	db DBTX
}

// NewAssignmentRepo constructs an AssignmentRepo with the given DB handle.
func NewAssignmentRepo(db DBTX) *AssignmentRepo { return &AssignmentRepo{db: db} }

// ListAssignments returns the sub-room's bindings ordered by seat.
func (r *AssignmentRepo) ListAssignments(ctx context.Context, subRoomID uint64) ([]model.Assignment, error) {
	const q = `SELECT sub_room_id, seat_number, student_id FROM seat_assignments
	           WHERE sub_room_id = ? ORDER BY seat_number`
	rows, err := r.db.QueryContext(ctx, q, subRoomID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Assignment
	for rows.Next() {
		var a model.Assignment
		if err := rows.Scan(&a.SubRoomID, &a.SeatNumber, &a.StudentID); err != nil {
			return nil, err
		}
		out = append(out, a)
	}
	return out, rows.Err()
}

// ReplaceAssignments bumps the revision, deletes every binding and
// inserts the new set, all in one transaction.  A revision mismatch
// returns store.ErrStaleRevision and writes nothing.
func (r *AssignmentRepo) ReplaceAssignments(ctx context.Context, subRoomID, expectedRevision uint64, as []model.Assignment) (uint64, error) {
	err := withTx(ctx, r.db, func(db DBTX) error {
		const bump = `UPDATE sub_rooms SET revision = revision + 1 WHERE id = ? AND revision = ?`
		res, err := db.ExecContext(ctx, bump, subRoomID, expectedRevision)
		if err != nil {
			return err
		}
		if n, _ := res.RowsAffected(); n == 0 {
			var current uint64
			err := db.QueryRowContext(ctx, `SELECT revision FROM sub_rooms WHERE id = ?`, subRoomID).Scan(&current)
			if errors.Is(err, sql.ErrNoRows) {
				return store.ErrNotFound
			}
			if err != nil {
				return err
			}
			return store.ErrStaleRevision
		}

		if _, err := db.ExecContext(ctx, `DELETE FROM seat_assignments WHERE sub_room_id = ?`, subRoomID); err != nil {
			return err
		}
		if len(as) == 0 {
			return nil
		}
		q := bulkInsert(`INSERT INTO seat_assignments (sub_room_id, seat_number, student_id) VALUES `, "(?, ?, ?)", len(as))
		args := make([]any, 0, len(as)*3)
		for _, a := range as {
			args = append(args, subRoomID, a.SeatNumber, a.StudentID)
		}
		_, err = db.ExecContext(ctx, q, args...)
		return mapErr(err)
	})
	if err != nil {
		return 0, err
	}
	return expectedRevision + 1, nil
}
