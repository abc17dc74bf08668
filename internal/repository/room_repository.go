package repository

import (
	"context"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// RoomRepo stores room topologies.  Columns are kept as a JSON array in
// rooms.columns_json.
type RoomRepo struct {
	db DBTX
}

// NewRoomRepo constructs a RoomRepo with the given DB handle.
func NewRoomRepo(db DBTX) *RoomRepo { return &RoomRepo{db: db} }

const roomColumns = `id, name, columns_json, board_position, created_by, created_at, updated_at`

type scanner interface {
	Scan(dest ...any) error
}

func scanRoom(s scanner) (*model.Room, error) {
	var (
		r   model.Room
		raw []byte
	)
	if err := s.Scan(&r.ID, &r.Name, &raw, &r.Board, &r.CreatedBy, &r.CreatedAt, &r.UpdatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(raw, &r.Columns); err != nil {
		return nil, err
	}
	return &r, nil
}

// CreateRoom inserts r and populates its ID and timestamps.
func (r *RoomRepo) CreateRoom(ctx context.Context, room *model.Room) error {
	cols, err := toJSON(room.Columns)
	if err != nil {
		return err
	}
	ts := now()
	const q = `INSERT INTO rooms (name, columns_json, board_position, created_by, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, room.Name, cols, room.Board, room.CreatedBy, ts, ts)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	room.ID = uint64(id)
	room.CreatedAt, room.UpdatedAt = ts, ts
	return nil
}

// GetRoom returns store.ErrNotFound when no room has that id.
func (r *RoomRepo) GetRoom(ctx context.Context, id uint64) (*model.Room, error) {
	room, err := scanRoom(r.db.QueryRowContext(ctx, `SELECT `+roomColumns+` FROM rooms WHERE id = ?`, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return room, nil
}

// ListRooms returns every room ordered by name.
func (r *RoomRepo) ListRooms(ctx context.Context) ([]model.Room, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+roomColumns+` FROM rooms ORDER BY name, id`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Room
	for rows.Next() {
		room, err := scanRoom(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *room)
	}
	return out, rows.Err()
}

// UpdateRoom rewrites name, columns and board position.
func (r *RoomRepo) UpdateRoom(ctx context.Context, room *model.Room) error {
	cols, err := toJSON(room.Columns)
	if err != nil {
		return err
	}
	ts := now()
	const q = `UPDATE rooms SET name = ?, columns_json = ?, board_position = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, room.Name, cols, room.Board, ts, room.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	room.UpdatedAt = ts
	return nil
}
