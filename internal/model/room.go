package model

import "time"

// BoardPosition tells which wall of the room holds the board.  It only
// affects how clients orient the seat grid; numbering never depends on it.
type BoardPosition string

const (
	BoardTop    BoardPosition = "top"
	BoardBottom BoardPosition = "bottom"
	BoardLeft   BoardPosition = "left"
	BoardRight  BoardPosition = "right"
)

// Column is one vertical strip of tables in a room.  Every table in the
// column has the same number of seats.  The upper bounds hold even when
// the per-room seat cap is disabled.
type Column struct {
	Tables        int `json:"tables" validate:"min=1,max=1000"`
	SeatsPerTable int `json:"seats_per_table" validate:"min=1,max=1000"`
}

// Room describes the physical topology of a classroom.  The ordered list
// of columns together with the seats per table defines the seat numbering
// used by every sub-room built on top of it.
//
// Fields:
//
//	ID        – primary key identifier.
//	Name      – display name, unique per school.
//	Columns   – ordered column shapes (stored as JSON).
//	Board     – board position.
//	CreatedBy – administrator who created the room.
//	CreatedAt – creation timestamp.
//	UpdatedAt – last update timestamp.
type Room struct {
	ID        uint64        `json:"id"`         // rooms.id
	Name      string        `json:"name"`       // rooms.name
	Columns   []Column      `json:"columns"`    // rooms.columns (JSON)
	Board     BoardPosition `json:"board"`      // rooms.board_position
	CreatedBy uint64        `json:"created_by"` // rooms.created_by
	CreatedAt time.Time     `json:"created_at"` // rooms.created_at
	UpdatedAt time.Time     `json:"updated_at"` // rooms.updated_at
}

// SameShape reports whether two column lists describe the same seat
// layout, in which case existing seat numbers keep their meaning.
func SameShape(a, b []Column) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
