package seating

import (
	"fmt"
	"math"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// Topology is a validated room shape with precomputed column offsets.
// Seats are numbered column by column, then table by table inside a
// column, then seat by seat inside a table, starting at 1 with no gaps.
type Topology struct {
	columns []model.Column
	offsets []int // offsets[i] = number of seats before column i
	total   int
}

// NewTopology validates columns and builds the numbering.  A missing or
// empty column list, any column without tables or seats, or a shape whose
// seat count does not fit in an int is rejected so callers never render a
// room with a silent zero seat count.
func NewTopology(columns []model.Column) (*Topology, error) {
	if len(columns) == 0 {
		return nil, fmt.Errorf("%w: no columns", ErrInvalidTopology)
	}
	t := &Topology{
		columns: make([]model.Column, len(columns)),
		offsets: make([]int, len(columns)),
	}
	copy(t.columns, columns)
	for i, c := range columns {
		if c.Tables < 1 {
			return nil, fmt.Errorf("%w: column %d has no tables", ErrInvalidTopology, i+1)
		}
		if c.SeatsPerTable < 1 {
			return nil, fmt.Errorf("%w: column %d has no seats per table", ErrInvalidTopology, i+1)
		}
		if c.Tables > math.MaxInt/c.SeatsPerTable {
			return nil, fmt.Errorf("%w: column %d has too many seats", ErrInvalidTopology, i+1)
		}
		n := c.Tables * c.SeatsPerTable
		if t.total > math.MaxInt-n {
			return nil, fmt.Errorf("%w: room has too many seats", ErrInvalidTopology)
		}
		t.offsets[i] = t.total
		t.total += n
	}
	return t, nil
}

// TotalSeats returns the number of seats in the room.
func (t *Topology) TotalSeats() int { return t.total }

// Columns returns a copy of the column shapes.
func (t *Topology) Columns() []model.Column {
	out := make([]model.Column, len(t.columns))
	copy(out, t.columns)
	return out
}

// CheckCapacity enforces the administrative seat cap.  A non-positive cap
// disables the check.
func (t *Topology) CheckCapacity(maxSeats int) error {
	if maxSeats > 0 && t.total > maxSeats {
		return fmt.Errorf("%w: %d seats exceeds the limit of %d", ErrInvalidTopology, t.total, maxSeats)
	}
	return nil
}

// Contains reports whether seat is a valid seat number.
func (t *Topology) Contains(seat int) bool { return seat >= 1 && seat <= t.total }

// SeatNumber returns the seat number at the given position.
func (t *Topology) SeatNumber(column, table, seat int) (int, error) {
	if column < 0 || column >= len(t.columns) {
		return 0, fmt.Errorf("%w: column %d", ErrSeatOutOfRange, column)
	}
	c := t.columns[column]
	if table < 0 || table >= c.Tables {
		return 0, fmt.Errorf("%w: table %d in column %d", ErrSeatOutOfRange, table, column)
	}
	if seat < 0 || seat >= c.SeatsPerTable {
		return 0, fmt.Errorf("%w: seat %d at table %d", ErrSeatOutOfRange, seat, table)
	}
	return t.offsets[column] + table*c.SeatsPerTable + seat + 1, nil
}
