package seating

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func TestNewTopology_RejectsMalformedShapes(t *testing.T) {
	cases := map[string][]model.Column{
		"nil columns":   nil,
		"empty columns": {},
		"no tables":     {{Tables: 0, SeatsPerTable: 2}},
		"no seats":      {{Tables: 3, SeatsPerTable: 2}, {Tables: 1, SeatsPerTable: 0}},
		"column wraps":  {{Tables: 1 << 32, SeatsPerTable: 1 << 32}},
		"total wraps":   {{Tables: 1 << 62, SeatsPerTable: 2}, {Tables: 1<<62 + 1, SeatsPerTable: 2}},
		"int max sum":   {{Tables: math.MaxInt, SeatsPerTable: 1}, {Tables: 1, SeatsPerTable: 1}},
	}
	for name, cols := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := NewTopology(cols)
			require.ErrorIs(t, err, ErrInvalidTopology)
		})
	}
}

func TestTopology_SeatNumberIsBijective(t *testing.T) {
	cols := []model.Column{
		{Tables: 3, SeatsPerTable: 2},
		{Tables: 1, SeatsPerTable: 4},
		{Tables: 2, SeatsPerTable: 1},
	}
	topo, err := NewTopology(cols)
	require.NoError(t, err)
	require.Equal(t, 12, topo.TotalSeats())

	seen := make(map[int]bool)
	for c, col := range cols {
		for tb := 0; tb < col.Tables; tb++ {
			for s := 0; s < col.SeatsPerTable; s++ {
				n, err := topo.SeatNumber(c, tb, s)
				require.NoError(t, err)
				require.False(t, seen[n], "seat %d numbered twice", n)
				seen[n] = true
			}
		}
	}
	for n := 1; n <= topo.TotalSeats(); n++ {
		assert.True(t, seen[n], "seat %d missing", n)
	}
}

func TestTopology_ColumnMajorOrder(t *testing.T) {
	topo, err := NewTopology([]model.Column{{Tables: 2, SeatsPerTable: 2}, {Tables: 2, SeatsPerTable: 3}})
	require.NoError(t, err)

	n, _ := topo.SeatNumber(0, 1, 0)
	assert.Equal(t, 3, n)
	n, _ = topo.SeatNumber(1, 0, 0)
	assert.Equal(t, 5, n)
	n, _ = topo.SeatNumber(1, 1, 2)
	assert.Equal(t, 10, n)
}

func TestTopology_OutOfRange(t *testing.T) {
	topo, err := NewTopology([]model.Column{{Tables: 1, SeatsPerTable: 2}})
	require.NoError(t, err)

	_, err = topo.SeatNumber(1, 0, 0)
	assert.ErrorIs(t, err, ErrSeatOutOfRange)
	_, err = topo.SeatNumber(0, 1, 0)
	assert.ErrorIs(t, err, ErrSeatOutOfRange)
	_, err = topo.SeatNumber(0, 0, 2)
	assert.ErrorIs(t, err, ErrSeatOutOfRange)
	assert.False(t, topo.Contains(0))
	assert.False(t, topo.Contains(3))
}

func TestTopology_CheckCapacity(t *testing.T) {
	topo, err := NewTopology([]model.Column{{Tables: 5, SeatsPerTable: 4}})
	require.NoError(t, err)

	assert.NoError(t, topo.CheckCapacity(20))
	assert.NoError(t, topo.CheckCapacity(0))
	assert.ErrorIs(t, topo.CheckCapacity(19), ErrInvalidTopology)
}
