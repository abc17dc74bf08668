package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func TestEditor_ConfirmBeforeRemove(t *testing.T) {
	s := NewStore(3)
	require.NoError(t, s.Place(1, alice))
	require.NoError(t, s.Place(2, bob))
	ed := NewEditor(s, model.Preferences{ConfirmBeforeRemove: true})

	_, err := ed.Unplace(alice, false)
	assert.ErrorIs(t, err, ErrConfirmationRequired)
	assert.ErrorIs(t, ed.ClearSeat(2, false), ErrConfirmationRequired)
	assert.Equal(t, 2, s.Len())

	seat, err := ed.Unplace(alice, true)
	require.NoError(t, err)
	assert.Equal(t, 1, seat)
	require.NoError(t, ed.ClearSeat(2, true))
	assert.Zero(t, s.Len())
}

func TestEditor_NoConfirmationNeeded(t *testing.T) {
	s := NewStore(3)
	require.NoError(t, s.Place(1, alice))
	ed := NewEditor(s, model.Preferences{})

	_, err := ed.Unplace(alice, false)
	require.NoError(t, err)
	assert.Zero(t, s.Len())

	// nothing to remove never asks for confirmation
	ed.Prefs.ConfirmBeforeRemove = true
	_, err = ed.Unplace(carol, false)
	assert.NoError(t, err)
	assert.NoError(t, ed.ClearSeat(3, false))
	assert.ErrorIs(t, ed.ClearSeat(4, true), ErrSeatOutOfRange)
}
