package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

func TestSubRooms_TeacherOwnsWhatTheyCreate(t *testing.T) {
	f := newFixture(t)
	svc := NewSubRoomService(f.store, 7)
	svc.now = func() time.Time { return fixedNow }

	sr, err := svc.Create(f.ctx, teacher, SubRoomInput{
		RoomID:     f.room.ID,
		Name:       "Exam 4A",
		Type:       model.SubRoomTemporary,
		TeacherIDs: []uint64{other.ID, other.ID},
		ClassIDs:   []uint64{classID},
	})
	require.NoError(t, err)
	assert.Equal(t, []uint64{other.ID, teacher.ID}, sr.TeacherIDs)
	require.NotNil(t, sr.EndsAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, 7), *sr.EndsAt)
	assert.Equal(t, uint64(1), sr.Revision)

	mine, err := svc.ListByTeacher(f.ctx, teacher, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	_, err = svc.ListByTeacher(f.ctx, teacher, other.ID)
	require.ErrorIs(t, err, ErrForbidden)
}

func TestSubRooms_CreateChecks(t *testing.T) {
	f := newFixture(t)
	svc := NewSubRoomService(f.store, 7)

	_, err := svc.Create(f.ctx, delegate, SubRoomInput{RoomID: f.room.ID, Name: "x", TeacherIDs: []uint64{7}, ClassIDs: []uint64{3}})
	require.ErrorIs(t, err, ErrForbidden)

	_, err = svc.Create(f.ctx, admin, SubRoomInput{RoomID: f.room.ID, Name: "x", ClassIDs: []uint64{3}})
	requireInvalid(t, err, "teacher_ids")

	_, err = svc.Create(f.ctx, admin, SubRoomInput{RoomID: 99, Name: "x", TeacherIDs: []uint64{7}, ClassIDs: []uint64{3}})
	require.ErrorIs(t, err, store.ErrNotFound)

	start := fixedNow
	end := fixedNow.Add(-time.Hour)
	_, err = svc.Create(f.ctx, admin, SubRoomInput{
		RoomID: f.room.ID, Name: "x", Type: model.SubRoomTemporary,
		TeacherIDs: []uint64{7}, ClassIDs: []uint64{3}, StartsAt: &start, EndsAt: &end,
	})
	requireInvalid(t, err, "ends_at")
}

func TestSubRooms_Layout(t *testing.T) {
	f := newFixture(t)
	sr := f.subRoom(model.SubRoomPermanent, nil)
	f.seat(sr, model.Assignment{SeatNumber: 3, StudentID: leroy.ID})

	l, err := NewSubRoomService(f.store, 7).Layout(f.ctx, teacher, sr.ID)
	require.NoError(t, err)
	assert.Equal(t, 4, l.TotalSeats)
	assert.Equal(t, sr.Revision, l.Revision)
	require.Len(t, l.Columns, 1)
	require.Len(t, l.Columns[0].Tables, 2)

	second := l.Columns[0].Tables[1].Seats
	assert.Equal(t, 3, second[0].Number)
	require.NotNil(t, second[0].Student)
	assert.Equal(t, "Leroy", second[0].Student.LastName)
	assert.Nil(t, second[1].Student)

	require.Len(t, l.Unplaced, 2)
	assert.Equal(t, "Dupont", l.Unplaced[0].LastName)
	assert.Equal(t, "Martin", l.Unplaced[1].LastName)
}

func TestSubRooms_ReadsScopedToTeachersAndClassDelegates(t *testing.T) {
	f := newFixture(t)
	sr := f.subRoom(model.SubRoomPermanent, nil)
	f.seat(sr, model.Assignment{SeatNumber: 1, StudentID: martin.ID})
	svc := NewSubRoomService(f.store, 7)
	plans := newAssignments(f)

	elsewhere := model.Actor{ID: 30, Role: model.RoleDelegate, ClassID: 4}
	unbound := model.Actor{ID: 31, Role: model.RoleEcoDelegate}
	for _, a := range []model.Actor{other, elsewhere, unbound} {
		_, err := svc.Get(f.ctx, a, sr.ID)
		require.ErrorIs(t, err, ErrForbidden, "get as %+v", a)
		_, err = svc.Layout(f.ctx, a, sr.ID)
		require.ErrorIs(t, err, ErrForbidden, "layout as %+v", a)
		_, err = plans.Get(f.ctx, a, sr.ID)
		require.ErrorIs(t, err, ErrForbidden, "assignments as %+v", a)
	}

	for _, a := range []model.Actor{admin, teacher, delegate} {
		_, err := svc.Get(f.ctx, a, sr.ID)
		require.NoError(t, err)
		l, err := svc.Layout(f.ctx, a, sr.ID)
		require.NoError(t, err)
		assert.Equal(t, sr.Revision, l.Revision)
		snap, err := plans.Get(f.ctx, a, sr.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, snap.Seats.Len())
	}
}
