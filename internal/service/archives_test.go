package service

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

func newArchives(st store.Store) *ArchiveService {
	svc := NewArchiveService(st, 14, nil, newMetrics())
	svc.now = func() time.Time { return fixedNow }
	return svc
}

func TestArchives_ManualArchiveAndRestore(t *testing.T) {
	f := newFixture(t)
	ends := fixedNow.Add(24 * time.Hour)
	sr := f.subRoom(model.SubRoomTemporary, &ends)
	f.seat(sr,
		model.Assignment{SeatNumber: 1, StudentID: martin.ID},
		model.Assignment{SeatNumber: 3, StudentID: leroy.ID},
	)
	svc := newArchives(f.store)

	a, err := svc.ArchiveManual(f.ctx, teacher, sr.ID, "")
	require.NoError(t, err)
	assert.Equal(t, model.ArchiveManual, a.Reason)
	assert.Equal(t, sr.ID, a.OriginalID)
	assert.Len(t, a.Seats, 2)
	require.NotNil(t, a.ArchivedBy)
	assert.Equal(t, teacher.ID, *a.ArchivedBy)

	_, err = f.store.SubRooms().GetSubRoom(f.ctx, sr.ID)
	require.ErrorIs(t, err, store.ErrNotFound)

	restored, err := svc.Restore(f.ctx, teacher, a.ID)
	require.NoError(t, err)
	assert.NotEqual(t, sr.ID, restored.ID)
	assert.Equal(t, sr.Name, restored.Name)
	assert.Equal(t, sr.RoomID, restored.RoomID)
	assert.Equal(t, sr.TeacherIDs, restored.TeacherIDs)
	assert.Equal(t, sr.ClassIDs, restored.ClassIDs)
	require.NotNil(t, restored.StartsAt)
	require.NotNil(t, restored.EndsAt)
	assert.Equal(t, fixedNow, *restored.StartsAt)
	assert.Equal(t, fixedNow.AddDate(0, 0, 14), *restored.EndsAt)

	as, err := f.store.Assignments().ListAssignments(f.ctx, restored.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Assignment{
		{SubRoomID: restored.ID, SeatNumber: 1, StudentID: martin.ID},
		{SubRoomID: restored.ID, SeatNumber: 3, StudentID: leroy.ID},
	}, as)

	got, err := f.store.Archives().GetArchive(f.ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, got.IsRestored)
	require.NotNil(t, got.RestoredSubRoomID)
	assert.Equal(t, restored.ID, *got.RestoredSubRoomID)
}

func TestArchives_RestoreTwiceConflicts(t *testing.T) {
	f := newFixture(t)
	sr := f.subRoom(model.SubRoomPermanent, nil)
	svc := newArchives(f.store)

	a, err := svc.ArchiveManual(f.ctx, admin, sr.ID, model.ArchiveCleanup)
	require.NoError(t, err)
	restored, err := svc.Restore(f.ctx, admin, a.ID)
	require.NoError(t, err)
	assert.Nil(t, restored.EndsAt)

	_, err = svc.Restore(f.ctx, admin, a.ID)
	requireConflict(t, err, ReasonAlreadyRestored)
}

func TestArchives_RestoreDropsSeatsOutsideRoom(t *testing.T) {
	f := newFixture(t)
	sr := f.subRoom(model.SubRoomPermanent, nil)
	f.seat(sr,
		model.Assignment{SeatNumber: 2, StudentID: martin.ID},
		model.Assignment{SeatNumber: 4, StudentID: dupont.ID},
	)
	svc := newArchives(f.store)
	a, err := svc.ArchiveManual(f.ctx, teacher, sr.ID, "")
	require.NoError(t, err)

	_, err = NewRoomService(f.store, 0).Update(f.ctx, admin, f.room.ID,
		RoomInput{Name: f.room.Name, Columns: []model.Column{{Tables: 1, SeatsPerTable: 3}}})
	require.NoError(t, err)

	restored, err := svc.Restore(f.ctx, teacher, a.ID)
	require.NoError(t, err)
	as, err := f.store.Assignments().ListAssignments(f.ctx, restored.ID)
	require.NoError(t, err)
	assert.Equal(t, []model.Assignment{{SubRoomID: restored.ID, SeatNumber: 2, StudentID: martin.ID}}, as)
}

func TestArchives_ArchiveExpiredIsIdempotent(t *testing.T) {
	f := newFixture(t)
	past := fixedNow.Add(-time.Hour)
	future := fixedNow.Add(time.Hour)
	gone := f.subRoom(model.SubRoomTemporary, &past)
	live := f.subRoom(model.SubRoomTemporary, &future)
	perm := f.subRoom(model.SubRoomPermanent, nil)
	svc := newArchives(f.store)

	n, err := svc.ArchiveExpired(f.ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	n, err = svc.ArchiveExpired(f.ctx)
	require.NoError(t, err)
	assert.Zero(t, n)

	_, err = f.store.SubRooms().GetSubRoom(f.ctx, gone.ID)
	require.ErrorIs(t, err, store.ErrNotFound)
	for _, id := range []uint64{live.ID, perm.ID} {
		_, err = f.store.SubRooms().GetSubRoom(f.ctx, id)
		require.NoError(t, err)
	}

	archives, err := svc.List(f.ctx, admin, nil, 0)
	require.NoError(t, err)
	require.Len(t, archives, 1)
	assert.Equal(t, model.ArchiveExpired, archives[0].Reason)
	assert.Nil(t, archives[0].ArchivedBy)
}

func TestArchives_ManualArchiveChecks(t *testing.T) {
	f := newFixture(t)
	sr := f.subRoom(model.SubRoomPermanent, nil)
	svc := newArchives(f.store)

	_, err := svc.ArchiveManual(f.ctx, admin, 999, "")
	requireConflict(t, err, ReasonNotFound)

	_, err = svc.ArchiveManual(f.ctx, admin, sr.ID, model.ArchiveExpired)
	requireInvalid(t, err, "reason")

	_, err = svc.ArchiveManual(f.ctx, other, sr.ID, "")
	require.ErrorIs(t, err, ErrForbidden)
}

func TestArchives_ListScopedToTeacher(t *testing.T) {
	f := newFixture(t)
	svc := newArchives(f.store)
	_, err := svc.ArchiveManual(f.ctx, teacher, f.subRoom(model.SubRoomPermanent, nil).ID, "")
	require.NoError(t, err)

	mine, err := svc.List(f.ctx, teacher, nil, 0)
	require.NoError(t, err)
	assert.Len(t, mine, 1)

	theirs, err := svc.List(f.ctx, other, nil, 0)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	_, err = svc.List(f.ctx, delegate, nil, 0)
	require.ErrorIs(t, err, ErrForbidden)
}
