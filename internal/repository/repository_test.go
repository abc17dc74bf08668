package repository

import (
	"context"
	"database/sql"
	"errors"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

func newMock(t *testing.T) (*sql.DB, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() {
		require.NoError(t, mock.ExpectationsWereMet())
		db.Close()
	})
	return db, mock
}

func TestMapErr(t *testing.T) {
	assert.ErrorIs(t, mapErr(sql.ErrNoRows), store.ErrNotFound)
	assert.ErrorIs(t, mapErr(&mysql.MySQLError{Number: 1062, Message: "Duplicate entry"}), store.ErrConflict)
	assert.ErrorIs(t, mapErr(&mysql.MySQLError{Number: 1452}), store.ErrNotFound)
	other := errors.New("io")
	assert.Equal(t, other, mapErr(other))
	assert.NoError(t, mapErr(nil))
}

func TestRoomRepo_CreateRoom(t *testing.T) {
	db, mock := newMock(t)
	room := &model.Room{Name: "B12", Columns: []model.Column{{Tables: 3, SeatsPerTable: 2}}, Board: model.BoardLeft, CreatedBy: 1}

	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WithArgs("B12", []byte(`[{"tables":3,"seats_per_table":2}]`), model.BoardLeft, uint64(1), sqlmock.AnyArg(), sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(5, 1))

	require.NoError(t, NewRoomRepo(db).CreateRoom(context.Background(), room))
	assert.Equal(t, uint64(5), room.ID)
	assert.False(t, room.CreatedAt.IsZero())
}

func TestRoomRepo_CreateRoomDuplicateName(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO rooms")).
		WillReturnError(&mysql.MySQLError{Number: 1062})

	err := NewRoomRepo(db).CreateRoom(context.Background(), &model.Room{Name: "B12"})
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestRoomRepo_GetRoom(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).WithArgs(uint64(2)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "name", "columns_json", "board_position", "created_by", "created_at", "updated_at"}).
			AddRow(2, "Lab", []byte(`[{"tables":2,"seats_per_table":2},{"tables":1,"seats_per_table":3}]`), "top", 1, ts, ts))

	room, err := NewRoomRepo(db).GetRoom(context.Background(), 2)
	require.NoError(t, err)
	assert.Equal(t, "Lab", room.Name)
	assert.Equal(t, model.BoardTop, room.Board)
	assert.Equal(t, []model.Column{{Tables: 2, SeatsPerTable: 2}, {Tables: 1, SeatsPerTable: 3}}, room.Columns)
}

func TestRoomRepo_GetRoomNotFound(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM rooms WHERE id = ?")).WillReturnError(sql.ErrNoRows)

	_, err := NewRoomRepo(db).GetRoom(context.Background(), 9)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestSubRoomRepo_GetSubRoomFoldsMembers(t *testing.T) {
	db, mock := newMock(t)
	ts := time.Date(2026, 1, 5, 8, 0, 0, 0, time.UTC)
	mock.ExpectQuery(regexp.QuoteMeta("WHERE s.id = ?")).WithArgs(uint64(4)).
		WillReturnRows(sqlmock.NewRows([]string{"id", "room_id", "name", "type", "created_by", "creator_role",
			"created_at", "starts_at", "ends_at", "revision", "teachers", "classes"}).
			AddRow(4, 2, "4A", "temporary", 1, "teacher", ts, ts, ts.Add(24*time.Hour), 3, "7,9", "3"))

	s, err := NewSubRoomRepo(db).GetSubRoom(context.Background(), 4)
	require.NoError(t, err)
	assert.Equal(t, []uint64{7, 9}, s.TeacherIDs)
	assert.Equal(t, []uint64{3}, s.ClassIDs)
	assert.Equal(t, uint64(3), s.Revision)
	require.NotNil(t, s.EndsAt)
	assert.True(t, s.IsTemporary())
}

func TestSubRoomRepo_CreateSubRoom(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sub_rooms")).WillReturnResult(sqlmock.NewResult(11, 1))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sub_room_teachers (sub_room_id, teacher_id) VALUES (?, ?),(?, ?)")).
		WithArgs(uint64(11), uint64(7), uint64(11), uint64(8)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO sub_room_classes (sub_room_id, class_id) VALUES (?, ?)")).
		WithArgs(uint64(11), uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	s := &model.SubRoom{RoomID: 2, Name: "4A", Type: model.SubRoomPermanent, TeacherIDs: []uint64{7, 8}, ClassIDs: []uint64{3}}
	require.NoError(t, NewSubRoomRepo(db).CreateSubRoom(context.Background(), s))
	assert.Equal(t, uint64(11), s.ID)
	assert.Equal(t, uint64(1), s.Revision)
}

func TestSubRoomRepo_DeleteMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sub_rooms WHERE id = ?")).WithArgs(uint64(3)).
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.ErrorIs(t, NewSubRoomRepo(db).DeleteSubRoom(context.Background(), 3), store.ErrNotFound)
}

func TestAssignmentRepo_ReplaceAssignments(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sub_rooms SET revision = revision + 1 WHERE id = ? AND revision = ?")).
		WithArgs(uint64(4), uint64(2)).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM seat_assignments WHERE sub_room_id = ?")).
		WithArgs(uint64(4)).WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO seat_assignments (sub_room_id, seat_number, student_id) VALUES (?, ?, ?),(?, ?, ?)")).
		WithArgs(uint64(4), 1, uint64(10), uint64(4), 2, uint64(20)).
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	rev, err := NewAssignmentRepo(db).ReplaceAssignments(context.Background(), 4, 2, []model.Assignment{
		{SeatNumber: 1, StudentID: 10},
		{SeatNumber: 2, StudentID: 20},
	})
	require.NoError(t, err)
	assert.Equal(t, uint64(3), rev)
}

func TestAssignmentRepo_ReplaceAssignmentsStale(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sub_rooms SET revision")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT revision FROM sub_rooms WHERE id = ?")).
		WillReturnRows(sqlmock.NewRows([]string{"revision"}).AddRow(5))
	mock.ExpectRollback()

	_, err := NewAssignmentRepo(db).ReplaceAssignments(context.Background(), 4, 2, nil)
	require.ErrorIs(t, err, store.ErrStaleRevision)
}

func TestAssignmentRepo_ReplaceAssignmentsMissing(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("UPDATE sub_rooms SET revision")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT revision FROM sub_rooms")).
		WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	_, err := NewAssignmentRepo(db).ReplaceAssignments(context.Background(), 4, 2, nil)
	require.ErrorIs(t, err, store.ErrNotFound)
}

func TestArchiveRepo_MarkRestoredTwice(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectExec(regexp.QuoteMeta("UPDATE archived_sub_rooms")).
		WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(regexp.QuoteMeta("SELECT 1 FROM archived_sub_rooms WHERE id = ?")).
		WithArgs(uint64(6)).
		WillReturnRows(sqlmock.NewRows([]string{"1"}).AddRow(1))

	err := NewArchiveRepo(db).MarkRestored(context.Background(), 6, 1, time.Now(), 12)
	require.ErrorIs(t, err, store.ErrConflict)
}

func TestPreferenceRepo_Defaults(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectQuery(regexp.QuoteMeta("FROM user_preferences")).WithArgs(uint64(3)).
		WillReturnError(sql.ErrNoRows)

	p, err := NewPreferenceRepo(db).GetPreferences(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, model.Preferences{UserID: 3}, p)
}

func TestStore_InTxRollsBack(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("DELETE FROM sub_rooms")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := NewStore(db).InTx(context.Background(), func(r store.Repos) error {
		if err := r.SubRooms().DeleteSubRoom(context.Background(), 1); err != nil {
			return err
		}
		return boom
	})
	require.ErrorIs(t, err, boom)
}

func TestStore_InTxCommits(t *testing.T) {
	db, mock := newMock(t)
	mock.ExpectBegin()
	mock.ExpectExec(regexp.QuoteMeta("INSERT INTO user_preferences")).WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := NewStore(db).InTx(context.Background(), func(r store.Repos) error {
		return r.Preferences().SavePreferences(context.Background(), model.Preferences{UserID: 1, ConfirmBeforeRemove: true})
	})
	require.NoError(t, err)
}
