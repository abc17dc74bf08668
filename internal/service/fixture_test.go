package service

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/repository/memory"
	"github.com/iliyamo/classroom-seating/internal/store"
)

var (
	admin    = model.Actor{ID: 1, Role: model.RoleAdmin}
	teacher  = model.Actor{ID: 7, Role: model.RoleTeacher}
	other    = model.Actor{ID: 8, Role: model.RoleTeacher}
	delegate = model.Actor{ID: 20, Role: model.RoleDelegate, ClassID: classID}

	fixedNow = time.Date(2026, 3, 2, 9, 0, 0, 0, time.UTC)
)

const classID uint64 = 3

// Roster of class 3.
var (
	martin = model.Student{ID: 101, FirstName: "Alice", LastName: "Martin", ClassID: classID}
	dupont = model.Student{ID: 102, FirstName: "Bob", LastName: "Dupont", ClassID: classID}
	leroy  = model.Student{ID: 103, FirstName: "Chloé", LastName: "Leroy", ClassID: classID}
	// outsider belongs to another class.
	outsider = model.Student{ID: 201, FirstName: "Eve", LastName: "Roux", ClassID: 4}
)

type fixture struct {
	t     *testing.T
	ctx   context.Context
	store *memory.Store
	room  *model.Room
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	st := memory.New().WithClock(func() time.Time { return fixedNow })
	st.SeedStudents(martin, dupont, leroy, outsider)
	f := &fixture{t: t, ctx: context.Background(), store: st}
	f.room = &model.Room{Name: "B12", Columns: []model.Column{{Tables: 2, SeatsPerTable: 2}}, Board: model.BoardTop, CreatedBy: admin.ID}
	require.NoError(t, st.Rooms().CreateRoom(f.ctx, f.room))
	return f
}

func (f *fixture) subRoom(typ model.SubRoomType, endsAt *time.Time) *model.SubRoom {
	f.t.Helper()
	sr := &model.SubRoom{
		RoomID:      f.room.ID,
		Name:        "4A maths",
		Type:        typ,
		TeacherIDs:  []uint64{teacher.ID},
		ClassIDs:    []uint64{classID},
		CreatedBy:   teacher.ID,
		CreatorRole: model.RoleTeacher,
		EndsAt:      endsAt,
	}
	if endsAt != nil {
		start := endsAt.Add(-48 * time.Hour)
		sr.StartsAt = &start
	}
	require.NoError(f.t, f.store.SubRooms().CreateSubRoom(f.ctx, sr))
	return sr
}

func (f *fixture) seat(sr *model.SubRoom, as ...model.Assignment) uint64 {
	f.t.Helper()
	rev, err := f.store.Assignments().ReplaceAssignments(f.ctx, sr.ID, sr.Revision, as)
	require.NoError(f.t, err)
	sr.Revision = rev
	return rev
}

func newMetrics() *Metrics { return NewMetrics(prometheus.NewRegistry()) }

// recordingNotifier collects notifications; err makes every Notify fail.
type recordingNotifier struct {
	mu   sync.Mutex
	sent []model.Notification
	err  error
}

func (n *recordingNotifier) Notify(_ context.Context, msg model.Notification) error {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.sent = append(n.sent, msg)
	return n.err
}

var errBoom = errors.New("boom")

// failingSaves makes every assignment replace inside a transaction fail.
type failingSaves struct{ *memory.Store }

type failingRepos struct{ store.Repos }

type failingAssignments struct{ store.AssignmentRepository }

func (failingAssignments) ReplaceAssignments(context.Context, uint64, uint64, []model.Assignment) (uint64, error) {
	return 0, errBoom
}

func (r failingRepos) Assignments() store.AssignmentRepository {
	return failingAssignments{r.Repos.Assignments()}
}

func (s failingSaves) InTx(ctx context.Context, fn func(store.Repos) error) error {
	return s.Store.InTx(ctx, func(r store.Repos) error { return fn(failingRepos{r}) })
}

func requireConflict(t *testing.T, err error, reason string) {
	t.Helper()
	var ce *ConflictError
	require.ErrorAs(t, err, &ce)
	require.Equal(t, reason, ce.Reason)
	require.ErrorIs(t, err, store.ErrConflict)
}

func requireInvalid(t *testing.T, err error, field string) {
	t.Helper()
	var ve *ValidationError
	require.ErrorAs(t, err, &ve)
	for _, f := range ve.Fields {
		if f.Field == field {
			return
		}
	}
	t.Fatalf("no validation error on %q: %+v", field, ve.Fields)
}
