package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/classroom-seating/internal/store"
)

// Repos binds every repository to one DBTX.
type Repos struct {
	rooms         *RoomRepo
	subRooms      *SubRoomRepo
	assignments   *AssignmentRepo
	proposals     *ProposalRepo
	archives      *ArchiveRepo
	students      *StudentRepo
	preferences   *PreferenceRepo
	notifications *NotificationRepo
}

func newRepos(db DBTX) *Repos {
	return &Repos{
		rooms:         NewRoomRepo(db),
		subRooms:      NewSubRoomRepo(db),
		assignments:   NewAssignmentRepo(db),
		proposals:     NewProposalRepo(db),
		archives:      NewArchiveRepo(db),
		students:      NewStudentRepo(db),
		preferences:   NewPreferenceRepo(db),
		notifications: NewNotificationRepo(db),
	}
}

func (r *Repos) Rooms() store.RoomRepository                 { return r.rooms }
func (r *Repos) SubRooms() store.SubRoomRepository           { return r.subRooms }
func (r *Repos) Assignments() store.AssignmentRepository     { return r.assignments }
func (r *Repos) Proposals() store.ProposalRepository         { return r.proposals }
func (r *Repos) Archives() store.ArchiveRepository           { return r.archives }
func (r *Repos) Students() store.StudentRepository           { return r.students }
func (r *Repos) Preferences() store.PreferenceRepository     { return r.preferences }
func (r *Repos) Notifications() store.NotificationRepository { return r.notifications }

// Store is the MySQL-backed store.Store.
type Store struct {
	*Repos
	db *sql.DB
}

var _ store.Store = (*Store)(nil)

// NewStore wraps an open connection pool.
func NewStore(db *sql.DB) *Store {
	return &Store{Repos: newRepos(db), db: db}
}

func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// InTx begins a transaction, hands fn repositories bound to it and
// commits when fn returns nil.  Any error rolls the whole unit back.
func (s *Store) InTx(ctx context.Context, fn func(store.Repos) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer func() { _ = tx.Rollback() }()

	if err := fn(newRepos(tx)); err != nil {
		return err
	}
	return tx.Commit()
}
