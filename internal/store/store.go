// Package store declares the persistence ports used by the service layer.
// The MySQL repositories in internal/repository and the in-memory store in
// internal/repository/memory both implement them.
package store

import (
	"context"
	"errors"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
)

var (
	// ErrNotFound is returned when a lookup yields no record.
	ErrNotFound = errors.New("not found")
	// ErrConflict is returned when a write collides with existing state,
	// such as a duplicate key or a conditional update that matched nothing.
	ErrConflict = errors.New("conflict")
	// ErrStaleRevision is returned by ReplaceAssignments when the sub-room
	// was saved by someone else since the caller read it.
	ErrStaleRevision = errors.New("stale revision")
	// ErrForbidden is returned when the actor may not touch a resource.
	ErrForbidden = errors.New("forbidden")
)

type RoomRepository interface {
	CreateRoom(ctx context.Context, r *model.Room) error
	GetRoom(ctx context.Context, id uint64) (*model.Room, error)
	ListRooms(ctx context.Context) ([]model.Room, error)
	UpdateRoom(ctx context.Context, r *model.Room) error
}

type SubRoomRepository interface {
	// CreateSubRoom inserts s with its teachers and classes and sets ID
	// and Revision (1).
	CreateSubRoom(ctx context.Context, s *model.SubRoom) error
	GetSubRoom(ctx context.Context, id uint64) (*model.SubRoom, error)
	ListSubRoomsByTeacher(ctx context.Context, teacherID uint64) ([]model.SubRoom, error)
	CountSubRoomsByRoom(ctx context.Context, roomID uint64) (int, error)
	// ListExpiredSubRooms returns temporary sub-rooms whose end is before now.
	ListExpiredSubRooms(ctx context.Context, now time.Time) ([]model.SubRoom, error)
	// DeleteSubRoom removes the sub-room and its assignments.
	DeleteSubRoom(ctx context.Context, id uint64) error
}

type AssignmentRepository interface {
	ListAssignments(ctx context.Context, subRoomID uint64) ([]model.Assignment, error)
	// ReplaceAssignments atomically deletes every assignment of the
	// sub-room and inserts the given set, provided the sub-room revision
	// still equals expectedRevision.  It returns the new revision.
	ReplaceAssignments(ctx context.Context, subRoomID, expectedRevision uint64, as []model.Assignment) (uint64, error)
}

// ProposalFilter narrows ListProposals.  Zero fields are ignored.
type ProposalFilter struct {
	AuthorID  uint64
	TeacherID uint64
	Status    model.ProposalStatus
	Limit     int
}

type ProposalRepository interface {
	CreateProposal(ctx context.Context, p *model.Proposal) error
	GetProposal(ctx context.Context, id uint64) (*model.Proposal, error)
	// LockProposal reads the proposal and holds it until the enclosing
	// transaction ends.
	LockProposal(ctx context.Context, id uint64) (*model.Proposal, error)
	UpdateProposal(ctx context.Context, p *model.Proposal) error
	ListProposals(ctx context.Context, f ProposalFilter) ([]model.Proposal, error)
}

// ArchiveFilter narrows ListArchives.
type ArchiveFilter struct {
	Restored  *bool
	TeacherID uint64
	Limit     int
}

type ArchiveRepository interface {
	CreateArchive(ctx context.Context, a *model.ArchivedSubRoom) error
	GetArchive(ctx context.Context, id uint64) (*model.ArchivedSubRoom, error)
	LockArchive(ctx context.Context, id uint64) (*model.ArchivedSubRoom, error)
	// MarkRestored flips is_restored; it fails with ErrConflict when the
	// archive was already restored.
	MarkRestored(ctx context.Context, id, by uint64, at time.Time, subRoomID uint64) error
	ListArchives(ctx context.Context, f ArchiveFilter) ([]model.ArchivedSubRoom, error)
}

// StudentRepository is the directory/roster collaborator.
type StudentRepository interface {
	ListStudents(ctx context.Context, classIDs []uint64) ([]model.Student, error)
}

type PreferenceRepository interface {
	// GetPreferences returns the defaults when the user never saved any.
	GetPreferences(ctx context.Context, userID uint64) (model.Preferences, error)
	SavePreferences(ctx context.Context, p model.Preferences) error
}

type NotificationRepository interface {
	// CreateNotification stores a delivered notification; a repeated
	// MessageID yields ErrConflict.
	CreateNotification(ctx context.Context, n *model.Notification) error
	ListNotifications(ctx context.Context, userID uint64, limit int) ([]model.Notification, error)
}

// Repos groups the repositories bound to one connection or transaction.
type Repos interface {
	Rooms() RoomRepository
	SubRooms() SubRoomRepository
	Assignments() AssignmentRepository
	Proposals() ProposalRepository
	Archives() ArchiveRepository
	Students() StudentRepository
	Preferences() PreferenceRepository
	Notifications() NotificationRepository
}

// Store is the persistent store.  InTx runs fn against repositories bound
// to a single transaction which is committed when fn returns nil and
// rolled back otherwise.
type Store interface {
	Repos
	InTx(ctx context.Context, fn func(Repos) error) error
	Ping(ctx context.Context) error
}
