package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/seating"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// Notifier is the notification sink.  Delivery is fire-and-forget: a
// failed Notify never undoes the workflow step that triggered it.
type Notifier interface {
	Notify(ctx context.Context, n model.Notification) error
}

// ProposalInput is the body of proposal create and update requests.  When
// SubRoomID is set the proposal edits that live sub-room and RoomID is
// taken from it.
type ProposalInput struct {
	RoomID    uint64               `json:"room_id"`
	ClassID   uint64               `json:"class_id" validate:"required"`
	TeacherID uint64               `json:"teacher_id" validate:"required"`
	Name      string               `json:"name" validate:"required,notblank,max=150"`
	Seats     []model.ProposedSeat `json:"seats"`
	SubRoomID *uint64              `json:"sub_room_id"`
	Comment   string               `json:"comment" validate:"max=2000"`
}

// ProposalService drives the draft -> pending -> approved/rejected
// workflow and materializes approved proposals into sub-rooms.
type ProposalService struct {
	store    store.Store
	notifier Notifier
	log      *slog.Logger
	metrics  *Metrics
	now      func() time.Time
}

func NewProposalService(st store.Store, n Notifier, log *slog.Logger, m *Metrics) *ProposalService {
	if log == nil {
		log = slog.Default()
	}
	return &ProposalService{store: st, notifier: n, log: log, metrics: m, now: utcNow}
}

// stage validates in against the current state and fills the plan
// fields of p.
func (s *ProposalService) stage(ctx context.Context, r store.Repos, p *model.Proposal, in ProposalInput) error {
	if err := validateStruct(in); err != nil {
		return err
	}
	p.ClassID, p.TeacherID = in.ClassID, in.TeacherID
	p.Name, p.Comment = strings.TrimSpace(in.Name), strings.TrimSpace(in.Comment)
	p.SubRoomID, p.BaseRevision = nil, 0
	p.RoomID = in.RoomID

	if in.SubRoomID != nil {
		sr, err := r.SubRooms().GetSubRoom(ctx, *in.SubRoomID)
		if errors.Is(err, store.ErrNotFound) {
			return invalid("sub_room_id", "sub-room does not exist")
		}
		if err != nil {
			return err
		}
		if !sr.HasTeacher(in.TeacherID) {
			return invalid("teacher_id", "teacher does not own the sub-room")
		}
		if !slices.Contains(sr.ClassIDs, in.ClassID) {
			return invalid("class_id", "class is not associated with the sub-room")
		}
		id := sr.ID
		p.SubRoomID, p.RoomID, p.BaseRevision = &id, sr.RoomID, sr.Revision
	}
	if p.RoomID == 0 {
		return invalid("room_id", "room_id is a required field")
	}

	room, err := r.Rooms().GetRoom(ctx, p.RoomID)
	if errors.Is(err, store.ErrNotFound) {
		return invalid("room_id", "room does not exist")
	}
	if err != nil {
		return err
	}
	topo, err := seating.NewTopology(room.Columns)
	if err != nil {
		return err
	}
	seats, err := seating.NewStoreFromSeats(topo.TotalSeats(), in.Seats)
	if err != nil {
		return NewValidationError(err, FieldError{Field: "seats", Error: err.Error()})
	}
	roster, err := r.Students().ListStudents(ctx, []uint64{in.ClassID})
	if err != nil {
		return err
	}
	enrolled := make(map[uint64]bool, len(roster))
	for _, st := range roster {
		enrolled[st.ID] = true
	}
	for _, st := range in.Seats {
		if !enrolled[st.StudentID] {
			return invalid("seats", fmt.Sprintf("student %d is not in class %d", st.StudentID, in.ClassID))
		}
	}
	p.Seats = seats.Seats()
	return nil
}

// Create stores a new draft authored by a delegate.
func (s *ProposalService) Create(ctx context.Context, actor model.Actor, in ProposalInput) (*model.Proposal, error) {
	if !actor.IsDelegate() {
		return nil, fmt.Errorf("%w: only delegates author proposals", ErrForbidden)
	}
	p := &model.Proposal{AuthorID: actor.ID, AuthorRole: actor.Role, Status: model.ProposalDraft}
	if err := s.stage(ctx, s.store, p, in); err != nil {
		return nil, err
	}
	if err := s.store.Proposals().CreateProposal(ctx, p); err != nil {
		return nil, fmt.Errorf("create proposal: %w", err)
	}
	return p, nil
}

// lockOwn locks the proposal and checks that actor wrote it and may
// still change it.
func lockOwn(ctx context.Context, r store.Repos, actor model.Actor, id uint64) (*model.Proposal, error) {
	p, err := r.Proposals().LockProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actor.ID {
		return nil, fmt.Errorf("%w: proposal %d belongs to another author", ErrForbidden, id)
	}
	if !p.Editable() {
		return nil, conflict(ReasonNotEditable, "proposal %d is %s", id, p.Status)
	}
	return p, nil
}

// Update replaces the plan of a draft or rejected proposal.
func (s *ProposalService) Update(ctx context.Context, actor model.Actor, id uint64, in ProposalInput) (*model.Proposal, error) {
	var out *model.Proposal
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := lockOwn(ctx, r, actor, id)
		if err != nil {
			return err
		}
		if err := s.stage(ctx, r, p, in); err != nil {
			return err
		}
		if err := r.Proposals().UpdateProposal(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// Submit moves a draft or rejected proposal to pending.
func (s *ProposalService) Submit(ctx context.Context, actor model.Actor, id uint64) (*model.Proposal, error) {
	var out *model.Proposal
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := lockOwn(ctx, r, actor, id)
		if err != nil {
			return err
		}
		at := s.now()
		p.Status = model.ProposalPending
		p.SubmittedAt = &at
		p.ReviewedBy, p.ReviewedAt, p.RejectionReason = nil, nil, ""
		if err := r.Proposals().UpdateProposal(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	return out, err
}

// lockPending locks the proposal and checks that actor may review it and
// that it awaits review.
func lockPending(ctx context.Context, r store.Repos, actor model.Actor, id uint64) (*model.Proposal, error) {
	p, err := r.Proposals().LockProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if !canManage(actor, []uint64{p.TeacherID}) {
		return nil, fmt.Errorf("%w: proposal %d is addressed to another teacher", ErrForbidden, id)
	}
	if p.Status != model.ProposalPending {
		return nil, conflict(ReasonNotPending, "proposal %d is %s, not pending", id, p.Status)
	}
	return p, nil
}

// Approve materializes the proposal and marks it approved in a single
// transaction.  An edit proposal replaces the assignments of its
// sub-room, guarded by the revision it was drafted from; otherwise a new
// sub-room is created.  Any failure leaves the proposal pending.
func (s *ProposalService) Approve(ctx context.Context, actor model.Actor, id uint64) (*model.Proposal, error) {
	var out *model.Proposal
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := lockPending(ctx, r, actor, id)
		if err != nil {
			return err
		}
		room, err := r.Rooms().GetRoom(ctx, p.RoomID)
		if err != nil {
			return fmt.Errorf("room %d: %w", p.RoomID, err)
		}
		topo, err := seating.NewTopology(room.Columns)
		if err != nil {
			return err
		}
		seats, err := seating.NewStoreFromSeats(topo.TotalSeats(), p.Seats)
		if err != nil {
			return NewValidationError(err, FieldError{Field: "seats", Error: err.Error()})
		}

		var subRoomID, revision uint64
		if p.SubRoomID != nil {
			sr, err := r.SubRooms().GetSubRoom(ctx, *p.SubRoomID)
			if errors.Is(err, store.ErrNotFound) {
				return conflict(ReasonNotFound, "sub-room %d no longer exists", *p.SubRoomID)
			}
			if err != nil {
				return err
			}
			subRoomID, revision = sr.ID, p.BaseRevision
		} else {
			sr := &model.SubRoom{
				RoomID:      p.RoomID,
				Name:        p.Name,
				Type:        model.SubRoomPermanent,
				TeacherIDs:  []uint64{p.TeacherID},
				ClassIDs:    []uint64{p.ClassID},
				CreatedBy:   p.AuthorID,
				CreatorRole: p.AuthorRole,
				CreatedAt:   s.now(),
			}
			if err := r.SubRooms().CreateSubRoom(ctx, sr); err != nil {
				return fmt.Errorf("materialize proposal %d: %w", id, err)
			}
			subRoomID, revision = sr.ID, sr.Revision
		}
		if _, err := saveSeats(ctx, r, subRoomID, revision, seats); err != nil {
			return revisionConflict(err, subRoomID)
		}

		at := s.now()
		reviewer := actor.ID
		p.Status = model.ProposalApproved
		p.SubRoomID = &subRoomID
		p.ReviewedBy, p.ReviewedAt = &reviewer, &at
		if err := r.Proposals().UpdateProposal(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.review("approved")
	s.log.Info("proposal approved", "proposal_id", out.ID, "sub_room_id", *out.SubRoomID, "reviewer", actor.ID)
	s.notify(ctx, model.Notification{
		UserID:  out.AuthorID,
		Kind:    model.NotifyProposalApproved,
		Title:   "Seating proposal approved",
		Message: fmt.Sprintf("Your seating plan %q was approved.", out.Name),
		Refs:    map[string]uint64{"proposal_id": out.ID, "sub_room_id": *out.SubRoomID},
	})
	return out, nil
}

// Reject records the reviewer's reason and returns the proposal to its
// author.
func (s *ProposalService) Reject(ctx context.Context, actor model.Actor, id uint64, reason string) (*model.Proposal, error) {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		return nil, invalid("reason", "a rejection reason is required")
	}
	var out *model.Proposal
	err := s.store.InTx(ctx, func(r store.Repos) error {
		p, err := lockPending(ctx, r, actor, id)
		if err != nil {
			return err
		}
		at := s.now()
		reviewer := actor.ID
		p.Status = model.ProposalRejected
		p.RejectionReason = reason
		p.ReviewedBy, p.ReviewedAt = &reviewer, &at
		if err := r.Proposals().UpdateProposal(ctx, p); err != nil {
			return err
		}
		out = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.metrics.review("rejected")
	s.log.Info("proposal rejected", "proposal_id", out.ID, "reviewer", actor.ID)
	s.notify(ctx, model.Notification{
		UserID:  out.AuthorID,
		Kind:    model.NotifyProposalRejected,
		Title:   "Seating proposal rejected",
		Message: fmt.Sprintf("Your seating plan %q was rejected: %s", out.Name, reason),
		Refs:    map[string]uint64{"proposal_id": out.ID},
	})
	return out, nil
}

func (s *ProposalService) notify(ctx context.Context, n model.Notification) {
	if s.notifier == nil {
		return
	}
	n.MessageID = uuid.NewString()
	n.CreatedAt = s.now()
	if err := s.notifier.Notify(ctx, n); err != nil {
		s.log.Warn("notification not delivered", "user_id", n.UserID, "kind", n.Kind, "err", err)
	}
}

// Get returns a proposal visible to actor: its author, its reviewer or an
// administrator.
func (s *ProposalService) Get(ctx context.Context, actor model.Actor, id uint64) (*model.Proposal, error) {
	p, err := s.store.Proposals().GetProposal(ctx, id)
	if err != nil {
		return nil, err
	}
	if p.AuthorID != actor.ID && !canManage(actor, []uint64{p.TeacherID}) {
		return nil, fmt.Errorf("%w: proposal %d", ErrForbidden, id)
	}
	return p, nil
}

// List returns the actor's proposals.  role selects "author" (written by
// the actor) or "reviewer" (addressed to the actor); it defaults from the
// actor's role.  Administrators with no role see every proposal.
func (s *ProposalService) List(ctx context.Context, actor model.Actor, role string, status model.ProposalStatus, limit int) ([]model.Proposal, error) {
	f := store.ProposalFilter{Status: status, Limit: limit}
	if role == "" {
		switch {
		case actor.IsDelegate():
			role = "author"
		case actor.IsTeacher():
			role = "reviewer"
		}
	}
	switch role {
	case "author":
		f.AuthorID = actor.ID
	case "reviewer":
		f.TeacherID = actor.ID
	case "":
		if !actor.IsAdmin() {
			return nil, fmt.Errorf("%w: role filter required", ErrForbidden)
		}
	default:
		return nil, invalid("role", "role must be author or reviewer")
	}
	return s.store.Proposals().ListProposals(ctx, f)
}
