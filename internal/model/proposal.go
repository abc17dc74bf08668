package model

import "time"

// ProposalStatus is the review state of a delegate-authored seating plan.
type ProposalStatus string

const (
	ProposalDraft    ProposalStatus = "draft"
	ProposalPending  ProposalStatus = "pending"
	ProposalApproved ProposalStatus = "approved"
	ProposalRejected ProposalStatus = "rejected"
)

// ProposedSeat is one seat binding embedded in a proposal.  It is not an
// Assignment yet because no sub-room may exist until approval.
type ProposedSeat struct {
	SeatNumber int    `json:"seat"`
	StudentID  uint64 `json:"student_id"`
}

// Proposal is a seating plan staged by a delegate for a teacher to review.
// When SubRoomID is set at creation the proposal edits that live sub-room;
// otherwise approval materializes a new one and records its id here.
//
// Fields:
//
//	ID              – primary key identifier.
//	AuthorID        – delegate who wrote the proposal.
//	AuthorRole      – the author's role when the proposal was created.
//	RoomID          – room providing the topology.
//	ClassID         – target class.
//	TeacherID       – teacher who reviews and will own the plan.
//	Name            – name given to the resulting sub-room.
//	Seats           – embedded seat bindings (stored as JSON).
//	Status          – draft, pending, approved or rejected.
//	SubRoomID       – sub-room edited or created (nullable).
//	BaseRevision    – sub-room revision the edit was drafted from.
//	Comment         – optional note from the author.
//	ReviewedBy      – reviewer (nullable).
//	ReviewedAt      – review timestamp (nullable).
//	RejectionReason – reason given on rejection.
//	SubmittedAt     – last submission timestamp (nullable).
//	CreatedAt       – creation timestamp.
//	UpdatedAt       – last update timestamp.
type Proposal struct {
	ID              uint64         `json:"id"`
	AuthorID        uint64         `json:"author_id"`
	AuthorRole      string         `json:"author_role"`
	RoomID          uint64         `json:"room_id"`
	ClassID         uint64         `json:"class_id"`
	TeacherID       uint64         `json:"teacher_id"`
	Name            string         `json:"name"`
	Seats           []ProposedSeat `json:"seats"`
	Status          ProposalStatus `json:"status"`
	SubRoomID       *uint64        `json:"sub_room_id,omitempty"`
	BaseRevision    uint64         `json:"base_revision"`
	Comment         string         `json:"comment,omitempty"`
	ReviewedBy      *uint64        `json:"reviewed_by,omitempty"`
	ReviewedAt      *time.Time     `json:"reviewed_at,omitempty"`
	RejectionReason string         `json:"rejection_reason,omitempty"`
	SubmittedAt     *time.Time     `json:"submitted_at,omitempty"`
	CreatedAt       time.Time      `json:"created_at"`
	UpdatedAt       time.Time      `json:"updated_at"`
}

// Editable reports whether the author may still change the proposal.
func (p *Proposal) Editable() bool {
	return p.Status == ProposalDraft || p.Status == ProposalRejected
}
