package model

import "time"

// Roles carried in access tokens.
const (
	RoleAdmin       = "admin"
	RoleTeacher     = "teacher"
	RoleDelegate    = "delegate"
	RoleEcoDelegate = "eco_delegate"
)

// Actor is the authenticated caller as supplied by the identity provider.
// ClassID is the class a delegate represents; zero for other roles.
type Actor struct {
	ID      uint64
	Role    string
	ClassID uint64
}

func (a Actor) IsAdmin() bool   { return a.Role == RoleAdmin }
func (a Actor) IsTeacher() bool { return a.Role == RoleTeacher }

// IsDelegate is true for both plain and eco delegates.
func (a Actor) IsDelegate() bool {
	return a.Role == RoleDelegate || a.Role == RoleEcoDelegate
}

// Preferences are per-user editor settings.
type Preferences struct {
	UserID              uint64 `json:"user_id"`
	ConfirmBeforeRemove bool   `json:"confirm_before_remove"`
}

// Notification kinds emitted by the proposal workflow.
const (
	NotifyProposalApproved = "proposal_approved"
	NotifyProposalRejected = "proposal_rejected"
)

// Notification is the payload handed to the notification sink and, once
// delivered, stored in the user's inbox.
type Notification struct {
	ID        uint64            `json:"id,omitempty"`
	MessageID string            `json:"message_id"`
	UserID    uint64            `json:"user_id"`
	Kind      string            `json:"kind"`
	Title     string            `json:"title"`
	Message   string            `json:"message"`
	Refs      map[string]uint64 `json:"refs,omitempty"`
	IsRead    bool              `json:"is_read"`
	CreatedAt time.Time         `json:"created_at"`
}
