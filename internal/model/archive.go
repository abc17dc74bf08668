package model

import "time"

// ArchiveReason records why a sub-room left active use.
type ArchiveReason string

const (
	ArchiveExpired ArchiveReason = "expired"
	ArchiveManual  ArchiveReason = "manual"
	ArchiveCleanup ArchiveReason = "cleanup"
)

// Valid reports whether r is a known reason.
func (r ArchiveReason) Valid() bool {
	switch r {
	case ArchiveExpired, ArchiveManual, ArchiveCleanup:
		return true
	}
	return false
}

// ArchivedSubRoom is the immutable snapshot taken when a sub-room is
// archived.  Only the restoration fields change afterwards.
type ArchivedSubRoom struct {
	ID                uint64         `json:"id"`
	OriginalID        uint64         `json:"original_id"`
	RoomID            uint64         `json:"room_id"`
	Name              string         `json:"name"`
	Type              SubRoomType    `json:"type"`
	TeacherIDs        []uint64       `json:"teacher_ids"`
	ClassIDs          []uint64       `json:"class_ids"`
	CreatedBy         uint64         `json:"created_by"`
	CreatorRole       string         `json:"creator_role"`
	OriginalCreatedAt time.Time      `json:"original_created_at"`
	StartsAt          *time.Time     `json:"starts_at,omitempty"`
	EndsAt            *time.Time     `json:"ends_at,omitempty"`
	Seats             []ProposedSeat `json:"seats"`
	Reason            ArchiveReason  `json:"reason"`
	ArchivedBy        *uint64        `json:"archived_by,omitempty"` // nil for the expiry sweep
	ArchivedAt        time.Time      `json:"archived_at"`
	IsRestored        bool           `json:"is_restored"`
	RestoredBy        *uint64        `json:"restored_by,omitempty"`
	RestoredAt        *time.Time     `json:"restored_at,omitempty"`
	RestoredSubRoomID *uint64        `json:"restored_sub_room_id,omitempty"`
}
