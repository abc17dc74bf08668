package model

import "time"

// SubRoomType distinguishes permanent seating plans from time-boxed ones.
type SubRoomType string

const (
	SubRoomPermanent SubRoomType = "permanent"
	SubRoomTemporary SubRoomType = "temporary"
)

// SubRoom is a concrete seating plan of a room for a set of teachers and
// classes.  Temporary sub-rooms carry a validity window and are archived
// by the expiry sweep once EndsAt has passed.  Revision increases on
// every successful assignment save and guards against lost updates.
//
// Fields:
//
//	ID          – primary key identifier.
//	RoomID      – room providing the topology.
//	Name        – display name.
//	Type        – permanent or temporary.
//	TeacherIDs  – owning teachers (at least one).
//	ClassIDs    – associated classes (at least one).
//	CreatedBy   – user who created the plan.
//	CreatorRole – role of the creator at creation time.
//	CreatedAt   – creation timestamp.
//	StartsAt    – start of validity (temporary only).
//	EndsAt      – end of validity (temporary only).
//	Revision    – save counter used for optimistic concurrency.
type SubRoom struct {
	ID          uint64      `json:"id"`                  // sub_rooms.id
	RoomID      uint64      `json:"room_id"`             // sub_rooms.room_id
	Name        string      `json:"name"`                // sub_rooms.name
	Type        SubRoomType `json:"type"`                // sub_rooms.type
	TeacherIDs  []uint64    `json:"teacher_ids"`         // sub_room_teachers.teacher_id
	ClassIDs    []uint64    `json:"class_ids"`           // sub_room_classes.class_id
	CreatedBy   uint64      `json:"created_by"`          // sub_rooms.created_by
	CreatorRole string      `json:"creator_role"`        // sub_rooms.creator_role
	CreatedAt   time.Time   `json:"created_at"`          // sub_rooms.created_at
	StartsAt    *time.Time  `json:"starts_at,omitempty"` // sub_rooms.starts_at (nullable)
	EndsAt      *time.Time  `json:"ends_at,omitempty"`   // sub_rooms.ends_at (nullable)
	Revision    uint64      `json:"revision"`            // sub_rooms.revision
}

// IsTemporary reports whether the sub-room is time-boxed.
func (s *SubRoom) IsTemporary() bool { return s.Type == SubRoomTemporary }

// Expired reports whether a temporary sub-room's window closed before now.
func (s *SubRoom) Expired(now time.Time) bool {
	return s.IsTemporary() && s.EndsAt != nil && s.EndsAt.Before(now)
}

// HasTeacher reports whether id is one of the owning teachers.
func (s *SubRoom) HasTeacher(id uint64) bool {
	for _, t := range s.TeacherIDs {
		if t == id {
			return true
		}
	}
	return false
}

// Assignment binds a student to a seat number within one sub-room.
type Assignment struct {
	SubRoomID  uint64 `json:"sub_room_id"` // seat_assignments.sub_room_id
	SeatNumber int    `json:"seat"`        // seat_assignments.seat_number
	StudentID  uint64 `json:"student_id"`  // seat_assignments.student_id
}
