package service

import (
	"fmt"
	"slices"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func requireAdmin(a model.Actor) error {
	if !a.IsAdmin() {
		return fmt.Errorf("%w: administrator role required", ErrForbidden)
	}
	return nil
}

// canManage reports whether a may edit, archive or review plans of the
// sub-room's teachers.
func canManage(a model.Actor, teacherIDs []uint64) bool {
	if a.IsAdmin() {
		return true
	}
	if !a.IsTeacher() {
		return false
	}
	for _, id := range teacherIDs {
		if id == a.ID {
			return true
		}
	}
	return false
}

func requireManage(a model.Actor, s *model.SubRoom) error {
	if !canManage(a, s.TeacherIDs) {
		return fmt.Errorf("%w: sub-room %d belongs to other teachers", ErrForbidden, s.ID)
	}
	return nil
}

// canView reports whether a may read the plan of s: its managers, plus
// the delegates of one of its classes.
func canView(a model.Actor, s *model.SubRoom) bool {
	if canManage(a, s.TeacherIDs) {
		return true
	}
	if !a.IsDelegate() || a.ClassID == 0 {
		return false
	}
	return slices.Contains(s.ClassIDs, a.ClassID)
}

func requireView(a model.Actor, s *model.SubRoom) error {
	if !canView(a, s) {
		return fmt.Errorf("%w: sub-room %d", ErrForbidden, s.ID)
	}
	return nil
}
