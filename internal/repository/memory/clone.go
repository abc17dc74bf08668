package memory

import (
	"maps"
	"slices"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
)

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}

func cloneID(id *uint64) *uint64 {
	if id == nil {
		return nil
	}
	c := *id
	return &c
}

func cloneRoom(r model.Room) model.Room {
	r.Columns = slices.Clone(r.Columns)
	return r
}

func cloneSubRoom(s model.SubRoom) model.SubRoom {
	s.TeacherIDs = slices.Clone(s.TeacherIDs)
	s.ClassIDs = slices.Clone(s.ClassIDs)
	s.StartsAt = cloneTime(s.StartsAt)
	s.EndsAt = cloneTime(s.EndsAt)
	return s
}

func cloneProposal(p model.Proposal) model.Proposal {
	p.Seats = slices.Clone(p.Seats)
	p.SubRoomID = cloneID(p.SubRoomID)
	p.ReviewedBy = cloneID(p.ReviewedBy)
	p.ReviewedAt = cloneTime(p.ReviewedAt)
	p.SubmittedAt = cloneTime(p.SubmittedAt)
	return p
}

func cloneArchive(a model.ArchivedSubRoom) model.ArchivedSubRoom {
	a.TeacherIDs = slices.Clone(a.TeacherIDs)
	a.ClassIDs = slices.Clone(a.ClassIDs)
	a.StartsAt = cloneTime(a.StartsAt)
	a.EndsAt = cloneTime(a.EndsAt)
	a.Seats = slices.Clone(a.Seats)
	a.ArchivedBy = cloneID(a.ArchivedBy)
	a.RestoredBy = cloneID(a.RestoredBy)
	a.RestoredAt = cloneTime(a.RestoredAt)
	a.RestoredSubRoomID = cloneID(a.RestoredSubRoomID)
	return a
}

func cloneNotification(n model.Notification) model.Notification {
	n.Refs = maps.Clone(n.Refs)
	return n
}
