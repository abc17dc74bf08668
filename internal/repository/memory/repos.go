package memory

import (
	"context"
	"slices"
	"sort"
	"time"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// rooms

func (v *view) CreateRoom(_ context.Context, r *model.Room) error {
	return v.write(func(st *state) error {
		now := v.now()
		r.ID = st.nextID()
		r.CreatedAt, r.UpdatedAt = now, now
		st.rooms[r.ID] = cloneRoom(*r)
		return nil
	})
}

func (v *view) GetRoom(_ context.Context, id uint64) (*model.Room, error) {
	var out model.Room
	err := v.read(func(st *state) error {
		r, ok := st.rooms[id]
		if !ok {
			return store.ErrNotFound
		}
		out = cloneRoom(r)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *view) ListRooms(context.Context) ([]model.Room, error) {
	var out []model.Room
	err := v.read(func(st *state) error {
		for _, r := range st.rooms {
			out = append(out, cloneRoom(r))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, err
}

func (v *view) UpdateRoom(_ context.Context, r *model.Room) error {
	return v.write(func(st *state) error {
		cur, ok := st.rooms[r.ID]
		if !ok {
			return store.ErrNotFound
		}
		r.CreatedBy, r.CreatedAt = cur.CreatedBy, cur.CreatedAt
		r.UpdatedAt = v.now()
		st.rooms[r.ID] = cloneRoom(*r)
		return nil
	})
}

// sub-rooms

func (v *view) CreateSubRoom(_ context.Context, s *model.SubRoom) error {
	return v.write(func(st *state) error {
		if _, ok := st.rooms[s.RoomID]; !ok {
			return store.ErrNotFound
		}
		s.ID = st.nextID()
		s.Revision = 1
		if s.CreatedAt.IsZero() {
			s.CreatedAt = v.now()
		}
		st.subRooms[s.ID] = cloneSubRoom(*s)
		return nil
	})
}

func (v *view) GetSubRoom(_ context.Context, id uint64) (*model.SubRoom, error) {
	var out model.SubRoom
	err := v.read(func(st *state) error {
		s, ok := st.subRooms[id]
		if !ok {
			return store.ErrNotFound
		}
		out = cloneSubRoom(s)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *view) listSubRooms(keep func(model.SubRoom) bool) []model.SubRoom {
	var out []model.SubRoom
	_ = v.read(func(st *state) error {
		for _, s := range st.subRooms {
			if keep(s) {
				out = append(out, cloneSubRoom(s))
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

func (v *view) ListSubRoomsByTeacher(_ context.Context, teacherID uint64) ([]model.SubRoom, error) {
	return v.listSubRooms(func(s model.SubRoom) bool { return s.HasTeacher(teacherID) }), nil
}

func (v *view) CountSubRoomsByRoom(_ context.Context, roomID uint64) (int, error) {
	return len(v.listSubRooms(func(s model.SubRoom) bool { return s.RoomID == roomID })), nil
}

func (v *view) ListExpiredSubRooms(_ context.Context, now time.Time) ([]model.SubRoom, error) {
	return v.listSubRooms(func(s model.SubRoom) bool { return s.Expired(now) }), nil
}

func (v *view) DeleteSubRoom(_ context.Context, id uint64) error {
	return v.write(func(st *state) error {
		if _, ok := st.subRooms[id]; !ok {
			return store.ErrNotFound
		}
		delete(st.subRooms, id)
		delete(st.assignments, id)
		return nil
	})
}

// assignments

func (v *view) ListAssignments(_ context.Context, subRoomID uint64) ([]model.Assignment, error) {
	var out []model.Assignment
	err := v.read(func(st *state) error {
		out = slices.Clone(st.assignments[subRoomID])
		return nil
	})
	return out, err
}

func (v *view) ReplaceAssignments(_ context.Context, subRoomID, expectedRevision uint64, as []model.Assignment) (uint64, error) {
	var rev uint64
	err := v.write(func(st *state) error {
		sr, ok := st.subRooms[subRoomID]
		if !ok {
			return store.ErrNotFound
		}
		if sr.Revision != expectedRevision {
			return store.ErrStaleRevision
		}
		seats := make(map[int]bool, len(as))
		students := make(map[uint64]bool, len(as))
		rows := make([]model.Assignment, 0, len(as))
		for _, a := range as {
			if seats[a.SeatNumber] || students[a.StudentID] {
				return store.ErrConflict
			}
			seats[a.SeatNumber], students[a.StudentID] = true, true
			a.SubRoomID = subRoomID
			rows = append(rows, a)
		}
		sort.Slice(rows, func(i, j int) bool { return rows[i].SeatNumber < rows[j].SeatNumber })
		st.assignments[subRoomID] = rows
		sr.Revision++
		st.subRooms[subRoomID] = sr
		rev = sr.Revision
		return nil
	})
	return rev, err
}

// proposals

func (v *view) CreateProposal(_ context.Context, p *model.Proposal) error {
	return v.write(func(st *state) error {
		now := v.now()
		p.ID = st.nextID()
		p.CreatedAt, p.UpdatedAt = now, now
		st.proposals[p.ID] = cloneProposal(*p)
		return nil
	})
}

func (v *view) GetProposal(_ context.Context, id uint64) (*model.Proposal, error) {
	var out model.Proposal
	err := v.read(func(st *state) error {
		p, ok := st.proposals[id]
		if !ok {
			return store.ErrNotFound
		}
		out = cloneProposal(p)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *view) LockProposal(ctx context.Context, id uint64) (*model.Proposal, error) {
	return v.GetProposal(ctx, id)
}

func (v *view) UpdateProposal(_ context.Context, p *model.Proposal) error {
	return v.write(func(st *state) error {
		cur, ok := st.proposals[p.ID]
		if !ok {
			return store.ErrNotFound
		}
		p.CreatedAt = cur.CreatedAt
		p.UpdatedAt = v.now()
		st.proposals[p.ID] = cloneProposal(*p)
		return nil
	})
}

func (v *view) ListProposals(_ context.Context, f store.ProposalFilter) ([]model.Proposal, error) {
	var out []model.Proposal
	_ = v.read(func(st *state) error {
		for _, p := range st.proposals {
			if f.AuthorID != 0 && p.AuthorID != f.AuthorID {
				continue
			}
			if f.TeacherID != 0 && p.TeacherID != f.TeacherID {
				continue
			}
			if f.Status != "" && p.Status != f.Status {
				continue
			}
			out = append(out, cloneProposal(p))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// archives

func (v *view) CreateArchive(_ context.Context, a *model.ArchivedSubRoom) error {
	return v.write(func(st *state) error {
		a.ID = st.nextID()
		if a.ArchivedAt.IsZero() {
			a.ArchivedAt = v.now()
		}
		st.archives[a.ID] = cloneArchive(*a)
		return nil
	})
}

func (v *view) GetArchive(_ context.Context, id uint64) (*model.ArchivedSubRoom, error) {
	var out model.ArchivedSubRoom
	err := v.read(func(st *state) error {
		a, ok := st.archives[id]
		if !ok {
			return store.ErrNotFound
		}
		out = cloneArchive(a)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}

func (v *view) LockArchive(ctx context.Context, id uint64) (*model.ArchivedSubRoom, error) {
	return v.GetArchive(ctx, id)
}

func (v *view) MarkRestored(_ context.Context, id, by uint64, at time.Time, subRoomID uint64) error {
	return v.write(func(st *state) error {
		a, ok := st.archives[id]
		if !ok {
			return store.ErrNotFound
		}
		if a.IsRestored {
			return store.ErrConflict
		}
		a.IsRestored = true
		a.RestoredBy = &by
		a.RestoredAt = &at
		a.RestoredSubRoomID = &subRoomID
		st.archives[id] = cloneArchive(a)
		return nil
	})
}

func (v *view) ListArchives(_ context.Context, f store.ArchiveFilter) ([]model.ArchivedSubRoom, error) {
	var out []model.ArchivedSubRoom
	_ = v.read(func(st *state) error {
		for _, a := range st.archives {
			if f.Restored != nil && a.IsRestored != *f.Restored {
				continue
			}
			if f.TeacherID != 0 && !slices.Contains(a.TeacherIDs, f.TeacherID) {
				continue
			}
			out = append(out, cloneArchive(a))
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID > out[j].ID })
	if f.Limit > 0 && len(out) > f.Limit {
		out = out[:f.Limit]
	}
	return out, nil
}

// roster

func (v *view) ListStudents(_ context.Context, classIDs []uint64) ([]model.Student, error) {
	var out []model.Student
	_ = v.read(func(st *state) error {
		for _, s := range st.students {
			if slices.Contains(classIDs, s.ClassID) {
				out = append(out, s)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

// preferences

func (v *view) GetPreferences(_ context.Context, userID uint64) (model.Preferences, error) {
	out := model.Preferences{UserID: userID}
	err := v.read(func(st *state) error {
		if p, ok := st.prefs[userID]; ok {
			out = p
		}
		return nil
	})
	return out, err
}

func (v *view) SavePreferences(_ context.Context, p model.Preferences) error {
	return v.write(func(st *state) error {
		st.prefs[p.UserID] = p
		return nil
	})
}

// notifications

func (v *view) CreateNotification(_ context.Context, n *model.Notification) error {
	return v.write(func(st *state) error {
		for _, existing := range st.notifications {
			if n.MessageID != "" && existing.MessageID == n.MessageID {
				return store.ErrConflict
			}
		}
		n.ID = st.nextID()
		if n.CreatedAt.IsZero() {
			n.CreatedAt = v.now()
		}
		st.notifications = append(st.notifications, cloneNotification(*n))
		return nil
	})
}

func (v *view) ListNotifications(_ context.Context, userID uint64, limit int) ([]model.Notification, error) {
	var out []model.Notification
	_ = v.read(func(st *state) error {
		for i := len(st.notifications) - 1; i >= 0; i-- {
			n := st.notifications[i]
			if n.UserID != userID {
				continue
			}
			out = append(out, cloneNotification(n))
			if limit > 0 && len(out) == limit {
				break
			}
		}
		return nil
	})
	return out, nil
}
