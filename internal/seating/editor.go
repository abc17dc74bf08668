package seating

import "github.com/iliyamo/classroom-seating/internal/model"

// Editor wraps a Store for one user's editing session and applies that
// user's preferences.  Removing a student or clearing a seat asks for an
// explicit confirmation when the user enabled ConfirmBeforeRemove.
type Editor struct {
	Store *Store
	Prefs model.Preferences
}

// NewEditor returns an editor over store with prefs.
func NewEditor(store *Store, prefs model.Preferences) *Editor {
	return &Editor{Store: store, Prefs: prefs}
}

// Place seats student on seat, swapping with the current occupant if any.
func (e *Editor) Place(seat int, student uint64) error {
	return e.Store.Place(seat, student)
}

// Unplace moves student back to the unplaced pool.
func (e *Editor) Unplace(student uint64, confirmed bool) (int, error) {
	if _, ok := e.Store.SeatOf(student); !ok {
		return 0, nil
	}
	if e.Prefs.ConfirmBeforeRemove && !confirmed {
		return 0, ErrConfirmationRequired
	}
	seat, _ := e.Store.RemoveStudent(student)
	return seat, nil
}

// ClearSeat frees seat.
func (e *Editor) ClearSeat(seat int, confirmed bool) error {
	if err := e.Store.checkSeat(seat); err != nil {
		return err
	}
	if _, ok := e.Store.StudentAt(seat); !ok {
		return nil
	}
	if e.Prefs.ConfirmBeforeRemove && !confirmed {
		return ErrConfirmationRequired
	}
	e.Store.Remove(seat)
	return nil
}

// Apply runs a placement strategy over the store.
func (e *Editor) Apply(st Strategy, students []model.Student) int {
	return st.Apply(e.Store, students)
}
