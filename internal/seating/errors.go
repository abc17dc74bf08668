package seating

import "errors"

var (
	// ErrInvalidTopology is returned for a room shape that cannot be numbered.
	ErrInvalidTopology = errors.New("invalid room topology")
	// ErrSeatOutOfRange is returned for a seat number outside [1, TotalSeats].
	ErrSeatOutOfRange = errors.New("seat number out of range")
	// ErrDuplicateSeat is returned when a snapshot binds one seat twice.
	ErrDuplicateSeat = errors.New("seat assigned more than once")
	// ErrDuplicateStudent is returned when a snapshot seats one student twice.
	ErrDuplicateStudent = errors.New("student seated more than once")
	// ErrInvalidStudent is returned for the zero student id.
	ErrInvalidStudent = errors.New("invalid student id")
	// ErrConfirmationRequired is returned by the editor when the user asked
	// to confirm removals and the call was not confirmed.
	ErrConfirmationRequired = errors.New("removal requires confirmation")
	// ErrUnknownStrategy is returned by ParseStrategy.
	ErrUnknownStrategy = errors.New("unknown placement strategy")
)
