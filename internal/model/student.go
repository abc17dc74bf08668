package model

// StudentRole is the role tag the roster attaches to a student.
type StudentRole string

const (
	StudentPlain       StudentRole = "plain"
	StudentDelegate    StudentRole = "delegate"
	StudentEcoDelegate StudentRole = "eco_delegate"
)

// Student is a roster entry as returned by the directory.
type Student struct {
	ID        uint64      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	ClassID   uint64      `json:"class_id"`
	Role      StudentRole `json:"role"`
}
