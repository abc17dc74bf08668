package repository

import (
	"context"
	"strings"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// StudentRepo reads the roster mirror kept in the students table.
type StudentRepo struct {
	db DBTX
}

func NewStudentRepo(db DBTX) *StudentRepo { return &StudentRepo{db: db} }

// ListStudents returns the students of the given classes ordered by id.
func (r *StudentRepo) ListStudents(ctx context.Context, classIDs []uint64) ([]model.Student, error) {
	if len(classIDs) == 0 {
		return nil, nil
	}
	marks := strings.TrimSuffix(strings.Repeat("?,", len(classIDs)), ",")
	args := make([]any, len(classIDs))
	for i, id := range classIDs {
		args[i] = id
	}
	q := `SELECT id, first_name, last_name, class_id, role FROM students
	      WHERE class_id IN (` + marks + `) ORDER BY id`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Student
	for rows.Next() {
		var s model.Student
		if err := rows.Scan(&s.ID, &s.FirstName, &s.LastName, &s.ClassID, &s.Role); err != nil {
			return nil, err
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
