package repository

import (
	"context"
	"database/sql"
	"strings"

	"github.com/iliyamo/classroom-seating/internal/model"
	"github.com/iliyamo/classroom-seating/internal/store"
)

// ProposalRepo stores delegate proposals.  The staged seats are a JSON
// array in proposals.seats.
type ProposalRepo struct {
	db DBTX
}

// NewProposalRepo constructs a ProposalRepo with the given DB handle.
func NewProposalRepo(db DBTX) *ProposalRepo { return &ProposalRepo{db: db} }

const proposalColumns = `id, author_id, author_role, room_id, class_id, teacher_id, name, seats, status, sub_room_id,
	base_revision, comment, reviewed_by, reviewed_at, rejection_reason, submitted_at, created_at, updated_at`

func scanProposal(sc scanner) (*model.Proposal, error) {
	var (
		p                     model.Proposal
		seats                 []byte
		subRoomID, reviewedBy sql.NullInt64
		reviewedAt, submitted sql.NullTime
		comment, reason       sql.NullString
	)
	if err := sc.Scan(&p.ID, &p.AuthorID, &p.AuthorRole, &p.RoomID, &p.ClassID, &p.TeacherID, &p.Name, &seats, &p.Status,
		&subRoomID, &p.BaseRevision, &comment, &reviewedBy, &reviewedAt, &reason, &submitted,
		&p.CreatedAt, &p.UpdatedAt); err != nil {
		return nil, err
	}
	if err := fromJSON(seats, &p.Seats); err != nil {
		return nil, err
	}
	p.SubRoomID, p.ReviewedBy = idPtr(subRoomID), idPtr(reviewedBy)
	p.ReviewedAt, p.SubmittedAt = timePtr(reviewedAt), timePtr(submitted)
	p.Comment, p.RejectionReason = comment.String, reason.String
	return &p, nil
}

func seatsJSON(seats []model.ProposedSeat) ([]byte, error) {
	if seats == nil {
		seats = []model.ProposedSeat{}
	}
	return toJSON(seats)
}

// CreateProposal inserts p and populates its ID and timestamps.
func (r *ProposalRepo) CreateProposal(ctx context.Context, p *model.Proposal) error {
	seats, err := seatsJSON(p.Seats)
	if err != nil {
		return err
	}
	ts := now()
	const q = `INSERT INTO proposals (author_id, author_role, room_id, class_id, teacher_id, name, seats, status, sub_room_id,
	                                  base_revision, comment, submitted_at, created_at, updated_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, p.AuthorID, p.AuthorRole, p.RoomID, p.ClassID, p.TeacherID, p.Name, seats, p.Status,
		nullID(p.SubRoomID), p.BaseRevision, nullString(p.Comment), nullTime(p.SubmittedAt), ts, ts)
	if err != nil {
		return mapErr(err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	p.ID = uint64(id)
	p.CreatedAt, p.UpdatedAt = ts, ts
	return nil
}

func (r *ProposalRepo) get(ctx context.Context, id uint64, suffix string) (*model.Proposal, error) {
	p, err := scanProposal(r.db.QueryRowContext(ctx, `SELECT `+proposalColumns+` FROM proposals WHERE id = ?`+suffix, id))
	if err != nil {
		return nil, mapErr(err)
	}
	return p, nil
}

// GetProposal returns store.ErrNotFound when no proposal has that id.
func (r *ProposalRepo) GetProposal(ctx context.Context, id uint64) (*model.Proposal, error) {
	return r.get(ctx, id, "")
}

// LockProposal reads the row with FOR UPDATE so concurrent reviewers
// serialize on it.  Only meaningful inside Store.InTx.
func (r *ProposalRepo) LockProposal(ctx context.Context, id uint64) (*model.Proposal, error) {
	return r.get(ctx, id, " FOR UPDATE")
}

// UpdateProposal rewrites every mutable column.
func (r *ProposalRepo) UpdateProposal(ctx context.Context, p *model.Proposal) error {
	seats, err := seatsJSON(p.Seats)
	if err != nil {
		return err
	}
	ts := now()
	const q = `UPDATE proposals SET room_id = ?, class_id = ?, teacher_id = ?, name = ?, seats = ?, status = ?,
	                  sub_room_id = ?, base_revision = ?, comment = ?, reviewed_by = ?, reviewed_at = ?,
	                  rejection_reason = ?, submitted_at = ?, updated_at = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, p.RoomID, p.ClassID, p.TeacherID, p.Name, seats, p.Status,
		nullID(p.SubRoomID), p.BaseRevision, nullString(p.Comment), nullID(p.ReviewedBy), nullTime(p.ReviewedAt),
		nullString(p.RejectionReason), nullTime(p.SubmittedAt), ts, p.ID)
	if err != nil {
		return mapErr(err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return store.ErrNotFound
	}
	p.UpdatedAt = ts
	return nil
}

// ListProposals returns proposals matching f, newest first.
func (r *ProposalRepo) ListProposals(ctx context.Context, f store.ProposalFilter) ([]model.Proposal, error) {
	where := []string{}
	args := []any{}
	if f.AuthorID != 0 {
		where = append(where, "author_id = ?")
		args = append(args, f.AuthorID)
	}
	if f.TeacherID != 0 {
		where = append(where, "teacher_id = ?")
		args = append(args, f.TeacherID)
	}
	if f.Status != "" {
		where = append(where, "status = ?")
		args = append(args, f.Status)
	}
	cond := "1=1"
	if len(where) > 0 {
		cond = strings.Join(where, " AND ")
	}
	q := `SELECT ` + proposalColumns + ` FROM proposals WHERE ` + cond + ` ORDER BY id DESC`
	if f.Limit > 0 {
		q += ` LIMIT ?`
		args = append(args, f.Limit)
	}

	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []model.Proposal
	for rows.Next() {
		p, err := scanProposal(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *p)
	}
	return out, rows.Err()
}
