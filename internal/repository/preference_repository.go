package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/iliyamo/classroom-seating/internal/model"
)

// PreferenceRepo stores per-user editor settings.
type PreferenceRepo struct {
	db DBTX
}

func NewPreferenceRepo(db DBTX) *PreferenceRepo { return &PreferenceRepo{db: db} }

// GetPreferences falls back to the zero settings when nothing was saved.
func (r *PreferenceRepo) GetPreferences(ctx context.Context, userID uint64) (model.Preferences, error) {
	p := model.Preferences{UserID: userID}
	err := r.db.QueryRowContext(ctx,
		"SELECT confirm_before_remove FROM user_preferences WHERE user_id = ?", userID).
		Scan(&p.ConfirmBeforeRemove)
	if errors.Is(err, sql.ErrNoRows) {
		return p, nil
	}
	return p, err
}

// SavePreferences upserts the row.
func (r *PreferenceRepo) SavePreferences(ctx context.Context, p model.Preferences) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO user_preferences (user_id, confirm_before_remove, updated_at) VALUES (?, ?, ?)
		 ON DUPLICATE KEY UPDATE confirm_before_remove = VALUES(confirm_before_remove), updated_at = VALUES(updated_at)`,
		p.UserID, p.ConfirmBeforeRemove, now())
	return err
}
