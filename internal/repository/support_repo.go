package repository

import (
	"context"

	"supportly/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SupportRepository struct {
	db *gorm.DB
}

func NewSupportRepository(db *gorm.DB) *SupportRepository {
	return &SupportRepository{db: db}
}

func (r *SupportRepository) WithTx(tx *gorm.DB) *SupportRepository {
	return &SupportRepository{db: tx}
}

// InsertOnce inserts the event unless one already exists for its deposit id.
// It reports whether a row was written.
func (r *SupportRepository) InsertOnce(ctx context.Context, ev *models.SupportEvent) (bool, error) {
	res := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "deposit_id"}},
		DoNothing: true,
	}).Create(ev)
	return res.RowsAffected == 1, res.Error
}

func (r *SupportRepository) ListByCreator(ctx context.Context, creatorID uint, limit, offset int) ([]models.SupportEvent, error) {
	var list []models.SupportEvent
	err := r.db.WithContext(ctx).Where("creator_id = ?", creatorID).
		Order("created_at DESC").Limit(limit).Offset(offset).Find(&list).Error
	return list, err
}
