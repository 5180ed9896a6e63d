package repository

import (
	"context"
	"strconv"

	"supportly/internal/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type SettingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) *SettingRepository {
	return &SettingRepository{db: db}
}

func (r *SettingRepository) Get(ctx context.Context, key string) (string, error) {
	var s models.SystemSetting
	if err := r.db.WithContext(ctx).Where(&models.SystemSetting{Key: key}).First(&s).Error; err != nil {
		return "", err
	}
	return s.Value, nil
}

// Int64 returns the numeric setting or fallback when it is missing or malformed.
func (r *SettingRepository) Int64(ctx context.Context, key string, fallback int64) int64 {
	val, err := r.Get(ctx, key)
	if err != nil || val == "" {
		return fallback
	}
	n, err := strconv.ParseInt(val, 10, 64)
	if err != nil {
		return fallback
	}
	return n
}

func (r *SettingRepository) Set(ctx context.Context, key, value string) error {
	return r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&models.SystemSetting{Key: key, Value: value}).Error
}

func (r *SettingRepository) GetAll(ctx context.Context) ([]models.SystemSetting, error) {
	var list []models.SystemSetting
	err := r.db.WithContext(ctx).Order(clause.OrderByColumn{Column: clause.Column{Name: "key"}}).Find(&list).Error
	return list, err
}
