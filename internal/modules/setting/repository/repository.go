package repository

import (
	"context"
	"time"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SettingRepository interface {
	List(ctx context.Context) ([]entity.SystemSetting, error)
	FindByKey(ctx context.Context, key string) (*entity.SystemSetting, error)
	UpdateValue(ctx context.Context, key, value string, updatedBy uuid.UUID, at time.Time) error
}

type settingRepository struct {
	db *gorm.DB
}

func NewSettingRepository(db *gorm.DB) SettingRepository {
	return &settingRepository{db: db}
}

func (r *settingRepository) List(ctx context.Context) ([]entity.SystemSetting, error) {
	var settings []entity.SystemSetting
	if err := r.db.WithContext(ctx).Order("setting_key ASC").Find(&settings).Error; err != nil {
		return nil, err
	}
	return settings, nil
}

func (r *settingRepository) FindByKey(ctx context.Context, key string) (*entity.SystemSetting, error) {
	var setting entity.SystemSetting
	if err := r.db.WithContext(ctx).Where("setting_key = ?", key).First(&setting).Error; err != nil {
		return nil, apperror.FromGorm(err, "setting")
	}
	return &setting, nil
}

func (r *settingRepository) UpdateValue(ctx context.Context, key, value string, updatedBy uuid.UUID, at time.Time) error {
	res := r.db.WithContext(ctx).Model(&entity.SystemSetting{}).
		Where("setting_key = ?", key).
		Updates(map[string]any{
			"setting_value": value,
			"updated_by":    updatedBy,
			"updated_at":    at,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "setting")
	}
	return nil
}
