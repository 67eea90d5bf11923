package setting

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"anoa.com/notevault/internal/modules/setting/dto"
	"anoa.com/notevault/internal/modules/setting/repository"
	"anoa.com/notevault/pkg/apperror"
)

type SettingService interface {
	ListSettings(ctx context.Context) ([]dto.SettingResponse, error)
	UpdateSetting(ctx context.Context, key, value string, adminID uuid.UUID) (*dto.SettingResponse, error)
}

type settingService struct {
	repo repository.SettingRepository
	now  func() time.Time
}

func NewSettingService(repo repository.SettingRepository) SettingService {
	return &settingService{repo: repo, now: time.Now}
}

func (s *settingService) ListSettings(ctx context.Context) ([]dto.SettingResponse, error) {
	settings, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}

	out := make([]dto.SettingResponse, 0, len(settings))
	for i := range settings {
		out = append(out, dto.ToSettingResponse(&settings[i]))
	}
	return out, nil
}

// UpdateSetting only changes keys that already exist; new keys come from the boot seed.
func (s *settingService) UpdateSetting(ctx context.Context, key, value string, adminID uuid.UUID) (*dto.SettingResponse, error) {
	if strings.TrimSpace(value) == "" {
		return nil, fmt.Errorf("value is required: %w", apperror.ErrInvalidInput)
	}

	if err := s.repo.UpdateValue(ctx, key, value, adminID, s.now()); err != nil {
		return nil, err
	}

	setting, err := s.repo.FindByKey(ctx, key)
	if err != nil {
		return nil, err
	}
	res := dto.ToSettingResponse(setting)
	return &res, nil
}
