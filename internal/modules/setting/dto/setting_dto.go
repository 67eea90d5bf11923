package dto

import (
	"time"

	"anoa.com/notevault/internal/entity"
	"github.com/google/uuid"
)

type UpdateSettingRequest struct {
	Value string `json:"value" binding:"required"`
}

type SettingResponse struct {
	Key         string     `json:"key"`
	Value       string     `json:"value"`
	Description string     `json:"description"`
	UpdatedBy   *uuid.UUID `json:"updated_by,omitempty"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func ToSettingResponse(s *entity.SystemSetting) SettingResponse {
	return SettingResponse{
		Key:         s.Key,
		Value:       s.Value,
		Description: s.Description,
		UpdatedBy:   s.UpdatedBy,
		UpdatedAt:   s.UpdatedAt,
	}
}
