package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SystemSetting struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Key         string     `gorm:"column:setting_key;size:100;uniqueIndex;not null" json:"key"`
	Value       string     `gorm:"column:setting_value;type:text" json:"value"`
	Description string     `gorm:"type:text" json:"description"`
	UpdatedBy   *uuid.UUID `gorm:"type:uuid" json:"updated_by"`
	UpdatedAt   time.Time  `json:"updated_at"`
}

func (SystemSetting) TableName() string {
	return "system_settings"
}

func (s *SystemSetting) BeforeCreate(tx *gorm.DB) (err error) {
	if s.ID == uuid.Nil {
		s.ID, err = uuid.NewV7()
	}
	return
}
