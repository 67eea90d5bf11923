package bootstrap

import (
	"errors"
	"fmt"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/logger"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&entity.User{},
		&entity.Subject{},
		&entity.Note{},
		&entity.DownloadLog{},
		&entity.Bookmark{},
		&entity.Comment{},
		&entity.SystemSetting{},
		&entity.Notification{},
	)
}

// DefaultSettings are created on boot when missing. Existing values are never overwritten.
var DefaultSettings = []entity.SystemSetting{
	{Key: "site_name", Value: "Note Vault", Description: "Name shown in the client header"},
	{Key: "max_upload_mb", Value: "10", Description: "Largest accepted upload in megabytes"},
	{Key: "require_approval", Value: "true", Description: "New uploads wait for moderation"},
}

func SeedSettings(db *gorm.DB) error {
	for _, setting := range DefaultSettings {
		var count int64
		if err := db.Model(&entity.SystemSetting{}).
			Where("setting_key = ?", setting.Key).
			Count(&count).Error; err != nil {
			return err
		}

		if count == 0 {
			s := setting
			if err := db.Create(&s).Error; err != nil {
				return err
			}
		}
	}
	return nil
}

func SeedAdminUser(db *gorm.DB, log *logger.Logger, email, password string) error {
	if email == "" || password == "" {
		return errors.New("admin email and password are required")
	}

	var count int64
	if err := db.Model(&entity.User{}).
		Where("email = ?", email).
		Count(&count).Error; err != nil {
		return err
	}

	if count > 0 {
		log.Debug("admin user already exists, skipping seed", "email", email)
		return nil
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return fmt.Errorf("failed to hash admin password: %w", err)
	}

	admin := entity.User{
		Email:         email,
		Username:      "admin",
		PasswordHash:  string(hashed),
		FirstName:     "System",
		LastName:      "Administrator",
		Role:          entity.RoleAdmin,
		IsActive:      true,
		EmailVerified: true,
	}
	if err := db.Create(&admin).Error; err != nil {
		return err
	}

	log.Info("admin user seeded", "email", email)
	return nil
}
