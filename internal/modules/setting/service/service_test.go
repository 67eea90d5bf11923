package setting

import (
	"context"
	"errors"
	"testing"
	"time"

	"anoa.com/notevault/internal/bootstrap"
	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/setting/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/apperror"
)

func TestUpdateSetting(t *testing.T) {
	db := testutil.DB(t)
	if err := bootstrap.SeedSettings(db); err != nil {
		t.Fatalf("SeedSettings: %v", err)
	}
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))

	svc := NewSettingService(repository.NewSettingRepository(db)).(*settingService)
	fixed := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }
	ctx := context.Background()

	all, err := svc.ListSettings(ctx)
	if err != nil {
		t.Fatalf("ListSettings: %v", err)
	}
	if len(all) != len(bootstrap.DefaultSettings) || all[0].Key != "max_upload_mb" {
		t.Fatalf("settings: got=%+v", all)
	}

	res, err := svc.UpdateSetting(ctx, "site_name", "Campus Notes", admin.ID)
	if err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}
	if res.Value != "Campus Notes" || res.UpdatedBy == nil || *res.UpdatedBy != admin.ID || !res.UpdatedAt.Equal(fixed) {
		t.Fatalf("updated: got=%+v", res)
	}

	if _, err := svc.UpdateSetting(ctx, "site_name", "  ", admin.ID); !errors.Is(err, apperror.ErrInvalidInput) {
		t.Fatalf("blank value: got=%v want=%v", err, apperror.ErrInvalidInput)
	}
	if _, err := svc.UpdateSetting(ctx, "no_such_key", "1", admin.ID); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("unknown key: got=%v want=%v", err, apperror.ErrNotFound)
	}
}

func TestSeedSettingsKeepsExistingValues(t *testing.T) {
	db := testutil.DB(t)
	if err := bootstrap.SeedSettings(db); err != nil {
		t.Fatalf("SeedSettings: %v", err)
	}
	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))
	svc := NewSettingService(repository.NewSettingRepository(db))
	if _, err := svc.UpdateSetting(context.Background(), "max_upload_mb", "25", admin.ID); err != nil {
		t.Fatalf("UpdateSetting: %v", err)
	}

	if err := bootstrap.SeedSettings(db); err != nil {
		t.Fatalf("SeedSettings again: %v", err)
	}
	var s entity.SystemSetting
	if err := db.Where("setting_key = ?", "max_upload_mb").First(&s).Error; err != nil {
		t.Fatalf("load: %v", err)
	}
	if s.Value != "25" {
		t.Fatalf("value: got=%q want=%q", s.Value, "25")
	}
}
