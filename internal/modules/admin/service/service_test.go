package admin

import (
	"context"
	"errors"
	"testing"

	"anoa.com/notevault/internal/entity"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/internal/testutil"
	"anoa.com/notevault/pkg/apperror"
	"github.com/google/uuid"
)

func TestToggleUserStatus(t *testing.T) {
	db := testutil.DB(t)
	users := userRepo.NewUserRepository(db)
	svc := NewAdminService(users, nil)
	ctx := context.Background()

	admin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))
	otherAdmin := testutil.SeedUser(t, db, testutil.WithRole(entity.RoleAdmin))
	student := testutil.SeedUser(t, db)

	res, err := svc.ToggleUserStatus(ctx, admin.ID, student.ID)
	if err != nil {
		t.Fatalf("ToggleUserStatus: %v", err)
	}
	if res.User.IsActive || res.Message != "User deactivated successfully" {
		t.Fatalf("deactivate: got=%+v", res)
	}
	stored, err := users.FindByID(ctx, student.ID)
	if err != nil || stored.IsActive {
		t.Fatalf("stored: active=%v err=%v", stored != nil && stored.IsActive, err)
	}

	res, err = svc.ToggleUserStatus(ctx, admin.ID, student.ID)
	if err != nil || !res.User.IsActive {
		t.Fatalf("reactivate: got=%+v err=%v", res, err)
	}

	if _, err := svc.ToggleUserStatus(ctx, admin.ID, otherAdmin.ID); !errors.Is(err, apperror.ErrForbidden) {
		t.Fatalf("toggle admin: got=%v want=%v", err, apperror.ErrForbidden)
	}
	if _, err := svc.ToggleUserStatus(ctx, admin.ID, uuid.New()); !errors.Is(err, apperror.ErrNotFound) {
		t.Fatalf("missing user: got=%v want=%v", err, apperror.ErrNotFound)
	}
}
