package admin

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/internal/modules/admin/dto"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	userRepo "anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/logger"
)

type AdminService interface {
	ToggleUserStatus(ctx context.Context, actorID, targetID uuid.UUID) (*dto.UserStatusResponse, error)
}

type adminService struct {
	userRepo userRepo.UserRepository
	log      *logger.Logger
}

func NewAdminService(userRepo userRepo.UserRepository, log *logger.Logger) AdminService {
	if log == nil {
		log = logger.Nop()
	}
	return &adminService{userRepo: userRepo, log: log}
}

// ToggleUserStatus flips is_active. Admin accounts cannot be toggled by anyone.
func (s *adminService) ToggleUserStatus(ctx context.Context, actorID, targetID uuid.UUID) (*dto.UserStatusResponse, error) {
	user, err := s.userRepo.FindByID(ctx, targetID)
	if err != nil {
		return nil, err
	}
	if user.Role == entity.RoleAdmin {
		return nil, fmt.Errorf("cannot modify admin user status: %w", apperror.ErrForbidden)
	}

	active := !user.IsActive
	if err := s.userRepo.Update(ctx, targetID, map[string]any{"is_active": active}); err != nil {
		return nil, err
	}
	user.IsActive = active

	status := "deactivated"
	if active {
		status = "activated"
	}
	s.log.Info("user status changed", "target_id", targetID, "actor_id", actorID, "status", status)

	res := userDto.ToUserResponse(user)
	return &dto.UserStatusResponse{
		Message: fmt.Sprintf("User %s successfully", status),
		User:    &res,
	}, nil
}
