package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"anoa.com/notevault/internal/entity"
	statDto "anoa.com/notevault/internal/modules/stat/dto"
	"anoa.com/notevault/internal/modules/user/dto"
	"anoa.com/notevault/internal/modules/user/repository"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/logger"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
)

var errInvalidCredentials = fmt.Errorf("invalid credentials: %w", apperror.ErrUnauthorized)

// SearchTokenIssuer hands out search-only keys scoped to what a role may see.
type SearchTokenIssuer interface {
	GenerateSearchToken(role entity.Role) (string, error)
}

type StatsProvider interface {
	UserStats(ctx context.Context, userID uuid.UUID) (*statDto.UserStats, error)
}

type Profile struct {
	dto.UserResponse
	Stats *statDto.UserStats `json:"stats"`
}

type Config struct {
	JWTSecret string
	JWTTTL    time.Duration
}

type UserService interface {
	Register(ctx context.Context, input dto.RegisterInput) (*dto.UserResponse, error)
	Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error)
	Profile(ctx context.Context, userID uuid.UUID) (*Profile, error)
	UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*dto.UserResponse, error)
	ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error
}

type userService struct {
	repo     repository.UserRepository
	stats    StatsProvider
	search   SearchTokenIssuer
	cfg      Config
	log      *logger.Logger
	hashCost int
	now      func() time.Time
}

// NewUserService builds the account service. search may be nil.
func NewUserService(repo repository.UserRepository, stats StatsProvider, search SearchTokenIssuer, cfg Config, log *logger.Logger) UserService {
	if cfg.JWTTTL <= 0 {
		cfg.JWTTTL = 24 * time.Hour
	}
	return &userService{
		repo:     repo,
		stats:    stats,
		search:   search,
		cfg:      cfg,
		log:      log,
		hashCost: bcrypt.DefaultCost,
		now:      time.Now,
	}
}

func (s *userService) Register(ctx context.Context, input dto.RegisterInput) (*dto.UserResponse, error) {
	email := strings.ToLower(strings.TrimSpace(input.Email))
	username := strings.TrimSpace(input.Username)

	if _, err := s.repo.FindByEmail(ctx, email); err == nil {
		return nil, fmt.Errorf("email already registered: %w", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}
	if _, err := s.repo.FindByLogin(ctx, username); err == nil {
		return nil, fmt.Errorf("username already taken: %w", apperror.ErrConflict)
	} else if !errors.Is(err, apperror.ErrNotFound) {
		return nil, err
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.Password), s.hashCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := &entity.User{
		Email:        email,
		Username:     username,
		PasswordHash: string(hashed),
		FirstName:    strings.TrimSpace(input.FirstName),
		LastName:     strings.TrimSpace(input.LastName),
		StudentID:    input.StudentID,
		CollegeName:  input.CollegeName,
		Department:   input.Department,
		Semester:     input.Semester,
		Phone:        input.Phone,
		Role:         entity.RoleStudent,
		IsActive:     true,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.Info("user registered", "user_id", user.ID, "username", user.Username)

	res := dto.ToUserResponse(user)
	return &res, nil
}

func (s *userService) Login(ctx context.Context, input dto.LoginInput) (*dto.AuthResponse, error) {
	user, err := s.repo.FindByLogin(ctx, strings.TrimSpace(input.Login))
	if err != nil {
		if errors.Is(err, apperror.ErrNotFound) {
			return nil, errInvalidCredentials
		}
		return nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.Password)); err != nil {
		return nil, errInvalidCredentials
	}
	if !user.IsActive {
		return nil, fmt.Errorf("account is deactivated: %w", apperror.ErrForbidden)
	}

	now := s.now()
	if err := s.repo.Update(ctx, user.ID, map[string]any{"last_login": now}); err != nil {
		return nil, err
	}
	user.LastLogin = &now

	return s.buildAuthResponse(user, now)
}

func (s *userService) buildAuthResponse(user *entity.User, now time.Time) (*dto.AuthResponse, error) {
	claims := jwt.RegisteredClaims{
		Subject:   user.ID.String(),
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(s.cfg.JWTTTL)),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	signed, err := token.SignedString([]byte(s.cfg.JWTSecret))
	if err != nil {
		return nil, fmt.Errorf("failed to sign token: %w", err)
	}

	res := &dto.AuthResponse{
		AccessToken: signed,
		TokenType:   "Bearer",
		ExpiresIn:   int64(s.cfg.JWTTTL.Seconds()),
		User:        dto.ToUserResponse(user),
	}

	if s.search != nil {
		searchToken, err := s.search.GenerateSearchToken(user.Role)
		if err != nil {
			s.log.Warn("failed to generate search token", "user_id", user.ID, "error", err)
		} else {
			res.SearchToken = searchToken
		}
	}

	return res, nil
}

func (s *userService) Profile(ctx context.Context, userID uuid.UUID) (*Profile, error) {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}

	stats, err := s.stats.UserStats(ctx, userID)
	if err != nil {
		return nil, err
	}

	return &Profile{UserResponse: dto.ToUserResponse(user), Stats: stats}, nil
}

func (s *userService) UpdateProfile(ctx context.Context, userID uuid.UUID, input dto.UpdateProfileInput) (*dto.UserResponse, error) {
	fields := map[string]any{}
	if input.FirstName != nil {
		fields["first_name"] = strings.TrimSpace(*input.FirstName)
	}
	if input.LastName != nil {
		fields["last_name"] = strings.TrimSpace(*input.LastName)
	}
	if input.StudentID != nil {
		fields["student_id"] = *input.StudentID
	}
	if input.CollegeName != nil {
		fields["college_name"] = *input.CollegeName
	}
	if input.Department != nil {
		fields["department"] = *input.Department
	}
	if input.Semester != nil {
		fields["semester"] = *input.Semester
	}
	if input.Phone != nil {
		fields["phone"] = *input.Phone
	}

	if len(fields) > 0 {
		fields["updated_at"] = s.now()
		if err := s.repo.Update(ctx, userID, fields); err != nil {
			return nil, err
		}
	}

	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return nil, err
	}
	res := dto.ToUserResponse(user)
	return &res, nil
}

func (s *userService) ChangePassword(ctx context.Context, userID uuid.UUID, input dto.ChangePasswordInput) error {
	user, err := s.repo.FindByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(input.CurrentPassword)); err != nil {
		return fmt.Errorf("current password is incorrect: %w", apperror.ErrUnauthorized)
	}
	if len(input.NewPassword) < 6 {
		return fmt.Errorf("new password must be at least 6 characters: %w", apperror.ErrInvalidInput)
	}

	hashed, err := bcrypt.GenerateFromPassword([]byte(input.NewPassword), s.hashCost)
	if err != nil {
		return fmt.Errorf("failed to hash password: %w", err)
	}

	return s.repo.Update(ctx, userID, map[string]any{
		"password_hash": string(hashed),
		"updated_at":    s.now(),
	})
}
