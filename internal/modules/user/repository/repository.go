package repository

import (
	"context"
	"strings"

	"anoa.com/notevault/internal/entity"
	"anoa.com/notevault/pkg/apperror"
	"anoa.com/notevault/pkg/pagination"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// UserFilter narrows user listings. Search matches first name, last name and
// username; SearchEmail widens it to the email column as well.
type UserFilter struct {
	Search      string
	SearchEmail bool
	Role        entity.Role
	ActiveOnly  bool
	OrderByName bool
}

type UserRepository interface {
	Create(ctx context.Context, user *entity.User) error
	FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error)
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByLogin(ctx context.Context, identifier string) (*entity.User, error)
	Update(ctx context.Context, id uuid.UUID, fields map[string]any) error
	List(ctx context.Context, filter UserFilter, p pagination.Params) ([]entity.User, int64, error)
	Count(ctx context.Context) (int64, error)
}

type userRepository struct {
	db *gorm.DB
}

func NewUserRepository(db *gorm.DB) UserRepository {
	return &userRepository{db: db}
}

func (r *userRepository) Create(ctx context.Context, user *entity.User) error {
	return apperror.FromGorm(r.db.WithContext(ctx).Create(user).Error, "user")
}

func (r *userRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).First(&user, "id = ?", id).Error; err != nil {
		return nil, apperror.FromGorm(err, "user")
	}
	return &user, nil
}

func (r *userRepository) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	var user entity.User
	if err := r.db.WithContext(ctx).Where("LOWER(email) = ?", strings.ToLower(email)).First(&user).Error; err != nil {
		return nil, apperror.FromGorm(err, "user")
	}
	return &user, nil
}

// FindByLogin accepts either an email address or a username.
func (r *userRepository) FindByLogin(ctx context.Context, identifier string) (*entity.User, error) {
	var user entity.User
	err := r.db.WithContext(ctx).
		Where("LOWER(email) = ? OR username = ?", strings.ToLower(identifier), identifier).
		First(&user).Error
	if err != nil {
		return nil, apperror.FromGorm(err, "user")
	}
	return &user, nil
}

func (r *userRepository) Update(ctx context.Context, id uuid.UUID, fields map[string]any) error {
	res := r.db.WithContext(ctx).Model(&entity.User{}).Where("id = ?", id).Updates(fields)
	if res.Error != nil {
		return apperror.FromGorm(res.Error, "user")
	}
	if res.RowsAffected == 0 {
		return apperror.FromGorm(gorm.ErrRecordNotFound, "user")
	}
	return nil
}

func (r *userRepository) List(ctx context.Context, filter UserFilter, p pagination.Params) ([]entity.User, int64, error) {
	query := r.db.WithContext(ctx).Model(&entity.User{})

	if filter.Search != "" {
		like := "%" + strings.ToLower(filter.Search) + "%"
		clause := "LOWER(first_name) LIKE ? OR LOWER(last_name) LIKE ? OR LOWER(username) LIKE ?"
		args := []any{like, like, like}
		if filter.SearchEmail {
			clause += " OR LOWER(email) LIKE ?"
			args = append(args, like)
		}
		query = query.Where(clause, args...)
	}
	if filter.Role != "" {
		query = query.Where("role = ?", filter.Role)
	}
	if filter.ActiveOnly {
		query = query.Where("is_active = ?", true)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if filter.OrderByName {
		query = query.Order("first_name ASC").Order("last_name ASC")
	} else {
		query = query.Order("created_at DESC")
	}

	var users []entity.User
	if err := query.Offset(p.Offset()).Limit(p.Limit).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

func (r *userRepository) Count(ctx context.Context) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&entity.User{}).Count(&count).Error
	return count, err
}
