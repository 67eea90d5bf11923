package dto

import (
	"time"

	"anoa.com/notevault/internal/entity"
	"github.com/google/uuid"
)

type RegisterInput struct {
	Email       string  `json:"email" binding:"required,email"`
	Username    string  `json:"username" binding:"required,min=3,max=80"`
	Password    string  `json:"password" binding:"required,min=6"`
	FirstName   string  `json:"first_name" binding:"required,max=50"`
	LastName    string  `json:"last_name" binding:"required,max=50"`
	StudentID   *string `json:"student_id" binding:"omitempty,max=20"`
	CollegeName *string `json:"college_name" binding:"omitempty,max=200"`
	Department  *string `json:"department" binding:"omitempty,max=100"`
	Semester    *int    `json:"semester" binding:"omitempty,min=1,max=14"`
	Phone       *string `json:"phone" binding:"omitempty,max=15"`
}

type LoginInput struct {
	// Login is an email address or a username.
	Login    string `json:"login" binding:"required"`
	Password string `json:"password" binding:"required"`
}

type UpdateProfileInput struct {
	FirstName   *string `json:"first_name" binding:"omitempty,min=1,max=50"`
	LastName    *string `json:"last_name" binding:"omitempty,min=1,max=50"`
	StudentID   *string `json:"student_id" binding:"omitempty,max=20"`
	CollegeName *string `json:"college_name" binding:"omitempty,max=200"`
	Department  *string `json:"department" binding:"omitempty,max=100"`
	Semester    *int    `json:"semester" binding:"omitempty,min=1,max=14"`
	Phone       *string `json:"phone" binding:"omitempty,max=15"`
}

type ChangePasswordInput struct {
	CurrentPassword string `json:"current_password" binding:"required"`
	NewPassword     string `json:"new_password" binding:"required,min=6"`
}

type UserSearchQuery struct {
	Search  string `form:"search"`
	Role    string `form:"role" binding:"omitempty,oneof=student teacher admin"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1"`
}

type AuthResponse struct {
	AccessToken string       `json:"access_token"`
	TokenType   string       `json:"token_type"`
	ExpiresIn   int64        `json:"expires_in"`
	SearchToken string       `json:"search_token,omitempty"`
	User        UserResponse `json:"user"`
}

type UserResponse struct {
	ID             uuid.UUID   `json:"id"`
	Email          string      `json:"email"`
	Username       string      `json:"username"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	FullName       string      `json:"full_name"`
	StudentID      *string     `json:"student_id,omitempty"`
	CollegeName    *string     `json:"college_name,omitempty"`
	Department     *string     `json:"department,omitempty"`
	Semester       *int        `json:"semester,omitempty"`
	Phone          *string     `json:"phone,omitempty"`
	Role           entity.Role `json:"user_type"`
	IsActive       bool        `json:"is_active"`
	ProfilePicture *string     `json:"profile_picture,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
	LastLogin      *time.Time  `json:"last_login,omitempty"`
}

// PublicUser is the projection shown to other users.
type PublicUser struct {
	ID             uuid.UUID   `json:"id"`
	Username       string      `json:"username"`
	FirstName      string      `json:"first_name"`
	LastName       string      `json:"last_name"`
	FullName       string      `json:"full_name"`
	CollegeName    *string     `json:"college_name,omitempty"`
	Department     *string     `json:"department,omitempty"`
	Semester       *int        `json:"semester,omitempty"`
	Role           entity.Role `json:"user_type"`
	ProfilePicture *string     `json:"profile_picture,omitempty"`
	CreatedAt      time.Time   `json:"created_at"`
}

func ToUserResponse(u *entity.User) UserResponse {
	return UserResponse{
		ID:             u.ID,
		Email:          u.Email,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		StudentID:      u.StudentID,
		CollegeName:    u.CollegeName,
		Department:     u.Department,
		Semester:       u.Semester,
		Phone:          u.Phone,
		Role:           u.Role,
		IsActive:       u.IsActive,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
		LastLogin:      u.LastLogin,
	}
}

func ToPublicUser(u *entity.User) PublicUser {
	return PublicUser{
		ID:             u.ID,
		Username:       u.Username,
		FirstName:      u.FirstName,
		LastName:       u.LastName,
		FullName:       u.FullName(),
		CollegeName:    u.CollegeName,
		Department:     u.Department,
		Semester:       u.Semester,
		Role:           u.Role,
		ProfilePicture: u.ProfilePicture,
		CreatedAt:      u.CreatedAt,
	}
}

type PublicSearchQuery struct {
	Q       string `form:"q"`
	Page    int    `form:"page" binding:"omitempty,min=1"`
	PerPage int    `form:"per_page" binding:"omitempty,min=1"`
}
