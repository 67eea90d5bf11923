package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleAdmin   Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleAdmin:
		return true
	}
	return false
}

// CanModerate gates approval, rejection, deletion and the admin surface.
func (r Role) CanModerate() bool {
	return r == RoleAdmin || r == RoleTeacher
}

type User struct {
	ID             uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Email          string     `gorm:"size:120;uniqueIndex;not null" json:"email"`
	Username       string     `gorm:"size:80;uniqueIndex;not null" json:"username"`
	PasswordHash   string     `gorm:"size:255;not null" json:"-"`
	FirstName      string     `gorm:"size:50;not null" json:"first_name"`
	LastName       string     `gorm:"size:50;not null" json:"last_name"`
	StudentID      *string    `gorm:"size:20" json:"student_id,omitempty"`
	CollegeName    *string    `gorm:"size:200" json:"college_name,omitempty"`
	Department     *string    `gorm:"size:100" json:"department,omitempty"`
	Semester       *int       `json:"semester,omitempty"`
	Phone          *string    `gorm:"size:15" json:"phone,omitempty"`
	Role           Role       `gorm:"size:20;not null;index" json:"user_type"`
	IsActive       bool       `gorm:"not null;index" json:"is_active"`
	EmailVerified  bool       `gorm:"not null" json:"email_verified"`
	ProfilePicture *string    `gorm:"size:255" json:"profile_picture,omitempty"`
	CreatedAt      time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

func (u *User) BeforeCreate(tx *gorm.DB) (err error) {
	if u.ID == uuid.Nil {
		u.ID, err = uuid.NewV7()
	}
	if u.Role == "" {
		u.Role = RoleStudent
	}
	return
}

func (u *User) FullName() string {
	switch {
	case u.FirstName == "":
		return u.LastName
	case u.LastName == "":
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
