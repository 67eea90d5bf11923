package dto

import (
	"time"

	"github.com/google/uuid"
)

type CreateSubjectRequest struct {
	Name        string `json:"name" binding:"required,max=100"`
	Code        string `json:"code" binding:"required,max=20"`
	Description string `json:"description"`
	Department  string `json:"department" binding:"omitempty,max=100"`
	Semester    *int   `json:"semester" binding:"omitempty,min=1,max=14"`
}

type UpdateSubjectRequest struct {
	Name        *string `json:"name" binding:"omitempty,min=1,max=100"`
	Code        *string `json:"code" binding:"omitempty,min=1,max=20"`
	Description *string `json:"description"`
	Department  *string `json:"department" binding:"omitempty,max=100"`
	Semester    *int    `json:"semester" binding:"omitempty,min=1,max=14"`
}

type SubjectResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Code        string    `json:"code"`
	Description string    `json:"description"`
	Department  string    `json:"department"`
	Semester    *int      `json:"semester,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
