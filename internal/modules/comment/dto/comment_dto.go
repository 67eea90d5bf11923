package dto

import (
	"time"

	"anoa.com/notevault/internal/entity"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	"github.com/google/uuid"
)

type CommentRequest struct {
	Comment string `json:"comment" binding:"required"`
}

type CommentResponse struct {
	ID        uuid.UUID           `json:"id"`
	NoteID    uuid.UUID           `json:"note_id"`
	Comment   string              `json:"comment"`
	User      *userDto.PublicUser `json:"user,omitempty"`
	CreatedAt time.Time           `json:"created_at"`
	UpdatedAt time.Time           `json:"updated_at"`
}

func ToCommentResponse(c *entity.Comment) CommentResponse {
	res := CommentResponse{
		ID:        c.ID,
		NoteID:    c.NoteID,
		Comment:   c.Comment,
		CreatedAt: c.CreatedAt,
		UpdatedAt: c.UpdatedAt,
	}
	if c.User != nil {
		u := userDto.ToPublicUser(c.User)
		res.User = &u
	}
	return res
}
