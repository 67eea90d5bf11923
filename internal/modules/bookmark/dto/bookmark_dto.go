package dto

import (
	"time"

	"anoa.com/notevault/internal/entity"
	noteDto "anoa.com/notevault/internal/modules/note/dto"
	"github.com/google/uuid"
)

type BookmarkResponse struct {
	ID           uuid.UUID            `json:"id"`
	NoteID       uuid.UUID            `json:"note_id"`
	BookmarkedAt time.Time            `json:"bookmarked_at"`
	Note         *noteDto.NoteResponse `json:"note,omitempty"`
}

func ToBookmarkResponse(b *entity.Bookmark) BookmarkResponse {
	res := BookmarkResponse{
		ID:           b.ID,
		NoteID:       b.NoteID,
		BookmarkedAt: b.CreatedAt,
	}
	if b.Note != nil {
		note := noteDto.ToNoteResponse(b.Note)
		res.Note = &note
	}
	return res
}
