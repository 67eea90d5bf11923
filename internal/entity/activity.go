package entity

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// DownloadLog is written once per successful download and never updated.
type DownloadLog struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID       uuid.UUID `gorm:"type:uuid;not null;index" json:"note_id"`
	Note         *Note     `json:"note,omitempty"`
	DownloadedBy uuid.UUID `gorm:"type:uuid;not null;index" json:"downloaded_by"`
	User         *User     `gorm:"foreignKey:DownloadedBy" json:"-"`
	DownloadDate time.Time `gorm:"not null;index" json:"download_date"`
	IPAddress    string    `gorm:"size:45" json:"ip_address"`
	UserAgent    string    `gorm:"type:text" json:"user_agent"`
}

func (d *DownloadLog) BeforeCreate(tx *gorm.DB) (err error) {
	if d.ID == uuid.Nil {
		d.ID, err = uuid.NewV7()
	}
	if d.DownloadDate.IsZero() {
		d.DownloadDate = time.Now()
	}
	return
}

type Bookmark struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_note" json:"user_id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_bookmark_user_note;index" json:"note_id"`
	Note      *Note     `json:"note,omitempty"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
}

func (b *Bookmark) BeforeCreate(tx *gorm.DB) (err error) {
	if b.ID == uuid.Nil {
		b.ID, err = uuid.NewV7()
	}
	return
}

type Comment struct {
	ID        uuid.UUID `gorm:"type:uuid;primaryKey" json:"id"`
	NoteID    uuid.UUID `gorm:"type:uuid;not null;index" json:"note_id"`
	UserID    uuid.UUID `gorm:"type:uuid;not null;index" json:"user_id"`
	User      *User     `json:"user,omitempty"`
	Comment   string    `gorm:"type:text;not null" json:"comment"`
	CreatedAt time.Time `gorm:"index" json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (c *Comment) BeforeCreate(tx *gorm.DB) (err error) {
	if c.ID == uuid.Nil {
		c.ID, err = uuid.NewV7()
	}
	return
}
