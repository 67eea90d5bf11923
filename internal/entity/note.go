package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Note is an uploaded document. It starts pending (IsApproved=false) and only
// ever moves to approved; rejection and deletion remove the row.
type Note struct {
	ID               uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title            string     `gorm:"size:200;not null" json:"title"`
	Description      string     `gorm:"type:text" json:"description"`
	FileRef          string     `gorm:"size:500;not null" json:"-"`
	FileName         string     `gorm:"size:255;not null" json:"file_name"`
	OriginalFilename string     `gorm:"size:255;not null" json:"original_filename"`
	FileSize         int64      `gorm:"not null" json:"file_size"`
	FileType         string     `gorm:"size:10;not null" json:"file_type"`
	PageCount        int        `gorm:"not null" json:"page_count"`
	SubjectID        *uuid.UUID `gorm:"type:uuid;index" json:"subject_id"`
	Subject          *Subject   `gorm:"constraint:OnDelete:SET NULL" json:"subject,omitempty"`
	UploadedBy       uuid.UUID  `gorm:"type:uuid;not null;index" json:"uploaded_by"`
	Uploader         *User      `gorm:"foreignKey:UploadedBy" json:"uploader,omitempty"`
	Semester         string     `gorm:"size:20;index" json:"semester"`
	AcademicYear     string     `gorm:"size:20" json:"academic_year"`
	Tags             string     `gorm:"size:500" json:"-"`
	DownloadCount    int64      `gorm:"not null" json:"download_count"`
	IsApproved       bool       `gorm:"not null;index" json:"is_approved"`
	ApprovedBy       *uuid.UUID `gorm:"type:uuid" json:"approved_by"`
	Approver         *User      `gorm:"foreignKey:ApprovedBy" json:"-"`
	ApprovedAt       *time.Time `json:"approved_at"`
	IsPublic         bool       `gorm:"not null;index" json:"is_public"`
	CreatedAt        time.Time  `gorm:"index" json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

func (n *Note) BeforeCreate(tx *gorm.DB) (err error) {
	if n.ID == uuid.Nil {
		n.ID, err = uuid.NewV7()
	}
	return
}

// TagList splits the stored comma separated tags. Blank entries are dropped.
func (n *Note) TagList() []string {
	return SplitTags(n.Tags)
}

// Listed reports whether the note may appear in public listings and be downloaded.
func (n *Note) Listed() bool {
	return n.IsApproved && n.IsPublic
}

// Fetchable is the single-note visibility rule for ordinary callers. It is
// deliberately wider than Listed: only a note that is both private and
// unapproved is hidden.
func (n *Note) Fetchable() bool {
	return n.IsPublic || n.IsApproved
}

func SplitTags(s string) []string {
	out := []string{}
	for _, t := range strings.Split(s, ",") {
		if t = strings.TrimSpace(t); t != "" {
			out = append(out, t)
		}
	}
	return out
}

func JoinTags(tags []string) string {
	return strings.Join(SplitTags(strings.Join(tags, ",")), ",")
}
