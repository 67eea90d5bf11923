package service

import (
	"fmt"

	"anoa.com/notevault/internal/entity"
	noteDto "anoa.com/notevault/internal/modules/note/dto"
	"anoa.com/notevault/internal/modules/stat/dto"
)

func uploadActivities(notes []entity.Note) []dto.Activity {
	out := make([]dto.Activity, 0, len(notes))
	for i := range notes {
		n := noteDto.ToNoteResponse(&notes[i])
		out = append(out, dto.Activity{
			Type:        "upload",
			Date:        notes[i].CreatedAt,
			Note:        &n,
			Description: fmt.Sprintf("Uploaded %q", notes[i].Title),
		})
	}
	return out
}

func downloadActivities(logs []entity.DownloadLog) []dto.Activity {
	out := make([]dto.Activity, 0, len(logs))
	for _, l := range logs {
		a := dto.Activity{
			Type:        "download",
			Date:        l.DownloadDate,
			Description: `Downloaded "Unknown"`,
		}
		if l.Note != nil {
			n := noteDto.ToNoteResponse(l.Note)
			a.Note = &n
			a.Description = fmt.Sprintf("Downloaded %q", l.Note.Title)
		}
		out = append(out, a)
	}
	return out
}

// MergeActivity merges two feeds that are each ordered newest first into one
// feed ordered newest first. On equal timestamps entries from a come first.
func MergeActivity(a, b []dto.Activity) []dto.Activity {
	out := make([]dto.Activity, 0, len(a)+len(b))
	i, j := 0, 0
	for i < len(a) && j < len(b) {
		if b[j].Date.After(a[i].Date) {
			out = append(out, b[j])
			j++
			continue
		}
		out = append(out, a[i])
		i++
	}
	out = append(out, a[i:]...)
	return append(out, b[j:]...)
}
