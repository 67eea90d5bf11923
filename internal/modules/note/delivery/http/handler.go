package handler

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"

	"anoa.com/notevault/internal/entity"
	catalog "anoa.com/notevault/internal/modules/catalog/service"
	"anoa.com/notevault/internal/modules/note/dto"
	noteService "anoa.com/notevault/internal/modules/note/service"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/ratelimiter"
	"anoa.com/notevault/pkg/response"
	"anoa.com/notevault/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

type NoteHandler struct {
	noteService    noteService.NoteService
	catalogService catalog.CatalogService
}

func NewNoteHandler(noteService noteService.NoteService, catalogService catalog.CatalogService) *NoteHandler {
	return &NoteHandler{
		noteService:    noteService,
		catalogService: catalogService,
	}
}

func (h *NoteHandler) UploadNote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "no file provided"})
		return
	}

	var input dto.SubmitNoteInput
	if err := c.ShouldBind(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "failed to read uploaded file"})
		return
	}
	defer file.Close()

	note, err := h.noteService.Submit(c.Request.Context(), userID, input, commonDto.UploadFile{
		Reader:   file,
		FileName: fileHeader.Filename,
		Size:     fileHeader.Size,
	})
	if err != nil {
		var rlErr *ratelimiter.RateLimitError
		if errors.As(err, &rlErr) {
			c.Header("Retry-After", strconv.Itoa(int(rlErr.RetryAfter.Seconds())))
		}
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusCreated, gin.H{"message": "note uploaded successfully", "note": note})
}

func (h *NoteHandler) ListNotes(c *gin.Context) {
	var query dto.NoteListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.catalogService.ListPublicNotes(c.Request.Context(), query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *NoteHandler) ListMyNotes(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var query commonDto.PageQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.catalogService.ListMyNotes(c.Request.Context(), userID, query)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *NoteHandler) GetNote(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	viewer := noteService.Viewer{
		ID:   response.OptionalUserID(c),
		Role: entity.Role(c.GetString("user_role")),
	}

	note, err := h.noteService.Get(c.Request.Context(), id, viewer)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"note": note})
}

func (h *NoteHandler) DownloadNote(c *gin.Context) {
	userID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return
	}

	d, err := h.noteService.Download(c.Request.Context(), id, userID, noteService.ClientMeta{
		IPAddress: c.ClientIP(),
		UserAgent: c.Request.UserAgent(),
	})
	if err != nil {
		response.ResponseError(c, err)
		return
	}
	defer d.Content.Close()

	size := d.Size
	if size <= 0 {
		size = -1
	}
	c.DataFromReader(http.StatusOK, size, d.ContentType, d.Content, map[string]string{
		"Content-Disposition": fmt.Sprintf("attachment; filename=%q", d.FileName),
	})
}
