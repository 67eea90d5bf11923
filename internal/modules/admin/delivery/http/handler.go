package handler

import (
	"net/http"

	adminService "anoa.com/notevault/internal/modules/admin/service"
	catalog "anoa.com/notevault/internal/modules/catalog/service"
	noteService "anoa.com/notevault/internal/modules/note/service"
	userDto "anoa.com/notevault/internal/modules/user/dto"
	commonDto "anoa.com/notevault/pkg/dto"
	"anoa.com/notevault/pkg/response"
	"anoa.com/notevault/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
)

// AdminHandler serves the moderation surface. Dashboard, subject and setting
// routes are mounted from their own handlers under the same group.
type AdminHandler struct {
	adminService   adminService.AdminService
	catalogService catalog.CatalogService
	noteService    noteService.NoteService
}

func NewAdminHandler(
	adminService adminService.AdminService,
	catalogService catalog.CatalogService,
	noteService noteService.NoteService,
) *AdminHandler {
	return &AdminHandler{
		adminService:   adminService,
		catalogService: catalogService,
		noteService:    noteService,
	}
}

func (h *AdminHandler) GetAllUsers(c *gin.Context) {
	var q userDto.UserSearchQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.catalogService.ListUsers(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) ToggleUserStatus(c *gin.Context) {
	actorID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	targetID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid user id"})
		return
	}

	res, err := h.adminService.ToggleUserStatus(c.Request.Context(), actorID, targetID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) GetPendingNotes(c *gin.Context) {
	var q commonDto.PageQuery
	if err := c.ShouldBindQuery(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.catalogService.ListPendingNotes(c.Request.Context(), q)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, res)
}

func (h *AdminHandler) ApproveNote(c *gin.Context) {
	adminID, noteID, ok := h.moderationTarget(c)
	if !ok {
		return
	}

	note, err := h.noteService.Approve(c.Request.Context(), noteID, adminID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note approved successfully", "note": note})
}

func (h *AdminHandler) RejectNote(c *gin.Context) {
	adminID, noteID, ok := h.moderationTarget(c)
	if !ok {
		return
	}

	if err := h.noteService.Reject(c.Request.Context(), noteID, adminID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note rejected and deleted successfully"})
}

func (h *AdminHandler) DeleteNote(c *gin.Context) {
	adminID, noteID, ok := h.moderationTarget(c)
	if !ok {
		return
	}

	if err := h.noteService.Delete(c.Request.Context(), noteID, adminID); err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Note deleted successfully"})
}

func (h *AdminHandler) moderationTarget(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return uuid.Nil, uuid.Nil, false
	}

	noteID, err := uuid.Parse(c.Param("id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "invalid note id"})
		return uuid.Nil, uuid.Nil, false
	}

	return adminID, noteID, true
}
