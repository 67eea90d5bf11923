package handler

import (
	"net/http"

	"anoa.com/notevault/internal/modules/setting/dto"
	setting "anoa.com/notevault/internal/modules/setting/service"
	"anoa.com/notevault/pkg/response"
	"anoa.com/notevault/pkg/validator"
	"github.com/gin-gonic/gin"
)

type SettingHandler struct {
	service setting.SettingService
}

func NewSettingHandler(service setting.SettingService) *SettingHandler {
	return &SettingHandler{service: service}
}

func (h *SettingHandler) GetSettings(c *gin.Context) {
	settings, err := h.service.ListSettings(c.Request.Context())
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"data": settings})
}

func (h *SettingHandler) UpdateSetting(c *gin.Context) {
	adminID, err := response.GetUserID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	var req dto.UpdateSettingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}

	res, err := h.service.UpdateSetting(c.Request.Context(), c.Param("key"), req.Value, adminID)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "setting updated successfully", "setting": res})
}
