package admin

import (
	"strings"

	"github.com/baguri-ro/baguri-api/internal/http/response"

	"github.com/gin-gonic/gin"
)

// GetSetting returns one settings document by key.
func (h *Handler) GetSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "setting key required", nil)
		return
	}

	value, err := h.SettingService.GetByKey(key)
	if err != nil {
		respondError(c, response.CodeInternal, "setting fetch failed", err)
		return
	}
	response.Success(c, gin.H{"key": key, "value": value})
}

// UpdateSetting replaces one settings document.
func (h *Handler) UpdateSetting(c *gin.Context) {
	key := strings.TrimSpace(c.Param("key"))
	if key == "" {
		respondError(c, response.CodeBadRequest, "setting key required", nil)
		return
	}
	var value map[string]interface{}
	if err := c.ShouldBindJSON(&value); err != nil {
		respondError(c, response.CodeBadRequest, "bad request", err)
		return
	}

	updated, err := h.SettingService.Update(key, value)
	if err != nil {
		respondError(c, response.CodeBadRequest, err.Error(), nil)
		return
	}

	requestLog(c).Infow("setting_updated", "key", key)
	response.Success(c, gin.H{"key": key, "value": updated})
}
