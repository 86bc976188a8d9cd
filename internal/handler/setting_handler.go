package handler

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/prepbox/examsim-backend/internal/model"
	"github.com/prepbox/examsim-backend/internal/response"
	"github.com/prepbox/examsim-backend/internal/session"
	"github.com/prepbox/examsim-backend/internal/validator"
)

// SettingHandler exposes the runtime exam configuration.
type SettingHandler struct {
	controller *session.Controller
}

// NewSettingHandler creates a new SettingHandler.
func NewSettingHandler(controller *session.Controller) *SettingHandler {
	return &SettingHandler{controller: controller}
}

// GetSettings godoc
// GET /api/v1/settings
func (h *SettingHandler) GetSettings(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Settings())
}

// UpdateSettings godoc
// PUT /api/v1/settings
// Changing the duration while the timer is armed re-seeds the countdown
// to the new full duration.
func (h *SettingHandler) UpdateSettings(c *gin.Context) {
	var req model.UpdateSettingsRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	updated := h.controller.UpdateSettings(session.Settings{
		QuestionCount: req.QuestionCount,
		DurationSec:   req.DurationSec,
	})
	response.Success(c, http.StatusOK, updated)
}

// parsePositiveInt parses a query parameter, falling back on absent,
// malformed, or non-positive values.
func parsePositiveInt(raw string, fallback int) int {
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		return fallback
	}
	return n
}
