package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/prepbox/examsim-backend/internal/model"
	"github.com/prepbox/examsim-backend/internal/response"
	"github.com/prepbox/examsim-backend/internal/session"
	"github.com/prepbox/examsim-backend/internal/validator"
)

// SessionHandler maps the view layer's user intents onto the session
// state machine. Intents that the state machine rejects (blank login,
// out-of-phase submit, answers while the timer is unarmed) return the
// unchanged state, mirroring a UI that disables those controls.
type SessionHandler struct {
	controller *session.Controller
}

// NewSessionHandler creates a new SessionHandler.
func NewSessionHandler(controller *session.Controller) *SessionHandler {
	return &SessionHandler{controller: controller}
}

// GetState godoc
// GET /api/v1/session
// Returns the current phase view.
func (h *SessionHandler) GetState(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.State(c.Request.Context()))
}

// Login godoc
// POST /api/v1/session/login
func (h *SessionHandler) Login(c *gin.Context) {
	var req model.LoginRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK, h.controller.Login(c.Request.Context(), req.Username))
}

// Logout godoc
// POST /api/v1/session/logout
func (h *SessionHandler) Logout(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Logout(c.Request.Context()))
}

// StartExam godoc
// POST /api/v1/session/exam/start
// Samples a fresh question subset; also serves "restart" from result.
func (h *SessionHandler) StartExam(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.StartExam(c.Request.Context()))
}

// StartTimer godoc
// POST /api/v1/session/exam/timer/start
func (h *SessionHandler) StartTimer(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.StartTimer(c.Request.Context()))
}

// SelectAnswer godoc
// POST /api/v1/session/exam/answer
func (h *SessionHandler) SelectAnswer(c *gin.Context) {
	var req model.AnswerRequest
	if fields := validator.Bind(c, &req); fields != nil {
		response.FailWithFields(c, http.StatusBadRequest, response.ErrValidation, fields)
		return
	}

	response.Success(c, http.StatusOK,
		h.controller.SelectAnswer(c.Request.Context(), req.QuestionID, req.Option))
}

// Submit godoc
// POST /api/v1/session/exam/submit
func (h *SessionHandler) Submit(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Submit(c.Request.Context()))
}

// Review godoc
// POST /api/v1/session/review
func (h *SessionHandler) Review(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Review(c.Request.Context()))
}

// Dashboard godoc
// POST /api/v1/session/dashboard
func (h *SessionHandler) Dashboard(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Dashboard(c.Request.Context()))
}

// Progress godoc
// GET /api/v1/session/progress
// Transitions into the read-only progress view with owner aggregates.
func (h *SessionHandler) Progress(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.Progress(c.Request.Context()))
}

// ToggleTheme godoc
// POST /api/v1/session/theme
func (h *SessionHandler) ToggleTheme(c *gin.Context) {
	response.Success(c, http.StatusOK, h.controller.ToggleTheme(c.Request.Context()))
}

// ListAttempts godoc
// GET /api/v1/session/attempts?page=&per_page=
// Returns the persisted attempt history, most recent first.
func (h *SessionHandler) ListAttempts(c *gin.Context) {
	attempts, err := h.controller.Attempts(c.Request.Context())
	if err != nil {
		response.Fail(c, http.StatusInternalServerError, response.ErrInternal)
		return
	}

	// Most recent first.
	for i, j := 0, len(attempts)-1; i < j; i, j = i+1, j-1 {
		attempts[i], attempts[j] = attempts[j], attempts[i]
	}

	page := parsePositiveInt(c.Query("page"), 1)
	perPage := parsePositiveInt(c.Query("per_page"), 10)

	total := len(attempts)
	start := (page - 1) * perPage
	if start > total {
		start = total
	}
	end := start + perPage
	if end > total {
		end = total
	}

	response.SuccessWithPagination(c, http.StatusOK,
		gin.H{"attempts": attempts[start:end]},
		&response.Pagination{
			Page:       page,
			PerPage:    perPage,
			TotalItems: total,
			TotalPages: (total + perPage - 1) / perPage,
		})
}
