package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type UserHandlerDeps struct {
	Log     *logger.Logger
	Users   services.UserService
	Scores  services.ScoreService
	Reports services.ReportService
	Cards   services.ProgressCardService
	Cleanup services.CleanupService
}

type UserHandler struct {
	log     *logger.Logger
	users   services.UserService
	scores  services.ScoreService
	reports services.ReportService
	cards   services.ProgressCardService
	cleanup services.CleanupService
}

func NewUserHandler(deps UserHandlerDeps) *UserHandler {
	return &UserHandler{
		log:     deps.Log.With("handler", "UserHandler"),
		users:   deps.Users,
		scores:  deps.Scores,
		reports: deps.Reports,
		cards:   deps.Cards,
		cleanup: deps.Cleanup,
	}
}

// GET /api/me
func (h *UserHandler) GetMe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	me, err := h.users.GetUser(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"me": me, "settings": me.ParsedSettings()})
}

// PATCH /api/me/profile
func (h *UserHandler) UpdateProfile(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.ProfileInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.users.UpdateProfile(dbcOf(c), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/me/settings
func (h *UserHandler) GetSettings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	s, err := h.users.GetSettings(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, s)
}

// PATCH /api/me/settings
// body: any subset of the settings document; nested objects merge key by key.
func (h *UserHandler) PatchSettings(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	raw, err := c.GetRawData()
	if err != nil || len(raw) == 0 {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errors.New("settings patch required"))
		return
	}
	s, err := h.users.PatchSettings(dbcOf(c), userID, raw)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, s)
}

// GET /api/me/progress
func (h *UserHandler) Progress(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	p, err := h.users.Progress(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, p)
}

// GET /api/me/progress/card.png
func (h *UserHandler) ProgressCard(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	png, err := h.cards.RenderProgressCard(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	c.Header("Cache-Control", "no-store")
	c.Data(http.StatusOK, "image/png", png)
}

// POST /api/me/scores/recalculate
func (h *UserHandler) RecalculateScores(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	s, err := h.scores.Recalculate(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, s)
}

// GET /api/me/weekly-report
func (h *UserHandler) WeeklyReport(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	view, err := h.reports.ReadWeeklyReport(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, view)
}

// DELETE /api/me
func (h *UserHandler) DeleteMe(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	res, err := h.cleanup.DeleteProfile(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// POST /api/cleanup/history
// body: { "period": "day" | "week" | "month" | "year" | "all" }
func (h *UserHandler) CleanupHistory(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Period string `json:"period" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.cleanup.CleanupHistory(dbcOf(c), userID, req.Period)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}
