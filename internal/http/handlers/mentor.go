package handlers

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type MentorHandler struct {
	log    *logger.Logger
	mentor services.MentorService
}

func NewMentorHandler(log *logger.Logger, mentor services.MentorService) *MentorHandler {
	return &MentorHandler{log: log.With("handler", "MentorHandler"), mentor: mentor}
}

// POST /api/mentor/chat
// body: { "message": "..." }
func (h *MentorHandler) Chat(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Message string `json:"message" binding:"required"`
	}
	if !bindJSON(c, &req) {
		return
	}
	if strings.TrimSpace(req.Message) == "" {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errBadBody)
		return
	}
	reply, err := h.mentor.Chat(dbcOf(c), userID, req.Message)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, reply)
}

// GET /api/mentor/today-plan
func (h *MentorHandler) TodayPlan(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	text, err := h.mentor.TodayPlan(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"text": text})
}
