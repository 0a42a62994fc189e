package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type AuthHandler struct {
	log   *logger.Logger
	users services.UserService
	auth  services.AuthService
}

func NewAuthHandler(log *logger.Logger, users services.UserService, auth services.AuthService) *AuthHandler {
	return &AuthHandler{log: log.With("handler", "AuthHandler"), users: users, auth: auth}
}

// POST /api/bootstrap (bot secret)
// body: { "chat_id": 123, "username": "...", "first_name": "..." }
func (h *AuthHandler) Bootstrap(c *gin.Context) {
	var req struct {
		ChatID    int64  `json:"chat_id" binding:"required"`
		Username  string `json:"username"`
		FirstName string `json:"first_name"`
	}
	if !bindJSON(c, &req) {
		return
	}
	u, created, err := h.users.Bootstrap(dbcOf(c), req.ChatID, req.Username, req.FirstName)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	token, err := h.auth.IssueToken(u.ID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{
		"user":       u,
		"created":    created,
		"token":      token,
		"expires_in": int(h.auth.GetAccessTTL().Seconds()),
	})
}
