package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type AchievementHandler struct {
	log          *logger.Logger
	achievements services.AchievementService
}

func NewAchievementHandler(log *logger.Logger, achievements services.AchievementService) *AchievementHandler {
	return &AchievementHandler{log: log.With("handler", "AchievementHandler"), achievements: achievements}
}

// GET /api/achievements
func (h *AchievementHandler) Mine(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	unlocked, err := h.achievements.ListUserAchievements(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"achievements": unlocked})
}

// GET /api/achievements/catalog
func (h *AchievementHandler) Catalog(c *gin.Context) {
	catalog, err := h.achievements.ListCatalog(dbcOf(c))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"catalog": catalog})
}
