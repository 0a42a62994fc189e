package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type HabitHandler struct {
	log    *logger.Logger
	habits services.HabitService
}

func NewHabitHandler(log *logger.Logger, habits services.HabitService) *HabitHandler {
	return &HabitHandler{log: log.With("handler", "HabitHandler"), habits: habits}
}

type dateBody struct {
	Date *string `json:"date"`
}

// optionalDate reads { "date": "YYYY-MM-DD" } when a body is present.
func optionalDate(c *gin.Context) (*string, bool) {
	if c.Request.ContentLength == 0 {
		return nil, true
	}
	var body dateBody
	if !bindJSON(c, &body) {
		return nil, false
	}
	return body.Date, true
}

// POST /api/habits
func (h *HabitHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.CreateHabitInput
	if !bindJSON(c, &in) {
		return
	}
	habit, err := h.habits.CreateHabit(dbcOf(c), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"habit": habit})
}

// GET /api/habits
func (h *HabitHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	habits, err := h.habits.ListHabits(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"habits": habits})
}

// POST /api/habits/:id/check
func (h *HabitHandler) Check(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c)
	if !ok {
		return
	}
	date, ok := optionalDate(c)
	if !ok {
		return
	}
	res, err := h.habits.LogCompletion(dbcOf(c), userID, habitID, date)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// POST /api/habits/:id/freeze
func (h *HabitHandler) Freeze(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	habitID, ok := pathID(c)
	if !ok {
		return
	}
	date, ok := optionalDate(c)
	if !ok {
		return
	}
	res, err := h.habits.UseStreakFreeze(dbcOf(c), userID, habitID, date)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// GET /api/habits/weekly
func (h *HabitHandler) Weekly(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	perf, err := h.habits.WeeklyPerformance(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, perf)
}
