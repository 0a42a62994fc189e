package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type TaskHandler struct {
	log   *logger.Logger
	tasks services.TaskService
}

func NewTaskHandler(log *logger.Logger, tasks services.TaskService) *TaskHandler {
	return &TaskHandler{log: log.With("handler", "TaskHandler"), tasks: tasks}
}

// POST /api/tasks
func (h *TaskHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.CreateTaskInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.tasks.CreateTask(dbcOf(c), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/tasks?status=todo&tag=work
func (h *TaskHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	tasks, err := h.tasks.ListTasks(dbcOf(c), userID, c.Query("status"), c.Query("tag"))
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	overdue, err := h.tasks.CountOverdue(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"tasks": tasks, "overdue": overdue})
}

// POST /api/tasks/quick
// body: { "title": "...", "difficulty": "easy" | "medium" | "hard" }
func (h *TaskHandler) Quick(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Title      string `json:"title" binding:"required"`
		Difficulty string `json:"difficulty"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.tasks.CreateQuickTask(dbcOf(c), userID, req.Title, req.Difficulty)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// POST /api/tasks/:id/complete
func (h *TaskHandler) Complete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.tasks.CompleteTask(dbcOf(c), userID, taskID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// DELETE /api/tasks/:id
func (h *TaskHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	taskID, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.tasks.DeleteTask(dbcOf(c), userID, taskID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}
