package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

const defaultJournalLimit = 10

type JournalHandler struct {
	log     *logger.Logger
	journal services.JournalService
}

func NewJournalHandler(log *logger.Logger, journal services.JournalService) *JournalHandler {
	return &JournalHandler{log: log.With("handler", "JournalHandler"), journal: journal}
}

// POST /api/journal
func (h *JournalHandler) Create(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.CreateEntryInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.journal.CreateEntry(dbcOf(c), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, res)
}

// GET /api/journal?tag=idea&q=search&limit=10
func (h *JournalHandler) List(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	limit := defaultJournalLimit
	if raw := c.Query("limit"); raw != "" {
		if n, err := strconv.Atoi(raw); err == nil && n > 0 {
			limit = n
		}
	}
	entries, err := h.journal.ListEntries(dbcOf(c), userID, c.Query("tag"), c.Query("q"), limit)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// GET /api/journal/:id/related
func (h *JournalHandler) Related(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c)
	if !ok {
		return
	}
	entries, err := h.journal.Related(dbcOf(c), userID, entryID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"entries": entries})
}

// DELETE /api/journal/:id
func (h *JournalHandler) Delete(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	entryID, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.journal.DeleteEntry(dbcOf(c), userID, entryID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}
