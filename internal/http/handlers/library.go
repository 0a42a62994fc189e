package handlers

import (
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type LibraryHandler struct {
	log     *logger.Logger
	library services.LibraryService
}

func NewLibraryHandler(log *logger.Logger, library services.LibraryService) *LibraryHandler {
	return &LibraryHandler{log: log.With("handler", "LibraryHandler"), library: library}
}

// GET /api/learning?open=true
func (h *LibraryHandler) ListResources(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	onlyOpen, _ := strconv.ParseBool(c.DefaultQuery("open", "false"))
	items, err := h.library.ListResources(dbcOf(c), userID, onlyOpen)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"resources": items})
}

// POST /api/learning
func (h *LibraryHandler) AddResource(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var in services.AddResourceInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.library.AddResource(dbcOf(c), userID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// POST /api/learning/:id/done
func (h *LibraryHandler) MarkDone(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	resourceID, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.library.MarkResourceDone(dbcOf(c), userID, resourceID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// GET /api/learning/suggest?topic=go
func (h *LibraryHandler) Suggest(c *gin.Context) {
	if _, ok := callerID(c); !ok {
		return
	}
	response.RespondOK(c, gin.H{"suggestions": h.library.Suggest(c.Query("topic"))})
}

// GET /api/playlists
func (h *LibraryHandler) ListPlaylists(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	lists, err := h.library.ListPlaylists(dbcOf(c), userID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"playlists": lists})
}

// POST /api/playlists
// body: { "name": "...", "emoji": "🎧" }
func (h *LibraryHandler) CreatePlaylist(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	var req struct {
		Name  string `json:"name"`
		Emoji string `json:"emoji"`
	}
	if !bindJSON(c, &req) {
		return
	}
	res, err := h.library.CreatePlaylist(dbcOf(c), userID, req.Name, req.Emoji)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// POST /api/playlists/:id/tracks
func (h *LibraryHandler) AddTrack(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	playlistID, ok := pathID(c)
	if !ok {
		return
	}
	var in services.AddTrackInput
	if !bindJSON(c, &in) {
		return
	}
	res, err := h.library.AddTrack(dbcOf(c), userID, playlistID, in)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}

// GET /api/playlists/:id/tracks
func (h *LibraryHandler) ListTracks(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	playlistID, ok := pathID(c)
	if !ok {
		return
	}
	tracks, err := h.library.ListTracks(dbcOf(c), userID, playlistID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	response.RespondOK(c, gin.H{"tracks": tracks})
}

// DELETE /api/playlists/:id
func (h *LibraryHandler) DeletePlaylist(c *gin.Context) {
	userID, ok := callerID(c)
	if !ok {
		return
	}
	playlistID, ok := pathID(c)
	if !ok {
		return
	}
	res, err := h.library.DeletePlaylist(dbcOf(c), userID, playlistID)
	if err != nil {
		response.RespondErr(c, h.log, err)
		return
	}
	respondResult(c, res)
}
