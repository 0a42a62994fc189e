package handlers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/mentor-backend/internal/http/response"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentor-backend/internal/services"
)

var (
	errNoCaller = errors.New("missing authenticated user")
	errBadID    = errors.New("invalid id")
	errBadBody  = errors.New("invalid request body")
)

// failure is implemented by every service result that embeds services.Failure.
type failure interface {
	Failed() bool
	FailureKind() string
}

func dbcOf(c *gin.Context) dbctx.Context {
	return dbctx.Background(c.Request.Context())
}

// callerID aborts with 401 when no user is attached to the request.
func callerID(c *gin.Context) (uuid.UUID, bool) {
	rd := ctxutil.GetRequestData(c.Request.Context())
	if rd == nil || rd.UserID == uuid.Nil {
		response.RespondError(c, http.StatusUnauthorized, "unauthorized", errNoCaller)
		return uuid.Nil, false
	}
	return rd.UserID, true
}

func pathID(c *gin.Context) (uuid.UUID, bool) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil || id == uuid.Nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_argument", errBadID)
		return uuid.Nil, false
	}
	return id, true
}

func bindJSON(c *gin.Context, dst any) bool {
	if err := c.ShouldBindJSON(dst); err != nil {
		response.RespondError(c, http.StatusBadRequest, "invalid_request", errBadBody)
		return false
	}
	return true
}

func statusForKind(kind string) int {
	switch kind {
	case services.FailNotFound:
		return http.StatusNotFound
	case services.FailForbidden:
		return http.StatusForbidden
	case services.FailAlreadyDone:
		return http.StatusConflict
	case services.FailInvalid:
		return http.StatusBadRequest
	default:
		return http.StatusUnprocessableEntity
	}
}

// respondResult writes a business result. Failed results keep their body so
// clients can render the message.
func respondResult(c *gin.Context, res any) {
	if f, ok := res.(failure); ok && f.Failed() {
		c.JSON(statusForKind(f.FailureKind()), res)
		return
	}
	response.RespondOK(c, res)
}
