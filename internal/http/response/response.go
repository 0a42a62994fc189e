// Package response writes the JSON envelopes every handler returns.
package response

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/yungbote/mentor-backend/internal/platform/apierr"
	"github.com/yungbote/mentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

var errServiceDegraded = errors.New("service temporarily unavailable, try again later")

type APIError struct {
	Message   string `json:"message"`
	Code      string `json:"code,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type ErrorEnvelope struct {
	Error APIError `json:"error"`
}

// RespondErr classifies err through apierr. 5xx causes are logged here and
// never reach the client.
func RespondErr(c *gin.Context, log *logger.Logger, err error) {
	ae := apierr.From(err)
	shown := ae.Err
	if ae.Status >= http.StatusInternalServerError {
		if log != nil {
			log.Error("request failed", "route", c.FullPath(), "error", err)
		}
		shown = errServiceDegraded
	}
	RespondError(c, ae.Status, ae.Code, shown)
}

func RespondError(c *gin.Context, status int, code string, err error) {
	body := APIError{Message: "unknown error", Code: code}
	if err != nil {
		body.Message = err.Error()
	}
	if td := ctxutil.GetTraceData(c.Request.Context()); td != nil {
		body.RequestID = td.RequestID
	}
	c.AbortWithStatusJSON(status, ErrorEnvelope{Error: body})
}

func RespondOK(c *gin.Context, payload any) {
	c.JSON(http.StatusOK, payload)
}
