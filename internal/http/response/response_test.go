package response

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	pkgerrors "github.com/yungbote/mentor-backend/internal/pkg/errors"
	"github.com/yungbote/mentor-backend/internal/platform/ctxutil"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

func serve(t *testing.T, err error) (*httptest.ResponseRecorder, ErrorEnvelope) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	RespondErr(c, logger.Nop(), err)

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	return rec, env
}

func TestRespondErrHidesInternalFailures(t *testing.T) {
	rec, env := serve(t, errors.New("pq: connection refused"))
	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Equal(t, "internal", env.Error.Code)
	assert.NotContains(t, env.Error.Message, "pq")
}

func TestRespondErrKeepsClientErrors(t *testing.T) {
	rec, env := serve(t, fmt.Errorf("task title: %w", pkgerrors.ErrInvalidArgument))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "invalid_argument", env.Error.Code)
	assert.Equal(t, "task title: invalid argument", env.Error.Message)
}

func TestRespondErrorEchoesRequestID(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	c.Request = req.WithContext(ctxutil.WithTraceData(req.Context(), &ctxutil.TraceData{RequestID: "req-42"}))

	RespondError(c, http.StatusNotFound, "not_found", pkgerrors.NotFoundf("task"))

	var env ErrorEnvelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "req-42", env.Error.RequestID)
	assert.Equal(t, "task: not found", env.Error.Message)
}
