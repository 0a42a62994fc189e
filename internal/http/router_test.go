package http

import (
	"bytes"
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	httpH "github.com/yungbote/mentor-backend/internal/http/handlers"
	httpMW "github.com/yungbote/mentor-backend/internal/http/middleware"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/services"
)

const testBotSecret = "bot-secret"

type cannedLLM struct{}

func (cannedLLM) Name() string { return "canned" }

func (cannedLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return "Pick one task and finish it.", nil
}

// newTestRouter wires the full service graph over a fresh database. Requests run
// without an ambient transaction, exactly as in production.
func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	db := testutil.DB(t)
	log := testutil.Logger(t)
	clk := clock.NewFake(time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC))
	rs := repos.NewSet(db, log)

	ledger := services.NewLedgerService(db, log, rs.Users, rs.XPEvents)
	ach := services.NewAchievementService(db, log, clk, rs, ledger)
	users := services.NewUserService(db, log, clk, rs.Users, rs.XPEvents, ledger, ach)
	tasks := services.NewTaskService(db, log, clk, rs.Users, rs.Tasks, rs.TaskLogs, ledger, ach)
	habits := services.NewHabitService(db, log, clk, rs.Users, rs.Habits, rs.HabitLogs, ledger, ach)
	scores := services.NewScoreService(db, log, clk, rs, 7)
	journal := services.NewJournalService(db, log, rs.Journal, ledger, ach)
	library := services.NewLibraryService(db, log, clk, rs, ledger, ach)
	cleanup := services.NewCleanupService(db, log, clk, rs)
	mentor := services.NewMentorService(db, log, clk, rs, tasks, ledger, services.MentorBackends{
		Primary: cannedLLM{},
		Timeout: time.Second,
	})
	reports := services.NewReportService(db, log, clk, rs, habits, scores, mentor, ledger)
	cards, err := services.NewProgressCardService(log, rs.Users, "")
	require.NoError(t, err)
	auth := services.NewAuthService(log, clk, "test-jwt-secret", testBotSecret, time.Hour)

	sqlDB, err := db.DB()
	require.NoError(t, err)

	return NewRouter(RouterConfig{
		Log:            log,
		AuthMiddleware: httpMW.NewAuthMiddleware(log, auth),
		AuthHandler:    httpH.NewAuthHandler(log, users, auth),
		UserHandler: httpH.NewUserHandler(httpH.UserHandlerDeps{
			Log: log, Users: users, Scores: scores, Reports: reports, Cards: cards, Cleanup: cleanup,
		}),
		TaskHandler:        httpH.NewTaskHandler(log, tasks),
		HabitHandler:       httpH.NewHabitHandler(log, habits),
		JournalHandler:     httpH.NewJournalHandler(log, journal),
		AchievementHandler: httpH.NewAchievementHandler(log, ach),
		MentorHandler:      httpH.NewMentorHandler(log, mentor),
		LibraryHandler:     httpH.NewLibraryHandler(log, library),
		HealthHandler:      httpH.NewHealthHandler(sqlDB),
	})
}

type client struct {
	t     *testing.T
	r     *gin.Engine
	token string
}

func (c *client) do(method, path string, body any, headers ...string) *httptest.ResponseRecorder {
	c.t.Helper()
	var buf bytes.Buffer
	if body != nil {
		require.NoError(c.t, json.NewEncoder(&buf).Encode(body))
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}
	for i := 0; i+1 < len(headers); i += 2 {
		req.Header.Set(headers[i], headers[i+1])
	}
	w := httptest.NewRecorder()
	c.r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var out map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &out), w.Body.String())
	return out
}

func bootstrap(t *testing.T, r *gin.Engine, chatID int64) *client {
	t.Helper()
	anon := &client{t: t, r: r}
	w := anon.do(nethttp.MethodPost, "/api/bootstrap",
		map[string]any{"chat_id": chatID, "username": "ivan", "first_name": "Ivan"},
		httpMW.HeaderBotSecret, testBotSecret)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	body := decode(t, w)
	token, _ := body["token"].(string)
	require.NotEmpty(t, token)
	return &client{t: t, r: r, token: token}
}

func TestHealthcheck(t *testing.T) {
	r := newTestRouter(t)
	w := (&client{t: t, r: r}).do(nethttp.MethodGet, "/healthcheck", nil)
	assert.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestBootstrapRequiresBotSecret(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}

	w := anon.do(nethttp.MethodPost, "/api/bootstrap", map[string]any{"chat_id": 42})
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)

	w = anon.do(nethttp.MethodPost, "/api/bootstrap", map[string]any{"chat_id": 42}, httpMW.HeaderBotSecret, "wrong")
	assert.Equal(t, nethttp.StatusUnauthorized, w.Code)
}

func TestBootstrapIsIdempotent(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}
	body := map[string]any{"chat_id": 77, "first_name": "Ivan"}

	first := decode(t, anon.do(nethttp.MethodPost, "/api/bootstrap", body, httpMW.HeaderBotSecret, testBotSecret))
	second := decode(t, anon.do(nethttp.MethodPost, "/api/bootstrap", body, httpMW.HeaderBotSecret, testBotSecret))
	assert.Equal(t, true, first["created"])
	assert.Equal(t, false, second["created"])
}

func TestProtectedRoutesRejectMissingToken(t *testing.T) {
	r := newTestRouter(t)
	anon := &client{t: t, r: r}
	for _, path := range []string{"/api/me", "/api/tasks", "/api/habits", "/api/achievements"} {
		w := anon.do(nethttp.MethodGet, path, nil)
		assert.Equal(t, nethttp.StatusUnauthorized, w.Code, path)
	}

	bad := &client{t: t, r: r, token: "not-a-jwt"}
	assert.Equal(t, nethttp.StatusUnauthorized, bad.do(nethttp.MethodGet, "/api/me", nil).Code)
}

func TestTaskLifecycleOverHTTP(t *testing.T) {
	r := newTestRouter(t)
	c := bootstrap(t, r, 1001)

	w := c.do(nethttp.MethodPost, "/api/tasks", map[string]any{"title": "Write report", "priority": "high"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	task := decode(t, w)["task"].(map[string]any)
	taskID := task["id"].(string)

	w = c.do(nethttp.MethodPost, "/api/tasks/"+taskID+"/complete", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	done := decode(t, w)
	assert.Equal(t, "Write report", done["title"])
	assert.Greater(t, done["xp_earned"].(float64), 0.0)

	w = c.do(nethttp.MethodPost, "/api/tasks/"+taskID+"/complete", nil)
	assert.Equal(t, nethttp.StatusConflict, w.Code)
	assert.Equal(t, "Task already completed", decode(t, w)["error"])

	w = c.do(nethttp.MethodPost, "/api/tasks/"+uuid.NewString()+"/complete", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)

	w = c.do(nethttp.MethodPost, "/api/tasks/not-a-uuid/complete", nil)
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)
}

func TestTaskOfAnotherUserIsForbidden(t *testing.T) {
	r := newTestRouter(t)
	owner := bootstrap(t, r, 2001)
	other := bootstrap(t, r, 2002)

	w := owner.do(nethttp.MethodPost, "/api/tasks", map[string]any{"title": "Mine"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	taskID := decode(t, w)["task"].(map[string]any)["id"].(string)

	w = other.do(nethttp.MethodPost, "/api/tasks/"+taskID+"/complete", nil)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)
	w = other.do(nethttp.MethodDelete, "/api/tasks/"+taskID, nil)
	assert.Equal(t, nethttp.StatusForbidden, w.Code)
}

func TestMentorChatAndPlan(t *testing.T) {
	r := newTestRouter(t)
	c := bootstrap(t, r, 3001)

	w := c.do(nethttp.MethodPost, "/api/mentor/chat", map[string]any{"message": "How do I focus?"})
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, "Pick one task and finish it.", decode(t, w)["reply"])

	w = c.do(nethttp.MethodPost, "/api/mentor/chat", map[string]any{"message": "   "})
	assert.Equal(t, nethttp.StatusBadRequest, w.Code)

	w = c.do(nethttp.MethodGet, "/api/mentor/today-plan", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())
	assert.NotEmpty(t, decode(t, w)["text"])
}

func TestProgressCardIsPNG(t *testing.T) {
	r := newTestRouter(t)
	c := bootstrap(t, r, 4001)

	w := c.do(nethttp.MethodGet, "/api/me/progress/card.png", nil)
	require.Equal(t, nethttp.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.True(t, bytes.HasPrefix(w.Body.Bytes(), []byte("\x89PNG")))
}

func TestDeleteMeRevokesAccess(t *testing.T) {
	r := newTestRouter(t)
	c := bootstrap(t, r, 5001)

	w := c.do(nethttp.MethodDelete, "/api/me", nil)
	require.Equal(t, nethttp.StatusOK, w.Code, w.Body.String())

	w = c.do(nethttp.MethodGet, "/api/me", nil)
	assert.Equal(t, nethttp.StatusNotFound, w.Code)
}
