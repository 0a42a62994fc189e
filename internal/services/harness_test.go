package services

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentor-backend/internal/domain"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
)

// testNow is a Tuesday; 09:00 UTC is noon in Moscow, so both zones agree on the date.
var testNow = time.Date(2026, 3, 10, 9, 0, 0, 0, time.UTC)

type fakeLLM struct {
	mu    sync.Mutex
	name  string
	reply string
	err   error
	calls [][]llm.Message
}

func (f *fakeLLM) Name() string { return f.name }

func (f *fakeLLM) Chat(ctx context.Context, msgs []llm.Message, opts ...llm.Option) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, msgs)
	return f.reply, f.err
}

func (f *fakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

type harness struct {
	t     *testing.T
	db    *gorm.DB
	tx    *gorm.DB
	dbc   dbctx.Context
	clock *clock.Fake
	repos repos.Set

	primary  *fakeLLM
	fallback *fakeLLM

	ledger       LedgerService
	achievements AchievementService
	users        UserService
	tasks        TaskService
	habits       HabitService
	scores       ScoreService
	journal      JournalService
	library      LibraryService
	cleanup      CleanupService
	mentor       MentorService
	reports      ReportService
}

func newHarness(t *testing.T) *harness {
	t.Helper()
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	log := testutil.Logger(t)
	clk := clock.NewFake(testNow)
	rs := repos.NewSet(db, log)

	h := &harness{
		t:        t,
		db:       db,
		tx:       tx,
		dbc:      dbctx.Context{Ctx: context.Background(), Tx: tx},
		clock:    clk,
		repos:    rs,
		primary:  &fakeLLM{name: "primary", reply: "Keep going."},
		fallback: &fakeLLM{name: "fallback", reply: "Fallback says hi."},
	}
	h.ledger = NewLedgerService(db, log, rs.Users, rs.XPEvents)
	h.achievements = NewAchievementService(db, log, clk, rs, h.ledger)
	h.users = NewUserService(db, log, clk, rs.Users, rs.XPEvents, h.ledger, h.achievements)
	h.tasks = NewTaskService(db, log, clk, rs.Users, rs.Tasks, rs.TaskLogs, h.ledger, h.achievements)
	h.habits = NewHabitService(db, log, clk, rs.Users, rs.Habits, rs.HabitLogs, h.ledger, h.achievements)
	h.scores = NewScoreService(db, log, clk, rs, 7)
	h.journal = NewJournalService(db, log, rs.Journal, h.ledger, h.achievements)
	h.library = NewLibraryService(db, log, clk, rs, h.ledger, h.achievements)
	h.cleanup = NewCleanupService(db, log, clk, rs)
	h.mentor = NewMentorService(db, log, clk, rs, h.tasks, h.ledger, MentorBackends{
		Primary:  h.primary,
		Fallback: h.fallback,
		Timeout:  time.Second,
	})
	h.reports = NewReportService(db, log, clk, rs, h.habits, h.scores, h.mentor, h.ledger)
	return h
}

func (h *harness) seedUser(name string) *types.User {
	h.t.Helper()
	return testutil.SeedUser(h.t, h.dbc.Ctx, h.tx, name)
}

func (h *harness) reload(id uuid.UUID) *types.User {
	h.t.Helper()
	u, err := h.repos.Users.GetByID(h.dbc, id)
	if err != nil || u == nil {
		h.t.Fatalf("reload user: %v", err)
	}
	return u
}

func (h *harness) seedCatalog() {
	h.t.Helper()
	if _, err := h.achievements.SeedCatalog(h.dbc); err != nil {
		h.t.Fatalf("SeedCatalog: %v", err)
	}
}
