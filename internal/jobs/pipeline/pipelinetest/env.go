// Package pipelinetest wires repos and services over a throwaway test database
// for job pipeline tests.
package pipelinetest

import (
	"context"
	"sync"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/clients/llm"
	"github.com/yungbote/mentor-backend/internal/data/repos"
	"github.com/yungbote/mentor-backend/internal/data/repos/testutil"
	types "github.com/yungbote/mentor-backend/internal/domain"
	jobrt "github.com/yungbote/mentor-backend/internal/jobs/runtime"
	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/clock"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
	"github.com/yungbote/mentor-backend/internal/services"
)

type StaticLLM struct {
	Reply string
	Err   error
}

func (s StaticLLM) Name() string { return "static" }

func (s StaticLLM) Chat(context.Context, []llm.Message, ...llm.Option) (string, error) {
	return s.Reply, s.Err
}

type Message struct {
	ChatID int64
	Text   string
}

// Sender records deliveries and fails for chat ids in FailTo.
type Sender struct {
	mu     sync.Mutex
	Out    []Message
	FailTo map[int64]bool
}

func (s *Sender) Send(_ context.Context, chatID int64, text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.FailTo[chatID] {
		return context.DeadlineExceeded
	}
	s.Out = append(s.Out, Message{ChatID: chatID, Text: text})
	return nil
}

func (s *Sender) Sent() []Message {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]Message(nil), s.Out...)
}

type Env struct {
	T      testing.TB
	DB     *gorm.DB
	Tx     *gorm.DB
	DBC    dbctx.Context
	Log    *logger.Logger
	Clock  *clock.Fake
	Repos  repos.Set
	Sender *Sender

	Ledger       services.LedgerService
	Achievements services.AchievementService
	Tasks        services.TaskService
	Habits       services.HabitService
	Scores       services.ScoreService
	Mentor       services.MentorService
	Reports      services.ReportService
}

func New(tb testing.TB, now time.Time) *Env {
	tb.Helper()
	db := testutil.DB(tb)
	tx := testutil.Tx(tb, db)
	log := testutil.Logger(tb)
	clk := clock.NewFake(now)
	rs := repos.NewSet(db, log)

	e := &Env{
		T:      tb,
		DB:     db,
		Tx:     tx,
		DBC:    dbctx.Context{Ctx: context.Background(), Tx: tx},
		Log:    log,
		Clock:  clk,
		Repos:  rs,
		Sender: &Sender{FailTo: map[int64]bool{}},
	}
	e.Ledger = services.NewLedgerService(db, log, rs.Users, rs.XPEvents)
	e.Achievements = services.NewAchievementService(db, log, clk, rs, e.Ledger)
	e.Tasks = services.NewTaskService(db, log, clk, rs.Users, rs.Tasks, rs.TaskLogs, e.Ledger, e.Achievements)
	e.Habits = services.NewHabitService(db, log, clk, rs.Users, rs.Habits, rs.HabitLogs, e.Ledger, e.Achievements)
	e.Scores = services.NewScoreService(db, log, clk, rs, 7)
	e.Mentor = services.NewMentorService(db, log, clk, rs, e.Tasks, e.Ledger, services.MentorBackends{
		Primary: StaticLLM{Reply: "Steady week."},
		Timeout: time.Second,
	})
	e.Reports = services.NewReportService(db, log, clk, rs, e.Habits, e.Scores, e.Mentor, e.Ledger)
	return e
}

// Job builds a runtime context bound to the test transaction.
func (e *Env) Job(jobType string) *jobrt.Context {
	return jobrt.NewContext(context.Background(), e.Tx, jobType, e.Log)
}

func (e *Env) User(name string) *types.User {
	e.T.Helper()
	return testutil.SeedUser(e.T, e.DBC.Ctx, e.Tx, name)
}

func (e *Env) Reload(u *types.User) *types.User {
	e.T.Helper()
	got, err := e.Repos.Users.GetByID(e.DBC, u.ID)
	if err != nil || got == nil {
		e.T.Fatalf("reload user: %v", err)
	}
	return got
}
