package testutil

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/yungbote/mentor-backend/internal/domain"
)

func SeedUser(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.User {
	tb.Helper()
	u := &types.User{
		ID:        uuid.New(),
		ChatID:    rand.Int63n(1<<40) + 1,
		Username:  name,
		FirstName: name,
		Timezone:  "Europe/Moscow",
		Level:     1,
		IsActive:  true,
	}
	if err := tx.WithContext(ctx).Create(u).Error; err != nil {
		tb.Fatalf("seed user: %v", err)
	}
	return u
}

func SeedTask(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, title, priority string) *types.Task {
	tb.Helper()
	t := &types.Task{
		ID:       uuid.New(),
		UserID:   userID,
		Title:    title,
		Status:   types.TaskStatusTodo,
		Priority: priority,
	}
	if err := tx.WithContext(ctx).Create(t).Error; err != nil {
		tb.Fatalf("seed task: %v", err)
	}
	return t
}

func SeedHabit(tb testing.TB, ctx context.Context, tx *gorm.DB, userID uuid.UUID, name string, mask int) *types.Habit {
	tb.Helper()
	h := &types.Habit{
		ID:                     uuid.New(),
		UserID:                 userID,
		Name:                   name,
		Emoji:                  "✅",
		ScheduleMask:           mask,
		XPPerCompletion:        15,
		StreakFreezesAvailable: 1,
		IsActive:               true,
	}
	if err := tx.WithContext(ctx).Create(h).Error; err != nil {
		tb.Fatalf("seed habit: %v", err)
	}
	return h
}
