package runtime

import (
	"context"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/yungbote/mentor-backend/internal/pkg/dbctx"
	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

/*
Context is the execution handle for a single job run.
It carries:
  - Ctx: cancellation and the active trace span
  - Tx: optional transaction; nil lets repos use their own handle
  - counters reported back to the scheduler, CLI and workflow activities

Handlers never log run outcomes themselves; the scheduler does that from Counters.
*/
type Context struct {
	Ctx       context.Context
	Tx        *gorm.DB
	Job       string
	StartedAt time.Time
	Log       *logger.Logger

	mu       sync.Mutex
	counters map[string]int
}

func NewContext(ctx context.Context, tx *gorm.DB, job string, log *logger.Logger) *Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return &Context{
		Ctx:       ctx,
		Tx:        tx,
		Job:       job,
		StartedAt: time.Now(),
		Log:       log.With("job", job),
		counters:  map[string]int{},
	}
}

// DBC is the dbctx handed to repos and services.
func (c *Context) DBC() dbctx.Context {
	return dbctx.Context{Ctx: c.Ctx, Tx: c.Tx}
}

// Add bumps a named counter.
func (c *Context) Add(key string, n int) {
	if c == nil || n == 0 {
		return
	}
	c.mu.Lock()
	c.counters[key] += n
	c.mu.Unlock()
}

func (c *Context) Count(key string) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.counters[key]
}

// Counters returns a copy safe to hand across goroutines.
func (c *Context) Counters() map[string]int {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make(map[string]int, len(c.counters))
	for k, v := range c.counters {
		out[k] = v
	}
	return out
}

// Fields flattens counters into sorted key/value pairs for the logger.
func (c *Context) Fields() []any {
	counters := c.Counters()
	keys := make([]string, 0, len(counters))
	for k := range counters {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]any, 0, len(keys)*2)
	for _, k := range keys {
		out = append(out, k, counters[k])
	}
	return out
}
