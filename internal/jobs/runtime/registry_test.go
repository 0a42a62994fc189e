package runtime

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/yungbote/mentor-backend/internal/platform/logger"
)

type namedHandler string

func (h namedHandler) Type() string { return string(h) }

func (h namedHandler) Run(ctx *Context) error {
	ctx.Add("runs", 1)
	return nil
}

func TestRegistryRejectsDuplicatesAndEmpty(t *testing.T) {
	r := NewRegistry()
	require.NoError(t, r.Register(namedHandler("b")))
	require.NoError(t, r.Register(namedHandler("a")))
	assert.ErrorIs(t, r.Register(namedHandler("a")), ErrDuplicateJob)
	assert.Error(t, r.Register(namedHandler("")))
	assert.Error(t, r.Register(nil))

	assert.Equal(t, []string{"a", "b"}, r.Types())
	_, ok := r.Get("missing")
	assert.False(t, ok)
}

func TestContextCounters(t *testing.T) {
	c := NewContext(context.Background(), nil, "demo", logger.Nop())
	require.NoError(t, namedHandler("demo").Run(c))
	c.Add("sent", 2)
	c.Add("sent", 0)

	assert.Equal(t, map[string]int{"runs": 1, "sent": 2}, c.Counters())
	assert.Equal(t, []any{"runs", 1, "sent", 2}, c.Fields())
	assert.Nil(t, c.DBC().Tx)
}
