package dbctx

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"gorm.io/gorm"
)

type key struct{}

func TestBackgroundNeverNil(t *testing.T) {
	//nolint:staticcheck // nil context is what this guards against
	c := Background(nil)
	assert.NotNil(t, c.Context())
	assert.False(t, c.InTx())
	assert.NotNil(t, Context{}.Context())
}

func TestWithTxKeepsRequestContext(t *testing.T) {
	ctx := context.WithValue(context.Background(), key{}, "req-1")
	c := Background(ctx).WithTx(&gorm.DB{})
	assert.True(t, c.InTx())
	assert.Equal(t, "req-1", c.Context().Value(key{}))
}
