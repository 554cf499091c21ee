package cache

import (
	"context"
	"testing"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestManager(ttl time.Duration) *Manager {
	return NewManagerWithBackend(newMemoryBackend(100, 0), ttl)
}

func TestManagerRoundTrip(t *testing.T) {
	m := newTestManager(time.Hour)
	defer m.Close()
	ctx := context.Background()

	products := []common.Product{
		common.NewProduct(common.SourceNaivas, "Fresh Chicken 1kg", "Kenchic", 450, 1000, "", true),
		common.NewProduct(common.SourceNaivas, "Chicken Drumsticks 500g", "", 280, 500, "", true),
	}

	m.Put(ctx, common.SourceNaivas, "chicken", products)

	got, ok := m.Get(ctx, common.SourceNaivas, "chicken")
	require.True(t, ok)
	require.Len(t, got, 2)
	assert.Equal(t, products[0].ID, got[0].ID)
	assert.Equal(t, products[1].Price, got[1].Price)
}

func TestManagerExpiry(t *testing.T) {
	m := newTestManager(10 * time.Millisecond)
	defer m.Close()
	ctx := context.Background()

	m.Put(ctx, common.SourceQuickmart, "maize", []common.Product{
		common.NewProduct(common.SourceQuickmart, "Maize Flour 2kg", "Jogoo", 180, 2000, "", true),
	})

	time.Sleep(30 * time.Millisecond)

	_, ok := m.Get(ctx, common.SourceQuickmart, "maize")
	assert.False(t, ok)
}

func TestKeyNormalization(t *testing.T) {
	assert.Equal(t,
		Key(common.SourceNaivas, "  Chicken "),
		Key(common.SourceNaivas, "chicken"),
	)
	assert.NotEqual(t,
		Key(common.SourceNaivas, "chicken"),
		Key(common.SourceQuickmart, "chicken"),
	)
}

func TestDisabledManagerDegradesToNoop(t *testing.T) {
	m := &Manager{}
	ctx := context.Background()

	// Put 不得 panic，Get 一律未命中
	m.Put(ctx, common.SourceNaivas, "tomato", []common.Product{
		common.NewProduct(common.SourceNaivas, "Tomatoes 1kg", "", 120, 1000, "", true),
	})
	_, ok := m.Get(ctx, common.SourceNaivas, "tomato")
	assert.False(t, ok)
	assert.False(t, m.Available())
	assert.NoError(t, m.Close())
}
