package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.InDelta(t, 50, cfg.Pipeline.BudgetMin, 0.001)
	assert.InDelta(t, 50000, cfg.Pipeline.BudgetMax, 0.001)
	assert.Equal(t, 7*time.Second, cfg.Pipeline.PairDeadline)
	assert.Equal(t, 6*time.Hour, cfg.Cache.TTL)
	assert.Equal(t, 2*time.Second, cfg.Rank.ProbeTimeout)
	assert.Equal(t, 8*time.Second, cfg.Rank.RecommendTimeout)
	assert.Equal(t, 60*time.Second, cfg.OpenRouter.Timeout)
	assert.Equal(t, 2, cfg.OpenRouter.MaxRetries)
	assert.GreaterOrEqual(t, len(cfg.Sources.Enabled), 1)
}

func TestMaskAPIKey(t *testing.T) {
	assert.Equal(t, "****", MaskAPIKey("short"))
	assert.Equal(t, "sk-o...wxyz", MaskAPIKey("sk-or-v1-abcdefwxyz"))
}
