package optimize

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantryip/internal/core/rank"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func fastRankAgainst(srvURL string) *FastRank {
	return NewFastRank(rank.NewClient(&config.RankConfig{
		BaseURL:          srvURL,
		ProbeTimeout:     500 * time.Millisecond,
		RecommendTimeout: time.Second,
	}))
}

func TestFastRankMapsRecommendations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_budget": 500,
			"estimated_total": 180.50,
			"within_budget": true,
			"basket": [
				{
					"query": "chicken",
					"best_match": {"product_name": "Kuku Choice Chicken 1kg", "brand": "Kuku Choice", "package_price": 120.50, "store": "naivas"},
					"alternatives": [
						{"product_name": "Broiler Chicken 1kg", "package_price": 140, "store": "quickmart"},
						{"product_name": "Free Range Chicken 1kg", "package_price": 180, "store": "carrefour"},
						{"product_name": "Capon Chicken 1kg", "package_price": 200, "store": "naivas"}
					],
					"estimated_cost": 120.50
				},
				{
					"query": "maize",
					"best_match": {"product_name": "Exe Maize Flour 2kg", "package_price": 60, "store": "quickmart"},
					"alternatives": [],
					"estimated_cost": 60
				},
				{
					"query": "saffron",
					"best_match": null,
					"alternatives": [],
					"estimated_cost": 0
				}
			]
		}`))
	}))
	defer srv.Close()

	outcome, err := fastRankAgainst(srv.URL).Optimize(context.Background(), Input{
		Terms:  []string{"chicken", "maize", "saffron"},
		Budget: 500,
	})
	require.NoError(t, err)
	require.NotNil(t, outcome)

	// 沒有匹配的詞從籃子裡缺席，不拖垮整體
	require.Len(t, outcome.Selections, 2)

	chicken := outcome.Selections[0]
	assert.Equal(t, "chicken", chicken.Ingredient)
	assert.Equal(t, common.SourceNaivas, chicken.Product.Source)
	assert.InDelta(t, 120.50, chicken.Product.Price, 0.001)
	assert.Len(t, chicken.Alternatives, 2) // 最多留兩件替代品
	assert.InDelta(t, 59.50, chicken.Savings, 0.001)

	maize := outcome.Selections[1]
	assert.Equal(t, common.SourceQuickmart, maize.Product.Source)
	assert.Zero(t, maize.Savings)
}

func TestFastRankNoResultOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	outcome, err := fastRankAgainst(srv.URL).Optimize(context.Background(), Input{
		Terms:  []string{"chicken"},
		Budget: 500,
	})
	assert.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestFastRankNoResultWhenNothingMaps(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_budget": 500,
			"estimated_total": 0,
			"within_budget": true,
			"basket": [{"query": "saffron", "best_match": null, "alternatives": [], "estimated_cost": 0}]
		}`))
	}))
	defer srv.Close()

	outcome, err := fastRankAgainst(srv.URL).Optimize(context.Background(), Input{
		Terms:  []string{"saffron"},
		Budget: 500,
	})
	assert.NoError(t, err)
	assert.Nil(t, outcome)
}

func TestFastRankMethod(t *testing.T) {
	assert.Equal(t, common.MethodFast, fastRankAgainst("http://localhost:9").Method())
}
