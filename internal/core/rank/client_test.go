package rank

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantryip/internal/infrastructure/config"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func testConfig(baseURL string) *config.RankConfig {
	return &config.RankConfig{
		BaseURL:          baseURL,
		ProbeTimeout:     500 * time.Millisecond,
		RecommendTimeout: time.Second,
	}
}

func TestReadyProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	assert.True(t, c.Ready(context.Background()))
}

func TestReadyFalseOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	assert.False(t, c.Ready(context.Background()))
}

func TestReadyFalseOnUnreachable(t *testing.T) {
	c := NewClient(testConfig("http://127.0.0.1:1"))
	assert.False(t, c.Ready(context.Background()))
}

func TestReadyFalseOnSlowProbe(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		time.Sleep(2 * time.Second)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	started := time.Now()
	assert.False(t, c.Ready(context.Background()))
	assert.Less(t, time.Since(started), time.Second)
}

func TestRecommendParsesBasket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/recommend", r.URL.Path)

		var req map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.EqualValues(t, 1000, req["total_budget"])
		assert.Len(t, req["items"], 2)

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{
			"total_budget": 1000,
			"estimated_total": 738,
			"within_budget": true,
			"basket": [
				{
					"query": "chicken",
					"best_match": {"product_name": "Kuku Choice Chicken 1kg", "brand": "Kuku Choice", "package_price": 560},
					"alternatives": [{"product_name": "Broiler Mix 1kg", "package_price": 610}],
					"estimated_cost": 560
				},
				{
					"query": "maize",
					"best_match": {"product_name": "Exe Maize Flour 2kg", "package_price": 178},
					"alternatives": [],
					"estimated_cost": 178
				}
			]
		}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	res, err := c.Recommend(context.Background(), []string{"chicken", "maize"}, 1000, "Nairobi", "")
	require.NoError(t, err)
	require.NotNil(t, res)

	assert.True(t, res.WithinBudget)
	assert.InDelta(t, 738, res.EstimatedTotal, 0.001)
	require.Len(t, res.Basket, 2)
	require.NotNil(t, res.Basket[0].BestMatch)
	assert.Equal(t, "Kuku Choice Chicken 1kg", res.Basket[0].BestMatch.ProductName)
	assert.Len(t, res.Basket[0].Alternatives, 1)
}

func TestRecommendNilOnFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	res, err := c.Recommend(context.Background(), []string{"chicken"}, 500, "", "")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestRecommendNilOnEmptyBasket(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"total_budget": 500, "estimated_total": 0, "within_budget": true, "basket": []}`))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL))
	res, err := c.Recommend(context.Background(), []string{"chicken"}, 500, "", "")
	assert.NoError(t, err)
	assert.Nil(t, res)
}

func TestRecommendRequiresTerms(t *testing.T) {
	c := NewClient(testConfig("http://localhost:9"))
	_, err := c.Recommend(context.Background(), nil, 500, "", "")
	assert.Error(t, err)
}
