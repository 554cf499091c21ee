package source

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNaivasSearchLive(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "chicken", r.URL.Query().Get("q"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"items":[
			{"title":"Whole Chicken 1.2kg","brand":"Kenchic","selling_price":560,"package_grams":1200,"product_url":"/p/1","available":true},
			{"title":"Free Sample","brand":"","selling_price":0,"package_grams":100,"product_url":"/p/2","available":true}
		]}`))
	}))
	defer srv.Close()

	c := NewNaivasClient(srv.URL, 2*time.Second, NewFixtureProvider())
	products, err := c.Search(context.Background(), "chicken")
	require.NoError(t, err)
	// 價格為 0 的商品不可入籃，直接剔除
	require.Len(t, products, 1)
	assert.Equal(t, common.SourceNaivas, products[0].Source)
	assert.Equal(t, 560.0, products[0].Price)
	assert.InDelta(t, 560.0/1200*100, products[0].UnitPrice, 1e-9)
}

func TestSearchFallsBackOnServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	c := NewQuickmartClient(srv.URL, 2*time.Second, NewFixtureProvider())
	products, err := c.Search(context.Background(), "maize")
	require.NoError(t, err)
	require.NotEmpty(t, products)
	for _, p := range products {
		assert.Equal(t, common.SourceQuickmart, p.Source)
	}
}

func TestSearchFallsBackOnEmptyResult(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"data":{"products":[]}}`))
	}))
	defer srv.Close()

	c := NewCarrefourClient(srv.URL, 2*time.Second, NewFixtureProvider())
	products, err := c.Search(context.Background(), "tomato")
	require.NoError(t, err)
	require.NotEmpty(t, products)
}

func TestSearchUnknownTermYieldsNothing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewNaivasClient(srv.URL, 2*time.Second, NewFixtureProvider())
	products, err := c.Search(context.Background(), "zzzunknown")
	require.NoError(t, err)
	assert.Empty(t, products)
}

func TestProductIDStableAcrossFetches(t *testing.T) {
	fp := NewFixtureProvider()
	first := fp.Lookup(common.SourceNaivas, "chicken")
	second := fp.Lookup(common.SourceNaivas, "chicken")
	require.Equal(t, len(first), len(second))
	for i := range first {
		assert.Equal(t, first[i].ID, second[i].ID)
	}
	// 不同來源的同名商品要有不同 ID
	other := fp.Lookup(common.SourceQuickmart, "chicken")
	assert.NotEqual(t, first[0].ID, other[0].ID)
}

func TestParsePackageSize(t *testing.T) {
	cases := []struct {
		in   string
		want float64
	}{
		{"2kg", 2000},
		{"500 g", 500},
		{"1L", 1000},
		{"330ml", 330},
		{"pack of 6", 0},
		{"", 0},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, parsePackageSize(tc.in), tc.in)
	}
}
