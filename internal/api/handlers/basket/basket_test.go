package basket

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"pantryip/internal/core/catalog"
	"pantryip/internal/core/optimize"
	"pantryip/internal/core/pipeline"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubProbe struct{ ready bool }

func (s *stubProbe) Ready(ctx context.Context) bool { return s.ready }

type stubCollector struct {
	result *catalog.Result
	err    error
}

func (s *stubCollector) Collect(ctx context.Context, terms []string) (*catalog.Result, error) {
	return s.result, s.err
}

type stubOptimizer struct {
	method  common.OptimizationMethod
	outcome *optimize.Outcome
	err     error
}

func (s *stubOptimizer) Method() common.OptimizationMethod { return s.method }

func (s *stubOptimizer) Optimize(ctx context.Context, in optimize.Input) (*optimize.Outcome, error) {
	return s.outcome, s.err
}

func handlerConfig() *config.Config {
	return &config.Config{
		Pipeline: config.PipelineConfig{
			BudgetMin:      50,
			BudgetMax:      50000,
			OverallTimeout: 10 * time.Second,
		},
	}
}

func testRouter(collector pipeline.Collector, fast, gen optimize.Optimizer, ready bool) *gin.Engine {
	gin.SetMode(gin.TestMode)
	ctrl := pipeline.NewController(handlerConfig(), collector, &stubProbe{ready: ready}, fast, gen)
	h := NewHandler(ctrl, collector)

	r := gin.New()
	r.POST("/api/v1/basket/generate", h.HandleGenerateBasket)
	r.POST("/api/v1/products/search", h.HandleSearchProducts)
	return r
}

func doRequest(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestHandleGenerateBasketOK(t *testing.T) {
	product := common.NewProduct(common.SourceNaivas, "Chicken 1kg", "", 180.50, 1000, "", true)
	fast := &stubOptimizer{method: common.MethodFast, outcome: &optimize.Outcome{
		Selections: []optimize.Selection{{Ingredient: "chicken", Product: product, Quantity: "1 kg"}},
	}}
	r := testRouter(&stubCollector{}, fast, &stubOptimizer{method: common.MethodGenerative}, true)

	w := doRequest(t, r, "/api/v1/basket/generate",
		`{"meals":[{"name":"dinner","ingredients":[{"name":"chicken"}]}],"budget":500}`)
	require.Equal(t, http.StatusOK, w.Code)

	var b common.ShoppingBasket
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &b))
	assert.Len(t, b.Items, 1)
	assert.Equal(t, common.MethodFast, b.OptimizationMethod)
	assert.InDelta(t, 319.50, b.BudgetRemaining, 0.001)
}

func TestHandleGenerateBasketValidation(t *testing.T) {
	r := testRouter(&stubCollector{}, &stubOptimizer{method: common.MethodFast}, &stubOptimizer{method: common.MethodGenerative}, true)

	// 預算超出範圍
	w := doRequest(t, r, "/api/v1/basket/generate",
		`{"meals":[{"name":"dinner","ingredients":[{"name":"chicken"}]}],"budget":10}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 缺 budget 欄位
	w = doRequest(t, r, "/api/v1/basket/generate", `{"meals":[]}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	// 不是 JSON
	w = doRequest(t, r, "/api/v1/basket/generate", `not json`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestHandleGenerateBasketNoIngredients(t *testing.T) {
	r := testRouter(&stubCollector{}, &stubOptimizer{method: common.MethodFast}, &stubOptimizer{method: common.MethodGenerative}, true)

	w := doRequest(t, r, "/api/v1/basket/generate",
		`{"meals":[{"name":"dinner","ingredients":[]}],"budget":500}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)

	var resp common.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, common.ErrCodeNoIngredients, resp.Code)
}

func TestHandleGenerateBasketNoProducts(t *testing.T) {
	collector := &stubCollector{err: common.ErrNoProducts}
	r := testRouter(collector, nil, &stubOptimizer{method: common.MethodGenerative}, false)

	w := doRequest(t, r, "/api/v1/basket/generate",
		`{"meals":[{"name":"dinner","ingredients":[{"name":"unobtainium"}]}],"budget":500}`)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestHandleGenerateBasketModelParseError(t *testing.T) {
	cat := &catalog.Result{Products: []common.Product{
		common.NewProduct(common.SourceNaivas, "Chicken 1kg", "", 560, 1000, "", true),
	}}
	gen := &stubOptimizer{method: common.MethodGenerative, err: common.ErrModelResponseParse}
	r := testRouter(&stubCollector{result: cat}, nil, gen, false)

	w := doRequest(t, r, "/api/v1/basket/generate",
		`{"meals":[{"name":"dinner","ingredients":[{"name":"chicken"}]}],"budget":500}`)
	assert.Equal(t, http.StatusBadGateway, w.Code)
}

func TestHandleSearchProducts(t *testing.T) {
	products := []common.Product{
		common.NewProduct(common.SourceNaivas, "Brookside Milk 500ml", "Brookside", 65, 500, "", true),
		common.NewProduct(common.SourceCarrefour, "Organic Milk 1L", "", 240, 1000, "", true),
	}
	collector := &stubCollector{result: &catalog.Result{Products: products}}
	r := testRouter(collector, nil, &stubOptimizer{method: common.MethodGenerative}, false)

	w := doRequest(t, r, "/api/v1/products/search", `{"query":"Fresh Milk","max_price":100}`)
	require.Equal(t, http.StatusOK, w.Code)

	var resp SearchProductsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "milk", resp.Query)
	assert.Equal(t, 1, resp.TotalFound) // max_price 過濾掉貴的那件
}

func TestHandleSearchProductsBadQuery(t *testing.T) {
	r := testRouter(&stubCollector{}, nil, &stubOptimizer{method: common.MethodGenerative}, false)

	w := doRequest(t, r, "/api/v1/products/search", `{"query":"a"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}
