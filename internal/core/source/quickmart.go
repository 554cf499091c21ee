package source

import (
	"context"
	"net/http"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// QuickmartClient Quickmart 線上商店的搜尋客戶端
type QuickmartClient struct {
	client   *resty.Client
	fixtures *FixtureProvider
}

// quickmartProduct Quickmart 搜尋 API 直接回傳商品陣列
type quickmartProduct struct {
	Name        string  `json:"name"`
	Brand       string  `json:"brand"`
	Price       float64 `json:"price"`
	WeightGrams float64 `json:"weight_grams"`
	Link        string  `json:"link"`
	InStock     bool    `json:"in_stock"`
}

// NewQuickmartClient 建立 Quickmart 客戶端
func NewQuickmartClient(baseURL string, timeout time.Duration, fixtures *FixtureProvider) *QuickmartClient {
	return &QuickmartClient{
		client:   newRestyClient(baseURL, timeout),
		fixtures: fixtures,
	}
}

// Source 回傳來源識別
func (c *QuickmartClient) Source() common.Source {
	return common.SourceQuickmart
}

// Search 搜尋商品，即時路徑失敗或沒有結果時退回 fixture 目錄
func (c *QuickmartClient) Search(ctx context.Context, term string) ([]common.Product, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("keyword", term).
		Get("/store/search")
	if err != nil {
		common.LogWarn("Quickmart 即時搜尋失敗，改用內建目錄",
			zap.String("term", term),
			zap.Error(err),
		)
		return c.fixtures.Lookup(common.SourceQuickmart, term), nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("Quickmart 回應異常狀態碼，改用內建目錄",
			zap.String("term", term),
			zap.Int("status", resp.StatusCode()),
		)
		return c.fixtures.Lookup(common.SourceQuickmart, term), nil
	}

	var items []quickmartProduct
	if err := common.ParseJSONBytes(resp.Body(), &items); err != nil || len(items) == 0 {
		return c.fixtures.Lookup(common.SourceQuickmart, term), nil
	}

	products := make([]common.Product, 0, len(items))
	for _, item := range items {
		if item.Price <= 0 {
			continue
		}
		products = append(products, common.NewProduct(
			common.SourceQuickmart,
			item.Name,
			item.Brand,
			item.Price,
			item.WeightGrams,
			item.Link,
			item.InStock,
		))
	}
	if len(products) == 0 {
		return c.fixtures.Lookup(common.SourceQuickmart, term), nil
	}
	return products, nil
}
