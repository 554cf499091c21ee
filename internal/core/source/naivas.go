package source

import (
	"context"
	"net/http"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// NaivasClient Naivas 線上商店的搜尋客戶端
type NaivasClient struct {
	client   *resty.Client
	fixtures *FixtureProvider
}

// naivasSearchResponse Naivas 搜尋 API 的回應
type naivasSearchResponse struct {
	Items []struct {
		Title        string  `json:"title"`
		Brand        string  `json:"brand"`
		SellingPrice float64 `json:"selling_price"`
		PackageGrams float64 `json:"package_grams"`
		ProductURL   string  `json:"product_url"`
		Available    bool    `json:"available"`
	} `json:"items"`
}

// NewNaivasClient 建立 Naivas 客戶端
func NewNaivasClient(baseURL string, timeout time.Duration, fixtures *FixtureProvider) *NaivasClient {
	return &NaivasClient{
		client:   newRestyClient(baseURL, timeout),
		fixtures: fixtures,
	}
}

// Source 回傳來源識別
func (c *NaivasClient) Source() common.Source {
	return common.SourceNaivas
}

// Search 搜尋商品，即時路徑失敗或沒有結果時退回 fixture 目錄
func (c *NaivasClient) Search(ctx context.Context, term string) ([]common.Product, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("q", term).
		Get("/api/catalog/search")
	if err != nil {
		common.LogWarn("Naivas 即時搜尋失敗，改用內建目錄",
			zap.String("term", term),
			zap.Error(err),
		)
		return c.fixtures.Lookup(common.SourceNaivas, term), nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("Naivas 回應異常狀態碼，改用內建目錄",
			zap.String("term", term),
			zap.Int("status", resp.StatusCode()),
		)
		return c.fixtures.Lookup(common.SourceNaivas, term), nil
	}

	var body naivasSearchResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil || len(body.Items) == 0 {
		return c.fixtures.Lookup(common.SourceNaivas, term), nil
	}

	products := make([]common.Product, 0, len(body.Items))
	for _, item := range body.Items {
		if item.SellingPrice <= 0 {
			continue
		}
		products = append(products, common.NewProduct(
			common.SourceNaivas,
			item.Title,
			item.Brand,
			item.SellingPrice,
			item.PackageGrams,
			item.ProductURL,
			item.Available,
		))
	}
	if len(products) == 0 {
		return c.fixtures.Lookup(common.SourceNaivas, term), nil
	}
	return products, nil
}
