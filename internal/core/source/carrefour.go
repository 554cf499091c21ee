package source

import (
	"context"
	"net/http"
	"regexp"
	"strconv"
	"strings"
	"time"

	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// CarrefourClient 家樂福（肯亞站）的搜尋客戶端
type CarrefourClient struct {
	client   *resty.Client
	fixtures *FixtureProvider
}

// carrefourSearchResponse Carrefour 搜尋 API 的回應
// 價格和包裝大小是巢狀欄位，包裝大小是 "2kg"、"500g" 這類字串
type carrefourSearchResponse struct {
	Data struct {
		Products []struct {
			Name  string `json:"name"`
			Brand string `json:"brand"`
			Price struct {
				Value float64 `json:"value"`
			} `json:"price"`
			Size  string `json:"size"`
			Links struct {
				ProductURL string `json:"productUrl"`
			} `json:"links"`
			Stock struct {
				StockLevelStatus string `json:"stockLevelStatus"`
			} `json:"stock"`
		} `json:"products"`
	} `json:"data"`
}

// NewCarrefourClient 建立 Carrefour 客戶端
func NewCarrefourClient(baseURL string, timeout time.Duration, fixtures *FixtureProvider) *CarrefourClient {
	return &CarrefourClient{
		client:   newRestyClient(baseURL, timeout),
		fixtures: fixtures,
	}
}

// Source 回傳來源識別
func (c *CarrefourClient) Source() common.Source {
	return common.SourceCarrefour
}

// Search 搜尋商品，即時路徑失敗或沒有結果時退回 fixture 目錄
func (c *CarrefourClient) Search(ctx context.Context, term string) ([]common.Product, error) {
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("keyword", term).
		SetQueryParam("lang", "en").
		Get("/api/v1/search")
	if err != nil {
		common.LogWarn("Carrefour 即時搜尋失敗，改用內建目錄",
			zap.String("term", term),
			zap.Error(err),
		)
		return c.fixtures.Lookup(common.SourceCarrefour, term), nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("Carrefour 回應異常狀態碼，改用內建目錄",
			zap.String("term", term),
			zap.Int("status", resp.StatusCode()),
		)
		return c.fixtures.Lookup(common.SourceCarrefour, term), nil
	}

	var body carrefourSearchResponse
	if err := common.ParseJSONBytes(resp.Body(), &body); err != nil || len(body.Data.Products) == 0 {
		return c.fixtures.Lookup(common.SourceCarrefour, term), nil
	}

	products := make([]common.Product, 0, len(body.Data.Products))
	for _, item := range body.Data.Products {
		if item.Price.Value <= 0 {
			continue
		}
		products = append(products, common.NewProduct(
			common.SourceCarrefour,
			item.Name,
			item.Brand,
			item.Price.Value,
			parsePackageSize(item.Size),
			item.Links.ProductURL,
			!strings.EqualFold(item.Stock.StockLevelStatus, "outOfStock"),
		))
	}
	if len(products) == 0 {
		return c.fixtures.Lookup(common.SourceCarrefour, term), nil
	}
	return products, nil
}

var packageSizePattern = regexp.MustCompile(`(?i)([\d.]+)\s*(kg|g|l|ml)`)

// parsePackageSize 把 "2kg"、"500 g"、"1L" 這類包裝字串換算成克
// 液體以 1ml ≈ 1g 處理；解析不了就回 0，交給預設重量
func parsePackageSize(size string) float64 {
	m := packageSizePattern.FindStringSubmatch(size)
	if m == nil {
		return 0
	}
	value, err := strconv.ParseFloat(m[1], 64)
	if err != nil {
		return 0
	}
	switch strings.ToLower(m[2]) {
	case "kg", "l":
		return value * 1000
	default:
		return value
	}
}
