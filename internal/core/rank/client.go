package rank

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

// ProductResult 排序服務回傳的單一商品候選
type ProductResult struct {
	ProductName  string   `json:"product_name"`
	Brand        string   `json:"brand,omitempty"`
	SubCategory  string   `json:"sub_category,omitempty"`
	PackagePrice float64  `json:"package_price"`
	PricePer100g *float64 `json:"price_per_100g,omitempty"`
	DiscountPct  *float64 `json:"discount_pct,omitempty"`
	ValueScore   *float64 `json:"value_score,omitempty"`
	IsSpecial    int      `json:"is_special,omitempty"`
	Store        string   `json:"store,omitempty"`
	City         string   `json:"city,omitempty"`
	State        string   `json:"state,omitempty"`
	ProductURL   string   `json:"product_url,omitempty"`
}

// BasketEntry 排序服務對單一搜尋詞的建議：最佳匹配加上至多兩個替代品
type BasketEntry struct {
	Query         string          `json:"query"`
	BestMatch     *ProductResult  `json:"best_match"`
	Alternatives  []ProductResult `json:"alternatives"`
	EstimatedCost float64         `json:"estimated_cost"`
}

// RecommendResponse /recommend 的完整回應
type RecommendResponse struct {
	TotalBudget    float64       `json:"total_budget"`
	EstimatedTotal float64       `json:"estimated_total"`
	WithinBudget   bool          `json:"within_budget"`
	Basket         []BasketEntry `json:"basket"`
}

// recommendRequest /recommend 的請求本體
type recommendRequest struct {
	Items       []string `json:"items"`
	TotalBudget float64  `json:"total_budget"`
	City        string   `json:"city,omitempty"`
	State       string   `json:"state,omitempty"`
}

// Client 排序推薦服務客戶端（快速路徑）
// 這個服務屬於盡力而為：探測失敗或回應異常都不算 pipeline 錯誤，
// 呼叫端應把「無結果」當成改走生成路徑的訊號
type Client struct {
	config *config.RankConfig
	client *resty.Client
}

// NewClient 建立排序服務客戶端
func NewClient(cfg *config.RankConfig) *Client {
	client := resty.New().
		SetBaseURL(cfg.BaseURL).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json")

	return &Client{
		config: cfg,
		client: client,
	}
}

// Ready 探測排序服務是否可用
// 短期限內拿不到 200 一律視為不可用，不往外傳錯誤
func (c *Client) Ready(ctx context.Context) bool {
	if c.config.BaseURL == "" {
		return false
	}

	timeout := c.config.ProbeTimeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}
	probeCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	started := time.Now()
	resp, err := c.client.R().
		SetContext(probeCtx).
		Get("/")

	if err != nil {
		common.LogDebug("排序服務探測失敗",
			zap.String("base_url", c.config.BaseURL),
			zap.Error(err),
		)
		return false
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogDebug("排序服務探測回應異常",
			zap.Int("status", resp.StatusCode()),
		)
		return false
	}

	common.LogDebug("排序服務探測成功",
		zap.Duration("耗時", time.Since(started)),
	)
	return true
}

// Recommend 請排序服務依預算對搜尋詞清單出一份建議
// 回傳 nil 表示快速路徑沒有可用結果，由呼叫端決定後續；error 僅在請求本身無法構建時出現
func (c *Client) Recommend(ctx context.Context, terms []string, budget float64, city, state string) (*RecommendResponse, error) {
	if len(terms) == 0 {
		return nil, fmt.Errorf("recommend called with no terms")
	}

	timeout := c.config.RecommendTimeout
	if timeout <= 0 {
		timeout = 8 * time.Second
	}
	reqCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	body := recommendRequest{
		Items:       terms,
		TotalBudget: budget,
		City:        city,
		State:       state,
	}

	started := time.Now()
	resp, err := c.client.R().
		SetContext(reqCtx).
		SetBody(body).
		Post("/recommend")

	if err != nil {
		common.LogWarn("排序服務請求失敗，改走生成路徑",
			zap.Int("terms", len(terms)),
			zap.Error(err),
		)
		return nil, nil
	}
	if resp.StatusCode() != http.StatusOK {
		common.LogWarn("排序服務回應異常，改走生成路徑",
			zap.Int("status", resp.StatusCode()),
			zap.String("body", common.TruncateString(resp.String(), 200)),
		)
		return nil, nil
	}

	var result RecommendResponse
	if err := json.Unmarshal(resp.Body(), &result); err != nil {
		common.LogWarn("排序服務回應解析失敗，改走生成路徑", zap.Error(err))
		return nil, nil
	}
	if len(result.Basket) == 0 {
		common.LogInfo("排序服務無建議結果", zap.Int("terms", len(terms)))
		return nil, nil
	}

	common.LogInfo("排序服務建議完成",
		zap.Int("terms", len(terms)),
		zap.Float64("estimated_total", result.EstimatedTotal),
		zap.Bool("within_budget", result.WithinBudget),
		zap.Duration("耗時", time.Since(started)),
	)
	return &result, nil
}
