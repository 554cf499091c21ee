package source

import (
	"context"
	"time"

	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"github.com/go-resty/resty/v2"
)

// Client 單一零售商的商品搜尋客戶端
// 沒有即時資料時回傳內建 fixture 目錄，不把「查無資料」當成錯誤往上拋；
// 只有連 fixture 都無法嘗試的傳輸層問題才回傳 error
type Client interface {
	Source() common.Source
	Search(ctx context.Context, term string) ([]common.Product, error)
}

// browserUserAgent 零售商網站會擋掉沒有瀏覽器 UA 的請求
const browserUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/124.0.0.0 Safari/537.36"

// newRestyClient 建立零售商用的 resty 客戶端，帶固定逾時與擬真請求頭
func newRestyClient(baseURL string, timeout time.Duration) *resty.Client {
	return resty.New().
		SetBaseURL(baseURL).
		SetTimeout(timeout).
		SetHeader("User-Agent", browserUserAgent).
		SetHeader("Accept", "application/json, text/plain, */*").
		SetHeader("Accept-Language", "en-KE,en;q=0.9,sw;q=0.8").
		SetHeader("Cache-Control", "no-cache")
}

// NewClients 依設定建立啟用的零售商客戶端（至少要有一個）
func NewClients(cfg *config.SourcesConfig, fixtures *FixtureProvider) []Client {
	var clients []Client
	for _, name := range cfg.Enabled {
		switch common.Source(name) {
		case common.SourceNaivas:
			clients = append(clients, NewNaivasClient(cfg.NaivasURL, cfg.FetchTimeout, fixtures))
		case common.SourceQuickmart:
			clients = append(clients, NewQuickmartClient(cfg.QuickmartURL, cfg.FetchTimeout, fixtures))
		case common.SourceCarrefour:
			clients = append(clients, NewCarrefourClient(cfg.CarrefourURL, cfg.FetchTimeout, fixtures))
		}
	}
	return clients
}
