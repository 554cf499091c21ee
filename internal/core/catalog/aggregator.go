package catalog

import (
	"context"
	"sync"
	"time"

	"pantryip/internal/core/cache"
	"pantryip/internal/core/source"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// FanoutStats 一次 fan-out 的觀測數據
type FanoutStats struct {
	TotalPairs    int `json:"total_pairs"`
	TimedOutPairs int `json:"timed_out_pairs"`
	EmptyPairs    int `json:"empty_pairs"`
	CacheHits     int `json:"cache_hits"`
}

// Result 聚合後的商品目錄
// 只在單次 pipeline 執行期間由 Aggregator 持有，組裝完成後不再修改
type Result struct {
	Catalog  map[string][]common.Product
	Products []common.Product
	Stats    FanoutStats
}

// Find 依商品 ID 查目錄
func (r *Result) Find(id string) (common.Product, bool) {
	for _, p := range r.Products {
		if p.ID == id {
			return p, true
		}
	}
	return common.Product{}, false
}

// Aggregator 把搜尋詞清單 fan-out 到所有零售商來源
// 快取把手由建構時注入，生命週期歸 pipeline 的擁有者（每個行程一份）
type Aggregator struct {
	sources      []source.Client
	cache        *cache.Manager
	pairDeadline time.Duration
	workers      int
}

// NewAggregator 建立聚合器
func NewAggregator(sources []source.Client, cacheManager *cache.Manager, cfg *config.PipelineConfig) *Aggregator {
	workers := cfg.Workers
	if workers <= 0 {
		workers = 8
	}
	return &Aggregator{
		sources:      sources,
		cache:        cacheManager,
		pairDeadline: cfg.PairDeadline,
		workers:      workers,
	}
}

// pairResult 單一 (詞 × 來源) 的貢獻
type pairResult struct {
	term     string
	products []common.Product
	cacheHit bool
	timedOut bool
}

// Collect 對每個 (詞 × 來源) 配對發一次搜尋並合併結果
// 每個配對各自帶軟性期限，到期視為空貢獻，絕不讓單一慢配對拖垮整趟；
// 等所有配對結束後才單執行緒合併並以商品 ID 去重（先到先贏）。
// 合併後仍一無所獲時回傳 ErrNoProducts。
func (a *Aggregator) Collect(ctx context.Context, terms []string) (*Result, error) {
	totalPairs := len(terms) * len(a.sources)
	results := make(chan pairResult, totalPairs)
	sem := make(chan struct{}, a.workers)

	started := time.Now()
	var wg sync.WaitGroup
	for _, term := range terms {
		for _, src := range a.sources {
			wg.Add(1)
			go func(term string, src source.Client) {
				defer wg.Done()
				sem <- struct{}{}
				defer func() { <-sem }()
				results <- a.fetchPair(ctx, term, src)
			}(term, src)
		}
	}
	wg.Wait()
	close(results)

	// 合併階段：單執行緒，不與抓取任務共享可變狀態
	res := &Result{
		Catalog: make(map[string][]common.Product, len(terms)),
		Stats:   FanoutStats{TotalPairs: totalPairs},
	}
	seen := make(map[string]struct{})
	for pr := range results {
		if pr.timedOut {
			res.Stats.TimedOutPairs++
		}
		if pr.cacheHit {
			res.Stats.CacheHits++
		}
		if len(pr.products) == 0 {
			res.Stats.EmptyPairs++
			continue
		}
		for _, p := range pr.products {
			if !p.Eligible() {
				continue
			}
			if _, dup := seen[p.ID]; dup {
				continue
			}
			seen[p.ID] = struct{}{}
			res.Catalog[pr.term] = append(res.Catalog[pr.term], p)
			res.Products = append(res.Products, p)
		}
	}

	common.LogInfo("商品目錄聚合完成",
		zap.Int("terms", len(terms)),
		zap.Int("sources", len(a.sources)),
		zap.Int("total_pairs", res.Stats.TotalPairs),
		zap.Int("timed_out_pairs", res.Stats.TimedOutPairs),
		zap.Int("empty_pairs", res.Stats.EmptyPairs),
		zap.Int("cache_hits", res.Stats.CacheHits),
		zap.Int("products", len(res.Products)),
		zap.Duration("耗時", time.Since(started)),
	)

	if len(res.Products) == 0 {
		return res, common.ErrNoProducts
	}
	return res, nil
}

// fetchPair 處理單一 (詞 × 來源)：快取短路 → 即時抓取 → 寫回快取
// 任何失敗都收斂成空貢獻，不往外拋
func (a *Aggregator) fetchPair(ctx context.Context, term string, src source.Client) pairResult {
	if cached, ok := a.cache.Get(ctx, src.Source(), term); ok {
		return pairResult{term: term, products: cached, cacheHit: true}
	}

	pairCtx, cancel := context.WithTimeout(ctx, a.pairDeadline)
	defer cancel()

	products, err := src.Search(pairCtx, term)
	if err != nil {
		timedOut := pairCtx.Err() == context.DeadlineExceeded
		common.LogWarn("配對抓取失敗，視為空貢獻",
			zap.String("term", term),
			zap.String("source", string(src.Source())),
			zap.Bool("timed_out", timedOut),
			zap.Error(err),
		)
		return pairResult{term: term, timedOut: timedOut}
	}
	if pairCtx.Err() == context.DeadlineExceeded {
		return pairResult{term: term, timedOut: true}
	}

	if len(products) > 0 {
		a.cache.Put(ctx, src.Source(), term, products)
	}
	return pairResult{term: term, products: products}
}
