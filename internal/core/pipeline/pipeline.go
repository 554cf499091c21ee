package pipeline

import (
	"context"
	"fmt"
	"time"

	"pantryip/internal/core/basket"
	"pantryip/internal/core/catalog"
	"pantryip/internal/core/optimize"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// State pipeline 的狀態，單向前進、不回頭
type State string

const (
	StateExtractingTerms    State = "extracting_terms"
	StateProbingFastPath    State = "probing_fast_path"
	StateFastRanking        State = "fast_ranking"
	StateScrapingGenerative State = "scraping_generative"
	StateAssembling         State = "assembling"
	StateDone               State = "done"
	StateFailed             State = "failed"
)

// Prober 快速路徑的可用性探測
type Prober interface {
	Ready(ctx context.Context) bool
}

// Collector 商品目錄聚合
type Collector interface {
	Collect(ctx context.Context, terms []string) (*catalog.Result, error)
}

// Controller 購物籃 pipeline 控制器
// 依序走 term 萃取 → 快速路徑探測 → (排序 | 抓取+生成) → 結算，
// 整趟只有一個後備分岔點，走過的路徑記在籃子的 OptimizationMethod
type Controller struct {
	config     *config.Config
	aggregator Collector
	probe      Prober
	fast       optimize.Optimizer
	generative optimize.Optimizer
}

// NewController 建立 pipeline 控制器
// 快取把手等長生命週期資源在 aggregator 建構時就已注入，這裡只管流程
func NewController(cfg *config.Config, aggregator Collector, probe Prober, fast, generative optimize.Optimizer) *Controller {
	return &Controller{
		config:     cfg,
		aggregator: aggregator,
		probe:      probe,
		fast:       fast,
		generative: generative,
	}
}

// ValidateBudget 預算範圍檢查，在 pipeline 啟動前拒絕非法輸入
func (c *Controller) ValidateBudget(budget float64) error {
	min := c.config.Pipeline.BudgetMin
	max := c.config.Pipeline.BudgetMax
	if budget < min || budget > max {
		return common.NewValidationError(
			fmt.Sprintf("budget must be between %.0f and %.0f KSh, got %.2f", min, max, budget))
	}
	return nil
}

// GenerateBasket 執行一整趟購物籃生成
// 只有 no ingredients、no products 與完全無法解析的模型輸出會讓整趟失敗，
// 其餘狀況（快速路徑掛掉、個別配對逾時、超支）都就地吸收
func (c *Controller) GenerateBasket(ctx context.Context, profile common.MealProfile, budget float64) (*common.ShoppingBasket, error) {
	if err := c.ValidateBudget(budget); err != nil {
		return nil, err
	}

	if c.config.Pipeline.OverallTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.config.Pipeline.OverallTimeout)
		defer cancel()
	}

	started := time.Now()
	state := StateExtractingTerms

	terms := catalog.ExtractTerms(profile)
	if len(terms) == 0 {
		c.fail(state, started, common.ErrNoIngredients)
		return nil, common.ErrNoIngredients
	}

	state = c.transition(state, StateProbingFastPath)
	if c.fast != nil && c.probe != nil && c.probe.Ready(ctx) {
		state = c.transition(state, StateFastRanking)
		outcome, err := c.fast.Optimize(ctx, optimize.Input{
			Terms:   terms,
			Budget:  budget,
			Profile: profile,
		})
		if err != nil {
			common.LogWarn("快速路徑出錯，改走後備路徑", zap.Error(err))
		}
		if err == nil && outcome != nil {
			state = c.transition(state, StateAssembling)
			return c.assemble(state, started, outcome, budget, c.fast.Method())
		}
		common.LogInfo("快速路徑無結果，改走後備路徑", zap.Int("terms", len(terms)))
	}

	state = c.transition(state, StateScrapingGenerative)
	merged, err := c.aggregator.Collect(ctx, terms)
	if err != nil {
		c.fail(state, started, err)
		return nil, err
	}

	outcome, err := c.generative.Optimize(ctx, optimize.Input{
		Terms:   terms,
		Budget:  budget,
		Profile: profile,
		Catalog: merged,
	})
	if err != nil {
		c.fail(state, started, err)
		return nil, err
	}

	state = c.transition(state, StateAssembling)
	return c.assemble(state, started, outcome, budget, c.generative.Method())
}

// assemble 結算並收尾
func (c *Controller) assemble(state State, started time.Time, outcome *optimize.Outcome, budget float64, method common.OptimizationMethod) (*common.ShoppingBasket, error) {
	b, err := basket.Assemble(outcome, budget, method)
	if err != nil {
		c.fail(state, started, err)
		return nil, err
	}

	c.transition(state, StateDone)
	common.LogInfo("購物籃生成完成",
		zap.Int("items", len(b.Items)),
		zap.String("method", string(b.OptimizationMethod)),
		zap.Float64("total_cost", b.TotalCost),
		zap.Duration("耗時", time.Since(started)),
	)
	return b, nil
}

// transition 記錄狀態轉移
func (c *Controller) transition(from, to State) State {
	common.LogDebug("pipeline 狀態轉移",
		zap.String("from", string(from)),
		zap.String("to", string(to)),
	)
	return to
}

// fail 記錄失敗收場
func (c *Controller) fail(from State, started time.Time, err error) {
	c.transition(from, StateFailed)
	common.LogError("pipeline 失敗",
		zap.String("state", string(from)),
		zap.Duration("耗時", time.Since(started)),
		zap.Error(err),
	)
}
