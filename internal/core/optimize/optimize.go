package optimize

import (
	"context"

	"pantryip/internal/core/catalog"
	"pantryip/internal/pkg/common"
)

// Selection 單一食材的最佳化結果：一件推薦商品加上至多兩件替代品
type Selection struct {
	Ingredient   string
	Product      common.Product
	Alternatives []common.Product
	Quantity     string
	Savings      float64
}

// Input 最佳化策略的輸入
// Catalog 只有生成路徑會用到；快速路徑對著排序服務自己的商品宇宙運作
type Input struct {
	Terms   []string
	Budget  float64
	Profile common.MealProfile
	Catalog *catalog.Result
}

// Outcome 最佳化策略的輸出
type Outcome struct {
	Selections []Selection
	Tips       []string
}

// Optimizer 購物籃最佳化策略
// 回傳 (nil, nil) 表示「無結果」：策略本身健康但出不了籃子，
// 由 pipeline 控制器決定是否改走下一條路徑；error 保留給致命狀況
type Optimizer interface {
	Method() common.OptimizationMethod
	Optimize(ctx context.Context, in Input) (*Outcome, error)
}

// clampSavings 節省金額不得為負
func clampSavings(v float64) float64 {
	if v < 0 {
		return 0
	}
	return common.RoundCurrency(v)
}

// deriveSavings 以「推薦品與最貴替代品的價差」定義節省金額
func deriveSavings(recommended common.Product, alternatives []common.Product) float64 {
	maxAlt := 0.0
	for _, alt := range alternatives {
		if alt.Eligible() && alt.Price > maxAlt {
			maxAlt = alt.Price
		}
	}
	return clampSavings(maxAlt - recommended.Price)
}
