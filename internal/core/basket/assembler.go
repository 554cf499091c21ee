package basket

import (
	"fmt"
	"time"

	"pantryip/internal/core/optimize"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// defaultTips 策略沒給建議時的保底提示
var defaultTips = []string{
	"Prices change quickly; re-generate the basket before you shop.",
	"Compare unit prices per 100g rather than package prices.",
}

// Assemble 把最佳化策略的選項結算成最終購物籃
// 純計算、無 I/O：總價、各店小計、節省總額與剩餘預算（可為負，超支回報不拒絕）
func Assemble(outcome *optimize.Outcome, budget float64, method common.OptimizationMethod) (*common.ShoppingBasket, error) {
	if outcome == nil || len(outcome.Selections) == 0 {
		return nil, fmt.Errorf("cannot assemble a basket from zero selections")
	}

	items := make([]common.BasketItem, 0, len(outcome.Selections))
	breakdown := make(map[common.Source]float64)
	totalCost := 0.0
	savingsTotal := 0.0

	for _, sel := range outcome.Selections {
		items = append(items, common.BasketItem{
			Ingredient:   sel.Ingredient,
			Product:      sel.Product,
			Alternatives: sel.Alternatives,
			Quantity:     sel.Quantity,
			Savings:      sel.Savings,
		})
		totalCost += sel.Product.Price
		breakdown[sel.Product.Source] += sel.Product.Price
		savingsTotal += sel.Savings
	}

	totalCost = common.RoundCurrency(totalCost)
	for src, subtotal := range breakdown {
		breakdown[src] = common.RoundCurrency(subtotal)
	}

	tips := outcome.Tips
	if len(tips) == 0 {
		tips = defaultTips
	}
	if savingsTotal > 0 {
		tips = append(tips, fmt.Sprintf("Choosing these picks over the pricier alternatives saves about %.2f KSh.", common.RoundCurrency(savingsTotal)))
	}

	b := &common.ShoppingBasket{
		ID:                 common.GenerateUUID(),
		GeneratedAt:        time.Now(),
		Items:              items,
		TotalCost:          totalCost,
		Budget:             budget,
		BudgetRemaining:    common.RoundCurrency(budget - totalCost),
		StoreBreakdown:     breakdown,
		Tips:               tips,
		OptimizationMethod: method,
	}

	common.LogInfo("購物籃結算完成",
		zap.String("basket_id", b.ID),
		zap.Int("items", len(b.Items)),
		zap.Float64("total_cost", b.TotalCost),
		zap.Float64("budget_remaining", b.BudgetRemaining),
		zap.String("method", string(method)),
		zap.Int("stores", len(breakdown)),
	)
	return b, nil
}
