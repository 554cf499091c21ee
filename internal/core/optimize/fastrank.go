package optimize

import (
	"context"

	"pantryip/internal/core/rank"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// FastRank 快速路徑：把預算與搜尋詞交給排序服務，直接採用它的建議
// 不看聚合目錄，用目錄完整性換速度
type FastRank struct {
	client *rank.Client
}

// NewFastRank 建立快速路徑策略
func NewFastRank(client *rank.Client) *FastRank {
	return &FastRank{client: client}
}

// Method 回傳策略識別
func (f *FastRank) Method() common.OptimizationMethod {
	return common.MethodFast
}

// Optimize 呼叫排序服務並把建議映射成購物籃選項
// 服務失敗、逾時或空建議都回傳 (nil, nil)，讓控制器走生成路徑
func (f *FastRank) Optimize(ctx context.Context, in Input) (*Outcome, error) {
	res, err := f.client.Recommend(ctx, in.Terms, in.Budget, in.Profile.City, in.Profile.State)
	if err != nil {
		return nil, err
	}
	if res == nil {
		return nil, nil
	}

	var selections []Selection
	for _, entry := range res.Basket {
		if entry.BestMatch == nil {
			// 排序服務對這個詞一無所獲，讓它從籃子裡缺席
			continue
		}
		product := rankProduct(*entry.BestMatch)
		if !product.Eligible() {
			continue
		}

		alternatives := make([]common.Product, 0, 2)
		for _, alt := range entry.Alternatives {
			p := rankProduct(alt)
			if !p.Eligible() {
				continue
			}
			alternatives = append(alternatives, p)
			if len(alternatives) == 2 {
				break
			}
		}

		selections = append(selections, Selection{
			Ingredient:   entry.Query,
			Product:      product,
			Alternatives: alternatives,
			Quantity:     "1 pack",
			Savings:      deriveSavings(product, alternatives),
		})
	}

	if len(selections) == 0 {
		common.LogInfo("排序服務建議全數無法映射，視為無結果",
			zap.Int("basket_entries", len(res.Basket)),
		)
		return nil, nil
	}

	tips := []string{}
	if !res.WithinBudget {
		tips = append(tips, "Estimated total exceeds your budget; consider swapping to the listed alternatives.")
	}

	return &Outcome{Selections: selections, Tips: tips}, nil
}

// rankProduct 把排序服務的商品映射成內部商品記錄
// 沒帶重量時用每 100 克價格反推，再不行就退到預設包裝
func rankProduct(pr rank.ProductResult) common.Product {
	weight := 0.0
	if pr.PricePer100g != nil && *pr.PricePer100g > 0 {
		weight = pr.PackagePrice / *pr.PricePer100g * 100
	}

	source := common.Source("ranked")
	if pr.Store != "" {
		source = common.Source(pr.Store)
	}

	return common.NewProduct(source, pr.ProductName, pr.Brand, pr.PackagePrice, weight, pr.ProductURL, true)
}
