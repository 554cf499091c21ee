package optimize

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"pantryip/internal/core/catalog"
	"pantryip/internal/infrastructure/config"
	"pantryip/internal/pkg/common"

	"go.uber.org/zap"
)

// systemPrompt 固定的輸出契約，要求模型只輸出指定結構的 JSON
const systemPrompt = `You are a budget grocery shopping assistant for Kenyan households.
You are given a product catalog, a shopping list and a total budget in KSh.
Pick exactly one recommended product per ingredient, only using product ids that appear in the catalog.
The total cost of recommended products must not exceed the budget.
Respond with JSON only, no prose, in this exact shape:
{
    "items": [
        {
            "ingredient": "chicken",
            "recommended_product_id": "abc123def456",
            "alternative_ids": ["bcd234efa567"],
            "quantity": "1 kg",
            "savings": 40.0
        }
    ],
    "tips": ["practical shopping advice"]
}`

// modelItem 模型輸出的單一品項，欄位全部寬鬆處理
type modelItem struct {
	Ingredient           string          `json:"ingredient"`
	RecommendedProductID string          `json:"recommended_product_id"`
	AlternativeIDs       []string        `json:"alternative_ids"`
	Quantity             string          `json:"quantity"`
	Savings              json.RawMessage `json:"savings"`
}

// modelBasket 模型輸出的整體結構
type modelBasket struct {
	Items []modelItem `json:"items"`
	Tips  []string    `json:"tips"`
}

// Completer 抽象生成模型的單次補全呼叫，openrouter.Client 為正式實作
type Completer interface {
	Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error)
}

// Generative 後備路徑：把完整合併目錄與購物需求交給生成模型
type Generative struct {
	client Completer
	config *config.OpenRouterConfig
}

// NewGenerative 建立生成路徑策略
func NewGenerative(client Completer, cfg *config.OpenRouterConfig) *Generative {
	return &Generative{client: client, config: cfg}
}

// Method 回傳策略識別
func (g *Generative) Method() common.OptimizationMethod {
	return common.MethodGenerative
}

// Optimize 請模型從目錄裡挑出符合預算的組合
// 傳輸失敗與解析失敗各自消耗一次重試；全部嘗試耗盡且一項都救不回來時
// 以 ModelResponseParse 收場，屬於 pipeline 致命錯誤
func (g *Generative) Optimize(ctx context.Context, in Input) (*Outcome, error) {
	if in.Catalog == nil || len(in.Catalog.Products) == 0 {
		return nil, common.ErrNoProducts
	}

	userPrompt := g.buildPrompt(in)
	maxAttempts := g.config.MaxRetries + 1
	if maxAttempts < 1 {
		maxAttempts = 1
	}
	backoff := g.config.RetryBackoff
	if backoff <= 0 {
		backoff = 2 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= maxAttempts; attempt++ {
		if attempt > 1 {
			select {
			case <-ctx.Done():
				return nil, ctx.Err()
			case <-time.After(backoff):
			}
		}

		content, err := g.client.Complete(ctx, systemPrompt, userPrompt)
		if err != nil {
			lastErr = err
			common.LogWarn("生成模型呼叫失敗",
				zap.Int("attempt", attempt),
				zap.Int("max_attempts", maxAttempts),
				zap.Error(err),
			)
			continue
		}

		outcome, err := g.parseOutcome(content, in.Catalog)
		if err != nil {
			lastErr = err
			common.LogWarn("生成模型回應解析失敗",
				zap.Int("attempt", attempt),
				zap.Int("raw_length", len(content)),
				zap.Error(err),
			)
			continue
		}
		return outcome, nil
	}

	return nil, common.WrapPipelineError(common.ErrModelResponseParse, lastErr)
}

// buildPrompt 組裝使用者訊息：購物需求 + 完整目錄
func (g *Generative) buildPrompt(in Input) string {
	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Total budget: %.2f KSh\n", in.Budget))
	if in.Profile.HouseholdSize > 0 {
		sb.WriteString(fmt.Sprintf("Household size: %d\n", in.Profile.HouseholdSize))
	}
	if in.Profile.ShoppingFrequency != "" {
		sb.WriteString(fmt.Sprintf("Shopping frequency: %s\n", in.Profile.ShoppingFrequency))
	}
	sb.WriteString(fmt.Sprintf("Shopping list: %s\n\n", common.StringSliceToString(in.Terms)))
	sb.WriteString("Product catalog:\n")
	sb.WriteString(common.FormatProducts(in.Catalog.Products))

	return sb.String()
}

// parseOutcome 從模型的自由文字中抽出 JSON 區塊並映射回目錄
// 個別品項引用不存在的商品 ID 時只丟掉該項；整包救不回來才回錯誤
func (g *Generative) parseOutcome(content string, cat *catalog.Result) (*Outcome, error) {
	block, err := common.ExtractJSONBlock(content)
	if err != nil {
		return nil, fmt.Errorf("no JSON block in model output: %w", err)
	}

	var basket modelBasket
	if err := json.Unmarshal([]byte(block), &basket); err != nil {
		// 常見病灶是缺引號的鍵，先修再試一次
		if err2 := json.Unmarshal([]byte(common.QuoteJSONKeys(block)), &basket); err2 != nil {
			return nil, fmt.Errorf("failed to parse model output: %w", err)
		}
	}
	if len(basket.Items) == 0 {
		return nil, fmt.Errorf("model output contains no items")
	}

	var selections []Selection
	dropped := 0
	for _, item := range basket.Items {
		product, ok := cat.Find(item.RecommendedProductID)
		if !ok {
			dropped++
			common.LogWarn("模型引用了目錄外的商品 ID，丟棄該項",
				zap.String("ingredient", item.Ingredient),
				zap.String("product_id", item.RecommendedProductID),
			)
			continue
		}

		alternatives := make([]common.Product, 0, 2)
		for _, altID := range item.AlternativeIDs {
			if alt, found := cat.Find(altID); found && alt.ID != product.ID {
				alternatives = append(alternatives, alt)
				if len(alternatives) == 2 {
					break
				}
			}
		}

		savings := parseSavings(item.Savings)
		if savings <= 0 {
			savings = deriveSavings(product, alternatives)
		}

		quantity := strings.TrimSpace(item.Quantity)
		if quantity == "" {
			quantity = "1 pack"
		}

		selections = append(selections, Selection{
			Ingredient:   item.Ingredient,
			Product:      product,
			Alternatives: alternatives,
			Quantity:     quantity,
			Savings:      savings,
		})
	}

	if len(selections) == 0 {
		return nil, fmt.Errorf("all %d model items referenced unknown products", len(basket.Items))
	}
	if dropped > 0 {
		common.LogInfo("部分模型品項遭丟棄",
			zap.Int("kept", len(selections)),
			zap.Int("dropped", dropped),
		)
	}

	return &Outcome{Selections: selections, Tips: basket.Tips}, nil
}

// parseSavings 模型有時回數字、有時回字串，這裡兩種都收
func parseSavings(raw json.RawMessage) float64 {
	if len(raw) == 0 {
		return 0
	}
	var f float64
	if err := json.Unmarshal(raw, &f); err == nil {
		return clampSavings(f)
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		if err := json.Unmarshal([]byte(strings.TrimSpace(s)), &f); err == nil {
			return clampSavings(f)
		}
	}
	return 0
}
