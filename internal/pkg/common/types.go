package common

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"time"
)

// Source 零售商來源
type Source string

const (
	SourceNaivas    Source = "naivas"
	SourceQuickmart Source = "quickmart"
	SourceCarrefour Source = "carrefour"
)

// Category 商品粗分類
type Category string

const (
	CategoryProtein   Category = "protein"
	CategoryDairy     Category = "dairy"
	CategoryGrain     Category = "grain"
	CategoryVegetable Category = "vegetable"
	CategoryFruit     Category = "fruit"
	CategoryCondiment Category = "condiment"
	CategoryBeverage  Category = "beverage"
	CategoryOther     Category = "other"
)

// DefaultWeightGrams 重量未知時的預設值
const DefaultWeightGrams = 500.0

// Product 商品資料
// unit_price 為每 100 克價格，方便跨商品比較
type Product struct {
	ID          string    `json:"id"`
	Name        string    `json:"name"`
	Brand       string    `json:"brand,omitempty"`
	Price       float64   `json:"price"`
	WeightGrams float64   `json:"weight_grams"`
	UnitPrice   float64   `json:"unit_price"`
	Source      Source    `json:"source"`
	Category    Category  `json:"category"`
	URL         string    `json:"url,omitempty"`
	InStock     bool      `json:"in_stock"`
	FetchedAt   time.Time `json:"fetched_at"`
}

// Ingredient 一道餐點需要的食材
type Ingredient struct {
	Name      string `json:"name"`
	Quantity  string `json:"quantity,omitempty"`
	Category  string `json:"category,omitempty"`
	Essential bool   `json:"essential"`
}

// Meal 餐點
type Meal struct {
	Name        string       `json:"name"`
	Ingredients []Ingredient `json:"ingredients"`
}

// MealProfile 使用者的餐點設定，由外部協作者（App 端）提供
type MealProfile struct {
	Meals             []Meal `json:"meals"`
	HouseholdSize     int    `json:"household_size,omitempty"`
	ShoppingFrequency string `json:"shopping_frequency,omitempty"`
	City              string `json:"city,omitempty"`
	State             string `json:"state,omitempty"`
}

// OptimizationMethod 記錄產生購物籃所走的路徑
type OptimizationMethod string

const (
	MethodFast       OptimizationMethod = "fast"
	MethodGenerative OptimizationMethod = "generative"
)

// BasketItem 購物籃內已解析的一項
type BasketItem struct {
	Ingredient   string    `json:"ingredient"`
	Product      Product   `json:"product"`
	Alternatives []Product `json:"alternatives"`
	Quantity     string    `json:"quantity"`
	Savings      float64   `json:"savings"`
}

// ShoppingBasket 購物籃，一次 pipeline 執行只建構一次，之後不再修改
type ShoppingBasket struct {
	ID                 string             `json:"id"`
	GeneratedAt        time.Time          `json:"generated_at"`
	Items              []BasketItem       `json:"items"`
	TotalCost          float64            `json:"total_cost"`
	Budget             float64            `json:"budget"`
	BudgetRemaining    float64            `json:"budget_remaining"`
	StoreBreakdown     map[Source]float64 `json:"store_breakdown"`
	Tips               []string           `json:"tips"`
	OptimizationMethod OptimizationMethod `json:"optimization_method"`
}

// productIDLength 商品 ID 長度（sha256 前 12 個 hex 字元）
const productIDLength = 12

// ProductID 由來源與正規化後的名稱推導商品 ID
// 同一商品重複抓取會得到相同 ID，支撐快取與去重
func ProductID(source Source, name string) string {
	norm := strings.ToLower(strings.TrimSpace(name))
	norm = strings.Join(strings.Fields(norm), " ")
	sum := sha256.Sum256([]byte(string(source) + ":" + norm))
	return hex.EncodeToString(sum[:])[:productIDLength]
}

// UnitPrice 計算每 100 克價格
func UnitPrice(price, weightGrams float64) float64 {
	if weightGrams <= 0 {
		weightGrams = DefaultWeightGrams
	}
	return price / weightGrams * 100
}

// categoryKeywords 名稱關鍵字對應粗分類
var categoryKeywords = []struct {
	category Category
	words    []string
}{
	{CategoryProtein, []string{"chicken", "beef", "fish", "tilapia", "egg", "pork", "mutton", "omena", "bean", "lentil", "ndengu"}},
	{CategoryDairy, []string{"milk", "cheese", "yoghurt", "yogurt", "butter", "mala", "cream"}},
	{CategoryGrain, []string{"maize", "flour", "rice", "bread", "ugali", "wheat", "spaghetti", "pasta", "oat", "unga"}},
	{CategoryVegetable, []string{"tomato", "onion", "kale", "sukuma", "spinach", "cabbage", "carrot", "potato", "pepper", "garlic"}},
	{CategoryFruit, []string{"banana", "mango", "orange", "avocado", "apple", "pineapple", "melon", "pawpaw"}},
	{CategoryCondiment, []string{"salt", "sugar", "oil", "spice", "pilipili", "sauce", "vinegar", "royco", "seasoning"}},
	{CategoryBeverage, []string{"tea", "coffee", "juice", "soda", "water", "cocoa"}},
}

// InferCategory 由商品名稱關鍵字推斷分類，無法判斷時回傳 other
func InferCategory(name string) Category {
	lower := strings.ToLower(name)
	for _, ck := range categoryKeywords {
		for _, w := range ck.words {
			if strings.Contains(lower, w) {
				return ck.category
			}
		}
	}
	return CategoryOther
}

// NewProduct 建立商品並補齊推導欄位（ID、單位價格、分類）
func NewProduct(source Source, name, brand string, price, weightGrams float64, url string, inStock bool) Product {
	if weightGrams <= 0 {
		weightGrams = DefaultWeightGrams
	}
	return Product{
		ID:          ProductID(source, name),
		Name:        name,
		Brand:       brand,
		Price:       price,
		WeightGrams: weightGrams,
		UnitPrice:   UnitPrice(price, weightGrams),
		Source:      source,
		Category:    InferCategory(name),
		URL:         url,
		InStock:     inStock,
		FetchedAt:   time.Now(),
	}
}

// Eligible 商品是否可進入購物籃（價格必須為正）
func (p Product) Eligible() bool {
	return p.Price > 0
}

// FormatProducts 將商品清單格式化為提示詞用的逐行文字
func FormatProducts(products []Product) string {
	var sb strings.Builder
	for _, p := range products {
		sb.WriteString(fmt.Sprintf("- id=%s name=%s brand=%s price=%.2f weight_g=%.0f source=%s\n",
			p.ID, p.Name, p.Brand, p.Price, p.WeightGrams, p.Source))
	}
	return sb.String()
}
