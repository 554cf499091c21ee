package source

import (
	"strings"

	"pantryip/internal/pkg/common"
)

// FixtureProvider 內建的靜態商品目錄
// 即時抓取失敗或沒有結果時的最後退路，讓 demo 與測試不依賴上游也能穩定運作。
// 只在即時路徑什麼都拿不到時被查詢，不混進即時抓取邏輯。
type FixtureProvider struct{}

// NewFixtureProvider 建立 fixture 目錄
func NewFixtureProvider() *FixtureProvider {
	return &FixtureProvider{}
}

// fixtureItem 單筆 fixture 商品（未綁定來源）
type fixtureItem struct {
	name   string
	brand  string
	price  float64 // KSh
	weight float64 // 克
}

// sourcePriceFactor 各零售商的定價差異，讓同一 fixture 在不同來源有可比較的價差
var sourcePriceFactor = map[common.Source]float64{
	common.SourceNaivas:    1.00,
	common.SourceQuickmart: 0.97,
	common.SourceCarrefour: 1.05,
}

// fixtureCatalog 以食材關鍵字為鍵的內建目錄
var fixtureCatalog = map[string][]fixtureItem{
	"chicken": {
		{name: "Whole Chicken 1.2kg", brand: "Kenchic", price: 560, weight: 1200},
		{name: "Chicken Drumsticks 500g", brand: "Kenchic", price: 295, weight: 500},
	},
	"beef": {
		{name: "Beef Cubes 500g", brand: "Farmer's Choice", price: 380, weight: 500},
	},
	"maize": {
		{name: "Maize Flour 2kg", brand: "Jogoo", price: 176, weight: 2000},
		{name: "Maize Flour 2kg", brand: "Soko", price: 168, weight: 2000},
	},
	"rice": {
		{name: "Pishori Rice 2kg", brand: "Daawat", price: 520, weight: 2000},
		{name: "Long Grain Rice 1kg", brand: "Sunrice", price: 185, weight: 1000},
	},
	"tomato": {
		{name: "Tomatoes 1kg", brand: "", price: 110, weight: 1000},
		{name: "Tomato Paste 400g", brand: "Zesta", price: 145, weight: 400},
	},
	"onion": {
		{name: "Red Onions 1kg", brand: "", price: 130, weight: 1000},
	},
	"potato": {
		{name: "Potatoes 2kg", brand: "", price: 190, weight: 2000},
	},
	"kale": {
		{name: "Sukuma Wiki Bundle 400g", brand: "", price: 45, weight: 400},
	},
	"sukuma": {
		{name: "Sukuma Wiki Bundle 400g", brand: "", price: 45, weight: 400},
	},
	"cabbage": {
		{name: "Cabbage Medium 1.5kg", brand: "", price: 80, weight: 1500},
	},
	"milk": {
		{name: "Fresh Milk 500ml", brand: "Brookside", price: 62, weight: 500},
		{name: "Long Life Milk 1L", brand: "Tuzo", price: 115, weight: 1000},
	},
	"egg": {
		{name: "Eggs Tray of 15", brand: "", price: 480, weight: 900},
	},
	"bread": {
		{name: "White Bread 400g", brand: "Festive", price: 65, weight: 400},
	},
	"sugar": {
		{name: "White Sugar 2kg", brand: "Kabras", price: 330, weight: 2000},
	},
	"salt": {
		{name: "Iodated Salt 1kg", brand: "Kensalt", price: 40, weight: 1000},
	},
	"oil": {
		{name: "Vegetable Cooking Oil 1L", brand: "Fresh Fri", price: 345, weight: 920},
	},
	"bean": {
		{name: "Rosecoco Beans 1kg", brand: "", price: 230, weight: 1000},
	},
	"tea": {
		{name: "Tea Leaves 250g", brand: "Kericho Gold", price: 195, weight: 250},
	},
	"wheat": {
		{name: "Wheat Flour 2kg", brand: "Exe", price: 210, weight: 2000},
	},
	"banana": {
		{name: "Bananas 1kg", brand: "", price: 120, weight: 1000},
	},
	"avocado": {
		{name: "Avocados Pack of 4", brand: "", price: 160, weight: 800},
	},
}

// Lookup 依搜尋詞回傳某來源的 fixture 商品，查無對應關鍵字時回傳 nil
func (p *FixtureProvider) Lookup(source common.Source, term string) []common.Product {
	norm := strings.ToLower(strings.TrimSpace(term))
	if norm == "" {
		return nil
	}

	items, ok := fixtureCatalog[norm]
	if !ok {
		// 容忍帶修飾詞的查詢，例如 "chicken breast"
		for keyword, candidates := range fixtureCatalog {
			if strings.Contains(norm, keyword) {
				items = candidates
				ok = true
				break
			}
		}
	}
	if !ok {
		return nil
	}

	factor := sourcePriceFactor[source]
	if factor == 0 {
		factor = 1.0
	}

	products := make([]common.Product, 0, len(items))
	for _, item := range items {
		price := common.RoundCurrency(item.price * factor)
		products = append(products, common.NewProduct(source, item.name, item.brand, price, item.weight, "", true))
	}
	return products
}
