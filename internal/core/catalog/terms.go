package catalog

import (
	"strings"

	"pantryip/internal/pkg/common"
)

// stopWords 搜尋前要剝掉的修飾詞
var stopWords = map[string]struct{}{
	"fresh":   {},
	"frozen":  {},
	"dried":   {},
	"chopped": {},
	"diced":   {},
	"sliced":  {},
	"large":   {},
	"small":   {},
	"medium":  {},
}

// NormalizeTerm 把食材名稱正規化成單一搜尋詞
// 小寫、去修飾詞、取第一個剩餘單詞、去複數字尾；長度不足 3 的詞直接丟棄
func NormalizeTerm(name string) string {
	lower := strings.ToLower(strings.TrimSpace(name))
	for _, field := range strings.Fields(lower) {
		if _, skip := stopWords[field]; skip {
			continue
		}
		token := field
		// 盡力而為的單數化
		if len(token) > 3 && strings.HasSuffix(token, "s") {
			token = strings.TrimSuffix(token, "s")
		}
		if len(token) <= 2 {
			return ""
		}
		return token
	}
	return ""
}

// ExtractTerms 從餐點設定展開去重後的搜尋詞集合
// 空結果是合法的終止狀態，由 pipeline 直接以 no ingredients 失敗
func ExtractTerms(profile common.MealProfile) []string {
	seen := make(map[string]struct{})
	var terms []string
	for _, meal := range profile.Meals {
		for _, ing := range meal.Ingredients {
			term := NormalizeTerm(ing.Name)
			if term == "" {
				continue
			}
			if _, dup := seen[term]; dup {
				continue
			}
			seen[term] = struct{}{}
			terms = append(terms, term)
		}
	}
	return terms
}
