package common

import (
	"math"

	"github.com/google/uuid"
)

// GenerateUUID 生成 UUID
func GenerateUUID() string {
	return uuid.New().String()
}

// RoundCurrency 金額四捨五入到分
func RoundCurrency(v float64) float64 {
	return math.Round(v*100) / 100
}

// TruncateString 截斷過長字串，用於日誌輸出
func TruncateString(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
