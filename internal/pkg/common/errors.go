package common

import (
	"errors"
	"net/http"
)

// ErrorResponse 定義 API 錯誤響應結構
type ErrorResponse struct {
	Code    string `json:"code"`              // 錯誤代碼
	Message string `json:"message"`           // 錯誤信息
	Details string `json:"details,omitempty"` // 詳細信息（僅在開發模式顯示）
}

// CustomError 定義自定義錯誤類型
type CustomError struct {
	Code    string // 錯誤代碼
	Message string // 錯誤信息
	Err     error  // 原始錯誤
	Status  int    // HTTP 狀態碼
}

func (e *CustomError) Error() string {
	if e.Err != nil {
		return e.Message + ": " + e.Err.Error()
	}
	return e.Message
}

// Unwrap 支援 errors.Is / errors.As
func (e *CustomError) Unwrap() error {
	return e.Err
}

// Is 以錯誤代碼比對，讓包裝過的 pipeline 錯誤仍能用 errors.Is 判斷
func (e *CustomError) Is(target error) bool {
	var ce *CustomError
	if errors.As(target, &ce) {
		return e.Code == ce.Code
	}
	return false
}

// NewError 創建新的自定義錯誤
func NewError(code string, message string, status int, err error) *CustomError {
	return &CustomError{
		Code:    code,
		Message: message,
		Status:  status,
		Err:     err,
	}
}

// ValidationError 表示驗證錯誤，在 pipeline 開始前就拒絕，不重試
type ValidationError struct {
	message string
}

// Error 實現 error 介面
func (e *ValidationError) Error() string {
	return e.message
}

// NewValidationError 創建新的驗證錯誤
func NewValidationError(message string) error {
	return &ValidationError{
		message: message,
	}
}

// IsValidationError 檢查是否為驗證錯誤
func IsValidationError(err error) bool {
	var ve *ValidationError
	return errors.As(err, &ve)
}

// 預定義錯誤代碼
const (
	// 客戶端錯誤 (4xx)
	ErrCodeInvalidRequest  = "INVALID_REQUEST"   // 400
	ErrCodeRequestTimeout  = "REQUEST_TIMEOUT"   // 408
	ErrCodeTooManyRequests = "TOO_MANY_REQUESTS" // 429

	// 服務器錯誤 (5xx)
	ErrCodeInternalError = "INTERNAL_ERROR" // 500

	// pipeline 錯誤代碼
	ErrCodeNoIngredients      = "NO_INGREDIENTS"
	ErrCodeNoProducts         = "NO_PRODUCTS"
	ErrCodeModelResponseParse = "MODEL_RESPONSE_PARSE"
)

// pipeline 可終止請求的錯誤，其餘狀況一律就地吸收
var (
	// ErrNoIngredients 食材清單展開後沒有任何可用搜尋詞
	ErrNoIngredients = NewError(ErrCodeNoIngredients, "no ingredients to search for", http.StatusBadRequest, nil)

	// ErrNoProducts 所有來源都沒有找到任何商品
	ErrNoProducts = NewError(ErrCodeNoProducts, "no products available", http.StatusNotFound, nil)

	// ErrModelResponseParse 生成式模型輸出完全無法解析
	ErrModelResponseParse = NewError(ErrCodeModelResponseParse, "model response could not be parsed", http.StatusBadGateway, nil)

	// ErrCacheMiss 快取未命中
	ErrCacheMiss = NewError("CACHE_MISS", "cache miss", http.StatusNotFound, nil)
)

// WrapPipelineError 保留原始錯誤但沿用既有代碼與狀態
func WrapPipelineError(base *CustomError, err error) *CustomError {
	return NewError(base.Code, base.Message, base.Status, err)
}

// IsPipelineFatal 判斷錯誤是否應終止整個請求
func IsPipelineFatal(err error) bool {
	if err == nil {
		return false
	}
	if IsValidationError(err) {
		return true
	}
	var ce *CustomError
	if errors.As(err, &ce) {
		switch ce.Code {
		case ErrCodeNoIngredients, ErrCodeNoProducts, ErrCodeModelResponseParse:
			return true
		}
	}
	return false
}
