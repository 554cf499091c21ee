package basket

import (
	"errors"
	"net/http"
	"strings"

	"pantryip/internal/core/catalog"
	"pantryip/internal/core/pipeline"
	"pantryip/internal/pkg/common"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// GenerateBasketRequest 產生購物籃的請求
type GenerateBasketRequest struct {
	Meals             []common.Meal `json:"meals" binding:"required"` // 餐點與其食材
	Budget            float64       `json:"budget" binding:"required"`
	HouseholdSize     int           `json:"household_size,omitempty"`
	ShoppingFrequency string        `json:"shopping_frequency,omitempty"` // 如 weekly、biweekly
	City              string        `json:"city,omitempty"`
	State             string        `json:"state,omitempty"`
}

// SearchProductsRequest 直接搜尋商品目錄的請求
type SearchProductsRequest struct {
	Query    string  `json:"query" binding:"required"`
	MaxPrice float64 `json:"max_price,omitempty"`
}

// SearchProductsResponse 商品搜尋回應
type SearchProductsResponse struct {
	Query      string              `json:"query"`
	TotalFound int                 `json:"total_found"`
	Products   []common.Product    `json:"products"`
	Stats      catalog.FanoutStats `json:"stats"`
}

// Handler 購物籃處理程序
type Handler struct {
	controller *pipeline.Controller
	aggregator pipeline.Collector
}

// NewHandler 建立購物籃處理程序
func NewHandler(controller *pipeline.Controller, aggregator pipeline.Collector) *Handler {
	return &Handler{
		controller: controller,
		aggregator: aggregator,
	}
}

// HandleGenerateBasket 走一整趟 pipeline 產生購物籃
func (h *Handler) HandleGenerateBasket(c *gin.Context) {
	var req GenerateBasketRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		common.LogWarn("購物籃請求格式錯誤",
			zap.Error(err),
			zap.String("request_id", c.GetHeader("X-Request-ID")),
		)
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	profile := common.MealProfile{
		Meals:             req.Meals,
		HouseholdSize:     req.HouseholdSize,
		ShoppingFrequency: req.ShoppingFrequency,
		City:              req.City,
		State:             req.State,
	}

	common.LogInfo("收到購物籃生成請求",
		zap.Int("meals", len(req.Meals)),
		zap.Float64("budget", req.Budget),
		zap.Int("household_size", req.HouseholdSize),
		zap.String("request_id", c.GetHeader("X-Request-ID")),
	)

	basket, err := h.controller.GenerateBasket(c.Request.Context(), profile, req.Budget)
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	c.JSON(http.StatusOK, basket)
}

// HandleSearchProducts 跳過最佳化，直接對所有來源搜尋單一商品
func (h *Handler) HandleSearchProducts(c *gin.Context) {
	var req SearchProductsRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "invalid request body",
			Details: err.Error(),
		})
		return
	}

	term := catalog.NormalizeTerm(req.Query)
	if term == "" {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: "query does not normalize to a usable search term",
		})
		return
	}

	result, err := h.aggregator.Collect(c.Request.Context(), []string{term})
	if err != nil {
		respondPipelineError(c, err)
		return
	}

	products := result.Products
	if req.MaxPrice > 0 {
		filtered := make([]common.Product, 0, len(products))
		for _, p := range products {
			if p.Price <= req.MaxPrice {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}

	c.JSON(http.StatusOK, SearchProductsResponse{
		Query:      term,
		TotalFound: len(products),
		Products:   products,
		Stats:      result.Stats,
	})
}

// respondPipelineError 把 pipeline 錯誤映射成 HTTP 回應
// 驗證錯誤與三種致命 pipeline 錯誤各自帶已定義的狀態碼，其餘一律 500
func respondPipelineError(c *gin.Context, err error) {
	if common.IsValidationError(err) {
		c.JSON(http.StatusBadRequest, common.ErrorResponse{
			Code:    common.ErrCodeInvalidRequest,
			Message: err.Error(),
		})
		return
	}

	var ce *common.CustomError
	if errors.As(err, &ce) {
		status := ce.Status
		if status == 0 {
			status = http.StatusInternalServerError
		}
		c.JSON(status, common.ErrorResponse{
			Code:    ce.Code,
			Message: ce.Message,
		})
		return
	}

	if strings.Contains(err.Error(), "context deadline exceeded") {
		c.JSON(http.StatusGatewayTimeout, common.ErrorResponse{
			Code:    common.ErrCodeRequestTimeout,
			Message: "basket generation timed out",
		})
		return
	}

	common.LogError("未分類的 pipeline 錯誤", zap.Error(err))
	c.JSON(http.StatusInternalServerError, common.ErrorResponse{
		Code:    common.ErrCodeInternalError,
		Message: "internal server error",
	})
}
