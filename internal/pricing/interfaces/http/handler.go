// Package http 定价服务的 HTTP 接口层
package http

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// PricingHandler 定价 HTTP 处理器
type PricingHandler struct {
	service *application.PricingService
}

// NewPricingHandler 创建定价 HTTP 处理器
func NewPricingHandler(service *application.PricingService) *PricingHandler {
	return &PricingHandler{service: service}
}

// RegisterRoutes 注册路由
func (h *PricingHandler) RegisterRoutes(r *gin.RouterGroup) {
	pricing := r.Group("/pricing")
	{
		pricing.POST("/price", h.PriceOption)
		pricing.POST("/batch", h.BatchPriceOptions)
		pricing.POST("/implied-vol", h.ImpliedVol)
		pricing.POST("/greeks", h.GetGreeks)
		pricing.GET("/results/:symbol", h.GetLatestResult)
		pricing.GET("/results/:symbol/history", h.GetHistory)
	}
}

// PriceOption 单笔定价
func (h *PricingHandler) PriceOption(c *gin.Context) {
	var cmd application.PriceOptionCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Commands.PriceOption(c.Request.Context(), &cmd)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// BatchPriceOptions 批量定价
func (h *PricingHandler) BatchPriceOptions(c *gin.Context) {
	var cmd application.BatchPriceOptionsCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(cmd.Options) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "options must not be empty"})
		return
	}

	result, err := h.service.Commands.BatchPriceOptions(c.Request.Context(), &cmd)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// ImpliedVol 隐含波动率求解
func (h *PricingHandler) ImpliedVol(c *gin.Context) {
	var cmd application.ImpliedVolCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.service.Commands.ImpliedVol(c.Request.Context(), &cmd)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetGreeks 希腊字母计算
func (h *PricingHandler) GetGreeks(c *gin.Context) {
	var q application.GreeksQuery
	if err := c.ShouldBindJSON(&q); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	greeks, err := h.service.Queries.GetGreeks(c.Request.Context(), &q)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": greeks})
}

// GetLatestResult 查询合约最近一次定价结果
func (h *PricingHandler) GetLatestResult(c *gin.Context) {
	symbol := c.Param("symbol")
	result, err := h.service.Queries.GetLatestResult(c.Request.Context(), symbol)
	if err != nil {
		h.renderError(c, err)
		return
	}
	if result == nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "no pricing result for symbol " + symbol})
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": result})
}

// GetHistory 查询合约历史定价结果
func (h *PricingHandler) GetHistory(c *gin.Context) {
	symbol := c.Param("symbol")
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "100"))

	results, err := h.service.Queries.GetHistory(c.Request.Context(), symbol, limit)
	if err != nil {
		h.renderError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": results})
}

// renderError 领域错误到 HTTP 状态码的映射：
// 输入越界 400，求解未收敛 422，其余 500
func (h *PricingHandler) renderError(c *gin.Context, err error) {
	var inputErr *domain.InputError
	if errors.As(err, &inputErr) {
		c.JSON(http.StatusBadRequest, gin.H{"error": inputErr.Error()})
		return
	}

	var calcErr *domain.CalculationError
	if errors.As(err, &calcErr) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"error":      calcErr.Error(),
			"best_guess": calcErr.BestGuess,
			"residual":   calcErr.Residual,
		})
		return
	}

	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal server error"})
}
