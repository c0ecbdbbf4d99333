// Package http 负责处理与价格预测相关的 HTTP 请求。
package http

import (
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/pkg/logging"
	"github.com/wyfcoding/pkg/response"
	"github.com/wyfcoding/priceforecast/internal/forecast/application"
)

// ForecastHandler 预测服务的 HTTP 处理器。
type ForecastHandler struct {
	app *application.ForecastService
}

// NewForecastHandler 创建 HTTP 处理器实例。
func NewForecastHandler(app *application.ForecastService) *ForecastHandler {
	return &ForecastHandler{app: app}
}

// RegisterRoutes 将处理器方法绑定到 Gin 路由引擎。
func (h *ForecastHandler) RegisterRoutes(router *gin.Engine) {
	api := router.Group("/api/v1/forecast")
	{
		api.POST("", h.RunForecast)
		api.GET("", h.ListRuns)
		api.GET("/:id", h.GetRun)
		api.GET("/:id/report", h.GetReport)
	}
}

// RunForecast 同步执行一次预测并返回完整报告。
func (h *ForecastHandler) RunForecast(c *gin.Context) {
	var cmd application.RunForecastCommand
	if err := c.ShouldBindJSON(&cmd); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	report, err := h.app.RunForecast(c.Request.Context(), cmd)
	if err != nil {
		logging.Error(c.Request.Context(), "forecast run failed",
			"symbol", cmd.Symbol, "error", err)
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}

// ListRuns 列出最近的运行记录。
func (h *ForecastHandler) ListRuns(c *gin.Context) {
	limitStr := c.DefaultQuery("limit", "20")
	limit, err := strconv.Atoi(limitStr)
	if err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, "invalid limit", "")
		return
	}

	runs, err := h.app.ListRuns(c.Request.Context(), limit)
	if err != nil {
		logging.Error(c.Request.Context(), "failed to list forecast runs", "error", err)
		response.Error(c, err)
		return
	}
	response.Success(c, runs)
}

// GetRun 查询单条运行记录。
func (h *ForecastHandler) GetRun(c *gin.Context) {
	id := c.Param("id")
	run, err := h.app.GetRun(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, run)
}

// GetReport 查询运行对应的报告，缓存过期则返回 404。
func (h *ForecastHandler) GetReport(c *gin.Context) {
	id := c.Param("id")
	report, err := h.app.GetReport(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Success(c, report)
}
