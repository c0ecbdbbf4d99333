// Package consumer 消费预测请求事件并触发预测运行。
package consumer

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/segmentio/kafka-go"
	"github.com/wyfcoding/priceforecast/internal/forecast/application"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// RequestHandler 预测请求消息处理器。
type RequestHandler struct {
	app    *application.ForecastService
	logger *slog.Logger
}

// NewRequestHandler 创建消息处理器实例。
func NewRequestHandler(app *application.ForecastService, logger *slog.Logger) *RequestHandler {
	return &RequestHandler{app: app, logger: logger}
}

// Handle 处理一条预测请求。
// 解析失败与运行失败都提交位移：坏消息重投毫无意义，运行失败已落库留痕。
func (h *RequestHandler) Handle(ctx context.Context, msg kafka.Message) error {
	var evt domain.ForecastRequestedEvent
	if err := json.Unmarshal(msg.Value, &evt); err != nil {
		h.logger.ErrorContext(ctx, "failed to unmarshal forecast request",
			"topic", msg.Topic, "offset", msg.Offset, "error", err)
		return nil
	}

	cmd := application.RunForecastCommand{
		Symbol:           evt.Symbol,
		Source:           evt.Source,
		Horizon:          evt.Horizon,
		Iterations:       evt.Iterations,
		Distribution:     evt.Distribution,
		DegreesOfFreedom: evt.DegreesOfFreedom,
		Seed:             evt.Seed,
	}
	report, err := h.app.RunForecast(ctx, cmd)
	if err != nil {
		h.logger.ErrorContext(ctx, "forecast request failed",
			"symbol", evt.Symbol, "error", err)
		return nil
	}

	h.logger.InfoContext(ctx, "forecast request completed",
		"run_id", report.RunID, "symbol", report.Symbol)
	return nil
}
