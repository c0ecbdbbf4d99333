// Package publisher 提供了预测完成事件的 Kafka 发布实现。
package publisher

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/wyfcoding/pkg/messagequeue/kafka"
	"github.com/wyfcoding/priceforecast/internal/forecast/domain"
)

// KafkaEventPublisher 将预测完成事件发布到生产者绑定的主题。
type KafkaEventPublisher struct {
	producer *kafka.Producer
}

// NewKafkaEventPublisher 创建事件发布器实例。
func NewKafkaEventPublisher(producer *kafka.Producer) domain.EventPublisher {
	return &KafkaEventPublisher{producer: producer}
}

// PublishForecastCompleted 以标的为分区键发布完成事件，同一标的保序。
func (p *KafkaEventPublisher) PublishForecastCompleted(ctx context.Context, evt *domain.ForecastCompletedEvent) error {
	if evt == nil {
		return nil
	}
	data, err := json.Marshal(evt)
	if err != nil {
		return fmt.Errorf("failed to marshal forecast completed event: %w", err)
	}
	return p.producer.Publish(ctx, []byte(evt.Symbol), data)
}
