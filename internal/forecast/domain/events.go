package domain

const (
	ForecastCompletedEventType = "forecast.completed"
	ForecastRequestedEventType = "forecast.requested"
)

// ForecastCompletedEvent 预测完成事件，发往下游消费方。
// 事件是一次性通知，不是结果存储。
type ForecastCompletedEvent struct {
	RunID         string  `json:"run_id"`
	Symbol        string  `json:"symbol"`
	Horizon       int     `json:"horizon"`
	Iterations    int     `json:"iterations"`
	StartingPrice float64 `json:"starting_price"`
	WorstCase     float64 `json:"worst_case"`
	AverageCase   float64 `json:"average_case"`
	BestCase      float64 `json:"best_case"`
	Timestamp     int64   `json:"timestamp"`
}

// ForecastRequestedEvent 预测请求事件，由请求方投递到请求主题，
// 服务消费后异步执行。
type ForecastRequestedEvent struct {
	Symbol           string  `json:"symbol"`
	Source           string  `json:"source"`
	Horizon          int     `json:"horizon"`
	Iterations       int     `json:"iterations"`
	Distribution     string  `json:"distribution"`
	DegreesOfFreedom float64 `json:"degrees_of_freedom,omitempty"`
	Seed             int64   `json:"seed"`
}
