package monitor

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Monitor Prometheus监控指标收集器
type Monitor struct {
	registry *prometheus.Registry

	// 订单指标
	ordersPlaced   prometheus.Counter
	ordersCanceled prometheus.Counter
	ordersRejected prometheus.Counter
	filledVolume   prometheus.Counter

	// 对冲指标
	hedgesPlaced prometheus.Counter
	hedgedVolume prometheus.Counter

	// 套利指标
	crossesTaken prometheus.Counter

	// 仓位指标
	position prometheus.Gauge

	// 行情指标
	futureBid prometheus.Gauge
	futureAsk prometheus.Gauge

	// 消息频率指标
	messageWindow prometheus.Gauge
}

// Config 监控配置
type Config struct {
	Namespace string
	Subsystem string
}

// DefaultConfig 返回默认配置
func DefaultConfig() Config {
	return Config{
		Namespace: "mm",
		Subsystem: "etf",
	}
}

// New 创建新的Monitor实例
func New(cfg Config) *Monitor {
	reg := prometheus.NewRegistry()
	factory := promauto.With(reg)

	m := &Monitor{
		registry: reg,

		ordersPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "orders_placed_total",
			Help:      "报价插单总数",
		}),
		ordersCanceled: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "orders_canceled_total",
			Help:      "报价撤单总数",
		}),
		ordersRejected: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "orders_rejected_total",
			Help:      "场所错误回报总数",
		}),
		filledVolume: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "filled_volume_total",
			Help:      "ETF 累计成交手数",
		}),
		hedgesPlaced: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "hedges_placed_total",
			Help:      "期货对冲单总数",
		}),
		hedgedVolume: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "hedged_volume_total",
			Help:      "期货对冲累计成交手数",
		}),
		crossesTaken: factory.NewCounter(prometheus.CounterOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "crosses_taken_total",
			Help:      "交叉套利吃单总数",
		}),
		position: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "position_lots",
			Help:      "当前 ETF 净仓位（手）",
		}),
		futureBid: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "future_bid_cents",
			Help:      "期货买一价（分）",
		}),
		futureAsk: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "future_ask_cents",
			Help:      "期货卖一价（分）",
		}),
		messageWindow: factory.NewGauge(prometheus.GaugeOpts{
			Namespace: cfg.Namespace,
			Subsystem: cfg.Subsystem,
			Name:      "message_window_count",
			Help:      "滑动窗口内的出站消息数",
		}),
	}

	return m
}

// 订单相关方法
func (m *Monitor) RecordOrderPlaced() {
	m.ordersPlaced.Inc()
}

func (m *Monitor) RecordOrderCanceled() {
	m.ordersCanceled.Inc()
}

func (m *Monitor) RecordOrderRejected() {
	m.ordersRejected.Inc()
}

func (m *Monitor) RecordOrderFilled(volume float64) {
	m.filledVolume.Add(volume)
}

// 对冲相关方法
func (m *Monitor) RecordHedgePlaced() {
	m.hedgesPlaced.Inc()
}

func (m *Monitor) RecordHedgeFilled(volume float64) {
	m.hedgedVolume.Add(volume)
}

// 套利相关方法
func (m *Monitor) RecordCrossTaken() {
	m.crossesTaken.Inc()
}

// 仓位相关方法
func (m *Monitor) UpdatePosition(value float64) {
	m.position.Set(value)
}

// 行情相关方法
func (m *Monitor) UpdateFutureTop(bid, ask float64) {
	m.futureBid.Set(bid)
	m.futureAsk.Set(ask)
}

// 消息频率相关方法
func (m *Monitor) UpdateMessageWindow(count float64) {
	m.messageWindow.Set(count)
}

// Handler 返回HTTP handler用于暴露指标
func (m *Monitor) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{})
}

// Registry 返回prometheus registry
func (m *Monitor) Registry() *prometheus.Registry {
	return m.registry
}
