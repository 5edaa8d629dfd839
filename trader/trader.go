package trader

import (
	"sync/atomic"

	"go.uber.org/zap"

	"etf-market-maker/exchange"
	"etf-market-maker/inventory"
	"etf-market-maker/monitor"
	"etf-market-maker/order"
)

// BudgetSource 提供本轮报价允许的新单数量（见 rate.Tracker）。
type BudgetSource interface {
	NonCancelBudget() int
}

// Params 交易参数。
type Params struct {
	// NumClones 每侧报价档数。
	NumClones int
	// CrossArb 启用 ETF/期货交叉套利吃单（默认关闭，报价路径不读 ETF 行情）。
	CrossArb bool
}

// AutoTrader 做市核心：在期货盘口驱动下维护 ETF 报价阶梯，
// 成交后立即用期货市价腿对冲。实现 exchange.Handler，
// 回调由传输层事件循环串行投递，内部状态无需加锁。
type AutoTrader struct {
	log     *zap.Logger
	exec    exchange.ExecutionClient
	budget  BudgetSource
	metrics *monitor.Monitor

	params Params

	// crossArb 可由配置热更线程切换，与回调线程之间用原子量同步。
	crossArb atomic.Bool

	nextID int64
	bids   *order.SideBook
	asks   *order.SideBook
	inv    *inventory.Tracker

	// 交叉套利状态：各标的最新行情与在途吃单号。
	books   map[exchange.Instrument]exchange.Book
	arbBids map[int64]struct{}
	arbAsks map[int64]struct{}

	stopped bool
}

// New 创建交易核心。metrics 可为 nil。
func New(log *zap.Logger, exec exchange.ExecutionClient, budget BudgetSource, params Params, metrics *monitor.Monitor) *AutoTrader {
	if log == nil {
		log = zap.NewNop()
	}
	if params.NumClones <= 0 {
		params.NumClones = 5
	}
	t := &AutoTrader{
		log:     log,
		exec:    exec,
		budget:  budget,
		metrics: metrics,
		params:  params,
		nextID:  1,
		bids:    order.NewSideBook(exchange.Buy, log),
		asks:    order.NewSideBook(exchange.Sell, log),
		inv:     &inventory.Tracker{},
		books:   make(map[exchange.Instrument]exchange.Book),
		arbBids: make(map[int64]struct{}),
		arbAsks: make(map[int64]struct{}),
	}
	t.crossArb.Store(params.CrossArb)
	return t
}

// SetCrossArb 切换交叉套利吃单（配置热更入口）。
func (t *AutoTrader) SetCrossArb(enabled bool) {
	t.crossArb.Store(enabled)
}

// Position 返回当前 ETF 净仓位。
func (t *AutoTrader) Position() int64 {
	return t.inv.Position()
}

// Bids 返回买侧账本（测试与监控用）。
func (t *AutoTrader) Bids() *order.SideBook { return t.bids }

// Asks 返回卖侧账本（测试与监控用）。
func (t *AutoTrader) Asks() *order.SideBook { return t.asks }

// OnOrderBook 行情回调。仅期货盘口驱动报价；ETF 行情只用于可选的交叉套利。
func (t *AutoTrader) OnOrderBook(book exchange.Book) {
	if t.stopped {
		return
	}
	t.log.Debug("order book received",
		zap.Stringer("instrument", book.Instrument),
		zap.Uint64("seq", book.Sequence),
		zap.Int64("bid", book.BidPrices[0]),
		zap.Int64("ask", book.AskPrices[0]))

	if t.crossArb.Load() {
		t.books[book.Instrument] = book
		t.findArbitrage(book.Sequence)
	}
	if book.Instrument == exchange.Future {
		if t.metrics != nil {
			t.metrics.UpdateFutureTop(float64(book.BidPrices[0]), float64(book.AskPrices[0]))
		}
		t.reshape(book)
	}
}

// OnTradeTicks 成交档位仅作观测。
func (t *AutoTrader) OnTradeTicks(ticks exchange.Book) {
	t.log.Debug("trade ticks received",
		zap.Stringer("instrument", ticks.Instrument),
		zap.Uint64("seq", ticks.Sequence))
}

// OnOrderStatus 状态回报落账；remaining 为 0 的重复回报只会告警。
func (t *AutoTrader) OnOrderStatus(clientOrderID int64, fillVolume, remainingVolume, fees int64) {
	if t.bids.OnStatus(clientOrderID, remainingVolume) || t.asks.OnStatus(clientOrderID, remainingVolume) {
		t.log.Debug("order status applied",
			zap.Int64("order_id", clientOrderID),
			zap.Int64("filled", fillVolume),
			zap.Int64("remaining", remainingVolume),
			zap.Int64("fees", fees))
		return
	}
	if _, ok := t.arbBids[clientOrderID]; ok {
		if remainingVolume == 0 {
			delete(t.arbBids, clientOrderID)
		}
		return
	}
	if _, ok := t.arbAsks[clientOrderID]; ok {
		if remainingVolume == 0 {
			delete(t.arbAsks, clientOrderID)
		}
		return
	}
	t.log.Warn("unknown order had an update", zap.Int64("order_id", clientOrderID))
}

// OnOrderFilled 自有 ETF 成交：立即在期货上发出必然可成交的反向对冲单，
// 然后更新净仓位。对冲单只记日志，不进账本。
func (t *AutoTrader) OnOrderFilled(clientOrderID int64, price, volume int64) {
	t.log.Info("order filled",
		zap.Int64("order_id", clientOrderID),
		zap.Int64("price", price),
		zap.Int64("volume", volume))

	switch {
	case t.bids.Contains(clientOrderID) || t.isArbBid(clientOrderID):
		t.sendHedge(exchange.Sell, exchange.MinBidNearestTick, volume)
		t.inv.ApplyFill(exchange.Buy, volume)
	case t.asks.Contains(clientOrderID) || t.isArbAsk(clientOrderID):
		t.sendHedge(exchange.Buy, exchange.MaxAskNearestTick, volume)
		t.inv.ApplyFill(exchange.Sell, volume)
	default:
		t.log.Warn("fill for unknown order", zap.Int64("order_id", clientOrderID))
		return
	}
	if t.metrics != nil {
		t.metrics.RecordOrderFilled(float64(volume))
		t.metrics.UpdatePosition(float64(t.inv.Position()))
	}
}

// OnHedgeFilled 对冲成交仅作日志；仓位以 ETF 账本定义。
func (t *AutoTrader) OnHedgeFilled(clientOrderID int64, price, volume int64) {
	t.log.Info("hedge filled",
		zap.Int64("order_id", clientOrderID),
		zap.Int64("avg_price", price),
		zap.Int64("volume", volume))
	if t.metrics != nil {
		t.metrics.RecordHedgeFilled(float64(volume))
	}
}

// OnError 订单级错误按终结撤单处理；订单号为 0 只记日志。
func (t *AutoTrader) OnError(clientOrderID int64, message string) {
	t.log.Warn("error from venue",
		zap.Int64("order_id", clientOrderID),
		zap.String("message", message))
	if clientOrderID == 0 {
		return
	}
	if t.bids.Contains(clientOrderID) || t.asks.Contains(clientOrderID) ||
		t.isArbBid(clientOrderID) || t.isArbAsk(clientOrderID) {
		if t.metrics != nil {
			t.metrics.RecordOrderRejected()
		}
		t.OnOrderStatus(clientOrderID, 0, 0, 0)
	}
}

// OnDisconnect 执行连接断开：记日志并停止报价。
func (t *AutoTrader) OnDisconnect() {
	t.log.Info("execution connection lost")
	t.stopped = true
}

func (t *AutoTrader) nextOrderID() int64 {
	id := t.nextID
	t.nextID++
	return id
}

func (t *AutoTrader) sendHedge(side exchange.Side, price, volume int64) {
	id := t.nextOrderID()
	if err := t.exec.SendHedge(id, side, price, volume); err != nil {
		t.log.Error("send hedge failed", zap.Int64("order_id", id), zap.Error(err))
		return
	}
	t.log.Info("hedge sent",
		zap.Int64("order_id", id),
		zap.Stringer("side", side),
		zap.Int64("price", price),
		zap.Int64("volume", volume))
	if t.metrics != nil {
		t.metrics.RecordHedgePlaced()
	}
}

func (t *AutoTrader) isArbBid(id int64) bool {
	_, ok := t.arbBids[id]
	return ok
}

func (t *AutoTrader) isArbAsk(id int64) bool {
	_, ok := t.arbAsks[id]
	return ok
}
