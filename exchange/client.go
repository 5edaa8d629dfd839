package exchange

// Handler 接收场所回调；由交易核心实现。
// 回调由传输层事件循环串行投递，实现方无需加锁。
type Handler interface {
	// OnOrderBook 场所周期性推送的五档行情。
	OnOrderBook(book Book)
	// OnTradeTicks 成交档位汇总，与行情快照同构。
	OnTradeTicks(ticks Book)
	// OnOrderStatus 订单状态变化；remainingVolume 为 0 表示订单终结。
	OnOrderStatus(clientOrderID int64, fillVolume, remainingVolume int64, fees int64)
	// OnOrderFilled 自有 ETF 订单（部分）成交。
	OnOrderFilled(clientOrderID int64, price, volume int64)
	// OnHedgeFilled 对冲单（部分）成交；失败时价格与数量均为 0。
	OnHedgeFilled(clientOrderID int64, price, volume int64)
	// OnError 撮合错误；clientOrderID 为 0 表示与具体订单无关。
	OnError(clientOrderID int64, message string)
	// OnDisconnect 执行连接断开。
	OnDisconnect()
}

// ExecutionClient 出站下单接口；由传输层实现。
type ExecutionClient interface {
	SendInsert(clientOrderID int64, side Side, price, volume int64, lifespan Lifespan) error
	SendCancel(clientOrderID int64) error
	SendAmend(clientOrderID int64, newVolume int64) error
	SendHedge(clientOrderID int64, side Side, price, volume int64) error
}
