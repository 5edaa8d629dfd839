package inventory

import "etf-market-maker/exchange"

// Tracker 维护 ETF 净仓位（带符号整数手）。
// 仅在自有 ETF 成交时更新；期货对冲成交只做日志，不计入仓位。
type Tracker struct {
	position int64
}

// ApplyFill 按成交方向调整仓位：买入为正，卖出为负。
func (t *Tracker) ApplyFill(side exchange.Side, volume int64) {
	if side == exchange.Buy {
		t.position += volume
	} else {
		t.position -= volume
	}
}

// Position 返回当前净仓位。
func (t *Tracker) Position() int64 {
	return t.position
}

// BidHeadroom 返回买侧还能报出的最大数量（含在途买单前）。
func (t *Tracker) BidHeadroom() int64 {
	return exchange.PositionLimit - t.position
}

// AskHeadroom 返回卖侧还能报出的最大数量（含在途卖单前）。
func (t *Tracker) AskHeadroom() int64 {
	return exchange.PositionLimit + t.position
}
