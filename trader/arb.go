package trader

import (
	"go.uber.org/zap"

	"etf-market-maker/exchange"
)

// findArbitrage 检查 ETF 与期货盘口是否交叉，交叉且价差覆盖吃单费率时，
// 以 FILL_AND_KILL 吃掉第一层交叉流动性。两份盘口必须携带同一序号，
// 否则其中一侧已过期，跳过本轮。
func (t *AutoTrader) findArbitrage(sequence uint64) {
	fut, futOK := t.books[exchange.Future]
	etf, etfOK := t.books[exchange.ETF]
	if !futOK || !etfOK || fut.Sequence != sequence || etf.Sequence != sequence {
		return
	}

	// ETF 买一压过期货卖一：卖 ETF。
	etfBid, futAsk := etf.BidPrices[0], fut.AskPrices[0]
	if etfBid != 0 && futAsk != 0 {
		diff := etfBid - futAsk
		if diff > 0 && float64(diff) > float64(etfBid)*exchange.TakerFee && !t.asks.HasPrice(etfBid) {
			size := min64(etf.BidVolumes[0], fut.AskVolumes[0])
			size = clampSize(exchange.PositionLimit-exchange.LotSize+t.inv.Position(), size)
			if size > 0 {
				t.takeCross(exchange.Sell, etfBid, size, diff)
			}
		}
	}

	// 期货买一压过 ETF 卖一：买 ETF。
	etfAsk, futBid := etf.AskPrices[0], fut.BidPrices[0]
	if etfAsk != 0 && futBid != 0 {
		diff := futBid - etfAsk
		if diff > 0 && float64(diff) > float64(etfAsk)*exchange.TakerFee && !t.bids.HasPrice(etfAsk) {
			size := min64(etf.AskVolumes[0], fut.BidVolumes[0])
			size = clampSize(exchange.PositionLimit-exchange.LotSize-t.inv.Position(), size)
			if size > 0 {
				t.takeCross(exchange.Buy, etfAsk, size, diff)
			}
		}
	}
}

func (t *AutoTrader) takeCross(side exchange.Side, price, size, edge int64) {
	id := t.nextOrderID()
	if err := t.exec.SendInsert(id, side, price, size, exchange.FillAndKill); err != nil {
		t.log.Error("send cross taker failed", zap.Int64("order_id", id), zap.Error(err))
		return
	}
	if side == exchange.Buy {
		t.arbBids[id] = struct{}{}
	} else {
		t.arbAsks[id] = struct{}{}
	}
	t.log.Info("taking crossed market",
		zap.Int64("order_id", id),
		zap.Stringer("side", side),
		zap.Int64("price", price),
		zap.Int64("size", size),
		zap.Int64("edge", edge))
	if t.metrics != nil {
		t.metrics.RecordCrossTaken()
	}
}

// clampSize 限制吃单数量不突破仓位上限（预留一手给常规报价）。
func clampSize(headroom, size int64) int64 {
	if size > headroom {
		size = headroom
	}
	if size < 0 {
		return 0
	}
	return size
}
