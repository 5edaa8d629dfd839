package trader

import (
	"math"

	"go.uber.org/zap"

	"etf-market-maker/exchange"
	"etf-market-maker/order"
)

// skewThreshold 仓位死区边界：|position| 严格小于该值时不偏移报价。
const skewThreshold = 50

// skew 计算仓位偏移量（分）。多头为负，把双边报价下压吸引卖方；
// 空头对称。死区避免仓位在零附近来回抖动报价。
func skew(position int64) int64 {
	switch {
	case position >= skewThreshold:
		return -int64(math.Round(float64(position-skewThreshold)/exchange.LotSize)) * exchange.TickSizeInCents
	case position <= -skewThreshold:
		return -int64(math.Round(float64(position+skewThreshold)/exchange.LotSize)) * exchange.TickSizeInCents
	default:
		return 0
	}
}

// reshape 是期货盘口更新的同步响应：先撤掉会被套利的单，再按
// 仓位偏移重排双边报价阶梯。撤单不占新单预算，预算只约束插单。
func (t *AutoTrader) reshape(book exchange.Book) {
	bid0 := book.BidPrices[0]
	ask0 := book.AskPrices[0]

	// 本轮已撤订单号，避免套利清理与阶梯重排对同一单重复发撤单。
	cancelled := make(map[int64]struct{}, 2*t.params.NumClones)

	// (a) 套利清理：自有买单价高于期货卖一（或卖单价低于期货买一）
	// 会立即被更优流动性打穿，先于一切重排撤掉。
	if ask0 != 0 {
		t.bids.Each(func(o order.Order) {
			if ask0 < o.Price {
				t.cancel(o.ID, cancelled)
			}
		})
	}
	if bid0 != 0 {
		t.asks.Each(func(o order.Order) {
			if bid0 > o.Price {
				t.cancel(o.ID, cancelled)
			}
		})
	}

	// (b) 仓位偏移。
	adjustment := skew(t.inv.Position())

	// (e) 新单预算在发出任何插单前一次性取得。
	budget := t.budget.NonCancelBudget()

	clones := int64(t.params.NumClones)
	band := clones * exchange.TickSizeInCents

	// (f) 买侧重排。买一为 0 表示期货买侧为空，整侧跳过。
	if bid0 != 0 {
		frontBid := bid0 + adjustment - exchange.AdditionalSpread
		if ask0 != 0 && frontBid > ask0 {
			// 不比期货对侧最优更激进
			frontBid = ask0
		}
		maxBidSize := t.inv.BidHeadroom()
		t.bids.Each(func(o order.Order) {
			if o.Price > frontBid || o.Price <= frontBid-band {
				t.cancel(o.ID, cancelled)
			}
			// 在途撤单在场所生效前仍可能成交，无论去留都占用买侧额度。
			maxBidSize -= o.Volume
		})
		for offset := int64(0); offset < clones && maxBidSize > 0 && budget > 0; offset++ {
			price := frontBid - offset*exchange.TickSizeInCents
			if price <= 0 {
				break
			}
			if t.bids.HasPrice(price) {
				continue
			}
			volume := min64(exchange.LotSize, maxBidSize)
			if t.insert(t.bids, exchange.Buy, price, volume) {
				budget--
				maxBidSize -= volume
			}
		}
	}

	// (g) 卖侧重排，与买侧对称。
	if ask0 != 0 {
		frontAsk := ask0 + adjustment + exchange.AdditionalSpread
		if bid0 != 0 && frontAsk < bid0 {
			frontAsk = bid0
		}
		maxAskSize := t.inv.AskHeadroom()
		t.asks.Each(func(o order.Order) {
			if o.Price < frontAsk || o.Price >= frontAsk+band {
				t.cancel(o.ID, cancelled)
			}
			maxAskSize -= o.Volume
		})
		for offset := int64(0); offset < clones && maxAskSize > 0 && budget > 0; offset++ {
			price := frontAsk + offset*exchange.TickSizeInCents
			if price <= 0 {
				// 深度多头偏移叠加极低卖一可能把前档压到非法价位，后续档仍有效
				continue
			}
			if t.asks.HasPrice(price) {
				continue
			}
			volume := min64(exchange.LotSize, maxAskSize)
			if t.insert(t.asks, exchange.Sell, price, volume) {
				budget--
				maxAskSize -= volume
			}
		}
	}
}

// cancel 发出撤单；账本不在此处变更，订单在终结状态回报到达时才出账。
func (t *AutoTrader) cancel(id int64, cancelled map[int64]struct{}) {
	if _, done := cancelled[id]; done {
		return
	}
	cancelled[id] = struct{}{}
	if err := t.exec.SendCancel(id); err != nil {
		t.log.Error("send cancel failed", zap.Int64("order_id", id), zap.Error(err))
		return
	}
	t.log.Info("cancelling order", zap.Int64("order_id", id))
	if t.metrics != nil {
		t.metrics.RecordOrderCanceled()
	}
}

// insert 发出新报价并登记账本；场所不单独确认接受，插入即视为在途。
func (t *AutoTrader) insert(book *order.SideBook, side exchange.Side, price, volume int64) bool {
	id := t.nextOrderID()
	if err := t.exec.SendInsert(id, side, price, volume, exchange.GoodForDay); err != nil {
		t.log.Error("send insert failed", zap.Int64("order_id", id), zap.Error(err))
		return false
	}
	if err := book.RecordInsert(price, volume, id); err != nil {
		t.log.Warn("record insert failed", zap.Int64("order_id", id), zap.Error(err))
		return false
	}
	t.log.Info("order inserted",
		zap.Int64("order_id", id),
		zap.Stringer("side", side),
		zap.Int64("price", price),
		zap.Int64("volume", volume))
	if t.metrics != nil {
		t.metrics.RecordOrderPlaced()
	}
	return true
}

func min64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
