package sim

import (
	"fmt"

	"etf-market-maker/exchange"
)

// Venue 进程内场所：实现 exchange.ExecutionClient，把回报排队后
// 串行投递给 Handler，模拟真实执行通道"回调跑完再来下一条"的时序。
// 出站调用产生的回报绝不在调用栈内重入交易核心。
type Venue struct {
	handler exchange.Handler

	// 事件队列：待投递的回调闭包。
	queue []func()

	orders map[int64]*restingOrder
	etf    exchange.Book
	etfSet bool

	// 统计，供测试断言。
	Inserts []InsertRecord
	Cancels []int64
	Amends  []AmendRecord
	Hedges  []HedgeRecord
}

type restingOrder struct {
	side      exchange.Side
	price     int64
	remaining int64
}

// InsertRecord 记录一次插单调用。
type InsertRecord struct {
	ID       int64
	Side     exchange.Side
	Price    int64
	Volume   int64
	Lifespan exchange.Lifespan
}

// AmendRecord 记录一次改量调用。
type AmendRecord struct {
	ID     int64
	Volume int64
}

// HedgeRecord 记录一次对冲调用。
type HedgeRecord struct {
	ID     int64
	Side   exchange.Side
	Price  int64
	Volume int64
}

func NewVenue() *Venue {
	return &Venue{orders: make(map[int64]*restingOrder)}
}

// Attach 绑定回调接收方（交易核心）。
func (v *Venue) Attach(handler exchange.Handler) {
	v.handler = handler
}

// SetETFBook 设置 ETF 盘口，后续插单据此撮合。
func (v *Venue) SetETFBook(book exchange.Book) {
	v.etf = book
	v.etfSet = true
}

// PushBook 投递一份行情快照并排空由此产生的全部回报。
func (v *Venue) PushBook(book exchange.Book) {
	if book.Instrument == exchange.ETF {
		v.SetETFBook(book)
	}
	v.handler.OnOrderBook(book)
	v.drain()
}

// PushTradeTicks 投递成交档位。
func (v *Venue) PushTradeTicks(ticks exchange.Book) {
	v.handler.OnTradeTicks(ticks)
	v.drain()
}

// FillOrder 让一笔在途订单（部分）成交并投递成交与状态回报。
func (v *Venue) FillOrder(id, price, volume int64) error {
	o, ok := v.orders[id]
	if !ok {
		return fmt.Errorf("no resting order %d", id)
	}
	if volume > o.remaining {
		volume = o.remaining
	}
	o.remaining -= volume
	filled := volume
	remaining := o.remaining
	if remaining == 0 {
		delete(v.orders, id)
	}
	v.enqueue(func() { v.handler.OnOrderFilled(id, price, filled) })
	v.enqueue(func() { v.handler.OnOrderStatus(id, filled, remaining, 0) })
	v.drain()
	return nil
}

// RejectOrder 投递一条订单级错误。
func (v *Venue) RejectOrder(id int64, message string) {
	delete(v.orders, id)
	v.enqueue(func() { v.handler.OnError(id, message) })
	v.drain()
}

// PushStatus 直接投递一条状态回报（测试幂等性等边角用）。
func (v *Venue) PushStatus(id, fillVolume, remaining, fees int64) {
	v.enqueue(func() { v.handler.OnOrderStatus(id, fillVolume, remaining, fees) })
	v.drain()
}

// Disconnect 模拟执行连接断开。
func (v *Venue) Disconnect() {
	v.enqueue(func() { v.handler.OnDisconnect() })
	v.drain()
}

// LiveOrders 返回在途订单数。
func (v *Venue) LiveOrders() int {
	return len(v.orders)
}

// SendInsert 登记订单并按当前 ETF 盘口撮合：价格交叉则立即成交顶档量，
// GOOD_FOR_DAY 余量驻留，FILL_AND_KILL 余量直接终结。
func (v *Venue) SendInsert(id int64, side exchange.Side, price, volume int64, lifespan exchange.Lifespan) error {
	v.Inserts = append(v.Inserts, InsertRecord{ID: id, Side: side, Price: price, Volume: volume, Lifespan: lifespan})

	filled := int64(0)
	fillPrice := int64(0)
	if v.etfSet {
		if side == exchange.Buy && v.etf.AskPrices[0] != 0 && price >= v.etf.AskPrices[0] {
			filled = minInt64(volume, v.etf.AskVolumes[0])
			fillPrice = v.etf.AskPrices[0]
		}
		if side == exchange.Sell && v.etf.BidPrices[0] != 0 && price <= v.etf.BidPrices[0] {
			filled = minInt64(volume, v.etf.BidVolumes[0])
			fillPrice = v.etf.BidPrices[0]
		}
	}

	remaining := volume - filled
	if lifespan == exchange.FillAndKill {
		// 未成交部分取消
		if remaining > 0 {
			remaining = 0
		}
	}
	if remaining > 0 {
		v.orders[id] = &restingOrder{side: side, price: price, remaining: remaining}
	}
	if filled > 0 {
		rem := remaining
		v.enqueue(func() { v.handler.OnOrderFilled(id, fillPrice, filled) })
		v.enqueue(func() { v.handler.OnOrderStatus(id, filled, rem, 0) })
	} else if lifespan == exchange.FillAndKill {
		v.enqueue(func() { v.handler.OnOrderStatus(id, 0, 0, 0) })
	}
	return nil
}

// SendCancel 终结在途订单并投递状态回报；未知订单投递错误回报。
func (v *Venue) SendCancel(id int64) error {
	v.Cancels = append(v.Cancels, id)
	if _, ok := v.orders[id]; !ok {
		v.enqueue(func() { v.handler.OnError(id, "order not found") })
		return nil
	}
	delete(v.orders, id)
	v.enqueue(func() { v.handler.OnOrderStatus(id, 0, 0, 0) })
	return nil
}

// SendAmend 调整在途量并投递状态回报。
func (v *Venue) SendAmend(id int64, newVolume int64) error {
	v.Amends = append(v.Amends, AmendRecord{ID: id, Volume: newVolume})
	o, ok := v.orders[id]
	if !ok {
		v.enqueue(func() { v.handler.OnError(id, "order not found") })
		return nil
	}
	o.remaining = newVolume
	rem := newVolume
	if rem == 0 {
		delete(v.orders, id)
	}
	v.enqueue(func() { v.handler.OnOrderStatus(id, 0, rem, 0) })
	return nil
}

// SendHedge 对冲单必然可成交，立即按委托价全量回报。
func (v *Venue) SendHedge(id int64, side exchange.Side, price, volume int64) error {
	v.Hedges = append(v.Hedges, HedgeRecord{ID: id, Side: side, Price: price, Volume: volume})
	v.enqueue(func() { v.handler.OnHedgeFilled(id, price, volume) })
	return nil
}

func (v *Venue) enqueue(fn func()) {
	v.queue = append(v.queue, fn)
}

// drain 顺序投递排队回报；投递过程中新产生的回报追加到队尾。
func (v *Venue) drain() {
	for len(v.queue) > 0 {
		fn := v.queue[0]
		v.queue = v.queue[1:]
		fn()
	}
}

func minInt64(a, b int64) int64 {
	if a < b {
		return a
	}
	return b
}
