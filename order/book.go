package order

import (
	"fmt"
	"sort"

	"go.uber.org/zap"

	"etf-market-maker/exchange"
)

// Order 自有报价单。Price 与 ID 自插入后不变，Volume 随部分成交递减。
type Order struct {
	Price  int64
	Volume int64
	ID     int64
}

// SideBook 单侧自有订单账本：有序价格集合加价格、订单号双索引。
// 账本是订单的唯一事实来源，只在状态/错误回报中变更。
type SideBook struct {
	side   exchange.Side
	log    *zap.Logger
	prices []int64 // 升序维护
	byPrc  map[int64]*Order
	byID   map[int64]*Order
}

func NewSideBook(side exchange.Side, log *zap.Logger) *SideBook {
	if log == nil {
		log = zap.NewNop()
	}
	return &SideBook{
		side:  side,
		log:   log,
		byPrc: make(map[int64]*Order),
		byID:  make(map[int64]*Order),
	}
}

// RecordInsert 登记新报价。前置条件：该价位没有在途订单。
func (b *SideBook) RecordInsert(price, volume, id int64) error {
	if _, ok := b.byPrc[price]; ok {
		return fmt.Errorf("%s order already live at price %d", b.side, price)
	}
	o := &Order{Price: price, Volume: volume, ID: id}
	i := sort.Search(len(b.prices), func(i int) bool { return b.prices[i] >= price })
	b.prices = append(b.prices, 0)
	copy(b.prices[i+1:], b.prices[i:])
	b.prices[i] = price
	b.byPrc[price] = o
	b.byID[id] = o
	return nil
}

// OnStatus 应用状态回报；remaining 为 0 时订单终结并从三个结构同时删除。
// 返回 false 表示订单号不属于本侧。
func (b *SideBook) OnStatus(id, remaining int64) bool {
	o, ok := b.byID[id]
	if !ok {
		return false
	}
	if remaining == 0 {
		b.erase(o)
	} else {
		o.Volume = remaining
	}
	return true
}

// OnError 订单级错误按终结撤单处理，等价于 OnStatus(id, 0)。
func (b *SideBook) OnError(id int64) bool {
	return b.OnStatus(id, 0)
}

// Contains 判断订单号是否属于本侧。
func (b *SideBook) Contains(id int64) bool {
	_, ok := b.byID[id]
	return ok
}

// HasPrice 判断该价位是否已有在途订单。
func (b *SideBook) HasPrice(price int64) bool {
	_, ok := b.byPrc[price]
	return ok
}

// Len 返回在途订单数。
func (b *SideBook) Len() int {
	return len(b.byID)
}

// Each 按价格升序遍历在途订单。价格集合与索引不一致时跳过该档并告警，
// 不中断遍历：回报可能穿插在扫描与发送之间，这里是兜底而非断言。
func (b *SideBook) Each(fn func(o Order)) {
	snapshot := make([]int64, len(b.prices))
	copy(snapshot, b.prices)
	for _, p := range snapshot {
		o, ok := b.byPrc[p]
		if !ok || o == nil {
			b.log.Warn("side book inconsistency, skipping price",
				zap.String("side", b.side.String()),
				zap.Int64("price", p))
			continue
		}
		fn(*o)
	}
}

// CheckConsistent 校验双索引一致性，仅用于测试与调试。
func (b *SideBook) CheckConsistent() error {
	if len(b.prices) != len(b.byPrc) || len(b.byPrc) != len(b.byID) {
		return fmt.Errorf("index sizes diverge: %d prices, %d by price, %d by id",
			len(b.prices), len(b.byPrc), len(b.byID))
	}
	for _, p := range b.prices {
		o, ok := b.byPrc[p]
		if !ok || o == nil {
			return fmt.Errorf("price %d has no order", p)
		}
		if got, ok := b.byID[o.ID]; !ok || got != o {
			return fmt.Errorf("order %d not indexed by id", o.ID)
		}
		if o.Price != p {
			return fmt.Errorf("order %d price %d indexed under %d", o.ID, o.Price, p)
		}
	}
	return nil
}

func (b *SideBook) erase(o *Order) {
	delete(b.byID, o.ID)
	delete(b.byPrc, o.Price)
	i := sort.Search(len(b.prices), func(i int) bool { return b.prices[i] >= o.Price })
	if i < len(b.prices) && b.prices[i] == o.Price {
		b.prices = append(b.prices[:i], b.prices[i+1:]...)
	}
}
