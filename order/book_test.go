package order

import (
	"testing"

	"etf-market-maker/exchange"
)

func TestRecordInsertAndErase(t *testing.T) {
	b := NewSideBook(exchange.Buy, nil)
	if err := b.RecordInsert(9900, 10, 1); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if err := b.RecordInsert(9800, 10, 2); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if err := b.CheckConsistent(); err != nil {
		t.Fatalf("inconsistent after inserts: %v", err)
	}
	if b.Len() != 2 || !b.Contains(1) || !b.HasPrice(9800) {
		t.Fatalf("unexpected book state")
	}

	// 部分成交只改量
	if !b.OnStatus(1, 4) {
		t.Fatalf("status for known order not applied")
	}
	var vols []int64
	b.Each(func(o Order) { vols = append(vols, o.Volume) })
	if len(vols) != 2 || vols[1] != 4 {
		t.Fatalf("expected volume 4 at top price, got %v", vols)
	}

	// 终结回报同时清掉三个结构
	if !b.OnStatus(1, 0) {
		t.Fatalf("terminal status not applied")
	}
	if b.Contains(1) || b.HasPrice(9900) || b.Len() != 1 {
		t.Fatalf("order 1 not fully erased")
	}
	if err := b.CheckConsistent(); err != nil {
		t.Fatalf("inconsistent after erase: %v", err)
	}
}

func TestTerminalStatusIdempotent(t *testing.T) {
	b := NewSideBook(exchange.Sell, nil)
	if err := b.RecordInsert(10200, 10, 7); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if !b.OnStatus(7, 0) {
		t.Fatalf("first terminal status rejected")
	}
	// 重复的终结回报不再属于本侧，调用方只会告警
	if b.OnStatus(7, 0) {
		t.Fatalf("second terminal status should be unknown")
	}
}

func TestDuplicatePriceRejected(t *testing.T) {
	b := NewSideBook(exchange.Buy, nil)
	if err := b.RecordInsert(9900, 10, 1); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if err := b.RecordInsert(9900, 10, 2); err == nil {
		t.Fatalf("expected duplicate price error")
	}
}

func TestOnErrorActsAsCancel(t *testing.T) {
	b := NewSideBook(exchange.Buy, nil)
	if err := b.RecordInsert(9900, 10, 3); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	if !b.OnError(3) {
		t.Fatalf("error for known order not applied")
	}
	if b.Contains(3) || b.HasPrice(9900) {
		t.Fatalf("order not removed on error")
	}
}

func TestEachSkipsPhantomPrice(t *testing.T) {
	b := NewSideBook(exchange.Buy, nil)
	if err := b.RecordInsert(9900, 10, 1); err != nil {
		t.Fatalf("insert err: %v", err)
	}
	// 人为制造索引不一致:价格集合里有档位,但该档位没有索引到订单
	b.prices = append(b.prices, 9950)

	var prices []int64
	b.Each(func(o Order) { prices = append(prices, o.Price) })
	if len(prices) != 1 || prices[0] != 9900 {
		t.Fatalf("expected phantom price skipped, got %v", prices)
	}
	if err := b.CheckConsistent(); err == nil {
		t.Fatalf("expected consistency check to report the divergence")
	}

	// 真实订单不受影响,仍可正常终结
	if !b.OnStatus(1, 0) {
		t.Fatalf("real order no longer reachable")
	}
}

func TestEachAscending(t *testing.T) {
	b := NewSideBook(exchange.Sell, nil)
	for i, p := range []int64{10400, 10200, 10300} {
		if err := b.RecordInsert(p, 10, int64(i+1)); err != nil {
			t.Fatalf("insert err: %v", err)
		}
	}
	var prices []int64
	b.Each(func(o Order) { prices = append(prices, o.Price) })
	want := []int64{10200, 10300, 10400}
	for i := range want {
		if prices[i] != want[i] {
			t.Fatalf("expected ascending order %v, got %v", want, prices)
		}
	}
}
