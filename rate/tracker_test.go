package rate

import (
	"testing"
	"time"

	"etf-market-maker/exchange"
)

// fakeClock 手动推进的时钟；sleep 同步推进时间。
type fakeClock struct {
	now time.Time
}

func (c *fakeClock) Now() time.Time { return c.now }

func (c *fakeClock) advance(d time.Duration) { c.now = c.now.Add(d) }

func newTestTracker(numClones int) (*Tracker, *fakeClock) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	t := NewTrackerWithClock(numClones, clock, clock.advance)
	return t, clock
}

func TestBudgetEmptyWindow(t *testing.T) {
	tr, _ := newTestTracker(5)
	// (50 - 0 - 10 - 5) / 2
	if got := tr.NonCancelBudget(); got != 17 {
		t.Fatalf("expected budget 17, got %d", got)
	}
}

func TestBudgetAfterMessages(t *testing.T) {
	tr, _ := newTestTracker(3)
	for i := 0; i < 45; i++ {
		tr.NoteMessage()
	}
	// (50 - 45 - 6 - 5) / 2 < 0
	if got := tr.NonCancelBudget(); got != 0 {
		t.Fatalf("expected budget 0, got %d", got)
	}
}

func TestEviction(t *testing.T) {
	tr, clock := newTestTracker(5)
	for i := 0; i < 20; i++ {
		tr.NoteMessage()
	}
	if got := tr.WindowCount(); got != 20 {
		t.Fatalf("expected 20 in window, got %d", got)
	}
	clock.advance(PeriodLength + time.Millisecond)
	if got := tr.WindowCount(); got != 0 {
		t.Fatalf("expected empty window after period, got %d", got)
	}
	if got := tr.NonCancelBudget(); got != 17 {
		t.Fatalf("expected budget restored to 17, got %d", got)
	}
}

func TestSlidingWindowPartialEviction(t *testing.T) {
	tr, clock := newTestTracker(5)
	for i := 0; i < 10; i++ {
		tr.NoteMessage()
	}
	clock.advance(600 * time.Millisecond)
	for i := 0; i < 5; i++ {
		tr.NoteMessage()
	}
	clock.advance(500 * time.Millisecond)
	// 前 10 条已过期，后 5 条仍在窗口内
	if got := tr.WindowCount(); got != 5 {
		t.Fatalf("expected 5 in window, got %d", got)
	}
}

func TestSafetyStall(t *testing.T) {
	clock := &fakeClock{now: time.Unix(1000, 0)}
	var slept time.Duration
	tr := NewTrackerWithClock(5, clock, func(d time.Duration) {
		slept += d
		clock.advance(d)
	})
	for i := 0; i < exchange.MaxMessageFreq; i++ {
		tr.NoteMessage()
	}
	if slept != 0 {
		t.Fatalf("stall engaged below cap: slept %v", slept)
	}
	tr.NoteMessage() // 第 51 条触发安全刹车
	if slept == 0 {
		t.Fatalf("expected stall above cap")
	}
	if slept < PeriodLength {
		t.Fatalf("stall too short: %v", slept)
	}
	// 刹车醒来后窗口已清空
	if got := tr.WindowCount(); got != 0 {
		t.Fatalf("expected empty window after stall, got %d", got)
	}
}

func TestRingWraparound(t *testing.T) {
	tr, clock := newTestTracker(5)
	// 远超环形缓冲容量的消息量，分批滑出窗口
	for batch := 0; batch < 2*windowScale; batch++ {
		for i := 0; i < exchange.MaxMessageFreq; i++ {
			tr.NoteMessage()
		}
		clock.advance(PeriodLength + time.Millisecond)
	}
	if got := tr.WindowCount(); got != 0 {
		t.Fatalf("expected empty window, got %d", got)
	}
}
