package rate

import (
	"time"

	"etf-market-maker/exchange"
)

// PeriodLength 滑动窗口长度，场所按每秒统计出站消息。
const PeriodLength = time.Second

const (
	// windowScale 环形缓冲的冗余倍数，窗口永远不会追尾。
	windowScale = 16
	// safetyMargin 预算中额外保留的消息数。
	safetyMargin = 5
)

// Tracker 统计最近一秒内的出站消息数并给出新单预算。
// 环形缓冲保存时间戳，head/tail 游标加滚动计数，窗口外的条目惰性淘汰。
type Tracker struct {
	clock     Clock
	sleep     func(time.Duration)
	numClones int

	mem   []time.Time
	head  int
	tail  int
	count int
}

// NewTracker 创建跟踪器；numClones 为每侧报价档数，用于预算的状态消息预留。
func NewTracker(numClones int) *Tracker {
	return &Tracker{
		clock:     WallClock,
		sleep:     time.Sleep,
		numClones: numClones,
		mem:       make([]time.Time, windowScale*exchange.MaxMessageFreq),
	}
}

// NewTrackerWithClock 供测试注入时钟与休眠函数。
func NewTrackerWithClock(numClones int, clock Clock, sleep func(time.Duration)) *Tracker {
	t := NewTracker(numClones)
	t.clock = clock
	if sleep != nil {
		t.sleep = sleep
	}
	return t
}

// NoteMessage 登记一条出站消息。若登记后滚动计数超过场所上限，
// 阻塞等待最旧一条滑出窗口（最后防线，正确的预算路径不会触发）。
func (t *Tracker) NoteMessage() {
	now := t.clock.Now()
	t.mem[t.tail] = now
	t.tail = (t.tail + 1) % len(t.mem)
	t.count++
	t.evict(now)

	if t.count > exchange.MaxMessageFreq {
		age := now.Sub(t.mem[t.head])
		t.sleep(PeriodLength - age + 100*time.Millisecond)
		t.evict(t.clock.Now())
	}
}

// NonCancelBudget 返回本轮报价允许的新单数量。
// 预算为窗口剩余量扣除两侧最多 2*numClones 条状态消息与安全余量后的一半：
// 每个挂出去的档位漂移后还会产生一次撤单消息。
func (t *Tracker) NonCancelBudget() int {
	t.evict(t.clock.Now())
	budget := (exchange.MaxMessageFreq - t.count - 2*t.numClones - safetyMargin) / 2
	if budget < 0 {
		return 0
	}
	return budget
}

// WindowCount 返回当前窗口内的消息数（供监控）。
func (t *Tracker) WindowCount() int {
	t.evict(t.clock.Now())
	return t.count
}

func (t *Tracker) evict(now time.Time) {
	for t.count > 0 && now.Sub(t.mem[t.head]) > PeriodLength {
		t.count--
		t.head = (t.head + 1) % len(t.mem)
	}
}
