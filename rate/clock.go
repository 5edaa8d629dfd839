package rate

import "time"

// Clock 抽象时间便于测试。
type Clock interface {
	Now() time.Time
}

type realClock struct{}

func (realClock) Now() time.Time { return time.Now() }

// WallClock 默认使用系统时间。
var WallClock Clock = realClock{}
