package exchange

// Instrument 标识交易标的：期货为对冲腿，ETF 为做市腿。
type Instrument int

const (
	Future Instrument = iota
	ETF
)

func (i Instrument) String() string {
	switch i {
	case Future:
		return "FUTURE"
	case ETF:
		return "ETF"
	default:
		return "UNKNOWN"
	}
}

// Side 买卖方向。
type Side int

const (
	Buy Side = iota
	Sell
)

func (s Side) String() string {
	if s == Buy {
		return "BUY"
	}
	return "SELL"
}

// Lifespan 订单有效期。
type Lifespan int

const (
	GoodForDay Lifespan = iota
	FillAndKill
)

func (l Lifespan) String() string {
	if l == FillAndKill {
		return "FILL_AND_KILL"
	}
	return "GOOD_FOR_DAY"
}

// 场所合约常量，价格一律为整数分，数量为整数手。
const (
	TickSizeInCents = 100
	LotSize         = 10
	PositionLimit   = 100
	TopLevelCount   = 5
	MaxMessageFreq  = 50 // 每秒出站消息上限

	AdditionalSpread = 1 * TickSizeInCents

	MinimumBid = 1
	MaximumAsk = 1<<31 - 1

	// 向内取整到 tick 的场所价格边界，对冲单挂在这里保证立即可成交。
	MinBidNearestTick = (MinimumBid + TickSizeInCents) / TickSizeInCents * TickSizeInCents
	MaxAskNearestTick = MaximumAsk / TickSizeInCents * TickSizeInCents

	TakerFee = 0.0002
	MakerFee = -0.0001
)

// Book 是场所推送的五档行情快照，零值填充空档。
type Book struct {
	Instrument Instrument
	Sequence   uint64
	AskPrices  [TopLevelCount]int64
	AskVolumes [TopLevelCount]int64
	BidPrices  [TopLevelCount]int64
	BidVolumes [TopLevelCount]int64
}
