// 离线演练：用进程内场所驱动交易核心跑一段随机游走行情，
// 结束后打印消息统计与最终仓位，便于快速观察策略行为。
package main

import (
	"flag"
	"fmt"
	"log"
	"math/rand"

	"etf-market-maker/exchange"
	"etf-market-maker/infrastructure/logger"
	"etf-market-maker/rate"
	"etf-market-maker/sim"
	"etf-market-maker/trader"
)

func main() {
	steps := flag.Int("steps", 200, "行情步数")
	seed := flag.Int64("seed", 42, "随机种子")
	numClones := flag.Int("numClones", 5, "每侧报价档数")
	fillProb := flag.Float64("fillProb", 0.2, "每步顶档报价被动成交的概率")
	flag.Parse()

	lg, err := logger.New(logger.Config{Level: "info", Outputs: []string{"stdout"}, Format: "console"})
	if err != nil {
		log.Fatalf("初始化日志失败: %v", err)
	}
	defer lg.Close()

	venue := sim.NewVenue()
	tracker := rate.NewTracker(*numClones)
	dispatcher := exchange.NewDispatcher(venue, tracker)
	bot := trader.New(lg.Logger, dispatcher, tracker, trader.Params{NumClones: *numClones}, nil)
	venue.Attach(bot)

	rng := rand.New(rand.NewSource(*seed))
	mid := int64(10000)
	for i := 0; i < *steps; i++ {
		// 期货中价随机游走一个 tick
		switch rng.Intn(3) {
		case 0:
			mid += exchange.TickSizeInCents
		case 1:
			mid -= exchange.TickSizeInCents
		}
		if mid < 2*exchange.TickSizeInCents {
			mid = 2 * exchange.TickSizeInCents
		}
		book := exchange.Book{
			Instrument: exchange.Future,
			Sequence:   uint64(i + 1),
		}
		book.BidPrices[0] = mid
		book.BidVolumes[0] = 100
		book.AskPrices[0] = mid + exchange.TickSizeInCents
		book.AskVolumes[0] = 100
		venue.PushBook(book)

		// 随机让一笔最近的在途报价成交
		if rng.Float64() < *fillProb && len(venue.Inserts) > 0 {
			last := venue.Inserts[len(venue.Inserts)-1]
			_ = venue.FillOrder(last.ID, last.Price, exchange.LotSize)
		}
	}

	fmt.Printf("steps=%d inserts=%d cancels=%d hedges=%d position=%d live=%d\n",
		*steps, len(venue.Inserts), len(venue.Cancels), len(venue.Hedges),
		bot.Position(), venue.LiveOrders())
}
