package trader

import (
	"testing"

	"github.com/stretchr/testify/require"

	"etf-market-maker/exchange"
)

func etfBook(seq uint64, bid, bidVol, ask, askVol int64) exchange.Book {
	b := futureBook(seq, bid, bidVol, ask, askVol)
	b.Instrument = exchange.ETF
	return b
}

func fakCalls(exec *fakeExec) []execCall {
	var res []execCall
	for _, c := range exec.calls {
		if c.kind == "insert" && c.lifespan == exchange.FillAndKill {
			res = append(res, c)
		}
	}
	return res
}

func newArbTrader(t *testing.T) (*AutoTrader, *fakeExec) {
	t.Helper()
	exec := &fakeExec{}
	bot := New(nil, exec, &varBudget{n: 17}, Params{NumClones: 3, CrossArb: true}, nil)
	return bot, exec
}

func TestCrossedMarketTaken(t *testing.T) {
	bot, exec := newArbTrader(t)
	bot.OnOrderBook(futureBook(1, 10000, 50, 10100, 15))
	// ETF 买一 10500 压过期货卖一 10100
	bot.OnOrderBook(etfBook(1, 10500, 20, 10600, 20))

	fak := fakCalls(exec)
	require.Len(t, fak, 1)
	require.Equal(t, exchange.Sell, fak[0].side)
	require.Equal(t, int64(10500), fak[0].price)
	require.Equal(t, int64(15), fak[0].volume, "size is the thinner of both top levels")

	// 吃单成交会对冲并计入仓位
	exec.calls = nil
	bot.OnOrderFilled(fak[0].id, 10500, 15)
	require.Equal(t, int64(-15), bot.Position())
	require.Equal(t, "hedge", exec.calls[0].kind)
	require.Equal(t, exchange.Buy, exec.calls[0].side)

	// 终结回报清掉吃单登记，重复回报只告警
	bot.OnOrderStatus(fak[0].id, 15, 0, 0)
	bot.OnOrderStatus(fak[0].id, 15, 0, 0)
}

func TestCrossRequiresMatchingSequence(t *testing.T) {
	bot, exec := newArbTrader(t)
	bot.OnOrderBook(futureBook(1, 10000, 50, 10100, 15))
	// 序号不同，其中一侧盘口已过期
	bot.OnOrderBook(etfBook(2, 10500, 20, 10600, 20))
	require.Empty(t, fakCalls(exec))
}

func TestCrossMustCoverTakerFee(t *testing.T) {
	bot, exec := newArbTrader(t)
	// 价差一个 tick，但高价位下吃单费率超过价差
	bot.OnOrderBook(futureBook(1, 999800, 50, 999900, 15))
	bot.OnOrderBook(etfBook(1, 1000000, 20, 1000100, 20))
	require.Empty(t, fakCalls(exec))
}

func TestCrossDisabledByDefault(t *testing.T) {
	bot, exec, _ := newTestTrader(t, 3)
	bot.OnOrderBook(futureBook(1, 10000, 50, 10100, 15))
	bot.OnOrderBook(etfBook(1, 10500, 20, 10600, 20))
	require.Empty(t, fakCalls(exec))
}

func TestCrossToggle(t *testing.T) {
	bot, exec, _ := newTestTrader(t, 3)
	bot.SetCrossArb(true)
	bot.OnOrderBook(futureBook(1, 10000, 50, 10100, 15))
	bot.OnOrderBook(etfBook(1, 10500, 20, 10600, 20))
	require.Len(t, fakCalls(exec), 1)
}
