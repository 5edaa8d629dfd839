package exchange

import (
	"encoding/json"
	"fmt"
)

// Envelope 对应执行通道的消息包装。
type Envelope struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// BookMessage 行情与成交档位消息共用的载荷。
type BookMessage struct {
	Instrument string                `json:"instrument"`
	Sequence   uint64                `json:"seq"`
	AskPrices  [TopLevelCount]int64  `json:"askPrices"`
	AskVolumes [TopLevelCount]int64  `json:"askVolumes"`
	BidPrices  [TopLevelCount]int64  `json:"bidPrices"`
	BidVolumes [TopLevelCount]int64  `json:"bidVolumes"`
}

// OrderStatusMessage 订单状态回报。
type OrderStatusMessage struct {
	ClientOrderID   int64 `json:"clientOrderId"`
	FillVolume      int64 `json:"fillVolume"`
	RemainingVolume int64 `json:"remainingVolume"`
	Fees            int64 `json:"fees"`
}

// FillMessage 成交回报，报价单与对冲单同构。
type FillMessage struct {
	ClientOrderID int64 `json:"clientOrderId"`
	Price         int64 `json:"price"`
	Volume        int64 `json:"volume"`
}

// ErrorMessage 撮合错误。
type ErrorMessage struct {
	ClientOrderID int64  `json:"clientOrderId"`
	Message       string `json:"message"`
}

func parseInstrument(s string) (Instrument, error) {
	switch s {
	case "FUTURE":
		return Future, nil
	case "ETF":
		return ETF, nil
	default:
		return Future, fmt.Errorf("unknown instrument %q", s)
	}
}

func (m BookMessage) toBook() (Book, error) {
	inst, err := parseInstrument(m.Instrument)
	if err != nil {
		return Book{}, err
	}
	return Book{
		Instrument: inst,
		Sequence:   m.Sequence,
		AskPrices:  m.AskPrices,
		AskVolumes: m.AskVolumes,
		BidPrices:  m.BidPrices,
		BidVolumes: m.BidVolumes,
	}, nil
}

// Dispatch 解析一条入站消息并分发到 handler。
func Dispatch(raw []byte, handler Handler) error {
	var env Envelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return fmt.Errorf("parse envelope: %w", err)
	}
	switch env.Type {
	case "order_book", "trade_ticks":
		var msg BookMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("parse %s: %w", env.Type, err)
		}
		book, err := msg.toBook()
		if err != nil {
			return err
		}
		if env.Type == "order_book" {
			handler.OnOrderBook(book)
		} else {
			handler.OnTradeTicks(book)
		}
	case "order_status":
		var msg OrderStatusMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("parse order_status: %w", err)
		}
		handler.OnOrderStatus(msg.ClientOrderID, msg.FillVolume, msg.RemainingVolume, msg.Fees)
	case "order_filled":
		var msg FillMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("parse order_filled: %w", err)
		}
		handler.OnOrderFilled(msg.ClientOrderID, msg.Price, msg.Volume)
	case "hedge_filled":
		var msg FillMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("parse hedge_filled: %w", err)
		}
		handler.OnHedgeFilled(msg.ClientOrderID, msg.Price, msg.Volume)
	case "error":
		var msg ErrorMessage
		if err := json.Unmarshal(env.Data, &msg); err != nil {
			return fmt.Errorf("parse error message: %w", err)
		}
		handler.OnError(msg.ClientOrderID, msg.Message)
	default:
		return fmt.Errorf("unknown message type %q", env.Type)
	}
	return nil
}
