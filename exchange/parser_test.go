package exchange

import "testing"

// recordingHandler 记录收到的回调。
type recordingHandler struct {
	books    []Book
	ticks    []Book
	statuses []OrderStatusMessage
	fills    []FillMessage
	hedges   []FillMessage
	errors   []ErrorMessage
	closed   bool
}

func (h *recordingHandler) OnOrderBook(book Book) { h.books = append(h.books, book) }
func (h *recordingHandler) OnTradeTicks(ticks Book) { h.ticks = append(h.ticks, ticks) }
func (h *recordingHandler) OnOrderStatus(id, fill, remaining, fees int64) {
	h.statuses = append(h.statuses, OrderStatusMessage{ClientOrderID: id, FillVolume: fill, RemainingVolume: remaining, Fees: fees})
}
func (h *recordingHandler) OnOrderFilled(id, price, volume int64) {
	h.fills = append(h.fills, FillMessage{ClientOrderID: id, Price: price, Volume: volume})
}
func (h *recordingHandler) OnHedgeFilled(id, price, volume int64) {
	h.hedges = append(h.hedges, FillMessage{ClientOrderID: id, Price: price, Volume: volume})
}
func (h *recordingHandler) OnError(id int64, message string) {
	h.errors = append(h.errors, ErrorMessage{ClientOrderID: id, Message: message})
}
func (h *recordingHandler) OnDisconnect() { h.closed = true }

func TestDispatchOrderBook(t *testing.T) {
	raw := []byte(`{
		"type":"order_book",
		"data":{
			"instrument":"FUTURE","seq":7,
			"askPrices":[10100,10200,0,0,0],"askVolumes":[50,20,0,0,0],
			"bidPrices":[10000,9900,0,0,0],"bidVolumes":[40,10,0,0,0]
		}
	}`)
	h := &recordingHandler{}
	if err := Dispatch(raw, h); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}
	if len(h.books) != 1 {
		t.Fatalf("expected one book, got %d", len(h.books))
	}
	b := h.books[0]
	if b.Instrument != Future || b.Sequence != 7 || b.BidPrices[0] != 10000 || b.AskVolumes[1] != 20 {
		t.Fatalf("unexpected book: %+v", b)
	}
}

func TestDispatchTradeTicks(t *testing.T) {
	raw := []byte(`{"type":"trade_ticks","data":{"instrument":"ETF","seq":3}}`)
	h := &recordingHandler{}
	if err := Dispatch(raw, h); err != nil {
		t.Fatalf("dispatch err: %v", err)
	}
	if len(h.ticks) != 1 || h.ticks[0].Instrument != ETF {
		t.Fatalf("trade ticks not dispatched: %+v", h.ticks)
	}
}

func TestDispatchStatusFillError(t *testing.T) {
	h := &recordingHandler{}
	msgs := [][]byte{
		[]byte(`{"type":"order_status","data":{"clientOrderId":5,"fillVolume":10,"remainingVolume":0,"fees":-3}}`),
		[]byte(`{"type":"order_filled","data":{"clientOrderId":5,"price":9900,"volume":10}}`),
		[]byte(`{"type":"hedge_filled","data":{"clientOrderId":6,"price":100,"volume":10}}`),
		[]byte(`{"type":"error","data":{"clientOrderId":0,"message":"throttled"}}`),
	}
	for _, raw := range msgs {
		if err := Dispatch(raw, h); err != nil {
			t.Fatalf("dispatch err: %v", err)
		}
	}
	if len(h.statuses) != 1 || h.statuses[0].Fees != -3 {
		t.Fatalf("status not dispatched: %+v", h.statuses)
	}
	if len(h.fills) != 1 || len(h.hedges) != 1 {
		t.Fatalf("fills not dispatched")
	}
	if len(h.errors) != 1 || h.errors[0].Message != "throttled" {
		t.Fatalf("error not dispatched: %+v", h.errors)
	}
}

func TestDispatchUnknownType(t *testing.T) {
	h := &recordingHandler{}
	if err := Dispatch([]byte(`{"type":"gossip","data":{}}`), h); err == nil {
		t.Fatalf("expected error for unknown type")
	}
}

func TestDispatchUnknownInstrument(t *testing.T) {
	h := &recordingHandler{}
	raw := []byte(`{"type":"order_book","data":{"instrument":"BOND","seq":1}}`)
	if err := Dispatch(raw, h); err == nil {
		t.Fatalf("expected error for unknown instrument")
	}
}
