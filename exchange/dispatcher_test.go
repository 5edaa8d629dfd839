package exchange

import "testing"

type countingNotifier struct{ n int }

func (c *countingNotifier) NoteMessage() { c.n++ }

type seqClient struct {
	notedAtSend []int
	notifier    *countingNotifier
}

func (s *seqClient) record() { s.notedAtSend = append(s.notedAtSend, s.notifier.n) }

func (s *seqClient) SendInsert(int64, Side, int64, int64, Lifespan) error { s.record(); return nil }
func (s *seqClient) SendCancel(int64) error                               { s.record(); return nil }
func (s *seqClient) SendAmend(int64, int64) error                         { s.record(); return nil }
func (s *seqClient) SendHedge(int64, Side, int64, int64) error            { s.record(); return nil }

func TestDispatcherNotesEveryMessage(t *testing.T) {
	notifier := &countingNotifier{}
	client := &seqClient{notifier: notifier}
	d := NewDispatcher(client, notifier)

	_ = d.SendInsert(1, Buy, 9900, 10, GoodForDay)
	_ = d.SendCancel(1)
	_ = d.SendAmend(1, 5)
	_ = d.SendHedge(2, Sell, MinBidNearestTick, 10)

	if notifier.n != 4 {
		t.Fatalf("expected 4 noted messages, got %d", notifier.n)
	}
	// 先记账后发送：转发时计数已包含本条
	for i, noted := range client.notedAtSend {
		if noted != i+1 {
			t.Fatalf("message %d forwarded before being noted (%d)", i, noted)
		}
	}
}
