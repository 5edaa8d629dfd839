package exchange

// MessageNotifier 在每条出站消息发出前记账（见 rate.Tracker）。
type MessageNotifier interface {
	NoteMessage()
}

// Dispatcher 包装 ExecutionClient，把每次出站调用先计入消息频率窗口再转发。
// 先记账后发送，传输层短暂阻塞时预算依然保守。
type Dispatcher struct {
	client   ExecutionClient
	notifier MessageNotifier
}

func NewDispatcher(client ExecutionClient, notifier MessageNotifier) *Dispatcher {
	return &Dispatcher{client: client, notifier: notifier}
}

func (d *Dispatcher) SendInsert(clientOrderID int64, side Side, price, volume int64, lifespan Lifespan) error {
	d.notifier.NoteMessage()
	return d.client.SendInsert(clientOrderID, side, price, volume, lifespan)
}

func (d *Dispatcher) SendCancel(clientOrderID int64) error {
	d.notifier.NoteMessage()
	return d.client.SendCancel(clientOrderID)
}

func (d *Dispatcher) SendAmend(clientOrderID int64, newVolume int64) error {
	d.notifier.NoteMessage()
	return d.client.SendAmend(clientOrderID, newVolume)
}

func (d *Dispatcher) SendHedge(clientOrderID int64, side Side, price, volume int64) error {
	d.notifier.NoteMessage()
	return d.client.SendHedge(clientOrderID, side, price, volume)
}
