package exchange

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WSClient 通过 WebSocket 连接场所执行通道：读循环串行分发回调，
// 出站下单走同一连接。实现 ExecutionClient。
type WSClient struct {
	Endpoint string
	TeamName string
	Secret   string
	Dialer   *websocket.Dialer
	Log      *zap.Logger

	mu   sync.Mutex // 保护并发写；gorilla 连接只允许单写者
	conn *websocket.Conn
}

func NewWSClient(endpoint, teamName, secret string, log *zap.Logger) *WSClient {
	if log == nil {
		log = zap.NewNop()
	}
	return &WSClient{
		Endpoint: endpoint,
		TeamName: teamName,
		Secret:   secret,
		Dialer:   websocket.DefaultDialer,
		Log:      log,
	}
}

type loginRequest struct {
	Type     string `json:"type"`
	TeamName string `json:"teamName"`
	Secret   string `json:"secret"`
}

type insertRequest struct {
	Type          string `json:"type"`
	ClientOrderID int64  `json:"clientOrderId"`
	Side          string `json:"side"`
	Price         int64  `json:"price"`
	Volume        int64  `json:"volume"`
	Lifespan      string `json:"lifespan"`
}

type cancelRequest struct {
	Type          string `json:"type"`
	ClientOrderID int64  `json:"clientOrderId"`
}

type amendRequest struct {
	Type          string `json:"type"`
	ClientOrderID int64  `json:"clientOrderId"`
	Volume        int64  `json:"volume"`
}

type hedgeRequest struct {
	Type          string `json:"type"`
	ClientOrderID int64  `json:"clientOrderId"`
	Side          string `json:"side"`
	Price         int64  `json:"price"`
	Volume        int64  `json:"volume"`
}

// Run 建立连接、登录并进入读循环；回调按到达顺序串行投递给 handler。
// 连接断开时调用 handler.OnDisconnect 并返回。
func (c *WSClient) Run(ctx context.Context, handler Handler) error {
	conn, _, err := c.Dialer.DialContext(ctx, c.Endpoint, nil)
	if err != nil {
		return fmt.Errorf("dial %s: %w", c.Endpoint, err)
	}
	c.mu.Lock()
	c.conn = conn
	c.mu.Unlock()
	defer conn.Close()

	if err := c.write(loginRequest{Type: "login", TeamName: c.TeamName, Secret: c.Secret}); err != nil {
		return fmt.Errorf("login: %w", err)
	}
	c.Log.Info("execution connection established", zap.String("endpoint", c.Endpoint))

	go func() {
		<-ctx.Done()
		_ = conn.SetReadDeadline(time.Now())
	}()

	for {
		_, raw, err := conn.ReadMessage()
		if err != nil {
			handler.OnDisconnect()
			if ctx.Err() != nil {
				return ctx.Err()
			}
			return err
		}
		if err := Dispatch(raw, handler); err != nil {
			c.Log.Warn("dropping unparseable message", zap.Error(err))
		}
	}
}

func (c *WSClient) SendInsert(clientOrderID int64, side Side, price, volume int64, lifespan Lifespan) error {
	return c.write(insertRequest{
		Type:          "insert",
		ClientOrderID: clientOrderID,
		Side:          side.String(),
		Price:         price,
		Volume:        volume,
		Lifespan:      lifespan.String(),
	})
}

func (c *WSClient) SendCancel(clientOrderID int64) error {
	return c.write(cancelRequest{Type: "cancel", ClientOrderID: clientOrderID})
}

func (c *WSClient) SendAmend(clientOrderID int64, newVolume int64) error {
	return c.write(amendRequest{Type: "amend", ClientOrderID: clientOrderID, Volume: newVolume})
}

func (c *WSClient) SendHedge(clientOrderID int64, side Side, price, volume int64) error {
	return c.write(hedgeRequest{
		Type:          "hedge",
		ClientOrderID: clientOrderID,
		Side:          side.String(),
		Price:         price,
		Volume:        volume,
	})
}

func (c *WSClient) write(msg interface{}) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.conn == nil {
		return fmt.Errorf("not connected")
	}
	raw, err := json.Marshal(msg)
	if err != nil {
		return err
	}
	return c.conn.WriteMessage(websocket.TextMessage, raw)
}
