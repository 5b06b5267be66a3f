package ws

import (
	"log"
	"time"

	"github.com/gorilla/websocket"
)

// 心跳配置
const (
	pongWait       = 60 * time.Second    // 等待 Pong 响应的最大时间
	pingPeriod     = (pongWait * 9) / 10 // Ping 发送间隔，必须小于 pongWait
	writeWait      = 10 * time.Second    // 写消息超时时间
	maxMessageSize = 1024                // 事件流是单向的，入站只有心跳帧
)

// Client 代表一个订阅事件流的 WebSocket 连接
type Client struct {
	hub    *Hub
	conn   *websocket.Conn
	UserID string
	send   chan []byte // 发送消息缓冲区
}

// NewClient 创建订阅者实例
func NewClient(hub *Hub, conn *websocket.Conn, userID string) *Client {
	return &Client{
		hub:    hub,
		conn:   conn,
		UserID: userID,
		send:   make(chan []byte, 64),
	}
}

// WritePump 负责把事件写给订阅者并定时发送心跳 Ping
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)

	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case message, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))

			if !ok {
				// send channel 已被 Hub 关闭，发送关闭帧
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}

			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			// 定时发送 Ping 保活
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}

// ReadPump 维持读超时与 Pong 心跳
// 事件流不接受业务入站消息，收到的文本帧一律忽略
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unsubscribe(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait))

	// 收到 Pong 时重置读超时
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("[Client] 连接异常关闭: %v", err)
			}
			break
		}
		// 收到消息也重置读超时
		c.conn.SetReadDeadline(time.Now().Add(pongWait))
	}
}
