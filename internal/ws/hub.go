package ws

import (
	"encoding/json"
	"log"
	"sync"
)

// ========== 事件中心：把解析器事件扇出给管理端订阅者 ==========
// Hub 不理解事件语义，只管理订阅者生命周期和广播；
// 订阅者彼此独立，单个订阅者缓冲区满只丢发给它的那一条

// Hub 维护订阅者目录
type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]bool

	broadcast chan Event
	stopChan  chan struct{}
}

// NewHub 创建 Hub 实例
func NewHub() *Hub {
	return &Hub{
		clients:   make(map[*Client]bool),
		broadcast: make(chan Event, 256),
		stopChan:  make(chan struct{}),
	}
}

// Run Hub 事件循环（main 中以 goroutine 启动）
func (h *Hub) Run() {
	log.Println("[Hub] 🚀 事件中心已启动")

	for {
		select {
		case event := <-h.broadcast:
			h.dispatch(event)
		case <-h.stopChan:
			h.closeAll()
			log.Println("[Hub] 👋 事件中心已停止")
			return
		}
	}
}

// Publish 非阻塞投递事件
// 广播通道满时丢弃该事件并记录警告，发布方（解析器热路径）永不被拖慢
func (h *Hub) Publish(event Event) {
	select {
	case h.broadcast <- event:
	default:
		log.Printf("[Hub] ⚠️ 广播通道已满，丢弃事件 %s", event.Type)
	}
}

// Subscribe 注册订阅者
func (h *Hub) Subscribe(client *Client) {
	h.mu.Lock()
	h.clients[client] = true
	count := len(h.clients)
	h.mu.Unlock()

	log.Printf("[Hub] 👋 订阅者 [%s] 加入，当前订阅数: %d", client.UserID, count)
}

// Unsubscribe 注销订阅者并关闭其发送缓冲
// 重复注销是安全的（读协程和停机流程都可能触发）
func (h *Hub) Unsubscribe(client *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, exists := h.clients[client]; !exists {
		return
	}
	delete(h.clients, client)
	close(client.send)
	log.Printf("[Hub] 👋 订阅者 [%s] 离开，剩余订阅数: %d", client.UserID, len(h.clients))
}

// ClientCount 当前订阅者数量
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Stop 停止事件循环并断开所有订阅者
func (h *Hub) Stop() {
	close(h.stopChan)
}

// dispatch 把事件序列化一次后扇出给所有订阅者
// ⚠️ 单个订阅者的缓冲区满时只跳过它，不能阻塞整个扇出
func (h *Hub) dispatch(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Printf("[Hub] ❌ 事件 %s 序列化失败: %v", event.Type, err)
		return
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients {
		select {
		case client.send <- data:
		default:
			log.Printf("[Hub] ⚠️ 订阅者 [%s] 缓冲区已满，丢弃事件 %s", client.UserID, event.Type)
		}
	}
}

// closeAll 停机时注销全部订阅者
func (h *Hub) closeAll() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for client := range h.clients {
		delete(h.clients, client)
		close(client.send)
	}
}
