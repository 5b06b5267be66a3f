package ws

import (
	"time"

	"github.com/google/uuid"
)

type EventType string

const (
	// 解析器事件
	TypeSiteResolved EventType = "site-resolved" // 新站点完成构造并进入缓存
	TypePagesWalked  EventType = "pages-walked"  // 完成一次页面树遍历

	// 缓存事件
	TypePagesCacheCleared EventType = "pages-cache-cleared" // 页面枚举缓存被清空
	TypeSitesCacheReset   EventType = "sites-cache-reset"   // 站点缓存被重置

	// 注册表事件
	TypeServersUpdated EventType = "servers-updated" // servers 条目被整体替换
)

// Event 推送给管理端订阅者的统一事件结构
type Event struct {
	ID        string    `json:"id"`   // 事件 uuid
	Type      EventType `json:"type"` // 事件类型
	Payload   any       `json:"payload,omitempty"`
	Timestamp int64     `json:"ts"` // 时间戳
}

// NewEvent 构造带 uuid 和时间戳的事件
func NewEvent(eventType EventType, payload any) Event {
	return Event{
		ID:        uuid.NewString(),
		Type:      eventType,
		Payload:   payload,
		Timestamp: time.Now().UnixMilli(),
	}
}
