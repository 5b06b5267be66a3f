package middleware

// Context 中使用的常量 key，避免在各控制器里硬编码字符串

const (
	// ContextKeyUserID 存储 Clerk 用户 ID 的 Context key，维护接口的审计日志用它找操作者
	ContextKeyUserID = "userID"
)
