package constants

// 公告板展示文案
const (
	MsgNoAnnouncements     = "暂无最新公告"
	MsgRemoteNotConfigured = "未配置 Nextcloud 连接参数，无法获取外部公告"
	MsgRemoteUnavailable   = "暂时无法连接 Nextcloud 公告中心，请稍后重试"
	MsgRemoteMalformed     = "Nextcloud 公告中心返回的数据无法解析"
	MsgLocalUnavailable    = "本地公告暂时不可用"
)

// 接口错误消息
const (
	ErrUnauthorized           = "未授权，请先登录"
	ErrInsufficientPermission = "权限不足"
	ErrInvalidParams          = "参数错误"
	ErrInvalidSource          = "无效的公告来源"
	ErrInternalServer         = "服务器内部错误"
	ErrAdminDisabled          = "管理接口未启用"
)

// 成功消息
const (
	SuccessGet          = "获取成功"
	SuccessCachePurged  = "缓存已清除"
	SuccessCacheRefresh = "缓存已刷新"
)
