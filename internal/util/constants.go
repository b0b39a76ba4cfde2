package util

const (
	DateFormat = "2006-01-02"
	TimeFormat = "2006-01-02 15:04:05"
)

const (
	StorageMemory   = "memory"
	StorageRedis    = "redis"
	StorageMySQL    = "mysql"
	StoragePostgres = "postgres"
)

// 页面路径
const (
	PathAuth      = "/auth"
	PathDashboard = "/app"
)

// 界面上展示的固定文案
const (
	MsgChatGreeting      = "Neural Node v2.5 online. Awaiting query..."
	MsgConnectionFailure = "Connection failure to Neural Core."
	MsgRegisterSuccess   = "✓ Successfully registered for the AI Innovation Challenge. Tracking initialized."
	MsgRegisterFailure   = "Registration failed. Try again later."
	MsgAuthFailure       = "Authentication failure."
	MsgInvalidMission    = "Mission ID Invalid. Redirecting to Command Center..."
	MsgSyncFailed        = "Sync failed."
	MsgAnalyticsFailure  = "Error loading analytics. Check backend connectivity."
)

const MimeXLSX = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
