package constants

import "time"

const (
	DefaultTimeout        = 10 * time.Second
	DefaultRequestTimeout = 30 * time.Second
	ShutdownTimeout       = 15 * time.Second
)

// Context keys
const (
	ContextTokenData = "token_data"
	ContextRequestID = "request_id"
)

// Token scopes
const (
	ScopeTokenAccess = "access"
)

const (
	DatabaseMaxOpenConns    = 25
	DatabaseMaxIdleConns    = 5
	DatabaseConnMaxLifetime = 30 // minutes
	DatabaseSSLMode         = "disable"
)

// Redis keys
const (
	RedisKeyProposal = "slotapi:proposal:"
)

// Queue
const (
	QueueDefault          = "default"
	QueueCritical         = "critical"
	TaskEmailSuggestSlots = "email:suggest_slots"
	TaskMaxRetry          = 3
	TaskProcessTimeout    = 2 * time.Minute
	WorkerConcurrency     = 5
)
