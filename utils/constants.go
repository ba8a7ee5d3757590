package utils

import (
	"time"
)

// Context keys used by handlers to carry request metadata into flows
type ContextKey string

const (
	RequestIDKey  ContextKey = "request_id"
	UserAgentKey  ContextKey = "user_agent"
	IPAddressKey  ContextKey = "ip_address"
	EndpointKey   ContextKey = "endpoint"
	TimeoutKey    ContextKey = "timeout"
	CancelFuncKey ContextKey = "cancel_func"
)

// Token and session time constants
const (
	// AccessTokenTTL is the time-to-live for access tokens (24 hours)
	AccessTokenTTL = 24 * time.Hour

	// RefreshTokenTTL is the time-to-live for refresh tokens (7 days)
	RefreshTokenTTL = 7 * 24 * time.Hour

	// SessionTimeout is the default session timeout (24 hours)
	SessionTimeout = 24 * time.Hour

	// AccessTokenTTLSeconds is the access token lifetime reported to clients
	AccessTokenTTLSeconds = int(AccessTokenTTL / time.Second)
)

// Link constants
const (
	// LinkUIDLength is the length of generated short link tokens
	LinkUIDLength = 8
)
