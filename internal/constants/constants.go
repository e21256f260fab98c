package constants

type ENV string

const (
	Dev  ENV = "development"
	Prod ENV = "production"
)

type RequestID string

const (
	RequestIDKey    RequestID = "request_id"
	RequestIDHeader           = "X-Request-ID"
)
