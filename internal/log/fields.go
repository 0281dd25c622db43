package log

// Common field names for structured logging.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldError         = "error"
	FieldUserKey       = "user_key"
	FieldTransactionID = "transaction_id"
	FieldAmount        = "amount"
	FieldJar           = "jar"
	FieldDurationDays  = "duration_days"
	FieldBackend       = "backend"
	FieldEvent         = "event"
)

// Standard component names.
const (
	ComponentApp     = "app"
	ComponentBackend = "backend"
	ComponentAMQP    = "amqp"
)
