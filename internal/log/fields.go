package log

// Field names shared across packages so records stay greppable and
// dashboards do not break on spelling drift.
const (
	FieldComponent     = "component"
	FieldRequestID     = "request_id"
	FieldClientIP      = "client_ip"
	FieldMethod        = "method"
	FieldPath          = "path"
	FieldQuery         = "query"
	FieldStatusCode    = "status_code"
	FieldDuration      = "duration_ms"
	FieldUserAgent     = "user_agent"
	FieldSuccess       = "success"
	FieldError         = "error"
	FieldMonth         = "month"
	FieldAccount       = "account"
	FieldCategory      = "category"
	FieldAmountCents   = "amount_cents"
	FieldTransactionID = "transaction_id"
	FieldRuleID        = "rule_id"
	FieldCount         = "count"
)

// Component names, one per binary.
const (
	ComponentApp    = "app"
	ComponentWorker = "worker"
	ComponentExport = "export"
)
