package log

import (
	"maps"
	"slices"
)

// Common field names for structured logging
const (
	FieldComponent  = "component"
	FieldRequestID  = "request_id"
	FieldClientIP   = "client_ip"
	FieldMethod     = "method"
	FieldPath       = "path"
	FieldQuery      = "query"
	FieldStatusCode = "status_code"
	FieldDuration   = "duration_ms"
	FieldUserAgent  = "user_agent"
	FieldSuccess    = "success"
	FieldError      = "error"
	FieldErrorType  = "error_type"
	FieldOperation  = "operation"
	FieldYear       = "year"
	FieldMonth      = "month"
	FieldRecordKey  = "record_key"
	FieldEntryList  = "entry_list"
	FieldEntryID    = "entry_id"
	FieldFund       = "fund"
	FieldRevision   = "revision"
	FieldSlot       = "slot"
	FieldBackend    = "backend"
)

// Components
const (
	ComponentApp     = "app"
	ComponentHTTP    = "http"
	ComponentLedger  = "ledger"
	ComponentStorage = "storage"
	ComponentCache   = "cache"
	ComponentBackend = "backend"
	ComponentReport  = "report"
)

// Operations
const (
	OpAddEntry        = "add_entry"
	OpUpdateEntry     = "update_entry"
	OpRemoveEntry     = "remove_entry"
	OpSetPriorBalance = "set_prior_balance"
	OpCarryForward    = "carry_forward"
	OpDeleteRecord    = "delete_record"
	OpUpdateConfig    = "update_config"
	OpAddMember       = "add_member"
	OpRemoveMember    = "remove_member"
	OpSaveFilters     = "save_filters"
	OpImport          = "import"
	OpExport          = "export"
	OpLoad            = "load"
	OpStartup         = "startup"
	OpShutdown        = "shutdown"
)

// Error categories
const (
	ErrorTypeValidation    = "validation_error"
	ErrorTypeConfiguration = "configuration_error"
	ErrorTypeDatabase      = "database_error"
	ErrorTypeNotFound      = "not_found_error"
	ErrorTypeInternal      = "internal_error"
)

// LogFields provides a builder pattern for structured log fields
type LogFields map[string]any

func NewFields() LogFields {
	return make(LogFields)
}

func (f LogFields) WithRequestID(requestID string) LogFields {
	if requestID != "" {
		f[FieldRequestID] = requestID
	}
	return f
}

func (f LogFields) WithClientIP(ip string) LogFields {
	f[FieldClientIP] = ip
	return f
}

// WithError adds the error and its category.
func (f LogFields) WithError(err error, errorType string) LogFields {
	if err != nil {
		f[FieldError] = err.Error()
		f[FieldErrorType] = errorType
	}
	return f
}

func (f LogFields) WithOperation(op string) LogFields {
	f[FieldOperation] = op
	return f
}

// WithRecord adds the record address.
func (f LogFields) WithRecord(year int, month, key string) LogFields {
	f[FieldYear] = year
	f[FieldMonth] = month
	f[FieldRecordKey] = key
	return f
}

func (f LogFields) WithEntry(list, id string) LogFields {
	f[FieldEntryList] = list
	if id != "" {
		f[FieldEntryID] = id
	}
	return f
}

func (f LogFields) WithFund(fund string) LogFields {
	f[FieldFund] = fund
	return f
}

func (f LogFields) WithRevision(rev uint64) LogFields {
	f[FieldRevision] = rev
	return f
}

func (f LogFields) WithHTTPRequest(method, path, query, userAgent string) LogFields {
	f[FieldMethod] = method
	f[FieldPath] = path
	if query != "" {
		f[FieldQuery] = query
	}
	if userAgent != "" {
		f[FieldUserAgent] = userAgent
	}
	return f
}

func (f LogFields) WithHTTPResponse(statusCode int, durationMs int64) LogFields {
	f[FieldStatusCode] = statusCode
	f[FieldDuration] = durationMs
	f[FieldSuccess] = statusCode < 400
	return f
}

// ToSlice converts LogFields to key/value pairs for slog, in key order.
func (f LogFields) ToSlice() []any {
	out := make([]any, 0, len(f)*2)
	for _, k := range slices.Sorted(maps.Keys(f)) {
		out = append(out, k, f[k])
	}
	return out
}
