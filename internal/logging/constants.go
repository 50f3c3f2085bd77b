package logging

// Field names shared by every component so log lines can be filtered consistently.
const (
	FieldFile          = "file_path"
	FieldBank          = "bank"
	FieldBatchID       = "batch_id"
	FieldSessionID     = "session_id"
	FieldTransactionID = "transaction_id"
	FieldFingerprint   = "fingerprint"
	FieldMatcher       = "matcher"
	FieldModule        = "module"
	FieldGLCode        = "gl_code"
	FieldConfidence    = "confidence"
	FieldLine          = "line"
	FieldPattern       = "pattern"
	FieldReason        = "reason"
	FieldOperation     = "operation"
	FieldCollaborator  = "collaborator"
	FieldCount         = "count"
	FieldDuration      = "duration_ms"
	FieldError         = "error"
)
