package models

// Default ledger accounts used when configuration does not override them.
const (
	DefaultBankGL         = "1070"
	DefaultFundCode       = "1000"
	DefaultRevenueGL      = "4000"
	DefaultExpenseGL      = "7000"
	DefaultJVIncomeGL     = "4600"
	DefaultJVExpenseGL    = "7500"
	DefaultDocPrefix      = "GP"
	GenericTemplateName   = "generic"
	MinStatementLineChars = 10
)

// Confidence band boundaries.
const (
	ConfidenceHigh   = 0.85
	ConfidenceMedium = 0.60
	ConfidenceLow    = 0.01
)

// DefaultConfidenceFloor is the score below which a result is treated as unclassified.
const DefaultConfidenceFloor = 0.40

// File permissions
const (
	PermissionConfigFile = 0600
	PermissionDirectory  = 0750
	PermissionReportFile = 0644
)
