package models

import (
	"strconv"
	"strings"
)

// Module is the accounting module a transaction posts through.
type Module string

const (
	ModuleCR      Module = "CR"
	ModuleCD      Module = "CD"
	ModuleJV      Module = "JV"
	ModuleUnknown Module = "UNKNOWN"
)

// PostingModules lists the modules that produce import files, in output order.
var PostingModules = []Module{ModuleCR, ModuleCD, ModuleJV}

// ParseModule accepts CR, CD, JV or UNKNOWN in any case. Empty input yields "".
func ParseModule(s string) (Module, bool) {
	switch Module(strings.ToUpper(strings.TrimSpace(s))) {
	case ModuleCR:
		return ModuleCR, true
	case ModuleCD:
		return ModuleCD, true
	case ModuleJV:
		return ModuleJV, true
	case ModuleUnknown:
		return ModuleUnknown, true
	case "":
		return "", true
	}
	return "", false
}

// ConfidenceBand groups confidence scores for review triage.
type ConfidenceBand string

const (
	BandHigh   ConfidenceBand = "high"
	BandMedium ConfidenceBand = "medium"
	BandLow    ConfidenceBand = "low"
	BandNone   ConfidenceBand = "none"
)

// BandFor maps a confidence score to its band.
func BandFor(confidence float64) ConfidenceBand {
	switch {
	case confidence >= ConfidenceHigh:
		return BandHigh
	case confidence >= ConfidenceMedium:
		return BandMedium
	case confidence >= ConfidenceLow:
		return BandLow
	default:
		return BandNone
	}
}

// ClassificationResult is the ledger assignment for one transaction.
// Module is the posting module declared by the matcher; the router decides the final one.
type ClassificationResult struct {
	GLCode     string  `json:"gl_code" yaml:"gl_code"`
	FundCode   string  `json:"fund_code" yaml:"fund_code"`
	Module     Module  `json:"module" yaml:"module"`
	Confidence float64 `json:"confidence" yaml:"confidence"`
	MatchedBy  string  `json:"matched_by" yaml:"matched_by"`
	IsRefund   bool    `json:"is_refund" yaml:"is_refund"`
	Category   string  `json:"category,omitempty" yaml:"category,omitempty"`
	Payee      string  `json:"payee,omitempty" yaml:"payee,omitempty"`
	Keyword    string  `json:"keyword,omitempty" yaml:"keyword,omitempty"`
	Precedence int     `json:"-" yaml:"-"`
}

// Unknown is the result for a transaction no matcher could place.
func Unknown() ClassificationResult {
	return ClassificationResult{Module: ModuleUnknown}
}

// Band returns the confidence band, BandNone for unmatched results.
func (r ClassificationResult) Band() ConfidenceBand {
	if r.MatchedBy == "" {
		return BandNone
	}
	return BandFor(r.Confidence)
}

// Found reports whether a matcher produced this result.
func (r ClassificationResult) Found() bool {
	return r.MatchedBy != "" && r.GLCode != ""
}

// GLRange describes the nature of an account from its leading digit.
type GLRange string

const (
	RangeAsset     GLRange = "asset"
	RangeLiability GLRange = "liability"
	RangeNetAssets GLRange = "net_assets"
	RangeRevenue   GLRange = "revenue"
	RangeExpense   GLRange = "expense"
	RangeOther     GLRange = "other"
)

// RangeOf classifies a four-digit GL code: 1xxx assets, 2xxx liabilities, 3xxx net assets,
// 4xxx revenue, 5xxx to 7xxx expenses, everything else other.
func RangeOf(gl string) GLRange {
	code, err := strconv.Atoi(strings.TrimSpace(gl))
	if err != nil {
		return RangeOther
	}
	switch {
	case code >= 1000 && code < 2000:
		return RangeAsset
	case code >= 2000 && code < 3000:
		return RangeLiability
	case code >= 3000 && code < 4000:
		return RangeNetAssets
	case code >= 4000 && code < 5000:
		return RangeRevenue
	case code >= 5000 && code < 8000:
		return RangeExpense
	}
	return RangeOther
}

// MatchesSign reports whether the GL range fits the amount direction:
// revenue for inflows, expense for outflows.
func MatchesSign(gl string, inflow bool) bool {
	r := RangeOf(gl)
	if inflow {
		return r == RangeRevenue
	}
	return r == RangeExpense
}
