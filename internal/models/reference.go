package models

import (
	"strings"
	"time"
)

// Direction restricts a rule to inflows or outflows. Empty matches both.
type Direction string

const (
	DirectionAny     Direction = ""
	DirectionInflow  Direction = "inflow"
	DirectionOutflow Direction = "outflow"
)

// Allows reports whether a transaction flowing in (inflow=true) or out passes the filter.
func (d Direction) Allows(inflow bool) bool {
	switch Direction(strings.ToLower(string(d))) {
	case DirectionInflow:
		return inflow
	case DirectionOutflow:
		return !inflow
	}
	return true
}

// FixedRule maps an exact phrase to a ledger account at a fixed confidence.
type FixedRule struct {
	Phrase     string    `yaml:"phrase"`
	GLCode     string    `yaml:"gl_code"`
	FundCode   string    `yaml:"fund_code,omitempty"`
	Module     Module    `yaml:"module"`
	Confidence float64   `yaml:"confidence"`
	Direction  Direction `yaml:"direction,omitempty"`
	Category   string    `yaml:"category,omitempty"`
}

// KeywordEntry is one row of the keyword-to-GL table.
// A zero Confidence lets the matcher score the entry by specificity.
// Bank restricts the entry to statements from that template.
type KeywordEntry struct {
	Keyword    string    `yaml:"keyword"`
	GLCode     string    `yaml:"gl_code"`
	FundCode   string    `yaml:"fund_code,omitempty"`
	Module     Module    `yaml:"module,omitempty"`
	Category   string    `yaml:"category,omitempty"`
	Confidence float64   `yaml:"confidence,omitempty"`
	Direction  Direction `yaml:"direction,omitempty"`
	Bank       string    `yaml:"bank,omitempty"`
}

// Vendor is a payee from the vendor master list.
type Vendor struct {
	Name     string   `yaml:"name"`
	Aliases  []string `yaml:"aliases,omitempty"`
	Category string   `yaml:"category,omitempty"`
	GLCode   string   `yaml:"gl_code"`
	FundCode string   `yaml:"fund_code,omitempty"`
}

// PayerKind distinguishes grant programs from ordinary customers.
type PayerKind string

const (
	PayerGrant    PayerKind = "grant"
	PayerCustomer PayerKind = "customer"
	PayerTenant   PayerKind = "tenant"
)

// Customer is a known payer: a grant program, customer or tenant.
type Customer struct {
	Name     string    `yaml:"name"`
	Aliases  []string  `yaml:"aliases,omitempty"`
	Kind     PayerKind `yaml:"kind"`
	GLCode   string    `yaml:"gl_code"`
	FundCode string    `yaml:"fund_code,omitempty"`
	Category string    `yaml:"category,omitempty"`
}

// Correction is a confirmed classification for a normalized description.
// Corrections are appended, never edited; the latest one for a key wins.
type Correction struct {
	Key         string    `yaml:"key"`
	Description string    `yaml:"description"`
	GLCode      string    `yaml:"gl_code"`
	FundCode    string    `yaml:"fund_code"`
	Module      Module    `yaml:"module"`
	ConfirmedAt time.Time `yaml:"confirmed_at"`
	Source      string    `yaml:"source,omitempty"`
}

// Account is an entry of the chart of accounts.
type Account struct {
	Code string `yaml:"code"`
	Name string `yaml:"name"`
}

// ReferenceData is the read-only data the classification cascade consults.
type ReferenceData struct {
	Rules       []FixedRule    `yaml:"rules"`
	Keywords    []KeywordEntry `yaml:"keywords"`
	Vendors     []Vendor       `yaml:"vendors"`
	Customers   []Customer     `yaml:"customers"`
	Accounts    []Account      `yaml:"accounts"`
	Corrections []Correction   `yaml:"corrections,omitempty"`
}

// Clone returns a copy whose slices can be appended to without touching r.
func (r ReferenceData) Clone() ReferenceData {
	return ReferenceData{
		Rules:       append([]FixedRule(nil), r.Rules...),
		Keywords:    append([]KeywordEntry(nil), r.Keywords...),
		Vendors:     append([]Vendor(nil), r.Vendors...),
		Customers:   append([]Customer(nil), r.Customers...),
		Accounts:    append([]Account(nil), r.Accounts...),
		Corrections: append([]Correction(nil), r.Corrections...),
	}
}
