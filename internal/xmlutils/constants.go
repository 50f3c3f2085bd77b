package xmlutils

// CAMT053 holds the XPath expressions used to read CAMT.053 statements. Entry paths
// are relative to an Ntry node.
type CAMT053 struct {
	Statement struct {
		Root      string
		Entries   string
		Servicer  string
		Owner     string
		IBAN      string
		FromDate  string
		ToDate    string
		Reference string
	}

	Entry struct {
		Amount         string
		Currency       string
		CreditDebitInd string
		BookingDate    string
		ValueDate      string
		AccountSvcRef  string
		AddEntryInfo   string
	}

	Detail struct {
		UnstructuredInfo string
		AdditionalTxInfo string
		DebtorName       string
		CreditorName     string
		CheckNumber      string
	}
}

// DefaultCamt053XPaths returns the standard CAMT.053 paths.
func DefaultCamt053XPaths() CAMT053 {
	var c CAMT053

	c.Statement.Root = "//BkToCstmrStmt/Stmt"
	c.Statement.Entries = "//BkToCstmrStmt/Stmt/Ntry"
	c.Statement.Servicer = "//BkToCstmrStmt/Stmt/Acct/Svcr/FinInstnId/Nm"
	c.Statement.Owner = "//BkToCstmrStmt/Stmt/Acct/Ownr/Nm"
	c.Statement.IBAN = "//BkToCstmrStmt/Stmt/Acct/Id/IBAN"
	c.Statement.FromDate = "//BkToCstmrStmt/Stmt/FrToDt/FrDtTm"
	c.Statement.ToDate = "//BkToCstmrStmt/Stmt/FrToDt/ToDtTm"
	c.Statement.Reference = "//BkToCstmrStmt/Stmt/Id"

	c.Entry.Amount = "Amt"
	c.Entry.Currency = "Amt/@Ccy"
	c.Entry.CreditDebitInd = "CdtDbtInd" // #nosec G101 -- XPath expression, not credentials
	c.Entry.BookingDate = "BookgDt/Dt"
	c.Entry.ValueDate = "ValDt/Dt"
	c.Entry.AccountSvcRef = "AcctSvcrRef"
	c.Entry.AddEntryInfo = "AddtlNtryInf"

	c.Detail.UnstructuredInfo = "NtryDtls/TxDtls/RmtInf/Ustrd"
	c.Detail.AdditionalTxInfo = "NtryDtls/TxDtls/AddtlTxInf"
	c.Detail.DebtorName = "NtryDtls/TxDtls/RltdPties/Dbtr/Nm"     // #nosec G101 -- XPath expression, not credentials
	c.Detail.CreditorName = "NtryDtls/TxDtls/RltdPties/Cdtr/Nm"   // #nosec G101 -- XPath expression, not credentials
	c.Detail.CheckNumber = "NtryDtls/TxDtls/Refs/ChqNb"

	return c
}
