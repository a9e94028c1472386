package domain

// AccountType classifies an account for net worth roll-ups.
type AccountType string

const (
	AccountChecking   AccountType = "checking"
	AccountSavings    AccountType = "savings"
	AccountCredit     AccountType = "credit"
	AccountLoan       AccountType = "loan"
	AccountInvestment AccountType = "investment"
	AccountOther      AccountType = "other"
)

// IsLiability reports whether balances on this account type count against
// net worth. Everything else is treated as an asset.
func (t AccountType) IsLiability() bool {
	return t == AccountCredit || t == AccountLoan
}

// Account represents a financial account known to the platform.
// Corresponds to the accounts table in PostgreSQL.
type Account struct {
	AccountID      string      // PRIMARY KEY
	Institution    string      // human-readable institution name
	Type           AccountType // checking | savings | credit | loan | investment | other
	Currency       string      // ISO 4217 code
	OpeningBalance float64     // balance before the first known transaction
}

// FxRate is one row of the daily currency-conversion table, quoted as
// units of base currency per unit of Currency.
// Corresponds to the fx_rates table in PostgreSQL.
type FxRate struct {
	Date     string  // YYYY-MM-DD
	Currency string  // ISO 4217 code
	Rate     float64 // base units per one unit of Currency
}
