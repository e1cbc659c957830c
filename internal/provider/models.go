package provider

// ModelType represents a standard data model type. Each ModelType maps to a
// specific data structure in pkg/models/, independent of which provider
// fetched it.
type ModelType string

// --- Fundamentals ---
const (
	ModelIncomeStatement   ModelType = "IncomeStatement"   // []*models.IncomeStatement
	ModelBalanceSheet      ModelType = "BalanceSheet"      // []*models.BalanceSheet
	ModelCashFlowStatement ModelType = "CashFlowStatement" // []*models.CashFlowStatement
)

// --- Market ---
const (
	ModelCompanyOverview ModelType = "CompanyOverview" // *models.CompanyOverview
	ModelEquityQuote     ModelType = "EquityQuote"     // *models.EquityQuote
)

// --- News ---
const (
	ModelCompanyNews ModelType = "CompanyNews" // []models.NewsArticle
)

// StatementModels returns the three annual statement model types in the
// order income, balance, cash flow.
func StatementModels() []ModelType {
	return []ModelType{ModelIncomeStatement, ModelBalanceSheet, ModelCashFlowStatement}
}

// AllModels returns all defined model types. Useful for iteration and validation.
func AllModels() []ModelType {
	return []ModelType{
		ModelIncomeStatement, ModelBalanceSheet, ModelCashFlowStatement,
		ModelCompanyOverview, ModelEquityQuote,
		ModelCompanyNews,
	}
}

// ModelCategory maps model types to their category for grouping.
func ModelCategory(m ModelType) string {
	switch m {
	case ModelIncomeStatement, ModelBalanceSheet, ModelCashFlowStatement:
		return "Fundamentals"
	case ModelCompanyOverview, ModelEquityQuote:
		return "Market"
	case ModelCompanyNews:
		return "News"
	default:
		return "Unknown"
	}
}
