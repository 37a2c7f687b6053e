package models

import "time"

type Share struct {
	Label   string  `json:"label"`
	Amount  float64 `json:"amount"`
	Percent float64 `json:"percent"`
}

type CoachPayout struct {
	CoachID   int64   `json:"coach_id"`
	CoachName string  `json:"coach_name"`
	Sessions  int     `json:"sessions"`
	Rate      float64 `json:"rate"`
	Amount    float64 `json:"amount"`
}

// FinanceSummary сводка за период [From, To)
type FinanceSummary struct {
	From           time.Time     `json:"from"`
	To             time.Time     `json:"to"`
	Income         float64       `json:"income"`
	Refunds        float64       `json:"refunds"`
	Expenses       float64       `json:"expenses"`
	Salaries       float64       `json:"salaries"`
	PTPayouts      float64       `json:"pt_payouts"`
	Net            float64       `json:"net"`
	PaymentsCount  int           `json:"payments_count"`
	IncomeByMethod []Share       `json:"income_by_method"`
	ExpensesByCat  []Share       `json:"expenses_by_category"`
	CoachPayouts   []CoachPayout `json:"coach_payouts"`
	RefundPercent  float64       `json:"refund_percent"`
	ExpensePercent float64       `json:"expense_percent"`
	ProfitMargin   float64       `json:"profit_margin"`
}
