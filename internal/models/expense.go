package models

import "time"

const ExpenseCategoryOther = "other"

var ExpenseCategories = []string{"rent", "equipment", "utilities", "marketing", "salary", ExpenseCategoryOther}

type Expense struct {
	ID          int64     `db:"id" json:"id"`
	Description string    `db:"description" json:"description"`
	Amount      float64   `db:"amount" json:"amount"`
	Category    string    `db:"category" json:"category"`
	Date        time.Time `db:"date" json:"date"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
