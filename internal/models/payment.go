package models

import "time"

const (
	PaymentMethodCash     = "cash"
	PaymentMethodCard     = "card"
	PaymentMethodTransfer = "transfer"
)

var PaymentMethods = []string{PaymentMethodCash, PaymentMethodCard, PaymentMethodTransfer}

// Payment StudentID == nil - разовый гость, имя гостя лежит в Notes
type Payment struct {
	ID        int64     `db:"id" json:"id"`
	StudentID *int64    `db:"student_id" json:"student_id,omitempty"`
	Amount    float64   `db:"amount" json:"amount"`
	Date      time.Time `db:"date" json:"date"`
	Method    string    `db:"method" json:"method"`
	Notes     string    `db:"notes" json:"notes"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

func (p Payment) IsGuest() bool {
	return p.StudentID == nil
}

type Refund struct {
	ID        int64     `db:"id" json:"id"`
	StudentID int64     `db:"student_id" json:"student_id"`
	Amount    float64   `db:"amount" json:"amount"`
	Date      time.Time `db:"date" json:"date"`
	Reason    string    `db:"reason" json:"reason"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}

// PaymentView платеж с именем плательщика для списков
type PaymentView struct {
	Payment
	PayerName string `json:"payer_name"`
}

type RefundView struct {
	Refund
	StudentName string `json:"student_name"`
}
