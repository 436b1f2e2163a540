package types

import "time"

type Transaction struct {
	ID          string    `db:"id" json:"id"`
	UserID      string    `db:"user_id" json:"-"`
	OrderID     string    `db:"order_id" json:"orderId"`
	AmountCents int64     `db:"amount_cents" json:"amountCents"`
	RecordCount int       `db:"record_count" json:"recordCount"`
	Status      string    `db:"status" json:"status"`
	CSVData     string    `db:"csv_data" json:"-"`
	CreatedAt   time.Time `db:"created_at" json:"paymentDate"`
}
