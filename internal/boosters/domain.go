// Package boosters covers the income-booster programs: agriculture produce
// collections and school fees support.
package boosters

import (
	"time"

	"github.com/shopspring/decimal"
)

// PaymentStatus tracks how much of a collection has been paid out.
type PaymentStatus string

// Collection payment states.
const (
	PaymentPending PaymentStatus = "PENDING"
	PaymentPartial PaymentStatus = "PARTIAL"
	PaymentPaid    PaymentStatus = "PAID"
)

// Valid reports whether the payment status is known.
func (p PaymentStatus) Valid() bool {
	switch p {
	case PaymentPending, PaymentPartial, PaymentPaid:
		return true
	}
	return false
}

// AgricultureProduct is a produce type with its reference market price.
type AgricultureProduct struct {
	ID                 int64           `json:"id"`
	Name               string          `json:"name"`
	UnitOfMeasure      string          `json:"unit_of_measure"`
	CurrentMarketPrice decimal.Decimal `json:"current_market_price"`
	PriceLastUpdated   time.Time       `json:"price_last_updated"`
	IsActive           bool            `json:"is_active"`
	CreatedAt          time.Time       `json:"created_at"`
}

// AgricultureCollection records produce delivered by a member.
//
// TotalValue is filled from quantity and unit price only when it is zero at
// write time. Editing quantity or unit price on a record whose total value is
// already set does not recompute it, so the stored value can go stale relative
// to the inputs. PaymentStatus and AmountPaid are driven by booster payments
// and are not reconciled against TotalValue.
type AgricultureCollection struct {
	ID             int64           `json:"id"`
	MemberID       int64           `json:"member_id"`
	ProductID      int64           `json:"product_id"`
	Quantity       decimal.Decimal `json:"quantity"`
	UnitPrice      decimal.Decimal `json:"unit_price"`
	TotalValue     decimal.Decimal `json:"total_value"`
	CollectionDate time.Time       `json:"collection_date"`
	Location       string          `json:"location,omitempty"`
	QualityGrade   string          `json:"quality_grade,omitempty"`
	ReceiptNumber  string          `json:"receipt_number"`
	PaymentStatus  PaymentStatus   `json:"payment_status"`
	AmountPaid     decimal.Decimal `json:"amount_paid"`
	CreatedAt      time.Time       `json:"created_at"`
	UpdatedAt      time.Time       `json:"updated_at"`
}

// SchoolFeesCollection records a school fees contribution for a member's
// student.
type SchoolFeesCollection struct {
	ID              int64           `json:"id"`
	MemberID        int64           `json:"member_id"`
	StudentName     string          `json:"student_name"`
	SchoolName      string          `json:"school_name"`
	EducationLevel  string          `json:"education_level,omitempty"`
	Term            string          `json:"term,omitempty"`
	Amount          decimal.Decimal `json:"amount"`
	ReceiptNumber   string          `json:"receipt_number"`
	PaymentComplete bool            `json:"payment_complete"`
	CollectionDate  time.Time       `json:"collection_date"`
	CreatedAt       time.Time       `json:"created_at"`
}

// BoosterPayment is a payout to a member, optionally against an agriculture
// collection. Recording one against a collection increments its amount_paid
// and sets the payment status to the caller-supplied value.
type BoosterPayment struct {
	ID            int64           `json:"id"`
	MemberID      int64           `json:"member_id"`
	CollectionID  *int64          `json:"collection_id,omitempty"`
	Amount        decimal.Decimal `json:"amount"`
	PaymentStatus PaymentStatus   `json:"payment_status"`
	PaymentMethod string          `json:"payment_method,omitempty"`
	ReferenceCode string          `json:"reference_code"`
	PaymentDate   time.Time       `json:"payment_date"`
	CreatedAt     time.Time       `json:"created_at"`
}
