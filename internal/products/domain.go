// Package products manages the financial product catalogue, applications
// against it, and the projects funded from group top-ups or individual grants.
package products

import (
	"time"

	"github.com/shopspring/decimal"
)

// ProductType classifies a financial product.
type ProductType string

// Product types.
const (
	ProductLoan       ProductType = "LOAN"
	ProductSavings    ProductType = "SAVINGS"
	ProductInvestment ProductType = "INVESTMENT"
	ProductInsurance  ProductType = "INSURANCE"
	ProductOther      ProductType = "OTHER"
)

// Valid reports whether the product type is known.
func (t ProductType) Valid() bool {
	switch t {
	case ProductLoan, ProductSavings, ProductInvestment, ProductInsurance, ProductOther:
		return true
	}
	return false
}

// FinancialProduct is an offering in the catalogue. Code is unique and appears
// on receipts and statements.
type FinancialProduct struct {
	ID                      int64            `json:"id"`
	Name                    string           `json:"name"`
	Type                    ProductType      `json:"product_type"`
	Code                    string           `json:"code"`
	Description             string           `json:"description,omitempty"`
	TermsAndConditions      string           `json:"terms_and_conditions,omitempty"`
	LaunchDate              time.Time        `json:"launch_date"`
	IsActive                bool             `json:"is_active"`
	InterestRate            decimal.Decimal  `json:"interest_rate"`
	MinimumAmount           decimal.Decimal  `json:"minimum_amount"`
	MaximumAmount           *decimal.Decimal `json:"maximum_amount,omitempty"`
	ApplicationFee          decimal.Decimal  `json:"application_fee"`
	ProcessingFee           decimal.Decimal  `json:"processing_fee"`
	IndividualEligible      bool             `json:"individual_eligible"`
	GroupEligible           bool             `json:"group_eligible"`
	MinimumMembershipMonths int              `json:"minimum_membership_months"`
	CreatedAt               time.Time        `json:"created_at"`
	UpdatedAt               time.Time        `json:"updated_at"`
}

// ApplicationStatus tracks a product application through review.
type ApplicationStatus string

// Application statuses. PENDING is the only state review actions accept.
const (
	ApplicationPending   ApplicationStatus = "PENDING"
	ApplicationApproved  ApplicationStatus = "APPROVED"
	ApplicationRejected  ApplicationStatus = "REJECTED"
	ApplicationCancelled ApplicationStatus = "CANCELLED"
)

// Valid reports whether the application status is known.
func (s ApplicationStatus) Valid() bool {
	switch s {
	case ApplicationPending, ApplicationApproved, ApplicationRejected, ApplicationCancelled:
		return true
	}
	return false
}

// Application is a member's or group's request for a product. Exactly one of
// MemberID and GroupID is set.
type Application struct {
	ID              int64             `json:"id"`
	ProductID       int64             `json:"product_id"`
	ApplicationDate time.Time         `json:"application_date"`
	MemberID        *int64            `json:"member_id,omitempty"`
	GroupID         *int64            `json:"group_id,omitempty"`
	AmountRequested decimal.Decimal   `json:"amount_requested"`
	Purpose         string            `json:"purpose,omitempty"`
	TermMonths      *int              `json:"term_months,omitempty"`
	Status          ApplicationStatus `json:"status"`
	ReviewedBy      string            `json:"reviewed_by,omitempty"`
	ReviewDate      *time.Time        `json:"review_date,omitempty"`
	ApprovedAmount  *decimal.Decimal  `json:"approved_amount,omitempty"`
	Notes           string            `json:"notes,omitempty"`
	RejectionReason string            `json:"rejection_reason,omitempty"`
	FieldOfficerID  *int64            `json:"field_officer_id,omitempty"`
	CreatedAt       time.Time         `json:"created_at"`
}

// ProjectStatus tracks a funded project's lifecycle.
type ProjectStatus string

// Project statuses.
const (
	ProjectProposed  ProjectStatus = "PROPOSED"
	ProjectApproved  ProjectStatus = "APPROVED"
	ProjectOngoing   ProjectStatus = "ONGOING"
	ProjectCompleted ProjectStatus = "COMPLETED"
	ProjectCancelled ProjectStatus = "CANCELLED"
)

// Valid reports whether the project status is known.
func (s ProjectStatus) Valid() bool {
	switch s {
	case ProjectProposed, ProjectApproved, ProjectOngoing, ProjectCompleted, ProjectCancelled:
		return true
	}
	return false
}

// GroupProject is a project funded by a group top-up plus an organization
// contribution. TotalSpent is derived: it is recomputed from the expense rows
// inside the expense-posting transaction, never edited directly.
type GroupProject struct {
	ID                     int64           `json:"id"`
	GroupID                int64           `json:"group_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	Objective              string          `json:"objective,omitempty"`
	ProposalDate           time.Time       `json:"proposal_date"`
	ApprovalDate           *time.Time      `json:"approval_date,omitempty"`
	StartDate              *time.Time      `json:"start_date,omitempty"`
	ExpectedEndDate        *time.Time      `json:"expected_end_date,omitempty"`
	ActualEndDate          *time.Time      `json:"actual_end_date,omitempty"`
	TotalBudget            decimal.Decimal `json:"total_budget"`
	GroupContribution      decimal.Decimal `json:"group_contribution"`
	UkomboziniContribution decimal.Decimal `json:"ukombozini_contribution"`
	TotalSpent             decimal.Decimal `json:"total_spent"`
	Status                 ProjectStatus   `json:"status"`
	ApprovedBy             string          `json:"approved_by,omitempty"`
	Location               string          `json:"location,omitempty"`
	EstimatedBeneficiaries int             `json:"estimated_beneficiaries"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}

// Expense is money spent against a group project.
type Expense struct {
	ID            int64           `json:"id"`
	ProjectID     int64           `json:"project_id"`
	ExpenseDate   time.Time       `json:"expense_date"`
	Amount        decimal.Decimal `json:"amount"`
	Description   string          `json:"description,omitempty"`
	Category      string          `json:"category"`
	ReceiptNumber string          `json:"receipt_number,omitempty"`
	Vendor        string          `json:"vendor"`
	ApprovedBy    string          `json:"approved_by"`
	VerifiedBy    string          `json:"verified_by,omitempty"`
	HasReceipt    bool            `json:"has_receipt"`
	CreatedAt     time.Time       `json:"created_at"`
}

// IndividualProject is a member-level project funded by the organization.
type IndividualProject struct {
	ID                     int64           `json:"id"`
	MemberID               int64           `json:"member_id"`
	Title                  string          `json:"title"`
	Description            string          `json:"description,omitempty"`
	ProjectType            string          `json:"project_type"`
	ProposalDate           time.Time       `json:"proposal_date"`
	ApprovalDate           *time.Time      `json:"approval_date,omitempty"`
	StartDate              *time.Time      `json:"start_date,omitempty"`
	ExpectedEndDate        *time.Time      `json:"expected_end_date,omitempty"`
	ActualEndDate          *time.Time      `json:"actual_end_date,omitempty"`
	TotalBudget            decimal.Decimal `json:"total_budget"`
	MemberContribution     decimal.Decimal `json:"member_contribution"`
	UkomboziniContribution decimal.Decimal `json:"ukombozini_contribution"`
	Status                 ProjectStatus   `json:"status"`
	ApprovedBy             string          `json:"approved_by,omitempty"`
	FieldOfficerID         *int64          `json:"field_officer_id,omitempty"`
	Location               string          `json:"location,omitempty"`
	ExpectedImpact         string          `json:"expected_impact,omitempty"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
