package products

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Service handles catalogue, application and project business logic.
type Service struct {
	repo Repository
	now  func() time.Time
}

// NewService builds a Service instance.
func NewService(repo Repository) *Service {
	return &Service{repo: repo, now: time.Now}
}

// Products lists the catalogue.
func (s *Service) Products(ctx context.Context, filters shared.ListFilters) ([]FinancialProduct, int, error) {
	return s.repo.ListProducts(ctx, filters)
}

// Product returns one catalogue entry.
func (s *Service) Product(ctx context.Context, id int64) (FinancialProduct, error) {
	if id <= 0 {
		return FinancialProduct{}, fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	return s.repo.GetProduct(ctx, id)
}

// CreateProduct adds an offering to the catalogue.
func (s *Service) CreateProduct(ctx context.Context, p FinancialProduct) (FinancialProduct, error) {
	if p.Name == "" || p.Code == "" {
		return FinancialProduct{}, fmt.Errorf("%w: product name and code required", httpx.ErrValidation)
	}
	if !p.Type.Valid() {
		return FinancialProduct{}, fmt.Errorf("%w: unknown product type %q", httpx.ErrValidation, p.Type)
	}
	if p.InterestRate.IsNegative() || p.ApplicationFee.IsNegative() || p.ProcessingFee.IsNegative() {
		return FinancialProduct{}, fmt.Errorf("%w: rates and fees cannot be negative", httpx.ErrValidation)
	}
	if !p.MinimumAmount.IsPositive() {
		return FinancialProduct{}, fmt.Errorf("%w: minimum amount must be positive", httpx.ErrValidation)
	}
	if p.MaximumAmount != nil && p.MaximumAmount.LessThan(p.MinimumAmount) {
		return FinancialProduct{}, fmt.Errorf("%w: maximum amount below minimum", httpx.ErrValidation)
	}
	if !p.IndividualEligible && !p.GroupEligible {
		return FinancialProduct{}, fmt.Errorf("%w: product must be open to members or groups", httpx.ErrValidation)
	}
	if p.LaunchDate.IsZero() {
		p.LaunchDate = s.now()
	}
	p.IsActive = true
	return s.repo.CreateProduct(ctx, p)
}

// DeactivateProduct withdraws an offering. Existing applications are kept.
func (s *Service) DeactivateProduct(ctx context.Context, id int64) error {
	if id <= 0 {
		return fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	return s.repo.DeactivateProduct(ctx, id)
}

// Applications lists applications for a product, newest first.
func (s *Service) Applications(ctx context.Context, productID int64) ([]Application, error) {
	if productID <= 0 {
		return nil, fmt.Errorf("%w: invalid product ID", httpx.ErrValidation)
	}
	return s.repo.ListApplications(ctx, productID)
}

// Apply files an application for a product. The applicant is exactly one of
// member or group, must match the product's eligibility, and the requested
// amount must fall within the product's limits.
func (s *Service) Apply(ctx context.Context, a Application) (Application, error) {
	if (a.MemberID == nil) == (a.GroupID == nil) {
		return Application{}, fmt.Errorf("%w: applicant must be exactly one of member or group", httpx.ErrValidation)
	}
	if !a.AmountRequested.IsPositive() {
		return Application{}, fmt.Errorf("%w: requested amount must be positive", httpx.ErrValidation)
	}

	p, err := s.Product(ctx, a.ProductID)
	if err != nil {
		return Application{}, err
	}
	if !p.IsActive {
		return Application{}, fmt.Errorf("%w: product %q is no longer offered", httpx.ErrValidation, p.Name)
	}
	if a.MemberID != nil && !p.IndividualEligible {
		return Application{}, fmt.Errorf("%w: product %q is not open to individual members", httpx.ErrValidation, p.Name)
	}
	if a.GroupID != nil && !p.GroupEligible {
		return Application{}, fmt.Errorf("%w: product %q is not open to groups", httpx.ErrValidation, p.Name)
	}
	if a.AmountRequested.LessThan(p.MinimumAmount) {
		return Application{}, fmt.Errorf("%w: requested amount below product minimum %s", httpx.ErrValidation, p.MinimumAmount)
	}
	if p.MaximumAmount != nil && a.AmountRequested.GreaterThan(*p.MaximumAmount) {
		return Application{}, fmt.Errorf("%w: requested amount above product maximum %s", httpx.ErrValidation, *p.MaximumAmount)
	}

	a.Status = ApplicationPending
	if a.ApplicationDate.IsZero() {
		a.ApplicationDate = s.now()
	}
	return s.repo.CreateApplication(ctx, a)
}

// ApproveApplication approves a pending application. A zero approved amount
// defaults to the amount requested.
func (s *Service) ApproveApplication(ctx context.Context, id int64, reviewedBy string, approvedAmount decimal.Decimal) (Application, error) {
	return s.review(ctx, id, reviewedBy, func(a *Application) error {
		if approvedAmount.IsZero() {
			approvedAmount = a.AmountRequested
		}
		if !approvedAmount.IsPositive() {
			return fmt.Errorf("%w: approved amount must be positive", httpx.ErrValidation)
		}
		a.Status = ApplicationApproved
		a.ApprovedAmount = &approvedAmount
		return nil
	})
}

// RejectApplication rejects a pending application with a reason.
func (s *Service) RejectApplication(ctx context.Context, id int64, reviewedBy, reason string) (Application, error) {
	if reason == "" {
		return Application{}, fmt.Errorf("%w: rejection reason required", httpx.ErrValidation)
	}
	return s.review(ctx, id, reviewedBy, func(a *Application) error {
		a.Status = ApplicationRejected
		a.RejectionReason = reason
		return nil
	})
}

// CancelApplication withdraws a pending application at the applicant's request.
func (s *Service) CancelApplication(ctx context.Context, id int64) (Application, error) {
	return s.review(ctx, id, "", func(a *Application) error {
		a.Status = ApplicationCancelled
		return nil
	})
}

func (s *Service) review(ctx context.Context, id int64, reviewedBy string, mutate func(*Application) error) (Application, error) {
	if id <= 0 {
		return Application{}, fmt.Errorf("%w: invalid application ID", httpx.ErrValidation)
	}
	a, err := s.repo.GetApplication(ctx, id)
	if err != nil {
		return Application{}, err
	}
	if a.Status != ApplicationPending {
		return Application{}, fmt.Errorf("%w: application %d is %s, only pending applications can be reviewed", httpx.ErrValidation, id, a.Status)
	}
	if err := mutate(&a); err != nil {
		return Application{}, err
	}
	now := s.now()
	a.ReviewedBy = reviewedBy
	a.ReviewDate = &now
	if err := s.repo.UpdateApplication(ctx, a); err != nil {
		return Application{}, err
	}
	return a, nil
}

// GroupProjects lists a group's top-up projects.
func (s *Service) GroupProjects(ctx context.Context, groupID int64) ([]GroupProject, error) {
	if groupID <= 0 {
		return nil, fmt.Errorf("%w: invalid group ID", httpx.ErrValidation)
	}
	return s.repo.ListGroupProjects(ctx, groupID)
}

// GroupProject returns one project.
func (s *Service) GroupProject(ctx context.Context, id int64) (GroupProject, error) {
	if id <= 0 {
		return GroupProject{}, fmt.Errorf("%w: invalid project ID", httpx.ErrValidation)
	}
	return s.repo.GetGroupProject(ctx, id)
}

// ProposeGroupProject files a project proposal for a group top-up.
func (s *Service) ProposeGroupProject(ctx context.Context, p GroupProject) (GroupProject, error) {
	if p.GroupID <= 0 {
		return GroupProject{}, fmt.Errorf("%w: group required", httpx.ErrValidation)
	}
	if p.Title == "" {
		return GroupProject{}, fmt.Errorf("%w: title required", httpx.ErrValidation)
	}
	if !p.TotalBudget.IsPositive() {
		return GroupProject{}, fmt.Errorf("%w: total budget must be positive", httpx.ErrValidation)
	}
	if p.GroupContribution.IsNegative() || p.UkomboziniContribution.IsNegative() {
		return GroupProject{}, fmt.Errorf("%w: contributions cannot be negative", httpx.ErrValidation)
	}
	if p.ProposalDate.IsZero() {
		p.ProposalDate = s.now()
	}
	p.Status = ProjectProposed
	p.TotalSpent = decimal.Zero
	return s.repo.CreateGroupProject(ctx, p)
}

// ApproveGroupProject approves a proposed project.
func (s *Service) ApproveGroupProject(ctx context.Context, id int64, approvedBy string) (GroupProject, error) {
	return s.transitionGroupProject(ctx, id, func(p *GroupProject) error {
		if p.Status != ProjectProposed {
			return fmt.Errorf("%w: project %d is %s, expected %s", httpx.ErrValidation, id, p.Status, ProjectProposed)
		}
		now := s.now()
		p.Status = ProjectApproved
		p.ApprovalDate = &now
		p.ApprovedBy = approvedBy
		return nil
	})
}

// StartGroupProject moves an approved project to ONGOING.
func (s *Service) StartGroupProject(ctx context.Context, id int64) (GroupProject, error) {
	return s.transitionGroupProject(ctx, id, func(p *GroupProject) error {
		if p.Status != ProjectApproved {
			return fmt.Errorf("%w: project %d is %s, expected %s", httpx.ErrValidation, id, p.Status, ProjectApproved)
		}
		now := s.now()
		p.Status = ProjectOngoing
		p.StartDate = &now
		return nil
	})
}

// CompleteGroupProject closes an ongoing project.
func (s *Service) CompleteGroupProject(ctx context.Context, id int64) (GroupProject, error) {
	return s.transitionGroupProject(ctx, id, func(p *GroupProject) error {
		if p.Status != ProjectOngoing {
			return fmt.Errorf("%w: project %d is %s, expected %s", httpx.ErrValidation, id, p.Status, ProjectOngoing)
		}
		now := s.now()
		p.Status = ProjectCompleted
		p.ActualEndDate = &now
		return nil
	})
}

// CancelGroupProject calls off a project that has not completed.
func (s *Service) CancelGroupProject(ctx context.Context, id int64) (GroupProject, error) {
	return s.transitionGroupProject(ctx, id, func(p *GroupProject) error {
		switch p.Status {
		case ProjectProposed, ProjectApproved, ProjectOngoing:
			p.Status = ProjectCancelled
			return nil
		}
		return fmt.Errorf("%w: project %d is %s and cannot be cancelled", httpx.ErrValidation, id, p.Status)
	})
}

func (s *Service) transitionGroupProject(ctx context.Context, id int64, mutate func(*GroupProject) error) (GroupProject, error) {
	p, err := s.GroupProject(ctx, id)
	if err != nil {
		return GroupProject{}, err
	}
	if err := mutate(&p); err != nil {
		return GroupProject{}, err
	}
	if err := s.repo.UpdateGroupProject(ctx, p); err != nil {
		return GroupProject{}, err
	}
	return p, nil
}

// AddExpense posts spending against an ongoing project. The project's total
// spent is recomputed from the expense rows inside the same transaction.
func (s *Service) AddExpense(ctx context.Context, e Expense) (Expense, GroupProject, error) {
	if e.ProjectID <= 0 {
		return Expense{}, GroupProject{}, fmt.Errorf("%w: invalid project ID", httpx.ErrValidation)
	}
	if !e.Amount.IsPositive() {
		return Expense{}, GroupProject{}, fmt.Errorf("%w: expense amount must be positive", httpx.ErrValidation)
	}
	if e.Category == "" || e.Vendor == "" || e.ApprovedBy == "" {
		return Expense{}, GroupProject{}, fmt.Errorf("%w: category, vendor and approver required", httpx.ErrValidation)
	}

	p, err := s.GroupProject(ctx, e.ProjectID)
	if err != nil {
		return Expense{}, GroupProject{}, err
	}
	if p.Status != ProjectOngoing {
		return Expense{}, GroupProject{}, fmt.Errorf("%w: project %d is %s, expenses post only against ongoing projects", httpx.ErrValidation, e.ProjectID, p.Status)
	}

	if e.ExpenseDate.IsZero() {
		e.ExpenseDate = s.now()
	}
	if e.ReceiptNumber == "" {
		e.ReceiptNumber = uuid.NewString()
	}
	return s.repo.AddExpense(ctx, e)
}

// Expenses lists a project's spending in date order.
func (s *Service) Expenses(ctx context.Context, projectID int64) ([]Expense, error) {
	if projectID <= 0 {
		return nil, fmt.Errorf("%w: invalid project ID", httpx.ErrValidation)
	}
	return s.repo.ListExpenses(ctx, projectID)
}

// IndividualProjects lists a member's projects.
func (s *Service) IndividualProjects(ctx context.Context, memberID int64) ([]IndividualProject, error) {
	if memberID <= 0 {
		return nil, fmt.Errorf("%w: invalid member ID", httpx.ErrValidation)
	}
	return s.repo.ListIndividualProjects(ctx, memberID)
}

// ProposeIndividualProject files a member-level project proposal.
func (s *Service) ProposeIndividualProject(ctx context.Context, p IndividualProject) (IndividualProject, error) {
	if p.MemberID <= 0 {
		return IndividualProject{}, fmt.Errorf("%w: member required", httpx.ErrValidation)
	}
	if p.Title == "" || p.ProjectType == "" {
		return IndividualProject{}, fmt.Errorf("%w: title and project type required", httpx.ErrValidation)
	}
	if !p.TotalBudget.IsPositive() {
		return IndividualProject{}, fmt.Errorf("%w: total budget must be positive", httpx.ErrValidation)
	}
	if p.MemberContribution.IsNegative() || p.UkomboziniContribution.IsNegative() {
		return IndividualProject{}, fmt.Errorf("%w: contributions cannot be negative", httpx.ErrValidation)
	}
	if p.ProposalDate.IsZero() {
		p.ProposalDate = s.now()
	}
	p.Status = ProjectProposed
	return s.repo.CreateIndividualProject(ctx, p)
}

// UpdateIndividualProjectStatus moves a member project through its lifecycle
// using the same transitions as group projects.
func (s *Service) UpdateIndividualProjectStatus(ctx context.Context, id int64, to ProjectStatus, approvedBy string) (IndividualProject, error) {
	if id <= 0 {
		return IndividualProject{}, fmt.Errorf("%w: invalid project ID", httpx.ErrValidation)
	}
	if !to.Valid() {
		return IndividualProject{}, fmt.Errorf("%w: unknown project status %q", httpx.ErrValidation, to)
	}
	p, err := s.repo.GetIndividualProject(ctx, id)
	if err != nil {
		return IndividualProject{}, err
	}

	now := s.now()
	switch {
	case to == ProjectApproved && p.Status == ProjectProposed:
		p.ApprovalDate = &now
		p.ApprovedBy = approvedBy
	case to == ProjectOngoing && p.Status == ProjectApproved:
		p.StartDate = &now
	case to == ProjectCompleted && p.Status == ProjectOngoing:
		p.ActualEndDate = &now
	case to == ProjectCancelled && p.Status != ProjectCompleted && p.Status != ProjectCancelled:
	default:
		return IndividualProject{}, fmt.Errorf("%w: project %d cannot move from %s to %s", httpx.ErrValidation, id, p.Status, to)
	}
	p.Status = to
	if err := s.repo.UpdateIndividualProject(ctx, p); err != nil {
		return IndividualProject{}, err
	}
	return p, nil
}
