package products

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

type memoryProductRepo struct {
	products     map[int64]*FinancialProduct
	applications map[int64]*Application
	projects     map[int64]*GroupProject
	expenses     []Expense
	individual   map[int64]*IndividualProject
	nextID       int64
}

func newMemoryProductRepo() *memoryProductRepo {
	return &memoryProductRepo{
		products:     make(map[int64]*FinancialProduct),
		applications: make(map[int64]*Application),
		projects:     make(map[int64]*GroupProject),
		individual:   make(map[int64]*IndividualProject),
	}
}

func (r *memoryProductRepo) id() int64 {
	r.nextID++
	return r.nextID
}

func (r *memoryProductRepo) ListProducts(ctx context.Context, filters shared.ListFilters) ([]FinancialProduct, int, error) {
	var out []FinancialProduct
	for _, p := range r.products {
		out = append(out, *p)
	}
	return out, len(out), nil
}

func (r *memoryProductRepo) GetProduct(ctx context.Context, id int64) (FinancialProduct, error) {
	p, ok := r.products[id]
	if !ok {
		return FinancialProduct{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (r *memoryProductRepo) CreateProduct(ctx context.Context, p FinancialProduct) (FinancialProduct, error) {
	p.ID = r.id()
	r.products[p.ID] = &p
	return p, nil
}

func (r *memoryProductRepo) DeactivateProduct(ctx context.Context, id int64) error {
	p, ok := r.products[id]
	if !ok {
		return httpx.ErrNotFound
	}
	p.IsActive = false
	return nil
}

func (r *memoryProductRepo) ListApplications(ctx context.Context, productID int64) ([]Application, error) {
	var out []Application
	for _, a := range r.applications {
		if a.ProductID == productID {
			out = append(out, *a)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) GetApplication(ctx context.Context, id int64) (Application, error) {
	a, ok := r.applications[id]
	if !ok {
		return Application{}, httpx.ErrNotFound
	}
	return *a, nil
}

func (r *memoryProductRepo) CreateApplication(ctx context.Context, a Application) (Application, error) {
	a.ID = r.id()
	r.applications[a.ID] = &a
	return a, nil
}

func (r *memoryProductRepo) UpdateApplication(ctx context.Context, a Application) error {
	if _, ok := r.applications[a.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.applications[a.ID] = &a
	return nil
}

func (r *memoryProductRepo) ListGroupProjects(ctx context.Context, groupID int64) ([]GroupProject, error) {
	var out []GroupProject
	for _, p := range r.projects {
		if p.GroupID == groupID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) GetGroupProject(ctx context.Context, id int64) (GroupProject, error) {
	p, ok := r.projects[id]
	if !ok {
		return GroupProject{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (r *memoryProductRepo) CreateGroupProject(ctx context.Context, p GroupProject) (GroupProject, error) {
	p.ID = r.id()
	r.projects[p.ID] = &p
	return p, nil
}

func (r *memoryProductRepo) UpdateGroupProject(ctx context.Context, p GroupProject) error {
	if _, ok := r.projects[p.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.projects[p.ID] = &p
	return nil
}

func (r *memoryProductRepo) AddExpense(ctx context.Context, e Expense) (Expense, GroupProject, error) {
	p, ok := r.projects[e.ProjectID]
	if !ok {
		return Expense{}, GroupProject{}, httpx.ErrNotFound
	}
	e.ID = r.id()
	r.expenses = append(r.expenses, e)
	total := decimal.Zero
	for _, x := range r.expenses {
		if x.ProjectID == e.ProjectID {
			total = total.Add(x.Amount)
		}
	}
	p.TotalSpent = total
	return e, *p, nil
}

func (r *memoryProductRepo) ListExpenses(ctx context.Context, projectID int64) ([]Expense, error) {
	var out []Expense
	for _, e := range r.expenses {
		if e.ProjectID == projectID {
			out = append(out, e)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) ListIndividualProjects(ctx context.Context, memberID int64) ([]IndividualProject, error) {
	var out []IndividualProject
	for _, p := range r.individual {
		if p.MemberID == memberID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *memoryProductRepo) GetIndividualProject(ctx context.Context, id int64) (IndividualProject, error) {
	p, ok := r.individual[id]
	if !ok {
		return IndividualProject{}, httpx.ErrNotFound
	}
	return *p, nil
}

func (r *memoryProductRepo) CreateIndividualProject(ctx context.Context, p IndividualProject) (IndividualProject, error) {
	p.ID = r.id()
	r.individual[p.ID] = &p
	return p, nil
}

func (r *memoryProductRepo) UpdateIndividualProject(ctx context.Context, p IndividualProject) error {
	if _, ok := r.individual[p.ID]; !ok {
		return httpx.ErrNotFound
	}
	r.individual[p.ID] = &p
	return nil
}

func money(s string) decimal.Decimal {
	return decimal.RequireFromString(s)
}

func seedProduct(t *testing.T, svc *Service, mutate func(*FinancialProduct)) FinancialProduct {
	t.Helper()
	max := money("50000")
	p := FinancialProduct{
		Name:               "Kilimo Loan",
		Type:               ProductLoan,
		Code:               "KL-01",
		InterestRate:       money("12"),
		MinimumAmount:      money("1000"),
		MaximumAmount:      &max,
		IndividualEligible: true,
		GroupEligible:      true,
	}
	if mutate != nil {
		mutate(&p)
	}
	created, err := svc.CreateProduct(context.Background(), p)
	require.NoError(t, err)
	return created
}

func TestCreateProductValidation(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	_, err := svc.CreateProduct(ctx, FinancialProduct{Name: "No Code", Type: ProductLoan, MinimumAmount: money("100")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.CreateProduct(ctx, FinancialProduct{
		Name: "Bad Type", Code: "BT-01", Type: ProductType("BOND"),
		MinimumAmount: money("100"), IndividualEligible: true,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	max := money("50")
	_, err = svc.CreateProduct(ctx, FinancialProduct{
		Name: "Inverted Limits", Code: "IL-01", Type: ProductSavings,
		MinimumAmount: money("100"), MaximumAmount: &max, IndividualEligible: true,
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	created := seedProduct(t, svc, nil)
	require.True(t, created.IsActive)
	require.False(t, created.LaunchDate.IsZero())
}

func TestApplyEnforcesEligibilityAndLimits(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()
	groupOnly := seedProduct(t, svc, func(p *FinancialProduct) {
		p.Code = "GO-01"
		p.IndividualEligible = false
	})

	memberID := int64(7)
	groupID := int64(3)

	_, err := svc.Apply(ctx, Application{ProductID: groupOnly.ID, AmountRequested: money("2000")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Apply(ctx, Application{
		ProductID: groupOnly.ID, MemberID: &memberID, GroupID: &groupID, AmountRequested: money("2000"),
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Apply(ctx, Application{ProductID: groupOnly.ID, MemberID: &memberID, AmountRequested: money("2000")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Apply(ctx, Application{ProductID: groupOnly.ID, GroupID: &groupID, AmountRequested: money("500")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, err = svc.Apply(ctx, Application{ProductID: groupOnly.ID, GroupID: &groupID, AmountRequested: money("60000")})
	require.ErrorIs(t, err, httpx.ErrValidation)

	a, err := svc.Apply(ctx, Application{ProductID: groupOnly.ID, GroupID: &groupID, AmountRequested: money("2000")})
	require.NoError(t, err)
	require.Equal(t, ApplicationPending, a.Status)
	require.False(t, a.ApplicationDate.IsZero())
}

func TestApplyRejectsInactiveProduct(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()
	p := seedProduct(t, svc, nil)
	require.NoError(t, svc.DeactivateProduct(ctx, p.ID))

	memberID := int64(7)
	_, err := svc.Apply(ctx, Application{ProductID: p.ID, MemberID: &memberID, AmountRequested: money("2000")})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestApproveApplicationDefaultsToRequestedAmount(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()
	p := seedProduct(t, svc, nil)

	memberID := int64(7)
	a, err := svc.Apply(ctx, Application{ProductID: p.ID, MemberID: &memberID, AmountRequested: money("2500")})
	require.NoError(t, err)

	approved, err := svc.ApproveApplication(ctx, a.ID, "susan", decimal.Zero)
	require.NoError(t, err)
	require.Equal(t, ApplicationApproved, approved.Status)
	require.Equal(t, "susan", approved.ReviewedBy)
	require.NotNil(t, approved.ReviewDate)
	require.NotNil(t, approved.ApprovedAmount)
	require.True(t, approved.ApprovedAmount.Equal(money("2500")))

	_, err = svc.ApproveApplication(ctx, a.ID, "susan", decimal.Zero)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestRejectApplicationRequiresReason(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()
	p := seedProduct(t, svc, nil)

	memberID := int64(7)
	a, err := svc.Apply(ctx, Application{ProductID: p.ID, MemberID: &memberID, AmountRequested: money("2500")})
	require.NoError(t, err)

	_, err = svc.RejectApplication(ctx, a.ID, "susan", "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	rejected, err := svc.RejectApplication(ctx, a.ID, "susan", "insufficient savings history")
	require.NoError(t, err)
	require.Equal(t, ApplicationRejected, rejected.Status)
	require.Equal(t, "insufficient savings history", rejected.RejectionReason)

	_, err = svc.CancelApplication(ctx, a.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func seedOngoingProject(t *testing.T, svc *Service) GroupProject {
	t.Helper()
	ctx := context.Background()
	p, err := svc.ProposeGroupProject(ctx, GroupProject{
		GroupID:                3,
		Title:                  "Poultry House",
		TotalBudget:            money("30000"),
		GroupContribution:      money("10000"),
		UkomboziniContribution: money("20000"),
	})
	require.NoError(t, err)
	p, err = svc.ApproveGroupProject(ctx, p.ID, "board")
	require.NoError(t, err)
	p, err = svc.StartGroupProject(ctx, p.ID)
	require.NoError(t, err)
	return p
}

func TestGroupProjectLifecycle(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	p, err := svc.ProposeGroupProject(ctx, GroupProject{
		GroupID: 3, Title: "Water Tank", TotalBudget: money("15000"),
	})
	require.NoError(t, err)
	require.Equal(t, ProjectProposed, p.Status)
	require.True(t, p.TotalSpent.IsZero())

	_, err = svc.StartGroupProject(ctx, p.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)

	p, err = svc.ApproveGroupProject(ctx, p.ID, "board")
	require.NoError(t, err)
	require.Equal(t, ProjectApproved, p.Status)
	require.Equal(t, "board", p.ApprovedBy)
	require.NotNil(t, p.ApprovalDate)

	p, err = svc.StartGroupProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, ProjectOngoing, p.Status)

	p, err = svc.CompleteGroupProject(ctx, p.ID)
	require.NoError(t, err)
	require.Equal(t, ProjectCompleted, p.Status)
	require.NotNil(t, p.ActualEndDate)

	_, err = svc.CancelGroupProject(ctx, p.ID)
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestAddExpenseRecomputesTotalSpent(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()
	p := seedOngoingProject(t, svc)

	e1, updated, err := svc.AddExpense(ctx, Expense{
		ProjectID: p.ID, Amount: money("4500.50"), Category: "materials",
		Vendor: "Jua Kali Hardware", ApprovedBy: "chair",
	})
	require.NoError(t, err)
	require.NotEmpty(t, e1.ReceiptNumber)
	require.False(t, e1.ExpenseDate.IsZero())
	require.True(t, updated.TotalSpent.Equal(money("4500.50")))

	_, updated, err = svc.AddExpense(ctx, Expense{
		ProjectID: p.ID, Amount: money("1499.50"), Category: "labour",
		Vendor: "Fundi Crew", ApprovedBy: "chair", ReceiptNumber: "RCPT-77",
	})
	require.NoError(t, err)
	require.True(t, updated.TotalSpent.Equal(money("6000")))

	expenses, err := svc.Expenses(ctx, p.ID)
	require.NoError(t, err)
	require.Len(t, expenses, 2)
}

func TestAddExpenseRequiresOngoingProject(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	p, err := svc.ProposeGroupProject(ctx, GroupProject{
		GroupID: 3, Title: "Grain Store", TotalBudget: money("8000"),
	})
	require.NoError(t, err)

	_, _, err = svc.AddExpense(ctx, Expense{
		ProjectID: p.ID, Amount: money("100"), Category: "materials",
		Vendor: "Duka", ApprovedBy: "chair",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)

	_, _, err = svc.AddExpense(ctx, Expense{
		ProjectID: p.ID, Amount: money("-5"), Category: "materials",
		Vendor: "Duka", ApprovedBy: "chair",
	})
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestIndividualProjectStatusTransitions(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	ctx := context.Background()

	p, err := svc.ProposeIndividualProject(ctx, IndividualProject{
		MemberID:    7,
		Title:       "Dairy Goat",
		ProjectType: "LIVESTOCK",
		TotalBudget: money("12000"),
	})
	require.NoError(t, err)
	require.Equal(t, ProjectProposed, p.Status)

	_, err = svc.UpdateIndividualProjectStatus(ctx, p.ID, ProjectCompleted, "")
	require.ErrorIs(t, err, httpx.ErrValidation)

	p, err = svc.UpdateIndividualProjectStatus(ctx, p.ID, ProjectApproved, "board")
	require.NoError(t, err)
	require.Equal(t, "board", p.ApprovedBy)

	p, err = svc.UpdateIndividualProjectStatus(ctx, p.ID, ProjectOngoing, "")
	require.NoError(t, err)
	require.NotNil(t, p.StartDate)

	p, err = svc.UpdateIndividualProjectStatus(ctx, p.ID, ProjectCompleted, "")
	require.NoError(t, err)
	require.Equal(t, ProjectCompleted, p.Status)

	_, err = svc.UpdateIndividualProjectStatus(ctx, p.ID, ProjectCancelled, "")
	require.ErrorIs(t, err, httpx.ErrValidation)
}

func TestApplicationNotFound(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	_, err := svc.ApproveApplication(context.Background(), 404, "susan", decimal.Zero)
	require.True(t, errors.Is(err, httpx.ErrNotFound))
}

func TestServiceClockIsInjectable(t *testing.T) {
	svc := NewService(newMemoryProductRepo())
	fixed := time.Date(2026, 5, 4, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return fixed }

	p := seedProduct(t, svc, func(fp *FinancialProduct) { fp.Code = "CL-01" })
	require.True(t, p.LaunchDate.Equal(fixed))
}
