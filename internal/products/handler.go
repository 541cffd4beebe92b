package products

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Handler manages product catalogue and project HTTP endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *Service
	validate *validator.Validate
}

// NewHandler creates a new handler.
func NewHandler(logger *slog.Logger, service *Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers routes on the router.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Get("/", h.listProducts)
	r.Post("/", h.createProduct)
	r.Get("/{id}", h.showProduct)
	r.Post("/{id}/deactivate", h.deactivateProduct)
	r.Get("/{id}/applications", h.listApplications)

	r.Post("/applications", h.apply)
	r.Post("/applications/{id}/approve", h.approveApplication)
	r.Post("/applications/{id}/reject", h.rejectApplication)
	r.Post("/applications/{id}/cancel", h.cancelApplication)

	r.Get("/group-projects", h.listGroupProjects)
	r.Post("/group-projects", h.proposeGroupProject)
	r.Get("/group-projects/{id}", h.showGroupProject)
	r.Post("/group-projects/{id}/approve", h.approveGroupProject)
	r.Post("/group-projects/{id}/start", h.startGroupProject)
	r.Post("/group-projects/{id}/complete", h.completeGroupProject)
	r.Post("/group-projects/{id}/cancel", h.cancelGroupProject)
	r.Get("/group-projects/{id}/expenses", h.listExpenses)
	r.Post("/group-projects/{id}/expenses", h.addExpense)

	r.Get("/individual-projects", h.listIndividualProjects)
	r.Post("/individual-projects", h.proposeIndividualProject)
	r.Post("/individual-projects/{id}/status", h.updateIndividualProjectStatus)
}

func pathID(w http.ResponseWriter, r *http.Request, name string) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid "+name+" ID")
		return 0, false
	}
	return id, true
}

func parseMoney(w http.ResponseWriter, field, raw string) (decimal.Decimal, bool) {
	d, err := decimal.NewFromString(raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" must be a decimal number")
		return decimal.Decimal{}, false
	}
	return d, true
}

func parseDate(raw string) time.Time {
	if raw == "" {
		return time.Time{}
	}
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		return time.Time{}
	}
	return d
}

func (h *Handler) listProducts(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	products, total, err := h.service.Products(r.Context(), shared.ListFilters{
		Page: page, Limit: limit, Search: q.Get("search"),
	})
	if err != nil {
		h.logger.Error("list products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"products":   products,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) createProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name                    string `json:"name" validate:"required"`
		ProductType             string `json:"product_type" validate:"required"`
		Code                    string `json:"code" validate:"required"`
		Description             string `json:"description"`
		TermsAndConditions      string `json:"terms_and_conditions"`
		LaunchDate              string `json:"launch_date"`
		InterestRate            string `json:"interest_rate"`
		MinimumAmount           string `json:"minimum_amount" validate:"required"`
		MaximumAmount           string `json:"maximum_amount"`
		ApplicationFee          string `json:"application_fee"`
		ProcessingFee           string `json:"processing_fee"`
		IndividualEligible      bool   `json:"individual_eligible"`
		GroupEligible           bool   `json:"group_eligible"`
		MinimumMembershipMonths int    `json:"minimum_membership_months"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	minAmount, ok := parseMoney(w, "minimum_amount", req.MinimumAmount)
	if !ok {
		return
	}
	p := FinancialProduct{
		Name:                    req.Name,
		Type:                    ProductType(req.ProductType),
		Code:                    req.Code,
		Description:             req.Description,
		TermsAndConditions:      req.TermsAndConditions,
		LaunchDate:              parseDate(req.LaunchDate),
		InterestRate:            shared.ParseAmount(req.InterestRate),
		MinimumAmount:           minAmount,
		ApplicationFee:          shared.ParseAmount(req.ApplicationFee),
		ProcessingFee:           shared.ParseAmount(req.ProcessingFee),
		IndividualEligible:      req.IndividualEligible,
		GroupEligible:           req.GroupEligible,
		MinimumMembershipMonths: req.MinimumMembershipMonths,
	}
	if req.MaximumAmount != "" {
		maxAmount, ok := parseMoney(w, "maximum_amount", req.MaximumAmount)
		if !ok {
			return
		}
		p.MaximumAmount = &maxAmount
	}
	created, err := h.service.CreateProduct(r.Context(), p)
	if err != nil {
		h.logger.Error("create product failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) showProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}
	p, err := h.service.Product(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) deactivateProduct(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}
	if err := h.service.DeactivateProduct(r.Context(), id); err != nil {
		h.logger.Error("deactivate product failed", "error", err, "product_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) listApplications(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "product")
	if !ok {
		return
	}
	applications, err := h.service.Applications(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"applications": applications})
}

func (h *Handler) apply(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID       int64  `json:"product_id" validate:"required,gt=0"`
		MemberID        *int64 `json:"member_id"`
		GroupID         *int64 `json:"group_id"`
		AmountRequested string `json:"amount_requested" validate:"required"`
		Purpose         string `json:"purpose"`
		TermMonths      *int   `json:"term_months"`
		Notes           string `json:"notes"`
		FieldOfficerID  *int64 `json:"field_officer_id"`
		ApplicationDate string `json:"application_date"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, ok := parseMoney(w, "amount_requested", req.AmountRequested)
	if !ok {
		return
	}
	created, err := h.service.Apply(r.Context(), Application{
		ProductID:       req.ProductID,
		MemberID:        req.MemberID,
		GroupID:         req.GroupID,
		AmountRequested: amount,
		Purpose:         req.Purpose,
		TermMonths:      req.TermMonths,
		Notes:           req.Notes,
		FieldOfficerID:  req.FieldOfficerID,
		ApplicationDate: parseDate(req.ApplicationDate),
	})
	if err != nil {
		h.logger.Error("file application failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) approveApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "application")
	if !ok {
		return
	}
	var req struct {
		ReviewedBy     string `json:"reviewed_by" validate:"required"`
		ApprovedAmount string `json:"approved_amount"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	approved, err := h.service.ApproveApplication(r.Context(), id, req.ReviewedBy, shared.ParseAmount(req.ApprovedAmount))
	if err != nil {
		h.logger.Error("approve application failed", "error", err, "application_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, approved)
}

func (h *Handler) rejectApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "application")
	if !ok {
		return
	}
	var req struct {
		ReviewedBy string `json:"reviewed_by" validate:"required"`
		Reason     string `json:"reason" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rejected, err := h.service.RejectApplication(r.Context(), id, req.ReviewedBy, req.Reason)
	if err != nil {
		h.logger.Error("reject application failed", "error", err, "application_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, rejected)
}

func (h *Handler) cancelApplication(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "application")
	if !ok {
		return
	}
	cancelled, err := h.service.CancelApplication(r.Context(), id)
	if err != nil {
		h.logger.Error("cancel application failed", "error", err, "application_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, cancelled)
}

func (h *Handler) listGroupProjects(w http.ResponseWriter, r *http.Request) {
	groupID, _ := strconv.ParseInt(r.URL.Query().Get("group_id"), 10, 64)
	projects, err := h.service.GroupProjects(r.Context(), groupID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

type groupProjectRequest struct {
	GroupID                int64  `json:"group_id" validate:"required,gt=0"`
	Title                  string `json:"title" validate:"required"`
	Description            string `json:"description"`
	Objective              string `json:"objective"`
	ProposalDate           string `json:"proposal_date"`
	TotalBudget            string `json:"total_budget" validate:"required"`
	GroupContribution      string `json:"group_contribution"`
	UkomboziniContribution string `json:"ukombozini_contribution"`
	Location               string `json:"location"`
	EstimatedBeneficiaries int    `json:"estimated_beneficiaries"`
}

func (h *Handler) proposeGroupProject(w http.ResponseWriter, r *http.Request) {
	var req groupProjectRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	budget, ok := parseMoney(w, "total_budget", req.TotalBudget)
	if !ok {
		return
	}
	created, err := h.service.ProposeGroupProject(r.Context(), GroupProject{
		GroupID:                req.GroupID,
		Title:                  req.Title,
		Description:            req.Description,
		Objective:              req.Objective,
		ProposalDate:           parseDate(req.ProposalDate),
		TotalBudget:            budget,
		GroupContribution:      shared.ParseAmount(req.GroupContribution),
		UkomboziniContribution: shared.ParseAmount(req.UkomboziniContribution),
		Location:               req.Location,
		EstimatedBeneficiaries: req.EstimatedBeneficiaries,
	})
	if err != nil {
		h.logger.Error("propose group project failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) showGroupProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	p, err := h.service.GroupProject(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) approveGroupProject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	var req struct {
		ApprovedBy string `json:"approved_by" validate:"required"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.ApproveGroupProject(r.Context(), id, req.ApprovedBy)
	if err != nil {
		h.logger.Error("approve group project failed", "error", err, "project_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) startGroupProject(w http.ResponseWriter, r *http.Request) {
	h.transitionGroupProject(w, r, h.service.StartGroupProject, "start group project failed")
}

func (h *Handler) completeGroupProject(w http.ResponseWriter, r *http.Request) {
	h.transitionGroupProject(w, r, h.service.CompleteGroupProject, "complete group project failed")
}

func (h *Handler) cancelGroupProject(w http.ResponseWriter, r *http.Request) {
	h.transitionGroupProject(w, r, h.service.CancelGroupProject, "cancel group project failed")
}

func (h *Handler) transitionGroupProject(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, id int64) (GroupProject, error), msg string) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	p, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error(msg, "error", err, "project_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}

func (h *Handler) listExpenses(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	expenses, err := h.service.Expenses(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"expenses": expenses})
}

func (h *Handler) addExpense(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	var req struct {
		ExpenseDate   string `json:"expense_date"`
		Amount        string `json:"amount" validate:"required"`
		Description   string `json:"description"`
		Category      string `json:"category" validate:"required"`
		ReceiptNumber string `json:"receipt_number"`
		Vendor        string `json:"vendor" validate:"required"`
		ApprovedBy    string `json:"approved_by" validate:"required"`
		VerifiedBy    string `json:"verified_by"`
		HasReceipt    bool   `json:"has_receipt"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	amount, ok := parseMoney(w, "amount", req.Amount)
	if !ok {
		return
	}
	expense, project, err := h.service.AddExpense(r.Context(), Expense{
		ProjectID:     id,
		ExpenseDate:   parseDate(req.ExpenseDate),
		Amount:        amount,
		Description:   req.Description,
		Category:      req.Category,
		ReceiptNumber: req.ReceiptNumber,
		Vendor:        req.Vendor,
		ApprovedBy:    req.ApprovedBy,
		VerifiedBy:    req.VerifiedBy,
		HasReceipt:    req.HasReceipt,
	})
	if err != nil {
		h.logger.Error("add project expense failed", "error", err, "project_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{
		"expense":     expense,
		"total_spent": project.TotalSpent,
	})
}

func (h *Handler) listIndividualProjects(w http.ResponseWriter, r *http.Request) {
	memberID, _ := strconv.ParseInt(r.URL.Query().Get("member_id"), 10, 64)
	projects, err := h.service.IndividualProjects(r.Context(), memberID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"projects": projects})
}

func (h *Handler) proposeIndividualProject(w http.ResponseWriter, r *http.Request) {
	var req struct {
		MemberID               int64  `json:"member_id" validate:"required,gt=0"`
		Title                  string `json:"title" validate:"required"`
		Description            string `json:"description"`
		ProjectType            string `json:"project_type" validate:"required"`
		ProposalDate           string `json:"proposal_date"`
		TotalBudget            string `json:"total_budget" validate:"required"`
		MemberContribution     string `json:"member_contribution"`
		UkomboziniContribution string `json:"ukombozini_contribution"`
		FieldOfficerID         *int64 `json:"field_officer_id"`
		Location               string `json:"location"`
		ExpectedImpact         string `json:"expected_impact"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	budget, ok := parseMoney(w, "total_budget", req.TotalBudget)
	if !ok {
		return
	}
	created, err := h.service.ProposeIndividualProject(r.Context(), IndividualProject{
		MemberID:               req.MemberID,
		Title:                  req.Title,
		Description:            req.Description,
		ProjectType:            req.ProjectType,
		ProposalDate:           parseDate(req.ProposalDate),
		TotalBudget:            budget,
		MemberContribution:     shared.ParseAmount(req.MemberContribution),
		UkomboziniContribution: shared.ParseAmount(req.UkomboziniContribution),
		FieldOfficerID:         req.FieldOfficerID,
		Location:               req.Location,
		ExpectedImpact:         req.ExpectedImpact,
	})
	if err != nil {
		h.logger.Error("propose individual project failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) updateIndividualProjectStatus(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "project")
	if !ok {
		return
	}
	var req struct {
		Status     string `json:"status" validate:"required"`
		ApprovedBy string `json:"approved_by"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	p, err := h.service.UpdateIndividualProjectStatus(r.Context(), id, ProjectStatus(req.Status), req.ApprovedBy)
	if err != nil {
		h.logger.Error("update individual project status failed", "error", err, "project_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, p)
}
