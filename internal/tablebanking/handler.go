package tablebanking

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

// Handler manages loan ledger and savings HTTP endpoints.
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
	r.Get("/loan-types", h.listLoanTypes)
	r.Post("/loan-types", h.createLoanType)

	r.Get("/loans", h.listLoans)
	r.Post("/loans", h.applyLoan)
	r.Get("/loans/{id}", h.showLoan)
	r.Post("/loans/{id}/approve", h.approveLoan)
	r.Post("/loans/{id}/reject", h.rejectLoan)
	r.Post("/loans/{id}/disburse", h.disburseLoan)
	r.Post("/loans/{id}/default", h.defaultLoan)
	r.Put("/loans/{id}/principal", h.updatePrincipal)
	r.Get("/loans/{id}/repayments", h.listRepayments)
	r.Post("/loans/{id}/repayments", h.postRepayment)

	r.Get("/savings/products", h.listSavingsProducts)
	r.Post("/savings/products", h.createSavingsProduct)
	r.Post("/savings/accounts", h.openAccount)
	r.Get("/savings/accounts/{id}", h.showAccount)
	r.Get("/savings/accounts/{id}/transactions", h.listTransactions)
	r.Post("/savings/accounts/{id}/deposit", h.deposit)
	r.Post("/savings/accounts/{id}/withdraw", h.withdraw)
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

type loanTypeRequest struct {
	Name                  string `json:"name" validate:"required"`
	InterestRate          string `json:"interest_rate" validate:"required"`
	RepaymentPeriodMonths int    `json:"repayment_period_months" validate:"required,gt=0"`
	Description           string `json:"description"`
}

func (h *Handler) listLoanTypes(w http.ResponseWriter, r *http.Request) {
	types, err := h.service.LoanTypes(r.Context())
	if err != nil {
		h.logger.Error("list loan types failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"loan_types": types})
}

func (h *Handler) createLoanType(w http.ResponseWriter, r *http.Request) {
	var req loanTypeRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	rate, ok := parseMoney(w, "interest_rate", req.InterestRate)
	if !ok {
		return
	}
	created, err := h.service.CreateLoanType(r.Context(), LoanType{
		Name:                  req.Name,
		InterestRate:          rate,
		RepaymentPeriodMonths: req.RepaymentPeriodMonths,
		Description:           req.Description,
	})
	if err != nil {
		h.logger.Error("create loan type failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) listLoans(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	memberID, _ := strconv.ParseInt(q.Get("member_id"), 10, 64)
	groupID, _ := strconv.ParseInt(q.Get("group_id"), 10, 64)

	loans, total, err := h.service.Loans(r.Context(), LoanFilters{
		Page:     page,
		Limit:    limit,
		Status:   LoanStatus(q.Get("status")),
		MemberID: memberID,
		GroupID:  groupID,
	})
	if err != nil {
		h.logger.Error("list loans failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"loans":      loans,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

type loanRequest struct {
	LoanTypeID   int64  `json:"loan_type_id" validate:"required,gt=0"`
	MemberID     int64  `json:"member_id" validate:"required,gt=0"`
	GroupID      *int64 `json:"group_id"`
	MembershipID *int64 `json:"membership_id"`
	Principal    string `json:"principal" validate:"required"`
	Purpose      string `json:"purpose"`
}

func (h *Handler) applyLoan(w http.ResponseWriter, r *http.Request) {
	var req loanRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	principal, ok := parseMoney(w, "principal", req.Principal)
	if !ok {
		return
	}
	created, err := h.service.Apply(r.Context(), Loan{
		LoanTypeID:   req.LoanTypeID,
		MemberID:     req.MemberID,
		GroupID:      req.GroupID,
		MembershipID: req.MembershipID,
		Principal:    principal,
		Purpose:      req.Purpose,
	})
	if err != nil {
		h.logger.Error("loan application failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) showLoan(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loan")
	if !ok {
		return
	}
	loan, err := h.service.Loan(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) approveLoan(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "approve", h.service.Approve)
}

func (h *Handler) rejectLoan(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "reject", h.service.Reject)
}

func (h *Handler) disburseLoan(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "disburse", h.service.Disburse)
}

func (h *Handler) defaultLoan(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "default", h.service.MarkDefaulted)
}

func (h *Handler) statusChange(w http.ResponseWriter, r *http.Request, action string, fn func(ctx context.Context, id int64) (Loan, error)) {
	id, ok := pathID(w, r, "loan")
	if !ok {
		return
	}
	loan, err := fn(r.Context(), id)
	if err != nil {
		h.logger.Error("loan "+action+" failed", "error", err, "loan_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

func (h *Handler) updatePrincipal(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loan")
	if !ok {
		return
	}
	var req struct {
		Principal string `json:"principal"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	principal, ok := parseMoney(w, "principal", req.Principal)
	if !ok {
		return
	}
	loan, err := h.service.UpdatePrincipal(r.Context(), id, principal)
	if err != nil {
		h.logger.Error("update principal failed", "error", err, "loan_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, loan)
}

type repaymentRequest struct {
	Amount           string `json:"amount" validate:"required"`
	PrincipalPortion string `json:"principal_portion"`
	InterestPortion  string `json:"interest_portion"`
	PaymentDate      string `json:"payment_date"`
	PaymentMethod    string `json:"payment_method"`
	ReceiptNumber    string `json:"receipt_number"`
}

func (h *Handler) postRepayment(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loan")
	if !ok {
		return
	}
	var req repaymentRequest
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
	rep := Repayment{
		LoanID:           id,
		Amount:           amount,
		PrincipalPortion: shared.ParseAmount(req.PrincipalPortion),
		InterestPortion:  shared.ParseAmount(req.InterestPortion),
		PaymentMethod:    req.PaymentMethod,
		ReceiptNumber:    req.ReceiptNumber,
	}
	if req.PaymentDate != "" {
		if d, err := time.Parse("2006-01-02", req.PaymentDate); err == nil {
			rep.PaymentDate = d
		}
	}
	posted, loan, err := h.service.PostRepayment(r.Context(), rep)
	if err != nil {
		h.logger.Error("post repayment failed", "error", err, "loan_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"repayment": posted, "loan": loan})
}

func (h *Handler) listRepayments(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "loan")
	if !ok {
		return
	}
	repayments, err := h.service.Repayments(r.Context(), id)
	if err != nil {
		h.logger.Error("list repayments failed", "error", err, "loan_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"repayments": repayments})
}

func (h *Handler) listSavingsProducts(w http.ResponseWriter, r *http.Request) {
	products, err := h.service.SavingsProducts(r.Context())
	if err != nil {
		h.logger.Error("list savings products failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"products": products})
}

func (h *Handler) createSavingsProduct(w http.ResponseWriter, r *http.Request) {
	var req struct {
		Name         string `json:"name" validate:"required"`
		InterestRate string `json:"interest_rate"`
		Description  string `json:"description"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.CreateSavingsProduct(r.Context(), SavingsProduct{
		Name:         req.Name,
		InterestRate: shared.ParseAmount(req.InterestRate),
		Description:  req.Description,
	})
	if err != nil {
		h.logger.Error("create savings product failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) openAccount(w http.ResponseWriter, r *http.Request) {
	var req struct {
		ProductID     int64  `json:"product_id" validate:"required,gt=0"`
		MemberID      *int64 `json:"member_id"`
		GroupID       *int64 `json:"group_id"`
		AccountNumber string `json:"account_number"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	created, err := h.service.OpenAccount(r.Context(), SavingsAccount{
		ProductID:     req.ProductID,
		MemberID:      req.MemberID,
		GroupID:       req.GroupID,
		AccountNumber: req.AccountNumber,
	})
	if err != nil {
		h.logger.Error("open savings account failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) showAccount(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	acct, err := h.service.Account(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, acct)
}

func (h *Handler) listTransactions(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	txns, err := h.service.Transactions(r.Context(), id)
	if err != nil {
		h.logger.Error("list transactions failed", "error", err, "account_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"transactions": txns})
}

func (h *Handler) deposit(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.service.Deposit)
}

func (h *Handler) withdraw(w http.ResponseWriter, r *http.Request) {
	h.movement(w, r, h.service.Withdraw)
}

func (h *Handler) movement(w http.ResponseWriter, r *http.Request, fn func(ctx context.Context, accountID int64, amount decimal.Decimal, description string) (Transaction, SavingsAccount, error)) {
	id, ok := pathID(w, r, "account")
	if !ok {
		return
	}
	var req struct {
		Amount      string `json:"amount" validate:"required"`
		Description string `json:"description"`
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
	txn, acct, err := fn(r.Context(), id, amount, req.Description)
	if err != nil {
		h.logger.Error("savings transaction failed", "error", err, "account_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, map[string]any{"transaction": txn, "account": acct})
}
