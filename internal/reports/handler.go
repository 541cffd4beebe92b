package reports

import (
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
	"github.com/ukombozini/backoffice/internal/shared"
)

// Handler manages report HTTP endpoints.
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
	r.Get("/", h.list)
	r.Post("/", h.submit)
	r.Get("/table", h.table)
	r.Get("/{id}", h.show)
	r.Post("/sync", h.sync)
}

type visitEntry struct {
	GroupName  string `json:"group_name" validate:"required"`
	VisitVenue string `json:"visit_venue"`
	VisitTime  string `json:"visit_time"`
	Attendees  int    `json:"attendees"`

	AdminForGroup       string `json:"admin_for_group"`
	ProjectRegistration string `json:"project_registration"`
	MemReg              string `json:"mem_reg"`

	LongTermLoan        string `json:"long_term_loan"`
	ShortTermLoan       string `json:"short_term_loan"`
	SavingsBefore       string `json:"savings_before"`
	TotalLoanRepaid     string `json:"total_loan_repaid"`
	LoanPrinciple       string `json:"loan_principle"`
	LoanInterest        string `json:"loan_interest"`
	ShortTermLoanRepaid string `json:"short_term_loan_repaid"`

	SavingsThisMonth string `json:"savings_this_month"`
	WelfareForGroup  string `json:"welfare_for_group"`
	Project          string `json:"project"`
	FinesAndCharges  string `json:"fines_and_charges"`

	GroupLoans   string `json:"group_loans"`
	ProjectLoans string `json:"project_loans"`
}

func (e visitEntry) toVisit() GroupVisit {
	return GroupVisit{
		GroupName:  e.GroupName,
		VisitVenue: e.VisitVenue,
		VisitTime:  e.VisitTime,
		Attendees:  e.Attendees,

		AdminForGroup:       e.AdminForGroup,
		ProjectRegistration: e.ProjectRegistration,
		MemReg:              e.MemReg,

		LongTermLoan:        shared.ParseAmount(e.LongTermLoan),
		ShortTermLoan:       shared.ParseAmount(e.ShortTermLoan),
		SavingsBefore:       shared.ParseAmount(e.SavingsBefore),
		TotalLoanRepaid:     shared.ParseAmount(e.TotalLoanRepaid),
		LoanPrinciple:       shared.ParseAmount(e.LoanPrinciple),
		LoanInterest:        shared.ParseAmount(e.LoanInterest),
		ShortTermLoanRepaid: shared.ParseAmount(e.ShortTermLoanRepaid),

		SavingsThisMonth: shared.ParseAmount(e.SavingsThisMonth),
		WelfareForGroup:  shared.ParseAmount(e.WelfareForGroup),
		Project:          shared.ParseAmount(e.Project),
		FinesAndCharges:  shared.ParseAmount(e.FinesAndCharges),

		GroupLoans:   shared.ParseAmount(e.GroupLoans),
		ProjectLoans: shared.ParseAmount(e.ProjectLoans),
	}
}

type submitRequest struct {
	ReportDate string       `json:"report_date"`
	POName     string       `json:"po_name" validate:"required"`
	Visits     []visitEntry `json:"visits" validate:"required,min=1,dive"`
}

func (h *Handler) submit(w http.ResponseWriter, r *http.Request) {
	var req submitRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}

	var reportDate time.Time
	if req.ReportDate != "" {
		if d, err := time.Parse("2006-01-02", req.ReportDate); err == nil {
			reportDate = d
		}
	}
	visits := make([]GroupVisit, 0, len(req.Visits))
	for _, e := range req.Visits {
		visits = append(visits, e.toVisit())
	}

	created, err := h.service.Submit(r.Context(), reportDate, req.POName, visits)
	if err != nil {
		h.logger.Error("submit report failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

// syncPayload is the offline app's wire format: one scalar header plus
// parallel arrays, one slot per group visited. Field names, including the
// total_attendet misspelling, match what the app sends and cannot change.
type syncPayload struct {
	Date   string `json:"date"`
	POName string `json:"po_name"`

	GroupName     []string `json:"group_name"`
	VisitVenue    []string `json:"visit_venue"`
	VisitTime     []string `json:"visit_time"`
	TotalAttendet []string `json:"total_attendet"`

	AdminForGroup       []string `json:"admin_for_group"`
	ProjectRegistration []string `json:"project_registration"`
	MemReg              []string `json:"mem_reg"`

	LongTermLoan        []string `json:"long_term_loan"`
	ShortTermLoan       []string `json:"short_term_loan"`
	SavingsBefore       []string `json:"savings_before"`
	TotalLoanRepaid     []string `json:"total_loan_repaid"`
	LoanPrinciple       []string `json:"loan_principle"`
	LoanInterest        []string `json:"loan_interest"`
	ShortTermLoanRepaid []string `json:"short_term_loan_repaid"`

	SavingsThisMonth []string `json:"savings_this_month"`
	WelfareForGroup  []string `json:"welfare_for_group"`
	Project          []string `json:"project"`
	FinesAndCharges  []string `json:"fines_and_charges"`
}

func at(arr []string, i int) string {
	if i < len(arr) {
		return arr[i]
	}
	return ""
}

func (p syncPayload) visits() []GroupVisit {
	visits := make([]GroupVisit, 0, len(p.GroupName))
	for i := range p.GroupName {
		visits = append(visits, GroupVisit{
			GroupName:  p.GroupName[i],
			VisitVenue: at(p.VisitVenue, i),
			VisitTime:  at(p.VisitTime, i),
			Attendees:  shared.ParseCount(at(p.TotalAttendet, i)),

			AdminForGroup:       at(p.AdminForGroup, i),
			ProjectRegistration: at(p.ProjectRegistration, i),
			MemReg:              at(p.MemReg, i),

			LongTermLoan:        shared.ParseAmount(at(p.LongTermLoan, i)),
			ShortTermLoan:       shared.ParseAmount(at(p.ShortTermLoan, i)),
			SavingsBefore:       shared.ParseAmount(at(p.SavingsBefore, i)),
			TotalLoanRepaid:     shared.ParseAmount(at(p.TotalLoanRepaid, i)),
			LoanPrinciple:       shared.ParseAmount(at(p.LoanPrinciple, i)),
			LoanInterest:        shared.ParseAmount(at(p.LoanInterest, i)),
			ShortTermLoanRepaid: shared.ParseAmount(at(p.ShortTermLoanRepaid, i)),

			SavingsThisMonth: shared.ParseAmount(at(p.SavingsThisMonth, i)),
			WelfareForGroup:  shared.ParseAmount(at(p.WelfareForGroup, i)),
			Project:          shared.ParseAmount(at(p.Project, i)),
			FinesAndCharges:  shared.ParseAmount(at(p.FinesAndCharges, i)),
		})
	}
	return visits
}

// sync is the offline-sync endpoint. Its response shape predates the rest of
// the API and the app depends on it: a flat {status, message, report_id}
// object, 400 only for unparseable JSON, 500 for anything else.
func (h *Handler) sync(w http.ResponseWriter, r *http.Request) {
	var payload syncPayload
	if err := httpx.DecodeJSON(r, &payload); err != nil {
		httpx.JSON(w, http.StatusBadRequest, map[string]any{
			"status":  "error",
			"message": "invalid JSON payload",
		})
		return
	}

	var reportDate time.Time
	if payload.Date != "" {
		if d, err := time.Parse("2006-01-02", payload.Date); err == nil {
			reportDate = d
		}
	}

	created, err := h.service.Submit(r.Context(), reportDate, payload.POName, payload.visits())
	if err != nil {
		h.logger.Error("offline report sync failed", "error", err, "po_name", payload.POName)
		httpx.JSON(w, http.StatusInternalServerError, map[string]any{
			"status":  "error",
			"message": "failed to save report",
		})
		return
	}

	httpx.JSON(w, http.StatusOK, map[string]any{
		"status":    "success",
		"message":   "report synced",
		"report_id": created.ID,
	})
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	filters, page, limit := parseFilters(r)
	reportsList, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list reports failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"reports":    reportsList,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid report ID")
		return
	}
	report, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, report)
}

// table renders the date-ranged report table with per-column totals and
// KSh-formatted amounts.
func (h *Handler) table(w http.ResponseWriter, r *http.Request) {
	filters, _, _ := parseFilters(r)
	filters.Limit = 0 // the table always covers the whole range

	reportsList, _, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("report table failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, BuildTable(reportsList))
}

func parseFilters(r *http.Request) (Filters, int, int) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := Filters{Page: page, Limit: limit, POName: q.Get("po_name")}
	if raw := q.Get("from"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			filters.From = d
		}
	}
	if raw := q.Get("to"); raw != "" {
		if d, err := time.Parse("2006-01-02", raw); err == nil {
			filters.To = d
		}
	}
	return filters, page, limit
}
