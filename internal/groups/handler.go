package groups

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

// Handler manages group HTTP endpoints.
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
	r.Post("/", h.create)
	r.Get("/{id}", h.show)
	r.Put("/{id}", h.update)
	r.Post("/{id}/deactivate", h.deactivate)
	r.Get("/{id}/members", h.members)
	r.Post("/{id}/members", h.enroll)
	r.Post("/memberships/{membershipID}/exit", h.exit)
}

type groupRequest struct {
	Name               string `json:"name" validate:"required"`
	RegistrationNumber string `json:"registration_number"`
	FormationDate      string `json:"formation_date"`
	MeetingSchedule    string `json:"meeting_schedule"`
	MeetingLocation    string `json:"meeting_location"`
	Description        string `json:"description"`
	ChairpersonID      *int64 `json:"chairperson_id"`
	SecretaryID        *int64 `json:"secretary_id"`
	TreasurerID        *int64 `json:"treasurer_id"`
	FieldOfficerID     *int64 `json:"field_officer_id"`
	IsActive           *bool  `json:"is_active"`
}

type enrollRequest struct {
	MemberID     int64  `json:"member_id" validate:"required,gt=0"`
	JoinDate     string `json:"join_date"`
	Position     string `json:"position"`
	MemberNumber int    `json:"member_number"`
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	page, _ := strconv.Atoi(r.URL.Query().Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
	if limit < 1 {
		limit = 20
	}
	filters := shared.ListFilters{Page: page, Limit: limit, Search: r.URL.Query().Get("search")}

	groupsList, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list groups failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"groups":     groupsList,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group ID")
		return
	}
	group, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, group)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	group, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Register(r.Context(), group)
	if err != nil {
		h.logger.Error("register group failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group ID")
		return
	}
	group, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, group); err != nil {
		h.logger.Error("update group failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	updated, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, updated)
}

func (h *Handler) deactivate(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group ID")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.logger.Error("deactivate group failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) members(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group ID")
		return
	}
	memberships, err := h.service.Members(r.Context(), id)
	if err != nil {
		h.logger.Error("list memberships failed", "error", err, "group_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"memberships": memberships})
}

func (h *Handler) enroll(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid group ID")
		return
	}
	var req enrollRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	membership := Membership{
		MemberID:     req.MemberID,
		GroupID:      id,
		Position:     Position(req.Position),
		MemberNumber: req.MemberNumber,
	}
	if req.JoinDate != "" {
		if d, err := time.Parse("2006-01-02", req.JoinDate); err == nil {
			membership.JoinDate = d
		}
	}
	created, err := h.service.Enroll(r.Context(), membership)
	if err != nil {
		h.logger.Error("enroll member failed", "error", err, "group_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) exit(w http.ResponseWriter, r *http.Request) {
	membershipID, err := strconv.ParseInt(chi.URLParam(r, "membershipID"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid membership ID")
		return
	}
	var req struct {
		Reason string `json:"reason"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.Exit(r.Context(), membershipID, req.Reason); err != nil {
		h.logger.Error("membership exit failed", "error", err, "membership_id", membershipID)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "exited"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Group, bool) {
	var req groupRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return Group{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Group{}, false
	}
	group := Group{
		Name:               req.Name,
		RegistrationNumber: req.RegistrationNumber,
		MeetingSchedule:    req.MeetingSchedule,
		MeetingLocation:    req.MeetingLocation,
		Description:        req.Description,
		ChairpersonID:      req.ChairpersonID,
		SecretaryID:        req.SecretaryID,
		TreasurerID:        req.TreasurerID,
		FieldOfficerID:     req.FieldOfficerID,
		IsActive:           true,
	}
	if req.FormationDate != "" {
		if d, err := time.Parse("2006-01-02", req.FormationDate); err == nil {
			group.FormationDate = d
		}
	}
	if req.IsActive != nil {
		group.IsActive = *req.IsActive
	}
	return group, true
}
