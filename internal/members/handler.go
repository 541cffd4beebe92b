package members

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

// Handler manages member HTTP endpoints.
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
}

type memberRequest struct {
	FirstName         string `json:"first_name" validate:"required"`
	LastName          string `json:"last_name" validate:"required"`
	IDNumber          string `json:"id_number" validate:"required"`
	Gender            string `json:"gender" validate:"required,oneof=M F O"`
	DateOfBirth       string `json:"date_of_birth" validate:"required"`
	PhoneNumber       string `json:"phone_number" validate:"required"`
	Email             string `json:"email" validate:"omitempty,email"`
	PhysicalAddress   string `json:"physical_address"`
	Occupation        string `json:"occupation"`
	NextOfKinName     string `json:"next_of_kin_name"`
	NextOfKinPhone    string `json:"next_of_kin_phone"`
	NextOfKinRelation string `json:"next_of_kin_relation"`
	FieldOfficerID    *int64 `json:"field_officer_id"`
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

	membersList, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list members failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"members":    membersList,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid member ID")
		return
	}
	member, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, member)
}

func (h *Handler) create(w http.ResponseWriter, r *http.Request) {
	member, ok := h.decode(w, r)
	if !ok {
		return
	}
	created, err := h.service.Register(r.Context(), member)
	if err != nil {
		h.logger.Error("register member failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) update(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid member ID")
		return
	}
	member, ok := h.decode(w, r)
	if !ok {
		return
	}
	if err := h.service.Update(r.Context(), id, member); err != nil {
		h.logger.Error("update member failed", "error", err, "id", id)
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
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid member ID")
		return
	}
	if err := h.service.Deactivate(r.Context(), id); err != nil {
		h.logger.Error("deactivate member failed", "error", err, "id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "deactivated"})
}

func (h *Handler) decode(w http.ResponseWriter, r *http.Request) (Member, bool) {
	var req memberRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return Member{}, false
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return Member{}, false
	}
	dob, err := time.Parse("2006-01-02", req.DateOfBirth)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "date_of_birth must be YYYY-MM-DD")
		return Member{}, false
	}
	return Member{
		FirstName:         req.FirstName,
		LastName:          req.LastName,
		IDNumber:          req.IDNumber,
		Gender:            Gender(req.Gender),
		DateOfBirth:       dob,
		PhoneNumber:       req.PhoneNumber,
		Email:             req.Email,
		PhysicalAddress:   req.PhysicalAddress,
		Occupation:        req.Occupation,
		NextOfKinName:     req.NextOfKinName,
		NextOfKinPhone:    req.NextOfKinPhone,
		NextOfKinRelation: req.NextOfKinRelation,
		FieldOfficerID:    req.FieldOfficerID,
		IsActive:          true,
	}, true
}
