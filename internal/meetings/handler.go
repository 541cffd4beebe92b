package meetings

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

// Handler manages meeting HTTP endpoints.
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
	r.Post("/", h.schedule)
	r.Get("/{id}", h.show)
	r.Post("/{id}/start", h.start)
	r.Post("/{id}/complete", h.complete)
	r.Post("/{id}/cancel", h.cancel)
	r.Post("/{id}/postpone", h.postpone)
	r.Post("/{id}/reschedule", h.reschedule)
	r.Get("/{id}/attendance", h.listAttendance)
	r.Post("/{id}/attendance", h.recordAttendance)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(chi.URLParam(r, "id"), 10, 64)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "invalid meeting ID")
		return 0, false
	}
	return id, true
}

func parseDate(w http.ResponseWriter, field, raw string) (time.Time, bool) {
	d, err := time.Parse("2006-01-02", raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" must be YYYY-MM-DD")
		return time.Time{}, false
	}
	return d, true
}

func parseTime(w http.ResponseWriter, field, raw string) (time.Time, bool) {
	d, err := time.Parse(time.RFC3339, raw)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", field+" must be RFC 3339")
		return time.Time{}, false
	}
	return d, true
}

func (h *Handler) list(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	page, _ := strconv.Atoi(q.Get("page"))
	if page < 1 {
		page = 1
	}
	limit, _ := strconv.Atoi(q.Get("limit"))
	if limit < 1 {
		limit = 20
	}
	groupID, _ := strconv.ParseInt(q.Get("group_id"), 10, 64)

	filters := Filters{Page: page, Limit: limit, Status: Status(q.Get("status")), GroupID: groupID}
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

	meetingsList, total, err := h.service.List(r.Context(), filters)
	if err != nil {
		h.logger.Error("list meetings failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{
		"meetings":   meetingsList,
		"pagination": shared.NewPagination(page, limit, total),
	})
}

func (h *Handler) show(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	m, err := h.service.Get(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, m)
}

type meetingRequest struct {
	Title                 string       `json:"title" validate:"required"`
	Type                  string       `json:"type"`
	ScheduledDate         string       `json:"scheduled_date" validate:"required"`
	StartTime             string       `json:"start_time" validate:"required"`
	EndTime               string       `json:"end_time" validate:"required"`
	Location              string       `json:"location"`
	Description           string       `json:"description"`
	Recurrence            string       `json:"recurrence"`
	OrganizerID           int64        `json:"organizer_id" validate:"required,gt=0"`
	GroupID               *int64       `json:"group_id"`
	Agenda                []AgendaItem `json:"agenda"`
	ParticipantMemberIDs  []int64      `json:"participant_member_ids"`
	ParticipantOfficerIDs []int64      `json:"participant_officer_ids"`
}

func (h *Handler) schedule(w http.ResponseWriter, r *http.Request) {
	var req meetingRequest
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, ok := parseDate(w, "scheduled_date", req.ScheduledDate)
	if !ok {
		return
	}
	start, ok := parseTime(w, "start_time", req.StartTime)
	if !ok {
		return
	}
	end, ok := parseTime(w, "end_time", req.EndTime)
	if !ok {
		return
	}

	created, err := h.service.Schedule(r.Context(), Meeting{
		Title:                 req.Title,
		Type:                  Type(req.Type),
		ScheduledDate:         date,
		StartTime:             start,
		EndTime:               end,
		Location:              req.Location,
		Description:           req.Description,
		Recurrence:            Recurrence(req.Recurrence),
		OrganizerID:           req.OrganizerID,
		GroupID:               req.GroupID,
		Agenda:                req.Agenda,
		ParticipantMemberIDs:  req.ParticipantMemberIDs,
		ParticipantOfficerIDs: req.ParticipantOfficerIDs,
	})
	if err != nil {
		h.logger.Error("schedule meeting failed", "error", err)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, created)
}

func (h *Handler) start(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "start", func(id int64) error { return h.service.Start(r.Context(), id) })
}

func (h *Handler) cancel(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "cancel", func(id int64) error { return h.service.Cancel(r.Context(), id) })
}

func (h *Handler) postpone(w http.ResponseWriter, r *http.Request) {
	h.statusChange(w, r, "postpone", func(id int64) error { return h.service.Postpone(r.Context(), id) })
}

func (h *Handler) statusChange(w http.ResponseWriter, r *http.Request, action string, fn func(id int64) error) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := fn(id); err != nil {
		h.logger.Error("meeting "+action+" failed", "error", err, "meeting_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": action})
}

func (h *Handler) complete(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		Minutes string `json:"minutes"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.service.Complete(r.Context(), id, req.Minutes); err != nil {
		h.logger.Error("complete meeting failed", "error", err, "meeting_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]string{"status": "completed"})
}

func (h *Handler) reschedule(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		NewDate   string `json:"new_date" validate:"required"`
		StartTime string `json:"start_time" validate:"required"`
		EndTime   string `json:"end_time" validate:"required"`
		Reason    string `json:"reason"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	date, ok := parseDate(w, "new_date", req.NewDate)
	if !ok {
		return
	}
	start, ok := parseTime(w, "start_time", req.StartTime)
	if !ok {
		return
	}
	end, ok := parseTime(w, "end_time", req.EndTime)
	if !ok {
		return
	}

	clone, err := h.service.Reschedule(r.Context(), id, RescheduleInput{
		NewDate:  date,
		NewStart: start,
		NewEnd:   end,
		Reason:   req.Reason,
	})
	if err != nil {
		h.logger.Error("reschedule meeting failed", "error", err, "meeting_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, clone)
}

func (h *Handler) listAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	attendance, err := h.service.Attendance(r.Context(), id)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"attendance": attendance})
}

func (h *Handler) recordAttendance(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req struct {
		MemberID int64  `json:"member_id" validate:"required,gt=0"`
		Status   string `json:"status"`
		Notes    string `json:"notes"`
	}
	if err := httpx.DecodeJSON(r, &req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(req); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	recorded, err := h.service.RecordAttendance(r.Context(), Attendance{
		MeetingID: id,
		MemberID:  req.MemberID,
		Status:    AttendanceStatus(req.Status),
		Notes:     req.Notes,
	})
	if err != nil {
		h.logger.Error("record attendance failed", "error", err, "meeting_id", id)
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, recorded)
}
