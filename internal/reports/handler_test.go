package reports

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/require"

	"github.com/ukombozini/backoffice/internal/platform/httpx"
)

type memoryReportRepo struct {
	reports map[int64]*FieldOfficerReport
	nextID  int64
	failing bool
}

func newMemoryReportRepo() *memoryReportRepo {
	return &memoryReportRepo{reports: make(map[int64]*FieldOfficerReport)}
}

func (r *memoryReportRepo) List(ctx context.Context, filters Filters) ([]FieldOfficerReport, int, error) {
	var out []FieldOfficerReport
	for _, rep := range r.reports {
		out = append(out, *rep)
	}
	return out, len(out), nil
}

func (r *memoryReportRepo) Get(ctx context.Context, id int64) (FieldOfficerReport, error) {
	rep, ok := r.reports[id]
	if !ok {
		return FieldOfficerReport{}, httpx.ErrNotFound
	}
	return *rep, nil
}

func (r *memoryReportRepo) Create(ctx context.Context, rep FieldOfficerReport) (FieldOfficerReport, error) {
	if r.failing {
		return FieldOfficerReport{}, errors.New("connection reset")
	}
	r.nextID++
	rep.ID = r.nextID
	r.reports[rep.ID] = &rep
	return rep, nil
}

func newTestHandler(repo Repository) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewHandler(logger, NewService(repo))
	r := chi.NewRouter()
	r.Route("/reports", func(r chi.Router) {
		h.MountRoutes(r)
	})
	return r
}

const syncBody = `{
	"date": "2026-07-03",
	"po_name": "Jane Wekesa",
	"group_name": ["Umoja", "Tumaini"],
	"visit_venue": ["Chief's Camp", "Market Hall"],
	"visit_time": ["09:00", "14:00"],
	"total_attendet": ["18", "12"],
	"total_loan_repaid": ["3000", "2000"],
	"savings_this_month": ["1200", "800"],
	"welfare_for_group": ["300", "200"],
	"project": ["500", ""],
	"fines_and_charges": ["50", "n/a"]
}`

func TestSyncOfflineReport(t *testing.T) {
	repo := newMemoryReportRepo()
	srv := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/reports/sync", strings.NewReader(syncBody))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	var resp struct {
		Status   string `json:"status"`
		Message  string `json:"message"`
		ReportID int64  `json:"report_id"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "success", resp.Status)
	require.NotZero(t, resp.ReportID)

	stored := repo.reports[resp.ReportID]
	require.Equal(t, 2, stored.TotalGroups)
	require.Equal(t, 30, stored.TotalAttendees)
	require.Equal(t, "Umoja, Tumaini", stored.GroupNames)
	require.True(t, stored.TotalSavings.Equal(d("3050")), "total_savings = %s", stored.TotalSavings)
	require.True(t, stored.TotalMoney.Equal(d("8050")), "total_money = %s", stored.TotalMoney)
}

func TestSyncBadJSONReturns400(t *testing.T) {
	repo := newMemoryReportRepo()
	srv := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/reports/sync", strings.NewReader(`{"po_name": `))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusBadRequest, rec.Code)
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "error", resp.Status)
	require.Empty(t, repo.reports, "nothing must be persisted")
}

func TestSyncStorageFailureReturns500(t *testing.T) {
	repo := newMemoryReportRepo()
	repo.failing = true
	srv := newTestHandler(repo)

	req := httptest.NewRequest(http.MethodPost, "/reports/sync", strings.NewReader(syncBody))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)

	require.Equal(t, http.StatusInternalServerError, rec.Code)
	var resp struct {
		Status string `json:"status"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Equal(t, "error", resp.Status)
}

func TestFormAndSyncAggregateIdentically(t *testing.T) {
	repo := newMemoryReportRepo()
	srv := newTestHandler(repo)

	formBody := `{
		"report_date": "2026-07-03",
		"po_name": "Jane Wekesa",
		"visits": [
			{"group_name": "Umoja", "visit_venue": "Chief's Camp", "visit_time": "09:00", "attendees": 18,
			 "total_loan_repaid": "3000", "savings_this_month": "1200", "welfare_for_group": "300",
			 "project": "500", "fines_and_charges": "50"},
			{"group_name": "Tumaini", "visit_venue": "Market Hall", "visit_time": "14:00", "attendees": 12,
			 "total_loan_repaid": "2000", "savings_this_month": "800", "welfare_for_group": "200",
			 "project": "", "fines_and_charges": "n/a"}
		]
	}`

	req := httptest.NewRequest(http.MethodPost, "/reports", strings.NewReader(formBody))
	rec := httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusCreated, rec.Code)

	req = httptest.NewRequest(http.MethodPost, "/reports/sync", strings.NewReader(syncBody))
	rec = httptest.NewRecorder()
	srv.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	formReport := *repo.reports[1]
	syncReport := *repo.reports[2]
	formReport.ID, syncReport.ID = 0, 0
	formReport.CreatedAt, syncReport.CreatedAt = time.Time{}, time.Time{}
	require.Equal(t, formReport, syncReport, "both ingestion paths must aggregate identically")
}

func TestReportTableTotals(t *testing.T) {
	reps := []FieldOfficerReport{
		{ReportDate: time.Date(2026, 7, 3, 0, 0, 0, 0, time.UTC), POName: "Jane", TotalGroups: 2,
			TotalAttendees: 30, TotalLoanRepaid: d("5000"), TotalSavings: d("3050"), TotalMoney: d("8050")},
		{ReportDate: time.Date(2026, 7, 4, 0, 0, 0, 0, time.UTC), POName: "Jane", TotalGroups: 1,
			TotalAttendees: 10, TotalLoanRepaid: d("1000000"), TotalSavings: d("500"), TotalMoney: d("1000500")},
	}

	table := BuildTable(reps)
	require.Len(t, table.Rows, 2)
	require.Equal(t, 3, table.Totals.TotalGroups)
	require.Equal(t, 40, table.Totals.TotalAttendees)
	require.Equal(t, "KSh 1,005,000.00", table.Totals.TotalLoanRepaid)
	require.Equal(t, "KSh 1,008,550.00", table.Totals.TotalMoney)
}
