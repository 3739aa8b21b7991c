package finplanhttp

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/pulseboard/pulseboard/internal/finplan"
	"github.com/pulseboard/pulseboard/internal/ledger"
	"github.com/pulseboard/pulseboard/internal/shared"
)

type stubPlanStore struct {
	plans      []finplan.PlanRecord
	customRows []finplan.CustomRow
	taxRate    float64
	saved      []finplan.PlanRecord
}

func (s *stubPlanStore) PlansInRange(ctx context.Context, orgID uuid.UUID, from, to string) ([]finplan.PlanRecord, error) {
	return s.plans, nil
}

func (s *stubPlanStore) UpsertPlans(ctx context.Context, orgID uuid.UUID, plans []finplan.PlanRecord) error {
	s.saved = append(s.saved, plans...)
	return nil
}

func (s *stubPlanStore) TaxRate(ctx context.Context, orgID uuid.UUID) (float64, error) {
	return s.taxRate, nil
}

func (s *stubPlanStore) SaveTaxRate(ctx context.Context, orgID uuid.UUID, rate float64) error {
	s.taxRate = rate
	return nil
}

func (s *stubPlanStore) ListCustomRows(ctx context.Context, orgID uuid.UUID) ([]finplan.CustomRow, error) {
	return s.customRows, nil
}

func (s *stubPlanStore) InsertCustomRow(ctx context.Context, row finplan.CustomRow) error {
	s.customRows = append(s.customRows, row)
	return nil
}

func (s *stubPlanStore) DeleteCustomRow(ctx context.Context, orgID, id uuid.UUID) error {
	for i, row := range s.customRows {
		if row.ID == id {
			s.customRows = append(s.customRows[:i], s.customRows[i+1:]...)
			return nil
		}
	}
	return shared.ErrNotFound
}

type stubLedger struct {
	txs []ledger.Transaction
}

func (s *stubLedger) TransactionsInRange(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.Transaction, error) {
	return s.txs, nil
}

func (s *stubLedger) PayrollByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.PayrollMonth, error) {
	return nil, nil
}

func (s *stubLedger) ProjectExpensesByMonth(ctx context.Context, orgID uuid.UUID, from, to time.Time) ([]ledger.ProjectExpenseMonth, error) {
	return nil, nil
}

func newTestRouter(store *stubPlanStore, lgr *stubLedger) http.Handler {
	svc := finplan.NewService(store, lgr, finplan.NewCache(nil, 0), slog.Default())
	handler := NewHandler(slog.Default(), svc)
	r := chi.NewRouter()
	handler.MountRoutes(r)
	return r
}

func withOrg(req *http.Request, orgID uuid.UUID) *http.Request {
	return req.WithContext(shared.ContextWithOrg(req.Context(), orgID))
}

func TestGetReportReturnsGrid(t *testing.T) {
	store := &stubPlanStore{taxRate: 0.1}
	lgr := &stubLedger{txs: []ledger.Transaction{
		{Date: time.Date(2025, 1, 5, 0, 0, 0, 0, time.UTC), Amount: 2000},
	}}
	router := newTestRouter(store, lgr)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/finance/report?from=2025-01&to=2025-02", nil), uuid.New())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body reportVM
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if len(body.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(body.Rows))
	}
	if body.Rows[0].Revenue != 2000 {
		t.Fatalf("expected revenue 2000, got %v", body.Rows[0].Revenue)
	}
	if body.TaxRate != 0.1 {
		t.Fatalf("expected tax rate 0.1, got %v", body.TaxRate)
	}
}

func TestGetReportRejectsBadMonth(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	req := withOrg(httptest.NewRequest(http.MethodGet, "/finance/report?from=Jan-2025&to=2025-02", nil), uuid.New())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestGetReportRequiresOrg(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	req := httptest.NewRequest(http.MethodGet, "/finance/report?from=2025-01&to=2025-02", nil)
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status 401, got %d", rr.Code)
	}
}

func TestPreviewReportAppliesOverrides(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	payload := `{"from":"2025-01","to":"2025-01","overrides":{"2025-01":{"revenue":7500}}}`
	req := withOrg(httptest.NewRequest(http.MethodPost, "/finance/report/preview", strings.NewReader(payload)), uuid.New())
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	var body reportVM
	if err := json.Unmarshal(rr.Body.Bytes(), &body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if body.Rows[0].Revenue != 7500 {
		t.Fatalf("expected overridden revenue 7500, got %v", body.Rows[0].Revenue)
	}
}

func TestPreviewReportRejectsUnknownMetric(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	payload := `{"from":"2025-01","to":"2025-01","overrides":{"2025-01":{"turnover":1}}}`
	req := withOrg(httptest.NewRequest(http.MethodPost, "/finance/report/preview", strings.NewReader(payload)), uuid.New())
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
	if !strings.Contains(rr.Body.String(), "turnover") {
		t.Fatalf("expected offending metric in message, got %s", rr.Body.String())
	}
}

func TestSavePlansRoundTrip(t *testing.T) {
	store := &stubPlanStore{}
	router := newTestRouter(store, &stubLedger{})

	payload := `{"plans":[{"month":"2025-03","revenue":1000,"cogs":400}],"taxRate":0.2}`
	req := withOrg(httptest.NewRequest(http.MethodPut, "/finance/plans", strings.NewReader(payload)), uuid.New())
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rr.Code, rr.Body.String())
	}
	if len(store.saved) != 1 || store.saved[0].Month != "2025-03" || store.saved[0].Revenue != 1000 {
		t.Fatalf("unexpected saved plans: %+v", store.saved)
	}
	if store.taxRate != 0.2 {
		t.Fatalf("expected tax rate saved, got %v", store.taxRate)
	}
}

func TestSavePlansRejectsEmptyBatch(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	req := withOrg(httptest.NewRequest(http.MethodPut, "/finance/plans", strings.NewReader(`{"plans":[]}`)), uuid.New())
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rr.Code)
	}
}

func TestCustomRowLifecycle(t *testing.T) {
	store := &stubPlanStore{}
	router := newTestRouter(store, &stubLedger{})
	orgID := uuid.New()

	req := withOrg(httptest.NewRequest(http.MethodPost, "/finance/custom-rows", strings.NewReader(`{"name":"Loan repayment","section":"financing"}`)), orgID)
	req.Header.Set("Content-Type", "application/json")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status 201, got %d: %s", rr.Code, rr.Body.String())
	}
	var created customRowVM
	if err := json.Unmarshal(rr.Body.Bytes(), &created); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if created.Name != "Loan repayment" || created.Section != "financing" {
		t.Fatalf("unexpected row: %+v", created)
	}

	req = withOrg(httptest.NewRequest(http.MethodDelete, "/finance/custom-rows/"+created.ID, nil), orgID)
	rr = httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNoContent {
		t.Fatalf("expected status 204, got %d", rr.Code)
	}
	if len(store.customRows) != 0 {
		t.Fatalf("expected row removed, %d remain", len(store.customRows))
	}
}

func TestDeleteCustomRowMissing(t *testing.T) {
	router := newTestRouter(&stubPlanStore{}, &stubLedger{})

	req := withOrg(httptest.NewRequest(http.MethodDelete, "/finance/custom-rows/"+uuid.NewString(), nil), uuid.New())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rr.Code)
	}
}

func TestExportReportWritesCSV(t *testing.T) {
	lgr := &stubLedger{txs: []ledger.Transaction{
		{Date: time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC), Amount: 3000},
	}}
	router := newTestRouter(&stubPlanStore{}, lgr)

	req := withOrg(httptest.NewRequest(http.MethodGet, "/finance/report/export?from=2025-02&to=2025-02", nil), uuid.New())
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	if rr.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rr.Code)
	}
	if got := rr.Header().Get("Content-Type"); got != "text/csv" {
		t.Fatalf("expected text/csv, got %q", got)
	}
	body := rr.Body.String()
	if !strings.Contains(body, "Period,Revenue") {
		t.Fatalf("expected CSV header, got %s", body)
	}
	if !strings.Contains(body, "February 2025") {
		t.Fatalf("expected period label in export, got %s", body)
	}
}
