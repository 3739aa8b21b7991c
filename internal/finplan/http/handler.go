package finplanhttp

import (
	"context"
	"encoding/csv"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"
	"golang.org/x/text/language"

	"github.com/pulseboard/pulseboard/internal/finplan"
	"github.com/pulseboard/pulseboard/internal/platform/httpx"
	"github.com/pulseboard/pulseboard/internal/shared"
)

// Handler wires the financial planning JSON endpoints.
type Handler struct {
	logger   *slog.Logger
	service  *finplan.Service
	validate *validator.Validate
}

// NewHandler constructs a Handler instance.
func NewHandler(logger *slog.Logger, service *finplan.Service) *Handler {
	return &Handler{logger: logger, service: service, validate: validator.New()}
}

// MountRoutes registers the finance routes. The organization is resolved
// by the auth middleware; handlers refuse to run without one.
func (h *Handler) MountRoutes(r chi.Router) {
	r.Route("/finance", func(r chi.Router) {
		r.Get("/report", h.getReport)
		r.Post("/report/preview", h.previewReport)
		r.Get("/report/export", h.exportReport)
		r.Put("/plans", h.savePlans)
		r.Get("/tax-rate", h.getTaxRate)
		r.Put("/tax-rate", h.saveTaxRate)
		r.Get("/custom-rows", h.listCustomRows)
		r.Post("/custom-rows", h.createCustomRow)
		r.Delete("/custom-rows/{id}", h.deleteCustomRow)
	})
}

type reportQuery struct {
	From        string `validate:"required,datetime=2006-01"`
	To          string `validate:"required,datetime=2006-01"`
	Granularity string `validate:"omitempty,oneof=month quarter"`
}

func (h *Handler) parseReportQuery(r *http.Request) (reportQuery, error) {
	q := reportQuery{
		From:        strings.TrimSpace(r.URL.Query().Get("from")),
		To:          strings.TrimSpace(r.URL.Query().Get("to")),
		Granularity: strings.TrimSpace(r.URL.Query().Get("granularity")),
	}
	if err := h.validate.Struct(q); err != nil {
		return reportQuery{}, fmt.Errorf("invalid report query: from and to must be YYYY-MM")
	}
	return q, nil
}

func (h *Handler) getReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	q, err := h.parseReportQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	req := finplan.ReportRequest{From: q.From, To: q.To, Granularity: finplan.Granularity(q.Granularity)}

	key := strings.Join([]string{orgID.String(), q.From, q.To, q.Granularity}, ":")
	result, err := singleflightBuild(r.Context(), key, func(ctx context.Context) (any, error) {
		return h.service.BuildReport(ctx, orgID, req)
	})
	if err != nil {
		h.logger.Error("build report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	report, _ := result.(finplan.Report)
	httpx.JSON(w, http.StatusOK, toReportVM(report))
}

type previewRequest struct {
	From            string                        `json:"from" validate:"required,datetime=2006-01"`
	To              string                        `json:"to" validate:"required,datetime=2006-01"`
	Granularity     string                        `json:"granularity" validate:"omitempty,oneof=month quarter"`
	Overrides       map[string]map[string]float64 `json:"overrides"`
	CustomOverrides map[string]map[string]float64 `json:"customOverrides"`
}

func (h *Handler) previewReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	var body previewRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "from and to must be YYYY-MM")
		return
	}
	overrides, err := parseOverrides(body.Overrides, body.CustomOverrides)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.BuildReport(r.Context(), orgID, finplan.ReportRequest{
		From:        body.From,
		To:          body.To,
		Granularity: finplan.Granularity(body.Granularity),
		Overrides:   overrides,
	})
	if err != nil {
		h.logger.Error("preview report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, toReportVM(report))
}

func (h *Handler) exportReport(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	q, err := h.parseReportQuery(r)
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", err.Error())
		return
	}
	report, err := h.service.BuildReport(r.Context(), orgID, finplan.ReportRequest{
		From:        q.From,
		To:          q.To,
		Granularity: finplan.Granularity(q.Granularity),
	})
	if err != nil {
		h.logger.Error("export report", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=pnl_%s_%s.csv", q.From, q.To))
	writer := csv.NewWriter(w)
	for _, record := range finplan.ExportRows(report.Rows, language.English) {
		if err := writer.Write(record); err != nil {
			h.logger.Error("write csv", slog.Any("error", err))
			return
		}
	}
	writer.Flush()
}

type planPayload struct {
	Month        string             `json:"month" validate:"required,datetime=2006-01"`
	Revenue      float64            `json:"revenue"`
	COGS         float64            `json:"cogs"`
	Marketing    float64            `json:"marketing"`
	Payroll      float64            `json:"payroll"`
	Office       float64            `json:"office"`
	OtherOpex    float64            `json:"otherOpex"`
	Depreciation float64            `json:"depreciation"`
	Taxes        float64            `json:"taxes"`
	Capex        float64            `json:"capex"`
	Financing    float64            `json:"financing"`
	Custom       map[string]float64 `json:"custom"`
}

type savePlansRequest struct {
	Plans   []planPayload `json:"plans" validate:"required,min=1,dive"`
	TaxRate *float64      `json:"taxRate" validate:"omitempty,gte=0,lte=1"`
}

func (h *Handler) savePlans(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	var body savePlansRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "plan months must be YYYY-MM and tax rate between 0 and 1")
		return
	}
	input := finplan.SavePlansInput{TaxRate: body.TaxRate}
	for _, p := range body.Plans {
		record := finplan.PlanRecord{
			Month:        p.Month,
			Revenue:      p.Revenue,
			COGS:         p.COGS,
			Marketing:    p.Marketing,
			Payroll:      p.Payroll,
			Office:       p.Office,
			OtherOpex:    p.OtherOpex,
			Depreciation: p.Depreciation,
			Taxes:        p.Taxes,
			Capex:        p.Capex,
			Financing:    p.Financing,
			CustomValues: make(map[uuid.UUID]float64, len(p.Custom)),
		}
		for rawID, amount := range p.Custom {
			rowID, err := uuid.Parse(rawID)
			if err != nil {
				httpx.Problem(w, http.StatusBadRequest, "Validation Failed", fmt.Sprintf("invalid custom row id %q", rawID))
				return
			}
			record.CustomValues[rowID] = amount
		}
		input.Plans = append(input.Plans, record)
	}
	if err := h.service.SavePlans(r.Context(), orgID, input); err != nil {
		h.logger.Error("save plans", slog.Any("error", err))
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, map[string]any{"saved": len(input.Plans)})
}

type taxRateVM struct {
	TaxRate float64 `json:"taxRate"`
}

func (h *Handler) getTaxRate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	rate, err := h.service.GetTaxRate(r.Context(), orgID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, taxRateVM{TaxRate: rate})
}

type saveTaxRateRequest struct {
	TaxRate float64 `json:"taxRate" validate:"gte=0,lte=1"`
}

func (h *Handler) saveTaxRate(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	var body saveTaxRateRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "tax rate must be between 0 and 1")
		return
	}
	if err := h.service.SaveTaxRate(r.Context(), orgID, body.TaxRate); err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusOK, taxRateVM{TaxRate: body.TaxRate})
}

func (h *Handler) listCustomRows(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	rows, err := h.service.ListCustomRows(r.Context(), orgID)
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	out := make([]customRowVM, 0, len(rows))
	for _, row := range rows {
		out = append(out, toCustomRowVM(row))
	}
	httpx.JSON(w, http.StatusOK, out)
}

type customRowRequest struct {
	Name    string `json:"name" validate:"required,max=120"`
	Section string `json:"section" validate:"required,oneof=operating investing financing"`
}

func (h *Handler) createCustomRow(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	var body customRowRequest
	if err := httpx.DecodeJSON(r, &body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Bad Request", "malformed JSON body")
		return
	}
	if err := h.validate.Struct(body); err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "name is required and section must be operating, investing, or financing")
		return
	}
	row, err := h.service.CreateCustomRow(r.Context(), orgID, body.Name, finplan.Section(body.Section))
	if err != nil {
		httpx.RespondError(w, err)
		return
	}
	httpx.JSON(w, http.StatusCreated, toCustomRowVM(row))
}

func (h *Handler) deleteCustomRow(w http.ResponseWriter, r *http.Request) {
	orgID, ok := shared.OrgFromContext(r.Context())
	if !ok {
		httpx.RespondError(w, shared.ErrMissingOrg)
		return
	}
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		httpx.Problem(w, http.StatusBadRequest, "Validation Failed", "invalid row id")
		return
	}
	if err := h.service.DeleteCustomRow(r.Context(), orgID, id); err != nil {
		httpx.RespondError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func parseOverrides(metrics map[string]map[string]float64, custom map[string]map[string]float64) (finplan.Overrides, error) {
	out := finplan.Overrides{}
	if len(metrics) > 0 {
		out.Metrics = make(map[string]map[finplan.Metric]float64, len(metrics))
		for month, fields := range metrics {
			parsed := make(map[finplan.Metric]float64, len(fields))
			for name, value := range fields {
				m, ok := finplan.ParseMetric(name)
				if !ok {
					return finplan.Overrides{}, fmt.Errorf("unknown metric %q", name)
				}
				parsed[m] = value
			}
			out.Metrics[month] = parsed
		}
	}
	if len(custom) > 0 {
		out.Custom = make(map[string]map[uuid.UUID]float64, len(custom))
		for month, rows := range custom {
			parsed := make(map[uuid.UUID]float64, len(rows))
			for rawID, value := range rows {
				rowID, err := uuid.Parse(rawID)
				if err != nil {
					return finplan.Overrides{}, fmt.Errorf("invalid custom row id %q", rawID)
				}
				parsed[rowID] = value
			}
			out.Custom[month] = parsed
		}
	}
	return out, nil
}
