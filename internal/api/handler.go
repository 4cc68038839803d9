package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/shopspring/decimal"

	"github.com/rgehrsitz/paycalc/internal/calculation"
	"github.com/rgehrsitz/paycalc/internal/domain"
	"github.com/rgehrsitz/paycalc/internal/rules"
)

// maxBodyBytes bounds a calculation request body
const maxBodyBytes = 1 << 20

func init() {
	// Money goes out as JSON numbers, not strings
	decimal.MarshalJSONWithoutQuotes = true
}

//go:generate mockgen -source=handler.go -destination=mocks/mocks.go -package=mocks Calculator Catalog RulePackCache

// Calculator runs a calculation request end to end.
type Calculator interface {
	Calculate(ctx context.Context, req *domain.CalculateRequest) (*domain.CalculateResponse, error)
}

// Catalog reports which jurisdictions have a registered calculator.
type Catalog interface {
	SupportedCountries() []domain.Country
	Count() int
}

// RulePackCache is the administrative view of the rule-pack store.
type RulePackCache interface {
	Cached() []string
	InvalidateAll()
}

// Handler serves the calculation API.
type Handler struct {
	calculator Calculator
	catalog    Catalog
	rules      RulePackCache
	logger     *slog.Logger
}

// NewHandler creates a new Handler. A nil logger discards output.
func NewHandler(calculator Calculator, catalog Catalog, rules RulePackCache, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Handler{
		calculator: calculator,
		catalog:    catalog,
		rules:      rules,
		logger:     logger,
	}
}

// ErrorResponse is the body of every non-2xx response
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}

// CountriesResponse lists the supported jurisdictions
type CountriesResponse struct {
	Countries []domain.Country `json:"countries"`
	Count     int              `json:"count"`
}

// HealthResponse reports service readiness
type HealthResponse struct {
	Status             string           `json:"status"`
	Calculators        int              `json:"calculators"`
	SupportedCountries []domain.Country `json:"supportedCountries"`
	CachedRulePacks    []string         `json:"cachedRulePacks"`
}

// InvalidateResponse reports which cached rule packs were dropped
type InvalidateResponse struct {
	Invalidated []string `json:"invalidated"`
}

func (h *Handler) handleCalculate(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	requestID := middleware.GetReqID(ctx)

	var req domain.CalculateRequest
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(&req); err != nil {
		h.logger.WarnContext(ctx, "invalid calculate request body",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, http.StatusBadRequest, "invalid_input", "request body must be a JSON calculation request")
		return
	}

	resp, err := h.calculator.Calculate(ctx, &req)
	if err != nil {
		status, code := classify(err)
		if status >= http.StatusInternalServerError {
			h.logger.ErrorContext(ctx, "calculation failed",
				"request_id", requestID,
				"country", string(req.Country),
				"tax_year", req.TaxYear,
				"error", err.Error(),
			)
			writeError(w, status, code, publicMessage(code))
			return
		}
		h.logger.InfoContext(ctx, "calculation rejected",
			"request_id", requestID,
			"error", err.Error(),
		)
		writeError(w, status, code, err.Error())
		return
	}

	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleCountries(w http.ResponseWriter, _ *http.Request) {
	countries := h.catalog.SupportedCountries()
	writeJSON(w, http.StatusOK, CountriesResponse{Countries: countries, Count: len(countries)})
}

func (h *Handler) handleHealth(w http.ResponseWriter, _ *http.Request) {
	cached := h.rules.Cached()
	if cached == nil {
		cached = []string{}
	}
	writeJSON(w, http.StatusOK, HealthResponse{
		Status:             "UP",
		Calculators:        h.catalog.Count(),
		SupportedCountries: h.catalog.SupportedCountries(),
		CachedRulePacks:    cached,
	})
}

func (h *Handler) handleInvalidate(w http.ResponseWriter, r *http.Request) {
	dropped := h.rules.Cached()
	if dropped == nil {
		dropped = []string{}
	}
	h.rules.InvalidateAll()
	h.logger.InfoContext(r.Context(), "rule pack cache invalidated",
		"request_id", middleware.GetReqID(r.Context()),
		"entries", len(dropped),
	)
	writeJSON(w, http.StatusOK, InvalidateResponse{Invalidated: dropped})
}

// classify maps a calculation error to an HTTP status and error code
func classify(err error) (int, string) {
	switch {
	case errors.Is(err, domain.ErrInvalidInput):
		return http.StatusBadRequest, "invalid_input"
	case errors.Is(err, calculation.ErrUnsupportedCombination):
		return http.StatusBadRequest, "unsupported"
	case errors.Is(err, rules.ErrRulePackNotFound), errors.Is(err, rules.ErrInvalidRulePack),
		errors.Is(err, rules.ErrRulePackUnreadable):
		return http.StatusInternalServerError, "rule_pack_unavailable"
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusServiceUnavailable, "timeout"
	default:
		return http.StatusInternalServerError, "internal"
	}
}

// publicMessage hides internal detail from server-side failures
func publicMessage(code string) string {
	switch code {
	case "rule_pack_unavailable":
		return "tax rules for the requested year are unavailable"
	case "timeout":
		return "calculation timed out"
	default:
		return "internal error"
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, ErrorResponse{Error: code, Message: message})
}
