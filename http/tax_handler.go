package http

import (
	"net/http"
	"strconv"

	"tax-agent/domain"
	"tax-agent/service"
)

type TaxHandler struct {
	service     *service.TaxService
	explanation *service.ExplanationService
}

func NewTaxHandler(service *service.TaxService, explanation *service.ExplanationService) *TaxHandler {
	return &TaxHandler{service: service, explanation: explanation}
}

func (h *TaxHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	record, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, record)
}

func (h *TaxHandler) EffectiveRate(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	rate, err := h.service.EffectiveRate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (h *TaxHandler) MarginalRate(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	rate, err := h.service.MarginalRate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, rate)
}

func (h *TaxHandler) Explain(w http.ResponseWriter, r *http.Request) {
	var input domain.TaxCalculationInput
	if !decodeJSON(w, r, &input) {
		return
	}

	record, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, domain.TaxExplanation{
		Result:      record.Result,
		Explanation: h.explanation.Explain(r.Context(), input, record.Result),
	})
}

func (h *TaxHandler) Years(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, h.service.Years())
}

func (h *TaxHandler) History(w http.ResponseWriter, r *http.Request) {
	limit := 0
	if raw := r.URL.Query().Get("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			writeError(w, http.StatusBadRequest, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := h.service.History(r.Context(), limit)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, records)
}
