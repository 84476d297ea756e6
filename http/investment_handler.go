package http

import (
	"net/http"

	"tax-agent/domain"
	"tax-agent/service"
)

type InvestmentHandler struct {
	service *service.InvestmentService
}

func NewInvestmentHandler(service *service.InvestmentService) *InvestmentHandler {
	return &InvestmentHandler{service: service}
}

func (h *InvestmentHandler) Calculate(w http.ResponseWriter, r *http.Request) {
	var input domain.InvestmentInput
	if !decodeJSON(w, r, &input) {
		return
	}

	result, err := h.service.Calculate(r.Context(), input)
	if err != nil {
		writeServiceError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, result)
}
