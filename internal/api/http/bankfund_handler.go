package http

import (
	"net/http"

	"bankledger-backend/internal/service"
	"bankledger-backend/internal/utils"
)

type BankFundHandler struct {
	fund service.BankFundService
}

func NewBankFundHandler(fund service.BankFundService) *BankFundHandler {
	return &BankFundHandler{fund: fund}
}

func (h *BankFundHandler) GetReserve(w http.ResponseWriter, r *http.Request) {
	fund, err := h.fund.GetReserve(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"total_balance": utils.FormatAmount(fund.TotalBalanceCents),
		"last_updated":  fund.LastUpdated,
	})
}

func (h *BankFundHandler) ListMovements(w http.ResponseWriter, r *http.Request) {
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	txns, total, err := h.fund.ListMovements(r.Context(), page, pageSize)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transactions": txns,
		"total":        total,
		"page":         page,
		"page_size":    pageSize,
	})
}
