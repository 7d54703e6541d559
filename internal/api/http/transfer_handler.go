package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"

	"bankledger-backend/internal/service"
	"bankledger-backend/internal/utils"
)

type TransferHandler struct {
	transfer service.TransferService
	validate *validator.Validate
}

func NewTransferHandler(transfer service.TransferService) *TransferHandler {
	return &TransferHandler{transfer: transfer, validate: validator.New()}
}

type transferRequest struct {
	FromAccount string  `json:"from_account" validate:"required"`
	ToAccount   string  `json:"to_account" validate:"required"`
	Amount      float64 `json:"amount" validate:"required,gt=0"`
	Remarks     string  `json:"remarks" validate:"max=255"`
}

func (h *TransferHandler) Transfer(w http.ResponseWriter, r *http.Request) {
	var req transferRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	txn, err := h.transfer.Transfer(r.Context(), usernameFrom(r), req.FromAccount, req.ToAccount, utils.Cents(req.Amount), req.Remarks)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"transaction_id": txn.TransactionID,
		"status":         txn.Status,
		"amount":         utils.FormatAmount(txn.AmountCents),
		"from_balance":   formatOptionalAmount(txn.FromBalanceAfterCents),
		"to_balance":     formatOptionalAmount(txn.ToBalanceAfterCents),
		"timestamp":      txn.CreatedAt,
	})
}

func formatOptionalAmount(cents *int64) *string {
	if cents == nil {
		return nil
	}
	s := utils.FormatAmount(*cents)
	return &s
}
