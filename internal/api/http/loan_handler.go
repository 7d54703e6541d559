package http

import (
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"bankledger-backend/internal/service"
	"bankledger-backend/internal/utils"
)

type LoanHandler struct {
	loans    service.LoanService
	validate *validator.Validate
}

func NewLoanHandler(loans service.LoanService) *LoanHandler {
	return &LoanHandler{loans: loans, validate: validator.New()}
}

type loanApplicationRequest struct {
	AccountNumber string  `json:"account_number" validate:"required"`
	LoanType      string  `json:"loan_type" validate:"required"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	TenureMonths  int     `json:"tenure_months" validate:"required,gt=0,lte=360"`
}

func (h *LoanHandler) Apply(w http.ResponseWriter, r *http.Request) {
	var req loanApplicationRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	loan, err := h.loans.Apply(r.Context(), usernameFrom(r), req.AccountNumber, req.LoanType, utils.Cents(req.Amount), req.TenureMonths)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, loan)
}

func (h *LoanHandler) List(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.ListByUser(r.Context(), usernameFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *LoanHandler) ListPending(w http.ResponseWriter, r *http.Request) {
	loans, err := h.loans.ListPending(r.Context())
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"loans": loans})
}

func (h *LoanHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.loans.Approve(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func (h *LoanHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	loan, err := h.loans.Reject(r.Context(), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, loan)
}

func pathID(w http.ResponseWriter, r *http.Request) (int64, bool) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 64)
	if err != nil || id < 1 {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: "invalid id", Code: "VALIDATION_ERROR"})
		return 0, false
	}
	return id, true
}
