package http

import (
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/service"
	"bankledger-backend/internal/utils"
)

type BillHandler struct {
	bills    service.BillService
	validate *validator.Validate
}

func NewBillHandler(bills service.BillService) *BillHandler {
	return &BillHandler{bills: bills, validate: validator.New()}
}

type createBillRequest struct {
	AccountNumber string  `json:"account_number" validate:"required"`
	BillType      string  `json:"bill_type" validate:"omitempty,oneof=UTILITY EMI CREDIT_CARD LOAN_INTEREST"`
	Amount        float64 `json:"amount" validate:"required,gt=0"`
	DueDate       string  `json:"due_date" validate:"omitempty,datetime=2006-01-02"`
}

func (h *BillHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req createBillRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	bill := &domain.Bill{
		Username:      usernameFrom(r),
		AccountNumber: req.AccountNumber,
		BillType:      domain.BillType(req.BillType),
		AmountCents:   utils.Cents(req.Amount),
	}
	if req.DueDate != "" {
		due, _ := time.Parse("2006-01-02", req.DueDate)
		bill.DueDate = due
	}
	if err := h.bills.CreateBill(r.Context(), bill); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, bill)
}

func (h *BillHandler) List(w http.ResponseWriter, r *http.Request) {
	bills, err := h.bills.ListBills(r.Context(), usernameFrom(r), r.URL.Query().Get("status"))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"bills": bills})
}

func (h *BillHandler) Pay(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	bill, err := h.bills.PayBill(r.Context(), usernameFrom(r), id)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}

type payWithCardRequest struct {
	CardNumber string `json:"card_number" validate:"required,len=16,numeric"`
	PIN        string `json:"pin" validate:"required,len=4,numeric"`
}

func (h *BillHandler) PayWithCard(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	var req payWithCardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	bill, err := h.bills.PayBillWithCard(r.Context(), usernameFrom(r), id, req.CardNumber, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, bill)
}
