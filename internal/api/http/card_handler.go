package http

import (
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/service"
)

type CardHandler struct {
	cards    service.CardService
	validate *validator.Validate
}

func NewCardHandler(cards service.CardService) *CardHandler {
	return &CardHandler{cards: cards, validate: validator.New()}
}

type cardRequest struct {
	CardType            string `json:"card_type" validate:"required,oneof=PLATINUM_DEBIT SIGNATURE_CREDIT NORMAL_CREDIT"`
	LinkedAccountNumber string `json:"linked_account_number" validate:"required"`
	PIN                 string `json:"pin" validate:"required,len=4,numeric"`
}

func (h *CardHandler) Request(w http.ResponseWriter, r *http.Request) {
	var req cardRequest
	if !decodeJSON(w, r, &req) {
		return
	}
	if err := h.validate.Struct(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorResponse{Error: err.Error(), Code: "VALIDATION_ERROR"})
		return
	}

	card, err := h.cards.RequestCard(r.Context(), usernameFrom(r), domain.CardType(req.CardType), req.LinkedAccountNumber, req.PIN)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusCreated, card)
}

func (h *CardHandler) List(w http.ResponseWriter, r *http.Request) {
	cards, err := h.cards.ListByUser(r.Context(), usernameFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"cards": cards})
}

func (h *CardHandler) Approve(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.cards.Approve(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": domain.CardStatusActive})
}

func (h *CardHandler) Reject(w http.ResponseWriter, r *http.Request) {
	id, ok := pathID(w, r)
	if !ok {
		return
	}
	if err := h.cards.Reject(r.Context(), id); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": domain.CardStatusRejected})
}

func (h *CardHandler) Block(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	if err := h.cards.Block(r.Context(), usernameFrom(r), number); err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"status": domain.CardStatusBlocked})
}
