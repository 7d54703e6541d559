package http

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"bankledger-backend/internal/service"
)

type AccountHandler struct {
	accounts service.AccountService
}

func NewAccountHandler(accounts service.AccountService) *AccountHandler {
	return &AccountHandler{accounts: accounts}
}

func (h *AccountHandler) List(w http.ResponseWriter, r *http.Request) {
	accounts, err := h.accounts.ListAccounts(r.Context(), usernameFrom(r))
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"accounts": accounts})
}

func (h *AccountHandler) Get(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	account, err := h.accounts.GetAccount(r.Context(), usernameFrom(r), number)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, account)
}

func (h *AccountHandler) Transactions(w http.ResponseWriter, r *http.Request) {
	number := mux.Vars(r)["number"]
	page := queryInt32(r, "page", 1)
	pageSize := queryInt32(r, "page_size", 20)

	txns, total, err := h.accounts.ListTransactions(r.Context(), usernameFrom(r), number, page, pageSize)
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

func queryInt32(r *http.Request, key string, fallback int32) int32 {
	raw := r.URL.Query().Get(key)
	if raw == "" {
		return fallback
	}
	v, err := strconv.ParseInt(raw, 10, 32)
	if err != nil || v < 1 {
		return fallback
	}
	return int32(v)
}
