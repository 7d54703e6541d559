package http

import (
	"net/http"

	"github.com/gorilla/mux"

	"bankledger-backend/internal/security"
	"bankledger-backend/internal/service"
)

// Handlers bundles everything the router mounts.
type Handlers struct {
	Auth     *AuthHandler
	Account  *AccountHandler
	Transfer *TransferHandler
	Loan     *LoanHandler
	Bill     *BillHandler
	Card     *CardHandler
	BankFund *BankFundHandler
}

func NewHandlers(
	auth service.AuthService,
	accounts service.AccountService,
	transfers service.TransferService,
	loans service.LoanService,
	bills service.BillService,
	cards service.CardService,
	fund service.BankFundService,
) *Handlers {
	return &Handlers{
		Auth:     NewAuthHandler(auth),
		Account:  NewAccountHandler(accounts),
		Transfer: NewTransferHandler(transfers),
		Loan:     NewLoanHandler(loans),
		Bill:     NewBillHandler(bills),
		Card:     NewCardHandler(cards),
		BankFund: NewBankFundHandler(fund),
	}
}

// NewRouter wires all routes. Everything under /api/v1 except signup and
// login requires a valid bearer token.
func NewRouter(h *Handlers, tokens security.TokenManager) *mux.Router {
	router := mux.NewRouter()
	router.Use(LoggingMiddleware)

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}).Methods("GET")

	api := router.PathPrefix("/api/v1").Subrouter()
	api.HandleFunc("/auth/signup", h.Auth.Signup).Methods("POST")
	api.HandleFunc("/auth/login", h.Auth.Login).Methods("POST")

	authed := api.NewRoute().Subrouter()
	authed.Use(AuthMiddleware(tokens))

	authed.HandleFunc("/accounts", h.Account.List).Methods("GET")
	authed.HandleFunc("/accounts/{number}", h.Account.Get).Methods("GET")
	authed.HandleFunc("/accounts/{number}/transactions", h.Account.Transactions).Methods("GET")

	authed.HandleFunc("/transfers", h.Transfer.Transfer).Methods("POST")

	authed.HandleFunc("/loans", h.Loan.Apply).Methods("POST")
	authed.HandleFunc("/loans", h.Loan.List).Methods("GET")
	authed.HandleFunc("/loans/pending", h.Loan.ListPending).Methods("GET")
	authed.HandleFunc("/loans/{id}/approve", h.Loan.Approve).Methods("POST")
	authed.HandleFunc("/loans/{id}/reject", h.Loan.Reject).Methods("POST")

	authed.HandleFunc("/bills", h.Bill.Create).Methods("POST")
	authed.HandleFunc("/bills", h.Bill.List).Methods("GET")
	authed.HandleFunc("/bills/{id}/pay", h.Bill.Pay).Methods("POST")
	authed.HandleFunc("/bills/{id}/pay-with-card", h.Bill.PayWithCard).Methods("POST")

	authed.HandleFunc("/cards", h.Card.Request).Methods("POST")
	authed.HandleFunc("/cards", h.Card.List).Methods("GET")
	authed.HandleFunc("/cards/{id}/approve", h.Card.Approve).Methods("POST")
	authed.HandleFunc("/cards/{id}/reject", h.Card.Reject).Methods("POST")
	authed.HandleFunc("/cards/{number}/block", h.Card.Block).Methods("POST")

	authed.HandleFunc("/bank/reserve", h.BankFund.GetReserve).Methods("GET")
	authed.HandleFunc("/bank/transactions", h.BankFund.ListMovements).Methods("GET")

	return router
}
