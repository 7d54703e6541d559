package service

import (
	"context"

	"bankledger-backend/internal/domain"
)

type AuthService interface {
	Signup(ctx context.Context, username, email, password, fullName string, accountType domain.AccountType) (*domain.User, *domain.Account, error)
	Login(ctx context.Context, username, password string) (string, *domain.User, error) // returns signed token
}

type AccountService interface {
	GetAccount(ctx context.Context, username, accountNumber string) (*domain.Account, error)
	ListAccounts(ctx context.Context, username string) ([]domain.Account, error)
	ListTransactions(ctx context.Context, username, accountNumber string, page, pageSize int32) ([]domain.Transaction, int32, error)
}

type TransferService interface {
	Transfer(ctx context.Context, username, fromAccount, toAccount string, amountCents int64, remarks string) (*domain.Transaction, error)
}

type LoanService interface {
	Apply(ctx context.Context, username, accountNumber, loanType string, amountCents int64, tenureMonths int) (*domain.LoanApplication, error)
	Approve(ctx context.Context, loanID int64) (*domain.LoanApplication, error)
	Reject(ctx context.Context, loanID int64) (*domain.LoanApplication, error)
	ListByUser(ctx context.Context, username string) ([]domain.LoanApplication, error)
	ListPending(ctx context.Context) ([]domain.LoanApplication, error)
}

type BillService interface {
	CreateBill(ctx context.Context, bill *domain.Bill) error
	ListBills(ctx context.Context, username, status string) ([]domain.Bill, error)
	PayBill(ctx context.Context, username string, billID int64) (*domain.Bill, error)
	PayBillWithCard(ctx context.Context, username string, billID int64, cardNumber, pin string) (*domain.Bill, error)
	GenerateCardBills(ctx context.Context) (int, error)
	GenerateLoanInterestBills(ctx context.Context) (int, error)
}

type CardService interface {
	RequestCard(ctx context.Context, username string, cardType domain.CardType, linkedAccountNumber, pin string) (*domain.Card, error)
	Approve(ctx context.Context, cardID int64) error
	Reject(ctx context.Context, cardID int64) error
	Block(ctx context.Context, username, cardNumber string) error
	ListByUser(ctx context.Context, username string) ([]domain.Card, error)
}

type BankFundService interface {
	GetReserve(ctx context.Context) (*domain.BankFund, error)
	ListMovements(ctx context.Context, page, pageSize int32) ([]domain.BankTransaction, int32, error)
}
