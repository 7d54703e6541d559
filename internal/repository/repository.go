package repository

import (
	"context"
	"database/sql"
	"time"

	"bankledger-backend/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByUsername(ctx context.Context, username string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
}

// AccountRepository separates plain pool reads from transactional mutations.
// LockForUpdate and the *Tx methods must run inside a caller-owned
// transaction; callers that lock more than one account must lock in
// ascending account-number order.
type AccountRepository interface {
	Create(ctx context.Context, account *domain.Account) error
	GetByNumber(ctx context.Context, number string) (*domain.Account, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Account, error)
	ExistsByNumber(ctx context.Context, number string) (bool, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Account, error)
	UpdateBalanceTx(ctx context.Context, tx *sql.Tx, account *domain.Account) error
}

// TransactionRepository is append-only; entries are never updated or deleted.
// Create writes on the pool connection so a FAILED audit entry survives the
// rollback of the transfer transaction that produced it.
type TransactionRepository interface {
	Create(ctx context.Context, txn *domain.Transaction) error
	CreateTx(ctx context.Context, tx *sql.Tx, txn *domain.Transaction) error
	GetByTransactionID(ctx context.Context, transactionID string) (*domain.Transaction, error)
	ListByAccount(ctx context.Context, accountNumber string, limit, offset int32) ([]domain.Transaction, int32, error)
}

type BillRepository interface {
	Create(ctx context.Context, bill *domain.Bill) error
	CreateTx(ctx context.Context, tx *sql.Tx, bill *domain.Bill) error
	GetByID(ctx context.Context, id int64) (*domain.Bill, error)
	ListByUsername(ctx context.Context, username string, status string) ([]domain.Bill, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, id int64) (*domain.Bill, error)
	MarkPaidTx(ctx context.Context, tx *sql.Tx, id int64, paidAt time.Time) error
	CountUnpaidByLoanTx(ctx context.Context, tx *sql.Tx, loanID int64) (int64, error)
	GetOpenBillForCard(ctx context.Context, cardID int64) (*domain.Bill, error)
	LastCardBillTime(ctx context.Context, cardID int64) (*time.Time, error)
	UpdateAmounts(ctx context.Context, id int64, amountCents, minimumDueCents int64, dueDate time.Time) error
}

type LoanRepository interface {
	Create(ctx context.Context, loan *domain.LoanApplication) error
	GetByID(ctx context.Context, id int64) (*domain.LoanApplication, error)
	ListByUsername(ctx context.Context, username string) ([]domain.LoanApplication, error)
	ListByStatus(ctx context.Context, status domain.LoanStatus) ([]domain.LoanApplication, error)
	UpdateStatusTx(ctx context.Context, tx *sql.Tx, id int64, status domain.LoanStatus, balanceCredited bool) error
	MarkCompletedTx(ctx context.Context, tx *sql.Tx, id int64) error
	ListDueForInterestBilling(ctx context.Context, cutoff time.Time) ([]domain.LoanApplication, error)
	SetLastBilledAt(ctx context.Context, id int64, billedAt time.Time) error
}

type CardRepository interface {
	Create(ctx context.Context, card *domain.Card) error
	GetByNumber(ctx context.Context, number string) (*domain.Card, error)
	ListByUsername(ctx context.Context, username string) ([]domain.Card, error)
	UpdateStatus(ctx context.Context, id int64, status domain.CardStatus) error
	LockForUpdate(ctx context.Context, tx *sql.Tx, number string) (*domain.Card, error)
	LockByID(ctx context.Context, tx *sql.Tx, id int64) (*domain.Card, error)
	UpdateUsageTx(ctx context.Context, tx *sql.Tx, card *domain.Card) error
	ListActiveCreditWithUsage(ctx context.Context) ([]domain.Card, error)
}

// BankFundRepository manages the singleton reserve row. LockForUpdate
// serializes all reserve movements and lazily seeds the row with
// initialCents on first access.
type BankFundRepository interface {
	Get(ctx context.Context) (*domain.BankFund, error)
	LockForUpdate(ctx context.Context, tx *sql.Tx, initialCents int64) (*domain.BankFund, error)
	UpdateBalanceTx(ctx context.Context, tx *sql.Tx, fund *domain.BankFund) error
	CreateTransactionTx(ctx context.Context, tx *sql.Tx, bankTxn *domain.BankTransaction) error
	ListTransactions(ctx context.Context, limit, offset int32) ([]domain.BankTransaction, int32, error)
}
