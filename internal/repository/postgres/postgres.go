package postgres

import (
	"database/sql"

	"bankledger-backend/internal/repository"

	_ "github.com/lib/pq"
)

type Store struct {
	db *sql.DB
	repository.UserRepository
	repository.AccountRepository
	repository.TransactionRepository
	repository.BillRepository
	repository.LoanRepository
	repository.CardRepository
	repository.BankFundRepository
}

func NewStore(db *sql.DB) *Store {
	return &Store{
		db:                    db,
		UserRepository:        NewUserRepository(db),
		AccountRepository:     NewAccountRepository(db),
		TransactionRepository: NewTransactionRepository(db),
		BillRepository:        NewBillRepository(db),
		LoanRepository:        NewLoanRepository(db),
		CardRepository:        NewCardRepository(db),
		BankFundRepository:    NewBankFundRepository(db),
	}
}
