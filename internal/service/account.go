package service

import (
	"context"
	"database/sql"
	"errors"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type accountService struct {
	accountRepo repository.AccountRepository
	txnRepo     repository.TransactionRepository
}

func NewAccountService(accountRepo repository.AccountRepository, txnRepo repository.TransactionRepository) AccountService {
	return &accountService{accountRepo: accountRepo, txnRepo: txnRepo}
}

func (s *accountService) GetAccount(ctx context.Context, username, accountNumber string) (*domain.Account, error) {
	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", accountNumber)
		}
		return nil, domain.NewInternalError("account.get", err)
	}
	if account.Username != username {
		return nil, domain.NewUnauthorizedError("account does not belong to caller")
	}
	return account, nil
}

func (s *accountService) ListAccounts(ctx context.Context, username string) ([]domain.Account, error) {
	accounts, err := s.accountRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("account.list", err)
	}
	return accounts, nil
}

func (s *accountService) ListTransactions(ctx context.Context, username, accountNumber string, page, pageSize int32) ([]domain.Transaction, int32, error) {
	if _, err := s.GetAccount(ctx, username, accountNumber); err != nil {
		return nil, 0, err
	}
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	txns, total, err := s.txnRepo.ListByAccount(ctx, accountNumber, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, domain.NewInternalError("account.transactions", err)
	}
	return txns, total, nil
}
