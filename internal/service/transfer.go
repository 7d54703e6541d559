package service

import (
	"context"
	"database/sql"
	"errors"
	"log/slog"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
	"bankledger-backend/internal/repository"
)

type transferService struct {
	db          *sql.DB
	accountRepo repository.AccountRepository
	txnRepo     repository.TransactionRepository
	log         *slog.Logger
}

func NewTransferService(db *sql.DB, accountRepo repository.AccountRepository, txnRepo repository.TransactionRepository) TransferService {
	return &transferService{
		db:          db,
		accountRepo: accountRepo,
		txnRepo:     txnRepo,
		log:         logger.WithService("transfer"),
	}
}

// Transfer moves amountCents between two accounts atomically. Validation
// failures before any lock return immediately with nothing persisted; a
// balance or limit failure discovered after the rows are locked rolls the
// transfer back and records a FAILED audit entry on a fresh connection so it
// survives the rollback.
func (s *transferService) Transfer(ctx context.Context, username, fromAccount, toAccount string, amountCents int64, remarks string) (*domain.Transaction, error) {
	if !domain.AccountNumberPattern.MatchString(fromAccount) {
		return nil, domain.NewValidationError("invalid account number format: %s", fromAccount)
	}
	if !domain.AccountNumberPattern.MatchString(toAccount) {
		return nil, domain.NewValidationError("invalid account number format: %s", toAccount)
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("amount must be positive")
	}
	if fromAccount == toAccount {
		return nil, domain.NewValidationError("cannot transfer to the same account")
	}

	from, err := s.accountRepo.GetByNumber(ctx, fromAccount)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", fromAccount)
		}
		return nil, domain.NewInternalError("transfer.read_from", err)
	}
	if from.Username != username {
		return nil, domain.NewUnauthorizedError("account does not belong to caller")
	}
	if _, err := s.accountRepo.GetByNumber(ctx, toAccount); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", toAccount)
		}
		return nil, domain.NewInternalError("transfer.read_to", err)
	}

	// A limit breach visible on the plain read is an input error: reject
	// before anything is locked and persist nothing.
	if amountCents > from.TransactionLimitCents {
		return nil, domain.NewValidationError(
			"amount exceeds transaction limit of %d cents", from.TransactionLimitCents)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("transfer.begin", err)
	}
	defer tx.Rollback()

	// Canonical lock order: ascending account number, regardless of
	// direction, so A->B and B->A cannot deadlock.
	first, second := fromAccount, toAccount
	if second < first {
		first, second = second, first
	}
	locked := make(map[string]*domain.Account, 2)
	for _, number := range []string{first, second} {
		acct, err := s.accountRepo.LockForUpdate(ctx, tx, number)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.NewNotFoundError("account", number)
			}
			return nil, domain.NewInternalError("transfer.lock", err)
		}
		locked[number] = acct
	}
	sender, receiver := locked[fromAccount], locked[toAccount]

	// Re-validate under lock; the plain read may be stale.
	if amountCents > sender.TransactionLimitCents {
		limitErr := &domain.LimitExceededError{
			Limit:          "transaction",
			LimitCents:     sender.TransactionLimitCents,
			RequestedCents: amountCents,
		}
		s.recordFailed(ctx, tx, sender, receiver, amountCents, remarks)
		return nil, limitErr
	}
	if sender.BalanceCents < amountCents {
		fundsErr := &domain.InsufficientFundsError{
			AvailableCents: sender.BalanceCents,
			RequestedCents: amountCents,
		}
		s.recordFailed(ctx, tx, sender, receiver, amountCents, remarks)
		return nil, fundsErr
	}

	sender.BalanceCents -= amountCents
	receiver.BalanceCents += amountCents
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, sender); err != nil {
		return nil, domain.NewInternalError("transfer.debit", err)
	}
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, receiver); err != nil {
		return nil, domain.NewInternalError("transfer.credit", err)
	}

	fromAfter, toAfter := sender.BalanceCents, receiver.BalanceCents
	txn := &domain.Transaction{
		TransactionID:         newTransactionID(),
		FromAccountNumber:     fromAccount,
		ToAccountNumber:       toAccount,
		AmountCents:           amountCents,
		Remarks:               remarks,
		Status:                domain.TransactionStatusCompleted,
		FromBalanceAfterCents: &fromAfter,
		ToBalanceAfterCents:   &toAfter,
	}
	if err := s.txnRepo.CreateTx(ctx, tx, txn); err != nil {
		return nil, domain.NewInternalError("transfer.record", err)
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError("transfer.commit", err)
	}

	s.log.Info("transfer completed", "transaction_id", txn.TransactionID,
		"from", fromAccount, "to", toAccount, "amount_cents", amountCents)
	return txn, nil
}

// recordFailed rolls the transfer transaction back and writes the FAILED
// audit entry on the pool connection, outside the dead transaction. The
// entry captures the pre-mutation balances of both locked rows.
func (s *transferService) recordFailed(ctx context.Context, tx *sql.Tx, sender, receiver *domain.Account, amountCents int64, remarks string) {
	_ = tx.Rollback()
	fromBalance, toBalance := sender.BalanceCents, receiver.BalanceCents
	entry := &domain.Transaction{
		TransactionID:         newTransactionID(),
		FromAccountNumber:     sender.AccountNumber,
		ToAccountNumber:       receiver.AccountNumber,
		AmountCents:           amountCents,
		Remarks:               remarks,
		Status:                domain.TransactionStatusFailed,
		FromBalanceAfterCents: &fromBalance,
		ToBalanceAfterCents:   &toBalance,
	}
	if err := s.txnRepo.Create(ctx, entry); err != nil {
		s.log.Error("failed to record FAILED transfer entry", "error", err,
			"from", sender.AccountNumber, "to", receiver.AccountNumber)
	}
}
