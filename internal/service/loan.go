package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"bankledger-backend/internal/config"
	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
	"bankledger-backend/internal/repository"
	"bankledger-backend/internal/utils"
)

// loanRates is the fixed annual rate table keyed by loan type.
var loanRates = map[string]float64{
	"PERSONAL":  8.5,
	"HOME":      7.2,
	"CAR":       8.0,
	"VEHICLE":   8.0,
	"EDUCATION": 6.9,
	"BUSINESS":  9.5,
}

type loanService struct {
	db          *sql.DB
	loanRepo    repository.LoanRepository
	accountRepo repository.AccountRepository
	billRepo    repository.BillRepository
	txnRepo     repository.TransactionRepository
	fundRepo    repository.BankFundRepository
	cfg         config.BankConfig
	log         *slog.Logger
}

func NewLoanService(
	db *sql.DB,
	loanRepo repository.LoanRepository,
	accountRepo repository.AccountRepository,
	billRepo repository.BillRepository,
	txnRepo repository.TransactionRepository,
	fundRepo repository.BankFundRepository,
	cfg config.BankConfig,
) LoanService {
	return &loanService{
		db:          db,
		loanRepo:    loanRepo,
		accountRepo: accountRepo,
		billRepo:    billRepo,
		txnRepo:     txnRepo,
		fundRepo:    fundRepo,
		cfg:         cfg,
		log:         logger.WithService("loan"),
	}
}

func (s *loanService) Apply(ctx context.Context, username, accountNumber, loanType string, amountCents int64, tenureMonths int) (*domain.LoanApplication, error) {
	rate, ok := loanRates[loanType]
	if !ok {
		return nil, domain.NewValidationError("unknown loan type: %s", loanType)
	}
	if amountCents <= 0 {
		return nil, domain.NewValidationError("loan amount must be positive")
	}
	if tenureMonths <= 0 {
		return nil, domain.NewValidationError("tenure must be positive")
	}

	account, err := s.accountRepo.GetByNumber(ctx, accountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", accountNumber)
		}
		return nil, domain.NewInternalError("loan.apply.read_account", err)
	}
	if account.Username != username {
		return nil, domain.NewUnauthorizedError("account does not belong to caller")
	}

	loan := &domain.LoanApplication{
		Username:        username,
		AccountNumber:   accountNumber,
		LoanType:        loanType,
		LoanAmountCents: amountCents,
		TenureMonths:    tenureMonths,
		InterestRatePct: rate,
		Status:          domain.LoanStatusPending,
	}
	if err := s.loanRepo.Create(ctx, loan); err != nil {
		return nil, domain.NewInternalError("loan.apply.create", err)
	}
	s.log.Info("loan application created", "loan_id", loan.ID, "type", loanType,
		"amount_cents", amountCents, "rate_pct", rate)
	return loan, nil
}

// Approve disburses the principal from the bank reserve into the borrower's
// account, flips the loan to APPROVED, and generates one EMI bill per tenure
// month, all in one transaction.
func (s *loanService) Approve(ctx context.Context, loanID int64) (*domain.LoanApplication, error) {
	loan, err := s.getPending(ctx, loanID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("loan.approve.begin", err)
	}
	defer tx.Rollback()

	fund, err := s.fundRepo.LockForUpdate(ctx, tx, s.cfg.InitialReserveCents)
	if err != nil {
		return nil, domain.NewInternalError("loan.approve.lock_reserve", err)
	}
	if fund.TotalBalanceCents < loan.LoanAmountCents {
		return nil, &domain.InsufficientFundsError{
			AvailableCents: fund.TotalBalanceCents,
			RequestedCents: loan.LoanAmountCents,
		}
	}

	account, err := s.accountRepo.LockForUpdate(ctx, tx, loan.AccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", loan.AccountNumber)
		}
		return nil, domain.NewInternalError("loan.approve.lock_account", err)
	}

	fund.TotalBalanceCents -= loan.LoanAmountCents
	if err := s.fundRepo.UpdateBalanceTx(ctx, tx, fund); err != nil {
		return nil, domain.NewInternalError("loan.approve.debit_reserve", err)
	}
	if err := s.fundRepo.CreateTransactionTx(ctx, tx, &domain.BankTransaction{
		Type:              domain.BankTransactionDebit,
		AmountCents:       loan.LoanAmountCents,
		Description:       fmt.Sprintf("Loan disbursal for loan #%d to %s", loan.ID, loan.AccountNumber),
		BalanceAfterCents: fund.TotalBalanceCents,
	}); err != nil {
		return nil, domain.NewInternalError("loan.approve.reserve_entry", err)
	}

	account.BalanceCents += loan.LoanAmountCents
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, account); err != nil {
		return nil, domain.NewInternalError("loan.approve.credit", err)
	}

	toAfter := account.BalanceCents
	if err := s.txnRepo.CreateTx(ctx, tx, &domain.Transaction{
		TransactionID:       newTransactionID(),
		FromAccountNumber:   domain.SourceLoanDisbursal,
		ToAccountNumber:     loan.AccountNumber,
		AmountCents:         loan.LoanAmountCents,
		Remarks:             fmt.Sprintf("Disbursal of %s loan #%d", loan.LoanType, loan.ID),
		Status:              domain.TransactionStatusCompleted,
		ToBalanceAfterCents: &toAfter,
	}); err != nil {
		return nil, domain.NewInternalError("loan.approve.ledger", err)
	}

	if err := s.loanRepo.UpdateStatusTx(ctx, tx, loan.ID, domain.LoanStatusApproved, true); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewValidationError("loan is already decided")
		}
		return nil, domain.NewInternalError("loan.approve.status", err)
	}

	emi := utils.MonthlyEMICents(loan.LoanAmountCents, loan.InterestRatePct, loan.TenureMonths)
	now := time.Now()
	for month := 1; month <= loan.TenureMonths; month++ {
		bill := &domain.Bill{
			Username:      loan.Username,
			AccountNumber: loan.AccountNumber,
			BillType:      domain.BillTypeEMI,
			AmountCents:   emi,
			DueDate:       now.AddDate(0, month, 0),
			Status:        domain.BillStatusUnpaid,
			LoanID:        &loan.ID,
		}
		if err := s.billRepo.CreateTx(ctx, tx, bill); err != nil {
			return nil, domain.NewInternalError("loan.approve.emi_bill", err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError("loan.approve.commit", err)
	}

	loan.Status = domain.LoanStatusApproved
	loan.BalanceCredited = true
	s.log.Info("loan approved", "loan_id", loan.ID, "emi_cents", emi, "tenure_months", loan.TenureMonths)
	return loan, nil
}

func (s *loanService) Reject(ctx context.Context, loanID int64) (*domain.LoanApplication, error) {
	loan, err := s.getPending(ctx, loanID)
	if err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("loan.reject.begin", err)
	}
	defer tx.Rollback()

	if err := s.loanRepo.UpdateStatusTx(ctx, tx, loan.ID, domain.LoanStatusRejected, false); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewValidationError("loan is already decided")
		}
		return nil, domain.NewInternalError("loan.reject.status", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError("loan.reject.commit", err)
	}

	loan.Status = domain.LoanStatusRejected
	s.log.Info("loan rejected", "loan_id", loan.ID)
	return loan, nil
}

func (s *loanService) getPending(ctx context.Context, loanID int64) (*domain.LoanApplication, error) {
	loan, err := s.loanRepo.GetByID(ctx, loanID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("loan", fmt.Sprintf("%d", loanID))
		}
		return nil, domain.NewInternalError("loan.read", err)
	}
	if loan.Decided() {
		return nil, domain.NewValidationError("loan %d is already %s", loanID, loan.Status)
	}
	return loan, nil
}

func (s *loanService) ListByUser(ctx context.Context, username string) ([]domain.LoanApplication, error) {
	loans, err := s.loanRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("loan.list", err)
	}
	return loans, nil
}

func (s *loanService) ListPending(ctx context.Context) ([]domain.LoanApplication, error) {
	loans, err := s.loanRepo.ListByStatus(ctx, domain.LoanStatusPending)
	if err != nil {
		return nil, domain.NewInternalError("loan.list_pending", err)
	}
	return loans, nil
}
