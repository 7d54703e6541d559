package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/crypto/bcrypt"

	"bankledger-backend/internal/config"
	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
	"bankledger-backend/internal/repository"
	"bankledger-backend/internal/utils"
)

// Lock acquisition order across all services: bank reserve, then cards, then
// accounts. Bills are locked first since nothing else locks bill rows.

type billService struct {
	db          *sql.DB
	billRepo    repository.BillRepository
	accountRepo repository.AccountRepository
	cardRepo    repository.CardRepository
	txnRepo     repository.TransactionRepository
	loanRepo    repository.LoanRepository
	fundRepo    repository.BankFundRepository
	cfg         config.BankConfig
	log         *slog.Logger
}

func NewBillService(
	db *sql.DB,
	billRepo repository.BillRepository,
	accountRepo repository.AccountRepository,
	cardRepo repository.CardRepository,
	txnRepo repository.TransactionRepository,
	loanRepo repository.LoanRepository,
	fundRepo repository.BankFundRepository,
	cfg config.BankConfig,
) BillService {
	return &billService{
		db:          db,
		billRepo:    billRepo,
		accountRepo: accountRepo,
		cardRepo:    cardRepo,
		txnRepo:     txnRepo,
		loanRepo:    loanRepo,
		fundRepo:    fundRepo,
		cfg:         cfg,
		log:         logger.WithService("bill"),
	}
}

func (s *billService) CreateBill(ctx context.Context, bill *domain.Bill) error {
	if bill.AmountCents <= 0 {
		return domain.NewValidationError("bill amount must be positive")
	}
	if bill.BillType == "" {
		bill.BillType = domain.BillTypeUtility
	}
	account, err := s.accountRepo.GetByNumber(ctx, bill.AccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("account", bill.AccountNumber)
		}
		return domain.NewInternalError("bill.create.read_account", err)
	}
	if account.Username != bill.Username {
		return domain.NewUnauthorizedError("account does not belong to caller")
	}
	bill.Status = domain.BillStatusUnpaid
	if bill.DueDate.IsZero() {
		bill.DueDate = time.Now().AddDate(0, 0, s.cfg.CardBillDueDays)
	}
	if err := s.billRepo.Create(ctx, bill); err != nil {
		return domain.NewInternalError("bill.create", err)
	}
	return nil
}

func (s *billService) ListBills(ctx context.Context, username, status string) ([]domain.Bill, error) {
	switch status {
	case "", string(domain.BillStatusUnpaid), string(domain.BillStatusPaid):
	default:
		return nil, domain.NewValidationError("unknown bill status: %s", status)
	}
	bills, err := s.billRepo.ListByUsername(ctx, username, status)
	if err != nil {
		return nil, domain.NewInternalError("bill.list", err)
	}

	// A loan's full EMI schedule exists up front; suppress installments that
	// are not due within the upcoming window so the list stays actionable.
	horizon := time.Now().AddDate(0, 0, s.cfg.EMIUpcomingWindowDays)
	visible := bills[:0]
	for _, bill := range bills {
		if bill.BillType == domain.BillTypeEMI && bill.Status == domain.BillStatusUnpaid && bill.DueDate.After(horizon) {
			continue
		}
		visible = append(visible, bill)
	}
	return visible, nil
}

// PayBill settles a bill from the account it is attached to. EMI and card
// bills feed the paid amount back into the bank reserve; loan-linked bills
// trigger the completion check afterwards, inside the same transaction.
func (s *billService) PayBill(ctx context.Context, username string, billID int64) (*domain.Bill, error) {
	if _, err := s.readOwnedUnpaid(ctx, username, billID); err != nil {
		return nil, err
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("bill.pay.begin", err)
	}
	defer tx.Rollback()

	bill, err := s.billRepo.LockForUpdate(ctx, tx, billID)
	if err != nil {
		return nil, domain.NewInternalError("bill.pay.lock_bill", err)
	}
	if bill.Status != domain.BillStatusUnpaid {
		return nil, domain.NewValidationError("bill is already paid")
	}

	if bill.CreditsBankReserve() {
		if err := s.creditReserveTx(ctx, tx, bill.AmountCents,
			fmt.Sprintf("%s bill #%d payment from %s", bill.BillType, bill.ID, bill.AccountNumber)); err != nil {
			return nil, err
		}
	}

	// Paying off a card statement releases the spent credit line.
	if bill.BillType == domain.BillTypeCreditCard && bill.CardID != nil {
		if err := s.releaseCardCreditTx(ctx, tx, *bill.CardID, bill.AmountCents); err != nil {
			return nil, err
		}
	}

	account, err := s.accountRepo.LockForUpdate(ctx, tx, bill.AccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", bill.AccountNumber)
		}
		return nil, domain.NewInternalError("bill.pay.lock_account", err)
	}
	if account.BalanceCents < bill.AmountCents {
		return nil, &domain.InsufficientFundsError{
			AvailableCents: account.BalanceCents,
			RequestedCents: bill.AmountCents,
		}
	}
	account.BalanceCents -= bill.AmountCents
	if err := s.accountRepo.UpdateBalanceTx(ctx, tx, account); err != nil {
		return nil, domain.NewInternalError("bill.pay.debit", err)
	}

	if err := s.settleTx(ctx, tx, bill, account.AccountNumber, &account.BalanceCents); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError("bill.pay.commit", err)
	}

	s.log.Info("bill paid", "bill_id", bill.ID, "type", bill.BillType, "amount_cents", bill.AmountCents)
	return s.billRepo.GetByID(ctx, billID)
}

// PayBillWithCard settles a bill on a card. Credit cards draw on the credit
// line; debit-class cards fall through to the linked account. Either way the
// paid amount is credited to the bank reserve.
func (s *billService) PayBillWithCard(ctx context.Context, username string, billID int64, cardNumber, pin string) (*domain.Bill, error) {
	if _, err := s.readOwnedUnpaid(ctx, username, billID); err != nil {
		return nil, err
	}

	card, err := s.cardRepo.GetByNumber(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("card", cardNumber)
		}
		return nil, domain.NewInternalError("bill.card_pay.read_card", err)
	}
	if card.Username != username {
		return nil, domain.NewUnauthorizedError("card does not belong to caller")
	}
	if bcrypt.CompareHashAndPassword([]byte(card.PINHash), []byte(pin)) != nil {
		return nil, domain.NewUnauthorizedError("incorrect PIN")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, domain.NewInternalError("bill.card_pay.begin", err)
	}
	defer tx.Rollback()

	bill, err := s.billRepo.LockForUpdate(ctx, tx, billID)
	if err != nil {
		return nil, domain.NewInternalError("bill.card_pay.lock_bill", err)
	}
	if bill.Status != domain.BillStatusUnpaid {
		return nil, domain.NewValidationError("bill is already paid")
	}
	if bill.CardID != nil && *bill.CardID == card.ID {
		return nil, domain.NewValidationError("cannot pay a card bill with the same card")
	}

	if err := s.creditReserveTx(ctx, tx, bill.AmountCents,
		fmt.Sprintf("%s bill #%d card payment via %s", bill.BillType, bill.ID, card.CardNumber)); err != nil {
		return nil, err
	}
	if bill.BillType == domain.BillTypeCreditCard && bill.CardID != nil {
		if err := s.releaseCardCreditTx(ctx, tx, *bill.CardID, bill.AmountCents); err != nil {
			return nil, err
		}
	}

	card, err = s.cardRepo.LockForUpdate(ctx, tx, cardNumber)
	if err != nil {
		return nil, domain.NewInternalError("bill.card_pay.lock_card", err)
	}

	now := time.Now()
	var account *domain.Account
	var fromBalanceAfter *int64
	if card.IsCredit() {
		if err := ValidateCardSpend(card, bill.AmountCents, 0, now); err != nil {
			return nil, err
		}
	} else {
		account, err = s.accountRepo.LockForUpdate(ctx, tx, card.LinkedAccountNumber)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return nil, domain.NewNotFoundError("account", card.LinkedAccountNumber)
			}
			return nil, domain.NewInternalError("bill.card_pay.lock_account", err)
		}
		if err := ValidateCardSpend(card, bill.AmountCents, account.BalanceCents, now); err != nil {
			return nil, err
		}
		account.BalanceCents -= bill.AmountCents
		if err := s.accountRepo.UpdateBalanceTx(ctx, tx, account); err != nil {
			return nil, domain.NewInternalError("bill.card_pay.debit", err)
		}
		fromBalanceAfter = &account.BalanceCents
	}

	ApplyCardSpend(card, bill.AmountCents, now)
	if err := s.cardRepo.UpdateUsageTx(ctx, tx, card); err != nil {
		return nil, domain.NewInternalError("bill.card_pay.usage", err)
	}

	if err := s.settleTx(ctx, tx, bill, card.LinkedAccountNumber, fromBalanceAfter); err != nil {
		return nil, err
	}
	if err := tx.Commit(); err != nil {
		return nil, domain.NewInternalError("bill.card_pay.commit", err)
	}

	s.log.Info("bill paid with card", "bill_id", bill.ID, "card", card.CardNumber,
		"amount_cents", bill.AmountCents, "credit", card.IsCredit())
	return s.billRepo.GetByID(ctx, billID)
}

// settleTx marks the bill paid, writes the ledger entry against the synthetic
// BILL_PAYMENT destination, and runs the loan-completion check.
func (s *billService) settleTx(ctx context.Context, tx *sql.Tx, bill *domain.Bill, fromAccount string, fromBalanceAfter *int64) error {
	now := time.Now()
	if err := s.billRepo.MarkPaidTx(ctx, tx, bill.ID, now); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewValidationError("bill is already paid")
		}
		return domain.NewInternalError("bill.settle.mark_paid", err)
	}

	if err := s.txnRepo.CreateTx(ctx, tx, &domain.Transaction{
		TransactionID:         newTransactionID(),
		FromAccountNumber:     fromAccount,
		ToAccountNumber:       domain.SinkBillPayment,
		AmountCents:           bill.AmountCents,
		Remarks:               fmt.Sprintf("%s bill #%d", bill.BillType, bill.ID),
		Status:                domain.TransactionStatusCompleted,
		FromBalanceAfterCents: fromBalanceAfter,
	}); err != nil {
		return domain.NewInternalError("bill.settle.ledger", err)
	}

	if bill.LoanID != nil {
		unpaid, err := s.billRepo.CountUnpaidByLoanTx(ctx, tx, *bill.LoanID)
		if err != nil {
			return domain.NewInternalError("bill.settle.loan_check", err)
		}
		if unpaid == 0 {
			if err := s.loanRepo.MarkCompletedTx(ctx, tx, *bill.LoanID); err != nil {
				return domain.NewInternalError("bill.settle.loan_complete", err)
			}
			s.log.Info("loan completed", "loan_id", *bill.LoanID)
		}
	}
	return nil
}

func (s *billService) creditReserveTx(ctx context.Context, tx *sql.Tx, amountCents int64, description string) error {
	fund, err := s.fundRepo.LockForUpdate(ctx, tx, s.cfg.InitialReserveCents)
	if err != nil {
		return domain.NewInternalError("bill.reserve.lock", err)
	}
	fund.TotalBalanceCents += amountCents
	if err := s.fundRepo.UpdateBalanceTx(ctx, tx, fund); err != nil {
		return domain.NewInternalError("bill.reserve.update", err)
	}
	if err := s.fundRepo.CreateTransactionTx(ctx, tx, &domain.BankTransaction{
		Type:              domain.BankTransactionCredit,
		AmountCents:       amountCents,
		Description:       description,
		BalanceAfterCents: fund.TotalBalanceCents,
	}); err != nil {
		return domain.NewInternalError("bill.reserve.entry", err)
	}
	return nil
}

// releaseCardCreditTx returns a paid statement amount to the billed card's
// credit line.
func (s *billService) releaseCardCreditTx(ctx context.Context, tx *sql.Tx, cardID int64, amountCents int64) error {
	card, err := s.cardRepo.LockByID(ctx, tx, cardID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("card", fmt.Sprintf("%d", cardID))
		}
		return domain.NewInternalError("bill.card_release.lock", err)
	}
	card.UsedAmountCents -= amountCents
	if card.UsedAmountCents < 0 {
		card.UsedAmountCents = 0
	}
	if err := s.cardRepo.UpdateUsageTx(ctx, tx, card); err != nil {
		return domain.NewInternalError("bill.card_release.update", err)
	}
	return nil
}

func (s *billService) readOwnedUnpaid(ctx context.Context, username string, billID int64) (*domain.Bill, error) {
	bill, err := s.billRepo.GetByID(ctx, billID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("bill", fmt.Sprintf("%d", billID))
		}
		return nil, domain.NewInternalError("bill.read", err)
	}
	if bill.Username != username {
		return nil, domain.NewUnauthorizedError("bill does not belong to caller")
	}
	if bill.Status != domain.BillStatusUnpaid {
		return nil, domain.NewValidationError("bill is already paid")
	}
	return bill, nil
}

// GenerateCardBills creates or refreshes the monthly statement for every
// active credit card carrying a balance. An existing open statement is
// refreshed in place; a new one is cut only when the previous statement is at
// least a full billing cycle old.
func (s *billService) GenerateCardBills(ctx context.Context) (int, error) {
	cards, err := s.cardRepo.ListActiveCreditWithUsage(ctx)
	if err != nil {
		return 0, domain.NewInternalError("bill.card_cycle.list", err)
	}

	now := time.Now()
	dueDate := now.AddDate(0, 0, s.cfg.CardBillDueDays)
	generated := 0
	for i := range cards {
		card := &cards[i]
		minimumDue := utils.PercentOfCents(card.UsedAmountCents, float64(s.cfg.CardBillMinimumDuePct))

		open, err := s.billRepo.GetOpenBillForCard(ctx, card.ID)
		if err == nil {
			if err := s.billRepo.UpdateAmounts(ctx, open.ID, card.UsedAmountCents, minimumDue, dueDate); err != nil {
				s.log.Error("failed to refresh card bill", "card_id", card.ID, "error", err)
				continue
			}
			generated++
			continue
		}
		if !errors.Is(err, sql.ErrNoRows) {
			s.log.Error("failed to read open card bill", "card_id", card.ID, "error", err)
			continue
		}

		last, err := s.billRepo.LastCardBillTime(ctx, card.ID)
		if err != nil {
			s.log.Error("failed to read card billing history", "card_id", card.ID, "error", err)
			continue
		}
		if last != nil && now.Sub(*last) < time.Duration(s.cfg.CardBillCycleDays)*24*time.Hour {
			continue
		}

		due := minimumDue
		bill := &domain.Bill{
			Username:        card.Username,
			AccountNumber:   card.LinkedAccountNumber,
			BillType:        domain.BillTypeCreditCard,
			AmountCents:     card.UsedAmountCents,
			MinimumDueCents: &due,
			DueDate:         dueDate,
			Status:          domain.BillStatusUnpaid,
			CardID:          &card.ID,
		}
		if err := s.billRepo.Create(ctx, bill); err != nil {
			s.log.Error("failed to create card bill", "card_id", card.ID, "error", err)
			continue
		}
		generated++
	}
	s.log.Info("card billing cycle done", "cards", len(cards), "bills", generated)
	return generated, nil
}

// GenerateLoanInterestBills cuts a simple-interest bill for every approved
// loan whose last interest bill is older than the configured period.
func (s *billService) GenerateLoanInterestBills(ctx context.Context) (int, error) {
	now := time.Now()
	cutoff := now.AddDate(0, 0, -s.cfg.LoanInterestPeriodDays)
	loans, err := s.loanRepo.ListDueForInterestBilling(ctx, cutoff)
	if err != nil {
		return 0, domain.NewInternalError("bill.interest.list", err)
	}

	generated := 0
	for i := range loans {
		loan := &loans[i]
		interest := utils.ThirtyDayInterestCents(loan.LoanAmountCents, loan.InterestRatePct)
		if interest == 0 {
			continue
		}
		bill := &domain.Bill{
			Username:      loan.Username,
			AccountNumber: loan.AccountNumber,
			BillType:      domain.BillTypeLoanInterest,
			AmountCents:   interest,
			DueDate:       now.AddDate(0, 0, s.cfg.LoanInterestDueDays),
			Status:        domain.BillStatusUnpaid,
			LoanID:        &loan.ID,
		}
		if err := s.billRepo.Create(ctx, bill); err != nil {
			s.log.Error("failed to create interest bill", "loan_id", loan.ID, "error", err)
			continue
		}
		if err := s.loanRepo.SetLastBilledAt(ctx, loan.ID, now); err != nil {
			s.log.Error("failed to stamp interest billing", "loan_id", loan.ID, "error", err)
		}
		generated++
	}
	s.log.Info("loan interest billing done", "loans", len(loans), "bills", generated)
	return generated, nil
}
