package service

import (
	"context"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository/postgres"
)

var billCols = []string{
	"id", "username", "account_number", "bill_type", "amount_cents",
	"minimum_due_cents", "due_date", "status", "loan_id", "card_id",
	"created_at", "paid_at",
}

func billRow(id int64, username, number string, billType domain.BillType, amountCents int64, status domain.BillStatus, loanID, cardID *int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(billCols).
		AddRow(id, username, number, billType, amountCents, nil, now.AddDate(0, 1, 0), status, loanID, cardID, now, nil)
}

var cardCols = []string{
	"id", "username", "card_number", "card_type", "status", "linked_account_number",
	"pin_hash", "credit_limit_cents", "per_txn_limit_cents", "daily_limit_cents",
	"used_amount_cents", "daily_usage_cents", "last_usage_date", "created_at", "updated_at",
}

func creditCardRow(id int64, username, number, pinHash string, usedCents int64) *sqlmock.Rows {
	now := time.Now()
	return sqlmock.NewRows(cardCols).
		AddRow(id, username, number, domain.CardTypeSignatureCredit, domain.CardStatusActive,
			"BKSV0000001", pinHash, int64(50000000), int64(10000000), int64(20000000),
			usedCents, int64(0), nil, now, now)
}

func fundRow(balanceCents int64) *sqlmock.Rows {
	return sqlmock.NewRows([]string{"id", "total_balance_cents", "last_updated"}).
		AddRow(int64(1), balanceCents, time.Now())
}

func newBillFixture(t *testing.T) (BillService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	svc := NewBillService(db,
		postgres.NewBillRepository(db),
		postgres.NewAccountRepository(db),
		postgres.NewCardRepository(db),
		postgres.NewTransactionRepository(db),
		postgres.NewLoanRepository(db),
		postgres.NewBankFundRepository(db),
		bankTestConfig())
	return svc, mock, func() { db.Close() }
}

func TestPayBill_EMICompletesLoan(t *testing.T) {
	svc, mock, cleanup := newBillFixture(t)
	defer cleanup()

	loanID := int64(7)
	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeEMI, 50000, domain.BillStatusUnpaid, &loanID, nil))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeEMI, 50000, domain.BillStatusUnpaid, &loanID, nil))

	// EMI payments flow back into the bank reserve.
	mock.ExpectQuery(`SELECT id, total_balance_cents, last_updated FROM bank_funds (.+) FOR UPDATE`).
		WillReturnRows(fundRow(10000000000))
	mock.ExpectExec(`UPDATE bank_funds SET total_balance_cents`).
		WithArgs(int64(10000000000+50000), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO bank_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE account_number = \$1 FOR UPDATE`).
		WithArgs("BKSV0000001").
		WillReturnRows(accountRow(1, "alice", "BKSV0000001", 80000, 500000))
	mock.ExpectExec(`UPDATE accounts SET balance_cents`).
		WithArgs(int64(30000), sqlmock.AnyArg(), "BKSV0000001", int64(0)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE bills SET status`).
		WithArgs(domain.BillStatusPaid, sqlmock.AnyArg(), int64(31), domain.BillStatusUnpaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))

	// Last unpaid bill on the loan: the loan flips to COMPLETED.
	mock.ExpectQuery(`SELECT COUNT\(\*\) FROM bills WHERE loan_id = \$1`).
		WithArgs(loanID, domain.BillStatusUnpaid).
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(int64(0)))
	mock.ExpectExec(`UPDATE loan_applications SET status`).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeEMI, 50000, domain.BillStatusPaid, &loanID, nil))

	bill, err := svc.PayBill(context.Background(), "alice", 31)
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, bill.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayBill_Guards(t *testing.T) {
	t.Run("foreign bill rejected", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))

		_, err := svc.PayBill(context.Background(), "mallory", 31)
		var unauthorized *domain.UnauthorizedError
		assert.ErrorAs(t, err, &unauthorized)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("already paid rejected", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusPaid, nil, nil))

		_, err := svc.PayBill(context.Background(), "alice", 31)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})

	t.Run("insufficient balance rolls back", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))
		mock.ExpectQuery(`SELECT (.+) FROM accounts WHERE account_number = \$1 FOR UPDATE`).
			WithArgs("BKSV0000001").
			WillReturnRows(accountRow(1, "alice", "BKSV0000001", 100, 500000))
		mock.ExpectRollback()

		_, err := svc.PayBill(context.Background(), "alice", 31)
		var fundsErr *domain.InsufficientFundsError
		assert.ErrorAs(t, err, &fundsErr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestPayBillWithCard_CreditCard(t *testing.T) {
	svc, mock, cleanup := newBillFixture(t)
	defer cleanup()

	pinHash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)
	cardNumber := "4000123412341234"

	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))
	mock.ExpectQuery(`SELECT (.+) FROM cards WHERE card_number = \$1$`).
		WithArgs(cardNumber).
		WillReturnRows(creditCardRow(5, "alice", cardNumber, string(pinHash), 0))

	mock.ExpectBegin()
	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1 FOR UPDATE`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))

	mock.ExpectQuery(`SELECT id, total_balance_cents, last_updated FROM bank_funds (.+) FOR UPDATE`).
		WillReturnRows(fundRow(10000000000))
	mock.ExpectExec(`UPDATE bank_funds SET total_balance_cents`).
		WithArgs(int64(10000000000+50000), sqlmock.AnyArg(), int64(1)).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO bank_transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

	mock.ExpectQuery(`SELECT (.+) FROM cards WHERE card_number = \$1 FOR UPDATE`).
		WithArgs(cardNumber).
		WillReturnRows(creditCardRow(5, "alice", cardNumber, string(pinHash), 0))

	// The spend lands on the card's usage counters.
	mock.ExpectExec(`UPDATE cards SET used_amount_cents`).
		WithArgs(int64(50000), int64(50000), sqlmock.AnyArg(), sqlmock.AnyArg(), int64(5)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	mock.ExpectExec(`UPDATE bills SET status`).
		WithArgs(domain.BillStatusPaid, sqlmock.AnyArg(), int64(31), domain.BillStatusUnpaid).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectQuery(`INSERT INTO transactions`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(41)))
	mock.ExpectCommit()

	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
		WithArgs(int64(31)).
		WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusPaid, nil, nil))

	bill, err := svc.PayBillWithCard(context.Background(), "alice", 31, cardNumber, "4321")
	require.NoError(t, err)
	assert.Equal(t, domain.BillStatusPaid, bill.Status)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPayBillWithCard_Guards(t *testing.T) {
	pinHash, err := bcrypt.GenerateFromPassword([]byte("4321"), bcrypt.MinCost)
	require.NoError(t, err)
	cardNumber := "4000123412341234"

	t.Run("wrong PIN", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeUtility, 50000, domain.BillStatusUnpaid, nil, nil))
		mock.ExpectQuery(`SELECT (.+) FROM cards WHERE card_number = \$1$`).
			WithArgs(cardNumber).
			WillReturnRows(creditCardRow(5, "alice", cardNumber, string(pinHash), 0))

		_, err := svc.PayBillWithCard(context.Background(), "alice", 31, cardNumber, "0000")
		var unauthorized *domain.UnauthorizedError
		assert.ErrorAs(t, err, &unauthorized)
	})

	t.Run("same card cannot settle its own statement", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		cardID := int64(5)
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1$`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeCreditCard, 50000, domain.BillStatusUnpaid, nil, &cardID))
		mock.ExpectQuery(`SELECT (.+) FROM cards WHERE card_number = \$1$`).
			WithArgs(cardNumber).
			WillReturnRows(creditCardRow(5, "alice", cardNumber, string(pinHash), 50000))

		mock.ExpectBegin()
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE id = \$1 FOR UPDATE`).
			WithArgs(int64(31)).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeCreditCard, 50000, domain.BillStatusUnpaid, nil, &cardID))
		mock.ExpectRollback()

		_, err := svc.PayBillWithCard(context.Background(), "alice", 31, cardNumber, "4321")
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestGenerateCardBills(t *testing.T) {
	cardNumber := "4000123412341234"

	t.Run("refreshes an open statement in place", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM cards\s+WHERE status = \$1 AND card_type IN`).
			WillReturnRows(creditCardRow(5, "alice", cardNumber, "x", 40000))
		cardID := int64(5)
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE card_id = \$1 AND status = \$2`).
			WithArgs(cardID, domain.BillStatusUnpaid).
			WillReturnRows(billRow(31, "alice", "BKSV0000001", domain.BillTypeCreditCard, 20000, domain.BillStatusUnpaid, nil, &cardID))
		mock.ExpectExec(`UPDATE bills SET amount_cents`).
			WithArgs(int64(40000), int64(2000), sqlmock.AnyArg(), int64(31), domain.BillStatusUnpaid).
			WillReturnResult(sqlmock.NewResult(0, 1))

		generated, err := svc.GenerateCardBills(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, generated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("cuts a new statement after a full cycle", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM cards\s+WHERE status = \$1 AND card_type IN`).
			WillReturnRows(creditCardRow(5, "alice", cardNumber, "x", 40000))
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE card_id = \$1 AND status = \$2`).
			WillReturnRows(sqlmock.NewRows(billCols))
		lastBilled := time.Now().AddDate(0, 0, -40)
		mock.ExpectQuery(`SELECT MAX\(created_at\) FROM bills WHERE card_id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(lastBilled))
		mock.ExpectQuery(`INSERT INTO bills`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(32)))

		generated, err := svc.GenerateCardBills(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 1, generated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("skips cards billed within the cycle", func(t *testing.T) {
		svc, mock, cleanup := newBillFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM cards\s+WHERE status = \$1 AND card_type IN`).
			WillReturnRows(creditCardRow(5, "alice", cardNumber, "x", 40000))
		mock.ExpectQuery(`SELECT (.+) FROM bills WHERE card_id = \$1 AND status = \$2`).
			WillReturnRows(sqlmock.NewRows(billCols))
		lastBilled := time.Now().AddDate(0, 0, -10)
		mock.ExpectQuery(`SELECT MAX\(created_at\) FROM bills WHERE card_id = \$1`).
			WithArgs(int64(5)).
			WillReturnRows(sqlmock.NewRows([]string{"max"}).AddRow(lastBilled))

		generated, err := svc.GenerateCardBills(context.Background())
		require.NoError(t, err)
		assert.Equal(t, 0, generated)
		assert.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestListBills_SuppressesFarFutureEMIs(t *testing.T) {
	svc, mock, cleanup := newBillFixture(t)
	defer cleanup()

	loanID := int64(7)
	now := time.Now()
	rows := sqlmock.NewRows(billCols).
		AddRow(int64(1), "alice", "BKSV0000001", domain.BillTypeEMI, int64(50000), nil,
			now.AddDate(0, 0, 10), domain.BillStatusUnpaid, &loanID, nil, now, nil).
		AddRow(int64(2), "alice", "BKSV0000001", domain.BillTypeEMI, int64(50000), nil,
			now.AddDate(0, 3, 0), domain.BillStatusUnpaid, &loanID, nil, now, nil).
		AddRow(int64(3), "alice", "BKSV0000001", domain.BillTypeUtility, int64(2000), nil,
			now.AddDate(0, 3, 0), domain.BillStatusUnpaid, nil, nil, now, nil)
	mock.ExpectQuery(`SELECT (.+) FROM bills WHERE username = \$1`).
		WithArgs("alice").
		WillReturnRows(rows)

	bills, err := svc.ListBills(context.Background(), "alice", "")
	require.NoError(t, err)
	require.Len(t, bills, 2)
	assert.Equal(t, int64(1), bills[0].ID)
	assert.Equal(t, int64(3), bills[1].ID)
}

func TestGenerateLoanInterestBills(t *testing.T) {
	svc, mock, cleanup := newBillFixture(t)
	defer cleanup()

	mock.ExpectQuery(`SELECT (.+) FROM loan_applications\s+WHERE status = \$1 AND COALESCE`).
		WillReturnRows(loanRow(7, "alice", "BKSV0000001", 10000000, 12, 7.2, domain.LoanStatusApproved))
	mock.ExpectQuery(`INSERT INTO bills`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(33)))
	mock.ExpectExec(`UPDATE loan_applications SET last_billed_at`).
		WithArgs(sqlmock.AnyArg(), int64(7)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	generated, err := svc.GenerateLoanInterestBills(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 1, generated)
	assert.NoError(t, mock.ExpectationsWereMet())
}
