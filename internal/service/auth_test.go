package service

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository/postgres"
	"bankledger-backend/internal/security"
)

var userCols = []string{"id", "username", "email", "password_hash", "full_name", "created_at"}

func newAuthFixture(t *testing.T) (AuthService, sqlmock.Sqlmock, func()) {
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	tokens := security.NewTokenManager("test-secret", time.Minute)
	svc := NewAuthService(postgres.NewUserRepository(db), postgres.NewAccountRepository(db), tokens, bankTestConfig())
	return svc, mock, func() { db.Close() }
}

func TestSignup(t *testing.T) {
	t.Run("creates user and savings account", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnError(sql.ErrNoRows)
		mock.ExpectQuery(`INSERT INTO users`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))
		mock.ExpectQuery(`SELECT EXISTS`).
			WithArgs(sqlmock.AnyArg()).
			WillReturnRows(sqlmock.NewRows([]string{"exists"}).AddRow(false))
		mock.ExpectQuery(`INSERT INTO accounts`).
			WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(int64(1)))

		user, account, err := svc.Signup(context.Background(), "alice", "alice@example.com", "hunter2hunter2", "Alice", domain.AccountTypeSavings)
		require.NoError(t, err)
		assert.Equal(t, "alice", user.Username)
		assert.Regexp(t, regexp.MustCompile(`^BKSV\d{7}$`), account.AccountNumber)
		assert.Equal(t, int64(0), account.BalanceCents)
		assert.Equal(t, bankTestConfig().DefaultTxnLimitCents, account.TransactionLimitCents)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("input validation needs no queries", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		cases := []struct {
			name        string
			username    string
			password    string
			accountType domain.AccountType
		}{
			{"blank username", "   ", "hunter2hunter2", domain.AccountTypeSavings},
			{"short password", "alice", "short", domain.AccountTypeSavings},
			{"unknown account type", "alice", "hunter2hunter2", domain.AccountType("OFFSHORE")},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, _, err := svc.Signup(context.Background(), tc.username, "a@b.c", tc.password, "A", tc.accountType)
				var verr *domain.ValidationError
				assert.ErrorAs(t, err, &verr)
			})
		}
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("duplicate username rejected", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "alice", "a@b.c", "hash", "Alice", time.Now()))

		_, _, err := svc.Signup(context.Background(), "alice", "a@b.c", "hunter2hunter2", "Alice", domain.AccountTypeSavings)
		var verr *domain.ValidationError
		assert.ErrorAs(t, err, &verr)
	})
}

func TestLogin(t *testing.T) {
	hash, err := bcrypt.GenerateFromPassword([]byte("hunter2hunter2"), bcrypt.MinCost)
	require.NoError(t, err)

	t.Run("issues a token on valid credentials", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "alice", "a@b.c", string(hash), "Alice", time.Now()))

		token, user, err := svc.Login(context.Background(), "alice", "hunter2hunter2")
		require.NoError(t, err)
		assert.NotEmpty(t, token)
		assert.Equal(t, "alice", user.Username)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("alice").
			WillReturnRows(sqlmock.NewRows(userCols).AddRow(int64(1), "alice", "a@b.c", string(hash), "Alice", time.Now()))

		_, _, err := svc.Login(context.Background(), "alice", "wrong-password")
		var unauthorized *domain.UnauthorizedError
		assert.ErrorAs(t, err, &unauthorized)
	})

	t.Run("unknown user gets the same error", func(t *testing.T) {
		svc, mock, cleanup := newAuthFixture(t)
		defer cleanup()

		mock.ExpectQuery(`SELECT (.+) FROM users WHERE username = \$1`).
			WithArgs("ghost").
			WillReturnError(sql.ErrNoRows)

		_, _, err := svc.Login(context.Background(), "ghost", "hunter2hunter2")
		var unauthorized *domain.UnauthorizedError
		assert.ErrorAs(t, err, &unauthorized)
	})
}
