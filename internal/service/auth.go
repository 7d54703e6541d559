package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"

	"golang.org/x/crypto/bcrypt"

	"bankledger-backend/internal/config"
	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
	"bankledger-backend/internal/repository"
	"bankledger-backend/internal/security"
)

type authService struct {
	userRepo    repository.UserRepository
	accountRepo repository.AccountRepository
	tokens      security.TokenManager
	cfg         config.BankConfig
	log         *slog.Logger
}

func NewAuthService(userRepo repository.UserRepository, accountRepo repository.AccountRepository, tokens security.TokenManager, cfg config.BankConfig) AuthService {
	return &authService{
		userRepo:    userRepo,
		accountRepo: accountRepo,
		tokens:      tokens,
		cfg:         cfg,
		log:         logger.WithService("auth"),
	}
}

// Signup registers the user and opens their first account with the default
// transaction limit.
func (s *authService) Signup(ctx context.Context, username, email, password, fullName string, accountType domain.AccountType) (*domain.User, *domain.Account, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, nil, domain.NewValidationError("username is required")
	}
	if len(password) < 8 {
		return nil, nil, domain.NewValidationError("password must be at least 8 characters")
	}
	if accountType != domain.AccountTypeSavings && accountType != domain.AccountTypeCurrent {
		return nil, nil, domain.NewValidationError("unknown account type: %s", accountType)
	}
	if _, err := s.userRepo.GetByUsername(ctx, username); err == nil {
		return nil, nil, domain.NewValidationError("username is already taken")
	} else if !errors.Is(err, sql.ErrNoRows) {
		return nil, nil, domain.NewInternalError("auth.signup.check_username", err)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, nil, domain.NewInternalError("auth.signup.hash", err)
	}

	user := &domain.User{
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FullName:     fullName,
	}
	if err := s.userRepo.Create(ctx, user); err != nil {
		return nil, nil, domain.NewInternalError("auth.signup.create_user", err)
	}

	number, err := s.generateAccountNumber(ctx, accountType)
	if err != nil {
		return nil, nil, err
	}
	account := &domain.Account{
		UserID:                user.ID,
		Username:              username,
		AccountNumber:         number,
		AccountType:           accountType,
		BalanceCents:          0,
		TransactionLimitCents: s.cfg.DefaultTxnLimitCents,
	}
	if err := s.accountRepo.Create(ctx, account); err != nil {
		return nil, nil, domain.NewInternalError("auth.signup.create_account", err)
	}

	s.log.Info("user signed up", "username", username, "account", number)
	return user, account, nil
}

func (s *authService) Login(ctx context.Context, username, password string) (string, *domain.User, error) {
	user, err := s.userRepo.GetByUsername(ctx, username)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return "", nil, domain.NewUnauthorizedError("invalid credentials")
		}
		return "", nil, domain.NewInternalError("auth.login.read", err)
	}
	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return "", nil, domain.NewUnauthorizedError("invalid credentials")
	}
	token, err := s.tokens.GenerateToken(user.ID, user.Username)
	if err != nil {
		return "", nil, domain.NewInternalError("auth.login.token", err)
	}
	return token, user, nil
}

// generateAccountNumber mints a BKSV/BKCR number with a 7-digit random
// suffix, retrying on the rare collision.
func (s *authService) generateAccountNumber(ctx context.Context, accountType domain.AccountType) (string, error) {
	prefix := "BKSV"
	if accountType == domain.AccountTypeCurrent {
		prefix = "BKCR"
	}
	for attempt := 0; attempt < 5; attempt++ {
		n, err := rand.Int(rand.Reader, big.NewInt(10000000))
		if err != nil {
			return "", domain.NewInternalError("auth.account_number", err)
		}
		number := fmt.Sprintf("%s%07d", prefix, n.Int64())
		exists, err := s.accountRepo.ExistsByNumber(ctx, number)
		if err != nil {
			return "", domain.NewInternalError("auth.account_number.check", err)
		}
		if !exists {
			return number, nil
		}
	}
	return "", domain.NewInternalError("auth.account_number", errors.New("could not allocate a unique account number"))
}
