package service

import (
	"context"
	"crypto/rand"
	"database/sql"
	"errors"
	"log/slog"
	"math/big"

	"golang.org/x/crypto/bcrypt"

	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/logger"
	"bankledger-backend/internal/repository"
)

// Default spend controls by card type, in cents. A nil entry leaves that
// limit unset, which skips the corresponding check.
type cardLimits struct {
	credit *int64
	perTxn *int64
	daily  *int64
}

func centsPtr(v int64) *int64 { return &v }

var defaultCardLimits = map[domain.CardType]cardLimits{
	domain.CardTypePlatinumDebit:   {perTxn: centsPtr(20000000), daily: centsPtr(50000000)},
	domain.CardTypeSignatureCredit: {credit: centsPtr(50000000), perTxn: centsPtr(10000000), daily: centsPtr(20000000)},
	domain.CardTypeNormalCredit:    {credit: centsPtr(10000000), perTxn: centsPtr(5000000), daily: centsPtr(10000000)},
}

type cardService struct {
	cardRepo    repository.CardRepository
	accountRepo repository.AccountRepository
	log         *slog.Logger
}

func NewCardService(cardRepo repository.CardRepository, accountRepo repository.AccountRepository) CardService {
	return &cardService{
		cardRepo:    cardRepo,
		accountRepo: accountRepo,
		log:         logger.WithService("card"),
	}
}

func (s *cardService) RequestCard(ctx context.Context, username string, cardType domain.CardType, linkedAccountNumber, pin string) (*domain.Card, error) {
	limits, ok := defaultCardLimits[cardType]
	if !ok {
		return nil, domain.NewValidationError("unknown card type: %s", cardType)
	}
	if len(pin) != 4 {
		return nil, domain.NewValidationError("PIN must be 4 digits")
	}

	account, err := s.accountRepo.GetByNumber(ctx, linkedAccountNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.NewNotFoundError("account", linkedAccountNumber)
		}
		return nil, domain.NewInternalError("card.request.read_account", err)
	}
	if account.Username != username {
		return nil, domain.NewUnauthorizedError("account does not belong to caller")
	}

	pinHash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return nil, domain.NewInternalError("card.request.hash_pin", err)
	}

	number, err := generateCardNumber()
	if err != nil {
		return nil, domain.NewInternalError("card.request.number", err)
	}

	card := &domain.Card{
		Username:            username,
		CardNumber:          number,
		CardType:            cardType,
		Status:              domain.CardStatusPending,
		LinkedAccountNumber: linkedAccountNumber,
		PINHash:             string(pinHash),
		CreditLimitCents:    limits.credit,
		PerTxnLimitCents:    limits.perTxn,
		DailyLimitCents:     limits.daily,
	}
	if err := s.cardRepo.Create(ctx, card); err != nil {
		return nil, domain.NewInternalError("card.request.create", err)
	}
	s.log.Info("card requested", "card_id", card.ID, "type", cardType, "user", username)
	return card, nil
}

func (s *cardService) Approve(ctx context.Context, cardID int64) error {
	if err := s.cardRepo.UpdateStatus(ctx, cardID, domain.CardStatusActive); err != nil {
		return domain.NewInternalError("card.approve", err)
	}
	return nil
}

func (s *cardService) Reject(ctx context.Context, cardID int64) error {
	if err := s.cardRepo.UpdateStatus(ctx, cardID, domain.CardStatusRejected); err != nil {
		return domain.NewInternalError("card.reject", err)
	}
	return nil
}

func (s *cardService) Block(ctx context.Context, username, cardNumber string) error {
	card, err := s.cardRepo.GetByNumber(ctx, cardNumber)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return domain.NewNotFoundError("card", cardNumber)
		}
		return domain.NewInternalError("card.block.read", err)
	}
	if card.Username != username {
		return domain.NewUnauthorizedError("card does not belong to caller")
	}
	if err := s.cardRepo.UpdateStatus(ctx, card.ID, domain.CardStatusBlocked); err != nil {
		return domain.NewInternalError("card.block", err)
	}
	s.log.Info("card blocked", "card_id", card.ID)
	return nil
}

func (s *cardService) ListByUser(ctx context.Context, username string) ([]domain.Card, error) {
	cards, err := s.cardRepo.ListByUsername(ctx, username)
	if err != nil {
		return nil, domain.NewInternalError("card.list", err)
	}
	return cards, nil
}

func generateCardNumber() (string, error) {
	digits := make([]byte, 16)
	for i := range digits {
		n, err := rand.Int(rand.Reader, big.NewInt(10))
		if err != nil {
			return "", err
		}
		digits[i] = byte('0' + n.Int64())
	}
	return string(digits), nil
}
