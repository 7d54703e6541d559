package service

import (
	"context"
	"database/sql"
	"errors"

	"bankledger-backend/internal/config"
	"bankledger-backend/internal/domain"
	"bankledger-backend/internal/repository"
)

type bankFundService struct {
	fundRepo repository.BankFundRepository
	cfg      config.BankConfig
}

func NewBankFundService(fundRepo repository.BankFundRepository, cfg config.BankConfig) BankFundService {
	return &bankFundService{fundRepo: fundRepo, cfg: cfg}
}

// GetReserve returns the reserve snapshot. Before the first movement touches
// the row it reports the configured seed value.
func (s *bankFundService) GetReserve(ctx context.Context) (*domain.BankFund, error) {
	fund, err := s.fundRepo.Get(ctx)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return &domain.BankFund{TotalBalanceCents: s.cfg.InitialReserveCents}, nil
		}
		return nil, domain.NewInternalError("bankfund.get", err)
	}
	return fund, nil
}

func (s *bankFundService) ListMovements(ctx context.Context, page, pageSize int32) ([]domain.BankTransaction, int32, error) {
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 20
	}
	txns, total, err := s.fundRepo.ListTransactions(ctx, pageSize, (page-1)*pageSize)
	if err != nil {
		return nil, 0, domain.NewInternalError("bankfund.movements", err)
	}
	return txns, total, nil
}
