package service

import (
	"context"
	"errors"

	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
)

// AuditReport compares a profile's materialized balance with its ledger.
type AuditReport struct {
	ProfileID     uint64 `json:"profile_id"`
	Balance       int64  `json:"coins_balance"`
	LedgerSum     int64  `json:"ledger_sum"`
	TotalEarnings int64  `json:"total_earnings"`
	CreatorPaise  int64  `json:"creator_earnings_paise"`
	Consistent    bool   `json:"consistent"`
}

type LedgerService interface {
	Credit(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error)
	Debit(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error)
	Audit(ctx context.Context, profileID uint64) (*AuditReport, error)
	History(ctx context.Context, uid string, limit int) ([]model.CoinTransaction, error)
}

type ledgerService struct {
	ledger   repository.LedgerRepository
	profiles repository.ProfileRepository
	rewards  repository.RewardRepository
	settings
}

func NewLedgerService(ledger repository.LedgerRepository, profiles repository.ProfileRepository, rewards repository.RewardRepository, opts ...Option) LedgerService {
	return &ledgerService{ledger: ledger, profiles: profiles, rewards: rewards, settings: newSettings(opts)}
}

// Credit adds a positive amount to the profile.
func (s *ledgerService) Credit(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error) {
	if e.Amount <= 0 {
		return nil, withMessage(ErrInvalidInput, "amount must be positive")
	}
	return s.apply(ctx, e)
}

// Debit removes a positive amount from the profile. It fails instead of
// producing a negative balance.
func (s *ledgerService) Debit(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error) {
	if e.Amount <= 0 {
		return nil, withMessage(ErrInvalidInput, "amount must be positive")
	}
	e.Amount = -e.Amount
	return s.apply(ctx, e)
}

func (s *ledgerService) apply(ctx context.Context, e repository.Entry) (*model.CoinTransaction, error) {
	ct, err := s.ledger.Apply(ctx, e)
	if err != nil {
		switch {
		case errors.Is(err, repository.ErrInsufficientBalance):
			return nil, ErrInsufficientFund
		case repository.IsNotFound(err):
			return nil, ErrProfileNotFound
		}
		return nil, dependency("ledger write failed", err)
	}
	s.metrics.ObserveLedgerEntry(string(e.Kind))
	return ct, nil
}

func (s *ledgerService) Audit(ctx context.Context, profileID uint64) (*AuditReport, error) {
	p, err := s.profiles.FindByID(ctx, profileID)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	sum, err := s.ledger.Sum(ctx, profileID)
	if err != nil {
		return nil, dependency("ledger sum failed", err)
	}
	creatorPaise, err := s.rewards.SumCreatorEarnings(ctx, profileID)
	if err != nil {
		return nil, dependency("creator earnings sum failed", err)
	}
	report := &AuditReport{
		ProfileID:     p.ID,
		Balance:       p.CoinsBalance,
		LedgerSum:     sum,
		TotalEarnings: p.TotalEarnings,
		CreatorPaise:  creatorPaise,
		Consistent:    sum == p.CoinsBalance,
	}
	if !report.Consistent {
		s.logger.Warn("ledger drift detected", "profile_id", p.ID, "balance", p.CoinsBalance, "ledger_sum", sum)
	}
	return report, nil
}

func (s *ledgerService) History(ctx context.Context, uid string, limit int) ([]model.CoinTransaction, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	p, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	list, err := s.ledger.History(ctx, p.ID, limit)
	if err != nil {
		return nil, dependency("ledger history failed", err)
	}
	return list, nil
}
