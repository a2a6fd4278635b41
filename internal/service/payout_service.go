package service

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"

	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

var upiPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]{1,38}[a-zA-Z0-9]@[a-zA-Z][a-zA-Z0-9]{1,19}$`)

// ValidPayoutAddress checks a handle@provider transfer address.
func ValidPayoutAddress(addr string) bool {
	if len(addr) < 5 || len(addr) > 50 {
		return false
	}
	if strings.Contains(addr, "..") {
		return false
	}
	return upiPattern.MatchString(addr)
}

// PayoutPolicy holds the minimum withdrawal and the coin to paise rate.
type PayoutPolicy struct {
	MinCoins     int64
	CoinsToPaise int64
}

func DefaultPayoutPolicy() PayoutPolicy {
	return PayoutPolicy{MinCoins: 5000, CoinsToPaise: 1}
}

type PayoutResult struct {
	Request          *model.PayoutRequest
	AmountInCurrency decimal.Decimal
}

type PayoutService interface {
	Request(ctx context.Context, uid string, coins int64, address string) (*PayoutResult, error)
	Resolve(ctx context.Context, requestID uint64, status model.PayoutStatus, reason string) (*model.PayoutRequest, error)
	ListByStatus(ctx context.Context, status model.PayoutStatus, limit int) ([]model.PayoutRequest, error)
	ListMine(ctx context.Context, uid string) ([]model.PayoutRequest, error)
}

type payoutService struct {
	db       *gorm.DB
	payouts  repository.PayoutRepository
	ledger   repository.LedgerRepository
	profiles repository.ProfileRepository
	notify   NotificationService
	policy   PayoutPolicy
	settings
}

func NewPayoutService(db *gorm.DB, payouts repository.PayoutRepository, ledger repository.LedgerRepository, profiles repository.ProfileRepository, notify NotificationService, policy PayoutPolicy, opts ...Option) PayoutService {
	return &payoutService{
		db:       db,
		payouts:  payouts,
		ledger:   ledger,
		profiles: profiles,
		notify:   notify,
		policy:   policy,
		settings: newSettings(opts),
	}
}

func paiseToRupees(paise int64) decimal.Decimal {
	return decimal.New(paise, -2)
}

func formatRupees(paise int64) string {
	return "₹" + paiseToRupees(paise).String()
}

// Request reserves coins for a withdrawal. All validation happens before any
// write. The pending row is inserted first and the debit follows; if the debit
// fails the row is deleted again so nothing is left behind.
func (s *payoutService) Request(ctx context.Context, uid string, coins int64, address string) (*PayoutResult, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	if coins < s.policy.MinCoins {
		return nil, withMessage(ErrBelowMinimum, fmt.Sprintf("minimum payout is %d coins", s.policy.MinCoins))
	}
	address = strings.TrimSpace(address)
	if !ValidPayoutAddress(address) {
		return nil, withMessage(ErrInvalidAddress, "invalid UPI ID format")
	}
	if profile.CoinsBalance < coins {
		return nil, ErrInsufficientFund
	}
	pending, err := s.payouts.HasPending(ctx, profile.ID)
	if err != nil {
		return nil, dependency("pending payout lookup failed", err)
	}
	if pending {
		return nil, ErrPendingPayout
	}

	paise := coins * s.policy.CoinsToPaise
	req := &model.PayoutRequest{
		ProfileID:     profile.ID,
		CoinsAmount:   coins,
		PaiseAmount:   paise,
		PayoutAddress: address,
	}
	if err := s.payouts.CreatePending(ctx, req); err != nil {
		if errors.Is(err, repository.ErrDuplicate) {
			s.metrics.ObservePayout("conflict")
			return nil, ErrPendingPayout
		}
		return nil, dependency("failed to create payout request", err)
	}

	_, err = s.ledger.Apply(ctx, repository.Entry{
		ProfileID:       profile.ID,
		Amount:          -coins,
		Kind:            model.KindPayout,
		Description:     fmt.Sprintf("Payout request: %s to %s", formatRupees(paise), address),
		PayoutRequestID: uint64Ptr(req.ID),
	})
	if err != nil {
		delCtx, cancel := withShortDeadline(ctx)
		delErr := s.payouts.Delete(delCtx, req.ID)
		cancel()
		if delErr != nil {
			s.logger.Error("compensating delete failed; orphaned payout request",
				"payout_request_id", req.ID, "profile_id", profile.ID, "err", delErr)
		}
		s.metrics.ObservePayout("debit_failed")
		if errors.Is(err, repository.ErrInsufficientBalance) {
			return nil, ErrInsufficientFund
		}
		return nil, dependency("failed to reserve coins", err)
	}
	s.metrics.ObserveLedgerEntry(string(model.KindPayout))
	s.metrics.ObservePayout("requested")

	if err := s.profiles.SetPayoutAddress(ctx, profile.ID, address); err != nil {
		s.logger.Warn("failed to remember payout address", "profile_id", profile.ID, "err", err)
	}
	if s.notify != nil {
		s.notify.Notify(ctx, Note{
			UserUID:         uid,
			Type:            model.NotificationPayoutRequested,
			Title:           "Payout requested",
			Body:            fmt.Sprintf("%s to %s is being processed.", formatRupees(paise), address),
			PayoutRequestID: uint64Ptr(req.ID),
		})
	}
	s.logger.Info("payout requested", "payout_request_id", req.ID, "profile_id", profile.ID, "coins", coins)
	return &PayoutResult{Request: req, AmountInCurrency: paiseToRupees(paise)}, nil
}

// Resolve records the settlement outcome. A failed payout returns the reserved
// coins in the same transaction that closes the request.
func (s *payoutService) Resolve(ctx context.Context, requestID uint64, status model.PayoutStatus, reason string) (*model.PayoutRequest, error) {
	if !status.Terminal() {
		return nil, withMessage(ErrInvalidInput, "status must be completed or failed")
	}
	var reasonPtr *string
	if r := strings.TrimSpace(reason); r != "" {
		reasonPtr = &r
	}
	now := s.clock()

	var resolved *model.PayoutRequest
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		req, err := s.payouts.ResolveTx(tx, requestID, status, reasonPtr, now)
		if err != nil {
			return err
		}
		if status == model.PayoutStatusFailed {
			if _, err := s.ledger.ApplyTx(tx, repository.Entry{
				ProfileID:       req.ProfileID,
				Amount:          req.CoinsAmount,
				Kind:            model.KindRefund,
				Description:     fmt.Sprintf("Payout failed: %s refunded", formatRupees(req.PaiseAmount)),
				PayoutRequestID: uint64Ptr(req.ID),
			}); err != nil {
				return err
			}
		}
		resolved = req
		return nil
	})
	if err != nil {
		switch {
		case repository.IsNotFound(err):
			return nil, ErrPayoutNotFound
		case errors.Is(err, repository.ErrNotPending):
			return nil, ErrPayoutFinalized
		}
		return nil, dependency("failed to resolve payout", err)
	}
	s.metrics.ObservePayout(string(status))
	if status == model.PayoutStatusFailed {
		s.metrics.ObserveLedgerEntry(string(model.KindRefund))
	}
	s.notifyResolution(ctx, resolved)
	s.logger.Info("payout resolved", "payout_request_id", resolved.ID, "status", resolved.Status)
	return resolved, nil
}

func (s *payoutService) notifyResolution(ctx context.Context, req *model.PayoutRequest) {
	if s.notify == nil {
		return
	}
	profile, err := s.profiles.FindByID(ctx, req.ProfileID)
	if err != nil {
		s.logger.Warn("profile lookup for notification failed", "profile_id", req.ProfileID, "err", err)
		return
	}
	n := Note{UserUID: profile.UserUID, PayoutRequestID: uint64Ptr(req.ID)}
	if req.Status == model.PayoutStatusCompleted {
		n.Type = model.NotificationPayoutCompleted
		n.Title = "Payout sent"
		n.Body = fmt.Sprintf("%s was sent to %s.", formatRupees(req.PaiseAmount), req.PayoutAddress)
	} else {
		n.Type = model.NotificationPayoutFailed
		n.Title = "Payout failed"
		n.Body = fmt.Sprintf("%d coins were returned to your balance.", req.CoinsAmount)
	}
	s.notify.Notify(ctx, n)
}

func (s *payoutService) ListByStatus(ctx context.Context, status model.PayoutStatus, limit int) ([]model.PayoutRequest, error) {
	switch status {
	case model.PayoutStatusPending, model.PayoutStatusCompleted, model.PayoutStatusFailed:
	default:
		return nil, withMessage(ErrInvalidInput, "unknown payout status")
	}
	list, err := s.payouts.ListByStatus(ctx, status, limit)
	if err != nil {
		return nil, dependency("failed to list payouts", err)
	}
	return list, nil
}

func (s *payoutService) ListMine(ctx context.Context, uid string) ([]model.PayoutRequest, error) {
	if uid == "" {
		return nil, ErrUnauthenticated
	}
	profile, err := s.profiles.FindByUID(ctx, uid)
	if err != nil {
		if repository.IsNotFound(err) {
			return nil, ErrProfileNotFound
		}
		return nil, dependency("profile lookup failed", err)
	}
	list, err := s.payouts.ListByProfile(ctx, profile.ID, 20)
	if err != nil {
		return nil, dependency("failed to list payouts", err)
	}
	return list, nil
}
