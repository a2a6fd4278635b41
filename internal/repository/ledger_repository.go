package repository

import (
	"context"

	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
)

// Entry is one signed balance movement. Positive amounts credit, negative debit.
type Entry struct {
	ProfileID       uint64
	Amount          int64
	Kind            model.TransactionKind
	Description     string
	VideoID         *uint64
	PayoutRequestID *uint64
}

type LedgerRepository interface {
	Apply(ctx context.Context, e Entry) (*model.CoinTransaction, error)
	ApplyTx(tx *gorm.DB, e Entry) (*model.CoinTransaction, error)
	Balance(ctx context.Context, profileID uint64) (int64, error)
	Sum(ctx context.Context, profileID uint64) (int64, error)
	History(ctx context.Context, profileID uint64, limit int) ([]model.CoinTransaction, error)
}

type ledgerRepository struct {
	db *gorm.DB
}

func NewLedgerRepository(db *gorm.DB) LedgerRepository {
	return &ledgerRepository{db: db}
}

func (r *ledgerRepository) Apply(ctx context.Context, e Entry) (*model.CoinTransaction, error) {
	if r.db == nil {
		return nil, ErrDBNotReady
	}
	var out *model.CoinTransaction
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ct, err := r.ApplyTx(tx, e)
		if err != nil {
			return err
		}
		out = ct
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ApplyTx moves the balance and appends the transaction row on tx. The balance
// update is conditional so a debit can never take coins_balance below zero, even
// when the caller's earlier read is stale.
func (r *ledgerRepository) ApplyTx(tx *gorm.DB, e Entry) (*model.CoinTransaction, error) {
	updates := map[string]interface{}{
		"coins_balance": gorm.Expr("coins_balance + ?", e.Amount),
	}
	if e.Amount > 0 && e.Kind.CountsAsEarnings() {
		updates["total_earnings"] = gorm.Expr("total_earnings + ?", e.Amount)
	}
	res := tx.Model(&model.Profile{}).
		Where("id = ? AND coins_balance + ? >= 0", e.ProfileID, e.Amount).
		Updates(updates)
	if res.Error != nil {
		return nil, res.Error
	}
	if res.RowsAffected == 0 {
		var n int64
		if err := tx.Model(&model.Profile{}).Where("id = ?", e.ProfileID).Count(&n).Error; err != nil {
			return nil, err
		}
		if n == 0 {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, ErrInsufficientBalance
	}

	ct := &model.CoinTransaction{
		ProfileID:       e.ProfileID,
		Amount:          e.Amount,
		Kind:            e.Kind,
		VideoID:         e.VideoID,
		PayoutRequestID: e.PayoutRequestID,
	}
	if e.Description != "" {
		desc := e.Description
		ct.Description = &desc
	}
	if err := tx.Create(ct).Error; err != nil {
		return nil, err
	}
	return ct, nil
}

func (r *ledgerRepository) Balance(ctx context.Context, profileID uint64) (int64, error) {
	var p model.Profile
	if err := r.db.WithContext(ctx).Select("coins_balance").First(&p, profileID).Error; err != nil {
		return 0, err
	}
	return p.CoinsBalance, nil
}

func (r *ledgerRepository) Sum(ctx context.Context, profileID uint64) (int64, error) {
	var sum struct{ Total int64 }
	if err := r.db.WithContext(ctx).
		Model(&model.CoinTransaction{}).
		Select("COALESCE(SUM(amount), 0) AS total").
		Where("profile_id = ?", profileID).
		Scan(&sum).Error; err != nil {
		return 0, err
	}
	return sum.Total, nil
}

func (r *ledgerRepository) History(ctx context.Context, profileID uint64, limit int) ([]model.CoinTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 50
	}
	var list []model.CoinTransaction
	if err := r.db.WithContext(ctx).
		Where("profile_id = ?", profileID).
		Order("id DESC").
		Limit(limit).
		Find(&list).Error; err != nil {
		return nil, err
	}
	return list, nil
}

