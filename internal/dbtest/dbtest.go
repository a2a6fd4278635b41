// Package dbtest opens migrated in-memory databases for package tests.
package dbtest

import (
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/glebarez/sqlite"
	"github.com/reelspay/reelspay-backend/internal/model"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

var seq atomic.Int64

// Open returns a fresh migrated database private to t. A single connection keeps
// the shared-cache memory database alive and serializes writers the way the
// production row locks do.
func Open(t testing.TB) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:reelspay_test_%d?mode=memory&cache=shared&_pragma=foreign_keys(1)", seq.Add(1))
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger:  logger.Default.LogMode(logger.Silent),
		NowFunc: func() time.Time { return time.Now().UTC() },
	})
	if err != nil {
		t.Fatalf("open sqlite: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })

	if err := db.AutoMigrate(model.All()...); err != nil {
		t.Fatalf("migrate: %v", err)
	}
	return db
}

// Profile inserts a profile with the given uid and balance. The balance is written
// together with a matching bonus transaction so the ledger stays consistent.
func Profile(t testing.TB, db *gorm.DB, uid string, balance int64) *model.Profile {
	t.Helper()
	p := &model.Profile{UserUID: uid, DisplayName: uid, CoinsBalance: balance}
	if err := db.Create(p).Error; err != nil {
		t.Fatalf("create profile: %v", err)
	}
	if balance != 0 {
		desc := "seed balance"
		if err := db.Create(&model.CoinTransaction{ProfileID: p.ID, Amount: balance, Kind: model.KindBonus, Description: &desc}).Error; err != nil {
			t.Fatalf("seed ledger: %v", err)
		}
	}
	return p
}

// Video inserts a published shorts video owned by creatorID.
func Video(t testing.TB, db *gorm.DB, creatorID uint64) *model.Video {
	t.Helper()
	v := &model.Video{
		CreatorID:       creatorID,
		Title:           "clip",
		Category:        model.CategoryDrama,
		Class:           model.ClassShorts,
		MediaPublicID:   fmt.Sprintf("videos/%d", seq.Add(1)),
		MediaURL:        "https://media.example/clip.mp4",
		DurationSeconds: 30,
		IsPublished:     true,
	}
	if err := db.Create(v).Error; err != nil {
		t.Fatalf("create video: %v", err)
	}
	return v
}
