package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/reelspay/reelspay-backend/internal/config"
	"github.com/reelspay/reelspay-backend/internal/db"
	"github.com/reelspay/reelspay-backend/internal/model"
	"github.com/reelspay/reelspay-backend/internal/repository"
	"gorm.io/gorm"
)

type seedVideo struct {
	Title    string
	Category model.VideoCategory
	Class    model.VideoClass
	Seconds  int
}

func main() {
	if err := run(); err != nil {
		log.Fatalf("seed failed: %v", err)
	}
}

func run() error {
	ctx := context.Background()
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	gdb, err := db.Connect(cfg)
	if err != nil {
		return fmt.Errorf("connect db: %w", err)
	}
	if err := db.Migrate(gdb); err != nil {
		return fmt.Errorf("migrate: %w", err)
	}
	n, err := seed(ctx, gdb, os.Getenv("SEED_CREATOR_UID"), os.Getenv("SEED_ADMIN_UID"), strings.EqualFold(os.Getenv("FORCE_SEED"), "true"))
	if err != nil {
		return err
	}
	log.Printf("seeded %d videos", n)
	return nil
}

// seed provisions a creator with sample videos and, optionally, an admin. It is
// a no-op for videos when the creator already has some, unless force is set.
func seed(ctx context.Context, gdb *gorm.DB, creatorUID, adminUID string, force bool) (int, error) {
	if creatorUID == "" {
		creatorUID = "seed-creator"
	}
	profiles := repository.NewProfileRepository(gdb)
	creator, err := profiles.Ensure(ctx, creatorUID, "Seed Creator")
	if err != nil {
		return 0, fmt.Errorf("ensure creator: %w", err)
	}
	if err := profiles.SetCreator(ctx, creator.ID); err != nil {
		return 0, fmt.Errorf("promote creator: %w", err)
	}
	if adminUID != "" {
		admin, err := profiles.Ensure(ctx, adminUID, "Operator")
		if err != nil {
			return 0, fmt.Errorf("ensure admin: %w", err)
		}
		if err := profiles.GrantRole(ctx, admin.ID, model.RoleAdmin); err != nil {
			return 0, fmt.Errorf("grant admin: %w", err)
		}
	}

	var existing int64
	if err := gdb.WithContext(ctx).Model(&model.Video{}).Where("creator_id = ?", creator.ID).Count(&existing).Error; err != nil {
		return 0, fmt.Errorf("count videos: %w", err)
	}
	if existing > 0 && !force {
		log.Printf("creator already has videos; skipping seed (set FORCE_SEED=true to override)")
		return 0, nil
	}

	videos := repository.NewVideoRepository(gdb)
	samples := buildSeedVideos()
	for i, s := range samples {
		v := &model.Video{
			CreatorID:       creator.ID,
			Title:           s.Title,
			Category:        s.Category,
			Class:           s.Class,
			MediaPublicID:   fmt.Sprintf("seed/%d/%d", creator.ID, i+1),
			MediaURL:        fmt.Sprintf("https://picsum.photos/seed/reel-%d/720/1280", i+1),
			DurationSeconds: s.Seconds,
			IsPublished:     true,
		}
		if err := videos.Create(ctx, v); err != nil {
			return i, fmt.Errorf("insert video %q: %w", s.Title, err)
		}
	}
	return len(samples), nil
}

func buildSeedVideos() []seedVideo {
	return []seedVideo{
		{"Monsoon Letters, Ep. 1", model.CategoryRomance, model.ClassShorts, 45},
		{"Monsoon Letters, Ep. 2", model.CategoryRomance, model.ClassShorts, 52},
		{"The Last Train to Shimla", model.CategoryHorror, model.ClassShorts, 38},
		{"Hostel Night Shift", model.CategoryHorror, model.ClassLongform, 240},
		{"Chai Break Chaos", model.CategoryComedy, model.ClassShorts, 29},
		{"Wedding Planner Disasters", model.CategoryComedy, model.ClassLongform, 185},
		{"Inheritance", model.CategoryDrama, model.ClassShorts, 58},
		{"Courtroom 7", model.CategoryDrama, model.ClassLongform, 420},
	}
}
