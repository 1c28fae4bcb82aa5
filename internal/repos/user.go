package repos

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type UserRepo interface {
	Upsert(ctx context.Context, tx *gorm.DB, userID, username string) error
	GetByID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error)
}

type userRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewUserRepo(db *gorm.DB, baseLog *logger.Logger) UserRepo {
	repoLog := baseLog.With("repo", "UserRepo")
	return &userRepo{db: db, log: repoLog}
}

// Upsert creates the profile on first contact and refreshes the
// username and updated_at timestamp on every subsequent one.
func (r *userRepo) Upsert(ctx context.Context, tx *gorm.DB, userID, username string) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	profile := &types.UserProfile{UserID: userID, Username: username}
	if err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "user_id"}},
			DoUpdates: clause.Assignments(map[string]interface{}{
				"username":   username,
				"updated_at": time.Now(),
			}),
		}).
		Create(profile).Error; err != nil {
		return err
	}
	return nil
}

func (r *userRepo) GetByID(ctx context.Context, tx *gorm.DB, userID string) (*types.UserProfile, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	var profile types.UserProfile
	if err := transaction.WithContext(ctx).
		Where("user_id = ?", userID).
		First(&profile).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &profile, nil
}
