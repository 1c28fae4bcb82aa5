package repos

import (
	"context"

	"gorm.io/gorm"

	"github.com/dumpling2/steam-game-suggester/internal/logger"
	"github.com/dumpling2/steam-game-suggester/internal/types"
)

type HistoryRepo interface {
	Append(ctx context.Context, tx *gorm.DB, event *types.InteractionEvent) error
	ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, action types.Action, limit int) ([]types.InteractionEvent, error)
}

type historyRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewHistoryRepo(db *gorm.DB, baseLog *logger.Logger) HistoryRepo {
	repoLog := baseLog.With("repo", "HistoryRepo")
	return &historyRepo{db: db, log: repoLog}
}

// Append writes one immutable behavior-log row. Rows are never updated
// or deleted afterwards.
func (r *historyRepo) Append(ctx context.Context, tx *gorm.DB, event *types.InteractionEvent) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	if err := transaction.WithContext(ctx).Create(event).Error; err != nil {
		return err
	}
	return nil
}

// ListRecentByUser returns the newest rows first, optionally filtered to
// one action type when action is non-empty.
func (r *historyRepo) ListRecentByUser(ctx context.Context, tx *gorm.DB, userID string, action types.Action, limit int) ([]types.InteractionEvent, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}

	query := transaction.WithContext(ctx).Where("user_id = ?", userID)
	if action != "" {
		query = query.Where("action = ?", action)
	}

	var results []types.InteractionEvent
	if err := query.
		Order("created_at DESC").
		Limit(limit).
		Find(&results).Error; err != nil {
		return nil, err
	}
	return results, nil
}
