package repository

import (
	"context"
	"errors"

	"github.com/astrolive/loyalty-engine/internal/domain"
)

var (
	ErrLevelNotFound = errors.New("loyalty level not found")
	ErrGiftNotFound  = errors.New("gift not found")
)

// LevelRepository defines the interface for loyalty ladder persistence.
type LevelRepository interface {
	GetLevels(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error)
	ReplaceLevels(ctx context.Context, streamerID string, levels []domain.LoyaltyLevel) ([]domain.LoyaltyLevel, error)
}

// GiftRepository defines the interface for gift catalog persistence.
type GiftRepository interface {
	ListGifts(ctx context.Context, streamerID string) ([]domain.Gift, error)
	GetGift(ctx context.Context, streamerID, giftID string) (*domain.Gift, error)
	CreateGift(ctx context.Context, gift *domain.Gift) error
	DeleteGift(ctx context.Context, streamerID, giftID string) error
}
