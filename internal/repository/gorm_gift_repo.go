package repository

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// GormGiftRepository implements GiftRepository using GORM.
type GormGiftRepository struct {
	db *gorm.DB
}

// NewGormGiftRepository creates a new GORM-based gift repository.
func NewGormGiftRepository(db *gorm.DB) *GormGiftRepository {
	return &GormGiftRepository{db: db}
}

// ListGifts retrieves the streamer's gift catalog.
func (r *GormGiftRepository) ListGifts(ctx context.Context, streamerID string) ([]domain.Gift, error) {
	l := log.Ctx(ctx)

	var models []domain.GiftModel
	result := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		Order("coin_cost ASC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldStreamerID, streamerID).Msg("failed to list gifts from db")
		return nil, result.Error
	}

	gifts := make([]domain.Gift, len(models))
	for i, model := range models {
		gifts[i] = *model.ToDomain()
	}
	return gifts, nil
}

// GetGift retrieves one gift from the streamer's catalog.
func (r *GormGiftRepository) GetGift(ctx context.Context, streamerID, giftID string) (*domain.Gift, error) {
	l := log.Ctx(ctx)

	var model domain.GiftModel
	result := r.db.WithContext(ctx).First(&model, "id = ? AND streamer_id = ?", giftID, streamerID)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrGiftNotFound
		}
		l.Error().Err(result.Error).Str(log.FieldGiftID, giftID).Msg("failed to get gift from db")
		return nil, result.Error
	}
	return model.ToDomain(), nil
}

// CreateGift adds a gift to the streamer's catalog.
func (r *GormGiftRepository) CreateGift(ctx context.Context, gift *domain.Gift) error {
	l := log.Ctx(ctx)

	if gift.ID == "" {
		gift.ID = uuid.New().String()
	}

	model := domain.GiftToModel(gift)
	result := r.db.WithContext(ctx).Create(model)
	if result.Error != nil {
		l.Error().Err(result.Error).Msg("failed to create gift in db")
		return result.Error
	}
	l.Debug().Str(log.FieldGiftID, gift.ID).Str(log.FieldStreamerID, gift.StreamerID).Msg("gift created in db")
	return nil
}

// DeleteGift removes a gift from the streamer's catalog.
func (r *GormGiftRepository) DeleteGift(ctx context.Context, streamerID, giftID string) error {
	l := log.Ctx(ctx)

	result := r.db.WithContext(ctx).
		Where("id = ? AND streamer_id = ?", giftID, streamerID).
		Delete(&domain.GiftModel{})
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldGiftID, giftID).Msg("failed to delete gift from db")
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrGiftNotFound
	}
	return nil
}
