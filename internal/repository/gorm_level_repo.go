package repository

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/astrolive/loyalty-engine/internal/domain"
	"github.com/astrolive/loyalty-engine/pkg/log"
)

// GormLevelRepository implements LevelRepository using GORM.
type GormLevelRepository struct {
	db *gorm.DB
}

// NewGormLevelRepository creates a new GORM-based level repository.
func NewGormLevelRepository(db *gorm.DB) *GormLevelRepository {
	return &GormLevelRepository{db: db}
}

// GetLevels retrieves the streamer's ladder ordered by points threshold.
func (r *GormLevelRepository) GetLevels(ctx context.Context, streamerID string) ([]domain.LoyaltyLevel, error) {
	l := log.Ctx(ctx)

	var models []domain.LoyaltyLevelModel
	result := r.db.WithContext(ctx).
		Where("streamer_id = ?", streamerID).
		Order("points_required ASC").
		Find(&models)
	if result.Error != nil {
		l.Error().Err(result.Error).Str(log.FieldStreamerID, streamerID).Msg("failed to get levels from db")
		return nil, result.Error
	}

	levels := make([]domain.LoyaltyLevel, len(models))
	for i, model := range models {
		levels[i] = *model.ToDomain()
	}
	return levels, nil
}

// ReplaceLevels swaps the streamer's entire ladder in one transaction. Levels
// without an id get one assigned; the stored ladder is returned sorted.
func (r *GormLevelRepository) ReplaceLevels(ctx context.Context, streamerID string, levels []domain.LoyaltyLevel) ([]domain.LoyaltyLevel, error) {
	l := log.Ctx(ctx)

	models := make([]domain.LoyaltyLevelModel, len(levels))
	for i := range levels {
		levels[i].StreamerID = streamerID
		if levels[i].ID == "" {
			levels[i].ID = uuid.New().String()
		}
		models[i] = *domain.LevelToModel(&levels[i])
	}

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("streamer_id = ?", streamerID).Delete(&domain.LoyaltyLevelModel{}).Error; err != nil {
			return err
		}
		if len(models) == 0 {
			return nil
		}
		return tx.Create(&models).Error
	})
	if err != nil {
		l.Error().Err(err).Str(log.FieldStreamerID, streamerID).Msg("failed to replace levels in db")
		return nil, err
	}

	domain.SortLevels(levels)
	l.Debug().Str(log.FieldStreamerID, streamerID).Int("level_count", len(levels)).Msg("levels replaced in db")
	return levels, nil
}
