package domain

import (
	"time"

	"gorm.io/gorm"
)

// LoyaltyLevelModel is the GORM model for the loyalty_levels table.
type LoyaltyLevelModel struct {
	ID             string         `gorm:"type:varchar(36);primaryKey"`
	StreamerID     string         `gorm:"type:varchar(36);index;not null"`
	Name           string         `gorm:"type:varchar(100);not null"`
	PointsRequired int64          `gorm:"not null"`
	Reward         string         `gorm:"type:text"`
	CreatedAt      time.Time      `gorm:"autoCreateTime"`
	UpdatedAt      time.Time      `gorm:"autoUpdateTime"`
	DeletedAt      gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for LoyaltyLevelModel.
func (LoyaltyLevelModel) TableName() string {
	return "loyalty_levels"
}

// ToDomain converts LoyaltyLevelModel to a domain LoyaltyLevel.
func (m *LoyaltyLevelModel) ToDomain() *LoyaltyLevel {
	return &LoyaltyLevel{
		ID:             m.ID,
		StreamerID:     m.StreamerID,
		Name:           m.Name,
		PointsRequired: m.PointsRequired,
		Reward:         m.Reward,
	}
}

// LevelToModel converts a domain LoyaltyLevel to LoyaltyLevelModel.
func LevelToModel(l *LoyaltyLevel) *LoyaltyLevelModel {
	return &LoyaltyLevelModel{
		ID:             l.ID,
		StreamerID:     l.StreamerID,
		Name:           l.Name,
		PointsRequired: l.PointsRequired,
		Reward:         l.Reward,
	}
}

// GiftModel is the GORM model for the custom_gifts table.
type GiftModel struct {
	ID            string         `gorm:"type:varchar(36);primaryKey"`
	StreamerID    string         `gorm:"type:varchar(36);index;not null"`
	Name          string         `gorm:"type:varchar(100);not null"`
	CoinCost      int64          `gorm:"not null"`
	PointsAwarded int64          `gorm:"not null"`
	CreatedAt     time.Time      `gorm:"autoCreateTime"`
	DeletedAt     gorm.DeletedAt `gorm:"index"`
}

// TableName specifies the table name for GiftModel.
func (GiftModel) TableName() string {
	return "custom_gifts"
}

// ToDomain converts GiftModel to a domain Gift.
func (m *GiftModel) ToDomain() *Gift {
	return &Gift{
		ID:            m.ID,
		StreamerID:    m.StreamerID,
		Name:          m.Name,
		CoinCost:      m.CoinCost,
		PointsAwarded: m.PointsAwarded,
	}
}

// GiftToModel converts a domain Gift to GiftModel.
func GiftToModel(g *Gift) *GiftModel {
	return &GiftModel{
		ID:            g.ID,
		StreamerID:    g.StreamerID,
		Name:          g.Name,
		CoinCost:      g.CoinCost,
		PointsAwarded: g.PointsAwarded,
	}
}
