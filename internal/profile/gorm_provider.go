package profile

import (
	"context"
	"errors"
	"fmt"

	"Mnemo/internal/models"

	"gorm.io/gorm"
)

// GormProvider reads cognitive state from the user_profiles table in MySQL.
type GormProvider struct {
	db *gorm.DB
}

// NewGormProvider creates a GormProvider and migrates the profile schema.
func NewGormProvider(db *gorm.DB) (*GormProvider, error) {
	if err := db.AutoMigrate(&models.UserProfile{}); err != nil {
		return nil, fmt.Errorf("failed to migrate user profile schema: %w", err)
	}
	return &GormProvider{db: db}, nil
}

// CognitiveState returns the user's score, clamped to [0,100]. A missing
// profile is not an error: the user simply gets the full-trust default.
func (p *GormProvider) CognitiveState(ctx context.Context, userID string) (int, error) {
	var prof models.UserProfile
	err := p.db.WithContext(ctx).Where("user_id = ?", userID).First(&prof).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return models.DefaultCognitiveState, nil
		}
		return 0, fmt.Errorf("failed to load profile for user %s: %w", userID, err)
	}

	state := prof.CognitiveState
	if state < 0 {
		state = 0
	}
	if state > models.DefaultCognitiveState {
		state = models.DefaultCognitiveState
	}
	return state, nil
}
