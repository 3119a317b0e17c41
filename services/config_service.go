package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

// ConfigService manages the operational key/value configuration table
type ConfigService struct {
	db *gorm.DB
}

// NewConfigService creates a new config service
func NewConfigService(db *gorm.DB) *ConfigService {
	return &ConfigService{db: db}
}

// GetConfig returns one configuration entry
func (s *ConfigService) GetConfig(ctx context.Context, key string) (*models.ConfigEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.ValidationError("INVALID_KEY", "config key is required")
	}

	var entry models.ConfigEntry
	err := s.db.WithContext(ctx).First(&entry, "key = ?", key).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError("config entry")
		}
		return nil, apperrors.DatabaseError("get config entry", err)
	}
	return &entry, nil
}

// ListConfig returns every configuration entry
func (s *ConfigService) ListConfig(ctx context.Context) ([]models.ConfigEntry, error) {
	var entries []models.ConfigEntry
	if err := s.db.WithContext(ctx).Order("key asc").Find(&entries).Error; err != nil {
		return nil, apperrors.DatabaseError("list config entries", err)
	}
	return entries, nil
}

// SetConfig upserts one configuration entry
func (s *ConfigService) SetConfig(ctx context.Context, key, value string) (*models.ConfigEntry, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return nil, apperrors.ValidationError("INVALID_KEY", "config key is required")
	}

	entry := models.ConfigEntry{
		Key:       key,
		Value:     value,
		UpdatedAt: time.Now().UTC(),
	}

	err := s.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "updated_at"}),
	}).Create(&entry).Error
	if err != nil {
		return nil, apperrors.DatabaseError("set config entry", err)
	}

	slog.Info("Config entry set", "key", key)
	return &entry, nil
}

// DeleteConfig removes one configuration entry
func (s *ConfigService) DeleteConfig(ctx context.Context, key string) error {
	key = strings.TrimSpace(key)
	if key == "" {
		return apperrors.ValidationError("INVALID_KEY", "config key is required")
	}

	result := s.db.WithContext(ctx).Delete(&models.ConfigEntry{}, "key = ?", key)
	if result.Error != nil {
		return apperrors.DatabaseError("delete config entry", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundError("config entry")
	}
	return nil
}
