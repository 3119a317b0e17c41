package services

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

// ClassService manages the class schedule records
type ClassService struct {
	db *gorm.DB
}

// NewClassService creates a new class service
func NewClassService(db *gorm.DB) *ClassService {
	return &ClassService{db: db}
}

// CreateClass creates a new class record
func (s *ClassService) CreateClass(ctx context.Context, req models.CreateClassRequest) (*models.Class, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.ValidationError("MISSING_NAME", "name is required")
	}
	if req.Capacity < 0 {
		return nil, apperrors.ValidationError("INVALID_CAPACITY", "capacity cannot be negative")
	}

	class := models.Class{
		ClassID:     "cls_" + uuid.New().String(),
		Name:        req.Name,
		Instructor:  req.Instructor,
		Schedule:    req.Schedule,
		Capacity:    req.Capacity,
		Description: req.Description,
	}

	if err := s.db.WithContext(ctx).Create(&class).Error; err != nil {
		return nil, apperrors.DatabaseError("create class", err)
	}

	slog.Info("Class created", "class_id", class.ClassID, "name", class.Name)
	return &class, nil
}

// GetClass returns one class record
func (s *ClassService) GetClass(ctx context.Context, classID string) (*models.Class, error) {
	var class models.Class
	err := s.db.WithContext(ctx).First(&class, "class_id = ?", classID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError("class")
		}
		return nil, apperrors.DatabaseError("get class", err)
	}
	return &class, nil
}

// ListClasses returns all class records
func (s *ClassService) ListClasses(ctx context.Context) ([]models.Class, error) {
	var classes []models.Class
	if err := s.db.WithContext(ctx).Order("name asc").Find(&classes).Error; err != nil {
		return nil, apperrors.DatabaseError("list classes", err)
	}
	return classes, nil
}

// UpdateClass applies the non-nil fields of the request to an existing class
func (s *ClassService) UpdateClass(ctx context.Context, classID string, req models.UpdateClassRequest) (*models.Class, error) {
	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.ValidationError("MISSING_NAME", "name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Instructor != nil {
		updates["instructor"] = *req.Instructor
	}
	if req.Schedule != nil {
		updates["schedule"] = *req.Schedule
	}
	if req.Capacity != nil {
		if *req.Capacity < 0 {
			return nil, apperrors.ValidationError("INVALID_CAPACITY", "capacity cannot be negative")
		}
		updates["capacity"] = *req.Capacity
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return nil, apperrors.ValidationError("EMPTY_UPDATE", "no fields to update")
	}

	result := s.db.WithContext(ctx).Model(&models.Class{}).
		Where("class_id = ?", classID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.DatabaseError("update class", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFoundError("class")
	}

	return s.GetClass(ctx, classID)
}

// DeleteClass removes a class record
func (s *ClassService) DeleteClass(ctx context.Context, classID string) error {
	result := s.db.WithContext(ctx).Delete(&models.Class{}, "class_id = ?", classID)
	if result.Error != nil {
		return apperrors.DatabaseError("delete class", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundError("class")
	}

	slog.Info("Class deleted", "class_id", classID)
	return nil
}
