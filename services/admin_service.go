package services

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

// AdminService aggregates dashboard metrics over the record store
type AdminService struct {
	db *gorm.DB
}

// NewAdminService creates a new admin service
func NewAdminService(db *gorm.DB) *AdminService {
	return &AdminService{db: db}
}

// GetMetrics computes the dashboard summary. Each figure is read in its own
// query; the summary is a point-in-time snapshot, not a consistent view.
func (s *AdminService) GetMetrics(ctx context.Context) (*models.MetricsSummary, error) {
	summary := &models.MetricsSummary{}
	db := s.db.WithContext(ctx)

	if err := db.Model(&models.Membership{}).Count(&summary.TotalMembers).Error; err != nil {
		return nil, apperrors.DatabaseError("count members", err)
	}
	if err := db.Model(&models.Membership{}).Where("active = ?", true).Count(&summary.ActiveMembers).Error; err != nil {
		return nil, apperrors.DatabaseError("count active members", err)
	}
	summary.InactiveMembers = summary.TotalMembers - summary.ActiveMembers

	startOfDay := time.Now().UTC().Truncate(24 * time.Hour)
	if err := db.Model(&models.AccessEvent{}).
		Where("event_type = ? AND timestamp >= ?", models.EventTypeEntry, startOfDay).
		Count(&summary.EntriesToday).Error; err != nil {
		return nil, apperrors.DatabaseError("count entries today", err)
	}

	if err := db.Model(&models.Class{}).Count(&summary.TotalClasses).Error; err != nil {
		return nil, apperrors.DatabaseError("count classes", err)
	}

	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusCompleted).
		Select("COALESCE(SUM(amount), 0)").
		Scan(&summary.CompletedRevenue).Error; err != nil {
		return nil, apperrors.DatabaseError("sum completed revenue", err)
	}

	if err := db.Model(&models.Payment{}).
		Where("status = ?", models.PaymentStatusPending).
		Count(&summary.PendingPayments).Error; err != nil {
		return nil, apperrors.DatabaseError("count pending payments", err)
	}

	return summary, nil
}

// GetRecentActivity returns the latest access events joined with member
// names. Events for deleted memberships keep an empty name.
func (s *AdminService) GetRecentActivity(ctx context.Context, limit int) ([]models.ActivityEntry, error) {
	if limit < 1 {
		limit = 20
	}

	type activityRow struct {
		EventID    string
		CardID     string
		MemberName string
		EventType  string
		Timestamp  time.Time
	}

	var rows []activityRow
	err := s.db.WithContext(ctx).
		Table("access_events").
		Select("access_events.event_id, access_events.card_id, COALESCE(memberships.name, '') AS member_name, access_events.event_type, access_events.timestamp").
		Joins("LEFT JOIN memberships ON memberships.card_id = access_events.card_id").
		Order("access_events.timestamp desc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, apperrors.DatabaseError("list recent activity", err)
	}

	entries := make([]models.ActivityEntry, 0, len(rows))
	for _, row := range rows {
		entries = append(entries, models.ActivityEntry{
			EventID:    row.EventID,
			CardID:     row.CardID,
			MemberName: row.MemberName,
			EventType:  row.EventType,
			Timestamp:  row.Timestamp.UTC().Format(time.RFC3339),
		})
	}
	return entries, nil
}
