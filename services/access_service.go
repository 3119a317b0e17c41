package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
	"github.com/gymfit/api-server-go/pkg/monitoring"
)

// Denial and grant reasons returned in AccessDecision.Reason
const (
	ReasonGranted            = "granted"
	ReasonNotFound           = "not_found"
	ReasonMembershipInactive = "membership_inactive"
	ReasonMembershipExpired  = "membership_expired"
)

// expirationLayouts are tried in order when parsing stored expiration values.
// The record store carries timestamps written by more than one generation of
// tooling, including date-only values and naive local timestamps.
var expirationLayouts = []string{
	time.RFC3339,
	time.RFC3339Nano,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02",
}

// AccessService evaluates card admission checks against the record store
type AccessService struct {
	db *gorm.DB
}

// NewAccessService creates a new access service
func NewAccessService(db *gorm.DB) *AccessService {
	return &AccessService{db: db}
}

// EvaluateAccess decides whether the holder of cardID may enter right now.
// A granted decision appends one entry event and stamps last_access inside a
// single transaction; a denied decision performs no writes, so re-presenting
// a denied card is idempotent.
func (s *AccessService) EvaluateAccess(ctx context.Context, cardID string) (*models.AccessDecision, error) {
	start := time.Now()
	defer func() {
		monitoring.RecordDecisionLatency(ctx, time.Since(start))
	}()

	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperrors.ValidationError("INVALID_CARD_ID", "card_id is required")
	}

	var membership models.Membership
	readStart := time.Now()
	err := s.db.WithContext(ctx).First(&membership, "card_id = ?", cardID).Error
	monitoring.RecordDBLatency(ctx, "memberships", "select", time.Since(readStart))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			decision := &models.AccessDecision{
				Access: false,
				Active: false,
				Reason: ReasonNotFound,
			}
			monitoring.RecordAccessDecision(ctx, false, ReasonNotFound)
			slog.Info("Access denied", "card_id", cardID, "reason", ReasonNotFound)
			return decision, nil
		}
		monitoring.RecordDecisionFailure(ctx, "store_read")
		return nil, apperrors.DatabaseError("lookup membership", err)
	}

	decision := &models.AccessDecision{
		UserName:       membership.Name,
		Active:         membership.Active,
		MembershipTier: membership.MembershipTier,
		Expiration:     membership.ExpirationDate,
	}

	if !membership.Active {
		decision.Access = false
		decision.Reason = ReasonMembershipInactive
		monitoring.RecordAccessDecision(ctx, false, ReasonMembershipInactive)
		slog.Info("Access denied", "card_id", cardID, "reason", ReasonMembershipInactive)
		return decision, nil
	}

	if expired := s.isExpired(ctx, cardID, membership.ExpirationDate); expired {
		decision.Access = false
		decision.Reason = ReasonMembershipExpired
		monitoring.RecordAccessDecision(ctx, false, ReasonMembershipExpired)
		slog.Info("Access denied", "card_id", cardID, "reason", ReasonMembershipExpired)
		return decision, nil
	}

	if err := s.recordEntry(ctx, cardID); err != nil {
		monitoring.RecordDecisionFailure(ctx, "store_write")
		return nil, err
	}

	decision.Access = true
	decision.Reason = ReasonGranted
	monitoring.RecordAccessDecision(ctx, true, ReasonGranted)
	slog.Info("Access granted", "card_id", cardID, "tier", membership.MembershipTier)
	return decision, nil
}

// isExpired reports whether the stored expiration has passed. An empty value
// means no expiration. A value that parses under none of the known layouts
// does NOT deny entry: legacy rows with hand-edited dates must keep admitting
// their holders, so the row is logged and counted instead.
func (s *AccessService) isExpired(ctx context.Context, cardID, expirationDate string) bool {
	if strings.TrimSpace(expirationDate) == "" {
		return false
	}

	expiry, err := parseExpiration(expirationDate)
	if err != nil {
		slog.Warn("Unparseable expiration date on record, treating as non-expiring",
			"card_id", cardID, "expiration_date", expirationDate)
		monitoring.RecordDecisionFailure(ctx, "malformed_expiration")
		return false
	}

	return !time.Now().UTC().Before(expiry)
}

// parseExpiration tries each known timestamp layout in order. Layouts without
// a zone are interpreted as UTC.
func parseExpiration(value string) (time.Time, error) {
	value = strings.TrimSpace(value)
	for _, layout := range expirationLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognized expiration format %q", value)
}

// recordEntry appends exactly one entry event and updates last_access in the
// same transaction. The event row is the source of truth; last_access is a
// denormalized convenience column.
func (s *AccessService) recordEntry(ctx context.Context, cardID string) error {
	now := time.Now().UTC()
	event := models.AccessEvent{
		EventID:   "evt_" + uuid.New().String(),
		CardID:    cardID,
		EventType: models.EventTypeEntry,
		Timestamp: now,
	}

	writeStart := time.Now()
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&event).Error; err != nil {
			return err
		}
		return tx.Model(&models.Membership{}).
			Where("card_id = ?", cardID).
			Update("last_access", now).Error
	})
	monitoring.RecordDBLatency(ctx, "access_events", "insert", time.Since(writeStart))

	if err != nil {
		return apperrors.DatabaseError("record entry event", err)
	}
	return nil
}
