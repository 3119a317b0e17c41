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

// defaultMembershipDuration is applied when a create request omits an
// expiration date.
const defaultMembershipDuration = 30 * 24 * time.Hour

// MembershipService manages membership records
type MembershipService struct {
	db *gorm.DB
}

// NewMembershipService creates a new membership service
func NewMembershipService(db *gorm.DB) *MembershipService {
	return &MembershipService{db: db}
}

// CreateMembership creates a new membership record. Omitted fields get
// defaults: tier basic, active, expiring in thirty days. A client-supplied
// card_id enrolls a physical card; otherwise a fresh one is generated.
func (s *MembershipService) CreateMembership(ctx context.Context, req models.CreateMembershipRequest) (*models.MembershipResponse, error) {
	if strings.TrimSpace(req.Name) == "" {
		return nil, apperrors.ValidationError("MISSING_NAME", "name is required")
	}
	if strings.TrimSpace(req.Email) == "" {
		return nil, apperrors.ValidationError("MISSING_EMAIL", "email is required")
	}

	tier := req.MembershipTier
	if tier == "" {
		tier = models.TierBasic
	}
	if !models.ValidTiers[tier] {
		return nil, apperrors.ValidationError("INVALID_TIER", fmt.Sprintf("unknown membership tier %q", tier))
	}

	expiration := req.ExpirationDate
	if expiration == "" {
		expiration = time.Now().UTC().Add(defaultMembershipDuration).Format(time.RFC3339)
	} else if err := validateExpirationInput(expiration); err != nil {
		return nil, err
	}

	active := true
	if req.Active != nil {
		active = *req.Active
	}

	cardID := strings.TrimSpace(req.CardID)
	if cardID == "" {
		cardID = "usr_" + uuid.New().String()
	}

	var emailCount int64
	if err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("email = ?", req.Email).Count(&emailCount).Error; err != nil {
		return nil, apperrors.DatabaseError("check email uniqueness", err)
	}
	if emailCount > 0 {
		return nil, apperrors.ConflictError(fmt.Sprintf("membership with email %s already exists", req.Email))
	}

	membership := models.Membership{
		CardID:         cardID,
		Name:           req.Name,
		Email:          req.Email,
		Phone:          req.Phone,
		MembershipTier: tier,
		Active:         active,
		ExpirationDate: expiration,
	}

	start := time.Now()
	err := s.db.WithContext(ctx).Create(&membership).Error
	monitoring.RecordDBLatency(ctx, "memberships", "insert", time.Since(start))

	if err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) || isUniqueViolation(err) {
			return nil, apperrors.ConflictError(fmt.Sprintf("membership with card_id %s already exists", cardID))
		}
		return nil, apperrors.DatabaseError("create membership", err)
	}

	slog.Info("Membership created", "card_id", cardID, "tier", tier)
	return s.toResponse(&membership, nil), nil
}

// GetMembership returns one membership with its full entry history, oldest
// event first.
func (s *MembershipService) GetMembership(ctx context.Context, cardID string) (*models.MembershipResponse, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperrors.ValidationError("INVALID_CARD_ID", "card_id is required")
	}

	var membership models.Membership
	start := time.Now()
	err := s.db.WithContext(ctx).First(&membership, "card_id = ?", cardID).Error
	monitoring.RecordDBLatency(ctx, "memberships", "select", time.Since(start))

	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError("membership")
		}
		return nil, apperrors.DatabaseError("get membership", err)
	}

	var events []models.AccessEvent
	if err := s.db.WithContext(ctx).
		Where("card_id = ?", cardID).
		Order("timestamp asc").
		Find(&events).Error; err != nil {
		return nil, apperrors.DatabaseError("get entry history", err)
	}

	return s.toResponse(&membership, events), nil
}

// ListMemberships returns a page of membership records with optional tier and
// active filters. Entry histories are omitted from list responses.
func (s *MembershipService) ListMemberships(ctx context.Context, params models.ListMembershipsParams) ([]models.MembershipResponse, int64, error) {
	query := s.db.WithContext(ctx).Model(&models.Membership{})
	if params.MembershipTier != nil {
		query = query.Where("membership_tier = ?", *params.MembershipTier)
	}
	if params.Active != nil {
		query = query.Where("active = ?", *params.Active)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperrors.DatabaseError("count memberships", err)
	}

	var memberships []models.Membership
	start := time.Now()
	err := query.
		Order("created_at desc").
		Limit(params.Limit).
		Offset(params.Offset).
		Find(&memberships).Error
	monitoring.RecordDBLatency(ctx, "memberships", "select", time.Since(start))

	if err != nil {
		return nil, 0, apperrors.DatabaseError("list memberships", err)
	}

	responses := make([]models.MembershipResponse, 0, len(memberships))
	for i := range memberships {
		responses = append(responses, *s.toResponse(&memberships[i], nil))
	}
	return responses, total, nil
}

// UpdateMembership applies the non-nil fields of the request to an existing
// record. Supplied expiration dates must parse; unlike the access evaluator,
// admin writes reject malformed dates instead of storing them.
func (s *MembershipService) UpdateMembership(ctx context.Context, cardID string, req models.UpdateMembershipRequest) (*models.MembershipResponse, error) {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return nil, apperrors.ValidationError("INVALID_CARD_ID", "card_id is required")
	}

	updates := map[string]interface{}{}
	if req.Name != nil {
		if strings.TrimSpace(*req.Name) == "" {
			return nil, apperrors.ValidationError("MISSING_NAME", "name cannot be empty")
		}
		updates["name"] = *req.Name
	}
	if req.Email != nil {
		if strings.TrimSpace(*req.Email) == "" {
			return nil, apperrors.ValidationError("MISSING_EMAIL", "email cannot be empty")
		}
		updates["email"] = *req.Email
	}
	if req.Phone != nil {
		updates["phone"] = *req.Phone
	}
	if req.MembershipTier != nil {
		if !models.ValidTiers[*req.MembershipTier] {
			return nil, apperrors.ValidationError("INVALID_TIER", fmt.Sprintf("unknown membership tier %q", *req.MembershipTier))
		}
		updates["membership_tier"] = *req.MembershipTier
	}
	if req.Active != nil {
		updates["active"] = *req.Active
	}
	if req.ExpirationDate != nil {
		if *req.ExpirationDate != "" {
			if err := validateExpirationInput(*req.ExpirationDate); err != nil {
				return nil, err
			}
		}
		updates["expiration_date"] = *req.ExpirationDate
	}

	if len(updates) == 0 {
		return nil, apperrors.ValidationError("EMPTY_UPDATE", "no fields to update")
	}

	start := time.Now()
	result := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("card_id = ?", cardID).
		Updates(updates)
	monitoring.RecordDBLatency(ctx, "memberships", "update", time.Since(start))

	if result.Error != nil {
		return nil, apperrors.DatabaseError("update membership", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFoundError("membership")
	}

	slog.Info("Membership updated", "card_id", cardID, "fields", len(updates))
	return s.GetMembership(ctx, cardID)
}

// DeleteMembership removes a membership record. The card's entry history is
// kept; access_events is append-only audit data.
func (s *MembershipService) DeleteMembership(ctx context.Context, cardID string) error {
	cardID = strings.TrimSpace(cardID)
	if cardID == "" {
		return apperrors.ValidationError("INVALID_CARD_ID", "card_id is required")
	}

	start := time.Now()
	result := s.db.WithContext(ctx).Delete(&models.Membership{}, "card_id = ?", cardID)
	monitoring.RecordDBLatency(ctx, "memberships", "delete", time.Since(start))

	if result.Error != nil {
		return apperrors.DatabaseError("delete membership", result.Error)
	}
	if result.RowsAffected == 0 {
		return apperrors.NotFoundError("membership")
	}

	slog.Info("Membership deleted", "card_id", cardID)
	return nil
}

// validateExpirationInput rejects dates the evaluator could not later parse
func validateExpirationInput(value string) error {
	if _, err := parseExpiration(value); err != nil {
		return apperrors.ValidationError("INVALID_EXPIRATION_DATE",
			fmt.Sprintf("expiration_date %q is not a recognized timestamp", value))
	}
	return nil
}

// isUniqueViolation matches driver-level duplicate key errors that gorm does
// not translate on every dialect.
func isUniqueViolation(err error) bool {
	if err == nil {
		return false
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "unique") || strings.Contains(msg, "duplicate")
}

func (s *MembershipService) toResponse(m *models.Membership, events []models.AccessEvent) *models.MembershipResponse {
	resp := &models.MembershipResponse{
		CardID:         m.CardID,
		Name:           m.Name,
		Email:          m.Email,
		Phone:          m.Phone,
		MembershipTier: m.MembershipTier,
		Active:         m.Active,
		ExpirationDate: m.ExpirationDate,
		EntryHistory:   events,
		CreatedAt:      m.CreatedAt.UTC().Format(time.RFC3339),
		UpdatedAt:      m.UpdatedAt.UTC().Format(time.RFC3339),
	}
	if m.LastAccess != nil {
		resp.LastAccess = m.LastAccess.UTC().Format(time.RFC3339)
	}
	if resp.EntryHistory == nil {
		resp.EntryHistory = []models.AccessEvent{}
	}
	return resp
}
