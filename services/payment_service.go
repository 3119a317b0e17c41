package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

// PaymentService records member payments
type PaymentService struct {
	db *gorm.DB
}

// NewPaymentService creates a new payment service
func NewPaymentService(db *gorm.DB) *PaymentService {
	return &PaymentService{db: db}
}

// CreatePayment records a new payment. The card must belong to an existing
// membership so payments cannot be orphaned.
func (s *PaymentService) CreatePayment(ctx context.Context, req models.CreatePaymentRequest) (*models.Payment, error) {
	cardID := strings.TrimSpace(req.CardID)
	if cardID == "" {
		return nil, apperrors.ValidationError("INVALID_CARD_ID", "card_id is required")
	}
	if req.Amount <= 0 {
		return nil, apperrors.ValidationError("INVALID_AMOUNT", "amount must be positive")
	}
	if !models.ValidPaymentMethods[req.PaymentMethod] {
		return nil, apperrors.ValidationError("INVALID_PAYMENT_METHOD", fmt.Sprintf("unknown payment method %q", req.PaymentMethod))
	}

	status := req.Status
	if status == "" {
		status = models.PaymentStatusPending
	}
	if !models.ValidPaymentStatuses[status] {
		return nil, apperrors.ValidationError("INVALID_STATUS", fmt.Sprintf("unknown payment status %q", status))
	}

	var count int64
	if err := s.db.WithContext(ctx).Model(&models.Membership{}).
		Where("card_id = ?", cardID).Count(&count).Error; err != nil {
		return nil, apperrors.DatabaseError("verify membership", err)
	}
	if count == 0 {
		return nil, apperrors.NotFoundError("membership")
	}

	payment := models.Payment{
		PaymentID:     "pay_" + uuid.New().String(),
		CardID:        cardID,
		Amount:        req.Amount,
		PaymentMethod: req.PaymentMethod,
		Status:        status,
		Description:   req.Description,
	}

	if err := s.db.WithContext(ctx).Create(&payment).Error; err != nil {
		return nil, apperrors.DatabaseError("create payment", err)
	}

	slog.Info("Payment recorded", "payment_id", payment.PaymentID, "card_id", cardID, "amount", req.Amount)
	return &payment, nil
}

// GetPayment returns one payment record
func (s *PaymentService) GetPayment(ctx context.Context, paymentID string) (*models.Payment, error) {
	var payment models.Payment
	err := s.db.WithContext(ctx).First(&payment, "payment_id = ?", paymentID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.NotFoundError("payment")
		}
		return nil, apperrors.DatabaseError("get payment", err)
	}
	return &payment, nil
}

// ListPayments returns payment records with optional card and status filters
func (s *PaymentService) ListPayments(ctx context.Context, params models.ListPaymentsParams) ([]models.Payment, error) {
	query := s.db.WithContext(ctx).Model(&models.Payment{})
	if params.CardID != nil {
		query = query.Where("card_id = ?", *params.CardID)
	}
	if params.Status != nil {
		if !models.ValidPaymentStatuses[*params.Status] {
			return nil, apperrors.ValidationError("INVALID_STATUS", fmt.Sprintf("unknown payment status %q", *params.Status))
		}
		query = query.Where("status = ?", *params.Status)
	}

	var payments []models.Payment
	if err := query.Order("created_at desc").Find(&payments).Error; err != nil {
		return nil, apperrors.DatabaseError("list payments", err)
	}
	return payments, nil
}

// UpdatePayment applies status transitions and description edits
func (s *PaymentService) UpdatePayment(ctx context.Context, paymentID string, req models.UpdatePaymentRequest) (*models.Payment, error) {
	updates := map[string]interface{}{}
	if req.Status != nil {
		if !models.ValidPaymentStatuses[*req.Status] {
			return nil, apperrors.ValidationError("INVALID_STATUS", fmt.Sprintf("unknown payment status %q", *req.Status))
		}
		updates["status"] = *req.Status
	}
	if req.Description != nil {
		updates["description"] = *req.Description
	}

	if len(updates) == 0 {
		return nil, apperrors.ValidationError("EMPTY_UPDATE", "no fields to update")
	}

	result := s.db.WithContext(ctx).Model(&models.Payment{}).
		Where("payment_id = ?", paymentID).
		Updates(updates)
	if result.Error != nil {
		return nil, apperrors.DatabaseError("update payment", result.Error)
	}
	if result.RowsAffected == 0 {
		return nil, apperrors.NotFoundError("payment")
	}

	return s.GetPayment(ctx, paymentID)
}
