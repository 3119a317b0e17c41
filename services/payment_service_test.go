package services

import (
	"context"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

func TestCreatePayment(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewPaymentService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)

	payment, err := svc.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID:        "USR001",
		Amount:        79.99,
		PaymentMethod: models.PaymentMethodCard,
	})
	require.NoError(t, err)

	assert.NotEmpty(t, payment.PaymentID)
	assert.Equal(t, models.PaymentStatusPending, payment.Status)

	t.Run("unknown card rejected", func(t *testing.T) {
		_, err := svc.CreatePayment(ctx, models.CreatePaymentRequest{
			CardID:        "ZZZ999",
			Amount:        10,
			PaymentMethod: models.PaymentMethodCash,
		})
		require.Error(t, err)

		apiErr := apperrors.GetAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, http.StatusNotFound, apiErr.HTTPStatus)
	})

	t.Run("validation", func(t *testing.T) {
		invalid := []models.CreatePaymentRequest{
			{CardID: "USR001", Amount: 0, PaymentMethod: models.PaymentMethodCard},
			{CardID: "USR001", Amount: -5, PaymentMethod: models.PaymentMethodCard},
			{CardID: "USR001", Amount: 10, PaymentMethod: "bitcoin"},
			{CardID: "USR001", Amount: 10, PaymentMethod: models.PaymentMethodCard, Status: "maybe"},
			{CardID: "", Amount: 10, PaymentMethod: models.PaymentMethodCard},
		}
		for _, req := range invalid {
			_, err := svc.CreatePayment(ctx, req)
			require.Error(t, err)
		}
	})
}

func TestListPayments_Filters(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewPaymentService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)
	seedMembership(t, members, "USR002", true, future)

	_, err := svc.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID: "USR001", Amount: 79.99, PaymentMethod: models.PaymentMethodCard,
		Status: models.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	_, err = svc.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID: "USR002", Amount: 39.99, PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	t.Run("by card", func(t *testing.T) {
		cardID := "USR001"
		payments, err := svc.ListPayments(ctx, models.ListPaymentsParams{CardID: &cardID})
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, "USR001", payments[0].CardID)
	})

	t.Run("by status", func(t *testing.T) {
		status := models.PaymentStatusPending
		payments, err := svc.ListPayments(ctx, models.ListPaymentsParams{Status: &status})
		require.NoError(t, err)
		require.Len(t, payments, 1)
		assert.Equal(t, "USR002", payments[0].CardID)
	})

	t.Run("bad status filter", func(t *testing.T) {
		status := "maybe"
		_, err := svc.ListPayments(ctx, models.ListPaymentsParams{Status: &status})
		require.Error(t, err)
	})
}

func TestUpdatePayment_StatusTransition(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewPaymentService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)

	payment, err := svc.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID: "USR001", Amount: 39.99, PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	completed := models.PaymentStatusCompleted
	updated, err := svc.UpdatePayment(ctx, payment.PaymentID, models.UpdatePaymentRequest{
		Status: &completed,
	})
	require.NoError(t, err)
	assert.Equal(t, models.PaymentStatusCompleted, updated.Status)

	t.Run("unknown payment", func(t *testing.T) {
		_, err := svc.UpdatePayment(ctx, "pay_missing", models.UpdatePaymentRequest{Status: &completed})
		require.Error(t, err)
	})
}
