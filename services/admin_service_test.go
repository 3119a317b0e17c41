package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymfit/api-server-go/models"
)

func TestGetMetrics(t *testing.T) {
	db := SetupTestDB(t)
	admin := NewAdminService(db)
	members := NewMembershipService(db)
	access := NewAccessService(db)
	payments := NewPaymentService(db)
	classes := NewClassService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)
	seedMembership(t, members, "USR002", true, future)
	seedMembership(t, members, "USR003", false, future)

	_, err := access.EvaluateAccess(ctx, "USR001")
	require.NoError(t, err)
	_, err = access.EvaluateAccess(ctx, "USR002")
	require.NoError(t, err)

	_, err = classes.CreateClass(ctx, models.CreateClassRequest{Name: "Yoga"})
	require.NoError(t, err)

	_, err = payments.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID: "USR001", Amount: 79.99, PaymentMethod: models.PaymentMethodCard,
		Status: models.PaymentStatusCompleted,
	})
	require.NoError(t, err)
	_, err = payments.CreatePayment(ctx, models.CreatePaymentRequest{
		CardID: "USR002", Amount: 39.99, PaymentMethod: models.PaymentMethodCash,
	})
	require.NoError(t, err)

	summary, err := admin.GetMetrics(ctx)
	require.NoError(t, err)

	assert.EqualValues(t, 3, summary.TotalMembers)
	assert.EqualValues(t, 2, summary.ActiveMembers)
	assert.EqualValues(t, 1, summary.InactiveMembers)
	assert.EqualValues(t, 2, summary.EntriesToday)
	assert.EqualValues(t, 1, summary.TotalClasses)
	assert.InDelta(t, 79.99, summary.CompletedRevenue, 0.001)
	assert.EqualValues(t, 1, summary.PendingPayments)
}

func TestGetMetrics_EmptyStore(t *testing.T) {
	db := SetupTestDB(t)
	admin := NewAdminService(db)

	summary, err := admin.GetMetrics(context.Background())
	require.NoError(t, err)

	assert.Zero(t, summary.TotalMembers)
	assert.Zero(t, summary.EntriesToday)
	assert.Zero(t, summary.CompletedRevenue)
}

func TestGetRecentActivity(t *testing.T) {
	db := SetupTestDB(t)
	admin := NewAdminService(db)
	members := NewMembershipService(db)
	access := NewAccessService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)

	for i := 0; i < 3; i++ {
		_, err := access.EvaluateAccess(ctx, "USR001")
		require.NoError(t, err)
	}

	t.Run("newest first with member names", func(t *testing.T) {
		activity, err := admin.GetRecentActivity(ctx, 10)
		require.NoError(t, err)
		require.Len(t, activity, 3)

		for _, entry := range activity {
			assert.Equal(t, "USR001", entry.CardID)
			assert.Equal(t, "Member USR001", entry.MemberName)
			assert.Equal(t, models.EventTypeEntry, entry.EventType)
		}
	})

	t.Run("limit is honored", func(t *testing.T) {
		activity, err := admin.GetRecentActivity(ctx, 2)
		require.NoError(t, err)
		assert.Len(t, activity, 2)
	})

	t.Run("deleted membership keeps events with empty name", func(t *testing.T) {
		require.NoError(t, members.DeleteMembership(ctx, "USR001"))

		activity, err := admin.GetRecentActivity(ctx, 10)
		require.NoError(t, err)
		require.Len(t, activity, 3)
		assert.Empty(t, activity[0].MemberName)
	})
}
