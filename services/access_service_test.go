package services

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gymfit/api-server-go/models"
	apperrors "github.com/gymfit/api-server-go/pkg/errors"
)

func seedMembership(t *testing.T, svc *MembershipService, cardID string, active bool, expiration string) {
	t.Helper()
	ctx := context.Background()

	resp, err := svc.CreateMembership(ctx, models.CreateMembershipRequest{
		CardID:         cardID,
		Name:           "Member " + cardID,
		Email:          cardID + "@example.com",
		Active:         &active,
		ExpirationDate: expiration,
	})
	require.NoError(t, err)
	require.Equal(t, cardID, resp.CardID)
}

func TestEvaluateAccess_Granted(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR001", true, future)

	decision, err := svc.EvaluateAccess(ctx, "USR001")
	require.NoError(t, err)

	assert.True(t, decision.Access)
	assert.Equal(t, ReasonGranted, decision.Reason)
	assert.Equal(t, "Member USR001", decision.UserName)
	assert.True(t, decision.Active)
	assert.Equal(t, models.TierBasic, decision.MembershipTier)
	assert.Equal(t, future, decision.Expiration)
}

func TestEvaluateAccess_UnknownCard(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	ctx := context.Background()

	decision, err := svc.EvaluateAccess(ctx, "ZZZ999")
	require.NoError(t, err)

	assert.False(t, decision.Access)
	assert.Equal(t, ReasonNotFound, decision.Reason)
	assert.Empty(t, decision.UserName)

	// Unknown cards must not leave any trace in the event history
	var count int64
	require.NoError(t, db.Model(&models.AccessEvent{}).Count(&count).Error)
	assert.Zero(t, count)
}

func TestEvaluateAccess_InactiveMembership(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(30 * 24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR003", false, future)

	decision, err := svc.EvaluateAccess(ctx, "USR003")
	require.NoError(t, err)

	assert.False(t, decision.Access)
	assert.Equal(t, ReasonMembershipInactive, decision.Reason)
	assert.False(t, decision.Active)
}

func TestEvaluateAccess_InactiveTakesPrecedenceOverExpired(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	past := time.Now().UTC().Add(-5 * 24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR003", false, past)

	decision, err := svc.EvaluateAccess(ctx, "USR003")
	require.NoError(t, err)

	assert.False(t, decision.Access)
	assert.Equal(t, ReasonMembershipInactive, decision.Reason)
}

func TestEvaluateAccess_ExpiredMembership(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	past := time.Now().UTC().Add(-1 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR010", true, past)

	decision, err := svc.EvaluateAccess(ctx, "USR010")
	require.NoError(t, err)

	assert.False(t, decision.Access)
	assert.Equal(t, ReasonMembershipExpired, decision.Reason)
	assert.True(t, decision.Active)
}

func TestEvaluateAccess_NoExpirationAdmits(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	seedMembership(t, members, "USR011", true, "")
	// CreateMembership fills a default expiration, blank it like a legacy row
	require.NoError(t, db.Model(&models.Membership{}).
		Where("card_id = ?", "USR011").
		Update("expiration_date", "").Error)

	decision, err := svc.EvaluateAccess(ctx, "USR011")
	require.NoError(t, err)

	assert.True(t, decision.Access)
	assert.Equal(t, ReasonGranted, decision.Reason)
}

func TestEvaluateAccess_MalformedExpirationAdmits(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	seedMembership(t, members, "USR012", true, "")
	// Hand-edited legacy rows carry values no layout parses. Those members
	// must keep getting in; the row is logged, not rejected.
	require.NoError(t, db.Model(&models.Membership{}).
		Where("card_id = ?", "USR012").
		Update("expiration_date", "next-summer").Error)

	decision, err := svc.EvaluateAccess(ctx, "USR012")
	require.NoError(t, err)

	assert.True(t, decision.Access)
	assert.Equal(t, ReasonGranted, decision.Reason)
}

func TestEvaluateAccess_DateOnlyExpiration(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	t.Run("future date admits", func(t *testing.T) {
		future := time.Now().UTC().Add(48 * time.Hour).Format("2006-01-02")
		seedMembership(t, members, "USR020", true, future)

		decision, err := svc.EvaluateAccess(ctx, "USR020")
		require.NoError(t, err)
		assert.True(t, decision.Access)
	})

	t.Run("past date denies", func(t *testing.T) {
		past := time.Now().UTC().Add(-48 * time.Hour).Format("2006-01-02")
		seedMembership(t, members, "USR021", true, past)

		decision, err := svc.EvaluateAccess(ctx, "USR021")
		require.NoError(t, err)
		assert.False(t, decision.Access)
		assert.Equal(t, ReasonMembershipExpired, decision.Reason)
	})
}

func TestEvaluateAccess_GrantAppendsExactlyOneEvent(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR030", true, future)

	before := time.Now().UTC()
	decision, err := svc.EvaluateAccess(ctx, "USR030")
	require.NoError(t, err)
	require.True(t, decision.Access)

	var events []models.AccessEvent
	require.NoError(t, db.Where("card_id = ?", "USR030").Find(&events).Error)
	require.Len(t, events, 1)
	assert.Equal(t, models.EventTypeEntry, events[0].EventType)
	assert.NotEmpty(t, events[0].EventID)
	assert.False(t, events[0].Timestamp.Before(before.Add(-time.Second)))

	// last_access is stamped in the same transaction
	var membership models.Membership
	require.NoError(t, db.First(&membership, "card_id = ?", "USR030").Error)
	require.NotNil(t, membership.LastAccess)

	// A second swipe appends a second event, never overwrites
	_, err = svc.EvaluateAccess(ctx, "USR030")
	require.NoError(t, err)
	require.NoError(t, db.Where("card_id = ?", "USR030").Find(&events).Error)
	assert.Len(t, events, 2)
}

func TestEvaluateAccess_DenialWritesNothing(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	members := NewMembershipService(db)
	ctx := context.Background()

	future := time.Now().UTC().Add(24 * time.Hour).Format(time.RFC3339)
	seedMembership(t, members, "USR040", false, future)

	for i := 0; i < 3; i++ {
		decision, err := svc.EvaluateAccess(ctx, "USR040")
		require.NoError(t, err)
		assert.False(t, decision.Access)
	}

	var count int64
	require.NoError(t, db.Model(&models.AccessEvent{}).Where("card_id = ?", "USR040").Count(&count).Error)
	assert.Zero(t, count)

	var membership models.Membership
	require.NoError(t, db.First(&membership, "card_id = ?", "USR040").Error)
	assert.Nil(t, membership.LastAccess)
}

func TestEvaluateAccess_EmptyCardID(t *testing.T) {
	db := SetupTestDB(t)
	svc := NewAccessService(db)
	ctx := context.Background()

	for _, cardID := range []string{"", "   "} {
		_, err := svc.EvaluateAccess(ctx, cardID)
		require.Error(t, err)

		apiErr := apperrors.GetAPIError(err)
		require.NotNil(t, apiErr)
		assert.Equal(t, apperrors.ErrorTypeValidation, apiErr.Type)
	}
}

func TestParseExpiration(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		wantErr bool
	}{
		{"rfc3339", "2026-01-02T15:04:05Z", false},
		{"rfc3339 with offset", "2026-01-02T15:04:05+05:30", false},
		{"rfc3339 nano", "2026-01-02T15:04:05.123456789Z", false},
		{"naive isoformat", "2026-01-02T15:04:05.123456", false},
		{"date only", "2026-01-02", false},
		{"whitespace padded", "  2026-01-02T15:04:05Z  ", false},
		{"garbage", "next-summer", true},
		{"empty", "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			parsed, err := parseExpiration(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, time.UTC, parsed.Location())
		})
	}
}
