package models

// AccessDecision is the evaluator's answer for one presented card.
type AccessDecision struct {
	Access         bool   `json:"access"`
	UserName       string `json:"user_name,omitempty"`
	Active         bool   `json:"active"`
	MembershipTier string `json:"membership_tier,omitempty"`
	Expiration     string `json:"expiration,omitempty"`
	Reason         string `json:"reason"`
}

// CheckAccessRequest is the body accepted by POST /check_access. Deployed
// RFID readers submit this shape.
type CheckAccessRequest struct {
	CardID string `json:"card_id"`
}

// CreateMembershipRequest creates a new membership record
type CreateMembershipRequest struct {
	// CardID is optional; readers enrolling a physical card submit the RFID
	// identifier, otherwise the server generates a fresh one.
	CardID         string `json:"card_id,omitempty"`
	Name           string `json:"name"`
	Email          string `json:"email"`
	Phone          string `json:"phone,omitempty"`
	MembershipTier string `json:"membership_tier,omitempty"`
	Active         *bool  `json:"active,omitempty"`
	ExpirationDate string `json:"expiration_date,omitempty"`
}

// UpdateMembershipRequest updates an existing membership record. Nil fields
// are left untouched.
type UpdateMembershipRequest struct {
	Name           *string `json:"name,omitempty"`
	Email          *string `json:"email,omitempty"`
	Phone          *string `json:"phone,omitempty"`
	MembershipTier *string `json:"membership_tier,omitempty"`
	Active         *bool   `json:"active,omitempty"`
	ExpirationDate *string `json:"expiration_date,omitempty"`
}

// MembershipResponse is the API representation of a membership record
type MembershipResponse struct {
	CardID         string        `json:"card_id"`
	Name           string        `json:"name"`
	Email          string        `json:"email"`
	Phone          string        `json:"phone"`
	MembershipTier string        `json:"membership_tier"`
	Active         bool          `json:"active"`
	ExpirationDate string        `json:"expiration_date"`
	LastAccess     string        `json:"last_access,omitempty"`
	EntryHistory   []AccessEvent `json:"entry_history"`
	CreatedAt      string        `json:"created_at"`
	UpdatedAt      string        `json:"updated_at"`
}

// ListMembershipsParams filters and paginates GET /memberships
type ListMembershipsParams struct {
	Limit          int
	Offset         int
	MembershipTier *string
	Active         *bool
}

// CreateClassRequest creates a new class
type CreateClassRequest struct {
	Name        string `json:"name"`
	Instructor  string `json:"instructor,omitempty"`
	Schedule    string `json:"schedule,omitempty"`
	Capacity    int    `json:"capacity,omitempty"`
	Description string `json:"description,omitempty"`
}

// UpdateClassRequest updates an existing class
type UpdateClassRequest struct {
	Name        *string `json:"name,omitempty"`
	Instructor  *string `json:"instructor,omitempty"`
	Schedule    *string `json:"schedule,omitempty"`
	Capacity    *int    `json:"capacity,omitempty"`
	Description *string `json:"description,omitempty"`
}

// CreatePaymentRequest records a new payment
type CreatePaymentRequest struct {
	CardID        string  `json:"card_id"`
	Amount        float64 `json:"amount"`
	PaymentMethod string  `json:"payment_method"`
	Status        string  `json:"status,omitempty"`
	Description   string  `json:"description,omitempty"`
}

// UpdatePaymentRequest updates a recorded payment (status transitions)
type UpdatePaymentRequest struct {
	Status      *string `json:"status,omitempty"`
	Description *string `json:"description,omitempty"`
}

// ListPaymentsParams filters GET /payments
type ListPaymentsParams struct {
	CardID *string
	Status *string
}

// SetConfigRequest upserts one config key
type SetConfigRequest struct {
	Value string `json:"value"`
}

// MetricsSummary is the aggregation returned by GET /admin/metrics
type MetricsSummary struct {
	TotalMembers     int64   `json:"total_members"`
	ActiveMembers    int64   `json:"active_members"`
	InactiveMembers  int64   `json:"inactive_members"`
	EntriesToday     int64   `json:"entries_today"`
	TotalClasses     int64   `json:"total_classes"`
	CompletedRevenue float64 `json:"completed_revenue"`
	PendingPayments  int64   `json:"pending_payments"`
}

// ActivityEntry is one row of GET /admin/recent-activity
type ActivityEntry struct {
	EventID    string `json:"event_id"`
	CardID     string `json:"card_id"`
	MemberName string `json:"member_name"`
	EventType  string `json:"type"`
	Timestamp  string `json:"timestamp"`
}
