package models

import "time"

// Membership tiers accepted by the API
const (
	TierBasic   = "basic"
	TierPremium = "premium"
	TierVIP     = "vip"
)

// Access event types
const (
	EventTypeEntry = "entry"
	EventTypeExit  = "exit"
)

// Payment methods
const (
	PaymentMethodCard     = "card"
	PaymentMethodCash     = "cash"
	PaymentMethodTransfer = "transfer"
)

// Payment statuses
const (
	PaymentStatusPending   = "pending"
	PaymentStatusCompleted = "completed"
	PaymentStatusFailed    = "failed"
)

// ValidTiers maps each accepted membership tier to true
var ValidTiers = map[string]bool{
	TierBasic:   true,
	TierPremium: true,
	TierVIP:     true,
}

// ValidPaymentMethods maps each accepted payment method to true
var ValidPaymentMethods = map[string]bool{
	PaymentMethodCard:     true,
	PaymentMethodCash:     true,
	PaymentMethodTransfer: true,
}

// ValidPaymentStatuses maps each accepted payment status to true
var ValidPaymentStatuses = map[string]bool{
	PaymentStatusPending:   true,
	PaymentStatusCompleted: true,
	PaymentStatusFailed:    true,
}

// Membership represents the memberships table. Column names match the
// historical record store so previously persisted rows stay readable.
type Membership struct {
	CardID         string `gorm:"primarykey;column:card_id" json:"card_id"`
	Name           string `gorm:"column:name;not null" json:"name"`
	Email          string `gorm:"column:email;not null" json:"email"`
	Phone          string `gorm:"column:phone" json:"phone"`
	MembershipTier string `gorm:"column:membership_tier;not null;default:basic" json:"membership_tier"`
	Active         bool   `gorm:"column:active;not null;default:true" json:"active"`
	// ExpirationDate holds an RFC3339 timestamp, or "" when no expiration is
	// enforced. Legacy rows may carry malformed values; the access evaluator
	// decides how those are treated.
	ExpirationDate string     `gorm:"column:expiration_date" json:"expiration_date"`
	LastAccess     *time.Time `gorm:"column:last_access" json:"last_access,omitempty"`
	BaseModel
}

// TableName sets the table name for GORM
func (Membership) TableName() string {
	return "memberships"
}

// AccessEvent is one row of the append-only entry history. The evaluator only
// ever inserts rows here; an insert is an atomic append, so concurrent checks
// for the same card cannot lose events.
type AccessEvent struct {
	EventID   string    `gorm:"primarykey;column:event_id" json:"event_id"`
	CardID    string    `gorm:"column:card_id;index;not null" json:"card_id"`
	EventType string    `gorm:"column:event_type;not null" json:"type"`
	Timestamp time.Time `gorm:"column:timestamp;not null" json:"timestamp"`
}

// TableName sets the table name for GORM
func (AccessEvent) TableName() string {
	return "access_events"
}

// Administrator represents the administrators table
type Administrator struct {
	AdminID      string `gorm:"primarykey;column:admin_id" json:"admin_id"`
	Email        string `gorm:"column:email;uniqueIndex;not null" json:"email"`
	PasswordHash string `gorm:"column:password_hash;not null" json:"-"`
	Name         string `gorm:"column:name" json:"name"`
	Role         string `gorm:"column:role;not null;default:admin" json:"role"`
	BaseModel
}

// TableName sets the table name for GORM
func (Administrator) TableName() string {
	return "administrators"
}

// Class represents the classes table
type Class struct {
	ClassID     string `gorm:"primarykey;column:class_id" json:"class_id"`
	Name        string `gorm:"column:name;not null" json:"name"`
	Instructor  string `gorm:"column:instructor" json:"instructor"`
	Schedule    string `gorm:"column:schedule" json:"schedule"`
	Capacity    int    `gorm:"column:capacity" json:"capacity"`
	Description string `gorm:"column:description" json:"description"`
	BaseModel
}

// TableName sets the table name for GORM
func (Class) TableName() string {
	return "classes"
}

// Payment represents the payments table
type Payment struct {
	PaymentID     string  `gorm:"primarykey;column:payment_id" json:"payment_id"`
	CardID        string  `gorm:"column:card_id;index" json:"card_id"`
	Amount        float64 `gorm:"column:amount;not null" json:"amount"`
	PaymentMethod string  `gorm:"column:payment_method;not null" json:"payment_method"`
	Status        string  `gorm:"column:status;not null;default:pending" json:"status"`
	Description   string  `gorm:"column:description" json:"description"`
	BaseModel
}

// TableName sets the table name for GORM
func (Payment) TableName() string {
	return "payments"
}

// ConfigEntry represents one key/value row of the config table
type ConfigEntry struct {
	Key       string    `gorm:"primarykey;column:key" json:"key"`
	Value     string    `gorm:"column:value" json:"value"`
	UpdatedAt time.Time `gorm:"column:updated_at;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

// TableName sets the table name for GORM
func (ConfigEntry) TableName() string {
	return "config_entries"
}
