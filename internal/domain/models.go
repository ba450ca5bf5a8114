// Package domain defines the persistence models for tenants, customers,
// conversation turns, escalations, and intent logs. These types are mapped
// with GORM and form the core data layer of the auto-reply platform.
package domain

import (
	"time"
)

// Conversation roles.
const (
	RoleUser      = "user"
	RoleAssistant = "assistant"
	RoleSystem    = "system"
)

// Escalation statuses.
const (
	EscalationPending  = "pending"
	EscalationAssigned = "assigned"
	EscalationResolved = "resolved"
	EscalationExpired  = "expired"
)

// Tenant represents a business account using the platform. Inbound WhatsApp
// traffic is routed to a tenant exclusively by its WhatsAppPhoneNumberID; the
// access token is used for outbound sends on the tenant's behalf.
//
// Fields:
//   - ID: stable UUID primary key (char(36)).
//   - WhatsAppPhoneNumberID: globally unique routing key for inbound webhooks.
//   - WhatsAppAccessToken: Graph API bearer token (secret, never serialized).
//   - BrandTone / ServicesDescription: free text injected into the AI prompt.
//   - IsActive: soft-disable flag; inactive tenants are never routed to.
type Tenant struct {
	ID                    string    `json:"id"                       gorm:"type:char(36);primaryKey"`
	BusinessName          string    `json:"business_name"            gorm:"type:varchar(255);not null"`
	WhatsAppPhoneNumberID string    `json:"whatsapp_phone_number_id" gorm:"column:whatsapp_phone_number_id;type:varchar(64);not null;uniqueIndex:ux_clients_phone_number_id"`
	WhatsAppAccessToken   string    `json:"-"                        gorm:"column:whatsapp_access_token;type:text;not null"`
	BrandTone             string    `json:"brand_tone"               gorm:"type:varchar(255);not null;default:'professional and friendly'"`
	ServicesDescription   string    `json:"services_description"     gorm:"type:text"`
	DefaultLanguage       string    `json:"default_language"         gorm:"type:varchar(16);not null;default:'en'"`
	EscalationEmail       string    `json:"escalation_email"         gorm:"type:varchar(255)"`
	EscalationWhatsApp    string    `json:"escalation_whatsapp"      gorm:"column:escalation_whatsapp;type:varchar(32)"`
	IsActive              BoolInt   `json:"is_active"                gorm:"type:integer;not null;default:1"`
	CreatedAt             time.Time `json:"created_at"`
	UpdatedAt             time.Time `json:"updated_at"`
}

// TableName returns the database table name for Tenant. The table keeps the
// original "clients" name so existing data remains addressable.
func (Tenant) TableName() string { return "clients" }

// Customer is the end-user chatting with a tenant, unique per
// (tenant, phone number) pair. IsEscalated is sticky: once set, every
// subsequent inbound message bypasses the AI until an operator resolves the
// escalation.
type Customer struct {
	ID            string     `json:"id"              gorm:"type:char(36);primaryKey"`
	TenantID      string     `json:"tenant_id"       gorm:"column:client_id;type:char(36);not null;index:idx_customers_client;uniqueIndex:ux_customers_client_phone,priority:1"`
	PhoneNumber   string     `json:"phone_number"    gorm:"type:varchar(32);not null;index:idx_customers_phone;uniqueIndex:ux_customers_client_phone,priority:2"`
	DisplayName   string     `json:"display_name"    gorm:"type:varchar(255)"`
	FirstSeenAt   time.Time  `json:"first_seen_at"`
	LastMessageAt time.Time  `json:"last_message_at" gorm:"index"`
	IsEscalated   BoolInt    `json:"is_escalated"    gorm:"type:integer;not null;default:0"`
	EscalatedAt   *time.Time `json:"escalated_at,omitempty"`
	TotalMessages int        `json:"total_messages"  gorm:"not null;default:0"`
	CreatedAt     time.Time  `json:"created_at"`
	UpdatedAt     time.Time  `json:"updated_at"`

	// Tenant is the owning business. Customers are cascade-deleted with it.
	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Customer.
func (Customer) TableName() string { return "customers" }

// ConversationTurn is one stored message, inbound or outbound, in a
// tenant/customer history. Turns are append-only; ordering by CreatedAt
// defines the history window used for prompt construction.
type ConversationTurn struct {
	ID                string    `json:"id"                  gorm:"type:char(36);primaryKey"`
	TenantID          string    `json:"tenant_id"           gorm:"column:client_id;type:char(36);not null;index:idx_conversations_client"`
	CustomerID        string    `json:"customer_id"         gorm:"type:char(36);not null;index:idx_conversations_customer"`
	PhoneNumber       string    `json:"phone_number"        gorm:"type:varchar(32);not null;index:idx_conversations_phone,priority:1"`
	Role              string    `json:"role"                gorm:"type:varchar(16);not null;check:role IN ('user','assistant','system')"`
	MessageText       string    `json:"message_text"        gorm:"type:text;not null"`
	WhatsAppMessageID string    `json:"whatsapp_message_id" gorm:"column:whatsapp_message_id;type:varchar(128)"`
	DetectedIntent    string    `json:"detected_intent"     gorm:"type:varchar(32);index"`
	TokensUsed        int       `json:"tokens_used"         gorm:"not null;default:0"`
	CreatedAt         time.Time `json:"created_at"          gorm:"index:idx_conversations_phone,priority:2"`

	Tenant   Tenant   `json:"-" gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Customer Customer `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for ConversationTurn.
func (ConversationTurn) TableName() string { return "conversations" }

// Escalation records a single handoff from AI to human handling. A customer
// may accumulate several escalations over time; only one transition happens
// per triggering message.
type Escalation struct {
	ID             string     `json:"id"              gorm:"type:char(36);primaryKey"`
	TenantID       string     `json:"tenant_id"       gorm:"column:client_id;type:char(36);not null;index:idx_escalations_client"`
	CustomerID     string     `json:"customer_id"     gorm:"type:char(36);not null;index"`
	PhoneNumber    string     `json:"phone_number"    gorm:"type:varchar(32);not null"`
	Reason         string     `json:"reason"          gorm:"type:text"`
	TriggerMessage string     `json:"trigger_message" gorm:"type:text"`
	Status         string     `json:"status"          gorm:"type:varchar(16);not null;default:'pending';index:idx_escalations_status;check:status IN ('pending','assigned','resolved','expired')"`
	AssignedTo     string     `json:"assigned_to"     gorm:"type:varchar(255)"`
	ResolvedAt     *time.Time `json:"resolved_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`

	Tenant   Tenant   `json:"-" gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
	Customer Customer `json:"-" gorm:"foreignKey:CustomerID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for Escalation.
func (Escalation) TableName() string { return "escalations" }

// IntentLog is the per-message classification audit trail, kept separate from
// conversation turns so analytics can evolve independently of chat history.
type IntentLog struct {
	ID             string    `json:"id"              gorm:"type:char(36);primaryKey"`
	TenantID       string    `json:"tenant_id"       gorm:"column:client_id;type:char(36);not null;index:idx_intent_logs_client"`
	PhoneNumber    string    `json:"phone_number"    gorm:"type:varchar(32);not null"`
	MessageText    string    `json:"message_text"    gorm:"type:text"`
	DetectedIntent string    `json:"detected_intent" gorm:"type:varchar(32);index:idx_intent_logs_intent"`
	Confidence     float64   `json:"confidence"`
	CreatedAt      time.Time `json:"created_at"`

	Tenant Tenant `json:"-" gorm:"foreignKey:TenantID;references:ID;constraint:OnUpdate:CASCADE,OnDelete:CASCADE"`
}

// TableName returns the database table name for IntentLog.
func (IntentLog) TableName() string { return "intent_logs" }
