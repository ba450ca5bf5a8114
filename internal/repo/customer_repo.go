// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Customer model.
package repo

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

// UpsertCustomer finds or creates the customer for (tenant, phone) and
// records one inbound message against it: total_messages is incremented and
// last_message_at refreshed. A non-empty displayName overwrites the stored
// one opportunistically; an empty incoming name never blanks an existing one.
func UpsertCustomer(ctx context.Context, db *gorm.DB, tenantID, phoneNumber, displayName string) (*domain.Customer, error) {
	now := time.Now().UTC()

	var c domain.Customer
	err := db.WithContext(ctx).
		Where("client_id = ? AND phone_number = ?", tenantID, phoneNumber).
		First(&c).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		c = domain.Customer{
			ID:            uuid.NewString(),
			TenantID:      tenantID,
			PhoneNumber:   phoneNumber,
			DisplayName:   displayName,
			FirstSeenAt:   now,
			LastMessageAt: now,
			TotalMessages: 1,
			CreatedAt:     now,
		}
		if err := db.WithContext(ctx).Create(&c).Error; err != nil {
			return nil, err
		}
		return &c, nil
	}
	if err != nil {
		return nil, err
	}

	updates := map[string]any{
		"total_messages":  gorm.Expr("total_messages + 1"),
		"last_message_at": now,
	}
	if displayName != "" {
		updates["display_name"] = displayName
	}
	if err := db.WithContext(ctx).Model(&c).Updates(updates).Error; err != nil {
		return nil, err
	}

	// Re-read so the caller sees the post-increment counter.
	if err := db.WithContext(ctx).Where("id = ?", c.ID).First(&c).Error; err != nil {
		return nil, err
	}
	return &c, nil
}

// GetCustomer fetches the customer for (tenant, phone).
func GetCustomer(ctx context.Context, db *gorm.DB, tenantID, phoneNumber string) (*domain.Customer, error) {
	var c domain.Customer
	err := db.WithContext(ctx).
		Where("client_id = ? AND phone_number = ?", tenantID, phoneNumber).
		First(&c).Error
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// MarkCustomerEscalated sets the sticky escalation flag and its timestamp.
func MarkCustomerEscalated(ctx context.Context, db *gorm.DB, tenantID, phoneNumber string, at time.Time) error {
	return db.WithContext(ctx).Model(&domain.Customer{}).
		Where("client_id = ? AND phone_number = ?", tenantID, phoneNumber).
		Updates(map[string]any{
			"is_escalated": domain.BoolInt(true),
			"escalated_at": at,
		}).Error
}

// ClearCustomerEscalation resets the escalation lock, returning the customer
// to AI handling. Called when an operator resolves an escalation.
func ClearCustomerEscalation(ctx context.Context, db *gorm.DB, customerID string) error {
	return db.WithContext(ctx).Model(&domain.Customer{}).
		Where("id = ?", customerID).
		Updates(map[string]any{
			"is_escalated": domain.BoolInt(false),
			"escalated_at": nil,
		}).Error
}

// ListCustomersByActivity returns customers across all tenants ordered by
// most recent message, for the dashboard conversation list.
func ListCustomersByActivity(ctx context.Context, db *gorm.DB, limit int) ([]domain.Customer, error) {
	var out []domain.Customer
	q := db.WithContext(ctx).Order("last_message_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
