// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for conversation
// turns, the append-only message history.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

// CreateTurn appends one conversation turn. The caller supplies tenant,
// customer, role, and text; ID and CreatedAt are filled here. Turns are never
// updated or deleted afterwards except through tenant cascade.
func CreateTurn(ctx context.Context, db *gorm.DB, turn domain.ConversationTurn) (*domain.ConversationTurn, error) {
	turn.ID = uuid.NewString()
	turn.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&turn).Error; err != nil {
		return nil, err
	}
	return &turn, nil
}

// ListRecentTurns returns the last `limit` turns for (tenant, phone) in
// chronological order. Storage order is newest-first for the LIMIT to bite;
// the slice is reversed before returning so prompt construction reads
// oldest-first.
func ListRecentTurns(ctx context.Context, db *gorm.DB, tenantID, phoneNumber string, limit int) ([]domain.ConversationTurn, error) {
	var out []domain.ConversationTurn
	err := db.WithContext(ctx).
		Where("client_id = ? AND phone_number = ?", tenantID, phoneNumber).
		Order("created_at DESC, id DESC").
		Limit(limit).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out, nil
}

// ListTurnsByPhone returns up to `limit` turns for a phone number across
// tenants in chronological order, for the dashboard conversation view.
func ListTurnsByPhone(ctx context.Context, db *gorm.DB, phoneNumber string, limit int) ([]domain.ConversationTurn, error) {
	var out []domain.ConversationTurn
	q := db.WithContext(ctx).
		Where("phone_number = ?", phoneNumber).
		Order("created_at ASC, id ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}
