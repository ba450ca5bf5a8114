// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for escalations
// and intent logs.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

// CreateEscalation records one AI-to-human handoff event with status pending.
func CreateEscalation(ctx context.Context, db *gorm.DB, e domain.Escalation) (*domain.Escalation, error) {
	e.ID = uuid.NewString()
	if e.Status == "" {
		e.Status = domain.EscalationPending
	}
	e.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// GetEscalation fetches an escalation by ID.
func GetEscalation(ctx context.Context, db *gorm.DB, id string) (*domain.Escalation, error) {
	var e domain.Escalation
	if err := db.WithContext(ctx).Where("id = ?", id).First(&e).Error; err != nil {
		return nil, err
	}
	return &e, nil
}

// UpdateEscalationStatus transitions an escalation. resolvedAt is stamped
// only for terminal statuses (resolved, expired).
func UpdateEscalationStatus(ctx context.Context, db *gorm.DB, id, status, assignedTo string) error {
	updates := map[string]any{"status": status}
	if assignedTo != "" {
		updates["assigned_to"] = assignedTo
	}
	if status == domain.EscalationResolved || status == domain.EscalationExpired {
		updates["resolved_at"] = time.Now().UTC()
	}
	res := db.WithContext(ctx).Model(&domain.Escalation{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRecentEscalations returns the newest escalations, for the dashboard.
func ListRecentEscalations(ctx context.Context, db *gorm.DB, limit int) ([]domain.Escalation, error) {
	var out []domain.Escalation
	q := db.WithContext(ctx).Order("created_at DESC, id DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	err := q.Find(&out).Error
	return out, err
}

// CountPendingEscalations counts escalations still waiting for a human.
func CountPendingEscalations(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Escalation{}).
		Where("status = ?", domain.EscalationPending).
		Count(&n).Error
	return n, err
}

// CreateIntentLog appends one classification audit row.
func CreateIntentLog(ctx context.Context, db *gorm.DB, l domain.IntentLog) (*domain.IntentLog, error) {
	l.ID = uuid.NewString()
	l.CreatedAt = time.Now().UTC()
	if err := db.WithContext(ctx).Create(&l).Error; err != nil {
		return nil, err
	}
	return &l, nil
}
