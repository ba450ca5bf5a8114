// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides the aggregate queries behind the
// dashboard stats and analytics endpoints. Each function is context-aware
// and safe to call from services or handlers.
package repo

import (
	"context"
	"time"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

// CountCustomers returns the total number of customers across tenants.
func CountCustomers(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.Customer{}).Count(&n).Error
	return n, err
}

// CountTurns returns the total number of conversation turns.
func CountTurns(ctx context.Context, db *gorm.DB) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ConversationTurn{}).Count(&n).Error
	return n, err
}

// CountTurnsSince returns the number of turns created at or after since.
func CountTurnsSince(ctx context.Context, db *gorm.DB, since time.Time) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ConversationTurn{}).
		Where("created_at >= ?", since).
		Count(&n).Error
	return n, err
}

// CountTurnsByRole returns the number of turns with the given role, used for
// the response-rate figure (assistant turns over user turns).
func CountTurnsByRole(ctx context.Context, db *gorm.DB, role string) (int64, error) {
	var n int64
	err := db.WithContext(ctx).Model(&domain.ConversationTurn{}).
		Where("role = ?", role).
		Count(&n).Error
	return n, err
}

// IntentCount is one bucket of an intent histogram.
type IntentCount struct {
	Intent string `gorm:"column:detected_intent"`
	Count  int64  `gorm:"column:n"`
}

// IntentBreakdown aggregates the classification audit trail by intent label.
func IntentBreakdown(ctx context.Context, db *gorm.DB) ([]IntentCount, error) {
	var out []IntentCount
	err := db.WithContext(ctx).Model(&domain.IntentLog{}).
		Select("detected_intent, COUNT(*) AS n").
		Group("detected_intent").
		Order("n DESC").
		Scan(&out).Error
	return out, err
}

// AssistantIntentDistribution aggregates assistant turns by tagged intent
// since the given time, skipping untagged rows.
func AssistantIntentDistribution(ctx context.Context, db *gorm.DB, since time.Time) ([]IntentCount, error) {
	var out []IntentCount
	err := db.WithContext(ctx).Model(&domain.ConversationTurn{}).
		Select("detected_intent, COUNT(*) AS n").
		Where("role = ? AND detected_intent <> '' AND created_at >= ?", domain.RoleAssistant, since).
		Group("detected_intent").
		Order("n DESC").
		Scan(&out).Error
	return out, err
}

// DailyTurnCount is the per-day message volume split by direction.
type DailyTurnCount struct {
	Day      string `gorm:"column:day"`
	Incoming int64  `gorm:"column:incoming"`
	Outgoing int64  `gorm:"column:outgoing"`
}

// DailyTurnCounts groups turns since the given time into per-day incoming
// (user) and outgoing (assistant) counts, oldest day first.
func DailyTurnCounts(ctx context.Context, db *gorm.DB, since time.Time) ([]DailyTurnCount, error) {
	var out []DailyTurnCount
	err := db.WithContext(ctx).Raw(`
		SELECT strftime('%Y-%m-%d', created_at) AS day,
		       SUM(CASE WHEN role = 'user' THEN 1 ELSE 0 END)      AS incoming,
		       SUM(CASE WHEN role = 'assistant' THEN 1 ELSE 0 END) AS outgoing
		FROM conversations
		WHERE created_at >= ?
		GROUP BY day
		ORDER BY day ASC`, since).
		Scan(&out).Error
	return out, err
}
