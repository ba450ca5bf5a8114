// Package services – AnalyticsService
//
// This file implements the AnalyticsService backing the operator dashboard:
// a lightweight overview (headline counters plus intent breakdown) and a
// richer report (daily message volume, assistant intent distribution, recent
// escalations, response rate). All figures are computed from the store on
// demand; nothing is pre-aggregated.
package services

import (
	"context"
	"math"
	"time"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/repo"
)

// reportWindow is how far back the report looks.
const reportWindow = 14 * 24 * time.Hour

// Overview is the dashboard headline block.
type Overview struct {
	TotalCustomers     int64            `json:"total_customers"`
	TotalMessages      int64            `json:"total_messages"`
	MessagesToday      int64            `json:"messages_today"`
	PendingEscalations int64            `json:"pending_escalations"`
	IntentBreakdown    map[string]int64 `json:"intent_breakdown"`
}

// Report is the detailed analytics block over the last two weeks.
type Report struct {
	Daily              []repo.DailyTurnCount `json:"daily"`
	IntentDistribution []repo.IntentCount    `json:"intent_distribution"`
	RecentEscalations  []domain.Escalation   `json:"recent_escalations"`
	// ResponseRate is assistant turns per user turn as a percentage, capped
	// at 100 (handoff acks can outnumber user turns in tiny datasets).
	ResponseRate int `json:"response_rate"`
}

// AnalyticsService computes dashboard figures.
type AnalyticsService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewAnalyticsService constructs an AnalyticsService.
func NewAnalyticsService(db *gorm.DB) *AnalyticsService {
	return &AnalyticsService{DB: db}
}

// GetOverview returns the headline counters. "Today" is the trailing 24 hours
// rather than a calendar day, so the figure is timezone-agnostic.
func (s *AnalyticsService) GetOverview(ctx context.Context) (*Overview, error) {
	customers, err := repo.CountCustomers(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	messages, err := repo.CountTurns(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	today, err := repo.CountTurnsSince(ctx, s.DB, time.Now().UTC().Add(-24*time.Hour))
	if err != nil {
		return nil, err
	}
	pending, err := repo.CountPendingEscalations(ctx, s.DB)
	if err != nil {
		return nil, err
	}
	breakdown, err := repo.IntentBreakdown(ctx, s.DB)
	if err != nil {
		return nil, err
	}

	intents := make(map[string]int64, len(breakdown))
	for _, b := range breakdown {
		intents[b.Intent] = b.Count
	}
	return &Overview{
		TotalCustomers:     customers,
		TotalMessages:      messages,
		MessagesToday:      today,
		PendingEscalations: pending,
		IntentBreakdown:    intents,
	}, nil
}

// GetReport returns the two-week analytics report.
func (s *AnalyticsService) GetReport(ctx context.Context) (*Report, error) {
	since := time.Now().UTC().Add(-reportWindow)

	daily, err := repo.DailyTurnCounts(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	dist, err := repo.AssistantIntentDistribution(ctx, s.DB, since)
	if err != nil {
		return nil, err
	}
	escalations, err := repo.ListRecentEscalations(ctx, s.DB, 10)
	if err != nil {
		return nil, err
	}
	userTurns, err := repo.CountTurnsByRole(ctx, s.DB, domain.RoleUser)
	if err != nil {
		return nil, err
	}
	assistantTurns, err := repo.CountTurnsByRole(ctx, s.DB, domain.RoleAssistant)
	if err != nil {
		return nil, err
	}

	return &Report{
		Daily:              daily,
		IntentDistribution: dist,
		RecentEscalations:  escalations,
		ResponseRate:       responseRate(userTurns, assistantTurns),
	}, nil
}

func responseRate(userTurns, assistantTurns int64) int {
	if userTurns == 0 {
		return 0
	}
	rate := int(math.Round(float64(assistantTurns) / float64(userTurns) * 100))
	if rate > 100 {
		rate = 100
	}
	return rate
}
