package repo

import (
	"context"
	"testing"
	"time"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

func TestCountsAndBreakdowns(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-s1", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "100", "Ada")

	now := time.Now().UTC()
	for i, turn := range []domain.ConversationTurn{
		{Role: domain.RoleUser, MessageText: "how much?", CreatedAt: now.Add(-48 * time.Hour)},
		{Role: domain.RoleAssistant, MessageText: "it costs...", DetectedIntent: "pricing", CreatedAt: now.Add(-48 * time.Hour)},
		{Role: domain.RoleUser, MessageText: "book me", CreatedAt: now.Add(-time.Hour)},
		{Role: domain.RoleAssistant, MessageText: "sure", DetectedIntent: "booking", CreatedAt: now.Add(-time.Hour)},
	} {
		turn.ID = string(rune('a' + i))
		turn.TenantID = tn.ID
		turn.CustomerID = cust.ID
		turn.PhoneNumber = "100"
		if err := db.Create(&turn).Error; err != nil {
			t.Fatalf("seed turn %d: %v", i, err)
		}
	}
	for _, l := range []domain.IntentLog{
		{DetectedIntent: "pricing", Confidence: 0.85},
		{DetectedIntent: "pricing", Confidence: 0.85},
		{DetectedIntent: "booking", Confidence: 0.85},
	} {
		l.TenantID = tn.ID
		l.PhoneNumber = "100"
		if _, err := CreateIntentLog(ctx, db, l); err != nil {
			t.Fatalf("seed intent log: %v", err)
		}
	}

	if n, err := CountCustomers(ctx, db); err != nil || n != 1 {
		t.Fatalf("CountCustomers = %d, %v", n, err)
	}
	if n, err := CountTurns(ctx, db); err != nil || n != 4 {
		t.Fatalf("CountTurns = %d, %v", n, err)
	}
	if n, err := CountTurnsSince(ctx, db, now.Add(-24*time.Hour)); err != nil || n != 2 {
		t.Fatalf("CountTurnsSince = %d, %v", n, err)
	}
	if n, err := CountTurnsByRole(ctx, db, domain.RoleUser); err != nil || n != 2 {
		t.Fatalf("CountTurnsByRole(user) = %d, %v", n, err)
	}

	breakdown, err := IntentBreakdown(ctx, db)
	if err != nil {
		t.Fatalf("IntentBreakdown: %v", err)
	}
	if len(breakdown) != 2 || breakdown[0].Intent != "pricing" || breakdown[0].Count != 2 {
		t.Fatalf("unexpected breakdown: %+v", breakdown)
	}

	dist, err := AssistantIntentDistribution(ctx, db, now.Add(-14*24*time.Hour))
	if err != nil {
		t.Fatalf("AssistantIntentDistribution: %v", err)
	}
	if len(dist) != 2 {
		t.Fatalf("unexpected distribution: %+v", dist)
	}
}

func TestDailyTurnCounts(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-s2", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "200", "Ada")

	day1 := time.Date(2026, 3, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	for i, turn := range []domain.ConversationTurn{
		{Role: domain.RoleUser, CreatedAt: day1},
		{Role: domain.RoleAssistant, CreatedAt: day1.Add(time.Minute)},
		{Role: domain.RoleUser, CreatedAt: day2},
		{Role: domain.RoleUser, CreatedAt: day2.Add(time.Minute)},
		{Role: domain.RoleAssistant, CreatedAt: day2.Add(2 * time.Minute)},
	} {
		turn.ID = string(rune('a' + i))
		turn.TenantID = tn.ID
		turn.CustomerID = cust.ID
		turn.PhoneNumber = "200"
		turn.MessageText = "x"
		if err := db.Create(&turn).Error; err != nil {
			t.Fatalf("seed turn %d: %v", i, err)
		}
	}

	out, err := DailyTurnCounts(ctx, db, day1.Add(-time.Hour))
	if err != nil {
		t.Fatalf("DailyTurnCounts: %v", err)
	}
	if len(out) != 2 {
		t.Fatalf("expected 2 days, got %+v", out)
	}
	if out[0].Day != "2026-03-01" || out[0].Incoming != 1 || out[0].Outgoing != 1 {
		t.Fatalf("day1 wrong: %+v", out[0])
	}
	if out[1].Day != "2026-03-02" || out[1].Incoming != 2 || out[1].Outgoing != 1 {
		t.Fatalf("day2 wrong: %+v", out[1])
	}
}
