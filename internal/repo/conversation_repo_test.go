package repo

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

func seedTurns(t *testing.T, db *gorm.DB, tenantID, customerID, phone string, n int) {
	t.Helper()
	base := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	for i := 0; i < n; i++ {
		role := domain.RoleUser
		if i%2 == 1 {
			role = domain.RoleAssistant
		}
		turn := domain.ConversationTurn{
			ID:          fmt.Sprintf("t%03d", i),
			TenantID:    tenantID,
			CustomerID:  customerID,
			PhoneNumber: phone,
			Role:        role,
			MessageText: fmt.Sprintf("message %d", i),
			CreatedAt:   base.Add(time.Duration(i) * time.Minute),
		}
		if err := db.Create(&turn).Error; err != nil {
			t.Fatalf("seed turn %d: %v", i, err)
		}
	}
}

func TestCreateTurn_AppendsWithGeneratedID(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-t1", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "777", "Ada")

	turn, err := CreateTurn(ctx, db, domain.ConversationTurn{
		TenantID:          tn.ID,
		CustomerID:        cust.ID,
		PhoneNumber:       "777",
		Role:              domain.RoleUser,
		MessageText:       "hello",
		WhatsAppMessageID: "wamid.1",
	})
	if err != nil {
		t.Fatalf("CreateTurn: %v", err)
	}
	if turn.ID == "" || turn.CreatedAt.IsZero() {
		t.Fatalf("ID/CreatedAt not filled: %+v", turn)
	}
	if turn.WhatsAppMessageID != "wamid.1" {
		t.Fatalf("provider message id lost: %+v", turn)
	}
}

func TestListRecentTurns_WindowAndOrder(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-t2", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "888", "Ada")
	seedTurns(t, db, tn.ID, cust.ID, "888", 15)

	out, err := ListRecentTurns(ctx, db, tn.ID, "888", 10)
	if err != nil {
		t.Fatalf("ListRecentTurns: %v", err)
	}
	if len(out) != 10 {
		t.Fatalf("window not enforced: got %d turns", len(out))
	}
	// the newest 10 of 15, in chronological order: message 5 .. message 14
	if out[0].MessageText != "message 5" || out[9].MessageText != "message 14" {
		t.Fatalf("unexpected window: first=%q last=%q", out[0].MessageText, out[9].MessageText)
	}
	for i := 1; i < len(out); i++ {
		if out[i].CreatedAt.Before(out[i-1].CreatedAt) {
			t.Fatalf("not chronological at %d", i)
		}
	}
}

func TestListRecentTurns_ScopedToTenantAndPhone(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tnA := seedTenant(t, db, "pn-t3a", true)
	tnB := seedTenant(t, db, "pn-t3b", true)
	custA, _ := UpsertCustomer(ctx, db, tnA.ID, "999", "Ada")
	custB, _ := UpsertCustomer(ctx, db, tnB.ID, "999", "Ada")

	if _, err := CreateTurn(ctx, db, domain.ConversationTurn{
		TenantID: tnA.ID, CustomerID: custA.ID, PhoneNumber: "999",
		Role: domain.RoleUser, MessageText: "for A",
	}); err != nil {
		t.Fatalf("seed A: %v", err)
	}
	if _, err := CreateTurn(ctx, db, domain.ConversationTurn{
		TenantID: tnB.ID, CustomerID: custB.ID, PhoneNumber: "999",
		Role: domain.RoleUser, MessageText: "for B",
	}); err != nil {
		t.Fatalf("seed B: %v", err)
	}

	out, err := ListRecentTurns(ctx, db, tnA.ID, "999", 10)
	if err != nil {
		t.Fatalf("ListRecentTurns: %v", err)
	}
	if len(out) != 1 || out[0].MessageText != "for A" {
		t.Fatalf("history leaked across tenants: %+v", out)
	}
}

func TestListTurnsByPhone_Chronological(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-t4", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "123", "Ada")
	seedTurns(t, db, tn.ID, cust.ID, "123", 4)

	out, err := ListTurnsByPhone(ctx, db, "123", 0)
	if err != nil {
		t.Fatalf("ListTurnsByPhone: %v", err)
	}
	if len(out) != 4 || out[0].MessageText != "message 0" || out[3].MessageText != "message 3" {
		t.Fatalf("unexpected order: %+v", out)
	}

	limited, err := ListTurnsByPhone(ctx, db, "123", 2)
	if err != nil || len(limited) != 2 {
		t.Fatalf("limit not applied: %v %d", err, len(limited))
	}
}
