package repo

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

func TestCreateEscalation_DefaultsToPending(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-e1", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "444", "Ada")

	e, err := CreateEscalation(ctx, db, domain.Escalation{
		TenantID:       tn.ID,
		CustomerID:     cust.ID,
		PhoneNumber:    "444",
		Reason:         "Customer requested human agent",
		TriggerMessage: "let me talk to a human",
	})
	if err != nil {
		t.Fatalf("CreateEscalation: %v", err)
	}
	if e.ID == "" || e.Status != domain.EscalationPending {
		t.Fatalf("unexpected escalation: %+v", e)
	}

	n, err := CountPendingEscalations(ctx, db)
	if err != nil || n != 1 {
		t.Fatalf("CountPendingEscalations = %d, %v", n, err)
	}
}

func TestUpdateEscalationStatus(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-e2", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "445", "Ada")

	e, err := CreateEscalation(ctx, db, domain.Escalation{
		TenantID: tn.ID, CustomerID: cust.ID, PhoneNumber: "445",
	})
	if err != nil {
		t.Fatalf("CreateEscalation: %v", err)
	}

	if err := UpdateEscalationStatus(ctx, db, e.ID, domain.EscalationAssigned, "sam"); err != nil {
		t.Fatalf("assign: %v", err)
	}
	got, err := GetEscalation(ctx, db, e.ID)
	if err != nil {
		t.Fatalf("GetEscalation: %v", err)
	}
	if got.Status != domain.EscalationAssigned || got.AssignedTo != "sam" || got.ResolvedAt != nil {
		t.Fatalf("unexpected after assign: %+v", got)
	}

	if err := UpdateEscalationStatus(ctx, db, e.ID, domain.EscalationResolved, ""); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	got, _ = GetEscalation(ctx, db, e.ID)
	if got.Status != domain.EscalationResolved || got.ResolvedAt == nil {
		t.Fatalf("resolved_at not stamped: %+v", got)
	}

	if err := UpdateEscalationStatus(ctx, db, "missing", domain.EscalationResolved, ""); !errors.Is(err, gorm.ErrRecordNotFound) {
		t.Fatalf("expected ErrRecordNotFound, got %v", err)
	}
}

func TestListRecentEscalations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-e3", true)
	cust, _ := UpsertCustomer(ctx, db, tn.ID, "446", "Ada")

	for i := 0; i < 3; i++ {
		if _, err := CreateEscalation(ctx, db, domain.Escalation{
			TenantID: tn.ID, CustomerID: cust.ID, PhoneNumber: "446",
		}); err != nil {
			t.Fatalf("seed escalation %d: %v", i, err)
		}
	}

	out, err := ListRecentEscalations(ctx, db, 2)
	if err != nil || len(out) != 2 {
		t.Fatalf("ListRecentEscalations: %v, %d rows", err, len(out))
	}
}

func TestCreateIntentLog(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-e4", true)

	l, err := CreateIntentLog(ctx, db, domain.IntentLog{
		TenantID:       tn.ID,
		PhoneNumber:    "447",
		MessageText:    "how much?",
		DetectedIntent: "pricing",
		Confidence:     0.85,
	})
	if err != nil {
		t.Fatalf("CreateIntentLog: %v", err)
	}
	if l.ID == "" || l.CreatedAt.IsZero() {
		t.Fatalf("ID/CreatedAt not filled: %+v", l)
	}

	var got domain.IntentLog
	if err := db.Where("id = ?", l.ID).First(&got).Error; err != nil {
		t.Fatalf("read back: %v", err)
	}
	if got.DetectedIntent != "pricing" || got.Confidence != 0.85 {
		t.Fatalf("roundtrip mismatch: %+v", got)
	}
}
