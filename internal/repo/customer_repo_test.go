package repo

import (
	"context"
	"testing"
	"time"
)

func TestUpsertCustomer_CreatesOnFirstMessage(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-c1", true)

	c, err := UpsertCustomer(ctx, db, tn.ID, "263770000001", "Ada")
	if err != nil {
		t.Fatalf("UpsertCustomer: %v", err)
	}
	if c.ID == "" || c.TotalMessages != 1 || c.DisplayName != "Ada" {
		t.Fatalf("unexpected new customer: %+v", c)
	}
	if c.IsEscalated.Bool() {
		t.Fatalf("new customer must not be escalated")
	}
	if c.FirstSeenAt.IsZero() || c.LastMessageAt.IsZero() {
		t.Fatalf("timestamps not set: %+v", c)
	}
}

func TestUpsertCustomer_IncrementsAndKeepsName(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-c2", true)

	first, err := UpsertCustomer(ctx, db, tn.ID, "263770000002", "Ada")
	if err != nil {
		t.Fatalf("first upsert: %v", err)
	}

	// empty incoming name must not blank the stored one
	second, err := UpsertCustomer(ctx, db, tn.ID, "263770000002", "")
	if err != nil {
		t.Fatalf("second upsert: %v", err)
	}
	if second.ID != first.ID {
		t.Fatalf("upsert created a duplicate: %s vs %s", second.ID, first.ID)
	}
	if second.TotalMessages != 2 {
		t.Fatalf("counter not incremented: %+v", second)
	}
	if second.DisplayName != "Ada" {
		t.Fatalf("display name blanked: %+v", second)
	}

	// a non-empty name overwrites opportunistically
	third, err := UpsertCustomer(ctx, db, tn.ID, "263770000002", "Ada Lovelace")
	if err != nil {
		t.Fatalf("third upsert: %v", err)
	}
	if third.TotalMessages != 3 || third.DisplayName != "Ada Lovelace" {
		t.Fatalf("unexpected third upsert: %+v", third)
	}
	if !third.LastMessageAt.After(time.Time{}) {
		t.Fatalf("last_message_at not refreshed: %+v", third)
	}
}

func TestUpsertCustomer_ScopedPerTenant(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tnA := seedTenant(t, db, "pn-c3a", true)
	tnB := seedTenant(t, db, "pn-c3b", true)

	a, err := UpsertCustomer(ctx, db, tnA.ID, "263770000003", "Ada")
	if err != nil {
		t.Fatalf("upsert A: %v", err)
	}
	b, err := UpsertCustomer(ctx, db, tnB.ID, "263770000003", "Ada")
	if err != nil {
		t.Fatalf("upsert B: %v", err)
	}
	if a.ID == b.ID {
		t.Fatalf("same phone under two tenants must be two customers")
	}
}

func TestMarkAndClearCustomerEscalation(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-c4", true)

	c, err := UpsertCustomer(ctx, db, tn.ID, "263770000004", "Ada")
	if err != nil {
		t.Fatalf("upsert: %v", err)
	}

	at := time.Now().UTC()
	if err := MarkCustomerEscalated(ctx, db, tn.ID, c.PhoneNumber, at); err != nil {
		t.Fatalf("MarkCustomerEscalated: %v", err)
	}
	got, err := GetCustomer(ctx, db, tn.ID, c.PhoneNumber)
	if err != nil {
		t.Fatalf("GetCustomer: %v", err)
	}
	if !got.IsEscalated.Bool() || got.EscalatedAt == nil {
		t.Fatalf("escalation flag not set: %+v", got)
	}

	if err := ClearCustomerEscalation(ctx, db, c.ID); err != nil {
		t.Fatalf("ClearCustomerEscalation: %v", err)
	}
	got, err = GetCustomer(ctx, db, tn.ID, c.PhoneNumber)
	if err != nil {
		t.Fatalf("GetCustomer after clear: %v", err)
	}
	if got.IsEscalated.Bool() || got.EscalatedAt != nil {
		t.Fatalf("escalation not cleared: %+v", got)
	}
}

func TestListCustomersByActivity(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	tn := seedTenant(t, db, "pn-c5", true)

	if _, err := UpsertCustomer(ctx, db, tn.ID, "111", "One"); err != nil {
		t.Fatalf("upsert 111: %v", err)
	}
	time.Sleep(5 * time.Millisecond)
	if _, err := UpsertCustomer(ctx, db, tn.ID, "222", "Two"); err != nil {
		t.Fatalf("upsert 222: %v", err)
	}

	out, err := ListCustomersByActivity(ctx, db, 10)
	if err != nil {
		t.Fatalf("ListCustomersByActivity: %v", err)
	}
	if len(out) != 2 || out[0].PhoneNumber != "222" {
		t.Fatalf("expected most recent first: %+v", out)
	}

	one, err := ListCustomersByActivity(ctx, db, 1)
	if err != nil || len(one) != 1 {
		t.Fatalf("limit not applied: %v %+v", err, one)
	}
}
