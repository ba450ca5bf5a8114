// Package repo implements the data persistence layer for domain entities,
// backed by GORM. This file provides repository functions for the Tenant model.
package repo

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
)

// FindActiveTenantByPhoneNumberID resolves the tenant owning a WhatsApp
// routing id, restricted to active tenants. This is the only lookup by which
// inbound traffic is mapped to a tenant; gorm.ErrRecordNotFound means the
// number is simply not provisioned here.
func FindActiveTenantByPhoneNumberID(ctx context.Context, db *gorm.DB, phoneNumberID string) (*domain.Tenant, error) {
	var t domain.Tenant
	err := db.WithContext(ctx).
		Where("whatsapp_phone_number_id = ? AND is_active = ?", phoneNumberID, 1).
		First(&t).Error
	if err != nil {
		return nil, err
	}
	return &t, nil
}

// CreateTenant inserts a new tenant row, generating its ID and applying
// column defaults for blank optional fields.
func CreateTenant(ctx context.Context, db *gorm.DB, t *domain.Tenant) error {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.BrandTone == "" {
		t.BrandTone = "professional and friendly"
	}
	if t.DefaultLanguage == "" {
		t.DefaultLanguage = "en"
	}
	t.CreatedAt = time.Now().UTC()
	return db.WithContext(ctx).Create(t).Error
}

// GetTenant fetches a tenant by ID.
func GetTenant(ctx context.Context, db *gorm.DB, id string) (*domain.Tenant, error) {
	var t domain.Tenant
	if err := db.WithContext(ctx).Where("id = ?", id).First(&t).Error; err != nil {
		return nil, err
	}
	return &t, nil
}

// ListTenants returns all tenants, newest first.
func ListTenants(ctx context.Context, db *gorm.DB) ([]domain.Tenant, error) {
	var out []domain.Tenant
	err := db.WithContext(ctx).Order("created_at DESC, id DESC").Find(&out).Error
	return out, err
}

// UpdateTenant applies a partial update to a tenant. Only keys present in
// updates are touched; unknown columns surface as errors from the driver.
func UpdateTenant(ctx context.Context, db *gorm.DB, id string, updates map[string]any) error {
	res := db.WithContext(ctx).Model(&domain.Tenant{}).Where("id = ?", id).Updates(updates)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteTenant removes a tenant. Dependent customers, turns, escalations, and
// intent logs go with it via FK cascade.
func DeleteTenant(ctx context.Context, db *gorm.DB, id string) error {
	res := db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Tenant{})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}
