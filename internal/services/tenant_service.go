// Package services – TenantService
//
// This file implements the TenantService, which manages tenant (business)
// onboarding and configuration. It validates required WhatsApp credentials,
// normalizes optional branding fields, and checks that each WhatsApp phone
// number id is claimed by at most one tenant, since that id is the routing
// key for inbound webhooks.
//
// Service-level errors (e.g., ErrTenantNotFound, ErrDuplicatePhoneNumberID)
// are returned for predictable cases so handlers can map them to HTTP results
// consistently.
package services

import (
	"context"
	"errors"
	"strings"

	"golang.org/x/text/language"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/repo"
)

// TenantInput carries the writable tenant fields for create and update.
// Zero-valued optional fields keep their stored (or default) values on update.
type TenantInput struct {
	BusinessName          string
	WhatsAppPhoneNumberID string
	WhatsAppAccessToken   string
	BrandTone             string
	ServicesDescription   string
	DefaultLanguage       string
}

// TenantService provides CRUD operations over tenants. Deactivation rather
// than deletion is the normal way to take a tenant offline; Delete removes
// the tenant and all dependent rows.
type TenantService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewTenantService constructs a TenantService.
func NewTenantService(db *gorm.DB) *TenantService {
	return &TenantService{DB: db}
}

// Create validates the input and inserts a new active tenant.
func (s *TenantService) Create(ctx context.Context, in TenantInput) (*domain.Tenant, error) {
	in = trimInput(in)
	if in.BusinessName == "" {
		return nil, ErrMissingBusinessName
	}
	if in.WhatsAppPhoneNumberID == "" {
		return nil, ErrMissingPhoneNumberID
	}
	if in.WhatsAppAccessToken == "" {
		return nil, ErrMissingAccessToken
	}
	if err := validLanguage(in.DefaultLanguage); err != nil {
		return nil, err
	}
	if err := s.ensureUniquePhoneNumberID(ctx, in.WhatsAppPhoneNumberID, ""); err != nil {
		return nil, err
	}

	tenant := &domain.Tenant{
		BusinessName:          in.BusinessName,
		WhatsAppPhoneNumberID: in.WhatsAppPhoneNumberID,
		WhatsAppAccessToken:   in.WhatsAppAccessToken,
		BrandTone:             in.BrandTone,
		ServicesDescription:   in.ServicesDescription,
		DefaultLanguage:       in.DefaultLanguage,
		IsActive:              domain.BoolInt(true),
	}
	if err := repo.CreateTenant(ctx, s.DB, tenant); err != nil {
		return nil, err
	}
	return tenant, nil
}

// Get fetches one tenant by id.
func (s *TenantService) Get(ctx context.Context, id string) (*domain.Tenant, error) {
	tenant, err := repo.GetTenant(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	}
	return tenant, err
}

// List returns all tenants, newest first.
func (s *TenantService) List(ctx context.Context) ([]domain.Tenant, error) {
	return repo.ListTenants(ctx, s.DB)
}

// Update applies the non-empty fields of in to the tenant. The routing id can
// be changed but must stay unique across tenants.
func (s *TenantService) Update(ctx context.Context, id string, in TenantInput) (*domain.Tenant, error) {
	in = trimInput(in)
	if err := validLanguage(in.DefaultLanguage); err != nil {
		return nil, err
	}

	updates := map[string]any{}
	if in.BusinessName != "" {
		updates["business_name"] = in.BusinessName
	}
	if in.WhatsAppPhoneNumberID != "" {
		if err := s.ensureUniquePhoneNumberID(ctx, in.WhatsAppPhoneNumberID, id); err != nil {
			return nil, err
		}
		updates["whatsapp_phone_number_id"] = in.WhatsAppPhoneNumberID
	}
	if in.WhatsAppAccessToken != "" {
		updates["whatsapp_access_token"] = in.WhatsAppAccessToken
	}
	if in.BrandTone != "" {
		updates["brand_tone"] = in.BrandTone
	}
	if in.ServicesDescription != "" {
		updates["services_description"] = in.ServicesDescription
	}
	if in.DefaultLanguage != "" {
		updates["default_language"] = in.DefaultLanguage
	}

	if len(updates) > 0 {
		if err := repo.UpdateTenant(ctx, s.DB, id, updates); err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return nil, ErrTenantNotFound
			}
			return nil, err
		}
	}
	return s.Get(ctx, id)
}

// SetActive toggles whether the tenant receives inbound messages.
func (s *TenantService) SetActive(ctx context.Context, id string, active bool) (*domain.Tenant, error) {
	err := repo.UpdateTenant(ctx, s.DB, id, map[string]any{"is_active": domain.BoolInt(active)})
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrTenantNotFound
	}
	if err != nil {
		return nil, err
	}
	return s.Get(ctx, id)
}

// Delete removes the tenant; customers, conversations, escalations and intent
// logs cascade with it.
func (s *TenantService) Delete(ctx context.Context, id string) error {
	if _, err := s.Get(ctx, id); err != nil {
		return err
	}
	return repo.DeleteTenant(ctx, s.DB, id)
}

// ensureUniquePhoneNumberID rejects a routing id already claimed by another
// tenant. excludeID skips the tenant being updated.
func (s *TenantService) ensureUniquePhoneNumberID(ctx context.Context, phoneNumberID, excludeID string) error {
	var existing domain.Tenant
	err := s.DB.WithContext(ctx).
		Where("whatsapp_phone_number_id = ?", phoneNumberID).
		First(&existing).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if existing.ID == excludeID {
		return nil
	}
	return ErrDuplicatePhoneNumberID
}

// validLanguage accepts an empty tag (defaulted at the store layer) or any
// well-formed BCP-47 tag.
func validLanguage(tag string) error {
	if tag == "" {
		return nil
	}
	if _, err := language.Parse(tag); err != nil {
		return ErrInvalidLanguage
	}
	return nil
}

func trimInput(in TenantInput) TenantInput {
	in.BusinessName = strings.TrimSpace(in.BusinessName)
	in.WhatsAppPhoneNumberID = strings.TrimSpace(in.WhatsAppPhoneNumberID)
	in.WhatsAppAccessToken = strings.TrimSpace(in.WhatsAppAccessToken)
	in.BrandTone = strings.TrimSpace(in.BrandTone)
	in.ServicesDescription = strings.TrimSpace(in.ServicesDescription)
	in.DefaultLanguage = strings.TrimSpace(in.DefaultLanguage)
	return in
}
