// Client (tenant) HTTP handlers.
//
// REST endpoints for managing the businesses connected to the platform:
//   - POST   /clients        (onboard)
//   - GET    /clients        (list)
//   - GET    /clients/:id    (fetch)
//   - PUT    /clients/:id    (update settings/credentials)
//   - PATCH  /clients/:id/active (enable/disable routing)
//   - DELETE /clients/:id    (remove, cascades all data)
//
// Handlers are transport-thin: they validate input, call application
// services, and translate results into HTTP responses. The route segment says
// "clients" because that is what the dashboard calls tenants.
package handlers

import (
	"context"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/services"
)

//
// Service contracts (context-aware)
//

// TenantService defines tenant lifecycle operations consumed by HTTP
// handlers. Implementations must be safe for concurrent use and honor the
// provided context.
type TenantService interface {
	Create(ctx context.Context, in services.TenantInput) (*domain.Tenant, error)
	Get(ctx context.Context, id string) (*domain.Tenant, error)
	List(ctx context.Context) ([]domain.Tenant, error)
	Update(ctx context.Context, id string, in services.TenantInput) (*domain.Tenant, error)
	SetActive(ctx context.Context, id string, active bool) (*domain.Tenant, error)
	Delete(ctx context.Context, id string) error
}

// ConversationReader exposes read-only conversation views.
type ConversationReader interface {
	ListCustomers(ctx context.Context, limit int) ([]domain.Customer, error)
	History(ctx context.Context, phoneNumber string, limit int) ([]domain.ConversationTurn, error)
}

// AnalyticsService computes dashboard figures.
type AnalyticsService interface {
	GetOverview(ctx context.Context) (*services.Overview, error)
	GetReport(ctx context.Context) (*services.Report, error)
}

// EscalationService manages the human-handoff queue.
type EscalationService interface {
	Get(ctx context.Context, id string) (*domain.Escalation, error)
	ListRecent(ctx context.Context, limit int) ([]domain.Escalation, error)
	SetStatus(ctx context.Context, id, status, assignedTo string) (*domain.Escalation, error)
}

//
// Handler wiring
//

// Handlers groups the dashboard HTTP endpoints. It depends on abstract
// service interfaces to keep transport concerns separate from business logic.
type Handlers struct {
	tenantSvc TenantService
	convSvc   ConversationReader
	statsSvc  AnalyticsService
	escSvc    EscalationService
}

// New constructs a Handlers instance bound to the given services.
func New(tenantSvc TenantService, convSvc ConversationReader, statsSvc AnalyticsService, escSvc EscalationService) *Handlers {
	return &Handlers{tenantSvc: tenantSvc, convSvc: convSvc, statsSvc: statsSvc, escSvc: escSvc}
}

//
// DTOs
//

// TenantRequest is the JSON payload for creating or updating a client. On
// update, empty fields keep their stored values.
type TenantRequest struct {
	BusinessName          string `json:"business_name"`
	WhatsAppPhoneNumberID string `json:"whatsapp_phone_number_id"`
	WhatsAppAccessToken   string `json:"whatsapp_access_token"`
	BrandTone             string `json:"brand_tone"`
	ServicesDescription   string `json:"services_description"`
	DefaultLanguage       string `json:"default_language"`
}

// SetActiveRequest toggles inbound routing for a client.
type SetActiveRequest struct {
	Active *bool `json:"active" binding:"required"`
}

func (r TenantRequest) input() services.TenantInput {
	return services.TenantInput{
		BusinessName:          r.BusinessName,
		WhatsAppPhoneNumberID: r.WhatsAppPhoneNumberID,
		WhatsAppAccessToken:   r.WhatsAppAccessToken,
		BrandTone:             r.BrandTone,
		ServicesDescription:   r.ServicesDescription,
		DefaultLanguage:       r.DefaultLanguage,
	}
}

//
// Endpoints
//

// CreateTenant handles POST /clients.
func (h *Handlers) CreateTenant(c *gin.Context) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tenant, err := h.tenantSvc.Create(c.Request.Context(), req.input())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrMissingBusinessName),
			errors.Is(err, services.ErrMissingPhoneNumberID),
			errors.Is(err, services.ErrMissingAccessToken),
			errors.Is(err, services.ErrInvalidLanguage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicatePhoneNumberID):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeCreateFailed, "could not create client")
		}
		return
	}
	ok(c, http.StatusCreated, tenant)
}

// ListTenants handles GET /clients.
func (h *Handlers) ListTenants(c *gin.Context) {
	tenants, err := h.tenantSvc.List(c.Request.Context())
	if err != nil {
		fail(c, http.StatusInternalServerError, ErrCodeListFailed, "could not list clients")
		return
	}
	ok(c, http.StatusOK, gin.H{"clients": tenants})
}

// GetTenant handles GET /clients/:id.
func (h *Handlers) GetTenant(c *gin.Context) {
	tenant, err := h.tenantSvc.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeInternal, "could not fetch client")
		return
	}
	ok(c, http.StatusOK, tenant)
}

// UpdateTenant handles PUT /clients/:id.
func (h *Handlers) UpdateTenant(c *gin.Context) {
	var req TenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "invalid JSON body")
		return
	}

	tenant, err := h.tenantSvc.Update(c.Request.Context(), c.Param("id"), req.input())
	if err != nil {
		switch {
		case errors.Is(err, services.ErrTenantNotFound):
			fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
		case errors.Is(err, services.ErrInvalidLanguage):
			fail(c, http.StatusBadRequest, ErrCodeBadRequest, err.Error())
		case errors.Is(err, services.ErrDuplicatePhoneNumberID):
			fail(c, http.StatusConflict, ErrCodeConflict, err.Error())
		default:
			fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "could not update client")
		}
		return
	}
	ok(c, http.StatusOK, tenant)
}

// SetTenantActive handles PATCH /clients/:id/active.
func (h *Handlers) SetTenantActive(c *gin.Context) {
	var req SetActiveRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.Active == nil {
		fail(c, http.StatusBadRequest, ErrCodeBadRequest, "body must include boolean 'active'")
		return
	}

	tenant, err := h.tenantSvc.SetActive(c.Request.Context(), c.Param("id"), *req.Active)
	if err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeUpdateFailed, "could not update client")
		return
	}
	ok(c, http.StatusOK, tenant)
}

// DeleteTenant handles DELETE /clients/:id.
func (h *Handlers) DeleteTenant(c *gin.Context) {
	if err := h.tenantSvc.Delete(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, services.ErrTenantNotFound) {
			fail(c, http.StatusNotFound, ErrCodeNotFound, "client not found")
			return
		}
		fail(c, http.StatusInternalServerError, ErrCodeDeleteFailed, "could not delete client")
		return
	}
	noContent(c)
}
