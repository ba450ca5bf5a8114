// Package services – ConversationService
//
// Read-side access to conversations for the operator dashboard: the customer
// list ordered by recent activity, and the full turn history for one phone
// number. Writes happen exclusively in the pipeline.
package services

import (
	"context"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/repo"
)

const defaultCustomerListLimit = 50

// ConversationService exposes read-only conversation views.
type ConversationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewConversationService constructs a ConversationService.
func NewConversationService(db *gorm.DB) *ConversationService {
	return &ConversationService{DB: db}
}

// ListCustomers returns customers ordered by most recent message.
func (s *ConversationService) ListCustomers(ctx context.Context, limit int) ([]domain.Customer, error) {
	if limit <= 0 {
		limit = defaultCustomerListLimit
	}
	return repo.ListCustomersByActivity(ctx, s.DB, limit)
}

// History returns every turn exchanged with the given phone number in
// chronological order. limit <= 0 means unbounded.
func (s *ConversationService) History(ctx context.Context, phoneNumber string, limit int) ([]domain.ConversationTurn, error) {
	return repo.ListTurnsByPhone(ctx, s.DB, phoneNumber, limit)
}
