// Package services – EscalationService
//
// This file implements the EscalationService, which exposes the human-handoff
// queue to operators. The pipeline opens escalations; operators move them
// through pending -> assigned -> resolved (or expired). Closing an escalation
// also clears the customer's escalation flag so the AI resumes replying to
// their next message.
package services

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/repo"
)

// terminal escalation statuses unlock the customer.
var terminalStatuses = map[string]bool{
	domain.EscalationResolved: true,
	domain.EscalationExpired:  true,
}

var allowedStatuses = map[string]bool{
	domain.EscalationPending:  true,
	domain.EscalationAssigned: true,
	domain.EscalationResolved: true,
	domain.EscalationExpired:  true,
}

// EscalationService manages the lifecycle of escalations after the pipeline
// has opened them.
type EscalationService struct {
	// DB is the GORM handle used for persistence.
	DB *gorm.DB
}

// NewEscalationService constructs an EscalationService.
func NewEscalationService(db *gorm.DB) *EscalationService {
	return &EscalationService{DB: db}
}

// Get fetches one escalation by id.
func (s *EscalationService) Get(ctx context.Context, id string) (*domain.Escalation, error) {
	esc, err := repo.GetEscalation(ctx, s.DB, id)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrEscalationNotFound
	}
	return esc, err
}

// ListRecent returns the most recent escalations, newest first.
func (s *EscalationService) ListRecent(ctx context.Context, limit int) ([]domain.Escalation, error) {
	if limit <= 0 {
		limit = 50
	}
	return repo.ListRecentEscalations(ctx, s.DB, limit)
}

// SetStatus transitions an escalation to the given status. Moving to a
// terminal status (resolved, expired) clears the customer's escalation flag,
// handing the conversation back to the AI.
func (s *EscalationService) SetStatus(ctx context.Context, id, status, assignedTo string) (*domain.Escalation, error) {
	if !allowedStatuses[status] {
		return nil, ErrInvalidEscalationStatus
	}

	esc, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := repo.UpdateEscalationStatus(ctx, s.DB, id, status, assignedTo); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrEscalationNotFound
		}
		return nil, err
	}

	if terminalStatuses[status] {
		if err := repo.ClearCustomerEscalation(ctx, s.DB, esc.CustomerID); err != nil {
			return nil, err
		}
	}
	return s.Get(ctx, id)
}
