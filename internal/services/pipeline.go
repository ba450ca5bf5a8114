// Package services – Pipeline
//
// This file implements the message pipeline, the component that turns one
// inbound WhatsApp message into at most one outbound reply. Per message it
// resolves the tenant, maintains customer and conversation state, classifies
// intent, and branches between an AI-generated reply and a human handoff.
//
// Processing is strictly sequential within one message. Concurrent messages
// from the same customer can interleave on the store (history read by one run
// may or may not see the other's in-flight turn); serializing per customer is
// deliberately not done given WhatsApp's per-customer message cadence.
//
// Observability: Process is OpenTelemetry-instrumented and feeds the
// pipeline_* Prometheus counters.
package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/rs/zerolog/log"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/kuwex/whatsapp-ai-backend/internal/ai"
	"github.com/kuwex/whatsapp-ai-backend/internal/domain"
	"github.com/kuwex/whatsapp-ai-backend/internal/intent"
	"github.com/kuwex/whatsapp-ai-backend/internal/prompt"
	"github.com/kuwex/whatsapp-ai-backend/internal/repo"
	"github.com/kuwex/whatsapp-ai-backend/internal/whatsapp"
)

// CompletionClient generates an assistant reply for a conversation. It must
// always return a usable reply; degradation to canned text happens inside
// the implementation (see internal/ai).
type CompletionClient interface {
	Complete(ctx context.Context, messages []ai.Message) ai.Reply
}

// MessageSender delivers one outbound text message. False means the send
// failed; the pipeline logs and moves on (best-effort delivery).
type MessageSender interface {
	Send(ctx context.Context, msg whatsapp.OutboundMessage) bool
}

// Canned reply templates. The %s is the tenant's business name.
const (
	escalatedLockReply = "Thank you for your message. Your conversation has been assigned to a team member at %s. They will respond to you shortly."
	handoffReply       = "I understand you'd like to speak with a real person. Let me connect you with our team right away.\n\nSomeone from %s will reach out to you shortly. Thank you for your patience!"
	escalationReason   = "Customer requested human agent"
)

// defaultHistoryLimit is the prompt window: the last N turns, including the
// just-persisted inbound one.
const defaultHistoryLimit = 10

// Pipeline orchestrates inbound message processing. All collaborators are
// injected; nothing is cached between runs — tenant config and secrets are
// re-read from the store every time.
type Pipeline struct {
	DB     *gorm.DB
	AI     CompletionClient
	Sender MessageSender

	// HistoryLimit caps the prompt window; defaults to 10 when <= 0.
	HistoryLimit int
}

// NewPipeline constructs a Pipeline with the default history window.
func NewPipeline(db *gorm.DB, client CompletionClient, sender MessageSender) *Pipeline {
	return &Pipeline{DB: db, AI: client, Sender: sender, HistoryLimit: defaultHistoryLimit}
}

// Process runs one inbound message through the pipeline. It returns nil both
// on success and on a routing miss (a message for a number not provisioned
// here is normal, not an error). Only store failures propagate; the webhook
// boundary above swallows those and still acknowledges delivery.
func (p *Pipeline) Process(ctx context.Context, msg whatsapp.InboundMessage) error {
	tr := otel.Tracer("services/Pipeline")
	ctx, span := tr.Start(ctx, "Process",
		trace.WithAttributes(
			attribute.String("wa.phone_number_id", msg.PhoneNumberID),
			attribute.String("wa.message_id", msg.MessageID),
		),
	)
	defer span.End()

	// Resolve tenant by routing id; silence is the contract for unknown numbers.
	tenant, err := repo.FindActiveTenantByPhoneNumberID(ctx, p.DB, msg.PhoneNumberID)
	if errors.Is(err, gorm.ErrRecordNotFound) {
		pipelineRoutingMisses.Inc()
		log.Debug().
			Str("phone_number_id", msg.PhoneNumberID).
			Msg("no active tenant for routing id, dropping message")
		return nil
	}
	if err != nil {
		return fmt.Errorf("resolve tenant: %w", err)
	}

	customer, err := repo.UpsertCustomer(ctx, p.DB, tenant.ID, msg.PhoneNumber, msg.DisplayName)
	if err != nil {
		return fmt.Errorf("upsert customer: %w", err)
	}

	// History is always retained, even while the customer is escalated.
	if _, err := repo.CreateTurn(ctx, p.DB, domain.ConversationTurn{
		TenantID:          tenant.ID,
		CustomerID:        customer.ID,
		PhoneNumber:       msg.PhoneNumber,
		Role:              domain.RoleUser,
		MessageText:       msg.MessageText,
		WhatsAppMessageID: msg.MessageID,
	}); err != nil {
		return fmt.Errorf("persist inbound turn: %w", err)
	}

	// Escalation lock: no AI, no classification, no new escalation record.
	if customer.IsEscalated.Bool() {
		p.dispatch(ctx, tenant, msg.PhoneNumber, fmt.Sprintf(escalatedLockReply, tenant.BusinessName))
		return nil
	}

	res := intent.Classify(msg.MessageText)
	span.SetAttributes(attribute.String("intent", res.Intent))

	if _, err := repo.CreateIntentLog(ctx, p.DB, domain.IntentLog{
		TenantID:       tenant.ID,
		PhoneNumber:    msg.PhoneNumber,
		MessageText:    msg.MessageText,
		DetectedIntent: res.Intent,
		Confidence:     res.Confidence,
	}); err != nil {
		return fmt.Errorf("log intent: %w", err)
	}
	pipelineMessages.WithLabelValues(res.Intent).Inc()

	if res.Intent == intent.HumanEscalation {
		return p.handoff(ctx, tenant, customer, msg)
	}

	history, err := repo.ListRecentTurns(ctx, p.DB, tenant.ID, msg.PhoneNumber, p.historyLimit())
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	messages := make([]ai.Message, 0, len(history)+1)
	messages = append(messages, ai.Message{
		Role: domain.RoleSystem,
		Content: prompt.BuildSystemPrompt(res.Intent, prompt.Profile{
			BusinessName:        tenant.BusinessName,
			BrandTone:           tenant.BrandTone,
			ServicesDescription: tenant.ServicesDescription,
		}),
	})
	for _, turn := range history {
		// Only user/assistant turns belong in the prompt window.
		if turn.Role != domain.RoleUser && turn.Role != domain.RoleAssistant {
			continue
		}
		messages = append(messages, ai.Message{Role: turn.Role, Content: turn.MessageText})
	}

	reply := p.AI.Complete(ctx, messages)

	if _, err := repo.CreateTurn(ctx, p.DB, domain.ConversationTurn{
		TenantID:       tenant.ID,
		CustomerID:     customer.ID,
		PhoneNumber:    msg.PhoneNumber,
		Role:           domain.RoleAssistant,
		MessageText:    reply.Text,
		DetectedIntent: res.Intent,
		TokensUsed:     reply.TokensUsed,
	}); err != nil {
		return fmt.Errorf("persist outbound turn: %w", err)
	}

	p.dispatch(ctx, tenant, msg.PhoneNumber, reply.Text)
	return nil
}

// handoff runs the escalation branch: lock the customer, record the
// escalation, acknowledge with the fixed handoff message. No AI call is made
// for the triggering turn.
func (p *Pipeline) handoff(ctx context.Context, tenant *domain.Tenant, customer *domain.Customer, msg whatsapp.InboundMessage) error {
	now := time.Now().UTC()
	if err := repo.MarkCustomerEscalated(ctx, p.DB, tenant.ID, msg.PhoneNumber, now); err != nil {
		return fmt.Errorf("mark customer escalated: %w", err)
	}
	if _, err := repo.CreateEscalation(ctx, p.DB, domain.Escalation{
		TenantID:       tenant.ID,
		CustomerID:     customer.ID,
		PhoneNumber:    msg.PhoneNumber,
		Reason:         escalationReason,
		TriggerMessage: msg.MessageText,
	}); err != nil {
		return fmt.Errorf("create escalation: %w", err)
	}
	pipelineEscalations.Inc()

	ack := fmt.Sprintf(handoffReply, tenant.BusinessName)
	p.dispatch(ctx, tenant, msg.PhoneNumber, ack)

	if _, err := repo.CreateTurn(ctx, p.DB, domain.ConversationTurn{
		TenantID:       tenant.ID,
		CustomerID:     customer.ID,
		PhoneNumber:    msg.PhoneNumber,
		Role:           domain.RoleAssistant,
		MessageText:    ack,
		DetectedIntent: intent.HumanEscalation,
	}); err != nil {
		return fmt.Errorf("persist handoff turn: %w", err)
	}
	return nil
}

// dispatch sends a reply using the tenant's routing id and token. Failures
// are logged and counted, never rolled back: conversation state already
// written stays written (accepted best-effort delivery gap).
func (p *Pipeline) dispatch(ctx context.Context, tenant *domain.Tenant, to, text string) {
	delivered := p.Sender.Send(ctx, whatsapp.OutboundMessage{
		To:            to,
		Text:          text,
		PhoneNumberID: tenant.WhatsAppPhoneNumberID,
		AccessToken:   tenant.WhatsAppAccessToken,
	})
	if !delivered {
		pipelineSendFailures.Inc()
		log.Warn().
			Str("tenant_id", tenant.ID).
			Str("to", to).
			Msg("outbound send failed, reply not delivered")
	}
}

func (p *Pipeline) historyLimit() int {
	if p.HistoryLimit > 0 {
		return p.HistoryLimit
	}
	return defaultHistoryLimit
}
